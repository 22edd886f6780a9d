package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Trigger Request
// ---------------------------------------------------------------------------

// Request describes one requested sync run. Built by the HTTP layer, the
// webhook handler or the recurring scheduler, and handed to the engine
// through the worker pool.
type Request struct {
	// TenantID scopes the run to one organization
	TenantID uuid.UUID
	// EntityKind selects products, orders or customers
	EntityKind EntityKind
	// Mode is full or incremental
	Mode Mode
	// UpdatedAfter overrides the derived incremental watermark when set
	UpdatedAfter *time.Time
	// PlatformIDs restricts the run to specific platform records
	PlatformIDs []string
	// PageSize overrides the configured page size when positive
	PageSize int
	// JobID is the pre-created job to drive, uuid.Nil when the engine
	// should create one
	JobID uuid.UUID
}

// Validate checks the request is well-formed
func (r Request) Validate() error {
	if r.TenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_SYNC_REQUEST", "tenant id is required")
	}
	if !r.EntityKind.IsValid() {
		return shared.NewDomainError("INVALID_SYNC_REQUEST", "unknown entity kind: "+string(r.EntityKind))
	}
	if !r.Mode.IsValid() {
		return shared.NewDomainError("INVALID_SYNC_REQUEST", "unknown mode: "+string(r.Mode))
	}
	return nil
}
