package sync

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// JobFilter narrows job listings.
type JobFilter struct {
	EntityKind *EntityKind
	Status     *Status
	Limit      int
	Offset     int
}

// JobRepository persists sync jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error

	// Update persists the job's current state. Called after every
	// progress flush and on terminal transitions.
	Update(ctx context.Context, job *Job) error

	// FindByID returns shared.ErrNotFound when the job does not exist.
	FindByID(ctx context.Context, tenantID, jobID uuid.UUID) (*Job, error)

	// FindActive returns the running or pending job for a (tenant, kind)
	// pair, or nil when none exists. Used to prevent duplicate concurrent
	// runs.
	FindActive(ctx context.Context, tenantID uuid.UUID, kind EntityKind) (*Job, error)

	List(ctx context.Context, tenantID uuid.UUID, filter JobFilter) ([]Job, int64, error)

	// LatestCompleted returns the most recently completed job for a
	// (tenant, kind) pair, or nil when none exists. Its StartedAt seeds
	// the incremental watermark.
	LatestCompleted(ctx context.Context, tenantID uuid.UUID, kind EntityKind) (*Job, error)
}

// JobErrorRepository persists record-level failures for later inspection.
type JobErrorRepository interface {
	CreateBatch(ctx context.Context, errs []*JobError) error
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]JobError, int64, error)
}
