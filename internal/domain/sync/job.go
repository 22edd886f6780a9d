// Package sync defines the durable state machine for a synchronization run
// and the trigger requests that start one.
package sync

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/storesync/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// EntityKind identifies which record family a sync run covers
type EntityKind string

const (
	EntityKindProducts  EntityKind = "products"
	EntityKindOrders    EntityKind = "orders"
	EntityKindCustomers EntityKind = "customers"
)

// IsValid returns true if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindProducts, EntityKindOrders, EntityKindCustomers:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// Mode selects between a full backfill and an incremental catch-up
type Mode string

const (
	// ModeFull pages through every record on the platform
	ModeFull Mode = "full"
	// ModeIncremental processes one page of records updated since the watermark
	ModeIncremental Mode = "incremental"
)

// IsValid returns true if the mode is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeFull, ModeIncremental:
		return true
	default:
		return false
	}
}

// String returns the string representation of Mode
func (m Mode) String() string {
	return string(m)
}

// Status is the lifecycle state of a sync job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusPaused    Status = "paused"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled, StatusPaused:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed from s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Job Entity
// ---------------------------------------------------------------------------

// Config holds the per-run parameters captured when the job is created.
type Config struct {
	// Mode is full or incremental
	Mode Mode `json:"mode"`
	// UpdatedAfter is the incremental watermark, nil for full syncs
	UpdatedAfter *time.Time `json:"updated_after,omitempty"`
	// PlatformIDs restricts the run to specific platform records
	// (webhook-triggered single-entity resync)
	PlatformIDs []string `json:"platform_ids,omitempty"`
	// PageSize overrides the default page size when positive
	PageSize int `json:"page_size,omitempty"`
}

// Job is one synchronization run for one (tenant, entity kind) pair.
// Mutated by the orchestration loop after every page; terminal once
// completed, failed or cancelled.
type Job struct {
	shared.TenantEntity
	EntityKind EntityKind     `gorm:"type:varchar(20);not null;index:idx_sync_jobs_tenant_kind,priority:2"`
	Status     Status         `gorm:"type:varchar(20);not null;index"`
	Config     datatypes.JSON `gorm:"type:jsonb"`

	// Progress counters. ProcessedItems never exceeds TotalItems once
	// TotalItems is known.
	TotalItems     int64 `gorm:"not null;default:0"`
	ProcessedItems int64 `gorm:"not null;default:0"`
	SuccessCount   int64 `gorm:"not null;default:0"`
	ErrorCount     int64 `gorm:"not null;default:0"`
	SkipCount      int64 `gorm:"not null;default:0"`

	// Cursor is the pagination cursor after the last persisted page,
	// allowing a failed full sync to be diagnosed (not auto-resumed).
	Cursor string `gorm:"type:varchar(255)"`

	ErrorMessage   string     `gorm:"type:text"`
	StartedAt      *time.Time ``
	CompletedAt    *time.Time ``
	LastActivityAt *time.Time ``
}

// TableName returns the table name for GORM
func (Job) TableName() string {
	return "sync_jobs"
}

// NewJob creates a pending job for the given tenant and entity kind.
func NewJob(tenantID uuid.UUID, kind EntityKind, cfg datatypes.JSON) *Job {
	return &Job{
		TenantEntity: shared.NewTenantEntity(tenantID),
		EntityKind:   kind,
		Status:       StatusPending,
		Config:       cfg,
	}
}

// ---------------------------------------------------------------------------
// State Machine
// ---------------------------------------------------------------------------

// Start transitions pending -> running and stamps StartedAt.
func (j *Job) Start() error {
	if j.Status != StatusPending {
		return shared.NewDomainError("INVALID_JOB_STATE", "job can only start from pending, current: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusRunning
	j.StartedAt = &now
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// RecordProgress folds one page's outcome into the counters. Caller persists.
func (j *Job) RecordProgress(processed, succeeded, failed, skipped int64, cursor string) error {
	if j.Status != StatusRunning {
		return shared.NewDomainError("INVALID_JOB_STATE", "progress only recorded while running, current: "+j.Status.String())
	}
	now := time.Now()
	j.ProcessedItems += processed
	j.SuccessCount += succeeded
	j.ErrorCount += failed
	j.SkipCount += skipped
	if j.ProcessedItems > j.TotalItems {
		j.TotalItems = j.ProcessedItems
	}
	j.Cursor = cursor
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// Complete transitions running -> completed and stamps CompletedAt.
func (j *Job) Complete() error {
	if j.Status != StatusRunning {
		return shared.NewDomainError("INVALID_JOB_STATE", "job can only complete from running, current: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusCompleted
	j.CompletedAt = &now
	j.LastActivityAt = &now
	// The platform does not report a total up front; the final processed
	// count is the total.
	j.TotalItems = j.ProcessedItems
	j.Touch()
	return nil
}

// Fail transitions running (or pending) -> failed with the fatal error.
func (j *Job) Fail(message string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_JOB_STATE", "job already terminal: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.CompletedAt = &now
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// Cancel transitions pending/running/paused -> cancelled.
func (j *Job) Cancel() error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_JOB_STATE", "job already terminal: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusCancelled
	j.CompletedAt = &now
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// Pause transitions running -> paused. Paused jobs are not auto-resumed.
func (j *Job) Pause() error {
	if j.Status != StatusRunning {
		return shared.NewDomainError("INVALID_JOB_STATE", "job can only pause from running, current: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusPaused
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// Resume transitions paused -> running.
func (j *Job) Resume() error {
	if j.Status != StatusPaused {
		return shared.NewDomainError("INVALID_JOB_STATE", "job can only resume from paused, current: "+j.Status.String())
	}
	now := time.Now()
	j.Status = StatusRunning
	j.LastActivityAt = &now
	j.Touch()
	return nil
}

// ---------------------------------------------------------------------------
// Job Errors
// ---------------------------------------------------------------------------

// JobError is one persisted record-level failure. Record-level failures are
// counted, logged and stored; they never abort the run.
type JobError struct {
	shared.BaseEntity
	JobID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PlatformID string    `gorm:"type:varchar(100)"`
	Stage      string    `gorm:"type:varchar(30)"`
	Message    string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JobError) TableName() string {
	return "sync_job_errors"
}

// NewJobError creates an error record for a failed platform record.
func NewJobError(jobID uuid.UUID, platformID, stage, message string) *JobError {
	return &JobError{
		BaseEntity: shared.NewBaseEntity(),
		JobID:      jobID,
		PlatformID: platformID,
		Stage:      stage,
		Message:    message,
		OccurredAt: time.Now(),
	}
}
