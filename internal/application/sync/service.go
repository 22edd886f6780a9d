package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// Queue hands a sync request to the worker pool for asynchronous execution.
type Queue interface {
	Enqueue(req syncdomain.Request) error
}

// StatusProjection is the read-only view of a job exposed for polling.
type StatusProjection struct {
	JobID          uuid.UUID  `json:"job_id"`
	EntityKind     string     `json:"entity_kind"`
	Status         string     `json:"status"`
	TotalItems     int64      `json:"total_items"`
	ProcessedItems int64      `json:"processed_items"`
	SuccessCount   int64      `json:"success_count"`
	ErrorCount     int64      `json:"error_count"`
	SkipCount      int64      `json:"skip_count"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ProjectionFromJob builds the polling view of a job.
func ProjectionFromJob(job *syncdomain.Job) *StatusProjection {
	return &StatusProjection{
		JobID:          job.ID,
		EntityKind:     job.EntityKind.String(),
		Status:         job.Status.String(),
		TotalItems:     job.TotalItems,
		ProcessedItems: job.ProcessedItems,
		SuccessCount:   job.SuccessCount,
		ErrorCount:     job.ErrorCount,
		SkipCount:      job.SkipCount,
		ErrorMessage:   job.ErrorMessage,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
	}
}

// Service is the HTTP-facing application service: it creates jobs, enqueues
// runs, and answers status queries.
type Service struct {
	jobs        syncdomain.JobRepository
	jobErrors   syncdomain.JobErrorRepository
	queue       Queue
	statusCache StatusCache
	logger      *zap.Logger
}

// NewService creates a new Service
func NewService(
	jobs syncdomain.JobRepository,
	jobErrors syncdomain.JobErrorRepository,
	queue Queue,
	statusCache StatusCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		jobs:        jobs,
		jobErrors:   jobErrors,
		queue:       queue,
		statusCache: statusCache,
		logger:      logger,
	}
}

// Trigger creates a pending job and enqueues the run. Rejected when the
// (tenant, kind) pair already has an active job.
func (s *Service) Trigger(ctx context.Context, req syncdomain.Request) (*syncdomain.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	active, err := s.jobs.FindActive(ctx, req.TenantID, req.EntityKind)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, shared.NewDomainError("SYNC_ALREADY_RUNNING", "a sync for this entity kind is already active")
	}

	cfg, err := json.Marshal(syncdomain.Config{
		Mode:         req.Mode,
		UpdatedAfter: req.UpdatedAfter,
		PlatformIDs:  req.PlatformIDs,
		PageSize:     req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	job := syncdomain.NewJob(req.TenantID, req.EntityKind, cfg)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	req.JobID = job.ID
	if err := s.queue.Enqueue(req); err != nil {
		// The job stays pending; a failed enqueue is surfaced immediately.
		if failErr := job.Fail("enqueue failed: " + err.Error()); failErr == nil {
			if updErr := s.jobs.Update(ctx, job); updErr != nil {
				s.logger.Error("failed to mark job after enqueue failure", zap.Error(updErr))
			}
		}
		return nil, err
	}

	s.logger.Info("sync triggered",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("entity_kind", req.EntityKind.String()),
		zap.String("mode", req.Mode.String()),
	)
	return job, nil
}

// Status returns the polling projection, preferring the cache and falling
// back to the job table.
func (s *Service) Status(ctx context.Context, tenantID, jobID uuid.UUID) (*StatusProjection, error) {
	if s.statusCache != nil {
		proj, err := s.statusCache.Get(ctx, jobID)
		if err != nil {
			s.logger.Warn("status cache read failed", zap.Error(err))
		} else if proj != nil {
			return proj, nil
		}
	}

	job, err := s.jobs.FindByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	return ProjectionFromJob(job), nil
}

// Cancel marks a job cancelled; the running loop observes it between pages.
func (s *Service) Cancel(ctx context.Context, tenantID, jobID uuid.UUID) error {
	return s.transition(ctx, tenantID, jobID, (*syncdomain.Job).Cancel)
}

// Pause marks a running job paused.
func (s *Service) Pause(ctx context.Context, tenantID, jobID uuid.UUID) error {
	return s.transition(ctx, tenantID, jobID, (*syncdomain.Job).Pause)
}

// Resume re-enqueues a paused job; the run continues from the saved cursor.
func (s *Service) Resume(ctx context.Context, tenantID, jobID uuid.UUID) error {
	job, err := s.jobs.FindByID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := job.Resume(); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}

	var cfg syncdomain.Config
	if len(job.Config) > 0 {
		if err := json.Unmarshal(job.Config, &cfg); err != nil {
			return err
		}
	}
	return s.queue.Enqueue(syncdomain.Request{
		TenantID:     job.TenantID,
		EntityKind:   job.EntityKind,
		Mode:         cfg.Mode,
		UpdatedAfter: cfg.UpdatedAfter,
		PlatformIDs:  cfg.PlatformIDs,
		PageSize:     cfg.PageSize,
		JobID:        job.ID,
	})
}

func (s *Service) transition(ctx context.Context, tenantID, jobID uuid.UUID, fn func(*syncdomain.Job) error) error {
	job, err := s.jobs.FindByID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := fn(job); err != nil {
		return err
	}
	return s.jobs.Update(ctx, job)
}

// List returns jobs for a tenant with paging.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	return s.jobs.List(ctx, tenantID, filter)
}

// Errors returns the persisted record-level failures for a job.
func (s *Service) Errors(ctx context.Context, tenantID, jobID uuid.UUID, limit, offset int) ([]syncdomain.JobError, int64, error) {
	if _, err := s.jobs.FindByID(ctx, tenantID, jobID); err != nil {
		return nil, 0, err
	}
	return s.jobErrors.ListByJob(ctx, jobID, limit, offset)
}
