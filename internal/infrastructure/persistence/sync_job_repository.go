package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// GormSyncJobRepository implements sync.JobRepository using GORM
type GormSyncJobRepository struct {
	db *gorm.DB
}

// NewGormSyncJobRepository creates a new GormSyncJobRepository
func NewGormSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

// Create inserts a new job
func (r *GormSyncJobRepository) Create(ctx context.Context, job *syncdomain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Update persists the job's current state
func (r *GormSyncJobRepository) Update(ctx context.Context, job *syncdomain.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// FindByID finds a job by ID within a tenant
func (r *GormSyncJobRepository) FindByID(ctx context.Context, tenantID, jobID uuid.UUID) (*syncdomain.Job, error) {
	var job syncdomain.Job
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, jobID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindActive returns the pending or running job for a (tenant, kind) pair,
// or nil when none exists
func (r *GormSyncJobRepository) FindActive(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind) (*syncdomain.Job, error) {
	var job syncdomain.Job
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_kind = ? AND status IN ?",
			tenantID, kind, []syncdomain.Status{syncdomain.StatusPending, syncdomain.StatusRunning, syncdomain.StatusPaused}).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// List finds jobs matching the filter, newest first
func (r *GormSyncJobRepository) List(ctx context.Context, tenantID uuid.UUID, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	applyFilter := func(query *gorm.DB) *gorm.DB {
		query = query.Where("tenant_id = ?", tenantID)
		if filter.EntityKind != nil && filter.EntityKind.IsValid() {
			query = query.Where("entity_kind = ?", *filter.EntityKind)
		}
		if filter.Status != nil && filter.Status.IsValid() {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&syncdomain.Job{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(r.db.WithContext(ctx)).Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var jobs []syncdomain.Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// LatestCompleted returns the most recently completed job for a (tenant, kind)
// pair, or nil when none exists
func (r *GormSyncJobRepository) LatestCompleted(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind) (*syncdomain.Job, error) {
	var job syncdomain.Job
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_kind = ? AND status = ?", tenantID, kind, syncdomain.StatusCompleted).
		Order("completed_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Ensure GormSyncJobRepository implements JobRepository
var _ syncdomain.JobRepository = (*GormSyncJobRepository)(nil)

// ---------------------------------------------------------------------------
// Job errors
// ---------------------------------------------------------------------------

// GormJobErrorRepository implements sync.JobErrorRepository using GORM
type GormJobErrorRepository struct {
	db *gorm.DB
}

// NewGormJobErrorRepository creates a new GormJobErrorRepository
func NewGormJobErrorRepository(db *gorm.DB) *GormJobErrorRepository {
	return &GormJobErrorRepository{db: db}
}

// CreateBatch inserts record-level failures
func (r *GormJobErrorRepository) CreateBatch(ctx context.Context, errs []*syncdomain.JobError) error {
	if len(errs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(errs, 200).Error
}

// ListByJob lists failures for a job, oldest first
func (r *GormJobErrorRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]syncdomain.JobError, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&syncdomain.JobError{}).
		Where("job_id = ?", jobID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("occurred_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var jobErrors []syncdomain.JobError
	if err := query.Find(&jobErrors).Error; err != nil {
		return nil, 0, err
	}
	return jobErrors, total, nil
}

// Ensure GormJobErrorRepository implements JobErrorRepository
var _ syncdomain.JobErrorRepository = (*GormJobErrorRepository)(nil)
