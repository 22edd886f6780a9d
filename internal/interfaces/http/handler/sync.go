package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// SyncService is the application surface the sync endpoints drive.
// Implemented by application/sync.Service.
type SyncService interface {
	Trigger(ctx context.Context, req syncdomain.Request) (*syncdomain.Job, error)
	Status(ctx context.Context, tenantID, jobID uuid.UUID) (*appsync.StatusProjection, error)
	List(ctx context.Context, tenantID uuid.UUID, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error)
	Errors(ctx context.Context, tenantID, jobID uuid.UUID, limit, offset int) ([]syncdomain.JobError, int64, error)
	Cancel(ctx context.Context, tenantID, jobID uuid.UUID) error
	Pause(ctx context.Context, tenantID, jobID uuid.UUID) error
	Resume(ctx context.Context, tenantID, jobID uuid.UUID) error
}

// SyncHandler handles sync job API endpoints
type SyncHandler struct {
	BaseHandler
	syncService SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// TriggerSyncRequest represents a request to start a sync run
type TriggerSyncRequest struct {
	EntityKind   string     `json:"entity_kind" binding:"required,oneof=products orders customers"`
	Mode         string     `json:"mode" binding:"omitempty,oneof=full incremental"`
	UpdatedAfter *time.Time `json:"updated_after"`
	PlatformIDs  []string   `json:"platform_ids" binding:"omitempty,max=50,dive,min=1"`
	PageSize     int        `json:"page_size" binding:"omitempty,min=1,max=250"`
}

// ListJobsRequest represents job list query parameters
type ListJobsRequest struct {
	dto.ListRequest
	EntityKind string `form:"entity_kind" binding:"omitempty,oneof=products orders customers"`
	Status     string `form:"status" binding:"omitempty,oneof=pending running completed failed cancelled paused"`
}

// JobResponse is the API view of a sync job
type JobResponse struct {
	ID             uuid.UUID  `json:"id"`
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
	CreatedAt      time.Time  `json:"created_at"`
}

// NewJobResponse builds the API view of a job
func NewJobResponse(job *syncdomain.Job) JobResponse {
	return JobResponse{
		ID:             job.ID,
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
		CreatedAt:      job.CreatedAt,
	}
}

// JobErrorResponse is the API view of one record-level failure
type JobErrorResponse struct {
	PlatformID string    `json:"platform_id"`
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RegisterRoutes registers sync endpoints on the given router group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/sync/jobs")
	{
		jobs.POST("", h.Trigger)
		jobs.GET("", h.List)
		jobs.GET("/:id", h.Status)
		jobs.GET("/:id/errors", h.Errors)
		jobs.POST("/:id/cancel", h.Cancel)
		jobs.POST("/:id/pause", h.Pause)
		jobs.POST("/:id/resume", h.Resume)
	}
}

// Trigger creates a sync job and enqueues the run
func (h *SyncHandler) Trigger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "tenant id is required")
		return
	}

	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mode := syncdomain.Mode(req.Mode)
	if req.Mode == "" {
		mode = syncdomain.ModeIncremental
	}

	job, err := h.syncService.Trigger(c.Request.Context(), syncdomain.Request{
		TenantID:     tenantID,
		EntityKind:   syncdomain.EntityKind(req.EntityKind),
		Mode:         mode,
		UpdatedAfter: req.UpdatedAfter,
		PlatformIDs:  req.PlatformIDs,
		PageSize:     req.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Accepted(c, NewJobResponse(job))
}

// List returns the tenant's sync jobs, newest first
func (h *SyncHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "tenant id is required")
		return
	}

	var req ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.Normalize()

	filter := syncdomain.JobFilter{
		Limit:  req.PageSize,
		Offset: req.Offset(),
	}
	if req.EntityKind != "" {
		kind := syncdomain.EntityKind(req.EntityKind)
		filter.EntityKind = &kind
	}
	if req.Status != "" {
		status := syncdomain.Status(req.Status)
		filter.Status = &status
	}

	jobs, total, err := h.syncService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]JobResponse, len(jobs))
	for i := range jobs {
		responses[i] = NewJobResponse(&jobs[i])
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Status returns the polling projection for one job
func (h *SyncHandler) Status(c *gin.Context) {
	tenantID, jobID, ok := h.jobScope(c)
	if !ok {
		return
	}

	projection, err := h.syncService.Status(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, projection)
}

// Errors returns the persisted record-level failures for a job
func (h *SyncHandler) Errors(c *gin.Context) {
	tenantID, jobID, ok := h.jobScope(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.Normalize()

	jobErrors, total, err := h.syncService.Errors(c.Request.Context(), tenantID, jobID, req.PageSize, req.Offset())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]JobErrorResponse, len(jobErrors))
	for i, jobErr := range jobErrors {
		responses[i] = JobErrorResponse{
			PlatformID: jobErr.PlatformID,
			Stage:      jobErr.Stage,
			Message:    jobErr.Message,
			OccurredAt: jobErr.OccurredAt,
		}
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Cancel marks a job cancelled; the running loop observes it between pages
func (h *SyncHandler) Cancel(c *gin.Context) {
	h.transition(c, h.syncService.Cancel)
}

// Pause marks a running job paused
func (h *SyncHandler) Pause(c *gin.Context) {
	h.transition(c, h.syncService.Pause)
}

// Resume re-enqueues a paused job
func (h *SyncHandler) Resume(c *gin.Context) {
	h.transition(c, h.syncService.Resume)
}

func (h *SyncHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, jobID uuid.UUID) error) {
	tenantID, jobID, ok := h.jobScope(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), tenantID, jobID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// jobScope extracts the tenant and job ids, responding on failure.
func (h *SyncHandler) jobScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "tenant id is required")
		return uuid.Nil, uuid.Nil, false
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "job id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, jobID, true
}
