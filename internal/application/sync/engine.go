package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Collaborator Interfaces
// ---------------------------------------------------------------------------

// CredentialsProvider resolves the storefront credentials for a tenant.
type CredentialsProvider interface {
	Credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error)
}

// StatusCache projects job progress into a fast read path for status
// polling. Cache failures on the write path are logged, never fatal.
type StatusCache interface {
	Put(ctx context.Context, job *syncdomain.Job) error

	// Get returns nil without error on a cache miss.
	Get(ctx context.Context, jobID uuid.UUID) (*StatusProjection, error)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Options tune the orchestration loop.
type Options struct {
	// PageSize is the default page size requested from the platform
	PageSize int
	// InterPageDelay is the pause between pages of a full sync
	InterPageDelay time.Duration
	// IncrementalBuffer widens the incremental watermark to tolerate
	// clock/indexing skew between the platform and the sync cursor
	IncrementalBuffer time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		PageSize:          200,
		InterPageDelay:    500 * time.Millisecond,
		IncrementalBuffer: 2 * time.Minute,
	}
}

// Engine drives one sync run as a sequential pipeline: fetch a page,
// transform it, upsert staging, link internal entities, flush progress, and
// decide whether to continue. Concurrency exists only across runs; the
// worker pool bounds it and the gateway's shared rate budget throttles it.
type Engine struct {
	gateway         integration.StorefrontGateway
	creds           CredentialsProvider
	jobs            syncdomain.JobRepository
	jobErrors       syncdomain.JobErrorRepository
	stagedProducts  integration.StagedProductRepository
	stagedOrders    integration.StagedOrderRepository
	stagedCustomers integration.StagedCustomerRepository
	productLinker   *ProductLinker
	orderLinker     *OrderLinker
	customerLinker  *CustomerLinker
	statusCache     StatusCache
	opts            Options
	logger          *zap.Logger
}

// NewEngine creates a new Engine
func NewEngine(
	gateway integration.StorefrontGateway,
	creds CredentialsProvider,
	jobs syncdomain.JobRepository,
	jobErrors syncdomain.JobErrorRepository,
	stagedProducts integration.StagedProductRepository,
	stagedOrders integration.StagedOrderRepository,
	stagedCustomers integration.StagedCustomerRepository,
	productLinker *ProductLinker,
	orderLinker *OrderLinker,
	customerLinker *CustomerLinker,
	statusCache StatusCache,
	opts Options,
	logger *zap.Logger,
) *Engine {
	if opts.PageSize <= 0 {
		opts = DefaultOptions()
	}
	return &Engine{
		gateway:         gateway,
		creds:           creds,
		jobs:            jobs,
		jobErrors:       jobErrors,
		stagedProducts:  stagedProducts,
		stagedOrders:    stagedOrders,
		stagedCustomers: stagedCustomers,
		productLinker:   productLinker,
		orderLinker:     orderLinker,
		customerLinker:  customerLinker,
		statusCache:     statusCache,
		opts:            opts,
		logger:          logger,
	}
}

// Run executes one sync run to completion. Record-level errors are counted
// and persisted without aborting; API-level and persistence errors fail the
// job with the captured message.
func (e *Engine) Run(ctx context.Context, req syncdomain.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	job, err := e.openJob(ctx, req)
	if err != nil {
		return err
	}
	logger := e.logger.With(
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("entity_kind", req.EntityKind.String()),
		zap.String("mode", req.Mode.String()),
	)

	creds, err := e.creds.Credentials(ctx, req.TenantID)
	if err != nil {
		return e.failJob(ctx, job, logger, err)
	}
	if err := creds.Validate(); err != nil {
		return e.failJob(ctx, job, logger, err)
	}

	// A resumed job arrives already running with a saved cursor; a fresh
	// one transitions from pending here.
	resumed := job.Status == syncdomain.StatusRunning
	if !resumed {
		if err := job.Start(); err != nil {
			return err
		}
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return err
	}
	e.projectStatus(ctx, job, logger)
	logger.Info("sync run started", zap.Bool("resumed", resumed))

	filter, err := e.buildFilter(ctx, req)
	if err != nil {
		return e.failJob(ctx, job, logger, err)
	}

	cursor := ""
	if resumed {
		cursor = job.Cursor
	}
	pages := 0
	for {
		// Cancellation and pause are polled between pages; there is no
		// mid-page preemption.
		stopped, err := e.refreshControlState(ctx, job)
		if err != nil {
			return e.failJob(ctx, job, logger, err)
		}
		if stopped {
			logger.Info("sync run stopped by control state", zap.String("status", job.Status.String()))
			return nil
		}

		pageReq := integration.PageRequest{
			Cursor:   cursor,
			PageSize: e.pageSize(req),
			Filter:   filter,
		}
		res, pageInfo, err := e.processPage(ctx, req, creds, pageReq, logger)
		if err != nil {
			return e.failJob(ctx, job, logger, err)
		}
		pages++

		if err := e.flushProgress(ctx, job, res, pageInfo.EndCursor); err != nil {
			return e.failJob(ctx, job, logger, err)
		}
		e.projectStatus(ctx, job, logger)
		logger.Info("page synced",
			zap.Int("page", pages),
			zap.Int64("processed", res.Processed),
			zap.Int64("failed", res.Failed),
			zap.Int64("skipped", res.Skipped),
			zap.Bool("has_next", pageInfo.HasNextPage),
		)

		// Incremental runs process exactly one page; full runs continue
		// while the platform reports more.
		if req.Mode != syncdomain.ModeFull || !pageInfo.HasNextPage {
			break
		}
		cursor = pageInfo.EndCursor
		if err := e.pause(ctx); err != nil {
			return e.failJob(ctx, job, logger, err)
		}
	}

	if err := job.Complete(); err != nil {
		return err
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return err
	}
	e.projectStatus(ctx, job, logger)
	logger.Info("sync run completed",
		zap.Int64("total", job.TotalItems),
		zap.Int64("succeeded", job.SuccessCount),
		zap.Int64("failed", job.ErrorCount),
		zap.Int("pages", pages),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Page processing
// ---------------------------------------------------------------------------

func (e *Engine) processPage(ctx context.Context, req syncdomain.Request, creds integration.Credentials, pageReq integration.PageRequest, logger *zap.Logger) (Result, integration.PageInfo, error) {
	switch req.EntityKind {
	case syncdomain.EntityKindProducts:
		return e.processProductPage(ctx, req.TenantID, creds, pageReq, logger)
	case syncdomain.EntityKindOrders:
		return e.processOrderPage(ctx, req.TenantID, creds, pageReq)
	case syncdomain.EntityKindCustomers:
		return e.processCustomerPage(ctx, req.TenantID, creds, pageReq)
	default:
		return Result{}, integration.PageInfo{}, shared.NewDomainError("INVALID_SYNC_REQUEST", "unknown entity kind: "+string(req.EntityKind))
	}
}

func (e *Engine) processProductPage(ctx context.Context, tenantID uuid.UUID, creds integration.Credentials, pageReq integration.PageRequest, logger *zap.Logger) (Result, integration.PageInfo, error) {
	page, err := e.gateway.FetchProducts(ctx, creds, pageReq)
	if err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	now := time.Now()
	staged := make([]*integration.StagedProduct, 0, len(page.Products))
	var stagedVariants []*integration.StagedVariant
	for i := range page.Products {
		p := &page.Products[i]
		sp, svs, truncated := TransformProduct(tenantID, p, now)
		if truncated > 0 {
			logger.Warn("variant options truncated to positional slots",
				zap.String("platform_product_id", p.ID),
				zap.Int("variants_truncated", truncated))
		}
		staged = append(staged, sp)
		stagedVariants = append(stagedVariants, svs...)
	}

	if err := e.stagedProducts.UpsertBatch(ctx, staged); err != nil {
		return Result{}, integration.PageInfo{}, err
	}
	if err := e.stagedProducts.UpsertVariantBatch(ctx, stagedVariants); err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	res, err := e.productLinker.Link(ctx, tenantID, staged, stagedVariants)
	return res, page.PageInfo, err
}

func (e *Engine) processOrderPage(ctx context.Context, tenantID uuid.UUID, creds integration.Credentials, pageReq integration.PageRequest) (Result, integration.PageInfo, error) {
	page, err := e.gateway.FetchOrders(ctx, creds, pageReq)
	if err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	now := time.Now()
	staged := make([]*integration.StagedOrder, 0, len(page.Orders))
	for i := range page.Orders {
		staged = append(staged, TransformOrder(tenantID, &page.Orders[i], now))
	}
	if err := e.stagedOrders.UpsertBatch(ctx, staged); err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	res, err := e.orderLinker.Link(ctx, tenantID, staged)
	return res, page.PageInfo, err
}

func (e *Engine) processCustomerPage(ctx context.Context, tenantID uuid.UUID, creds integration.Credentials, pageReq integration.PageRequest) (Result, integration.PageInfo, error) {
	page, err := e.gateway.FetchCustomers(ctx, creds, pageReq)
	if err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	now := time.Now()
	staged := make([]*integration.StagedCustomer, 0, len(page.Customers))
	for i := range page.Customers {
		staged = append(staged, TransformCustomer(tenantID, &page.Customers[i], now))
	}
	if err := e.stagedCustomers.UpsertBatch(ctx, staged); err != nil {
		return Result{}, integration.PageInfo{}, err
	}

	res, err := e.customerLinker.Link(ctx, tenantID, staged)
	return res, page.PageInfo, err
}

// ---------------------------------------------------------------------------
// Job bookkeeping
// ---------------------------------------------------------------------------

// openJob loads the pre-created job or creates one for scheduled triggers
// invoked without a job id.
func (e *Engine) openJob(ctx context.Context, req syncdomain.Request) (*syncdomain.Job, error) {
	if req.JobID != uuid.Nil {
		return e.jobs.FindByID(ctx, req.TenantID, req.JobID)
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
	if err := e.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// buildFilter derives the server-side filter. Incremental mode applies an
// updated-after watermark widened by the skew buffer; full mode fetches
// everything.
func (e *Engine) buildFilter(ctx context.Context, req syncdomain.Request) (integration.PullFilter, error) {
	filter := integration.PullFilter{IDs: req.PlatformIDs}
	if req.Mode != syncdomain.ModeIncremental {
		return filter, nil
	}
	// id-targeted re-syncs fetch the named records regardless of age
	if len(filter.IDs) > 0 {
		return filter, nil
	}

	watermark := req.UpdatedAfter
	if watermark == nil {
		last, err := e.jobs.LatestCompleted(ctx, req.TenantID, req.EntityKind)
		if err != nil {
			return filter, err
		}
		if last != nil && last.StartedAt != nil {
			watermark = last.StartedAt
		}
	}
	if watermark != nil {
		buffered := watermark.Add(-e.opts.IncrementalBuffer)
		filter.UpdatedAfter = &buffered
	}
	return filter, nil
}

// refreshControlState reloads the job and reports whether an external
// cancel/pause should stop the loop.
func (e *Engine) refreshControlState(ctx context.Context, job *syncdomain.Job) (bool, error) {
	fresh, err := e.jobs.FindByID(ctx, job.TenantID, job.ID)
	if err != nil {
		return false, err
	}
	if fresh.Status == syncdomain.StatusCancelled || fresh.Status == syncdomain.StatusPaused {
		*job = *fresh
		return true, nil
	}
	return false, nil
}

// flushProgress folds a page result into the job and persists it, including
// the page's record-level errors.
func (e *Engine) flushProgress(ctx context.Context, job *syncdomain.Job, res Result, cursor string) error {
	if err := job.RecordProgress(res.Processed, res.Succeeded, res.Failed, res.Skipped, cursor); err != nil {
		return err
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return err
	}
	if len(res.Errors) == 0 {
		return nil
	}
	records := make([]*syncdomain.JobError, 0, len(res.Errors))
	for _, re := range res.Errors {
		records = append(records, syncdomain.NewJobError(job.ID, re.PlatformID, re.Stage, re.Message))
	}
	return e.jobErrors.CreateBatch(ctx, records)
}

func (e *Engine) failJob(ctx context.Context, job *syncdomain.Job, logger *zap.Logger, cause error) error {
	logger.Error("sync run failed", zap.Error(cause))
	if err := job.Fail(cause.Error()); err != nil {
		return cause
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		logger.Error("failed to persist job failure", zap.Error(err))
	}
	e.projectStatus(ctx, job, logger)
	return cause
}

func (e *Engine) projectStatus(ctx context.Context, job *syncdomain.Job, logger *zap.Logger) {
	if e.statusCache == nil {
		return
	}
	if err := e.statusCache.Put(ctx, job); err != nil {
		logger.Warn("status cache update failed", zap.Error(err))
	}
}

func (e *Engine) pageSize(req syncdomain.Request) int {
	if req.PageSize > 0 {
		return req.PageSize
	}
	return e.opts.PageSize
}

// pause waits the inter-page delay, aborting early on context cancellation.
func (e *Engine) pause(ctx context.Context) error {
	if e.opts.InterPageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.opts.InterPageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
