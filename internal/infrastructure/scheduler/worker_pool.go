package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/logger"
)

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Runner executes one sync run end to end. The sync engine is the production
// implementation; job state transitions and error recording happen inside it.
type Runner interface {
	Run(ctx context.Context, req syncdomain.Request) error
}

// ---------------------------------------------------------------------------
// WorkerPoolConfig
// ---------------------------------------------------------------------------

// WorkerPoolConfig holds configuration for the sync worker pool
type WorkerPoolConfig struct {
	// MaxConcurrentJobs is the number of workers
	MaxConcurrentJobs int
	// JobTimeout is the maximum time one sync run can take
	JobTimeout time.Duration
	// QueueSize is the capacity of the pending job buffer
	QueueSize int
}

// DefaultWorkerPoolConfig returns default configuration
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		QueueSize:         64,
	}
}

// Validate validates the configuration
func (c *WorkerPoolConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// WorkerPool
// ---------------------------------------------------------------------------

// WorkerPool executes queued sync runs with bounded concurrency. It is the
// Queue implementation behind the application service: Trigger creates the
// job row, Enqueue hands the run to a worker.
type WorkerPool struct {
	config WorkerPoolConfig
	runner Runner
	logger *zap.Logger

	jobs      chan syncdomain.Request
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewWorkerPool creates a new sync worker pool
func NewWorkerPool(config WorkerPoolConfig, runner Runner, logger *zap.Logger) (*WorkerPool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WorkerPool{
		config: config,
		runner: runner,
		logger: logger.Named("sync-pool"),
		jobs:   make(chan syncdomain.Request, config.QueueSize),
	}, nil
}

// Start starts the workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.config.MaxConcurrentJobs; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info("Sync worker pool started",
		zap.Int("workers", p.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", p.config.JobTimeout),
	)
	return nil
}

// Stop drains the pool. In-flight runs finish unless ctx expires first.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Sync worker pool stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Sync worker pool stop timed out")
		return ctx.Err()
	}
}

// Enqueue hands a sync request to the pool without blocking
func (p *WorkerPool) Enqueue(req syncdomain.Request) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	p.mu.Unlock()

	select {
	case p.jobs <- req:
		p.logger.Debug("Sync run enqueued",
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("job_id", req.JobID.String()),
			zap.String("entity_kind", req.EntityKind.String()),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// worker pulls runs off the queue until the pool stops
func (p *WorkerPool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processRun(ctx, req, workerID)
		}
	}
}

// processRun executes one sync run under the job timeout. The engine owns
// job status transitions; the pool only reports the outcome.
func (p *WorkerPool) processRun(ctx context.Context, req syncdomain.Request, workerID int) {
	log := p.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("entity_kind", req.EntityKind.String()),
		zap.String("mode", req.Mode.String()),
	)

	runCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	// tenant and job ids ride the context so SQL traces stay correlated
	runCtx, log = logger.WithTenantID(runCtx, log, req.TenantID.String())
	runCtx, log = logger.WithJobID(runCtx, log, req.JobID.String())
	log.Info("Processing sync run")

	start := time.Now()
	if err := p.runner.Run(runCtx, req); err != nil {
		log.Error("Sync run failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	log.Info("Sync run completed", zap.Duration("elapsed", time.Since(start)))
}

// Ensure WorkerPool implements the application queue port
var _ appsync.Queue = (*WorkerPool)(nil)
