package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// recordingRunner captures executed requests
type recordingRunner struct {
	mu       sync.Mutex
	requests []syncdomain.Request
	executed atomic.Int32
	block    chan struct{}
	err      error
}

func (r *recordingRunner) Run(ctx context.Context, req syncdomain.Request) error {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.executed.Add(1)
	return r.err
}

func newTestPool(t *testing.T, cfg WorkerPoolConfig, runner Runner) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(cfg, runner, zap.NewNop())
	require.NoError(t, err)
	return pool
}

func testRequest(kind syncdomain.EntityKind) syncdomain.Request {
	return syncdomain.Request{
		TenantID:   uuid.New(),
		EntityKind: kind,
		Mode:       syncdomain.ModeIncremental,
		JobID:      uuid.New(),
	}
}

func TestWorkerPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerPoolConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *WorkerPoolConfig) {}, false},
		{"zero workers", func(c *WorkerPoolConfig) { c.MaxConcurrentJobs = 0 }, true},
		{"zero timeout", func(c *WorkerPoolConfig) { c.JobTimeout = 0 }, true},
		{"zero queue size", func(c *WorkerPoolConfig) { c.QueueSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWorkerPoolConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWorkerPool_ExecutesEnqueuedRuns(t *testing.T) {
	runner := &recordingRunner{}
	pool := newTestPool(t, DefaultWorkerPoolConfig(), runner)

	require.NoError(t, pool.Start(context.Background()))

	req := testRequest(syncdomain.EntityKindOrders)
	require.NoError(t, pool.Enqueue(req))

	assert.Eventually(t, func() bool {
		return runner.executed.Load() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, pool.Stop(context.Background()))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Len(t, runner.requests, 1)
	assert.Equal(t, req.JobID, runner.requests[0].JobID)
	assert.Equal(t, syncdomain.EntityKindOrders, runner.requests[0].EntityKind)
}

func TestWorkerPool_RejectsWhenNotRunning(t *testing.T) {
	pool := newTestPool(t, DefaultWorkerPoolConfig(), &recordingRunner{})

	err := pool.Enqueue(testRequest(syncdomain.EntityKindProducts))

	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestWorkerPool_RejectsWhenQueueFull(t *testing.T) {
	runner := &recordingRunner{block: make(chan struct{})}
	cfg := WorkerPoolConfig{MaxConcurrentJobs: 1, JobTimeout: time.Minute, QueueSize: 1}
	pool := newTestPool(t, cfg, runner)

	require.NoError(t, pool.Start(context.Background()))
	defer func() {
		close(runner.block)
		_ = pool.Stop(context.Background())
	}()

	// First run occupies the worker, second fills the queue
	require.NoError(t, pool.Enqueue(testRequest(syncdomain.EntityKindProducts)))
	assert.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.requests) == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, pool.Enqueue(testRequest(syncdomain.EntityKindOrders)))

	err := pool.Enqueue(testRequest(syncdomain.EntityKindCustomers))

	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestWorkerPool_RunFailureDoesNotStopWorkers(t *testing.T) {
	runner := &recordingRunner{err: errors.New("platform unavailable")}
	pool := newTestPool(t, DefaultWorkerPoolConfig(), runner)

	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop(context.Background())

	require.NoError(t, pool.Enqueue(testRequest(syncdomain.EntityKindOrders)))
	require.NoError(t, pool.Enqueue(testRequest(syncdomain.EntityKindProducts)))

	assert.Eventually(t, func() bool {
		return runner.executed.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWorkerPool_StopDrainsGracefully(t *testing.T) {
	runner := &recordingRunner{}
	pool := newTestPool(t, DefaultWorkerPoolConfig(), runner)

	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Enqueue(testRequest(syncdomain.EntityKindCustomers)))
	assert.Eventually(t, func() bool {
		return runner.executed.Load() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, pool.Stop(context.Background()))

	assert.Equal(t, int32(1), runner.executed.Load())
	assert.ErrorIs(t, pool.Enqueue(testRequest(syncdomain.EntityKindOrders)), ErrSchedulerNotRunning)
}

func TestWorkerPool_StartIsIdempotent(t *testing.T) {
	pool := newTestPool(t, DefaultWorkerPoolConfig(), &recordingRunner{})

	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Stop(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))
}
