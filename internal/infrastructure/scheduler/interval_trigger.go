package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// SyncTrigger creates a job and enqueues its run. The application sync
// service is the production implementation; it rejects duplicates for a
// (tenant, kind) pair that already has an active job.
type SyncTrigger interface {
	Trigger(ctx context.Context, req syncdomain.Request) (*syncdomain.Job, error)
}

// TenantSource lists the tenants with a connected storefront.
type TenantSource interface {
	ConnectedTenants(ctx context.Context) ([]uuid.UUID, error)
}

// TenantSourceFunc adapts a function to the TenantSource interface
type TenantSourceFunc func(ctx context.Context) ([]uuid.UUID, error)

// ConnectedTenants calls f
func (f TenantSourceFunc) ConnectedTenants(ctx context.Context) ([]uuid.UUID, error) {
	return f(ctx)
}

// ---------------------------------------------------------------------------
// IntervalTriggerConfig
// ---------------------------------------------------------------------------

// IntervalTriggerConfig holds configuration for the recurring sync trigger
type IntervalTriggerConfig struct {
	// Interval is the time between scheduling rounds
	Interval time.Duration
	// Kinds are the entity kinds scheduled each round, in order. Products
	// and customers go before orders so order linking finds fresh links.
	Kinds []syncdomain.EntityKind
}

// DefaultIntervalTriggerConfig returns default configuration
func DefaultIntervalTriggerConfig() IntervalTriggerConfig {
	return IntervalTriggerConfig{
		Interval: 15 * time.Minute,
		Kinds: []syncdomain.EntityKind{
			syncdomain.EntityKindProducts,
			syncdomain.EntityKindCustomers,
			syncdomain.EntityKindOrders,
		},
	}
}

// Validate validates the configuration
func (c *IntervalTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if len(c.Kinds) == 0 {
		return ErrInvalidConfig
	}
	for _, kind := range c.Kinds {
		if !kind.IsValid() {
			return ErrInvalidConfig
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// IntervalTrigger
// ---------------------------------------------------------------------------

// IntervalTrigger schedules incremental sync runs for every connected tenant
// on a fixed interval.
type IntervalTrigger struct {
	config  IntervalTriggerConfig
	trigger SyncTrigger
	tenants TenantSource
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new recurring sync trigger
func NewIntervalTrigger(config IntervalTriggerConfig, trigger SyncTrigger, tenants TenantSource, logger *zap.Logger) (*IntervalTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &IntervalTrigger{
		config:  config,
		trigger: trigger,
		tenants: tenants,
		logger:  logger.Named("sync-trigger"),
	}, nil
}

// Start starts the scheduling loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Recurring sync trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Int("kinds", len(t.config.Kinds)),
	)
	return nil
}

// Stop stops the scheduling loop
func (t *IntervalTrigger) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	t.logger.Info("Recurring sync trigger stopped")
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.scheduleRound(ctx)
		}
	}
}

// scheduleRound triggers one incremental run per tenant and kind. A tenant
// whose previous run is still active is skipped, not queued up behind it.
func (t *IntervalTrigger) scheduleRound(ctx context.Context) {
	tenantIDs, err := t.tenants.ConnectedTenants(ctx)
	if err != nil {
		t.logger.Error("Failed to list connected tenants", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		for _, kind := range t.config.Kinds {
			_, err := t.trigger.Trigger(ctx, syncdomain.Request{
				TenantID:   tenantID,
				EntityKind: kind,
				Mode:       syncdomain.ModeIncremental,
			})
			if err == nil {
				continue
			}
			if isAlreadyRunning(err) {
				t.logger.Debug("Skipping tenant with active sync",
					zap.String("tenant_id", tenantID.String()),
					zap.String("entity_kind", kind.String()),
				)
				continue
			}
			t.logger.Warn("Failed to trigger scheduled sync",
				zap.String("tenant_id", tenantID.String()),
				zap.String("entity_kind", kind.String()),
				zap.Error(err),
			)
		}
	}
}

func isAlreadyRunning(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "SYNC_ALREADY_RUNNING"
}
