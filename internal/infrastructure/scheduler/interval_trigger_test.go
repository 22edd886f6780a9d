package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

// fakeTrigger records triggered requests and can fail per entity kind
type fakeTrigger struct {
	mu       sync.Mutex
	requests []syncdomain.Request
	errs     map[syncdomain.EntityKind]error
}

func (f *fakeTrigger) Trigger(ctx context.Context, req syncdomain.Request) (*syncdomain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.EntityKind]; err != nil {
		return nil, err
	}
	return syncdomain.NewJob(req.TenantID, req.EntityKind, nil), nil
}

func (f *fakeTrigger) recorded() []syncdomain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]syncdomain.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func staticTenants(ids ...uuid.UUID) TenantSource {
	return TenantSourceFunc(func(ctx context.Context) ([]uuid.UUID, error) {
		return ids, nil
	})
}

func TestIntervalTriggerConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := DefaultIntervalTriggerConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects zero interval", func(t *testing.T) {
		cfg := DefaultIntervalTriggerConfig()
		cfg.Interval = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("rejects empty kinds", func(t *testing.T) {
		cfg := DefaultIntervalTriggerConfig()
		cfg.Kinds = nil
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		cfg := DefaultIntervalTriggerConfig()
		cfg.Kinds = []syncdomain.EntityKind{"invoices"}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestIntervalTrigger_SchedulesEachKindPerTenant(t *testing.T) {
	trigger := &fakeTrigger{}
	tenantA, tenantB := uuid.New(), uuid.New()

	it, err := NewIntervalTrigger(DefaultIntervalTriggerConfig(), trigger, staticTenants(tenantA, tenantB), zap.NewNop())
	require.NoError(t, err)

	it.scheduleRound(context.Background())

	requests := trigger.recorded()
	require.Len(t, requests, 6)
	// Products and customers precede orders within each tenant
	assert.Equal(t, syncdomain.EntityKindProducts, requests[0].EntityKind)
	assert.Equal(t, syncdomain.EntityKindCustomers, requests[1].EntityKind)
	assert.Equal(t, syncdomain.EntityKindOrders, requests[2].EntityKind)
	assert.Equal(t, tenantA, requests[0].TenantID)
	assert.Equal(t, tenantB, requests[3].TenantID)
	for _, req := range requests {
		assert.Equal(t, syncdomain.ModeIncremental, req.Mode)
	}
}

func TestIntervalTrigger_SkipsActiveSyncs(t *testing.T) {
	trigger := &fakeTrigger{
		errs: map[syncdomain.EntityKind]error{
			syncdomain.EntityKindProducts: shared.NewDomainError("SYNC_ALREADY_RUNNING", "active"),
		},
	}

	it, err := NewIntervalTrigger(DefaultIntervalTriggerConfig(), trigger, staticTenants(uuid.New()), zap.NewNop())
	require.NoError(t, err)

	it.scheduleRound(context.Background())

	// The active products sync does not block customers and orders
	require.Len(t, trigger.recorded(), 3)
}

func TestIntervalTrigger_ContinuesPastTriggerFailures(t *testing.T) {
	trigger := &fakeTrigger{
		errs: map[syncdomain.EntityKind]error{
			syncdomain.EntityKindCustomers: errors.New("db down"),
		},
	}

	it, err := NewIntervalTrigger(DefaultIntervalTriggerConfig(), trigger, staticTenants(uuid.New()), zap.NewNop())
	require.NoError(t, err)

	it.scheduleRound(context.Background())

	require.Len(t, trigger.recorded(), 3)
}

func TestIntervalTrigger_RunsOnTicker(t *testing.T) {
	trigger := &fakeTrigger{}
	cfg := DefaultIntervalTriggerConfig()
	cfg.Interval = 10 * time.Millisecond

	it, err := NewIntervalTrigger(cfg, trigger, staticTenants(uuid.New()), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, it.Start(context.Background()))
	defer it.Stop()

	assert.Eventually(t, func() bool {
		return len(trigger.recorded()) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestIntervalTrigger_StopIsIdempotent(t *testing.T) {
	it, err := NewIntervalTrigger(DefaultIntervalTriggerConfig(), &fakeTrigger{}, staticTenants(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, it.Start(context.Background()))
	it.Stop()
	it.Stop()
}
