package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

type statusEntry struct {
	projection appsync.StatusProjection
	expiresAt  time.Time
}

// InMemoryStatusCache implements the status cache with a local map. Suitable
// for single-instance deployments and testing; entries expire after the TTL
// and a background janitor removes them.
type InMemoryStatusCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]statusEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStatusCache creates a new in-memory status cache
func NewInMemoryStatusCache(ttl time.Duration) *InMemoryStatusCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cache := &InMemoryStatusCache{
		entries:  make(map[uuid.UUID]statusEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Put stores the job's current projection
func (c *InMemoryStatusCache) Put(ctx context.Context, job *syncdomain.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[job.ID] = statusEntry{
		projection: *appsync.ProjectionFromJob(job),
		expiresAt:  time.Now().Add(c.ttl),
	}
	return nil
}

// Get returns the cached projection, or nil on a miss
func (c *InMemoryStatusCache) Get(ctx context.Context, jobID uuid.UUID) (*appsync.StatusProjection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[jobID]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, nil
	}

	projection := e.projection
	return &projection, nil
}

// Close stops the janitor. Safe to call multiple times.
func (c *InMemoryStatusCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryStatusCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryStatusCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for jobID, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, jobID)
		}
	}
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryStatusCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryStatusCache implements StatusCache
var _ appsync.StatusCache = (*InMemoryStatusCache)(nil)
