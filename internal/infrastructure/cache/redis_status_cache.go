package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
)

const defaultStatusKeyPrefix = "sync:status:"

// RedisStatusCache projects sync job progress into Redis so status polling
// does not hit the job table. Suitable for multi-instance deployments where
// the poller may land on a different instance than the runner.
type RedisStatusCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStatusCache creates a Redis-backed status cache and verifies the
// connection
func NewRedisStatusCache(cfg RedisConfig, ttl time.Duration) (*RedisStatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStatusCacheWithClient(client, defaultStatusKeyPrefix, ttl), nil
}

// NewRedisStatusCacheWithClient creates a cache with an existing Redis
// client. Useful for testing and for sharing one client across components.
func NewRedisStatusCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStatusCache {
	if keyPrefix == "" {
		keyPrefix = defaultStatusKeyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStatusCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Put stores the job's current projection
func (c *RedisStatusCache) Put(ctx context.Context, job *syncdomain.Job) error {
	payload, err := json.Marshal(appsync.ProjectionFromJob(job))
	if err != nil {
		return fmt.Errorf("failed to marshal status projection: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+job.ID.String(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write status projection: %w", err)
	}
	return nil
}

// Get returns the cached projection, or nil on a miss
func (c *RedisStatusCache) Get(ctx context.Context, jobID uuid.UUID) (*appsync.StatusProjection, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+jobID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status projection: %w", err)
	}

	var projection appsync.StatusProjection
	if err := json.Unmarshal(payload, &projection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status projection: %w", err)
	}
	return &projection, nil
}

// Ping verifies the Redis connection, for readiness probes
func (c *RedisStatusCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisStatusCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStatusCache implements StatusCache
var _ appsync.StatusCache = (*RedisStatusCache)(nil)
