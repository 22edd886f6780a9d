package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupeKeyPrefix = "webhook:dedupe:"

// RedisDedupeStore implements DedupeStore using Redis. Suitable for
// distributed deployments where every instance must agree on which
// deliveries were already handled.
type RedisDedupeStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDedupeStore creates a Redis-based dedupe store
func NewRedisDedupeStore(cfg RedisConfig) (*RedisDedupeStore, error) {
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

	return NewRedisDedupeStoreWithClient(client, defaultDedupeKeyPrefix), nil
}

// NewRedisDedupeStoreWithClient creates a store with an existing Redis client
func NewRedisDedupeStoreWithClient(client *redis.Client, keyPrefix string) *RedisDedupeStore {
	if keyPrefix == "" {
		keyPrefix = defaultDedupeKeyPrefix
	}
	return &RedisDedupeStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a delivery id with SETNX so concurrent deliveries of
// the same id resolve to exactly one winner
func (s *RedisDedupeStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+deliveryID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery as processed: %w", err)
	}
	return result, nil
}

// IsProcessed reports whether a delivery id has been seen
func (s *RedisDedupeStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+deliveryID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check delivery: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisDedupeStore) Close() error {
	return s.client.Close()
}

// Ensure RedisDedupeStore implements DedupeStore
var _ DedupeStore = (*RedisDedupeStore)(nil)
