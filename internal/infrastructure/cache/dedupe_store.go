package cache

import (
	"context"
	"time"
)

// DedupeStore suppresses duplicate webhook deliveries. The platform retries
// deliveries aggressively, so the HTTP layer marks each delivery id before
// processing it.
type DedupeStore interface {
	// MarkProcessed marks a delivery id with a TTL. Returns true when the
	// id was newly marked, false when it was already seen.
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a delivery id has been seen
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)

	// Close releases resources
	Close() error
}
