package trade

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// OrderRepository persists orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByPlatformID returns shared.ErrNotFound when no order is linked
	// to the given external id.
	FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*Order, error)
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]Order, error)
}

// OrderItemRepository persists order items. ReplaceForOrder implements the
// delete-and-recreate policy for synced line items.
type OrderItemRepository interface {
	ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []*OrderItem) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
}

// OrderNoteRepository persists derived order notes.
type OrderNoteRepository interface {
	// DeleteSyncedForOrders removes all sync-sourced notes for the given
	// orders before re-insertion.
	DeleteSyncedForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) error
	CreateBatch(ctx context.Context, notes []*OrderNote) error
	FindByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]OrderNote, error)
}
