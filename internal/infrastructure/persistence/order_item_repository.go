package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormOrderItemRepository implements trade.OrderItemRepository using GORM
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new GormOrderItemRepository
func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// ReplaceForOrder deletes an order's items and inserts the given set in one
// transaction. Synced line items are never updated in place.
func (r *GormOrderItemRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []*trade.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&trade.OrderItem{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 200).Error
	})
}

// FindByOrderID finds all items of an order
func (r *GormOrderItemRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]trade.OrderItem, error) {
	var items []trade.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Ensure GormOrderItemRepository implements OrderItemRepository
var _ trade.OrderItemRepository = (*GormOrderItemRepository)(nil)
