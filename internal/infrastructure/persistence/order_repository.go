package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/trade"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update persists an order's current state
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// FindByID finds an order by ID within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByPlatformID finds the order linked to an external id
func (r *GormOrderRepository) FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_order_id = ?", tenantID, platformID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByPlatformIDs batch-fetches orders by their external ids
func (r *GormOrderRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]trade.Order, error) {
	if len(platformIDs) == 0 {
		return []trade.Order{}, nil
	}
	var orders []trade.Order
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_order_id IN ?", tenantID, platformIDs).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
