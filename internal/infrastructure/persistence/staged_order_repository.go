package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/integration"
)

// GormStagedOrderRepository implements integration.StagedOrderRepository using GORM
type GormStagedOrderRepository struct {
	db *gorm.DB
}

// NewGormStagedOrderRepository creates a new GormStagedOrderRepository
func NewGormStagedOrderRepository(db *gorm.DB) *GormStagedOrderRepository {
	return &GormStagedOrderRepository{db: db}
}

// UpsertBatch inserts or refreshes staged orders, preserving the linker-owned
// local_order_id and webhook bookkeeping columns on conflict
func (r *GormStagedOrderRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: stagedConflictTarget("platform_order_id"),
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "currency", "financial_status",
			"fulfillment_status", "fulfillment_kind", "subtotal_price",
			"total_price", "total_tax", "total_discounts", "tags", "note",
			"note_attributes", "shipping_lines", "line_items",
			"platform_customer_id", "shipping_address", "billing_address",
			"platform_created_at", "platform_updated_at", "processed_at",
			"cancelled_at", "closed_at", "synced_at", "active", "raw",
			"updated_at",
		}),
	}).CreateInBatches(rows, 100).Error
}

// FindByPlatformIDs batch-fetches staged orders by platform id
func (r *GormStagedOrderRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedOrder, error) {
	if len(platformIDs) == 0 {
		return []integration.StagedOrder{}, nil
	}
	var rows []integration.StagedOrder
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_order_id IN ?", tenantID, platformIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetLocalOrder records the local order a staged row resolved to
func (r *GormStagedOrderRepository) SetLocalOrder(ctx context.Context, tenantID uuid.UUID, platformOrderID string, localOrderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedOrder{}).
		Where("tenant_id = ? AND platform_order_id = ?", tenantID, platformOrderID).
		Updates(map[string]any{"local_order_id": localOrderID, "updated_at": time.Now()}).Error
}

// MarkWebhook stamps the last webhook touch on a staged order
func (r *GormStagedOrderRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformOrderID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedOrder{}).
		Where("tenant_id = ? AND platform_order_id = ?", tenantID, platformOrderID).
		Updates(map[string]any{"last_webhook_at": at, "updated_at": time.Now()}).Error
}

// Deactivate soft-deletes a staged order after a platform-side deletion
func (r *GormStagedOrderRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedOrder{}).
		Where("tenant_id = ? AND platform_order_id = ?", tenantID, platformOrderID).
		Updates(map[string]any{"active": false, "updated_at": time.Now()}).Error
}

// Ensure GormStagedOrderRepository implements StagedOrderRepository
var _ integration.StagedOrderRepository = (*GormStagedOrderRepository)(nil)
