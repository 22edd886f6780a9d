package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/integration"
)

// stagedConflictTarget returns the conflict target for a staging table keyed
// by (tenant_id, <platform id column>).
func stagedConflictTarget(platformColumn string) []clause.Column {
	return []clause.Column{{Name: "tenant_id"}, {Name: platformColumn}}
}

// GormStagedProductRepository implements integration.StagedProductRepository using GORM
type GormStagedProductRepository struct {
	db *gorm.DB
}

// NewGormStagedProductRepository creates a new GormStagedProductRepository
func NewGormStagedProductRepository(db *gorm.DB) *GormStagedProductRepository {
	return &GormStagedProductRepository{db: db}
}

// UpsertBatch inserts or refreshes staged products. The linker-owned
// local_product_id and webhook bookkeeping columns are preserved on conflict.
func (r *GormStagedProductRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedProduct) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: stagedConflictTarget("platform_product_id"),
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "vendor", "product_type", "handle", "status",
			"tags", "published_at", "platform_created_at", "platform_updated_at",
			"synced_at", "active", "raw", "updated_at",
		}),
	}).CreateInBatches(rows, 200).Error
}

// UpsertVariantBatch inserts or refreshes staged variants
func (r *GormStagedProductRepository) UpsertVariantBatch(ctx context.Context, rows []*integration.StagedVariant) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: stagedConflictTarget("platform_variant_id"),
		DoUpdates: clause.AssignmentColumns([]string{
			"platform_product_id", "title", "sku", "barcode", "price",
			"compare_at_price", "position", "inventory_quantity",
			"option1", "option2", "option3", "platform_updated_at",
			"synced_at", "active", "raw", "updated_at",
		}),
	}).CreateInBatches(rows, 200).Error
}

// FindByPlatformIDs batch-fetches staged products by platform id
func (r *GormStagedProductRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedProduct, error) {
	if len(platformIDs) == 0 {
		return []integration.StagedProduct{}, nil
	}
	var rows []integration.StagedProduct
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_product_id IN ?", tenantID, platformIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindVariantsByPlatformProductIDs batch-fetches staged variants for products
func (r *GormStagedProductRepository) FindVariantsByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]integration.StagedVariant, error) {
	if len(platformProductIDs) == 0 {
		return []integration.StagedVariant{}, nil
	}
	var rows []integration.StagedVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_product_id IN ?", tenantID, platformProductIDs).
		Order("platform_product_id ASC, position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetLocalProduct records the local product a staged row resolved to
func (r *GormStagedProductRepository) SetLocalProduct(ctx context.Context, tenantID uuid.UUID, platformProductID string, localProductID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedProduct{}).
		Where("tenant_id = ? AND platform_product_id = ?", tenantID, platformProductID).
		Updates(map[string]any{"local_product_id": localProductID, "updated_at": time.Now()}).Error
}

// SetLocalVariant records the local variant a staged row resolved to
func (r *GormStagedProductRepository) SetLocalVariant(ctx context.Context, tenantID uuid.UUID, platformVariantID string, localVariantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedVariant{}).
		Where("tenant_id = ? AND platform_variant_id = ?", tenantID, platformVariantID).
		Updates(map[string]any{"local_variant_id": localVariantID, "updated_at": time.Now()}).Error
}

// MarkWebhook stamps the last webhook touch on a staged product
func (r *GormStagedProductRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformProductID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedProduct{}).
		Where("tenant_id = ? AND platform_product_id = ?", tenantID, platformProductID).
		Updates(map[string]any{"last_webhook_at": at, "updated_at": time.Now()}).Error
}

// Deactivate soft-deletes a staged product after a platform-side deletion
func (r *GormStagedProductRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformProductID string) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedProduct{}).
		Where("tenant_id = ? AND platform_product_id = ?", tenantID, platformProductID).
		Updates(map[string]any{"active": false, "updated_at": time.Now()}).Error
}

// Ensure GormStagedProductRepository implements StagedProductRepository
var _ integration.StagedProductRepository = (*GormStagedProductRepository)(nil)
