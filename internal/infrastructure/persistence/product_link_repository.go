package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/shared"
)

// GormProductLinkRepository implements integration.ProductLinkRepository using GORM
type GormProductLinkRepository struct {
	db *gorm.DB
}

// NewGormProductLinkRepository creates a new GormProductLinkRepository
func NewGormProductLinkRepository(db *gorm.DB) *GormProductLinkRepository {
	return &GormProductLinkRepository{db: db}
}

// UpsertBatch inserts or re-points links, keyed by
// (tenant_id, platform_product_id, platform_variant_id)
func (r *GormProductLinkRepository) UpsertBatch(ctx context.Context, links []*integration.ProductLink) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "platform_product_id"},
			{Name: "platform_variant_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"local_product_id", "local_variant_id", "label",
			"last_synced_at", "updated_at",
		}),
	}).CreateInBatches(links, 200).Error
}

// FindByPlatformVariant resolves one (product, variant) pair
func (r *GormProductLinkRepository) FindByPlatformVariant(ctx context.Context, tenantID uuid.UUID, platformProductID, platformVariantID string) (*integration.ProductLink, error) {
	var link integration.ProductLink
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_product_id = ? AND platform_variant_id = ?",
			tenantID, platformProductID, platformVariantID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// FindByPlatformProductIDs returns all links for the given platform products
func (r *GormProductLinkRepository) FindByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]integration.ProductLink, error) {
	if len(platformProductIDs) == 0 {
		return []integration.ProductLink{}, nil
	}
	var links []integration.ProductLink
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_product_id IN ?", tenantID, platformProductIDs).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Ensure GormProductLinkRepository implements ProductLinkRepository
var _ integration.ProductLinkRepository = (*GormProductLinkRepository)(nil)
