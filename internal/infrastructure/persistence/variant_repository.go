package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// Create inserts a new variant
func (r *GormVariantRepository) Create(ctx context.Context, variant *catalog.Variant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// CreateBatch inserts multiple variants
func (r *GormVariantRepository) CreateBatch(ctx context.Context, variants []*catalog.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(variants, 200).Error
}

// Update persists a variant's current state
func (r *GormVariantRepository) Update(ctx context.Context, variant *catalog.Variant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// FindByProductID finds all variants of a product
func (r *GormVariantRepository) FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("position ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByPlatformIDs batch-fetches variants by their external ids
func (r *GormVariantRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]catalog.Variant, error) {
	if len(platformIDs) == 0 {
		return []catalog.Variant{}, nil
	}
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_variant_id IN ?", tenantID, platformIDs).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Ensure GormVariantRepository implements VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
