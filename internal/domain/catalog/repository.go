package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// ProductRepository persists products
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	CreateBatch(ctx context.Context, products []*Product) error
	Update(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByPlatformIDs batch-fetches products by their external ids,
	// bounding the linker's lookups to one query per page.
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]Product, error)

	// FindByPlatformID returns shared.ErrNotFound when no product is
	// linked to the given external id.
	FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*Product, error)
}

// VariantRepository persists variants
type VariantRepository interface {
	Create(ctx context.Context, variant *Variant) error
	CreateBatch(ctx context.Context, variants []*Variant) error
	Update(ctx context.Context, variant *Variant) error
	FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) ([]Variant, error)
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]Variant, error)
}
