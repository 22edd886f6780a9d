package integration

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// ProductLink Entity
// ---------------------------------------------------------------------------

// ProductLink maps a (platform product, platform variant) pair to the local
// product/variant it currently resolves to. Order line items resolve through
// this table instead of re-deriving the mapping on every sync. Upserted
// whenever a product or variant is created or re-linked.
type ProductLink struct {
	shared.TenantEntity
	PlatformProductID string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_link_tenant_pair,priority:2"`
	PlatformVariantID string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_link_tenant_pair,priority:3"`
	LocalProductID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	LocalVariantID    *uuid.UUID `gorm:"type:uuid"`
	// Label is a human-readable description, e.g. "Mug / Large / Blue"
	Label        string    `gorm:"type:varchar(512)"`
	LastSyncedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductLink) TableName() string {
	return "product_links"
}

// NewProductLink creates a link for a (product, variant) pair.
func NewProductLink(tenantID uuid.UUID, platformProductID, platformVariantID string, localProductID uuid.UUID) *ProductLink {
	return &ProductLink{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		PlatformProductID: platformProductID,
		PlatformVariantID: platformVariantID,
		LocalProductID:    localProductID,
		LastSyncedAt:      time.Now(),
	}
}

// ---------------------------------------------------------------------------
// ProductLinkRepository Interface
// ---------------------------------------------------------------------------

// ProductLinkRepository persists cross-reference links. UpsertBatch is keyed
// by (tenant_id, platform_product_id, platform_variant_id).
type ProductLinkRepository interface {
	UpsertBatch(ctx context.Context, links []*ProductLink) error

	// FindByPlatformVariant resolves one (product, variant) pair.
	// Returns shared.ErrNotFound when no link exists.
	FindByPlatformVariant(ctx context.Context, tenantID uuid.UUID, platformProductID, platformVariantID string) (*ProductLink, error)

	// FindByPlatformProductIDs returns all links for the given platform
	// product ids, used to resolve a page of order line items in one query.
	FindByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]ProductLink, error)
}
