// Package catalog holds the normalized product model. Products are
// independently creatable (manual entry, other integrations); the sync
// linker only sets PlatformProductID on records it owns.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
	ProductStatusDraft    ProductStatus = "draft"
)

// IsValid returns true if the status is valid
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusArchived, ProductStatusDraft:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product represents a normalized product
type Product struct {
	shared.TenantEntity
	// PlatformProductID is the external id this product was last synced
	// from; nil for manually created products
	PlatformProductID *string       `gorm:"type:varchar(100);index:idx_products_tenant_platform,priority:2"`
	Title             string        `gorm:"type:varchar(255);not null"`
	Description       string        `gorm:"type:text"`
	Vendor            string        `gorm:"type:varchar(255)"`
	ProductType       string        `gorm:"type:varchar(255)"`
	Handle            string        `gorm:"type:varchar(255);index"`
	Status            ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Active            bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, title string) (*Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "product title is required")
	}
	return &Product{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Title:        title,
		Status:       ProductStatusActive,
		Active:       true,
	}, nil
}

// LinkPlatform records the external id this product is synced from
func (p *Product) LinkPlatform(platformProductID string) {
	p.PlatformProductID = &platformProductID
	p.Touch()
}

// Deactivate soft-deletes the product (platform-side deletion)
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// Variant represents one sellable variant of a product. Option1-3 are the
// positional option values; the platform allows at most three options and
// values beyond the third slot are dropped at transform time.
type Variant struct {
	shared.TenantEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	// PlatformVariantID is the external id this variant was last synced from
	PlatformVariantID *string         `gorm:"type:varchar(100);index:idx_variants_tenant_platform,priority:2"`
	Title             string          `gorm:"type:varchar(255)"`
	SKU               string          `gorm:"type:varchar(100);index"`
	Barcode           string          `gorm:"type:varchar(100)"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CompareAtPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Position          int             `gorm:"not null;default:0"`
	InventoryQuantity int64           `gorm:"not null;default:0"`
	Option1           string          `gorm:"type:varchar(255)"`
	Option2           string          `gorm:"type:varchar(255)"`
	Option3           string          `gorm:"type:varchar(255)"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a new variant under a product
func NewVariant(tenantID, productID uuid.UUID) *Variant {
	return &Variant{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    productID,
		Price:        decimal.Zero,
		Active:       true,
	}
}

// Deactivate soft-deletes the variant
func (v *Variant) Deactivate() {
	v.Active = false
	v.Touch()
}
