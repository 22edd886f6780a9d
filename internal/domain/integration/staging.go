package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/storesync/backend/internal/domain/shared"
)

// Staged records are near-verbatim copies of platform records, keyed by
// (tenant_id, platform id) and refreshed on every sync. They are never
// deleted - a platform-side deletion deactivates the row instead. The
// Local*ID back-references are owned by the linker and are preserved by
// staging upserts.

// ---------------------------------------------------------------------------
// StagedProduct / StagedVariant
// ---------------------------------------------------------------------------

// StagedProduct is the staging copy of a platform product.
type StagedProduct struct {
	shared.TenantEntity
	PlatformProductID string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_staged_product_tenant_platform,priority:2"`
	Title             string         `gorm:"type:varchar(255);not null"`
	Description       string         `gorm:"type:text"`
	Vendor            string         `gorm:"type:varchar(255)"`
	ProductType       string         `gorm:"type:varchar(255)"`
	Handle            string         `gorm:"type:varchar(255)"`
	Status            string         `gorm:"type:varchar(20)"`
	Tags              string         `gorm:"type:text"`
	PublishedAt       *time.Time     ``
	PlatformCreatedAt time.Time      ``
	PlatformUpdatedAt time.Time      `gorm:"index"`
	SyncedAt          time.Time      `gorm:"not null"`
	LastWebhookAt     *time.Time     ``
	Active            bool           `gorm:"not null;default:true"`
	LocalProductID    *uuid.UUID     `gorm:"type:uuid;index"`
	Raw               datatypes.JSON `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (StagedProduct) TableName() string {
	return "staged_products"
}

// StagedVariant is the staging copy of a platform product variant.
// Price fields are decimal text, never float.
type StagedVariant struct {
	shared.TenantEntity
	PlatformVariantID string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_staged_variant_tenant_platform,priority:2"`
	PlatformProductID string         `gorm:"type:varchar(100);not null;index"`
	Title             string         `gorm:"type:varchar(255)"`
	SKU               string         `gorm:"type:varchar(100);index"`
	Barcode           string         `gorm:"type:varchar(100)"`
	Price             string         `gorm:"type:varchar(32)"`
	CompareAtPrice    string         `gorm:"type:varchar(32)"`
	Position          int            `gorm:"not null;default:0"`
	InventoryQuantity int64          `gorm:"not null;default:0"`
	Option1           string         `gorm:"type:varchar(255)"`
	Option2           string         `gorm:"type:varchar(255)"`
	Option3           string         `gorm:"type:varchar(255)"`
	PlatformUpdatedAt time.Time      ``
	SyncedAt          time.Time      `gorm:"not null"`
	Active            bool           `gorm:"not null;default:true"`
	LocalVariantID    *uuid.UUID     `gorm:"type:uuid;index"`
	Raw               datatypes.JSON `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (StagedVariant) TableName() string {
	return "staged_variants"
}

// ---------------------------------------------------------------------------
// StagedOrder
// ---------------------------------------------------------------------------

// FulfillmentKind classifies how an order reaches the buyer. Derived at
// transform time from the order's attributes, shipping lines and tags.
type FulfillmentKind string

const (
	FulfillmentKindPickup   FulfillmentKind = "pickup"
	FulfillmentKindDelivery FulfillmentKind = "delivery"
	FulfillmentKindShipping FulfillmentKind = "shipping"
)

// StagedOrder is the staging copy of a platform order. Line items,
// addresses, note attributes and shipping lines are kept as JSON exactly as
// received; the linker re-reads them when deriving local records.
type StagedOrder struct {
	shared.TenantEntity
	PlatformOrderID    string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_staged_order_tenant_platform,priority:2"`
	Name               string          `gorm:"type:varchar(50)"`
	Email              string          `gorm:"type:varchar(255);index"`
	Phone              string          `gorm:"type:varchar(50)"`
	Currency           string          `gorm:"type:varchar(10)"`
	FinancialStatus    string          `gorm:"type:varchar(50)"`
	FulfillmentStatus  string          `gorm:"type:varchar(50)"`
	FulfillmentKind    FulfillmentKind `gorm:"type:varchar(20);not null;default:'shipping'"`
	SubtotalPrice      string          `gorm:"type:varchar(32)"`
	TotalPrice         string          `gorm:"type:varchar(32)"`
	TotalTax           string          `gorm:"type:varchar(32)"`
	TotalDiscounts     string          `gorm:"type:varchar(32)"`
	Tags               string          `gorm:"type:text"`
	Note               string          `gorm:"type:text"`
	NoteAttributes     datatypes.JSON  `gorm:"type:jsonb"`
	ShippingLines      datatypes.JSON  `gorm:"type:jsonb"`
	LineItems          datatypes.JSON  `gorm:"type:jsonb"`
	PlatformCustomerID string          `gorm:"type:varchar(100);index"`
	ShippingAddress    datatypes.JSON  `gorm:"type:jsonb"`
	BillingAddress     datatypes.JSON  `gorm:"type:jsonb"`
	PlatformCreatedAt  time.Time       ``
	PlatformUpdatedAt  time.Time       `gorm:"index"`
	ProcessedAt        *time.Time      ``
	CancelledAt        *time.Time      ``
	ClosedAt           *time.Time      ``
	SyncedAt           time.Time       `gorm:"not null"`
	LastWebhookAt      *time.Time      ``
	Active             bool            `gorm:"not null;default:true"`
	LocalOrderID       *uuid.UUID      `gorm:"type:uuid;index"`
	Raw                datatypes.JSON  `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (StagedOrder) TableName() string {
	return "staged_orders"
}

// ---------------------------------------------------------------------------
// StagedCustomer
// ---------------------------------------------------------------------------

// StagedCustomer is the staging copy of a platform customer.
type StagedCustomer struct {
	shared.TenantEntity
	PlatformCustomerID string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_staged_customer_tenant_platform,priority:2"`
	Email              string         `gorm:"type:varchar(255);index"`
	Phone              string         `gorm:"type:varchar(50)"`
	FirstName          string         `gorm:"type:varchar(100)"`
	LastName           string         `gorm:"type:varchar(100)"`
	OrdersCount        int64          `gorm:"not null;default:0"`
	TotalSpent         string         `gorm:"type:varchar(32)"`
	State              string         `gorm:"type:varchar(20)"`
	VerifiedEmail      bool           `gorm:"not null;default:false"`
	Tags               string         `gorm:"type:text"`
	Note               string         `gorm:"type:text"`
	MarketingConsent   datatypes.JSON `gorm:"type:jsonb"`
	DefaultAddress     datatypes.JSON `gorm:"type:jsonb"`
	Addresses          datatypes.JSON `gorm:"type:jsonb"`
	PlatformCreatedAt  time.Time      ``
	PlatformUpdatedAt  time.Time      `gorm:"index"`
	SyncedAt           time.Time      `gorm:"not null"`
	LastWebhookAt      *time.Time     ``
	Active             bool           `gorm:"not null;default:true"`
	LocalCustomerID    *uuid.UUID     `gorm:"type:uuid;index"`
	Raw                datatypes.JSON `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (StagedCustomer) TableName() string {
	return "staged_customers"
}

// ---------------------------------------------------------------------------
// Staging Repositories
// ---------------------------------------------------------------------------

// StagedProductRepository persists staged products and variants.
// UpsertBatch methods overwrite every mutable column on conflict except the
// linker-owned local back-reference.
type StagedProductRepository interface {
	UpsertBatch(ctx context.Context, rows []*StagedProduct) error
	UpsertVariantBatch(ctx context.Context, rows []*StagedVariant) error
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]StagedProduct, error)
	FindVariantsByPlatformProductIDs(ctx context.Context, tenantID uuid.UUID, platformProductIDs []string) ([]StagedVariant, error)
	SetLocalProduct(ctx context.Context, tenantID uuid.UUID, platformProductID string, localProductID uuid.UUID) error
	SetLocalVariant(ctx context.Context, tenantID uuid.UUID, platformVariantID string, localVariantID uuid.UUID) error
	MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformProductID string, at time.Time) error
	Deactivate(ctx context.Context, tenantID uuid.UUID, platformProductID string) error
}

// StagedOrderRepository persists staged orders.
type StagedOrderRepository interface {
	UpsertBatch(ctx context.Context, rows []*StagedOrder) error
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]StagedOrder, error)
	SetLocalOrder(ctx context.Context, tenantID uuid.UUID, platformOrderID string, localOrderID uuid.UUID) error
	MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformOrderID string, at time.Time) error
	Deactivate(ctx context.Context, tenantID uuid.UUID, platformOrderID string) error
}

// StagedCustomerRepository persists staged customers.
type StagedCustomerRepository interface {
	UpsertBatch(ctx context.Context, rows []*StagedCustomer) error
	FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]StagedCustomer, error)
	SetLocalCustomer(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, localCustomerID uuid.UUID) error
	MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, at time.Time) error
	Deactivate(ctx context.Context, tenantID uuid.UUID, platformCustomerID string) error
}
