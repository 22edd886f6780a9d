// Package trade holds the normalized order model derived from synced
// storefront orders.
package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/storesync/backend/internal/domain/shared"
)

// OrderStatus represents the internal lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid returns true if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// FulfillmentType classifies how the order reaches the buyer
type FulfillmentType string

const (
	FulfillmentTypePickup   FulfillmentType = "pickup"
	FulfillmentTypeDelivery FulfillmentType = "delivery"
	FulfillmentTypeShipping FulfillmentType = "shipping"
)

// Order represents a normalized sales order. Address and customer fields are
// set on creation and never re-derived by sync; only status-derived fields
// are refreshed afterwards.
type Order struct {
	shared.TenantEntity
	// PlatformOrderID is the external id this order was synced from
	PlatformOrderID *string         `gorm:"type:varchar(100);index:idx_orders_tenant_platform,priority:2"`
	Number          string          `gorm:"type:varchar(50);index"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid;index"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   string          `gorm:"type:varchar(50)"`
	FulfillmentType FulfillmentType `gorm:"type:varchar(20);not null;default:'shipping'"`
	Currency        string          `gorm:"type:varchar(10)"`
	SubtotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Email           string          `gorm:"type:varchar(255)"`
	Phone           string          `gorm:"type:varchar(50)"`
	ShippingAddress datatypes.JSON  `gorm:"type:jsonb"`
	BillingAddress  datatypes.JSON  `gorm:"type:jsonb"`
	// DueAt is when the order must be ready (pickup/delivery date, or
	// order date plus a fallback offset)
	DueAt       *time.Time ``
	PlacedAt    time.Time  `gorm:"not null"`
	CancelledAt *time.Time ``
	Active      bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order in pending status
func NewOrder(tenantID uuid.UUID, number string, placedAt time.Time) *Order {
	return &Order{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		Number:          number,
		Status:          OrderStatusPending,
		FulfillmentType: FulfillmentTypeShipping,
		SubtotalAmount:  decimal.Zero,
		TotalAmount:     decimal.Zero,
		TaxAmount:       decimal.Zero,
		DiscountAmount:  decimal.Zero,
		PlacedAt:        placedAt,
		Active:          true,
	}
}

// ApplySyncStatus refreshes the status-derived fields from a re-sync.
// Address and customer fields are deliberately left untouched.
func (o *Order) ApplySyncStatus(status OrderStatus, paymentStatus string, cancelledAt *time.Time) {
	o.Status = status
	o.PaymentStatus = paymentStatus
	o.CancelledAt = cancelledAt
	o.Touch()
}

// Deactivate soft-deletes the order (platform-side deletion)
func (o *Order) Deactivate() {
	o.Active = false
	o.Touch()
}

// OrderItem is one line on an order. Items carry no independent identity:
// every sync deletes the order's items and re-inserts them from the current
// external line items.
type OrderItem struct {
	shared.BaseEntity
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ProductID/VariantID are nil for custom items with no catalog match
	ProductID      *uuid.UUID      `gorm:"type:uuid;index"`
	VariantID      *uuid.UUID      `gorm:"type:uuid"`
	PlatformItemID string          `gorm:"type:varchar(100)"`
	Title          string          `gorm:"type:varchar(255);not null"`
	VariantTitle   string          `gorm:"type:varchar(255)"`
	SKU            string          `gorm:"type:varchar(100)"`
	Quantity       int             `gorm:"not null;default:1"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Properties     datatypes.JSON  `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// IsCustom returns true when the item resolved to no catalog product
func (i OrderItem) IsCustom() bool {
	return i.ProductID == nil
}
