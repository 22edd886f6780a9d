package integration

import (
	"encoding/json"
	"time"
)

// External record shapes as returned by the storefront Admin API. Money is
// kept as decimal text end to end - the platform serializes amounts as
// strings and converting through float64 would introduce drift.

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// PlatformProduct is a product record from the storefront platform.
type PlatformProduct struct {
	// ID is the platform's product id
	ID string
	// Title is the product title
	Title string
	// Description is the plain-text product description
	Description string
	// Vendor is the product vendor/brand
	Vendor string
	// ProductType is the platform's free-form product categorization
	ProductType string
	// Handle is the URL handle/slug
	Handle string
	// Status is the platform status (ACTIVE, ARCHIVED, DRAFT)
	Status string
	// Tags is the comma-separated tag string
	Tags string
	// Options are the product's option definitions, in platform order
	Options []PlatformProductOption
	// Variants are the product's variants
	Variants []PlatformVariant
	// CreatedAt is when the product was created on the platform
	CreatedAt time.Time
	// UpdatedAt is when the product was last updated on the platform
	UpdatedAt time.Time
	// PublishedAt is when the product was published, nil if unpublished
	PublishedAt *time.Time
	// Raw is the original platform payload for forward compatibility
	Raw json.RawMessage
}

// PlatformProductOption is one option definition (e.g. "Size") on a product.
type PlatformProductOption struct {
	Name     string
	Position int
	Values   []string
}

// PlatformVariant is a product variant record from the platform.
type PlatformVariant struct {
	// ID is the platform's variant id
	ID string
	// ProductID is the owning product's platform id
	ProductID string
	// Title is the variant title (joined option values)
	Title string
	// SKU is the merchant-assigned SKU
	SKU string
	// Barcode is the variant barcode (UPC/EAN)
	Barcode string
	// Price is the selling price as decimal text
	Price string
	// CompareAtPrice is the original price as decimal text, empty if unset
	CompareAtPrice string
	// Position is the variant's position within the product
	Position int
	// InventoryQuantity is the available quantity across locations
	InventoryQuantity int64
	// SelectedOptions are the variant's option name/value pairs, in
	// product option order
	SelectedOptions []PlatformSelectedOption
	// UpdatedAt is when the variant was last updated on the platform
	UpdatedAt time.Time
	// Raw is the original platform payload
	Raw json.RawMessage
}

// PlatformSelectedOption is one option value on a variant.
type PlatformSelectedOption struct {
	Name  string
	Value string
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// PlatformOrder is an order record from the storefront platform.
type PlatformOrder struct {
	// ID is the platform's order id
	ID string
	// Name is the human-readable order number, e.g. "#1042"
	Name string
	// Email is the buyer email
	Email string
	// Phone is the buyer phone
	Phone string
	// Currency is the ISO currency code
	Currency string
	// FinancialStatus is the platform payment status (PAID, PENDING, ...)
	FinancialStatus string
	// FulfillmentStatus is the platform fulfillment status (FULFILLED, ...)
	FulfillmentStatus string
	// SubtotalPrice is the pre-tax, pre-shipping total as decimal text
	SubtotalPrice string
	// TotalPrice is the grand total as decimal text
	TotalPrice string
	// TotalTax is the tax total as decimal text
	TotalTax string
	// TotalDiscounts is the discount total as decimal text
	TotalDiscounts string
	// Tags is the comma-separated tag string
	Tags string
	// Note is the free-text order note entered by the buyer or merchant
	Note string
	// NoteAttributes are structured key/value annotations on the order
	NoteAttributes []PlatformAttribute
	// ShippingLines are the order's shipping method lines
	ShippingLines []PlatformShippingLine
	// LineItems are the purchased items
	LineItems []PlatformLineItem
	// CustomerID is the platform id of the buyer, empty for guest checkout
	CustomerID string
	// ShippingAddress is the delivery address, nil for pickup orders
	ShippingAddress *PlatformAddress
	// BillingAddress is the billing address
	BillingAddress *PlatformAddress
	// CreatedAt is when the order was placed
	CreatedAt time.Time
	// UpdatedAt is when the order was last updated on the platform
	UpdatedAt time.Time
	// ProcessedAt is when payment processing completed
	ProcessedAt *time.Time
	// CancelledAt is when the order was cancelled, nil if not cancelled
	CancelledAt *time.Time
	// ClosedAt is when the order was archived/closed
	ClosedAt *time.Time
	// Raw is the original platform payload
	Raw json.RawMessage
}

// PlatformAttribute is a structured name/value annotation. Orders carry them
// as note attributes; line items carry them as custom properties.
type PlatformAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlatformShippingLine is one shipping method line on an order.
type PlatformShippingLine struct {
	Title string `json:"title"`
	Code  string `json:"code"`
	Price string `json:"price"`
}

// PlatformLineItem is one purchased item on an order.
type PlatformLineItem struct {
	// ID is the platform's line item id
	ID string `json:"id"`
	// ProductID is the platform product id, empty for custom items
	ProductID string `json:"product_id"`
	// VariantID is the platform variant id, empty for custom items
	VariantID string `json:"variant_id"`
	// Title is the product title at purchase time
	Title string `json:"title"`
	// VariantTitle is the variant title at purchase time
	VariantTitle string `json:"variant_title"`
	// SKU is the SKU at purchase time
	SKU string `json:"sku"`
	// Quantity is the purchased quantity
	Quantity int `json:"quantity"`
	// Price is the unit price as decimal text
	Price string `json:"price"`
	// TotalDiscount is the line discount as decimal text
	TotalDiscount string `json:"total_discount"`
	// Properties are custom line item properties (e.g. engraving text)
	Properties []PlatformAttribute `json:"properties"`
}

// PlatformAddress is a postal address as the platform represents it.
type PlatformAddress struct {
	Name         string `json:"name"`
	Company      string `json:"company"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone"`
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// PlatformCustomer is a customer record from the storefront platform.
type PlatformCustomer struct {
	// ID is the platform's customer id
	ID string
	// Email is the customer email
	Email string
	// Phone is the customer phone
	Phone string
	// FirstName is the customer's first name
	FirstName string
	// LastName is the customer's last name
	LastName string
	// OrdersCount is the platform's lifetime order count
	OrdersCount int64
	// TotalSpent is the platform's lifetime spend as decimal text
	TotalSpent string
	// State is the platform account state (ENABLED, DISABLED, INVITED)
	State string
	// VerifiedEmail indicates the email was verified on the platform
	VerifiedEmail bool
	// Tags is the comma-separated tag string
	Tags string
	// Note is the merchant's free-text note about the customer
	Note string
	// MarketingConsent is the raw marketing consent sub-object
	MarketingConsent json.RawMessage
	// DefaultAddress is the customer's default address
	DefaultAddress *PlatformAddress
	// Addresses are all addresses on file
	Addresses []PlatformAddress
	// CreatedAt is when the customer was created on the platform
	CreatedAt time.Time
	// UpdatedAt is when the customer was last updated on the platform
	UpdatedAt time.Time
	// Raw is the original platform payload
	Raw json.RawMessage
}
