package integration

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials identifies one tenant's storefront and authorizes API access.
type Credentials struct {
	// ShopDomain is the storefront's domain, e.g. "acme.mystorefront.com"
	ShopDomain string
	// AccessToken is the bearer token for the Admin API
	AccessToken string
}

// Validate checks that the credentials are usable
func (c Credentials) Validate() error {
	if c.ShopDomain == "" || c.AccessToken == "" {
		return ErrCredentialsMissing
	}
	return nil
}

// ---------------------------------------------------------------------------
// Paging
// ---------------------------------------------------------------------------

// PullFilter narrows a page fetch server-side.
type PullFilter struct {
	// UpdatedAfter restricts results to records updated after this instant.
	// Nil means no time filter (full sync).
	UpdatedAfter *time.Time
	// IDs restricts results to the given platform ids (webhook re-sync).
	IDs []string
}

// PageRequest describes one cursor-paginated fetch.
type PageRequest struct {
	// Cursor is the end cursor of the previous page; empty for the first page
	Cursor string
	// PageSize is the number of records to request. The gateway clamps it
	// to the platform maximum.
	PageSize int
	// Filter is the optional server-side filter
	Filter PullFilter
}

// PageInfo carries forward-pagination state returned by the platform.
type PageInfo struct {
	// EndCursor is the cursor to pass to the next PageRequest
	EndCursor string
	// HasNextPage indicates whether another page exists
	HasNextPage bool
}

// ProductPage is one page of products with pagination state.
type ProductPage struct {
	Products []PlatformProduct
	PageInfo PageInfo
}

// OrderPage is one page of orders with pagination state.
type OrderPage struct {
	Orders   []PlatformOrder
	PageInfo PageInfo
}

// CustomerPage is one page of customers with pagination state.
type CustomerPage struct {
	Customers []PlatformCustomer
	PageInfo  PageInfo
}

// ---------------------------------------------------------------------------
// StorefrontGateway Port Interface
// ---------------------------------------------------------------------------

// StorefrontGateway is the port to the external storefront platform.
// Implementations must be stateless across calls (apart from a shared rate
// budget) so concurrent sync runs for different tenants can share one
// instance. All methods classify platform failures into the sentinel errors
// of this package and perform bounded retry with backoff internally.
type StorefrontGateway interface {
	// FetchProducts returns one page of products
	FetchProducts(ctx context.Context, creds Credentials, req PageRequest) (*ProductPage, error)

	// FetchOrders returns one page of orders
	FetchOrders(ctx context.Context, creds Credentials, req PageRequest) (*OrderPage, error)

	// FetchCustomers returns one page of customers
	FetchCustomers(ctx context.Context, creds Credentials, req PageRequest) (*CustomerPage, error)
}
