package ecommerce

import (
	"errors"
	"time"
)

// ShopifyConfig holds the per-process settings of the Shopify Admin API
// client. Shop domain and access token are per-tenant and travel with each
// call as integration.Credentials.
type ShopifyConfig struct {
	// APIVersion is the Admin API version segment, e.g. "2024-10"
	APIVersion string
	// BaseURL, when set, replaces the https://{shop} base of every request.
	// Used for mock servers and API proxies; empty in production.
	BaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// MaxRetries is the retry ceiling for throttled and transient failures
	MaxRetries int
}

const (
	// DefaultAPIVersion is the Admin API version used when none is configured
	DefaultAPIVersion = "2024-10"
	// maxPageSize is the largest page the Admin API serves per connection
	maxPageSize = 250
	// maxResponseSize caps response reads; a product page with inlined
	// variants can run to several MB
	maxResponseSize = 20 << 20
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigInvalidTimeout = errors.New("shopify: timeout must be positive")
	ErrShopifyConfigInvalidRetries = errors.New("shopify: max retries must not be negative")
)

// NewShopifyConfig creates a Shopify client configuration with defaults
func NewShopifyConfig() ShopifyConfig {
	return ShopifyConfig{
		APIVersion: DefaultAPIVersion,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// Validate validates the Shopify client configuration
func (c *ShopifyConfig) Validate() error {
	if c.Timeout <= 0 {
		return ErrShopifyConfigInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrShopifyConfigInvalidRetries
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	return nil
}
