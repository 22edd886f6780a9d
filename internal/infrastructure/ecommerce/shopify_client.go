package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/storesync/backend/internal/domain/integration"
)

// Backoff schedules, indexed by completed attempts. Throttling gets longer
// delays so the platform's leaky bucket can drain.
var (
	throttleBackoff  = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}
	transientBackoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
)

// ShopifyGateway implements integration.StorefrontGateway against the Shopify
// Admin GraphQL API. It holds no per-tenant state; shop domain and token
// arrive with each call, and the rate limiter is the process-wide request
// budget shared by all concurrent sync runs.
type ShopifyGateway struct {
	config     ShopifyConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewShopifyGateway creates a Shopify Admin API gateway
func NewShopifyGateway(config ShopifyConfig, limiter *rate.Limiter, logger *zap.Logger) (*ShopifyGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &ShopifyGateway{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
		logger:     logger.Named("shopify"),
	}, nil
}

// FetchProducts returns one page of products
func (g *ShopifyGateway) FetchProducts(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.ProductPage, error) {
	data, err := g.execute(ctx, creds, productsQuery, g.variables(req))
	if err != nil {
		return nil, err
	}
	return decodeProductPage(data)
}

// FetchOrders returns one page of orders
func (g *ShopifyGateway) FetchOrders(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.OrderPage, error) {
	data, err := g.execute(ctx, creds, ordersQuery, g.variables(req))
	if err != nil {
		return nil, err
	}
	return decodeOrderPage(data)
}

// FetchCustomers returns one page of customers
func (g *ShopifyGateway) FetchCustomers(ctx context.Context, creds integration.Credentials, req integration.PageRequest) (*integration.CustomerPage, error) {
	data, err := g.execute(ctx, creds, customersQuery, g.variables(req))
	if err != nil {
		return nil, err
	}
	return decodeCustomerPage(data)
}

func (g *ShopifyGateway) variables(req integration.PageRequest) map[string]any {
	vars := map[string]any{
		"first": clampPageSize(req.PageSize),
	}
	if req.Cursor != "" {
		vars["after"] = req.Cursor
	}
	if search := buildSearchQuery(req.Filter); search != "" {
		vars["query"] = search
	}
	return vars
}

func clampPageSize(size int) int {
	if size <= 0 {
		return 50
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// execute runs one GraphQL operation with bounded retry. Throttled and
// transient failures are retried up to MaxRetries times; auth and query
// errors propagate immediately.
func (g *ShopifyGateway) execute(ctx context.Context, creds integration.Credentials, query string, vars map[string]any) (json.RawMessage, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, err := g.doRequest(ctx, creds, query, vars)
		if err == nil {
			return data, nil
		}
		if !integration.IsThrottled(err) && !integration.IsTransient(err) {
			return nil, err
		}
		if attempt >= g.config.MaxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %w", integration.ErrRetriesExhausted, attempt+1, err)
		}

		delay := backoffDelay(err, attempt)
		g.logger.Warn("Retrying storefront request",
			zap.String("shop", creds.ShopDomain),
			zap.String("operation", queryFragment(query)),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err))

		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func backoffDelay(err error, attempt int) time.Duration {
	schedule := transientBackoff
	if integration.IsThrottled(err) {
		schedule = throttleBackoff
	}
	if attempt >= len(schedule) {
		attempt = len(schedule) - 1
	}
	return schedule[attempt]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *ShopifyGateway) endpoint(creds integration.Credentials) string {
	if g.config.BaseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", g.config.BaseURL, g.config.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", creds.ShopDomain, g.config.APIVersion)
}

// doRequest performs a single GraphQL POST and classifies the outcome into
// the integration package's sentinel errors.
func (g *ShopifyGateway) doRequest(ctx context.Context, creds integration.Credentials, query string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(creds), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP 429", integration.ErrPlatformThrottled)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: HTTP 400", integration.ErrPlatformBadQuery)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformInvalidResponse, resp.StatusCode)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	// Rate-limited GraphQL requests come back as 200 with a THROTTLED
	// error code in the body
	if len(envelope.Errors) > 0 {
		if envelope.throttled() {
			return nil, fmt.Errorf("%w: %s", integration.ErrPlatformThrottled, envelope.errorMessages())
		}
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformBadQuery, envelope.errorMessages())
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: empty data", integration.ErrPlatformInvalidResponse)
	}
	return envelope.Data, nil
}

// Ensure ShopifyGateway implements StorefrontGateway
var _ integration.StorefrontGateway = (*ShopifyGateway)(nil)
