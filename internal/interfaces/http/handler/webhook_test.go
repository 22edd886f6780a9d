package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

type stubProcessor struct {
	calls int
	last  struct {
		tenantID   uuid.UUID
		kind       syncdomain.EntityKind
		platformID string
		action     appsync.WebhookAction
	}
	err error
}

func (p *stubProcessor) Handle(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind, platformID string, action appsync.WebhookAction) error {
	p.calls++
	p.last.tenantID = tenantID
	p.last.kind = kind
	p.last.platformID = platformID
	p.last.action = action
	return p.err
}

func newWebhookRouter(t *testing.T, processor WebhookProcessor, dedupe cache.DedupeStore) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(middleware.Tenant())
	api := router.Group("/api/v1")
	NewWebhookHandler(processor, dedupe, zap.NewNop()).RegisterRoutes(api)
	return router
}

func postWebhook(t *testing.T, router *gin.Engine, path string, tenantID uuid.UUID, deliveryID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	if deliveryID != "" {
		req.Header.Set(WebhookDeliveryHeader, deliveryID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_ProcessesDelivery(t *testing.T) {
	tenantID := uuid.New()
	processor := &stubProcessor{}
	router := newWebhookRouter(t, processor, nil)

	w := postWebhook(t, router, "/api/v1/webhooks/products/update", tenantID, "", WebhookRequest{PlatformID: "9001"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, processor.calls)
	assert.Equal(t, tenantID, processor.last.tenantID)
	assert.Equal(t, syncdomain.EntityKindProducts, processor.last.kind)
	assert.Equal(t, "9001", processor.last.platformID)
	assert.Equal(t, appsync.WebhookActionUpdate, processor.last.action)
}

func TestWebhookHandler_DeduplicatesRedeliveries(t *testing.T) {
	store := cache.NewInMemoryDedupeStore()
	defer store.Close()

	processor := &stubProcessor{}
	router := newWebhookRouter(t, processor, store)
	tenantID := uuid.New()
	body := WebhookRequest{PlatformID: "9001"}

	first := postWebhook(t, router, "/api/v1/webhooks/orders/create", tenantID, "delivery-1", body)
	second := postWebhook(t, router, "/api/v1/webhooks/orders/create", tenantID, "delivery-1", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, processor.calls)
	assert.NotContains(t, first.Body.String(), `"duplicate"`)
	assert.Contains(t, second.Body.String(), `"duplicate":true`)
}

func TestWebhookHandler_SameDeliveryIDForDifferentTenants(t *testing.T) {
	store := cache.NewInMemoryDedupeStore()
	defer store.Close()

	processor := &stubProcessor{}
	router := newWebhookRouter(t, processor, store)
	body := WebhookRequest{PlatformID: "9001"}

	postWebhook(t, router, "/api/v1/webhooks/orders/create", uuid.New(), "delivery-1", body)
	postWebhook(t, router, "/api/v1/webhooks/orders/create", uuid.New(), "delivery-1", body)

	assert.Equal(t, 2, processor.calls)
}

func TestWebhookHandler_MissingPlatformID(t *testing.T) {
	processor := &stubProcessor{}
	router := newWebhookRouter(t, processor, nil)

	w := postWebhook(t, router, "/api/v1/webhooks/products/update", uuid.New(), "", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, processor.calls)
}

func TestWebhookHandler_UnknownKindRejected(t *testing.T) {
	processor := &stubProcessor{
		err: shared.NewDomainError("INVALID_WEBHOOK", "unknown entity kind: invoices"),
	}
	router := newWebhookRouter(t, processor, nil)

	w := postWebhook(t, router, "/api/v1/webhooks/invoices/update", uuid.New(), "", WebhookRequest{PlatformID: "1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestWebhookHandler_DeleteActionPassedThrough(t *testing.T) {
	processor := &stubProcessor{}
	router := newWebhookRouter(t, processor, nil)

	w := postWebhook(t, router, "/api/v1/webhooks/customers/delete", uuid.New(), "", WebhookRequest{PlatformID: "777"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, appsync.WebhookActionDelete, processor.last.action)
	assert.Equal(t, syncdomain.EntityKindCustomers, processor.last.kind)
}
