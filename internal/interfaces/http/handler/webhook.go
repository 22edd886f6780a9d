package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// WebhookDeliveryHeader carries the platform's unique delivery id, used to
// suppress redelivered events.
const WebhookDeliveryHeader = "X-Webhook-ID"

// deliveries older than this are assumed not to be redelivered
const webhookDedupeTTL = 24 * time.Hour

// WebhookProcessor re-syncs a single platform record in response to a
// webhook event. Implemented by application/sync.WebhookService.
type WebhookProcessor interface {
	Handle(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind, platformID string, action appsync.WebhookAction) error
}

// WebhookHandler handles platform webhook deliveries
type WebhookHandler struct {
	BaseHandler
	processor WebhookProcessor
	dedupe    cache.DedupeStore
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. The dedupe store is
// optional; without it every delivery is processed.
func NewWebhookHandler(processor WebhookProcessor, dedupe cache.DedupeStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		dedupe:    dedupe,
		logger:    logger.Named("webhook-handler"),
	}
}

// WebhookRequest represents one platform change notification
type WebhookRequest struct {
	PlatformID string `json:"platform_id" binding:"required,min=1,max=100"`
}

// WebhookResponse acknowledges a processed delivery
type WebhookResponse struct {
	PlatformID string `json:"platform_id"`
	Action     string `json:"action"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

// RegisterRoutes registers webhook endpoints on the given router group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/:kind/:action", h.Receive)
}

// Receive processes one webhook delivery. The path encodes the platform
// topic, e.g. POST /webhooks/products/update.
func (h *WebhookHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "tenant id is required")
		return
	}

	kind := syncdomain.EntityKind(c.Param("kind"))
	action := appsync.WebhookAction(c.Param("action"))

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if duplicate := h.isDuplicate(c, tenantID); duplicate {
		h.Success(c, WebhookResponse{
			PlatformID: req.PlatformID,
			Action:     string(action),
			Duplicate:  true,
		})
		return
	}

	if err := h.processor.Handle(c.Request.Context(), tenantID, kind, req.PlatformID, action); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, WebhookResponse{
		PlatformID: req.PlatformID,
		Action:     string(action),
	})
}

// isDuplicate marks the delivery id processed and reports whether it had
// been seen before. Dedupe failures are logged and treated as first
// deliveries; reprocessing is safe, dropping an event is not.
func (h *WebhookHandler) isDuplicate(c *gin.Context, tenantID uuid.UUID) bool {
	deliveryID := c.GetHeader(WebhookDeliveryHeader)
	if h.dedupe == nil || deliveryID == "" {
		return false
	}

	key := tenantID.String() + ":" + deliveryID
	first, err := h.dedupe.MarkProcessed(c.Request.Context(), key, webhookDedupeTTL)
	if err != nil {
		h.logger.Warn("webhook dedupe check failed",
			zap.String("delivery_id", deliveryID),
			zap.Error(err),
		)
		return false
	}
	return !first
}
