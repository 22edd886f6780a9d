package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	syncdomain "github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/domain/trade"
)

// WebhookAction is the platform-reported change type
type WebhookAction string

const (
	WebhookActionCreate WebhookAction = "create"
	WebhookActionUpdate WebhookAction = "update"
	WebhookActionDelete WebhookAction = "delete"
)

// IsValid returns true if the action is valid
func (a WebhookAction) IsValid() bool {
	switch a {
	case WebhookActionCreate, WebhookActionUpdate, WebhookActionDelete:
		return true
	default:
		return false
	}
}

// WebhookService re-syncs a single platform record in response to a webhook
// event. Create/update runs the normal pipeline against a one-record page;
// delete short-circuits to a soft-deactivate of the staging and internal
// rows.
type WebhookService struct {
	engine          *Engine
	stagedProducts  integration.StagedProductRepository
	stagedOrders    integration.StagedOrderRepository
	stagedCustomers integration.StagedCustomerRepository
	products        catalog.ProductRepository
	variants        catalog.VariantRepository
	orders          trade.OrderRepository
	customers       partner.CustomerRepository
	logger          *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	engine *Engine,
	stagedProducts integration.StagedProductRepository,
	stagedOrders integration.StagedOrderRepository,
	stagedCustomers integration.StagedCustomerRepository,
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	orders trade.OrderRepository,
	customers partner.CustomerRepository,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		engine:          engine,
		stagedProducts:  stagedProducts,
		stagedOrders:    stagedOrders,
		stagedCustomers: stagedCustomers,
		products:        products,
		variants:        variants,
		orders:          orders,
		customers:       customers,
		logger:          logger,
	}
}

// Handle processes one webhook event for one platform record.
func (s *WebhookService) Handle(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind, platformID string, action WebhookAction) error {
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_WEBHOOK", "unknown entity kind: "+string(kind))
	}
	if !action.IsValid() {
		return shared.NewDomainError("INVALID_WEBHOOK", "unknown action: "+string(action))
	}
	if platformID == "" {
		return shared.NewDomainError("INVALID_WEBHOOK", "platform id is required")
	}

	logger := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("entity_kind", kind.String()),
		zap.String("platform_id", platformID),
		zap.String("action", string(action)),
	)

	if action == WebhookActionDelete {
		logger.Info("webhook delete, deactivating record")
		return s.deactivate(ctx, tenantID, kind, platformID)
	}

	logger.Info("webhook resync")
	if err := s.engine.Run(ctx, syncdomain.Request{
		TenantID:    tenantID,
		EntityKind:  kind,
		Mode:        syncdomain.ModeIncremental,
		PlatformIDs: []string{platformID},
	}); err != nil {
		return err
	}
	return s.markWebhook(ctx, tenantID, kind, platformID)
}

// deactivate soft-deletes the staging row and, when linked, the internal
// entity it resolves to.
func (s *WebhookService) deactivate(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind, platformID string) error {
	switch kind {
	case syncdomain.EntityKindProducts:
		if err := s.stagedProducts.Deactivate(ctx, tenantID, platformID); err != nil {
			return err
		}
		// a platform delete drops the whole product, variants included
		if err := s.deactivateVariants(ctx, tenantID, platformID); err != nil {
			return err
		}
		product, err := s.products.FindByPlatformID(ctx, tenantID, platformID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		product.Deactivate()
		return s.products.Update(ctx, product)

	case syncdomain.EntityKindOrders:
		if err := s.stagedOrders.Deactivate(ctx, tenantID, platformID); err != nil {
			return err
		}
		order, err := s.orders.FindByPlatformID(ctx, tenantID, platformID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		order.Deactivate()
		return s.orders.Update(ctx, order)

	default:
		if err := s.stagedCustomers.Deactivate(ctx, tenantID, platformID); err != nil {
			return err
		}
		customer, err := s.customers.FindByPlatformID(ctx, tenantID, platformID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		customer.Deactivate()
		return s.customers.Update(ctx, customer)
	}
}

// deactivateVariants soft-deletes the internal variants that trace back to
// the deleted platform product, resolved through the staged variant rows.
func (s *WebhookService) deactivateVariants(ctx context.Context, tenantID uuid.UUID, platformProductID string) error {
	staged, err := s.stagedProducts.FindVariantsByPlatformProductIDs(ctx, tenantID, []string{platformProductID})
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		return nil
	}

	ids := make([]string, 0, len(staged))
	for _, sv := range staged {
		ids = append(ids, sv.PlatformVariantID)
	}
	variants, err := s.variants.FindByPlatformIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for i := range variants {
		variants[i].Deactivate()
		if err := s.variants.Update(ctx, &variants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *WebhookService) markWebhook(ctx context.Context, tenantID uuid.UUID, kind syncdomain.EntityKind, platformID string) error {
	now := time.Now()
	switch kind {
	case syncdomain.EntityKindProducts:
		return s.stagedProducts.MarkWebhook(ctx, tenantID, platformID, now)
	case syncdomain.EntityKindOrders:
		return s.stagedOrders.MarkWebhook(ctx, tenantID, platformID, now)
	default:
		return s.stagedCustomers.MarkWebhook(ctx, tenantID, platformID, now)
	}
}
