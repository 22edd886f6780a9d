package sync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/tagging"
	"github.com/storesync/backend/internal/domain/trade"
)

// OrderLinker derives internal orders, items, tags and notes from a page of
// staged orders.
type OrderLinker struct {
	orders    trade.OrderRepository
	items     trade.OrderItemRepository
	customers partner.CustomerRepository
	links     integration.ProductLinkRepository
	staging   integration.StagedOrderRepository
	tags      *TagService
	notes     *NoteExtractor
	logger    *zap.Logger
}

// NewOrderLinker creates a new OrderLinker
func NewOrderLinker(
	orders trade.OrderRepository,
	items trade.OrderItemRepository,
	customers partner.CustomerRepository,
	links integration.ProductLinkRepository,
	staging integration.StagedOrderRepository,
	tags *TagService,
	notes *NoteExtractor,
	logger *zap.Logger,
) *OrderLinker {
	return &OrderLinker{
		orders:    orders,
		items:     items,
		customers: customers,
		links:     links,
		staging:   staging,
		tags:      tags,
		notes:     notes,
		logger:    logger,
	}
}

// Link derives or refreshes internal orders for the given staged page.
// New orders get their full field set; existing orders only have
// status-derived fields refreshed so manual edits survive re-syncs. Order
// items are always replaced wholesale from the current external line items.
func (l *OrderLinker) Link(ctx context.Context, tenantID uuid.UUID, staged []*integration.StagedOrder) (Result, error) {
	var res Result
	if len(staged) == 0 {
		return res, nil
	}

	platformIDs := make([]string, 0, len(staged))
	for _, so := range staged {
		platformIDs = append(platformIDs, so.PlatformOrderID)
	}
	existing, err := l.orders.FindByPlatformIDs(ctx, tenantID, platformIDs)
	if err != nil {
		return res, err
	}
	byPlatformID := make(map[string]*trade.Order, len(existing))
	for i := range existing {
		o := &existing[i]
		if o.PlatformOrderID != nil {
			byPlatformID[*o.PlatformOrderID] = o
		}
	}

	linkIndex, err := l.loadLinkIndex(ctx, tenantID, staged)
	if err != nil {
		return res, err
	}

	var noteSources []orderNoteSource
	for _, so := range staged {
		order, lineItems, linkErr := l.linkOne(ctx, tenantID, so, byPlatformID[so.PlatformOrderID], linkIndex)
		if linkErr != nil {
			// Persistence failures fail the whole page; anything else is a
			// record-level error.
			var de *shared.DomainError
			if errors.As(linkErr, &de) {
				res.fail(so.PlatformOrderID, "link_order", linkErr)
				continue
			}
			return res, linkErr
		}

		noteSources = append(noteSources, orderNoteSource{
			OrderID:        order.ID,
			Note:           so.Note,
			NoteAttributes: unmarshalAttrs(so.NoteAttributes),
			LineItems:      lineItems,
		})
		if tagErr := l.tags.Apply(ctx, tenantID, tagging.TaggableTypeOrder, order.ID, so.Tags); tagErr != nil {
			return res, tagErr
		}
		res.success()
	}

	if err := l.notes.Replace(ctx, tenantID, noteSources); err != nil {
		return res, err
	}
	return res, nil
}

// linkOne resolves or creates one internal order and replaces its items.
func (l *OrderLinker) linkOne(ctx context.Context, tenantID uuid.UUID, so *integration.StagedOrder, current *trade.Order, linkIndex map[linkKey]*integration.ProductLink) (*trade.Order, []integration.PlatformLineItem, error) {
	status, paymentStatus := mapStagedOrderStatus(so)

	if current == nil {
		order, err := buildOrder(tenantID, so, status, paymentStatus)
		if err != nil {
			return nil, nil, err
		}
		if so.PlatformCustomerID != "" {
			customer, custErr := l.customers.FindByPlatformID(ctx, tenantID, so.PlatformCustomerID)
			switch {
			case custErr == nil:
				order.CustomerID = &customer.ID
			case errors.Is(custErr, shared.ErrNotFound):
				// Customer not synced yet; a later customer sync backfills.
			default:
				return nil, nil, custErr
			}
		}
		if err := l.orders.Create(ctx, order); err != nil {
			return nil, nil, err
		}
		if err := l.staging.SetLocalOrder(ctx, tenantID, so.PlatformOrderID, order.ID); err != nil {
			return nil, nil, err
		}
		current = order
	} else {
		current.ApplySyncStatus(status, paymentStatus, so.CancelledAt)
		if err := l.orders.Update(ctx, current); err != nil {
			return nil, nil, err
		}
	}

	lineItems := unmarshalLineItems(so.LineItems)
	items := make([]*trade.OrderItem, 0, len(lineItems))
	for _, li := range lineItems {
		items = append(items, buildOrderItem(current.ID, li, linkIndex))
	}
	if err := l.items.ReplaceForOrder(ctx, current.ID, items); err != nil {
		return nil, nil, err
	}
	return current, lineItems, nil
}

// ---------------------------------------------------------------------------
// Cross-reference resolution
// ---------------------------------------------------------------------------

type linkKey struct {
	productID string
	variantID string
}

// loadLinkIndex batch-fetches the cross-reference links for every product id
// appearing in the page's line items.
func (l *OrderLinker) loadLinkIndex(ctx context.Context, tenantID uuid.UUID, staged []*integration.StagedOrder) (map[linkKey]*integration.ProductLink, error) {
	idSet := make(map[string]struct{})
	for _, so := range staged {
		for _, li := range unmarshalLineItems(so.LineItems) {
			if li.ProductID != "" {
				idSet[li.ProductID] = struct{}{}
			}
		}
	}
	if len(idSet) == 0 {
		return map[linkKey]*integration.ProductLink{}, nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	links, err := l.links.FindByPlatformProductIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	index := make(map[linkKey]*integration.ProductLink, len(links))
	for i := range links {
		link := &links[i]
		index[linkKey{link.PlatformProductID, link.PlatformVariantID}] = link
	}
	return index, nil
}

// buildOrderItem resolves one line item through the cross-reference mapping,
// falling back to an unlinked custom item when no mapping exists.
func buildOrderItem(orderID uuid.UUID, li integration.PlatformLineItem, linkIndex map[linkKey]*integration.ProductLink) *trade.OrderItem {
	item := &trade.OrderItem{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		PlatformItemID: li.ID,
		Title:          li.Title,
		VariantTitle:   li.VariantTitle,
		SKU:            li.SKU,
		Quantity:       li.Quantity,
		UnitPrice:      parseAmount(li.Price),
		Discount:       parseAmount(li.TotalDiscount),
		Properties:     marshalJSON(li.Properties),
	}
	if link, ok := linkIndex[linkKey{li.ProductID, li.VariantID}]; ok {
		item.ProductID = &link.LocalProductID
		item.VariantID = link.LocalVariantID
	}
	return item
}

// ---------------------------------------------------------------------------
// Field mapping
// ---------------------------------------------------------------------------

func buildOrder(tenantID uuid.UUID, so *integration.StagedOrder, status trade.OrderStatus, paymentStatus string) (*trade.Order, error) {
	order := trade.NewOrder(tenantID, so.Name, so.PlatformCreatedAt)
	id := so.PlatformOrderID
	order.PlatformOrderID = &id
	order.Status = status
	order.PaymentStatus = paymentStatus
	order.FulfillmentType = trade.FulfillmentType(so.FulfillmentKind)
	order.Currency = so.Currency
	order.SubtotalAmount = parseAmount(so.SubtotalPrice)
	order.TotalAmount = parseAmount(so.TotalPrice)
	order.TaxAmount = parseAmount(so.TotalTax)
	order.DiscountAmount = parseAmount(so.TotalDiscounts)
	order.Email = so.Email
	order.Phone = so.Phone
	order.ShippingAddress = so.ShippingAddress
	order.BillingAddress = so.BillingAddress
	order.CancelledAt = so.CancelledAt

	due := DeriveDueDate(&integration.PlatformOrder{
		Tags:           so.Tags,
		NoteAttributes: unmarshalAttrs(so.NoteAttributes),
		CreatedAt:      so.PlatformCreatedAt,
	})
	order.DueAt = &due
	return order, nil
}

// mapStagedOrderStatus applies the fixed status lookup to a staged order:
// fulfilled wins, then a cancellation timestamp, then paid, else pending.
func mapStagedOrderStatus(so *integration.StagedOrder) (trade.OrderStatus, string) {
	return MapOrderStatus(&integration.PlatformOrder{
		FinancialStatus:   so.FinancialStatus,
		FulfillmentStatus: so.FulfillmentStatus,
		CancelledAt:       so.CancelledAt,
	}), so.FinancialStatus
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func unmarshalLineItems(raw []byte) []integration.PlatformLineItem {
	if len(raw) == 0 {
		return nil
	}
	var items []integration.PlatformLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func unmarshalAttrs(raw []byte) []integration.PlatformAttribute {
	if len(raw) == 0 {
		return nil
	}
	var attrs []integration.PlatformAttribute
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil
	}
	return attrs
}
