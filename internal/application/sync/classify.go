package sync

import (
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/trade"
)

// Classification chains are ordered (predicate, result) rules evaluated top
// to bottom; the first matching rule wins. Keeping them as explicit rule
// lists makes the precedence auditable and testable in isolation.

// ---------------------------------------------------------------------------
// Fulfillment classification
// ---------------------------------------------------------------------------

// Note-attribute names the storefront's checkout apps use to encode the
// fulfillment method.
const (
	attrCheckoutMethod   = "checkout method"
	attrPickupLocation   = "pickup location"
	attrDeliveryDate     = "delivery date"
	attrDeliveryTime     = "delivery time"
	attrPickupDate       = "pickup date"
	attrShippingFallback = "shipping"
)

type fulfillmentRule struct {
	matches func(o *integration.PlatformOrder) bool
	kind    integration.FulfillmentKind
}

var fulfillmentRules = []fulfillmentRule{
	// Structured checkout-method attribute is authoritative.
	{matchesAttrValue(attrCheckoutMethod, "pickup"), integration.FulfillmentKindPickup},
	{matchesAttrValue(attrCheckoutMethod, "delivery"), integration.FulfillmentKindDelivery},
	{matchesAttrValue(attrCheckoutMethod, "shipping"), integration.FulfillmentKindShipping},
	// A pickup location or pickup date implies pickup even without an
	// explicit method attribute.
	{hasAttr(attrPickupLocation), integration.FulfillmentKindPickup},
	{hasAttr(attrPickupDate), integration.FulfillmentKindPickup},
	{hasAttr(attrDeliveryDate), integration.FulfillmentKindDelivery},
	// Shipping line title/code keywords.
	{shippingLineContains("pickup", "pick up", "pick-up"), integration.FulfillmentKindPickup},
	{shippingLineContains("local delivery", "delivery"), integration.FulfillmentKindDelivery},
	// Order tags as a last resort.
	{tagContains("pickup"), integration.FulfillmentKindPickup},
	{tagContains("delivery"), integration.FulfillmentKindDelivery},
}

// ClassifyFulfillment derives the fulfillment kind for an order. Orders that
// match no rule default to shipping.
func ClassifyFulfillment(o *integration.PlatformOrder) integration.FulfillmentKind {
	for _, rule := range fulfillmentRules {
		if rule.matches(o) {
			return rule.kind
		}
	}
	return integration.FulfillmentKindShipping
}

func matchesAttrValue(name, value string) func(*integration.PlatformOrder) bool {
	return func(o *integration.PlatformOrder) bool {
		for _, attr := range o.NoteAttributes {
			if strings.EqualFold(strings.TrimSpace(attr.Name), name) &&
				strings.Contains(strings.ToLower(attr.Value), value) {
				return true
			}
		}
		return false
	}
}

func hasAttr(name string) func(*integration.PlatformOrder) bool {
	return func(o *integration.PlatformOrder) bool {
		for _, attr := range o.NoteAttributes {
			if strings.EqualFold(strings.TrimSpace(attr.Name), name) && strings.TrimSpace(attr.Value) != "" {
				return true
			}
		}
		return false
	}
}

func shippingLineContains(keywords ...string) func(*integration.PlatformOrder) bool {
	return func(o *integration.PlatformOrder) bool {
		for _, line := range o.ShippingLines {
			haystack := strings.ToLower(line.Title + " " + line.Code)
			for _, kw := range keywords {
				if strings.Contains(haystack, kw) {
					return true
				}
			}
		}
		return false
	}
}

func tagContains(keyword string) func(*integration.PlatformOrder) bool {
	return func(o *integration.PlatformOrder) bool {
		for _, tag := range strings.Split(o.Tags, ",") {
			if strings.Contains(strings.ToLower(tag), keyword) {
				return true
			}
		}
		return false
	}
}

// ---------------------------------------------------------------------------
// Order status mapping
// ---------------------------------------------------------------------------

type statusRule struct {
	matches func(o *integration.PlatformOrder) bool
	status  trade.OrderStatus
}

var statusRules = []statusRule{
	{func(o *integration.PlatformOrder) bool {
		return strings.EqualFold(o.FulfillmentStatus, "fulfilled")
	}, trade.OrderStatusCompleted},
	{func(o *integration.PlatformOrder) bool {
		return o.CancelledAt != nil
	}, trade.OrderStatusCancelled},
	{func(o *integration.PlatformOrder) bool {
		return strings.EqualFold(o.FinancialStatus, "paid")
	}, trade.OrderStatusConfirmed},
}

// MapOrderStatus maps platform financial/fulfillment status to the internal
// order status. Unmatched orders stay pending.
func MapOrderStatus(o *integration.PlatformOrder) trade.OrderStatus {
	for _, rule := range statusRules {
		if rule.matches(o) {
			return rule.status
		}
	}
	return trade.OrderStatusPending
}

// ---------------------------------------------------------------------------
// Note classification
// ---------------------------------------------------------------------------

type noteRule struct {
	keywords []string
	kind     trade.NoteKind
}

var noteRules = []noteRule{
	{[]string{"gift", "note"}, trade.NoteKindGift},
	{[]string{"gift", "message"}, trade.NoteKindGift},
	{[]string{"delivery", "instruction"}, trade.NoteKindDeliveryInstruction},
}

// ClassifyNote maps an attribute/property name to a note kind. A rule
// matches when the name contains all of its keywords.
func ClassifyNote(attrName string) trade.NoteKind {
	name := strings.ToLower(attrName)
	for _, rule := range noteRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(name, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.kind
		}
	}
	return trade.NoteKindGeneral
}

// ---------------------------------------------------------------------------
// Due date derivation
// ---------------------------------------------------------------------------

// dueDateFallbackOffset is added to the order date when no explicit
// pickup/delivery date is present.
const dueDateFallbackOffset = 48 * time.Hour

var dueDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// DeriveDueDate derives when the order must be ready, in priority order:
// a date embedded in order tags, then a structured pickup/delivery date
// attribute, then the order date plus a fixed fallback offset.
func DeriveDueDate(o *integration.PlatformOrder) time.Time {
	for _, tag := range strings.Split(o.Tags, ",") {
		if t, ok := parseDate(strings.TrimSpace(tag)); ok {
			return t
		}
	}
	for _, name := range []string{attrPickupDate, attrDeliveryDate} {
		for _, attr := range o.NoteAttributes {
			if strings.EqualFold(strings.TrimSpace(attr.Name), name) {
				if t, ok := parseDate(strings.TrimSpace(attr.Value)); ok {
					return t
				}
			}
		}
	}
	return o.CreatedAt.Add(dueDateFallbackOffset)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
