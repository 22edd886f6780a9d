package sync

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/shared"
)

// Transformers are total functions from platform records to staging rows:
// they never fail for schema-valid input and substitute defaults for every
// optional field. Money stays decimal text end to end.

// maxVariantOptions is the platform's positional option limit. Values past
// the third slot are dropped; the engine logs when that happens.
const maxVariantOptions = 3

// TransformProduct maps one platform product to a product staging row plus
// one variant staging row per variant. The second return reports how many
// variants carried more options than the positional slots can hold.
func TransformProduct(tenantID uuid.UUID, p *integration.PlatformProduct, syncedAt time.Time) (*integration.StagedProduct, []*integration.StagedVariant, int) {
	staged := &integration.StagedProduct{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		PlatformProductID: p.ID,
		Title:             p.Title,
		Description:       p.Description,
		Vendor:            p.Vendor,
		ProductType:       p.ProductType,
		Handle:            p.Handle,
		Status:            strings.ToLower(p.Status),
		Tags:              p.Tags,
		PublishedAt:       p.PublishedAt,
		PlatformCreatedAt: p.CreatedAt,
		PlatformUpdatedAt: p.UpdatedAt,
		SyncedAt:          syncedAt,
		Active:            true,
		Raw:               rawJSON(p.Raw),
	}

	truncated := 0
	variants := make([]*integration.StagedVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		opt1, opt2, opt3 := positionalOptions(v.SelectedOptions)
		if len(v.SelectedOptions) > maxVariantOptions {
			truncated++
		}
		variants = append(variants, &integration.StagedVariant{
			TenantEntity:      shared.NewTenantEntity(tenantID),
			PlatformVariantID: v.ID,
			PlatformProductID: p.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Barcode:           v.Barcode,
			Price:             defaultAmount(v.Price),
			CompareAtPrice:    v.CompareAtPrice,
			Position:          v.Position,
			InventoryQuantity: v.InventoryQuantity,
			Option1:           opt1,
			Option2:           opt2,
			Option3:           opt3,
			PlatformUpdatedAt: v.UpdatedAt,
			SyncedAt:          syncedAt,
			Active:            true,
			Raw:               rawJSON(v.Raw),
		})
	}
	return staged, variants, truncated
}

// TransformOrder maps one platform order to an order staging row, including
// the derived fulfillment kind.
func TransformOrder(tenantID uuid.UUID, o *integration.PlatformOrder, syncedAt time.Time) *integration.StagedOrder {
	return &integration.StagedOrder{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		PlatformOrderID:    o.ID,
		Name:               o.Name,
		Email:              strings.ToLower(strings.TrimSpace(o.Email)),
		Phone:              o.Phone,
		Currency:           o.Currency,
		FinancialStatus:    strings.ToLower(o.FinancialStatus),
		FulfillmentStatus:  strings.ToLower(o.FulfillmentStatus),
		FulfillmentKind:    ClassifyFulfillment(o),
		SubtotalPrice:      defaultAmount(o.SubtotalPrice),
		TotalPrice:         defaultAmount(o.TotalPrice),
		TotalTax:           defaultAmount(o.TotalTax),
		TotalDiscounts:     defaultAmount(o.TotalDiscounts),
		Tags:               o.Tags,
		Note:               o.Note,
		NoteAttributes:     marshalJSON(o.NoteAttributes),
		ShippingLines:      marshalJSON(o.ShippingLines),
		LineItems:          marshalJSON(o.LineItems),
		PlatformCustomerID: o.CustomerID,
		ShippingAddress:    marshalJSON(o.ShippingAddress),
		BillingAddress:     marshalJSON(o.BillingAddress),
		PlatformCreatedAt:  o.CreatedAt,
		PlatformUpdatedAt:  o.UpdatedAt,
		ProcessedAt:        o.ProcessedAt,
		CancelledAt:        o.CancelledAt,
		ClosedAt:           o.ClosedAt,
		SyncedAt:           syncedAt,
		Active:             true,
		Raw:                rawJSON(o.Raw),
	}
}

// TransformCustomer maps one platform customer to a customer staging row.
// Marketing-consent and address sub-objects are copied verbatim as JSON.
func TransformCustomer(tenantID uuid.UUID, c *integration.PlatformCustomer, syncedAt time.Time) *integration.StagedCustomer {
	return &integration.StagedCustomer{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		PlatformCustomerID: c.ID,
		Email:              strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:              c.Phone,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		OrdersCount:        c.OrdersCount,
		TotalSpent:         defaultAmount(c.TotalSpent),
		State:              strings.ToLower(c.State),
		VerifiedEmail:      c.VerifiedEmail,
		Tags:               c.Tags,
		Note:               c.Note,
		MarketingConsent:   rawJSON(c.MarketingConsent),
		DefaultAddress:     marshalJSON(c.DefaultAddress),
		Addresses:          marshalJSON(c.Addresses),
		PlatformCreatedAt:  c.CreatedAt,
		PlatformUpdatedAt:  c.UpdatedAt,
		SyncedAt:           syncedAt,
		Active:             true,
		Raw:                rawJSON(c.Raw),
	}
}

// positionalOptions extracts the first three option values in order.
func positionalOptions(opts []integration.PlatformSelectedOption) (string, string, string) {
	var vals [maxVariantOptions]string
	for i, opt := range opts {
		if i >= maxVariantOptions {
			break
		}
		vals[i] = opt.Value
	}
	return vals[0], vals[1], vals[2]
}

// defaultAmount substitutes "0" for an absent money field.
func defaultAmount(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}

func rawJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

// marshalJSON serializes a sub-object, returning nil for nil input or the
// (practically unreachable) marshal failure so transforms stay total.
func marshalJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	return datatypes.JSON(b)
}
