package ecommerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/integration"
)

// Wire shapes of the Shopify Admin GraphQL API. Node payloads are decoded
// from raw edges so the untouched platform JSON can be stored alongside the
// normalized record.

// ---------------------------------------------------------------------------
// GraphQL envelope
// ---------------------------------------------------------------------------

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message    string                 `json:"message"`
	Extensions graphQLErrorExtensions `json:"extensions"`
}

type graphQLErrorExtensions struct {
	Code string `json:"code"`
}

// errorCodeThrottled is the extensions code Shopify sets on rate-limited
// GraphQL requests, returned with HTTP 200.
const errorCodeThrottled = "THROTTLED"

func (r *graphQLResponse) throttled() bool {
	for _, e := range r.Errors {
		if e.Extensions.Code == errorCodeThrottled {
			return true
		}
	}
	return false
}

func (r *graphQLResponse) errorMessages() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

type graphQLConnection struct {
	Edges    []graphQLEdge   `json:"edges"`
	PageInfo graphQLPageInfo `json:"pageInfo"`
}

type graphQLEdge struct {
	Node json.RawMessage `json:"node"`
}

type graphQLPageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

func (p graphQLPageInfo) toDomain() integration.PageInfo {
	return integration.PageInfo{
		EndCursor:   p.EndCursor,
		HasNextPage: p.HasNextPage,
	}
}

type productsData struct {
	Products graphQLConnection `json:"products"`
}

type ordersData struct {
	Orders graphQLConnection `json:"orders"`
}

type customersData struct {
	Customers graphQLConnection `json:"customers"`
}

// ---------------------------------------------------------------------------
// Shared nodes
// ---------------------------------------------------------------------------

type moneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type moneyBagNode struct {
	ShopMoney moneyNode `json:"shopMoney"`
}

type idNode struct {
	ID string `json:"id"`
}

type attributeNode struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type addressNode struct {
	Name         string `json:"name"`
	Company      string `json:"company"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ProvinceCode string `json:"provinceCode"`
	Country      string `json:"country"`
	CountryCode  string `json:"countryCode"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone"`
}

func (a *addressNode) toDomain() *integration.PlatformAddress {
	if a == nil {
		return nil
	}
	return &integration.PlatformAddress{
		Name:         a.Name,
		Company:      a.Company,
		Address1:     a.Address1,
		Address2:     a.Address2,
		City:         a.City,
		Province:     a.Province,
		ProvinceCode: a.ProvinceCode,
		Country:      a.Country,
		CountryCode:  a.CountryCode,
		Zip:          a.Zip,
		Phone:        a.Phone,
	}
}

func attributesToDomain(attrs []attributeNode) []integration.PlatformAttribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]integration.PlatformAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, integration.PlatformAttribute{Name: a.Key, Value: a.Value})
	}
	return out
}

// joinTags flattens the platform's tag list into the comma-separated form
// the staging tables store.
func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type productNode struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"productType"`
	Handle      string              `json:"handle"`
	Status      string              `json:"status"`
	Tags        []string            `json:"tags"`
	Options     []productOptionNode `json:"options"`
	Variants    graphQLConnection   `json:"variants"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	PublishedAt *time.Time          `json:"publishedAt"`
}

type productOptionNode struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type variantNode struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	SKU               string               `json:"sku"`
	Barcode           string               `json:"barcode"`
	Price             string               `json:"price"`
	CompareAtPrice    string               `json:"compareAtPrice"`
	Position          int                  `json:"position"`
	InventoryQuantity int64                `json:"inventoryQuantity"`
	SelectedOptions   []selectedOptionNode `json:"selectedOptions"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type selectedOptionNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func decodeProductPage(data json.RawMessage) (*integration.ProductPage, error) {
	var payload productsData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: products payload: %v", integration.ErrPlatformInvalidResponse, err)
	}

	page := &integration.ProductPage{
		Products: make([]integration.PlatformProduct, 0, len(payload.Products.Edges)),
		PageInfo: payload.Products.PageInfo.toDomain(),
	}
	for _, edge := range payload.Products.Edges {
		var node productNode
		if err := json.Unmarshal(edge.Node, &node); err != nil {
			return nil, fmt.Errorf("%w: product node: %v", integration.ErrPlatformInvalidResponse, err)
		}

		product := integration.PlatformProduct{
			ID:          node.ID,
			Title:       node.Title,
			Description: node.Description,
			Vendor:      node.Vendor,
			ProductType: node.ProductType,
			Handle:      node.Handle,
			Status:      node.Status,
			Tags:        joinTags(node.Tags),
			CreatedAt:   node.CreatedAt,
			UpdatedAt:   node.UpdatedAt,
			PublishedAt: node.PublishedAt,
			Raw:         edge.Node,
		}
		for _, opt := range node.Options {
			product.Options = append(product.Options, integration.PlatformProductOption{
				Name:     opt.Name,
				Position: opt.Position,
				Values:   opt.Values,
			})
		}

		for _, variantEdge := range node.Variants.Edges {
			var variant variantNode
			if err := json.Unmarshal(variantEdge.Node, &variant); err != nil {
				return nil, fmt.Errorf("%w: variant node: %v", integration.ErrPlatformInvalidResponse, err)
			}
			product.Variants = append(product.Variants, variantToDomain(node.ID, variant, variantEdge.Node))
		}

		page.Products = append(page.Products, product)
	}
	return page, nil
}

func variantToDomain(productID string, node variantNode, raw json.RawMessage) integration.PlatformVariant {
	variant := integration.PlatformVariant{
		ID:                node.ID,
		ProductID:         productID,
		Title:             node.Title,
		SKU:               node.SKU,
		Barcode:           node.Barcode,
		Price:             node.Price,
		CompareAtPrice:    node.CompareAtPrice,
		Position:          node.Position,
		InventoryQuantity: node.InventoryQuantity,
		UpdatedAt:         node.UpdatedAt,
		Raw:               raw,
	}
	for _, opt := range node.SelectedOptions {
		variant.SelectedOptions = append(variant.SelectedOptions, integration.PlatformSelectedOption{
			Name:  opt.Name,
			Value: opt.Value,
		})
	}
	return variant
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type orderNode struct {
	ID                       string            `json:"id"`
	Name                     string            `json:"name"`
	Email                    string            `json:"email"`
	Phone                    string            `json:"phone"`
	CurrencyCode             string            `json:"currencyCode"`
	DisplayFinancialStatus   string            `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string            `json:"displayFulfillmentStatus"`
	SubtotalPriceSet         moneyBagNode      `json:"subtotalPriceSet"`
	TotalPriceSet            moneyBagNode      `json:"totalPriceSet"`
	TotalTaxSet              moneyBagNode      `json:"totalTaxSet"`
	TotalDiscountsSet        moneyBagNode      `json:"totalDiscountsSet"`
	Tags                     []string          `json:"tags"`
	Note                     string            `json:"note"`
	CustomAttributes         []attributeNode   `json:"customAttributes"`
	ShippingLines            graphQLConnection `json:"shippingLines"`
	LineItems                graphQLConnection `json:"lineItems"`
	Customer                 *idNode           `json:"customer"`
	ShippingAddress          *addressNode      `json:"shippingAddress"`
	BillingAddress           *addressNode      `json:"billingAddress"`
	CreatedAt                time.Time         `json:"createdAt"`
	UpdatedAt                time.Time         `json:"updatedAt"`
	ProcessedAt              *time.Time        `json:"processedAt"`
	CancelledAt              *time.Time        `json:"cancelledAt"`
	ClosedAt                 *time.Time        `json:"closedAt"`
}

type shippingLineNode struct {
	Title            string       `json:"title"`
	Code             string       `json:"code"`
	OriginalPriceSet moneyBagNode `json:"originalPriceSet"`
}

type lineItemNode struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	VariantTitle         string          `json:"variantTitle"`
	SKU                  string          `json:"sku"`
	Quantity             int             `json:"quantity"`
	Product              *idNode         `json:"product"`
	Variant              *idNode         `json:"variant"`
	OriginalUnitPriceSet moneyBagNode    `json:"originalUnitPriceSet"`
	TotalDiscountSet     moneyBagNode    `json:"totalDiscountSet"`
	CustomAttributes     []attributeNode `json:"customAttributes"`
}

func decodeOrderPage(data json.RawMessage) (*integration.OrderPage, error) {
	var payload ordersData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: orders payload: %v", integration.ErrPlatformInvalidResponse, err)
	}

	page := &integration.OrderPage{
		Orders:   make([]integration.PlatformOrder, 0, len(payload.Orders.Edges)),
		PageInfo: payload.Orders.PageInfo.toDomain(),
	}
	for _, edge := range payload.Orders.Edges {
		var node orderNode
		if err := json.Unmarshal(edge.Node, &node); err != nil {
			return nil, fmt.Errorf("%w: order node: %v", integration.ErrPlatformInvalidResponse, err)
		}
		order, err := orderToDomain(node, edge.Node)
		if err != nil {
			return nil, err
		}
		page.Orders = append(page.Orders, order)
	}
	return page, nil
}

func orderToDomain(node orderNode, raw json.RawMessage) (integration.PlatformOrder, error) {
	order := integration.PlatformOrder{
		ID:                node.ID,
		Name:              node.Name,
		Email:             node.Email,
		Phone:             node.Phone,
		Currency:          node.CurrencyCode,
		FinancialStatus:   node.DisplayFinancialStatus,
		FulfillmentStatus: node.DisplayFulfillmentStatus,
		SubtotalPrice:     node.SubtotalPriceSet.ShopMoney.Amount,
		TotalPrice:        node.TotalPriceSet.ShopMoney.Amount,
		TotalTax:          node.TotalTaxSet.ShopMoney.Amount,
		TotalDiscounts:    node.TotalDiscountsSet.ShopMoney.Amount,
		Tags:              joinTags(node.Tags),
		Note:              node.Note,
		NoteAttributes:    attributesToDomain(node.CustomAttributes),
		ShippingAddress:   node.ShippingAddress.toDomain(),
		BillingAddress:    node.BillingAddress.toDomain(),
		CreatedAt:         node.CreatedAt,
		UpdatedAt:         node.UpdatedAt,
		ProcessedAt:       node.ProcessedAt,
		CancelledAt:       node.CancelledAt,
		ClosedAt:          node.ClosedAt,
		Raw:               raw,
	}
	if node.Customer != nil {
		order.CustomerID = node.Customer.ID
	}

	for _, lineEdge := range node.ShippingLines.Edges {
		var line shippingLineNode
		if err := json.Unmarshal(lineEdge.Node, &line); err != nil {
			return order, fmt.Errorf("%w: shipping line node: %v", integration.ErrPlatformInvalidResponse, err)
		}
		order.ShippingLines = append(order.ShippingLines, integration.PlatformShippingLine{
			Title: line.Title,
			Code:  line.Code,
			Price: line.OriginalPriceSet.ShopMoney.Amount,
		})
	}

	for _, itemEdge := range node.LineItems.Edges {
		var item lineItemNode
		if err := json.Unmarshal(itemEdge.Node, &item); err != nil {
			return order, fmt.Errorf("%w: line item node: %v", integration.ErrPlatformInvalidResponse, err)
		}
		lineItem := integration.PlatformLineItem{
			ID:            item.ID,
			Title:         item.Title,
			VariantTitle:  item.VariantTitle,
			SKU:           item.SKU,
			Quantity:      item.Quantity,
			Price:         item.OriginalUnitPriceSet.ShopMoney.Amount,
			TotalDiscount: item.TotalDiscountSet.ShopMoney.Amount,
			Properties:    attributesToDomain(item.CustomAttributes),
		}
		if item.Product != nil {
			lineItem.ProductID = item.Product.ID
		}
		if item.Variant != nil {
			lineItem.VariantID = item.Variant.ID
		}
		order.LineItems = append(order.LineItems, lineItem)
	}

	return order, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

type customerNode struct {
	ID                    string          `json:"id"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	FirstName             string          `json:"firstName"`
	LastName              string          `json:"lastName"`
	NumberOfOrders        string          `json:"numberOfOrders"`
	AmountSpent           moneyNode       `json:"amountSpent"`
	State                 string          `json:"state"`
	VerifiedEmail         bool            `json:"verifiedEmail"`
	Tags                  []string        `json:"tags"`
	Note                  string          `json:"note"`
	EmailMarketingConsent json.RawMessage `json:"emailMarketingConsent"`
	DefaultAddress        *addressNode    `json:"defaultAddress"`
	Addresses             []addressNode   `json:"addresses"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func decodeCustomerPage(data json.RawMessage) (*integration.CustomerPage, error) {
	var payload customersData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: customers payload: %v", integration.ErrPlatformInvalidResponse, err)
	}

	page := &integration.CustomerPage{
		Customers: make([]integration.PlatformCustomer, 0, len(payload.Customers.Edges)),
		PageInfo:  payload.Customers.PageInfo.toDomain(),
	}
	for _, edge := range payload.Customers.Edges {
		var node customerNode
		if err := json.Unmarshal(edge.Node, &node); err != nil {
			return nil, fmt.Errorf("%w: customer node: %v", integration.ErrPlatformInvalidResponse, err)
		}

		// numberOfOrders is an unsigned 64-bit scalar serialized as a string
		ordersCount, err := strconv.ParseInt(node.NumberOfOrders, 10, 64)
		if err != nil && node.NumberOfOrders != "" {
			return nil, fmt.Errorf("%w: customer %s orders count %q", integration.ErrPlatformInvalidResponse, node.ID, node.NumberOfOrders)
		}

		customer := integration.PlatformCustomer{
			ID:               node.ID,
			Email:            node.Email,
			Phone:            node.Phone,
			FirstName:        node.FirstName,
			LastName:         node.LastName,
			OrdersCount:      ordersCount,
			TotalSpent:       node.AmountSpent.Amount,
			State:            node.State,
			VerifiedEmail:    node.VerifiedEmail,
			Tags:             joinTags(node.Tags),
			Note:             node.Note,
			MarketingConsent: node.EmailMarketingConsent,
			DefaultAddress:   node.DefaultAddress.toDomain(),
			CreatedAt:        node.CreatedAt,
			UpdatedAt:        node.UpdatedAt,
			Raw:              edge.Node,
		}
		for _, addr := range node.Addresses {
			customer.Addresses = append(customer.Addresses, *addr.toDomain())
		}

		page.Customers = append(page.Customers, customer)
	}
	return page, nil
}
