package ecommerce

import (
	"fmt"
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/integration"
)

// Admin GraphQL queries. All three use forward cursor pagination and the
// platform's search syntax for server-side filtering.

const productsQuery = `
query listProducts($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query, sortKey: UPDATED_AT) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        title
        description
        vendor
        productType
        handle
        status
        tags
        createdAt
        updatedAt
        publishedAt
        options { name position values }
        variants(first: 100) {
          pageInfo { hasNextPage endCursor }
          edges {
            node {
              id
              title
              sku
              barcode
              price
              compareAtPrice
              position
              inventoryQuantity
              selectedOptions { name value }
              updatedAt
            }
          }
        }
      }
    }
  }
}`

const ordersQuery = `
query listOrders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query, sortKey: UPDATED_AT) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        name
        email
        phone
        currencyCode
        displayFinancialStatus
        displayFulfillmentStatus
        subtotalPriceSet { shopMoney { amount currencyCode } }
        totalPriceSet { shopMoney { amount currencyCode } }
        totalTaxSet { shopMoney { amount currencyCode } }
        totalDiscountsSet { shopMoney { amount currencyCode } }
        tags
        note
        customAttributes { key value }
        customer { id }
        shippingAddress { name company address1 address2 city province provinceCode country countryCode zip phone }
        billingAddress { name company address1 address2 city province provinceCode country countryCode zip phone }
        createdAt
        updatedAt
        processedAt
        cancelledAt
        closedAt
        shippingLines(first: 10) {
          edges {
            node {
              title
              code
              originalPriceSet { shopMoney { amount currencyCode } }
            }
          }
        }
        lineItems(first: 100) {
          edges {
            node {
              id
              title
              variantTitle
              sku
              quantity
              product { id }
              variant { id }
              originalUnitPriceSet { shopMoney { amount currencyCode } }
              totalDiscountSet { shopMoney { amount currencyCode } }
              customAttributes { key value }
            }
          }
        }
      }
    }
  }
}`

const customersQuery = `
query listCustomers($first: Int!, $after: String, $query: String) {
  customers(first: $first, after: $after, query: $query, sortKey: UPDATED_AT) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        email
        phone
        firstName
        lastName
        numberOfOrders
        amountSpent { amount currencyCode }
        state
        verifiedEmail
        tags
        note
        emailMarketingConsent { marketingState marketingOptInLevel consentUpdatedAt }
        defaultAddress { name company address1 address2 city province provinceCode country countryCode zip phone }
        addresses { name company address1 address2 city province provinceCode country countryCode zip phone }
        createdAt
        updatedAt
      }
    }
  }
}`

// buildSearchQuery renders a pull filter in the platform's search syntax.
// An empty string means no filter.
func buildSearchQuery(filter integration.PullFilter) string {
	var clauses []string
	if filter.UpdatedAfter != nil {
		clauses = append(clauses, fmt.Sprintf("updated_at:>'%s'", filter.UpdatedAfter.UTC().Format(time.RFC3339)))
	}
	if len(filter.IDs) > 0 {
		ids := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			ids = append(ids, "id:"+legacyID(id))
		}
		clauses = append(clauses, "("+strings.Join(ids, " OR ")+")")
	}
	return strings.Join(clauses, " AND ")
}

// legacyID extracts the numeric id from a global id like
// "gid://shopify/Order/1042". Search filters only accept the numeric form.
func legacyID(id string) string {
	if idx := strings.LastIndexByte(id, '/'); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

// queryFragment returns the leading operation line of a query for log fields
func queryFragment(query string) string {
	trimmed := strings.TrimSpace(query)
	if idx := strings.IndexByte(trimmed, '{'); idx > 0 {
		return strings.TrimSpace(trimmed[:idx])
	}
	return trimmed
}
