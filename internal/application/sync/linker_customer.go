package sync

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
)

// CustomerLinker derives internal customers from a page of staged customers.
// Resolution is by external id first, then by email, so customers that
// existed before the integration was connected are absorbed rather than
// duplicated.
type CustomerLinker struct {
	customers partner.CustomerRepository
	staging   integration.StagedCustomerRepository
	logger    *zap.Logger
}

// NewCustomerLinker creates a new CustomerLinker
func NewCustomerLinker(customers partner.CustomerRepository, staging integration.StagedCustomerRepository, logger *zap.Logger) *CustomerLinker {
	return &CustomerLinker{customers: customers, staging: staging, logger: logger}
}

// Link derives or refreshes internal customers for the given staged page.
func (l *CustomerLinker) Link(ctx context.Context, tenantID uuid.UUID, staged []*integration.StagedCustomer) (Result, error) {
	var res Result
	for _, sc := range staged {
		if err := l.linkOne(ctx, tenantID, sc); err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) && !errors.Is(err, shared.ErrNotFound) {
				res.fail(sc.PlatformCustomerID, "link_customer", err)
				continue
			}
			return res, err
		}
		res.success()
	}
	return res, nil
}

func (l *CustomerLinker) linkOne(ctx context.Context, tenantID uuid.UUID, sc *integration.StagedCustomer) error {
	customer, err := l.resolve(ctx, tenantID, sc)
	if err != nil {
		return err
	}

	if customer == nil {
		customer = buildCustomer(tenantID, sc)
		if err := l.customers.Create(ctx, customer); err != nil {
			return err
		}
	} else {
		applyCustomer(customer, sc)
		if err := l.customers.Update(ctx, customer); err != nil {
			return err
		}
	}
	return l.staging.SetLocalCustomer(ctx, tenantID, sc.PlatformCustomerID, customer.ID)
}

// resolve looks up an existing customer by external id, then by email.
// Returns (nil, nil) when no match exists.
func (l *CustomerLinker) resolve(ctx context.Context, tenantID uuid.UUID, sc *integration.StagedCustomer) (*partner.Customer, error) {
	customer, err := l.customers.FindByPlatformID(ctx, tenantID, sc.PlatformCustomerID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if sc.Email == "" {
		return nil, nil
	}
	customer, err = l.customers.FindByEmail(ctx, tenantID, sc.Email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Field mapping
// ---------------------------------------------------------------------------

func buildCustomer(tenantID uuid.UUID, sc *integration.StagedCustomer) *partner.Customer {
	customer := partner.NewCustomer(tenantID, sc.Email, sc.FirstName, sc.LastName)
	applyCustomer(customer, sc)
	return customer
}

func applyCustomer(c *partner.Customer, sc *integration.StagedCustomer) {
	id := sc.PlatformCustomerID
	c.PlatformCustomerID = &id
	c.Email = sc.Email
	c.Phone = sc.Phone
	c.FirstName = sc.FirstName
	c.LastName = sc.LastName
	c.OrdersCount = sc.OrdersCount
	c.TotalSpent = parseAmount(sc.TotalSpent)
	c.AcceptsEmail = acceptsEmail(sc)
	c.DefaultAddress = sc.DefaultAddress
	c.Note = sc.Note
	c.Active = sc.Active
	c.Touch()
}

// acceptsEmail reads the subscription state out of the raw marketing-consent
// sub-object, defaulting to false when absent or unparseable. The gateway
// stores the object verbatim, so the key is camelCase and the state is an
// uppercase enum value.
func acceptsEmail(sc *integration.StagedCustomer) bool {
	if len(sc.MarketingConsent) == 0 {
		return false
	}
	var consent struct {
		MarketingState string `json:"marketingState"`
	}
	if err := json.Unmarshal(sc.MarketingConsent, &consent); err != nil {
		return false
	}
	return strings.EqualFold(consent.MarketingState, "subscribed")
}
