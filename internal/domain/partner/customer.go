// Package partner holds the normalized customer model. Customers may exist
// before the integration is connected, so the sync linker resolves by
// external id first and falls back to email.
package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/storesync/backend/internal/domain/shared"
)

// Customer represents a normalized customer
type Customer struct {
	shared.TenantEntity
	// PlatformCustomerID is the external id this customer was last synced
	// from; nil for customers created before the integration
	PlatformCustomerID *string `gorm:"type:varchar(100);index:idx_customers_tenant_platform,priority:2"`
	Email              string  `gorm:"type:varchar(255);index:idx_customers_tenant_email,priority:2"`
	Phone              string  `gorm:"type:varchar(50)"`
	FirstName          string  `gorm:"type:varchar(100)"`
	LastName           string  `gorm:"type:varchar(100)"`
	// OrdersCount and TotalSpent mirror the platform's lifetime stats
	OrdersCount    int64           `gorm:"not null;default:0"`
	TotalSpent     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AcceptsEmail   bool            `gorm:"not null;default:false"`
	DefaultAddress datatypes.JSON  `gorm:"type:jsonb"`
	Note           string          `gorm:"type:text"`
	Active         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, email, firstName, lastName string) *Customer {
	return &Customer{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FirstName:    firstName,
		LastName:     lastName,
		TotalSpent:   decimal.Zero,
		Active:       true,
	}
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// LinkPlatform records the external id this customer is synced from
func (c *Customer) LinkPlatform(platformCustomerID string) {
	c.PlatformCustomerID = &platformCustomerID
	c.Touch()
}

// Deactivate soft-deletes the customer (platform-side deletion)
func (c *Customer) Deactivate() {
	c.Active = false
	c.Touch()
}
