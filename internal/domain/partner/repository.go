package partner

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// CustomerRepository persists customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByPlatformID returns shared.ErrNotFound when no customer is
	// linked to the given external id.
	FindByPlatformID(ctx context.Context, tenantID uuid.UUID, platformID string) (*Customer, error)

	// FindByEmail matches case-insensitively and returns shared.ErrNotFound
	// when absent. Used to absorb customers that predate the integration.
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Customer, error)
}
