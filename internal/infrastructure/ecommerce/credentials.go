package ecommerce

import (
	"context"

	"github.com/google/uuid"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/integration"
)

// StaticCredentialsProvider serves the same storefront credentials for every
// tenant, from configuration. Single-store deployments connect one shop; a
// multi-store deployment would replace this with a connection table lookup.
type StaticCredentialsProvider struct {
	creds integration.Credentials
}

// NewStaticCredentialsProvider creates a provider over fixed credentials
func NewStaticCredentialsProvider(shopDomain, accessToken string) *StaticCredentialsProvider {
	return &StaticCredentialsProvider{
		creds: integration.Credentials{
			ShopDomain:  shopDomain,
			AccessToken: accessToken,
		},
	}
}

// Credentials returns the configured credentials for any tenant
func (p *StaticCredentialsProvider) Credentials(ctx context.Context, tenantID uuid.UUID) (integration.Credentials, error) {
	if err := p.creds.Validate(); err != nil {
		return integration.Credentials{}, err
	}
	return p.creds, nil
}

// Ensure StaticCredentialsProvider implements CredentialsProvider
var _ appsync.CredentialsProvider = (*StaticCredentialsProvider)(nil)
