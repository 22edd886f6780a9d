package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/integration"
)

// GormStagedCustomerRepository implements integration.StagedCustomerRepository using GORM
type GormStagedCustomerRepository struct {
	db *gorm.DB
}

// NewGormStagedCustomerRepository creates a new GormStagedCustomerRepository
func NewGormStagedCustomerRepository(db *gorm.DB) *GormStagedCustomerRepository {
	return &GormStagedCustomerRepository{db: db}
}

// UpsertBatch inserts or refreshes staged customers, preserving the
// linker-owned local_customer_id and webhook bookkeeping columns on conflict
func (r *GormStagedCustomerRepository) UpsertBatch(ctx context.Context, rows []*integration.StagedCustomer) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: stagedConflictTarget("platform_customer_id"),
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "phone", "first_name", "last_name", "orders_count",
			"total_spent", "state", "verified_email", "tags", "note",
			"marketing_consent", "default_address", "addresses",
			"platform_created_at", "platform_updated_at", "synced_at",
			"active", "raw", "updated_at",
		}),
	}).CreateInBatches(rows, 200).Error
}

// FindByPlatformIDs batch-fetches staged customers by platform id
func (r *GormStagedCustomerRepository) FindByPlatformIDs(ctx context.Context, tenantID uuid.UUID, platformIDs []string) ([]integration.StagedCustomer, error) {
	if len(platformIDs) == 0 {
		return []integration.StagedCustomer{}, nil
	}
	var rows []integration.StagedCustomer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform_customer_id IN ?", tenantID, platformIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetLocalCustomer records the local customer a staged row resolved to
func (r *GormStagedCustomerRepository) SetLocalCustomer(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, localCustomerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedCustomer{}).
		Where("tenant_id = ? AND platform_customer_id = ?", tenantID, platformCustomerID).
		Updates(map[string]any{"local_customer_id": localCustomerID, "updated_at": time.Now()}).Error
}

// MarkWebhook stamps the last webhook touch on a staged customer
func (r *GormStagedCustomerRepository) MarkWebhook(ctx context.Context, tenantID uuid.UUID, platformCustomerID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedCustomer{}).
		Where("tenant_id = ? AND platform_customer_id = ?", tenantID, platformCustomerID).
		Updates(map[string]any{"last_webhook_at": at, "updated_at": time.Now()}).Error
}

// Deactivate soft-deletes a staged customer after a platform-side deletion
func (r *GormStagedCustomerRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, platformCustomerID string) error {
	return r.db.WithContext(ctx).
		Model(&integration.StagedCustomer{}).
		Where("tenant_id = ? AND platform_customer_id = ?", tenantID, platformCustomerID).
		Updates(map[string]any{"active": false, "updated_at": time.Now()}).Error
}

// Ensure GormStagedCustomerRepository implements StagedCustomerRepository
var _ integration.StagedCustomerRepository = (*GormStagedCustomerRepository)(nil)
