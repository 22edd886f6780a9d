package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormOrderNoteRepository implements trade.OrderNoteRepository using GORM
type GormOrderNoteRepository struct {
	db *gorm.DB
}

// NewGormOrderNoteRepository creates a new GormOrderNoteRepository
func NewGormOrderNoteRepository(db *gorm.DB) *GormOrderNoteRepository {
	return &GormOrderNoteRepository{db: db}
}

// DeleteSyncedForOrders removes sync-sourced notes before re-insertion.
// Manually created notes are untouched.
func (r *GormOrderNoteRepository) DeleteSyncedForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&trade.OrderNote{}, "tenant_id = ? AND order_id IN ? AND source = ?",
			tenantID, orderIDs, "sync").Error
}

// CreateBatch inserts derived notes
func (r *GormOrderNoteRepository) CreateBatch(ctx context.Context, notes []*trade.OrderNote) error {
	if len(notes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notes, 200).Error
}

// FindByOrderID finds all notes of an order
func (r *GormOrderNoteRepository) FindByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.OrderNote, error) {
	var notes []trade.OrderNote
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// Ensure GormOrderNoteRepository implements OrderNoteRepository
var _ trade.OrderNoteRepository = (*GormOrderNoteRepository)(nil)
