package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/tagging"
)

// GormTagRepository implements tagging.TagRepository using GORM
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GormTagRepository
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// FindByNames batch-fetches tags by normalized name
func (r *GormTagRepository) FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]tagging.Tag, error) {
	if len(names) == 0 {
		return []tagging.Tag{}, nil
	}
	var tags []tagging.Tag
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name IN ?", tenantID, names).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateBatch inserts new tags. Concurrent syncs may race on the
// (tenant_id, name) key, so duplicates are ignored.
func (r *GormTagRepository) CreateBatch(ctx context.Context, tags []*tagging.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "name"}},
		DoNothing: true,
	}).CreateInBatches(tags, 200).Error
}

// UpsertTaggables inserts associations, ignoring duplicates on the
// (tag_id, taggable_type, taggable_id) key
func (r *GormTagRepository) UpsertTaggables(ctx context.Context, taggables []*tagging.Taggable) error {
	if len(taggables) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tag_id"},
			{Name: "taggable_type"},
			{Name: "taggable_id"},
		},
		DoNothing: true,
	}).CreateInBatches(taggables, 200).Error
}

// RecomputeUsageCounts sets each tag's usage_count to the live count of its
// associations
func (r *GormTagRepository) RecomputeUsageCounts(ctx context.Context, tenantID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&tagging.Tag{}).
		Where("tenant_id = ? AND id IN ?", tenantID, tagIDs).
		Update("usage_count", gorm.Expr(
			"(SELECT COUNT(*) FROM taggables WHERE taggables.tag_id = tags.id)",
		)).Error
}

// Ensure GormTagRepository implements TagRepository
var _ tagging.TagRepository = (*GormTagRepository)(nil)
