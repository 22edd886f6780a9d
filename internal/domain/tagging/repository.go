package tagging

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// TagRepository persists tags and their associations.
type TagRepository interface {
	// FindByNames batch-fetches tags by normalized name.
	FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]Tag, error)
	CreateBatch(ctx context.Context, tags []*Tag) error

	// UpsertTaggables inserts associations, ignoring duplicates on the
	// (tag_id, taggable_type, taggable_id) key.
	UpsertTaggables(ctx context.Context, taggables []*Taggable) error

	// RecomputeUsageCounts sets each tag's UsageCount to the live count of
	// its associations.
	RecomputeUsageCounts(ctx context.Context, tenantID uuid.UUID, tagIDs []uuid.UUID) error
}
