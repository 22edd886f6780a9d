package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/tagging"
)

// TagService derives normalized tags from the comma-separated tag strings on
// platform records and keeps usage counts consistent.
type TagService struct {
	tags   tagging.TagRepository
	logger *zap.Logger
}

// NewTagService creates a new TagService
func NewTagService(tags tagging.TagRepository, logger *zap.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

// Apply splits the tag string, creates missing tags, upserts the taggable
// associations for the entity and recomputes usage counts for every affected
// tag. Safe to repeat: duplicate associations are ignored on conflict.
func (s *TagService) Apply(ctx context.Context, tenantID uuid.UUID, taggableType tagging.TaggableType, taggableID uuid.UUID, tagString string) error {
	displayNames := tagging.SplitTagString(tagString)
	if len(displayNames) == 0 {
		return nil
	}

	names := make([]string, 0, len(displayNames))
	for _, dn := range displayNames {
		names = append(names, tagging.NormalizeName(dn))
	}

	existing, err := s.tags.FindByNames(ctx, tenantID, names)
	if err != nil {
		return err
	}
	byName := make(map[string]uuid.UUID, len(existing))
	for _, tag := range existing {
		byName[tag.Name] = tag.ID
	}

	var missing []*tagging.Tag
	for _, dn := range displayNames {
		if _, ok := byName[tagging.NormalizeName(dn)]; !ok {
			missing = append(missing, tagging.NewTag(tenantID, dn))
		}
	}
	if len(missing) > 0 {
		if err := s.tags.CreateBatch(ctx, missing); err != nil {
			return err
		}
		for _, tag := range missing {
			byName[tag.Name] = tag.ID
		}
	}

	taggables := make([]*tagging.Taggable, 0, len(names))
	tagIDs := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		tagID := byName[name]
		taggables = append(taggables, tagging.NewTaggable(tagID, taggableType, taggableID))
		tagIDs = append(tagIDs, tagID)
	}
	if err := s.tags.UpsertTaggables(ctx, taggables); err != nil {
		return err
	}
	return s.tags.RecomputeUsageCounts(ctx, tenantID, tagIDs)
}
