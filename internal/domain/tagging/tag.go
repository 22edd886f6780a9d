// Package tagging holds the normalized tag model derived from the
// comma-separated tag strings on platform records.
package tagging

import (
	"strings"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// TaggableType identifies which entity family a tag association points at
type TaggableType string

const (
	TaggableTypeOrder    TaggableType = "order"
	TaggableTypeProduct  TaggableType = "product"
	TaggableTypeCustomer TaggableType = "customer"
)

// Tag is a normalized tag. Name is the case-insensitive-unique key per
// tenant; DisplayName preserves the first-seen casing.
type Tag struct {
	shared.TenantEntity
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_tags_tenant_name,priority:2"`
	DisplayName string `gorm:"type:varchar(255);not null"`
	// UsageCount equals the live count of taggable associations. Recomputed
	// after every association change rather than incrementally adjusted.
	UsageCount int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// NewTag creates a tag from its display form
func NewTag(tenantID uuid.UUID, displayName string) *Tag {
	displayName = strings.TrimSpace(displayName)
	return &Tag{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         NormalizeName(displayName),
		DisplayName:  displayName,
	}
}

// NormalizeName lower-cases and trims a tag for uniqueness comparison
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SplitTagString splits a platform comma-separated tag string into distinct
// display names, deduplicated case-insensitively with first casing kept.
func SplitTagString(tags string) []string {
	parts := strings.Split(tags, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := NormalizeName(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Taggable associates a tag with one entity
type Taggable struct {
	shared.BaseEntity
	TagID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_taggables_tag_entity,priority:1"`
	TaggableType TaggableType `gorm:"type:varchar(20);not null;uniqueIndex:idx_taggables_tag_entity,priority:2"`
	TaggableID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_taggables_tag_entity,priority:3"`
}

// TableName returns the table name for GORM
func (Taggable) TableName() string {
	return "taggables"
}

// NewTaggable associates a tag with an entity
func NewTaggable(tagID uuid.UUID, taggableType TaggableType, taggableID uuid.UUID) *Taggable {
	return &Taggable{
		BaseEntity:   shared.NewBaseEntity(),
		TagID:        tagID,
		TaggableType: taggableType,
		TaggableID:   taggableID,
	}
}
