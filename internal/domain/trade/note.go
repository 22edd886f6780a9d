package trade

import (
	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// NoteKind classifies a derived order annotation
type NoteKind string

const (
	// NoteKindGift is a customer-visible gift message
	NoteKindGift NoteKind = "gift"
	// NoteKindDeliveryInstruction is an internal delivery instruction
	NoteKindDeliveryInstruction NoteKind = "delivery_instruction"
	// NoteKindGeneral is any other annotation
	NoteKindGeneral NoteKind = "general"
)

// OrderNote is an annotation derived from an order's note field, note
// attributes or line-item properties. Re-syncing an order deletes its
// sync-sourced notes and re-inserts them, so duplicates cannot accumulate.
type OrderNote struct {
	shared.TenantEntity
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind    NoteKind  `gorm:"type:varchar(30);not null;default:'general'"`
	// Title is the attribute or property name the note was extracted from
	Title   string `gorm:"type:varchar(255)"`
	Content string `gorm:"type:text;not null"`
	// Visible marks customer-visible notes (gift messages)
	Visible bool `gorm:"not null;default:false"`
	// Source identifies the producer; sync-owned notes carry "sync" and
	// are the only ones the linker deletes on re-sync
	Source string `gorm:"type:varchar(30);not null;default:'sync'"`
}

// TableName returns the table name for GORM
func (OrderNote) TableName() string {
	return "order_notes"
}

// NewOrderNote creates a sync-sourced note
func NewOrderNote(tenantID, orderID uuid.UUID, kind NoteKind, title, content string) *OrderNote {
	return &OrderNote{
		TenantEntity: shared.NewTenantEntity(tenantID),
		OrderID:      orderID,
		Kind:         kind,
		Title:        title,
		Content:      content,
		Visible:      kind == NoteKindGift,
		Source:       "sync",
	}
}
