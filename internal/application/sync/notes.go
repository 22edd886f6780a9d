package sync

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/trade"
)

// NoteExtractor derives annotation records from an order's free-text note,
// its structured note attributes, and its line-item custom properties.
type NoteExtractor struct {
	notes  trade.OrderNoteRepository
	logger *zap.Logger
}

// NewNoteExtractor creates a new NoteExtractor
func NewNoteExtractor(notes trade.OrderNoteRepository, logger *zap.Logger) *NoteExtractor {
	return &NoteExtractor{notes: notes, logger: logger}
}

// noteAttrsToSkip are fulfillment-method attributes already consumed by the
// classification chain; they are not worth a note record.
var noteAttrsToSkip = map[string]struct{}{
	attrCheckoutMethod: {},
	attrPickupLocation: {},
	attrPickupDate:     {},
	attrDeliveryDate:   {},
	attrDeliveryTime:   {},
}

// Replace deletes every sync-sourced note for the given orders and
// re-inserts the current derivations. Delete-then-insert keeps re-syncs
// duplicate-free.
func (e *NoteExtractor) Replace(ctx context.Context, tenantID uuid.UUID, orders []orderNoteSource) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, src := range orders {
		orderIDs = append(orderIDs, src.OrderID)
	}
	if err := e.notes.DeleteSyncedForOrders(ctx, tenantID, orderIDs); err != nil {
		return err
	}

	var all []*trade.OrderNote
	for _, src := range orders {
		all = append(all, deriveNotes(tenantID, src)...)
	}
	if len(all) == 0 {
		return nil
	}
	return e.notes.CreateBatch(ctx, all)
}

// orderNoteSource carries the note-bearing fields of one synced order.
type orderNoteSource struct {
	OrderID        uuid.UUID
	Note           string
	NoteAttributes []integration.PlatformAttribute
	LineItems      []integration.PlatformLineItem
}

// deriveNotes classifies each note-bearing field into a note kind and
// deduplicates by (order, title, content).
func deriveNotes(tenantID uuid.UUID, src orderNoteSource) []*trade.OrderNote {
	type key struct {
		title   string
		content string
	}
	seen := make(map[key]struct{})
	var out []*trade.OrderNote

	add := func(kind trade.NoteKind, title, content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		k := key{title: strings.ToLower(title), content: content}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, trade.NewOrderNote(tenantID, src.OrderID, kind, title, content))
	}

	add(trade.NoteKindGeneral, "", src.Note)
	for _, attr := range src.NoteAttributes {
		if _, skip := noteAttrsToSkip[strings.ToLower(strings.TrimSpace(attr.Name))]; skip {
			continue
		}
		add(ClassifyNote(attr.Name), attr.Name, attr.Value)
	}
	for _, item := range src.LineItems {
		for _, prop := range item.Properties {
			add(ClassifyNote(prop.Name), prop.Name, prop.Value)
		}
	}
	return out
}
