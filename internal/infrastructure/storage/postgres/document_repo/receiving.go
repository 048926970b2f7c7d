package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	receivingNotesTable     = "doc_receiving_notes"
	receivingNoteItemsTable = "doc_receiving_note_items"
)

// ReceivingRepo implements receiving.Repository.
type ReceivingRepo struct {
	*BaseDocumentRepo[*receiving.Note]
	items childTable[receiving.Item]
}

var _ receiving.Repository = (*ReceivingRepo)(nil)

// NewReceivingRepo creates a new receiving note repository.
func NewReceivingRepo(txm *postgres.TxManager) *ReceivingRepo {
	return &ReceivingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			receivingNotesTable,
			postgres.ExtractDBColumns[receiving.Note](),
			"receiving_date",
			func() *receiving.Note { return &receiving.Note{} },
		),
		items: newChildTable[receiving.Item](txm, receivingNoteItemsTable, "receiving_note_id", "line_no"),
	}
}

// List retrieves receiving notes with filtering.
func (r *ReceivingRepo) List(ctx context.Context, filter receiving.ListFilter) (domain.ListResult[*receiving.Note], error) {
	q := r.baseSelect()
	if len(filter.PurchaseOrderIDs) > 0 {
		q = q.Where(squirrel.Eq{"purchase_order_id": filter.PurchaseOrderIDs})
	}
	return r.page(ctx, q, filter.ListFilter)
}

// GetItems retrieves the lines of a note.
func (r *ReceivingRepo) GetItems(ctx context.Context, noteID id.ID) ([]receiving.Item, error) {
	return r.items.byParent(ctx, noteID)
}

// SaveItems replaces the lines of a note.
func (r *ReceivingRepo) SaveItems(ctx context.Context, noteID id.ID, items []receiving.Item) error {
	for i := range items {
		items[i].ReceivingNoteID = noteID
	}
	return r.items.replace(ctx, noteID, items)
}
