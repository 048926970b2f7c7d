package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/receiving"
)

// ReceivingRepo implements receiving.Repository.
type ReceivingRepo struct {
	s *Store
}

var _ receiving.Repository = (*ReceivingRepo)(nil)

func storedNote(n *receiving.Note) receiving.Note {
	v := *n
	v.Items = nil
	return v
}

func (r *ReceivingRepo) Create(_ context.Context, note *receiving.Note) error {
	return r.s.write(func(db *tables) error {
		if db.receivingNotes.has(note.ID) {
			return apperror.NewDuplicate("receiving_note", "id", note.ID.String())
		}
		db.receivingNotes.put(note.ID, storedNote(note))
		return nil
	})
}

func (r *ReceivingRepo) GetByID(_ context.Context, noteID id.ID) (*receiving.Note, error) {
	var (
		v  receiving.Note
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.receivingNotes.get(noteID) })
	if !ok {
		return nil, apperror.NewNotFound("receiving_note", noteID.String())
	}
	return &v, nil
}

func (r *ReceivingRepo) GetForUpdate(ctx context.Context, noteID id.ID) (*receiving.Note, error) {
	return r.GetByID(ctx, noteID)
}

func (r *ReceivingRepo) Update(_ context.Context, note *receiving.Note) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.receivingNotes.get(note.ID)
		if !ok {
			return apperror.NewNotFound("receiving_note", note.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &note.BaseDocument, "receiving_note"); err != nil {
			return err
		}
		db.receivingNotes.put(note.ID, storedNote(note))
		return nil
	})
}

func (r *ReceivingRepo) List(_ context.Context, filter receiving.ListFilter) (domain.ListResult[*receiving.Note], error) {
	var rows []*receiving.Note
	r.s.read(func(db *tables) {
		for _, v := range db.receivingNotes.values(func(n receiving.Note) bool {
			return len(filter.PurchaseOrderIDs) == 0 || containsID(filter.PurchaseOrderIDs, n.PurchaseOrderID)
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(n *receiving.Note) doc {
		return doc{id: n.ID, number: n.Number, date: n.ReceivingDate, created: n.CreatedAt}
	}), nil
}

func (r *ReceivingRepo) GetItems(_ context.Context, noteID id.ID) ([]receiving.Item, error) {
	var items []receiving.Item
	r.s.read(func(db *tables) {
		items = db.receivingItems.values(func(it receiving.Item) bool { return it.ReceivingNoteID == noteID })
	})
	slices.SortStableFunc(items, func(a, b receiving.Item) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *ReceivingRepo) SaveItems(_ context.Context, noteID id.ID, items []receiving.Item) error {
	return r.s.write(func(db *tables) error {
		for _, it := range db.receivingItems.values(func(it receiving.Item) bool { return it.ReceivingNoteID == noteID }) {
			db.receivingItems.delete(it.ID)
		}
		for _, it := range items {
			it.ReceivingNoteID = noteID
			db.receivingItems.put(it.ID, it)
		}
		return nil
	})
}
