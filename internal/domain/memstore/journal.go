package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/cascade"
)

// Journal implements cascade.Journal inside the store, so entries of a rolled
// back transaction disappear with it.
type Journal struct {
	s *Store
}

var _ cascade.Journal = (*Journal)(nil)

// Record implements cascade.Journal.
func (j *Journal) Record(_ context.Context, transitions ...cascade.Transition) error {
	return j.s.write(func(db *tables) error {
		db.journal = append(db.journal, transitions...)
		return nil
	})
}

// Entries returns every recorded transition in order.
func (j *Journal) Entries() []cascade.Transition {
	var out []cascade.Transition
	j.s.read(func(db *tables) { out = slices.Clone(db.journal) })
	return out
}

// For returns the transitions of one aggregate instance.
func (j *Journal) For(aggregateID id.ID) []cascade.Transition {
	var out []cascade.Transition
	for _, t := range j.Entries() {
		if t.ID == aggregateID {
			out = append(out, t)
		}
	}
	return out
}

// Statuses returns the target statuses one aggregate went through.
func (j *Journal) Statuses(aggregateID id.ID) []string {
	var out []string
	for _, t := range j.For(aggregateID) {
		out = append(out, t.To)
	}
	return out
}
