package receiving

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for receiving notes.
type Repository interface {
	Create(ctx context.Context, note *Note) error
	GetByID(ctx context.Context, noteID id.ID) (*Note, error)
	GetForUpdate(ctx context.Context, noteID id.ID) (*Note, error)
	Update(ctx context.Context, note *Note) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Note], error)

	GetItems(ctx context.Context, noteID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, noteID id.ID, items []Item) error
}

// ListFilter for filtering receiving notes.
type ListFilter struct {
	domain.ListFilter

	PurchaseOrderIDs []id.ID
}
