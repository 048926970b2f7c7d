package container_plan

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for container plans.
type Repository interface {
	// Header operations
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, planID id.ID) (*Plan, error)
	GetForUpdate(ctx context.Context, planID id.ID) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Plan], error)

	// Sales order links
	EnsureLinked(ctx context.Context, planID id.ID, salesOrderIDs []id.ID) error
	LinkedSalesOrderIDs(ctx context.Context, planID id.ID) ([]id.ID, error)

	// Items
	GetItems(ctx context.Context, planID id.ID) ([]Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID id.ID) error

	// Stuffing, ordered by creation
	GetStuffingRecords(ctx context.Context, planID id.ID) ([]StuffingRecord, error)
	CreateStuffingRecord(ctx context.Context, rec *StuffingRecord) error
	GetPhotos(ctx context.Context, recordIDs []id.ID) ([]Photo, error)
	CreatePhoto(ctx context.Context, photo *Photo) error
}

// ListFilter for filtering container plans.
type ListFilter struct {
	domain.ListFilter

	Statuses     []Status
	SalesOrderID *id.ID
}
