package sales_order

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for sales orders.
type Repository interface {
	// Header operations
	Create(ctx context.Context, order *SalesOrder) error
	GetByID(ctx context.Context, orderID id.ID) (*SalesOrder, error)
	GetMany(ctx context.Context, orderIDs []id.ID) ([]*SalesOrder, error)
	Update(ctx context.Context, order *SalesOrder) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error)

	// Locking. GetManyForUpdate locks rows in id order to keep lock acquisition deterministic.
	GetForUpdate(ctx context.Context, orderID id.ID) (*SalesOrder, error)
	GetManyForUpdate(ctx context.Context, orderIDs []id.ID) ([]*SalesOrder, error)

	// Item operations
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error
	GetItemForUpdate(ctx context.Context, itemID id.ID) (*Item, error)
	FindItemForUpdate(ctx context.Context, orderID, productID id.ID) (*Item, error)
	UpdateItemCounters(ctx context.Context, item *Item) error
}

// ListFilter for filtering sales orders.
type ListFilter struct {
	domain.ListFilter

	Statuses   []Status
	CustomerID *id.ID
}
