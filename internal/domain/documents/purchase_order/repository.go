package purchase_order

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for purchase orders.
type Repository interface {
	// Header operations
	Create(ctx context.Context, order *PurchaseOrder) error
	GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)
	GetForUpdate(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)
	Update(ctx context.Context, order *PurchaseOrder) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)

	// Item operations
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error
	GetItemForUpdate(ctx context.Context, itemID id.ID) (*Item, error)
	UpdateItemReceived(ctx context.Context, item *Item) error

	// Sales order links. EnsureLinked ignores pairs that already exist.
	EnsureLinked(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) error
	Unlink(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) error
	LinkedSalesOrderIDs(ctx context.Context, orderID id.ID) ([]id.ID, error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	domain.ListFilter

	Statuses     []Status
	SupplierID   *id.ID
	SalesOrderID *id.ID
}
