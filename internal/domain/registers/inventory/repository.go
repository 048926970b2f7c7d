package inventory

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines storage operations for the inventory ledger.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, recordID id.ID) (*Record, error)

	// GetForUpdate locks the batch row until the end of the transaction.
	GetForUpdate(ctx context.Context, recordID id.ID) (*Record, error)

	// UpdateBalances persists reserved/available counters of a locked row.
	UpdateBalances(ctx context.Context, rec *Record) error

	// SumAvailable sums available_quantity for product and sales order (nil = un-earmarked stock).
	SumAvailable(ctx context.Context, productID id.ID, salesOrderID *id.ID) (int64, error)

	// Batches lists batches of one product/sales order pair ordered by production date.
	Batches(ctx context.Context, filter BatchFilter) ([]Record, error)

	// TotalsByProduct aggregates batches per product.
	TotalsByProduct(ctx context.Context, filter TotalsFilter) (domain.ListResult[ProductTotal], error)

	// ListBySalesOrder lists every batch earmarked for a sales order.
	ListBySalesOrder(ctx context.Context, salesOrderID id.ID) ([]Record, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[Record], error)
}

// BatchFilter selects batches of one product/sales order pair.
type BatchFilter struct {
	ProductID     id.ID
	SalesOrderID  *id.ID
	OnlyAvailable bool
	ForUpdate     bool
}

// TotalsFilter for per-product aggregation.
type TotalsFilter struct {
	ProductIDs []id.ID
	Limit      int
	Offset     int
}

// ListFilter for batch listing.
type ListFilter struct {
	domain.ListFilter

	ProductID     *id.ID
	SalesOrderID  *id.ID
	OnlyAvailable bool
}
