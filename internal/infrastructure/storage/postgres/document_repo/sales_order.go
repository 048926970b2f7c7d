package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable     = "doc_sales_orders"
	salesOrderItemsTable = "doc_sales_order_items"
)

// SalesOrderRepo implements sales_order.Repository.
type SalesOrderRepo struct {
	*BaseDocumentRepo[*sales_order.SalesOrder]
	items childTable[sales_order.Item]
}

var _ sales_order.Repository = (*SalesOrderRepo)(nil)

// NewSalesOrderRepo creates a new sales order repository.
func NewSalesOrderRepo(txm *postgres.TxManager) *SalesOrderRepo {
	return &SalesOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			salesOrdersTable,
			postgres.ExtractDBColumns[sales_order.SalesOrder](),
			"order_date",
			func() *sales_order.SalesOrder { return &sales_order.SalesOrder{} },
		),
		items: newChildTable[sales_order.Item](txm, salesOrderItemsTable, "sales_order_id", "line_no"),
	}
}

// List retrieves sales orders with filtering.
func (r *SalesOrderRepo) List(ctx context.Context, filter sales_order.ListFilter) (domain.ListResult[*sales_order.SalesOrder], error) {
	q := r.baseSelect()
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	return r.page(ctx, q, filter.ListFilter)
}

// GetItems retrieves the lines of an order.
func (r *SalesOrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]sales_order.Item, error) {
	return r.items.byParent(ctx, orderID)
}

// SaveItems replaces the lines of an order.
func (r *SalesOrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []sales_order.Item) error {
	for i := range items {
		items[i].SalesOrderID = orderID
	}
	return r.items.replace(ctx, orderID, items)
}

// GetItemForUpdate locks one line.
func (r *SalesOrderRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*sales_order.Item, error) {
	return r.items.getForUpdate(ctx, squirrel.Eq{"id": itemID}, itemID.String())
}

// FindItemForUpdate locks the first line of the order for the product.
func (r *SalesOrderRepo) FindItemForUpdate(ctx context.Context, orderID, productID id.ID) (*sales_order.Item, error) {
	return r.items.getForUpdate(ctx,
		squirrel.Eq{"sales_order_id": orderID, "product_id": productID},
		fmt.Sprintf("%s/%s", orderID, productID))
}

// UpdateItemCounters persists the fulfillment counters of a locked line.
func (r *SalesOrderRepo) UpdateItemCounters(ctx context.Context, item *sales_order.Item) error {
	return r.items.update(ctx, item.ID, *item,
		"purchased_quantity", "received_quantity", "reserved_quantity", "outbound_quantity")
}
