package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "doc_purchase_orders"
	purchaseOrderItemsTable = "doc_purchase_order_items"
	purchaseOrderLinksTable = "doc_purchase_order_sales_orders"
)

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchase_order.PurchaseOrder]
	items childTable[purchase_order.Item]
	links linkTable
}

var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			purchaseOrdersTable,
			postgres.ExtractDBColumns[purchase_order.PurchaseOrder](),
			"order_date",
			func() *purchase_order.PurchaseOrder { return &purchase_order.PurchaseOrder{} },
		),
		items: newChildTable[purchase_order.Item](txm, purchaseOrderItemsTable, "purchase_order_id", "line_no"),
		links: linkTable{txm: txm, name: purchaseOrderLinksTable, ownerCol: "purchase_order_id"},
	}
}

// List retrieves purchase orders with filtering.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchase_order.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error) {
	q := r.baseSelect()
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.SalesOrderID != nil {
		q = q.Where(r.links.ownersOf(*filter.SalesOrderID))
	}
	return r.page(ctx, q, filter.ListFilter)
}

// GetItems retrieves the lines of an order.
func (r *PurchaseOrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]purchase_order.Item, error) {
	return r.items.byParent(ctx, orderID)
}

// SaveItems replaces the lines of an order.
func (r *PurchaseOrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []purchase_order.Item) error {
	for i := range items {
		items[i].PurchaseOrderID = orderID
	}
	return r.items.replace(ctx, orderID, items)
}

// GetItemForUpdate locks one line.
func (r *PurchaseOrderRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*purchase_order.Item, error) {
	return r.items.getForUpdate(ctx, squirrel.Eq{"id": itemID}, itemID.String())
}

// UpdateItemReceived persists the received quantity of a locked line.
func (r *PurchaseOrderRepo) UpdateItemReceived(ctx context.Context, item *purchase_order.Item) error {
	return r.items.update(ctx, item.ID, *item, "received_quantity")
}

// EnsureLinked links the order to sales orders, ignoring existing pairs.
func (r *PurchaseOrderRepo) EnsureLinked(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) error {
	return r.links.ensure(ctx, orderID, salesOrderIDs)
}

// Unlink removes links to sales orders.
func (r *PurchaseOrderRepo) Unlink(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) error {
	return r.links.remove(ctx, orderID, salesOrderIDs)
}

// LinkedSalesOrderIDs lists the linked sales orders.
func (r *PurchaseOrderRepo) LinkedSalesOrderIDs(ctx context.Context, orderID id.ID) ([]id.ID, error) {
	ids, err := r.links.salesOrders(ctx, orderID)
	if ids == nil && err == nil {
		ids = []id.ID{}
	}
	return ids, err
}
