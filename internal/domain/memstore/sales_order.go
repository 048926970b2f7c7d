package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/sales_order"
)

// SalesOrderRepo implements sales_order.Repository.
type SalesOrderRepo struct {
	s *Store
}

var _ sales_order.Repository = (*SalesOrderRepo)(nil)

func storedSalesOrder(o *sales_order.SalesOrder) sales_order.SalesOrder {
	v := *o
	v.Items = nil
	return v
}

func (r *SalesOrderRepo) Create(_ context.Context, order *sales_order.SalesOrder) error {
	return r.s.write(func(db *tables) error {
		if db.salesOrders.has(order.ID) {
			return apperror.NewDuplicate("sales_order", "id", order.ID.String())
		}
		db.salesOrders.put(order.ID, storedSalesOrder(order))
		return nil
	})
}

func (r *SalesOrderRepo) GetByID(_ context.Context, orderID id.ID) (*sales_order.SalesOrder, error) {
	var (
		v  sales_order.SalesOrder
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.salesOrders.get(orderID) })
	if !ok {
		return nil, apperror.NewNotFound("sales_order", orderID.String())
	}
	return &v, nil
}

func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*sales_order.SalesOrder, error) {
	return r.GetByID(ctx, orderID)
}

func (r *SalesOrderRepo) GetMany(_ context.Context, orderIDs []id.ID) ([]*sales_order.SalesOrder, error) {
	var out []*sales_order.SalesOrder
	r.s.read(func(db *tables) {
		for _, v := range db.salesOrders.values(func(o sales_order.SalesOrder) bool {
			return containsID(orderIDs, o.ID)
		}) {
			out = append(out, &v)
		}
	})
	return out, nil
}

func (r *SalesOrderRepo) GetManyForUpdate(ctx context.Context, orderIDs []id.ID) ([]*sales_order.SalesOrder, error) {
	out, err := r.GetMany(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *sales_order.SalesOrder) int {
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (r *SalesOrderRepo) Update(_ context.Context, order *sales_order.SalesOrder) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.salesOrders.get(order.ID)
		if !ok {
			return apperror.NewNotFound("sales_order", order.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &order.BaseDocument, "sales_order"); err != nil {
			return err
		}
		db.salesOrders.put(order.ID, storedSalesOrder(order))
		return nil
	})
}

func (r *SalesOrderRepo) List(_ context.Context, filter sales_order.ListFilter) (domain.ListResult[*sales_order.SalesOrder], error) {
	var rows []*sales_order.SalesOrder
	r.s.read(func(db *tables) {
		for _, v := range db.salesOrders.values(func(o sales_order.SalesOrder) bool {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
				return false
			}
			return filter.CustomerID == nil || *filter.CustomerID == o.CustomerID
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(o *sales_order.SalesOrder) doc {
		return doc{id: o.ID, number: o.Number, date: o.OrderDate, created: o.CreatedAt}
	}), nil
}

func (r *SalesOrderRepo) GetItems(_ context.Context, orderID id.ID) ([]sales_order.Item, error) {
	var items []sales_order.Item
	r.s.read(func(db *tables) {
		items = db.salesOrderItems.values(func(it sales_order.Item) bool { return it.SalesOrderID == orderID })
	})
	slices.SortStableFunc(items, func(a, b sales_order.Item) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *SalesOrderRepo) SaveItems(_ context.Context, orderID id.ID, items []sales_order.Item) error {
	return r.s.write(func(db *tables) error {
		for _, it := range db.salesOrderItems.values(func(it sales_order.Item) bool { return it.SalesOrderID == orderID }) {
			db.salesOrderItems.delete(it.ID)
		}
		for _, it := range items {
			it.SalesOrderID = orderID
			db.salesOrderItems.put(it.ID, it)
		}
		return nil
	})
}

func (r *SalesOrderRepo) GetItemForUpdate(_ context.Context, itemID id.ID) (*sales_order.Item, error) {
	var (
		v  sales_order.Item
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.salesOrderItems.get(itemID) })
	if !ok {
		return nil, apperror.NewNotFound("sales_order_item", itemID.String())
	}
	return &v, nil
}

func (r *SalesOrderRepo) FindItemForUpdate(ctx context.Context, orderID, productID id.ID) (*sales_order.Item, error) {
	items, err := r.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, apperror.NewNotFound("sales_order_item", productID.String())
}

func (r *SalesOrderRepo) UpdateItemCounters(_ context.Context, item *sales_order.Item) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.salesOrderItems.get(item.ID)
		if !ok {
			return apperror.NewNotFound("sales_order_item", item.ID.String())
		}
		stored.PurchasedQuantity = item.PurchasedQuantity
		stored.ReceivedQuantity = item.ReceivedQuantity
		stored.ReservedQuantity = item.ReservedQuantity
		stored.OutboundQuantity = item.OutboundQuantity
		db.salesOrderItems.put(item.ID, stored)
		return nil
	})
}
