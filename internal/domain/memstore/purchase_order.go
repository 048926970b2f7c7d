package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/purchase_order"
)

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	s *Store
}

var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)

func storedPurchaseOrder(o *purchase_order.PurchaseOrder) purchase_order.PurchaseOrder {
	v := *o
	v.Items = nil
	v.SalesOrderIDs = nil
	return v
}

func (r *PurchaseOrderRepo) Create(_ context.Context, order *purchase_order.PurchaseOrder) error {
	return r.s.write(func(db *tables) error {
		if db.purchaseOrders.has(order.ID) {
			return apperror.NewDuplicate("purchase_order", "id", order.ID.String())
		}
		db.purchaseOrders.put(order.ID, storedPurchaseOrder(order))
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, orderID id.ID) (*purchase_order.PurchaseOrder, error) {
	var (
		v  purchase_order.PurchaseOrder
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.purchaseOrders.get(orderID) })
	if !ok {
		return nil, apperror.NewNotFound("purchase_order", orderID.String())
	}
	return &v, nil
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*purchase_order.PurchaseOrder, error) {
	return r.GetByID(ctx, orderID)
}

func (r *PurchaseOrderRepo) Update(_ context.Context, order *purchase_order.PurchaseOrder) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.purchaseOrders.get(order.ID)
		if !ok {
			return apperror.NewNotFound("purchase_order", order.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &order.BaseDocument, "purchase_order"); err != nil {
			return err
		}
		db.purchaseOrders.put(order.ID, storedPurchaseOrder(order))
		return nil
	})
}

func (r *PurchaseOrderRepo) List(_ context.Context, filter purchase_order.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error) {
	var rows []*purchase_order.PurchaseOrder
	r.s.read(func(db *tables) {
		for _, v := range db.purchaseOrders.values(func(o purchase_order.PurchaseOrder) bool {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
				return false
			}
			if filter.SupplierID != nil && *filter.SupplierID != o.SupplierID {
				return false
			}
			return filter.SalesOrderID == nil || db.purchaseLinks.has(link{o.ID, *filter.SalesOrderID})
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(o *purchase_order.PurchaseOrder) doc {
		return doc{id: o.ID, number: o.Number, date: o.OrderDate, created: o.CreatedAt}
	}), nil
}

func (r *PurchaseOrderRepo) GetItems(_ context.Context, orderID id.ID) ([]purchase_order.Item, error) {
	var items []purchase_order.Item
	r.s.read(func(db *tables) {
		items = db.purchaseOrderItems.values(func(it purchase_order.Item) bool { return it.PurchaseOrderID == orderID })
	})
	slices.SortStableFunc(items, func(a, b purchase_order.Item) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *PurchaseOrderRepo) SaveItems(_ context.Context, orderID id.ID, items []purchase_order.Item) error {
	return r.s.write(func(db *tables) error {
		for _, it := range db.purchaseOrderItems.values(func(it purchase_order.Item) bool { return it.PurchaseOrderID == orderID }) {
			db.purchaseOrderItems.delete(it.ID)
		}
		for _, it := range items {
			it.PurchaseOrderID = orderID
			db.purchaseOrderItems.put(it.ID, it)
		}
		return nil
	})
}

func (r *PurchaseOrderRepo) GetItemForUpdate(_ context.Context, itemID id.ID) (*purchase_order.Item, error) {
	var (
		v  purchase_order.Item
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.purchaseOrderItems.get(itemID) })
	if !ok {
		return nil, apperror.NewNotFound("purchase_order_item", itemID.String())
	}
	return &v, nil
}

func (r *PurchaseOrderRepo) UpdateItemReceived(_ context.Context, item *purchase_order.Item) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.purchaseOrderItems.get(item.ID)
		if !ok {
			return apperror.NewNotFound("purchase_order_item", item.ID.String())
		}
		stored.ReceivedQuantity = item.ReceivedQuantity
		db.purchaseOrderItems.put(item.ID, stored)
		return nil
	})
}

func (r *PurchaseOrderRepo) EnsureLinked(_ context.Context, orderID id.ID, salesOrderIDs []id.ID) error {
	return r.s.write(func(db *tables) error {
		for _, so := range salesOrderIDs {
			db.purchaseLinks.put(link{orderID, so}, struct{}{})
		}
		return nil
	})
}

func (r *PurchaseOrderRepo) Unlink(_ context.Context, orderID id.ID, salesOrderIDs []id.ID) error {
	return r.s.write(func(db *tables) error {
		for _, so := range salesOrderIDs {
			db.purchaseLinks.delete(link{orderID, so})
		}
		return nil
	})
}

func (r *PurchaseOrderRepo) LinkedSalesOrderIDs(_ context.Context, orderID id.ID) ([]id.ID, error) {
	out := []id.ID{}
	r.s.read(func(db *tables) {
		for _, k := range db.purchaseLinks.order {
			if k.Owner == orderID {
				out = append(out, k.SalesOrder)
			}
		}
	})
	return out, nil
}
