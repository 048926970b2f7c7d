package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/outbound"
)

// OutboundRepo implements outbound.Repository.
type OutboundRepo struct {
	s *Store
}

var _ outbound.Repository = (*OutboundRepo)(nil)

func storedOutbound(o *outbound.Order) outbound.Order {
	v := *o
	v.Items = nil
	return v
}

func (r *OutboundRepo) Create(_ context.Context, order *outbound.Order) error {
	return r.s.write(func(db *tables) error {
		if db.outbound.has(order.ID) {
			return apperror.NewDuplicate("outbound_order", "id", order.ID.String())
		}
		for _, o := range db.outbound.values(nil) {
			if o.ContainerPlanID == order.ContainerPlanID && o.Status != outbound.StatusCancelled {
				return apperror.NewDuplicate("outbound_order", "container_plan_id", order.ContainerPlanID.String())
			}
		}
		db.outbound.put(order.ID, storedOutbound(order))
		return nil
	})
}

func (r *OutboundRepo) GetByID(_ context.Context, orderID id.ID) (*outbound.Order, error) {
	var (
		v  outbound.Order
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.outbound.get(orderID) })
	if !ok {
		return nil, apperror.NewNotFound("outbound_order", orderID.String())
	}
	return &v, nil
}

func (r *OutboundRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*outbound.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *OutboundRepo) Update(_ context.Context, order *outbound.Order) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.outbound.get(order.ID)
		if !ok {
			return apperror.NewNotFound("outbound_order", order.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &order.BaseDocument, "outbound_order"); err != nil {
			return err
		}
		db.outbound.put(order.ID, storedOutbound(order))
		return nil
	})
}

func (r *OutboundRepo) List(_ context.Context, filter outbound.ListFilter) (domain.ListResult[*outbound.Order], error) {
	var rows []*outbound.Order
	r.s.read(func(db *tables) {
		for _, v := range db.outbound.values(func(o outbound.Order) bool {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
				return false
			}
			return filter.ContainerPlanID == nil || *filter.ContainerPlanID == o.ContainerPlanID
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(o *outbound.Order) doc {
		date := o.CreatedAt
		if o.OutboundDate != nil {
			date = *o.OutboundDate
		}
		return doc{id: o.ID, number: o.Number, date: date, created: o.CreatedAt}
	}), nil
}

func (r *OutboundRepo) GetItems(_ context.Context, orderID id.ID) ([]outbound.Item, error) {
	var items []outbound.Item
	r.s.read(func(db *tables) {
		items = db.outboundItems.values(func(it outbound.Item) bool { return it.OutboundOrderID == orderID })
	})
	return items, nil
}

func (r *OutboundRepo) SaveItems(_ context.Context, orderID id.ID, items []outbound.Item) error {
	return r.s.write(func(db *tables) error {
		for _, it := range db.outboundItems.values(func(it outbound.Item) bool { return it.OutboundOrderID == orderID }) {
			db.outboundItems.delete(it.ID)
		}
		for _, it := range items {
			it.OutboundOrderID = orderID
			db.outboundItems.put(it.ID, it)
		}
		return nil
	})
}

func (r *OutboundRepo) FindActiveByPlan(_ context.Context, planID id.ID) (*outbound.Order, error) {
	var found *outbound.Order
	r.s.read(func(db *tables) {
		for _, o := range db.outbound.values(nil) {
			if o.ContainerPlanID == planID && o.Status != outbound.StatusCancelled {
				found = &o
				return
			}
		}
	})
	return found, nil
}
