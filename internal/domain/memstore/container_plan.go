package memstore

import (
	"context"
	"slices"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/container_plan"
)

// ContainerPlanRepo implements container_plan.Repository.
type ContainerPlanRepo struct {
	s *Store
}

var _ container_plan.Repository = (*ContainerPlanRepo)(nil)

func storedPlan(p *container_plan.Plan) container_plan.Plan {
	v := *p
	v.SalesOrderIDs = nil
	v.Items = nil
	v.StuffingRecords = nil
	return v
}

func (r *ContainerPlanRepo) Create(_ context.Context, plan *container_plan.Plan) error {
	return r.s.write(func(db *tables) error {
		if db.plans.has(plan.ID) {
			return apperror.NewDuplicate("container_plan", "id", plan.ID.String())
		}
		db.plans.put(plan.ID, storedPlan(plan))
		return nil
	})
}

func (r *ContainerPlanRepo) GetByID(_ context.Context, planID id.ID) (*container_plan.Plan, error) {
	var (
		v  container_plan.Plan
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.plans.get(planID) })
	if !ok {
		return nil, apperror.NewNotFound("container_plan", planID.String())
	}
	return &v, nil
}

func (r *ContainerPlanRepo) GetForUpdate(ctx context.Context, planID id.ID) (*container_plan.Plan, error) {
	return r.GetByID(ctx, planID)
}

func (r *ContainerPlanRepo) Update(_ context.Context, plan *container_plan.Plan) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.plans.get(plan.ID)
		if !ok {
			return apperror.NewNotFound("container_plan", plan.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &plan.BaseDocument, "container_plan"); err != nil {
			return err
		}
		db.plans.put(plan.ID, storedPlan(plan))
		return nil
	})
}

func (r *ContainerPlanRepo) List(_ context.Context, filter container_plan.ListFilter) (domain.ListResult[*container_plan.Plan], error) {
	var rows []*container_plan.Plan
	r.s.read(func(db *tables) {
		for _, v := range db.plans.values(func(p container_plan.Plan) bool {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, p.Status) {
				return false
			}
			return filter.SalesOrderID == nil || db.planLinks.has(link{p.ID, *filter.SalesOrderID})
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(p *container_plan.Plan) doc {
		return doc{id: p.ID, number: p.Number, date: p.CreatedAt, created: p.CreatedAt}
	}), nil
}

func (r *ContainerPlanRepo) EnsureLinked(_ context.Context, planID id.ID, salesOrderIDs []id.ID) error {
	return r.s.write(func(db *tables) error {
		for _, so := range salesOrderIDs {
			db.planLinks.put(link{planID, so}, struct{}{})
		}
		return nil
	})
}

func (r *ContainerPlanRepo) LinkedSalesOrderIDs(_ context.Context, planID id.ID) ([]id.ID, error) {
	out := []id.ID{}
	r.s.read(func(db *tables) {
		for _, k := range db.planLinks.order {
			if k.Owner == planID {
				out = append(out, k.SalesOrder)
			}
		}
	})
	return out, nil
}

func (r *ContainerPlanRepo) GetItems(_ context.Context, planID id.ID) ([]container_plan.Item, error) {
	var items []container_plan.Item
	r.s.read(func(db *tables) {
		items = db.planItems.values(func(it container_plan.Item) bool { return it.ContainerPlanID == planID })
	})
	slices.SortStableFunc(items, func(a, b container_plan.Item) int { return a.ContainerSeq - b.ContainerSeq })
	return items, nil
}

func (r *ContainerPlanRepo) CreateItem(_ context.Context, item *container_plan.Item) error {
	return r.s.write(func(db *tables) error {
		db.planItems.put(item.ID, *item)
		return nil
	})
}

func (r *ContainerPlanRepo) UpdateItem(_ context.Context, item *container_plan.Item) error {
	return r.s.write(func(db *tables) error {
		if !db.planItems.has(item.ID) {
			return apperror.NewNotFound("container_plan_item", item.ID.String())
		}
		db.planItems.put(item.ID, *item)
		return nil
	})
}

func (r *ContainerPlanRepo) DeleteItem(_ context.Context, itemID id.ID) error {
	return r.s.write(func(db *tables) error {
		if !db.planItems.has(itemID) {
			return apperror.NewNotFound("container_plan_item", itemID.String())
		}
		db.planItems.delete(itemID)
		return nil
	})
}

func (r *ContainerPlanRepo) GetStuffingRecords(_ context.Context, planID id.ID) ([]container_plan.StuffingRecord, error) {
	var out []container_plan.StuffingRecord
	r.s.read(func(db *tables) {
		out = db.stuffing.values(func(s container_plan.StuffingRecord) bool { return s.ContainerPlanID == planID })
	})
	return out, nil
}

func (r *ContainerPlanRepo) CreateStuffingRecord(_ context.Context, rec *container_plan.StuffingRecord) error {
	return r.s.write(func(db *tables) error {
		for _, s := range db.stuffing.values(nil) {
			if s.ContainerPlanID == rec.ContainerPlanID && s.ContainerSeq == rec.ContainerSeq {
				return apperror.NewDuplicate("stuffing_record", "container_seq", "")
			}
		}
		v := *rec
		v.Photos = nil
		db.stuffing.put(rec.ID, v)
		return nil
	})
}

func (r *ContainerPlanRepo) GetPhotos(_ context.Context, recordIDs []id.ID) ([]container_plan.Photo, error) {
	var out []container_plan.Photo
	r.s.read(func(db *tables) {
		out = db.photos.values(func(p container_plan.Photo) bool { return containsID(recordIDs, p.StuffingRecordID) })
	})
	return out, nil
}

func (r *ContainerPlanRepo) CreatePhoto(_ context.Context, photo *container_plan.Photo) error {
	return r.s.write(func(db *tables) error {
		db.photos.put(photo.ID, *photo)
		return nil
	})
}
