package memstore

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/logistics"
)

// LogisticsRepo implements logistics.Repository.
type LogisticsRepo struct {
	s *Store
}

var _ logistics.Repository = (*LogisticsRepo)(nil)

func storedRecord(rec *logistics.Record) logistics.Record {
	v := *rec
	v.Costs = nil
	return v
}

func (r *LogisticsRepo) Create(_ context.Context, rec *logistics.Record) error {
	return r.s.write(func(db *tables) error {
		if db.logistics.has(rec.ID) {
			return apperror.NewDuplicate("logistics_record", "id", rec.ID.String())
		}
		db.logistics.put(rec.ID, storedRecord(rec))
		return nil
	})
}

func (r *LogisticsRepo) GetByID(_ context.Context, recordID id.ID) (*logistics.Record, error) {
	var (
		v  logistics.Record
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.logistics.get(recordID) })
	if !ok {
		return nil, apperror.NewNotFound("logistics_record", recordID.String())
	}
	return &v, nil
}

func (r *LogisticsRepo) GetForUpdate(ctx context.Context, recordID id.ID) (*logistics.Record, error) {
	return r.GetByID(ctx, recordID)
}

func (r *LogisticsRepo) Update(_ context.Context, rec *logistics.Record) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.logistics.get(rec.ID)
		if !ok {
			return apperror.NewNotFound("logistics_record", rec.ID.String())
		}
		if err := bumpVersion(stored.BaseDocument, &rec.BaseDocument, "logistics_record"); err != nil {
			return err
		}
		rec.TotalCost = stored.TotalCost
		db.logistics.put(rec.ID, storedRecord(rec))
		return nil
	})
}

func (r *LogisticsRepo) List(_ context.Context, filter logistics.ListFilter) (domain.ListResult[*logistics.Record], error) {
	var rows []*logistics.Record
	r.s.read(func(db *tables) {
		for _, v := range db.logistics.values(func(rec logistics.Record) bool {
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, rec.Status) {
				return false
			}
			return len(filter.ContainerPlanIDs) == 0 || containsID(filter.ContainerPlanIDs, rec.ContainerPlanID)
		}) {
			rows = append(rows, &v)
		}
	})
	return page(rows, filter.ListFilter, func(rec *logistics.Record) doc {
		return doc{id: rec.ID, number: rec.Number, date: rec.CreatedAt, created: rec.CreatedAt}
	}), nil
}

func (r *LogisticsRepo) CountByStatus(_ context.Context) ([]logistics.StatusCount, error) {
	var out []logistics.StatusCount
	r.s.read(func(db *tables) {
		for _, rec := range db.logistics.values(nil) {
			i := slices.IndexFunc(out, func(c logistics.StatusCount) bool { return c.Status == rec.Status })
			if i < 0 {
				out = append(out, logistics.StatusCount{Status: rec.Status, TotalCost: decimal.Zero})
				i = len(out) - 1
			}
			out[i].Count++
			out[i].TotalCost = out[i].TotalCost.Add(rec.TotalCost)
		}
	})
	return out, nil
}

func (r *LogisticsRepo) GetCosts(_ context.Context, recordID id.ID) ([]logistics.Cost, error) {
	out := []logistics.Cost{}
	r.s.read(func(db *tables) {
		out = append(out, db.logisticsCosts.values(func(c logistics.Cost) bool { return c.LogisticsRecordID == recordID })...)
	})
	return out, nil
}

func (r *LogisticsRepo) CreateCost(_ context.Context, cost *logistics.Cost) error {
	return r.s.write(func(db *tables) error {
		db.logisticsCosts.put(cost.ID, *cost)
		return nil
	})
}

func (r *LogisticsRepo) UpdateCost(_ context.Context, cost *logistics.Cost) error {
	return r.s.write(func(db *tables) error {
		if !db.logisticsCosts.has(cost.ID) {
			return apperror.NewNotFound("logistics_cost", cost.ID.String())
		}
		db.logisticsCosts.put(cost.ID, *cost)
		return nil
	})
}

func (r *LogisticsRepo) DeleteCost(_ context.Context, costID id.ID) error {
	return r.s.write(func(db *tables) error {
		if !db.logisticsCosts.has(costID) {
			return apperror.NewNotFound("logistics_cost", costID.String())
		}
		db.logisticsCosts.delete(costID)
		return nil
	})
}

func (r *LogisticsRepo) SumCosts(_ context.Context, recordID id.ID) (decimal.Decimal, error) {
	total := decimal.Zero
	r.s.read(func(db *tables) {
		for _, c := range db.logisticsCosts.values(nil) {
			if c.LogisticsRecordID == recordID {
				total = total.Add(c.Amount)
			}
		}
	})
	return total, nil
}

func (r *LogisticsRepo) SetTotalCost(_ context.Context, recordID id.ID, total decimal.Decimal) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.logistics.get(recordID)
		if !ok {
			return apperror.NewNotFound("logistics_record", recordID.String())
		}
		stored.TotalCost = total
		db.logistics.put(recordID, stored)
		return nil
	})
}
