package memstore

import (
	"context"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/registers/inventory"
)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	s *Store
}

var _ inventory.Repository = (*InventoryRepo)(nil)

func (r *InventoryRepo) Create(_ context.Context, rec *inventory.Record) error {
	return r.s.write(func(db *tables) error {
		if db.inventory.has(rec.ID) {
			return apperror.NewDuplicate("inventory_record", "id", rec.ID.String())
		}
		db.inventory.put(rec.ID, *rec)
		return nil
	})
}

func (r *InventoryRepo) GetByID(_ context.Context, recordID id.ID) (*inventory.Record, error) {
	var (
		v  inventory.Record
		ok bool
	)
	r.s.read(func(db *tables) { v, ok = db.inventory.get(recordID) })
	if !ok {
		return nil, apperror.NewNotFound("inventory_record", recordID.String())
	}
	return &v, nil
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, recordID id.ID) (*inventory.Record, error) {
	return r.GetByID(ctx, recordID)
}

func (r *InventoryRepo) UpdateBalances(_ context.Context, rec *inventory.Record) error {
	return r.s.write(func(db *tables) error {
		stored, ok := db.inventory.get(rec.ID)
		if !ok {
			return apperror.NewNotFound("inventory_record", rec.ID.String())
		}
		stored.ReservedQuantity = rec.ReservedQuantity
		stored.AvailableQuantity = rec.AvailableQuantity
		stored.UpdatedAt = rec.UpdatedAt
		db.inventory.put(rec.ID, stored)
		return nil
	})
}

func (r *InventoryRepo) SumAvailable(_ context.Context, productID id.ID, salesOrderID *id.ID) (int64, error) {
	var total int64
	r.s.read(func(db *tables) {
		for _, b := range db.inventory.values(nil) {
			if b.ProductID == productID && id.EqualPtr(b.SalesOrderID, salesOrderID) {
				total += b.AvailableQuantity
			}
		}
	})
	return total, nil
}

func (r *InventoryRepo) Batches(_ context.Context, filter inventory.BatchFilter) ([]inventory.Record, error) {
	var out []inventory.Record
	r.s.read(func(db *tables) {
		out = db.inventory.values(func(b inventory.Record) bool {
			if b.ProductID != filter.ProductID || !id.EqualPtr(b.SalesOrderID, filter.SalesOrderID) {
				return false
			}
			return !filter.OnlyAvailable || b.AvailableQuantity > 0
		})
	})
	inventory.SortByProduction(out)
	return out, nil
}

func (r *InventoryRepo) TotalsByProduct(_ context.Context, filter inventory.TotalsFilter) (domain.ListResult[inventory.ProductTotal], error) {
	var batches []inventory.Record
	r.s.read(func(db *tables) {
		batches = db.inventory.values(func(b inventory.Record) bool {
			return len(filter.ProductIDs) == 0 || containsID(filter.ProductIDs, b.ProductID)
		})
	})
	totals := inventory.Totals(batches)
	result := domain.ListResult[inventory.ProductTotal]{
		TotalCount: int64(len(totals)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	start := min(max(filter.Offset, 0), len(totals))
	end := len(totals)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(totals))
	}
	result.Items = totals[start:end]
	return result, nil
}

func (r *InventoryRepo) ListBySalesOrder(_ context.Context, salesOrderID id.ID) ([]inventory.Record, error) {
	var out []inventory.Record
	r.s.read(func(db *tables) {
		out = db.inventory.values(func(b inventory.Record) bool { return ptrEqual(b.SalesOrderID, salesOrderID) })
	})
	inventory.SortByProduction(out)
	return out, nil
}

func (r *InventoryRepo) List(_ context.Context, filter inventory.ListFilter) (domain.ListResult[inventory.Record], error) {
	var rows []inventory.Record
	r.s.read(func(db *tables) {
		rows = db.inventory.values(func(b inventory.Record) bool {
			if filter.ProductID != nil && *filter.ProductID != b.ProductID {
				return false
			}
			if filter.SalesOrderID != nil && !ptrEqual(b.SalesOrderID, *filter.SalesOrderID) {
				return false
			}
			return !filter.OnlyAvailable || b.AvailableQuantity > 0
		})
	})
	return page(rows, filter.ListFilter, func(b inventory.Record) doc {
		return doc{id: b.ID, number: b.BatchNo, date: b.ProductionDate, created: b.CreatedAt}
	}), nil
}
