// Package register_repo provides PostgreSQL implementations for ledger repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/registers/inventory"
	"snackexport/internal/infrastructure/storage/postgres"
)

const inventoryRecordsTable = "reg_inventory_records"

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	cols    []string
}

var _ inventory.Repository = (*InventoryRepo)(nil)

// NewInventoryRepo creates a new inventory ledger repository.
func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:    postgres.ExtractDBColumns[inventory.Record](),
	}
}

func (r *InventoryRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts a new batch.
func (r *InventoryRepo) Create(ctx context.Context, rec *inventory.Record) error {
	data := postgres.StructToMap(rec)
	sql, args, err := r.builder.
		Insert(inventoryRecordsTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert inventory record: %w", err), "inventory_record")
	}
	return nil
}

func (r *InventoryRepo) get(ctx context.Context, recordID id.ID, lock bool) (*inventory.Record, error) {
	q := r.builder.
		Select(r.cols...).
		From(inventoryRecordsTable).
		Where(squirrel.Eq{"id": recordID})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rec inventory.Record
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory_record", recordID.String())
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// GetByID returns one batch.
func (r *InventoryRepo) GetByID(ctx context.Context, recordID id.ID) (*inventory.Record, error) {
	return r.get(ctx, recordID, false)
}

// GetForUpdate locks the batch row until the end of the transaction.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, recordID id.ID) (*inventory.Record, error) {
	return r.get(ctx, recordID, true)
}

// UpdateBalances persists reserved/available counters of a locked row.
func (r *InventoryRepo) UpdateBalances(ctx context.Context, rec *inventory.Record) error {
	sql, args, err := r.builder.
		Update(inventoryRecordsTable).
		Set("reserved_quantity", rec.ReservedQuantity).
		Set("available_quantity", rec.AvailableQuantity).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"id": rec.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update inventory balances: %w", err), "inventory_record")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory_record", rec.ID.String())
	}
	return nil
}

// salesOrderPredicate matches earmarked stock, or un-earmarked stock for nil.
func salesOrderPredicate(salesOrderID *id.ID) squirrel.Sqlizer {
	if salesOrderID == nil {
		return squirrel.Eq{"sales_order_id": nil}
	}
	return squirrel.Eq{"sales_order_id": *salesOrderID}
}

// SumAvailable sums available_quantity for product and sales order.
func (r *InventoryRepo) SumAvailable(ctx context.Context, productID id.ID, salesOrderID *id.ID) (int64, error) {
	sql, args, err := r.builder.
		Select("COALESCE(SUM(available_quantity), 0)").
		From(inventoryRecordsTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(salesOrderPredicate(salesOrderID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var total int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum available: %w", err)
	}
	return total, nil
}

// Batches lists batches of one product/sales order pair, oldest production first.
func (r *InventoryRepo) Batches(ctx context.Context, filter inventory.BatchFilter) ([]inventory.Record, error) {
	q := r.builder.
		Select(r.cols...).
		From(inventoryRecordsTable).
		Where(squirrel.Eq{"product_id": filter.ProductID}).
		Where(salesOrderPredicate(filter.SalesOrderID)).
		OrderBy("production_date", "created_at", "id")
	if filter.OnlyAvailable {
		q = q.Where(squirrel.Gt{"available_quantity": 0})
	}
	if filter.ForUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return r.selectRecords(ctx, q)
}

// ListBySalesOrder lists every batch earmarked for a sales order.
func (r *InventoryRepo) ListBySalesOrder(ctx context.Context, salesOrderID id.ID) ([]inventory.Record, error) {
	return r.selectRecords(ctx, r.builder.
		Select(r.cols...).
		From(inventoryRecordsTable).
		Where(squirrel.Eq{"sales_order_id": salesOrderID}).
		OrderBy("product_id", "production_date", "created_at"))
}

func (r *InventoryRepo) selectRecords(ctx context.Context, q squirrel.SelectBuilder) ([]inventory.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []inventory.Record
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select inventory records: %w", err)
	}
	return out, nil
}

// TotalsByProduct aggregates batches per product.
func (r *InventoryRepo) TotalsByProduct(ctx context.Context, filter inventory.TotalsFilter) (domain.ListResult[inventory.ProductTotal], error) {
	result := domain.ListResult[inventory.ProductTotal]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.builder.
		Select(
			"product_id",
			"SUM(quantity) AS total_quantity",
			"SUM(reserved_quantity) AS reserved_quantity",
			"SUM(available_quantity) AS available_quantity",
			"COUNT(*) AS batch_count",
		).
		From(inventoryRecordsTable).
		GroupBy("product_id")
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count totals: %w", err)
	}

	q = q.OrderBy("product_id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("totals by product: %w", err)
	}
	return result, nil
}

// List returns batches matching the filter.
func (r *InventoryRepo) List(ctx context.Context, filter inventory.ListFilter) (domain.ListResult[inventory.Record], error) {
	result := domain.ListResult[inventory.Record]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.builder.Select(r.cols...).From(inventoryRecordsTable)
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.SalesOrderID != nil {
		q = q.Where(squirrel.Eq{"sales_order_id": *filter.SalesOrderID})
	}
	if filter.OnlyAvailable {
		q = q.Where(squirrel.Gt{"available_quantity": 0})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"batch_no": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count inventory records: %w", err)
	}

	q = q.OrderBy("production_date", "created_at")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	items, err := r.selectRecords(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}
