package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	logisticsRecordsTable = "doc_logistics_records"
	logisticsCostsTable   = "doc_logistics_costs"
)

// LogisticsRepo implements logistics.Repository.
type LogisticsRepo struct {
	*BaseDocumentRepo[*logistics.Record]
	costs childTable[logistics.Cost]
}

var _ logistics.Repository = (*LogisticsRepo)(nil)

// NewLogisticsRepo creates a new logistics record repository.
func NewLogisticsRepo(txm *postgres.TxManager) *LogisticsRepo {
	return &LogisticsRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			logisticsRecordsTable,
			postgres.ExtractDBColumns[logistics.Record](),
			"created_at",
			func() *logistics.Record { return &logistics.Record{} },
		).withReadOnly("total_cost"),
		costs: newChildTable[logistics.Cost](txm, logisticsCostsTable, "logistics_record_id", "created_at, id"),
	}
}

// Update writes the record header. total_cost is owned by SetTotalCost and is
// reloaded onto rec.
func (r *LogisticsRepo) Update(ctx context.Context, rec *logistics.Record) error {
	if err := r.BaseDocumentRepo.Update(ctx, rec); err != nil {
		return err
	}
	total, err := r.storedTotal(ctx, rec.ID)
	if err != nil {
		return err
	}
	rec.TotalCost = total
	return nil
}

// List retrieves logistics records with filtering.
func (r *LogisticsRepo) List(ctx context.Context, filter logistics.ListFilter) (domain.ListResult[*logistics.Record], error) {
	q := r.baseSelect()
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if len(filter.ContainerPlanIDs) > 0 {
		q = q.Where(squirrel.Eq{"container_plan_id": filter.ContainerPlanIDs})
	}
	return r.page(ctx, q, filter.ListFilter)
}

// CountByStatus aggregates record count and cost per status.
func (r *LogisticsRepo) CountByStatus(ctx context.Context) ([]logistics.StatusCount, error) {
	sql, args, err := r.Builder().
		Select("status", "COUNT(*) AS count", "COALESCE(SUM(total_cost), 0) AS total_cost").
		From(logisticsRecordsTable).
		GroupBy("status").
		OrderBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []logistics.StatusCount
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return out, nil
}

// GetCosts lists the costs of a record in creation order.
func (r *LogisticsRepo) GetCosts(ctx context.Context, recordID id.ID) ([]logistics.Cost, error) {
	return r.costs.byParent(ctx, recordID)
}

// CreateCost inserts a cost line.
func (r *LogisticsRepo) CreateCost(ctx context.Context, cost *logistics.Cost) error {
	return r.costs.insert(ctx, *cost)
}

// UpdateCost rewrites a cost line.
func (r *LogisticsRepo) UpdateCost(ctx context.Context, cost *logistics.Cost) error {
	return r.costs.update(ctx, cost.ID, *cost, "cost_type", "amount", "currency", "remark")
}

// DeleteCost removes a cost line.
func (r *LogisticsRepo) DeleteCost(ctx context.Context, costID id.ID) error {
	return r.costs.delete(ctx, costID)
}

// SumCosts computes the live total of a record's costs.
func (r *LogisticsRepo) SumCosts(ctx context.Context, recordID id.ID) (decimal.Decimal, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(amount), 0)").
		From(logisticsCostsTable).
		Where(squirrel.Eq{"logistics_record_id": recordID}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}
	var total decimal.Decimal
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum costs: %w", err)
	}
	return total, nil
}

// SetTotalCost stores the cached total of a record.
func (r *LogisticsRepo) SetTotalCost(ctx context.Context, recordID id.ID, total decimal.Decimal) error {
	sql, args, err := r.Builder().
		Update(logisticsRecordsTable).
		Set("total_cost", total).
		Where(squirrel.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set total cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(logisticsRecordsTable, recordID.String())
	}
	return nil
}

func (r *LogisticsRepo) storedTotal(ctx context.Context, recordID id.ID) (decimal.Decimal, error) {
	var total decimal.Decimal
	sql := "SELECT total_cost FROM " + logisticsRecordsTable + " WHERE id = $1"
	if err := r.querier(ctx).QueryRow(ctx, sql, recordID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("read total cost: %w", err)
	}
	return total, nil
}
