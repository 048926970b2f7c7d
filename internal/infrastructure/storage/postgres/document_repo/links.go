package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/id"
	"snackexport/internal/infrastructure/storage/postgres"
)

// linkTable is a many-to-many table between a document and sales orders.
type linkTable struct {
	txm      *postgres.TxManager
	name     string
	ownerCol string
}

// ensure inserts missing (owner, sales order) pairs.
func (l linkTable) ensure(ctx context.Context, ownerID id.ID, salesOrderIDs []id.ID) error {
	if len(salesOrderIDs) == 0 {
		return nil
	}
	q := builder().
		Insert(l.name).
		Columns(l.ownerCol, "sales_order_id")
	for _, soID := range id.Unique(salesOrderIDs) {
		q = q.Values(ownerID, soID)
	}
	sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := l.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", l.name, err), l.name)
	}
	return nil
}

// remove deletes the given pairs.
func (l linkTable) remove(ctx context.Context, ownerID id.ID, salesOrderIDs []id.ID) error {
	if len(salesOrderIDs) == 0 {
		return nil
	}
	sql, args, err := builder().
		Delete(l.name).
		Where(squirrel.Eq{l.ownerCol: ownerID, "sales_order_id": salesOrderIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := l.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", l.name, err)
	}
	return nil
}

// salesOrders lists the sales orders linked to an owner in link order.
func (l linkTable) salesOrders(ctx context.Context, ownerID id.ID) ([]id.ID, error) {
	sql, args, err := builder().
		Select("sales_order_id").
		From(l.name).
		Where(squirrel.Eq{l.ownerCol: ownerID}).
		OrderBy("created_at", "sales_order_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := l.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", l.name, err)
	}
	defer rows.Close()

	var out []id.ID
	for rows.Next() {
		var v id.ID
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", l.name, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ownersOf matches owner rows linked to a sales order.
func (l linkTable) ownersOf(salesOrderID id.ID) squirrel.Sqlizer {
	sub := builder().
		Select(l.ownerCol).
		From(l.name).
		Where(squirrel.Eq{"sales_order_id": salesOrderID})
	return squirrel.Expr("id IN (?)", sub)
}
