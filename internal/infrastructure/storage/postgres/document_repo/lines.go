package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/infrastructure/storage/postgres"
)

// childTable maps a detail table (items, costs, stuffing records) whose rows
// belong to one parent row.
type childTable[R any] struct {
	txm       *postgres.TxManager
	name      string
	parentCol string
	orderBy   string
	cols      []string
}

func newChildTable[R any](txm *postgres.TxManager, name, parentCol, orderBy string) childTable[R] {
	return childTable[R]{
		txm:       txm,
		name:      name,
		parentCol: parentCol,
		orderBy:   orderBy,
		cols:      postgres.ExtractDBColumns[R](),
	}
}

func (t childTable[R]) querier(ctx context.Context) postgres.Querier {
	return t.txm.GetQuerier(ctx)
}

func (t childTable[R]) selectRows(ctx context.Context, where any) ([]R, error) {
	sql, args, err := builder().
		Select(t.cols...).
		From(t.name).
		Where(where).
		OrderBy(t.orderBy).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []R
	if err := pgxscan.Select(ctx, t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return rows, nil
}

// byParent returns the rows of one parent in display order.
func (t childTable[R]) byParent(ctx context.Context, parentID id.ID) ([]R, error) {
	return t.selectRows(ctx, squirrel.Eq{t.parentCol: parentID})
}

// getForUpdate locks one row.
func (t childTable[R]) getForUpdate(ctx context.Context, where squirrel.Eq, key string) (*R, error) {
	sql, args, err := builder().
		Select(t.cols...).
		From(t.name).
		Where(where).
		OrderBy(t.orderBy).
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	row := new(R)
	if err := pgxscan.Get(ctx, t.querier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.name, key)
		}
		return nil, fmt.Errorf("get %s for update: %w", t.name, err)
	}
	return row, nil
}

func (t childTable[R]) values(row R) []any {
	data := postgres.StructToMap(row)
	out := make([]any, len(t.cols))
	for i, col := range t.cols {
		out[i] = data[col]
	}
	return out
}

// insert adds one row.
func (t childTable[R]) insert(ctx context.Context, row R) error {
	sql, args, err := builder().
		Insert(t.name).
		Columns(t.cols...).
		Values(t.values(row)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", t.name, err), t.name)
	}
	return nil
}

// update rewrites the listed columns of the row with the given id.
func (t childTable[R]) update(ctx context.Context, rowID id.ID, row R, cols ...string) error {
	data := postgres.StructToMap(row)
	set := make(map[string]any, len(cols))
	for _, col := range cols {
		set[col] = data[col]
	}
	sql, args, err := builder().
		Update(t.name).
		SetMap(set).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", t.name, err), t.name)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(t.name, rowID.String())
	}
	return nil
}

// delete removes the row with the given id.
func (t childTable[R]) delete(ctx context.Context, rowID id.ID) error {
	sql, args, err := builder().
		Delete(t.name).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(t.name, rowID.String())
	}
	return nil
}

// replace deletes the rows of a parent and inserts rows in their place.
// Inside a transaction the rows go through COPY.
func (t childTable[R]) replace(ctx context.Context, parentID id.ID, rows []R) error {
	querier := t.querier(ctx)
	deleteSQL := "DELETE FROM " + t.name + " WHERE " + t.parentCol + " = $1"
	if _, err := querier.Exec(ctx, deleteSQL, parentID); err != nil {
		return fmt.Errorf("delete existing %s: %w", t.name, err)
	}
	if len(rows) == 0 {
		return nil
	}

	if t.txm.GetTx(ctx) != nil {
		values := make([][]any, 0, len(rows))
		for _, row := range rows {
			values = append(values, t.values(row))
		}
		if _, err := postgres.NewBatchInserter(t.txm).CopyFromSlice(ctx, t.name, t.cols, values); err != nil {
			return postgres.MapError(fmt.Errorf("copy %s: %w", t.name, err), t.name)
		}
		return nil
	}

	q := builder().Insert(t.name).Columns(t.cols...)
	for _, row := range rows {
		q = q.Values(t.values(row)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", t.name, err), t.name)
	}
	return nil
}
