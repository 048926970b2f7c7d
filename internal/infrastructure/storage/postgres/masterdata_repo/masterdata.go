// Package masterdata_repo reads product master data and system configuration
// owned by other services from the shared database.
package masterdata_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/infrastructure/storage/postgres"
	"snackexport/pkg/logger"
)

const (
	productsTable      = "products"
	systemConfigsTable = "system_configs"
)

// ProductRepo implements masterdata.ProductReader.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ masterdata.ProductReader = (*ProductRepo)(nil)

// NewProductRepo creates a product reader.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetProducts loads products by id. Missing ids are absent from the result.
func (r *ProductRepo) GetProducts(ctx context.Context, ids []id.ID) (map[id.ID]masterdata.Product, error) {
	out := make(map[id.ID]masterdata.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := r.builder.
		Select(postgres.ExtractDBColumns[masterdata.Product]()...).
		From(productsTable).
		Where(squirrel.Eq{"id": id.Unique(ids)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []masterdata.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// SettingsRepo implements masterdata.SettingsReader over the system_configs key/value table.
type SettingsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ masterdata.SettingsReader = (*SettingsRepo)(nil)

// NewSettingsRepo creates a settings reader.
func NewSettingsRepo(txm *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Snapshot reads the configuration keys the workflows use.
// A missing or malformed value falls back to its default.
func (r *SettingsRepo) Snapshot(ctx context.Context) (masterdata.Settings, error) {
	sql, args, err := r.builder.
		Select("config_key", "config_value").
		From(systemConfigsTable).
		Where(squirrel.Eq{"config_key": []string{masterdata.KeyShelfLifeThreshold}}).
		ToSql()
	if err != nil {
		return masterdata.Settings{}, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		Key   string `db:"config_key"`
		Value string `db:"config_value"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return masterdata.Settings{}, fmt.Errorf("select system configs: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	settings := masterdata.SettingsFromValues(values)
	logger.Debug(ctx, "settings snapshot", "shelf_life_threshold", settings.ShelfLifeThreshold.String())
	return settings, nil
}
