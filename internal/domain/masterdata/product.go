// Package masterdata defines the read-only views of master data and system configuration
// consumed by the fulfillment workflows. The data itself is owned by other services.
package masterdata

import (
	"context"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
)

// Product is the subset of product master data the workflows read.
type Product struct {
	ID                   id.ID            `db:"id" json:"id"`
	Name                 string           `db:"name" json:"name"`
	ShelfLifeDays        *int             `db:"shelf_life_days" json:"shelfLifeDays,omitempty"`
	DefaultSupplierID    *id.ID           `db:"default_supplier_id" json:"defaultSupplierId,omitempty"`
	DefaultPurchasePrice *decimal.Decimal `db:"default_purchase_price" json:"defaultPurchasePrice,omitempty"`
}

// ProductReader loads products by id. Missing ids are absent from the result map.
type ProductReader interface {
	GetProducts(ctx context.Context, ids []id.ID) (map[id.ID]Product, error)
}

// StaticProducts is an in-memory ProductReader.
type StaticProducts map[id.ID]Product

// GetProducts implements ProductReader.
func (s StaticProducts) GetProducts(_ context.Context, ids []id.ID) (map[id.ID]Product, error) {
	out := make(map[id.ID]Product, len(ids))
	for _, pid := range ids {
		if p, ok := s[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}
