package dto

import (
	"snackexport/internal/domain/registers/inventory"
)

// InventoryListQuery filters the batch list.
type InventoryListQuery struct {
	ListQuery
	ProductID     string `form:"productId"`
	SalesOrderID  string `form:"salesOrderId"`
	OnlyAvailable bool   `form:"onlyAvailable"`
}

// ToFilter converts the query into a batch filter.
func (q InventoryListQuery) ToFilter() (inventory.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return inventory.ListFilter{}, err
	}
	f := inventory.ListFilter{ListFilter: base, OnlyAvailable: q.OnlyAvailable}
	if f.ProductID, err = ParseOptionalID("productId", q.ProductID); err != nil {
		return f, err
	}
	if f.SalesOrderID, err = ParseOptionalID("salesOrderId", q.SalesOrderID); err != nil {
		return f, err
	}
	return f, nil
}

// InventoryTotalsQuery pages the per-product totals.
type InventoryTotalsQuery struct {
	ProductID []string `form:"productId"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int      `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a totals filter.
func (q InventoryTotalsQuery) ToFilter() (inventory.TotalsFilter, error) {
	ids, err := ParseIDs("productId", q.ProductID)
	if err != nil {
		return inventory.TotalsFilter{}, err
	}
	limit := q.Limit
	if limit == 0 {
		limit = 50
	}
	return inventory.TotalsFilter{ProductIDs: ids, Limit: limit, Offset: q.Offset}, nil
}
