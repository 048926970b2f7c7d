package dto

import (
	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/trade"
)

// PurchaseOrderItemRequest is one purchase line.
type PurchaseOrderItemRequest struct {
	ProductID        id.ID           `json:"productId" binding:"required"`
	SalesOrderItemID *id.ID          `json:"salesOrderItemId"`
	Quantity         int64           `json:"quantity" binding:"required,gt=0"`
	Unit             trade.Unit      `json:"unit" binding:"omitempty,oneof=piece carton"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Remark           string          `json:"remark" binding:"max=500"`
}

// PurchaseOrderRequest creates or replaces a purchase order.
type PurchaseOrderRequest struct {
	SupplierID    id.ID                      `json:"supplierId" binding:"required"`
	OrderDate     Date                       `json:"orderDate"`
	ExpectedDate  *Date                      `json:"expectedDate"`
	Remark        string                     `json:"remark" binding:"max=1000"`
	SalesOrderIDs []id.ID                    `json:"salesOrderIds"`
	Items         []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r PurchaseOrderRequest) header() purchase_order.Header {
	return purchase_order.Header{
		SupplierID:   r.SupplierID,
		OrderDate:    r.OrderDate.Time,
		ExpectedDate: r.ExpectedDate.Ptr(),
		Remark:       r.Remark,
	}
}

func (r PurchaseOrderRequest) items() []purchase_order.ItemInput {
	out := make([]purchase_order.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, purchase_order.ItemInput{
			ProductID:        it.ProductID,
			SalesOrderItemID: it.SalesOrderItemID,
			Quantity:         it.Quantity,
			Unit:             it.Unit,
			UnitPrice:        it.UnitPrice,
			Remark:           it.Remark,
		})
	}
	return out
}

// ToCreateInput maps the request to the create input.
func (r PurchaseOrderRequest) ToCreateInput() purchase_order.CreateInput {
	return purchase_order.CreateInput{Header: r.header(), SalesOrderIDs: r.SalesOrderIDs, Items: r.items()}
}

// ToUpdateInput maps the request to the update input.
func (r PurchaseOrderRequest) ToUpdateInput() purchase_order.UpdateInput {
	return purchase_order.UpdateInput{Header: r.header(), SalesOrderIDs: r.SalesOrderIDs, Items: r.items()}
}

// SalesOrderLinksRequest links or unlinks sales orders.
type SalesOrderLinksRequest struct {
	SalesOrderIDs []id.ID `json:"salesOrderIds" binding:"required,min=1"`
}

// PurchaseOrderListQuery filters the purchase order list.
type PurchaseOrderListQuery struct {
	ListQuery
	Status       []string `form:"status"`
	SupplierID   string   `form:"supplierId"`
	SalesOrderID string   `form:"salesOrderId"`
}

// ToFilter converts the query into a purchase order filter.
func (q PurchaseOrderListQuery) ToFilter() (purchase_order.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return purchase_order.ListFilter{}, err
	}
	f := purchase_order.ListFilter{ListFilter: base}
	if f.SupplierID, err = ParseOptionalID("supplierId", q.SupplierID); err != nil {
		return f, err
	}
	if f.SalesOrderID, err = ParseOptionalID("salesOrderId", q.SalesOrderID); err != nil {
		return f, err
	}
	for _, s := range SplitValues(q.Status) {
		f.Statuses = append(f.Statuses, purchase_order.Status(s))
	}
	return f, nil
}
