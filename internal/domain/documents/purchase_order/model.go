// Package purchase_order provides the procurement workflow.
// Purchase order lines draw down sales order demand; receiving draws down purchase order lines.
package purchase_order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/types"
	"snackexport/internal/domain/trade"
)

// PurchaseOrder is a supplier order.
type PurchaseOrder struct {
	entity.Document

	SupplierID   id.ID           `db:"supplier_id" json:"supplierId"`
	OrderDate    time.Time       `db:"order_date" json:"orderDate"`
	ExpectedDate *time.Time      `db:"expected_date" json:"expectedDate,omitempty"`
	Status       Status          `db:"status" json:"status"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`

	SalesOrderIDs []id.ID `db:"-" json:"salesOrderIds"`
	Items         []Item  `db:"-" json:"items"`
}

// Item is one purchase line.
type Item struct {
	ID               id.ID           `db:"id" json:"id"`
	PurchaseOrderID  id.ID           `db:"purchase_order_id" json:"purchaseOrderId"`
	LineNo           int             `db:"line_no" json:"lineNo"`
	ProductID        id.ID           `db:"product_id" json:"productId"`
	SalesOrderItemID *id.ID          `db:"sales_order_item_id" json:"salesOrderItemId,omitempty"`
	Quantity         int64           `db:"quantity" json:"quantity"`
	Unit             trade.Unit      `db:"unit" json:"unit"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	ReceivedQuantity int64           `db:"received_quantity" json:"receivedQuantity"`
	Remark           string          `db:"remark" json:"remark,omitempty"`
}

// RemainingQuantity is the quantity not yet received.
func (i *Item) RemainingQuantity() int64 {
	return i.Quantity - i.ReceivedQuantity
}

// ItemInput describes a line supplied by the caller.
type ItemInput struct {
	ProductID        id.ID
	SalesOrderItemID *id.ID
	Quantity         int64
	Unit             trade.Unit
	UnitPrice        decimal.Decimal
	Remark           string
}

// Header carries the caller-editable header fields.
type Header struct {
	SupplierID   id.ID
	OrderDate    time.Time
	ExpectedDate *time.Time
	Remark       string
}

// NewPurchaseOrder creates a draft purchase order.
func NewPurchaseOrder(h Header) *PurchaseOrder {
	o := &PurchaseOrder{
		Document: entity.NewDocument(),
		Status:   StatusDraft,
		Items:    make([]Item, 0),
	}
	o.ApplyHeader(h)
	return o
}

// ApplyHeader copies header fields onto the order. A zero order date means today.
func (o *PurchaseOrder) ApplyHeader(h Header) {
	o.SupplierID = h.SupplierID
	o.OrderDate = entity.DateOf(h.OrderDate)
	if h.OrderDate.IsZero() {
		o.OrderDate = entity.Today()
	}
	o.ExpectedDate = h.ExpectedDate
	o.Remark = h.Remark
}

// ReplaceItems discards current lines and builds new ones.
func (o *PurchaseOrder) ReplaceItems(inputs []ItemInput) {
	o.Items = make([]Item, 0, len(inputs))
	for i, in := range inputs {
		o.Items = append(o.Items, Item{
			ID:               id.New(),
			PurchaseOrderID:  o.ID,
			LineNo:           i + 1,
			ProductID:        in.ProductID,
			SalesOrderItemID: in.SalesOrderItemID,
			Quantity:         in.Quantity,
			Unit:             in.Unit.OrDefault(),
			UnitPrice:        types.RoundMoney(in.UnitPrice),
			Amount:           types.LineAmount(in.Quantity, in.UnitPrice),
			Remark:           in.Remark,
		})
	}
	o.RecalculateTotals()
}

// RecalculateTotals derives total_amount from the lines.
func (o *PurchaseOrder) RecalculateTotals() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Amount)
	}
	o.TotalAmount = types.RoundMoney(total)
}

// FindItem returns the line with the given id.
func (o *PurchaseOrder) FindItem(itemID id.ID) (*Item, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// ReceiptStatus derives the receiving status from the lines.
// It returns the current status when nothing was received yet.
func (o *PurchaseOrder) ReceiptStatus() Status {
	if len(o.Items) == 0 {
		return o.Status
	}
	all, some := true, false
	for _, it := range o.Items {
		if it.ReceivedQuantity < it.Quantity {
			all = false
		}
		if it.ReceivedQuantity > 0 {
			some = true
		}
	}
	switch {
	case all:
		return StatusFullyReceived
	case some:
		return StatusPartialReceived
	default:
		return o.Status
	}
}

// Validate implements entity.Validatable.
func (o *PurchaseOrder) Validate(ctx context.Context) error {
	if id.IsNil(o.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for _, it := range o.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if !it.Unit.IsValid() {
			return apperror.NewValidation("unknown unit").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
	}
	return nil
}
