// Package sales_order provides the customer demand workflow.
package sales_order

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

// SalesOrder is the customer demand document.
type SalesOrder struct {
	entity.Document

	CustomerID           id.ID               `db:"customer_id" json:"customerId"`
	OrderDate            time.Time           `db:"order_date" json:"orderDate"`
	RequiredDeliveryDate *time.Time          `db:"required_delivery_date" json:"requiredDeliveryDate,omitempty"`
	DestinationPort      string              `db:"destination_port" json:"destinationPort"`
	TradeTerm            trade.TradeTerm     `db:"trade_term" json:"tradeTerm"`
	Currency             trade.Currency      `db:"currency" json:"currency"`
	PaymentMethod        trade.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentTerms         string              `db:"payment_terms" json:"paymentTerms,omitempty"`
	EstimatedVolumeCBM   decimal.Decimal     `db:"estimated_volume_cbm" json:"estimatedVolumeCbm"`
	EstimatedWeightKG    decimal.Decimal     `db:"estimated_weight_kg" json:"estimatedWeightKg"`
	Status               Status              `db:"status" json:"status"`

	// Totals (calculated from items)
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	TotalQuantity int64           `db:"total_quantity" json:"totalQuantity"`

	Items []Item `db:"-" json:"items"`
}

// Item is one demand line.
type Item struct {
	ID           id.ID           `db:"id" json:"id"`
	SalesOrderID id.ID           `db:"sales_order_id" json:"salesOrderId"`
	LineNo       int             `db:"line_no" json:"lineNo"`
	ProductID    id.ID           `db:"product_id" json:"productId"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	Unit         trade.Unit      `db:"unit" json:"unit"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`

	PurchasedQuantity int64 `db:"purchased_quantity" json:"purchasedQuantity"`
	ReceivedQuantity  int64 `db:"received_quantity" json:"receivedQuantity"`
	ReservedQuantity  int64 `db:"reserved_quantity" json:"reservedQuantity"`
	OutboundQuantity  int64 `db:"outbound_quantity" json:"outboundQuantity"`

	Remark string `db:"remark" json:"remark,omitempty"`
}

// RemainingDemand is the quantity not yet covered by purchase orders.
func (i *Item) RemainingDemand() int64 {
	return i.Quantity - i.PurchasedQuantity
}

// IsReceived reports whether the line has received its full quantity.
func (i *Item) IsReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// HasActivity reports whether downstream workflows already reference the line.
func (i *Item) HasActivity() bool {
	return i.PurchasedQuantity > 0 || i.ReceivedQuantity > 0 || i.ReservedQuantity > 0 || i.OutboundQuantity > 0
}

// ItemInput describes a line supplied by the caller.
type ItemInput struct {
	ProductID id.ID
	Quantity  int64
	Unit      trade.Unit
	UnitPrice decimal.Decimal
	Remark    string
}

// Header carries the caller-editable header fields.
type Header struct {
	CustomerID           id.ID
	OrderDate            time.Time
	RequiredDeliveryDate *time.Time
	DestinationPort      string
	TradeTerm            trade.TradeTerm
	Currency             trade.Currency
	PaymentMethod        trade.PaymentMethod
	PaymentTerms         string
	EstimatedVolumeCBM   decimal.Decimal
	EstimatedWeightKG    decimal.Decimal
	Remark               string
}

// NewSalesOrder creates a draft order.
func NewSalesOrder(h Header) *SalesOrder {
	o := &SalesOrder{
		Document: entity.NewDocument(),
		Status:   StatusDraft,
		Items:    make([]Item, 0),
	}
	o.ApplyHeader(h)
	return o
}

// ApplyHeader copies header fields onto the order.
func (o *SalesOrder) ApplyHeader(h Header) {
	o.CustomerID = h.CustomerID
	o.OrderDate = entity.DateOf(h.OrderDate)
	o.RequiredDeliveryDate = h.RequiredDeliveryDate
	o.DestinationPort = h.DestinationPort
	o.TradeTerm = h.TradeTerm
	o.Currency = h.Currency
	o.PaymentMethod = h.PaymentMethod
	o.PaymentTerms = h.PaymentTerms
	o.EstimatedVolumeCBM = types.RoundVolume(h.EstimatedVolumeCBM)
	o.EstimatedWeightKG = types.RoundWeight(h.EstimatedWeightKG)
	o.Remark = h.Remark
}

// ReplaceItems discards current lines, builds new ones and recalculates totals.
func (o *SalesOrder) ReplaceItems(inputs []ItemInput) {
	o.Items = make([]Item, 0, len(inputs))
	for i, in := range inputs {
		o.Items = append(o.Items, Item{
			ID:           id.New(),
			SalesOrderID: o.ID,
			LineNo:       i + 1,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			Unit:         in.Unit.OrDefault(),
			UnitPrice:    types.RoundMoney(in.UnitPrice),
			Amount:       types.LineAmount(in.Quantity, in.UnitPrice),
			Remark:       in.Remark,
		})
	}
	o.RecalculateTotals()
}

// RecalculateTotals derives total_amount and total_quantity from the lines.
func (o *SalesOrder) RecalculateTotals() {
	o.TotalAmount = decimal.Zero
	o.TotalQuantity = 0
	for _, it := range o.Items {
		o.TotalAmount = o.TotalAmount.Add(it.Amount)
		o.TotalQuantity += it.Quantity
	}
	o.TotalAmount = types.RoundMoney(o.TotalAmount)
}

// AllItemsReceived reports whether every line has received at least its quantity.
func (o *SalesOrder) AllItemsReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for i := range o.Items {
		if !o.Items[i].IsReceived() {
			return false
		}
	}
	return true
}

// HasItemActivity reports whether any line is referenced downstream.
func (o *SalesOrder) HasItemActivity() bool {
	for i := range o.Items {
		if o.Items[i].HasActivity() {
			return true
		}
	}
	return false
}

// Validate implements entity.Validatable.
func (o *SalesOrder) Validate(ctx context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if o.OrderDate.IsZero() {
		return apperror.NewValidation("order date is required").
			WithDetail("field", "orderDate")
	}
	if o.DestinationPort == "" {
		return apperror.NewValidation("destination port is required").
			WithDetail("field", "destinationPort")
	}
	if !o.TradeTerm.IsValid() {
		return apperror.NewValidation("unknown trade term").
			WithDetail("field", "tradeTerm")
	}
	if !o.Currency.IsValid() {
		return apperror.NewValidation("unknown currency").
			WithDetail("field", "currency")
	}
	if !o.PaymentMethod.IsValid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod")
	}
	if o.EstimatedVolumeCBM.IsNegative() || o.EstimatedWeightKG.IsNegative() {
		return apperror.NewValidation("estimates must not be negative").
			WithDetail("field", "estimatedVolumeCbm")
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

// Readiness is the per-line receiving progress of an order.
type Readiness struct {
	SalesOrderID id.ID           `json:"salesOrderId"`
	IsReady      bool            `json:"isReady"`
	Items        []ItemReadiness `json:"items"`
}

// ItemReadiness is one line of a Readiness report.
type ItemReadiness struct {
	ItemID    id.ID `json:"itemId"`
	ProductID id.ID `json:"productId"`
	Needed    int64 `json:"needed"`
	Received  int64 `json:"received"`
	IsReady   bool  `json:"isReady"`
}

// Readiness builds the receiving progress report from the order lines.
func (o *SalesOrder) Readiness() Readiness {
	r := Readiness{SalesOrderID: o.ID, IsReady: len(o.Items) > 0}
	for _, it := range o.Items {
		ready := it.IsReceived()
		r.Items = append(r.Items, ItemReadiness{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Needed:    it.Quantity,
			Received:  it.ReceivedQuantity,
			IsReady:   ready,
		})
		if !ready {
			r.IsReady = false
		}
	}
	return r
}
