package dto

import (
	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/trade"
)

// SalesOrderItemRequest is one order line.
type SalesOrderItemRequest struct {
	ProductID id.ID           `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	Unit      trade.Unit      `json:"unit" binding:"omitempty,oneof=piece carton"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Remark    string          `json:"remark" binding:"max=500"`
}

// SalesOrderRequest creates or replaces a sales order.
type SalesOrderRequest struct {
	CustomerID           id.ID                   `json:"customerId" binding:"required"`
	OrderDate            Date                    `json:"orderDate"`
	RequiredDeliveryDate *Date                   `json:"requiredDeliveryDate"`
	DestinationPort      string                  `json:"destinationPort" binding:"required,max=100"`
	TradeTerm            trade.TradeTerm         `json:"tradeTerm" binding:"required"`
	Currency             trade.Currency          `json:"currency" binding:"required"`
	PaymentMethod        trade.PaymentMethod     `json:"paymentMethod" binding:"required"`
	PaymentTerms         string                  `json:"paymentTerms" binding:"max=500"`
	EstimatedVolumeCBM   decimal.Decimal         `json:"estimatedVolumeCbm"`
	EstimatedWeightKG    decimal.Decimal         `json:"estimatedWeightKg"`
	Remark               string                  `json:"remark" binding:"max=1000"`
	Items                []SalesOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r SalesOrderRequest) header() sales_order.Header {
	return sales_order.Header{
		CustomerID:           r.CustomerID,
		OrderDate:            r.OrderDate.Time,
		RequiredDeliveryDate: r.RequiredDeliveryDate.Ptr(),
		DestinationPort:      r.DestinationPort,
		TradeTerm:            r.TradeTerm,
		Currency:             r.Currency,
		PaymentMethod:        r.PaymentMethod,
		PaymentTerms:         r.PaymentTerms,
		EstimatedVolumeCBM:   r.EstimatedVolumeCBM,
		EstimatedWeightKG:    r.EstimatedWeightKG,
		Remark:               r.Remark,
	}
}

func (r SalesOrderRequest) items() []sales_order.ItemInput {
	out := make([]sales_order.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, sales_order.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			Remark:    it.Remark,
		})
	}
	return out
}

// ToCreateInput maps the request to the create input.
func (r SalesOrderRequest) ToCreateInput() sales_order.CreateInput {
	return sales_order.CreateInput{Header: r.header(), Items: r.items()}
}

// ToUpdateInput maps the request to the update input.
func (r SalesOrderRequest) ToUpdateInput() sales_order.UpdateInput {
	return sales_order.UpdateInput{Header: r.header(), Items: r.items()}
}

// SalesOrderStatusRequest is a manual status override.
type SalesOrderStatusRequest struct {
	Status sales_order.Status `json:"status" binding:"required"`
}

// SalesOrderListQuery filters the sales order list.
type SalesOrderListQuery struct {
	ListQuery
	Status     []string `form:"status"`
	CustomerID string   `form:"customerId"`
}

// ToFilter converts the query into a sales order filter.
func (q SalesOrderListQuery) ToFilter() (sales_order.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return sales_order.ListFilter{}, err
	}
	customerID, err := ParseOptionalID("customerId", q.CustomerID)
	if err != nil {
		return sales_order.ListFilter{}, err
	}
	f := sales_order.ListFilter{ListFilter: base, CustomerID: customerID}
	for _, s := range SplitValues(q.Status) {
		f.Statuses = append(f.Statuses, sales_order.Status(s))
	}
	return f, nil
}
