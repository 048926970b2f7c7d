// Package logistics tracks the shipment of container plans and cascades vessel
// departure and delivery to the plan and its sales orders.
package logistics

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

// CostType classifies a logistics cost.
type CostType string

const (
	CostOceanFreight CostType = "ocean_freight"
	CostCustomsFee   CostType = "customs_fee"
	CostPortCharge   CostType = "port_charge"
	CostTruckingFee  CostType = "trucking_fee"
	CostInsuranceFee CostType = "insurance_fee"
	CostOther        CostType = "other"
)

// IsValid reports whether t is a known cost type.
func (t CostType) IsValid() bool {
	switch t {
	case CostOceanFreight, CostCustomsFee, CostPortCharge, CostTruckingFee, CostInsuranceFee, CostOther:
		return true
	}
	return false
}

// Record is the shipment of one container plan.
type Record struct {
	entity.Document

	ContainerPlanID      id.ID           `db:"container_plan_id" json:"containerPlanId"`
	ShippingCompany      string          `db:"shipping_company" json:"shippingCompany,omitempty"`
	VesselVoyage         string          `db:"vessel_voyage" json:"vesselVoyage,omitempty"`
	BLNo                 string          `db:"bl_no" json:"blNo,omitempty"`
	PortOfLoading        string          `db:"port_of_loading" json:"portOfLoading"`
	PortOfDischarge      string          `db:"port_of_discharge" json:"portOfDischarge"`
	ETD                  *time.Time      `db:"etd" json:"etd,omitempty"`
	ETA                  *time.Time      `db:"eta" json:"eta,omitempty"`
	ActualDepartureDate  *time.Time      `db:"actual_departure_date" json:"actualDepartureDate,omitempty"`
	ActualArrivalDate    *time.Time      `db:"actual_arrival_date" json:"actualArrivalDate,omitempty"`
	CustomsDeclarationNo string          `db:"customs_declaration_no" json:"customsDeclarationNo,omitempty"`
	Status               Status          `db:"status" json:"status"`
	TotalCost            decimal.Decimal `db:"total_cost" json:"totalCost"`

	Costs []Cost `db:"-" json:"costs"`
}

// Cost is one logistics cost line.
type Cost struct {
	ID                id.ID           `db:"id" json:"id"`
	LogisticsRecordID id.ID           `db:"logistics_record_id" json:"logisticsRecordId"`
	CostType          CostType        `db:"cost_type" json:"costType"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          trade.Currency  `db:"currency" json:"currency"`
	Remark            string          `db:"remark" json:"remark,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

// Validate checks the cost line.
func (c *Cost) Validate() error {
	if !c.CostType.IsValid() {
		return apperror.NewValidation("unknown cost type").WithDetail("field", "costType")
	}
	if c.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative").WithDetail("field", "amount")
	}
	if !c.Currency.IsValid() {
		return apperror.NewValidation("unknown currency").WithDetail("field", "currency")
	}
	return nil
}

// Header carries the caller-editable header fields; nil fields are kept on update.
type Header struct {
	ShippingCompany      *string
	VesselVoyage         *string
	BLNo                 *string
	PortOfLoading        *string
	PortOfDischarge      *string
	ETD                  *time.Time
	ETA                  *time.Time
	ActualDepartureDate  *time.Time
	ActualArrivalDate    *time.Time
	CustomsDeclarationNo *string
	Remark               *string
}

// Apply copies the set fields onto the record.
func (h Header) Apply(r *Record) {
	setString(&r.ShippingCompany, h.ShippingCompany)
	setString(&r.VesselVoyage, h.VesselVoyage)
	setString(&r.BLNo, h.BLNo)
	setString(&r.PortOfLoading, h.PortOfLoading)
	setString(&r.PortOfDischarge, h.PortOfDischarge)
	setString(&r.CustomsDeclarationNo, h.CustomsDeclarationNo)
	setString(&r.Remark, h.Remark)
	setDate(&r.ETD, h.ETD)
	setDate(&r.ETA, h.ETA)
	setDate(&r.ActualDepartureDate, h.ActualDepartureDate)
	setDate(&r.ActualArrivalDate, h.ActualArrivalDate)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDate(dst **time.Time, v *time.Time) {
	if v != nil {
		d := entity.DateOf(*v)
		*dst = &d
	}
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.ContainerPlanID) {
		return apperror.NewValidation("container plan is required").
			WithDetail("field", "containerPlanId")
	}
	if r.PortOfLoading == "" {
		return apperror.NewValidation("port of loading is required").
			WithDetail("field", "portOfLoading")
	}
	if r.PortOfDischarge == "" {
		return apperror.NewValidation("port of discharge is required").
			WithDetail("field", "portOfDischarge")
	}
	return nil
}

// CostInput describes a cost line supplied by the caller.
type CostInput struct {
	CostType CostType
	Amount   decimal.Decimal
	Currency trade.Currency
	Remark   string
}

// CostPatch changes a cost line; nil fields are kept.
type CostPatch struct {
	CostType *CostType
	Amount   *decimal.Decimal
	Currency *trade.Currency
	Remark   *string
}

// Apply copies the set fields onto the cost.
func (p CostPatch) Apply(c *Cost) {
	if p.CostType != nil {
		c.CostType = *p.CostType
	}
	if p.Amount != nil {
		c.Amount = types.RoundMoney(*p.Amount)
	}
	if p.Currency != nil {
		c.Currency = *p.Currency
	}
	if p.Remark != nil {
		c.Remark = *p.Remark
	}
}

// StatusCount is the number of records and their cost per status.
type StatusCount struct {
	Status    Status          `db:"status" json:"status"`
	Count     int64           `db:"count" json:"count"`
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`
}
