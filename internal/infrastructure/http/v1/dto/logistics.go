package dto

import (
	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/trade"
)

// LogisticsHeaderRequest carries the editable shipment fields; omitted fields are kept.
type LogisticsHeaderRequest struct {
	ShippingCompany      *string `json:"shippingCompany" binding:"omitempty,max=200"`
	VesselVoyage         *string `json:"vesselVoyage" binding:"omitempty,max=100"`
	BLNo                 *string `json:"blNo" binding:"omitempty,max=100"`
	PortOfLoading        *string `json:"portOfLoading" binding:"omitempty,max=100"`
	PortOfDischarge      *string `json:"portOfDischarge" binding:"omitempty,max=100"`
	ETD                  *Date   `json:"etd"`
	ETA                  *Date   `json:"eta"`
	ActualDepartureDate  *Date   `json:"actualDepartureDate"`
	ActualArrivalDate    *Date   `json:"actualArrivalDate"`
	CustomsDeclarationNo *string `json:"customsDeclarationNo" binding:"omitempty,max=100"`
	Remark               *string `json:"remark" binding:"omitempty,max=1000"`
}

// ToHeader maps the request to the record header.
func (r LogisticsHeaderRequest) ToHeader() logistics.Header {
	return logistics.Header{
		ShippingCompany:      r.ShippingCompany,
		VesselVoyage:         r.VesselVoyage,
		BLNo:                 r.BLNo,
		PortOfLoading:        r.PortOfLoading,
		PortOfDischarge:      r.PortOfDischarge,
		ETD:                  r.ETD.Ptr(),
		ETA:                  r.ETA.Ptr(),
		ActualDepartureDate:  r.ActualDepartureDate.Ptr(),
		ActualArrivalDate:    r.ActualArrivalDate.Ptr(),
		CustomsDeclarationNo: r.CustomsDeclarationNo,
		Remark:               r.Remark,
	}
}

// CreateLogisticsRequest books a shipment.
type CreateLogisticsRequest struct {
	ContainerPlanID id.ID `json:"containerPlanId" binding:"required"`
	LogisticsHeaderRequest
}

// ToInput maps the request to the create input.
func (r CreateLogisticsRequest) ToInput() logistics.CreateInput {
	return logistics.CreateInput{ContainerPlanID: r.ContainerPlanID, Header: r.ToHeader()}
}

// LogisticsStatusRequest moves a shipment along its route.
type LogisticsStatusRequest struct {
	Status logistics.Status `json:"status" binding:"required"`
}

// LogisticsCostRequest adds a cost line.
type LogisticsCostRequest struct {
	CostType logistics.CostType `json:"costType" binding:"required,oneof=ocean_freight customs_fee port_charge trucking_fee insurance_fee other"`
	Amount   decimal.Decimal    `json:"amount"`
	Currency trade.Currency     `json:"currency"`
	Remark   string             `json:"remark" binding:"max=500"`
}

// ToInput maps the request to the cost input.
func (r LogisticsCostRequest) ToInput() logistics.CostInput {
	return logistics.CostInput{
		CostType: r.CostType,
		Amount:   r.Amount,
		Currency: r.Currency,
		Remark:   r.Remark,
	}
}

// LogisticsCostPatchRequest changes a cost line; omitted fields are kept.
type LogisticsCostPatchRequest struct {
	CostType *logistics.CostType `json:"costType" binding:"omitempty,oneof=ocean_freight customs_fee port_charge trucking_fee insurance_fee other"`
	Amount   *decimal.Decimal    `json:"amount"`
	Currency *trade.Currency     `json:"currency"`
	Remark   *string             `json:"remark" binding:"omitempty,max=500"`
}

// ToPatch maps the request to the cost patch.
func (r LogisticsCostPatchRequest) ToPatch() logistics.CostPatch {
	return logistics.CostPatch{
		CostType: r.CostType,
		Amount:   r.Amount,
		Currency: r.Currency,
		Remark:   r.Remark,
	}
}

// LogisticsListQuery filters the logistics list.
type LogisticsListQuery struct {
	ListQuery
	Status          []string `form:"status"`
	ContainerPlanID []string `form:"containerPlanId"`
}

// ToFilter converts the query into a logistics filter.
func (q LogisticsListQuery) ToFilter() (logistics.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return logistics.ListFilter{}, err
	}
	f := logistics.ListFilter{ListFilter: base}
	if f.ContainerPlanIDs, err = ParseIDs("containerPlanId", q.ContainerPlanID); err != nil {
		return f, err
	}
	for _, s := range SplitValues(q.Status) {
		f.Statuses = append(f.Statuses, logistics.Status(s))
	}
	return f, nil
}
