package dto

import (
	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/container_plan"
)

// CreateContainerPlanRequest plans containers for goods-ready sales orders.
type CreateContainerPlanRequest struct {
	SalesOrderIDs   []id.ID                      `json:"salesOrderIds" binding:"required,min=1"`
	ContainerType   container_plan.ContainerType `json:"containerType" binding:"required,oneof=20GP 40GP 40HQ reefer"`
	ContainerCount  int                          `json:"containerCount" binding:"required,min=1,max=100"`
	DestinationPort string                       `json:"destinationPort" binding:"required,max=100"`
	Remark          string                       `json:"remark" binding:"max=1000"`
}

// ToInput maps the request to the create input.
func (r CreateContainerPlanRequest) ToInput() container_plan.CreateInput {
	return container_plan.CreateInput{
		SalesOrderIDs:   r.SalesOrderIDs,
		ContainerType:   r.ContainerType,
		ContainerCount:  r.ContainerCount,
		DestinationPort: r.DestinationPort,
		Remark:          r.Remark,
	}
}

// UpdateContainerPlanRequest edits a planning plan; omitted fields are kept.
type UpdateContainerPlanRequest struct {
	ContainerType   *container_plan.ContainerType `json:"containerType" binding:"omitempty,oneof=20GP 40GP 40HQ reefer"`
	ContainerCount  *int                          `json:"containerCount" binding:"omitempty,min=1,max=100"`
	DestinationPort *string                       `json:"destinationPort" binding:"omitempty,max=100"`
	Remark          *string                       `json:"remark" binding:"omitempty,max=1000"`
}

// ToInput maps the request to the update input.
func (r UpdateContainerPlanRequest) ToInput() container_plan.UpdateInput {
	return container_plan.UpdateInput{
		ContainerType:   r.ContainerType,
		ContainerCount:  r.ContainerCount,
		DestinationPort: r.DestinationPort,
		Remark:          r.Remark,
	}
}

// ContainerItemRequest allocates goods to one container.
type ContainerItemRequest struct {
	ContainerSeq      int             `json:"containerSeq" binding:"required,min=1"`
	ProductID         id.ID           `json:"productId" binding:"required"`
	SalesOrderID      *id.ID          `json:"salesOrderId"`
	InventoryRecordID *id.ID          `json:"inventoryRecordId"`
	Quantity          int64           `json:"quantity" binding:"required,gt=0"`
	VolumeCBM         decimal.Decimal `json:"volumeCbm"`
	WeightKG          decimal.Decimal `json:"weightKg"`
}

// ToInput maps the request to the item input.
func (r ContainerItemRequest) ToInput() container_plan.ItemInput {
	return container_plan.ItemInput{
		ContainerSeq:      r.ContainerSeq,
		ProductID:         r.ProductID,
		SalesOrderID:      r.SalesOrderID,
		InventoryRecordID: r.InventoryRecordID,
		Quantity:          r.Quantity,
		VolumeCBM:         r.VolumeCBM,
		WeightKG:          r.WeightKG,
	}
}

// ContainerItemPatchRequest changes an allocation; omitted fields are kept.
type ContainerItemPatchRequest struct {
	ContainerSeq *int             `json:"containerSeq" binding:"omitempty,min=1"`
	Quantity     *int64           `json:"quantity" binding:"omitempty,gt=0"`
	VolumeCBM    *decimal.Decimal `json:"volumeCbm"`
	WeightKG     *decimal.Decimal `json:"weightKg"`
}

// ToPatch maps the request to the item patch.
func (r ContainerItemPatchRequest) ToPatch() container_plan.ItemPatch {
	return container_plan.ItemPatch{
		ContainerSeq: r.ContainerSeq,
		Quantity:     r.Quantity,
		VolumeCBM:    r.VolumeCBM,
		WeightKG:     r.WeightKG,
	}
}

// StuffingRequest records the loading of one container.
type StuffingRequest struct {
	ContainerSeq     int    `json:"containerSeq" binding:"required,min=1"`
	ContainerNo      string `json:"containerNo" binding:"required,max=50"`
	SealNo           string `json:"sealNo" binding:"required,max=50"`
	StuffingDate     Date   `json:"stuffingDate"`
	StuffingLocation string `json:"stuffingLocation" binding:"max=200"`
	Remark           string `json:"remark" binding:"max=1000"`
}

// ToInput maps the request to the stuffing input.
func (r StuffingRequest) ToInput() container_plan.StuffingInput {
	return container_plan.StuffingInput{
		ContainerSeq:     r.ContainerSeq,
		ContainerNo:      r.ContainerNo,
		SealNo:           r.SealNo,
		StuffingDate:     r.StuffingDate.Time,
		StuffingLocation: r.StuffingLocation,
		Remark:           r.Remark,
	}
}

// StuffingPhotoRequest attaches an already uploaded photo.
type StuffingPhotoRequest struct {
	PhotoURL    string `json:"photoUrl" binding:"required,url,max=500"`
	Description string `json:"description" binding:"max=500"`
}

// ContainerPlanListQuery filters the plan list.
type ContainerPlanListQuery struct {
	ListQuery
	Status       []string `form:"status"`
	SalesOrderID string   `form:"salesOrderId"`
}

// ToFilter converts the query into a plan filter.
func (q ContainerPlanListQuery) ToFilter() (container_plan.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return container_plan.ListFilter{}, err
	}
	f := container_plan.ListFilter{ListFilter: base}
	if f.SalesOrderID, err = ParseOptionalID("salesOrderId", q.SalesOrderID); err != nil {
		return f, err
	}
	for _, s := range SplitValues(q.Status) {
		f.Statuses = append(f.Statuses, container_plan.Status(s))
	}
	return f, nil
}
