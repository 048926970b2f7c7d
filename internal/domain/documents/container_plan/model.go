// Package container_plan provides container load planning: allocation of received stock
// to containers, capacity and shelf-life validation, type recommendation and stuffing.
package container_plan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/types"
)

// Plan is a container loading plan for one or more sales orders.
type Plan struct {
	entity.Document

	ContainerType   ContainerType `db:"container_type" json:"containerType"`
	ContainerCount  int           `db:"container_count" json:"containerCount"`
	DestinationPort string        `db:"destination_port" json:"destinationPort"`
	Status          Status        `db:"status" json:"status"`

	SalesOrderIDs   []id.ID          `db:"-" json:"salesOrderIds"`
	Items           []Item           `db:"-" json:"items"`
	StuffingRecords []StuffingRecord `db:"-" json:"stuffingRecords"`
}

// Item allocates a quantity of a product to one container.
type Item struct {
	ID                id.ID           `db:"id" json:"id"`
	ContainerPlanID   id.ID           `db:"container_plan_id" json:"containerPlanId"`
	ContainerSeq      int             `db:"container_seq" json:"containerSeq"`
	ProductID         id.ID           `db:"product_id" json:"productId"`
	SalesOrderID      *id.ID          `db:"sales_order_id" json:"salesOrderId,omitempty"`
	InventoryRecordID *id.ID          `db:"inventory_record_id" json:"inventoryRecordId,omitempty"`
	Quantity          int64           `db:"quantity" json:"quantity"`
	VolumeCBM         decimal.Decimal `db:"volume_cbm" json:"volumeCbm"`
	WeightKG          decimal.Decimal `db:"weight_kg" json:"weightKg"`
}

// SamePair reports whether both items draw on the same product/sales order stock.
func (i *Item) SamePair(o *Item) bool {
	return i.ProductID == o.ProductID && id.EqualPtr(i.SalesOrderID, o.SalesOrderID)
}

// StuffingRecord documents the physical loading of one container.
type StuffingRecord struct {
	ID               id.ID     `db:"id" json:"id"`
	ContainerPlanID  id.ID     `db:"container_plan_id" json:"containerPlanId"`
	ContainerSeq     int       `db:"container_seq" json:"containerSeq"`
	ContainerNo      string    `db:"container_no" json:"containerNo"`
	SealNo           string    `db:"seal_no" json:"sealNo"`
	StuffingDate     time.Time `db:"stuffing_date" json:"stuffingDate"`
	StuffingLocation string    `db:"stuffing_location" json:"stuffingLocation,omitempty"`
	Remark           string    `db:"remark" json:"remark,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	CreatedBy        string    `db:"created_by" json:"createdBy,omitempty"`

	Photos []Photo `db:"-" json:"photos"`
}

// Photo is an image attached to a stuffing record.
type Photo struct {
	ID               id.ID     `db:"id" json:"id"`
	StuffingRecordID id.ID     `db:"stuffing_record_id" json:"stuffingRecordId"`
	PhotoURL         string    `db:"photo_url" json:"photoUrl"`
	Description      string    `db:"description" json:"description,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// MaxContainerSeq is the highest container sequence used by the items.
func (p *Plan) MaxContainerSeq() int {
	highest := 0
	for _, it := range p.Items {
		highest = max(highest, it.ContainerSeq)
	}
	return highest
}

// CheckSeq rejects sequences outside 1..ContainerCount.
func (p *Plan) CheckSeq(seq int) error {
	if seq < 1 || seq > p.ContainerCount {
		return apperror.NewBusinessRule(apperror.CodeContainerSeqOutOfRange,
			"container sequence is outside the plan's containers").
			WithDetail("container_seq", seq).
			WithDetail("container_count", p.ContainerCount)
	}
	return nil
}

// RequirePlanning rejects changes outside the planning status.
func (p *Plan) RequirePlanning() error {
	if p.Status != StatusPlanning {
		return apperror.NewBusinessRule(apperror.CodePlanNotEditable,
			"container plan can only be changed while planning").
			WithDetail("status", string(p.Status))
	}
	return nil
}

// Totals sums volume and weight over all items.
func (p *Plan) Totals() (decimal.Decimal, decimal.Decimal) {
	volume, weight := decimal.Zero, decimal.Zero
	for _, it := range p.Items {
		volume = volume.Add(it.VolumeCBM)
		weight = weight.Add(it.WeightKG)
	}
	return volume, weight
}

// Validate implements entity.Validatable.
func (p *Plan) Validate(ctx context.Context) error {
	if !p.ContainerType.IsValid() {
		return apperror.NewValidation("unknown container type").
			WithDetail("field", "containerType")
	}
	if p.ContainerCount < 1 {
		return apperror.NewValidation("container count must be at least one").
			WithDetail("field", "containerCount")
	}
	if p.DestinationPort == "" {
		return apperror.NewValidation("destination port is required").
			WithDetail("field", "destinationPort")
	}
	if len(p.SalesOrderIDs) == 0 {
		return apperror.NewValidation("at least one sales order is required").
			WithDetail("field", "salesOrderIds")
	}
	return nil
}

// ItemInput describes an allocation supplied by the caller.
type ItemInput struct {
	ContainerSeq      int
	ProductID         id.ID
	SalesOrderID      *id.ID
	InventoryRecordID *id.ID
	Quantity          int64
	VolumeCBM         decimal.Decimal
	WeightKG          decimal.Decimal
}

// ItemPatch changes an allocation; nil fields are kept.
type ItemPatch struct {
	ContainerSeq *int
	Quantity     *int64
	VolumeCBM    *decimal.Decimal
	WeightKG     *decimal.Decimal
}

// Apply copies the set fields onto the item.
func (p ItemPatch) Apply(it *Item) {
	if p.ContainerSeq != nil {
		it.ContainerSeq = *p.ContainerSeq
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.VolumeCBM != nil {
		it.VolumeCBM = types.RoundVolume(*p.VolumeCBM)
	}
	if p.WeightKG != nil {
		it.WeightKG = types.RoundWeight(*p.WeightKG)
	}
}

func newItem(planID id.ID, in ItemInput) Item {
	return Item{
		ID:                id.New(),
		ContainerPlanID:   planID,
		ContainerSeq:      in.ContainerSeq,
		ProductID:         in.ProductID,
		SalesOrderID:      in.SalesOrderID,
		InventoryRecordID: in.InventoryRecordID,
		Quantity:          in.Quantity,
		VolumeCBM:         types.RoundVolume(in.VolumeCBM),
		WeightKG:          types.RoundWeight(in.WeightKG),
	}
}

func validateItem(it Item) error {
	if id.IsNil(it.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if it.VolumeCBM.IsNegative() || it.WeightKG.IsNegative() {
		return apperror.NewValidation("volume and weight must not be negative").WithDetail("field", "volumeCbm")
	}
	return nil
}

// StuffingInput records the loading of one container.
type StuffingInput struct {
	ContainerSeq     int
	ContainerNo      string
	SealNo           string
	StuffingDate     time.Time
	StuffingLocation string
	Remark           string
}

// Validate checks the stuffing input.
func (in StuffingInput) Validate() error {
	if in.ContainerNo == "" {
		return apperror.NewValidation("container number is required").WithDetail("field", "containerNo")
	}
	if in.SealNo == "" {
		return apperror.NewValidation("seal number is required").WithDetail("field", "sealNo")
	}
	return nil
}
