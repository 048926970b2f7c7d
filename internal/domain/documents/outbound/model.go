// Package outbound provides warehouse release of loaded container plans.
// Confirming an outbound order draws the inventory ledger down and credits the
// shipped quantity to the sales order lines.
package outbound

import (
	"time"

	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
)

// Order is an outbound order for one container plan.
type Order struct {
	entity.Document

	ContainerPlanID id.ID      `db:"container_plan_id" json:"containerPlanId"`
	Status          Status     `db:"status" json:"status"`
	OutboundDate    *time.Time `db:"outbound_date" json:"outboundDate,omitempty"`
	Operator        string     `db:"operator" json:"operator,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item releases a quantity of one inventory batch.
type Item struct {
	ID                  id.ID     `db:"id" json:"id"`
	OutboundOrderID     id.ID     `db:"outbound_order_id" json:"outboundOrderId"`
	ContainerPlanItemID id.ID     `db:"container_plan_item_id" json:"containerPlanItemId"`
	InventoryRecordID   id.ID     `db:"inventory_record_id" json:"inventoryRecordId"`
	ProductID           id.ID     `db:"product_id" json:"productId"`
	SalesOrderID        *id.ID    `db:"sales_order_id" json:"salesOrderId,omitempty"`
	Quantity            int64     `db:"quantity" json:"quantity"`
	BatchNo             string    `db:"batch_no" json:"batchNo"`
	ProductionDate      time.Time `db:"production_date" json:"productionDate"`
}

// TotalQuantity sums the item quantities.
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}
