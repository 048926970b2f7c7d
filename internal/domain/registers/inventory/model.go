// Package inventory provides the batch inventory ledger.
// Batches are created by receiving, drawn down by outbound confirmation and never deleted.
package inventory

import (
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
)

// Record is one received batch of a product.
// Invariant: Quantity = AvailableQuantity + ReservedQuantity + consumed, consumed never re-added.
type Record struct {
	ID                  id.ID     `db:"id" json:"id"`
	ProductID           id.ID     `db:"product_id" json:"productId"`
	SalesOrderID        *id.ID    `db:"sales_order_id" json:"salesOrderId,omitempty"`
	ReceivingNoteItemID id.ID     `db:"receiving_note_item_id" json:"receivingNoteItemId"`
	BatchNo             string    `db:"batch_no" json:"batchNo"`
	ProductionDate      time.Time `db:"production_date" json:"productionDate"`
	Quantity            int64     `db:"quantity" json:"quantity"`
	ReservedQuantity    int64     `db:"reserved_quantity" json:"reservedQuantity"`
	AvailableQuantity   int64     `db:"available_quantity" json:"availableQuantity"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// ConsumedQuantity is the part of the batch that has left the ledger.
func (r *Record) ConsumedQuantity() int64 {
	return r.Quantity - r.AvailableQuantity - r.ReservedQuantity
}

// Deduct removes qty from the available balance.
func (r *Record) Deduct(qty int64) error {
	if qty <= 0 {
		return apperror.NewValidation("deduction quantity must be positive").
			WithDetail("inventory_record_id", r.ID)
	}
	if r.AvailableQuantity < qty {
		return apperror.NewInsufficientStock(r.ProductID.String(), qty, r.AvailableQuantity).
			WithDetail("inventory_record_id", r.ID).
			WithDetail("batch_no", r.BatchNo)
	}
	r.AvailableQuantity -= qty
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Receipt is the input for posting a new batch.
type Receipt struct {
	ProductID           id.ID
	SalesOrderID        *id.ID
	ReceivingNoteItemID id.ID
	BatchNo             string
	ProductionDate      time.Time
	Quantity            int64
}

// Validate checks the receipt before a batch is created.
func (r Receipt) Validate() error {
	if id.IsNil(r.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if r.Quantity <= 0 {
		return apperror.NewValidation("batch quantity must be positive").WithDetail("field", "quantity")
	}
	if r.BatchNo == "" {
		return apperror.NewValidation("batch number is required").WithDetail("field", "batchNo")
	}
	if r.ProductionDate.IsZero() {
		return apperror.NewValidation("production date is required").WithDetail("field", "productionDate")
	}
	return nil
}

// ProductTotal aggregates all batches of one product.
type ProductTotal struct {
	ProductID         id.ID `db:"product_id" json:"productId"`
	TotalQuantity     int64 `db:"total_quantity" json:"totalQuantity"`
	ReservedQuantity  int64 `db:"reserved_quantity" json:"reservedQuantity"`
	AvailableQuantity int64 `db:"available_quantity" json:"availableQuantity"`
	BatchCount        int64 `db:"batch_count" json:"batchCount"`
}

// SalesOrderStock is the stock earmarked for one sales order.
type SalesOrderStock struct {
	SalesOrderID id.ID          `json:"salesOrderId"`
	Products     []ProductTotal `json:"products"`
	Batches      []Record       `json:"batches"`
}
