// Package receiving provides goods receipt against purchase orders.
// Posting a receiving note books purchase lines, sales order lines and inventory batches
// in one transaction and cascades the readiness of the linked orders.
package receiving

import (
	"context"
	"fmt"
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
)

// InspectionResult is the quality check outcome of a received line.
type InspectionResult string

const (
	InspectionPassed        InspectionResult = "passed"
	InspectionFailed        InspectionResult = "failed"
	InspectionPartialPassed InspectionResult = "partial_passed"
)

// IsValid reports whether r is a known inspection result.
func (r InspectionResult) IsValid() bool {
	switch r {
	case InspectionPassed, InspectionFailed, InspectionPartialPassed:
		return true
	}
	return false
}

// Note is a receiving note.
type Note struct {
	entity.Document

	PurchaseOrderID id.ID     `db:"purchase_order_id" json:"purchaseOrderId"`
	ReceivingDate   time.Time `db:"receiving_date" json:"receivingDate"`
	Receiver        string    `db:"receiver" json:"receiver"`

	Items []Item `db:"-" json:"items"`
}

// Item is one received line.
type Item struct {
	ID                  id.ID            `db:"id" json:"id"`
	ReceivingNoteID     id.ID            `db:"receiving_note_id" json:"receivingNoteId"`
	LineNo              int              `db:"line_no" json:"lineNo"`
	PurchaseOrderItemID id.ID            `db:"purchase_order_item_id" json:"purchaseOrderItemId"`
	ProductID           id.ID            `db:"product_id" json:"productId"`
	ExpectedQuantity    int64            `db:"expected_quantity" json:"expectedQuantity"`
	ActualQuantity      int64            `db:"actual_quantity" json:"actualQuantity"`
	InspectionResult    InspectionResult `db:"inspection_result" json:"inspectionResult"`
	FailedQuantity      int64            `db:"failed_quantity" json:"failedQuantity"`
	FailureReason       string           `db:"failure_reason" json:"failureReason,omitempty"`
	ProductionDate      time.Time        `db:"production_date" json:"productionDate"`
	BatchNo             string           `db:"batch_no" json:"batchNo"`
	Remark              string           `db:"remark" json:"remark,omitempty"`
}

// QualifiedQuantity is the part of the line that enters stock.
// Failed lines contribute nothing.
func (i *Item) QualifiedQuantity() int64 {
	if i.InspectionResult == InspectionFailed {
		return 0
	}
	return max(i.ActualQuantity-i.FailedQuantity, 0)
}

// ItemInput describes a received line supplied by the caller.
type ItemInput struct {
	PurchaseOrderItemID id.ID
	ProductID           id.ID
	ExpectedQuantity    int64
	ActualQuantity      int64
	InspectionResult    InspectionResult
	FailedQuantity      int64
	FailureReason       string
	ProductionDate      time.Time
	Remark              string
}

// Header carries the caller-editable header fields.
type Header struct {
	ReceivingDate time.Time
	Receiver      string
	Remark        string
}

// BatchNumber derives the batch number of a line from the note number and product.
func BatchNumber(noteNumber string, productID id.ID) string {
	return fmt.Sprintf("%s-%s", noteNumber, id.Fragment(productID, 8))
}

// NewNote creates an unnumbered note with lines built from inputs.
func NewNote(purchaseOrderID id.ID, h Header, inputs []ItemInput) *Note {
	n := &Note{
		Document:        entity.NewDocument(),
		PurchaseOrderID: purchaseOrderID,
	}
	n.ApplyHeader(h)
	n.Items = make([]Item, 0, len(inputs))
	for i, in := range inputs {
		n.Items = append(n.Items, Item{
			ID:                  id.New(),
			ReceivingNoteID:     n.ID,
			LineNo:              i + 1,
			PurchaseOrderItemID: in.PurchaseOrderItemID,
			ProductID:           in.ProductID,
			ExpectedQuantity:    in.ExpectedQuantity,
			ActualQuantity:      in.ActualQuantity,
			InspectionResult:    in.InspectionResult,
			FailedQuantity:      in.FailedQuantity,
			FailureReason:       in.FailureReason,
			ProductionDate:      entity.DateOf(in.ProductionDate),
			Remark:              in.Remark,
		})
	}
	return n
}

// ApplyHeader copies header fields onto the note. A zero receiving date means today.
func (n *Note) ApplyHeader(h Header) {
	n.ReceivingDate = entity.DateOf(h.ReceivingDate)
	if h.ReceivingDate.IsZero() {
		n.ReceivingDate = entity.Today()
	}
	n.Receiver = h.Receiver
	n.Remark = h.Remark
}

// AssignNumber sets the note number and derives the batch numbers.
func (n *Note) AssignNumber(number string) {
	n.Number = number
	for i := range n.Items {
		n.Items[i].BatchNo = BatchNumber(number, n.Items[i].ProductID)
	}
}

// Validate implements entity.Validatable.
func (n *Note) Validate(ctx context.Context) error {
	if id.IsNil(n.PurchaseOrderID) {
		return apperror.NewValidation("purchase order is required").
			WithDetail("field", "purchaseOrderId")
	}
	if n.Receiver == "" {
		return apperror.NewValidation("receiver is required").
			WithDetail("field", "receiver")
	}
	if len(n.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for _, it := range n.Items {
		if id.IsNil(it.PurchaseOrderItemID) || id.IsNil(it.ProductID) {
			return apperror.NewValidation("purchase order item and product are required").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if it.ExpectedQuantity < 0 || it.ActualQuantity < 0 {
			return apperror.NewValidation("quantities must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if it.FailedQuantity < 0 || it.FailedQuantity > it.ActualQuantity {
			return apperror.NewValidation("failed quantity must be between zero and actual quantity").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if !it.InspectionResult.IsValid() {
			return apperror.NewValidation("unknown inspection result").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		if it.ProductionDate.IsZero() {
			return apperror.NewValidation("production date is required").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
	}
	return nil
}
