package dto

import (
	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/receiving"
)

// ReceivingItemRequest is one inspected line.
type ReceivingItemRequest struct {
	PurchaseOrderItemID id.ID                      `json:"purchaseOrderItemId" binding:"required"`
	ProductID           id.ID                      `json:"productId" binding:"required"`
	ExpectedQuantity    int64                      `json:"expectedQuantity" binding:"min=0"`
	ActualQuantity      int64                      `json:"actualQuantity" binding:"min=0"`
	InspectionResult    receiving.InspectionResult `json:"inspectionResult" binding:"required,oneof=passed failed partial_passed"`
	FailedQuantity      int64                      `json:"failedQuantity" binding:"min=0"`
	FailureReason       string                     `json:"failureReason" binding:"max=500"`
	ProductionDate      Date                       `json:"productionDate"`
	Remark              string                     `json:"remark" binding:"max=500"`
}

// ReceivingNoteRequest creates a receiving note.
type ReceivingNoteRequest struct {
	PurchaseOrderID id.ID                  `json:"purchaseOrderId" binding:"required"`
	ReceivingDate   *Date                  `json:"receivingDate"`
	Receiver        string                 `json:"receiver" binding:"max=100"`
	Remark          string                 `json:"remark" binding:"max=1000"`
	Items           []ReceivingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToCreateInput maps the request to the create input.
func (r ReceivingNoteRequest) ToCreateInput() receiving.CreateInput {
	in := receiving.CreateInput{
		PurchaseOrderID: r.PurchaseOrderID,
		Header: receiving.Header{
			Receiver: r.Receiver,
			Remark:   r.Remark,
		},
	}
	if d := r.ReceivingDate.Ptr(); d != nil {
		in.ReceivingDate = *d
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, receiving.ItemInput{
			PurchaseOrderItemID: it.PurchaseOrderItemID,
			ProductID:           it.ProductID,
			ExpectedQuantity:    it.ExpectedQuantity,
			ActualQuantity:      it.ActualQuantity,
			InspectionResult:    it.InspectionResult,
			FailedQuantity:      it.FailedQuantity,
			FailureReason:       it.FailureReason,
			ProductionDate:      it.ProductionDate.Time,
			Remark:              it.Remark,
		})
	}
	return in
}

// ReceivingHeaderRequest edits the note header. Lines are immutable once posted.
type ReceivingHeaderRequest struct {
	ReceivingDate Date   `json:"receivingDate"`
	Receiver      string `json:"receiver" binding:"max=100"`
	Remark        string `json:"remark" binding:"max=1000"`
}

// ToHeader maps the request to the note header.
func (r ReceivingHeaderRequest) ToHeader() receiving.Header {
	return receiving.Header{
		ReceivingDate: r.ReceivingDate.Time,
		Receiver:      r.Receiver,
		Remark:        r.Remark,
	}
}

// ReceivingListQuery filters the receiving note list.
type ReceivingListQuery struct {
	ListQuery
	PurchaseOrderID []string `form:"purchaseOrderId"`
}

// ToFilter converts the query into a receiving filter.
func (q ReceivingListQuery) ToFilter() (receiving.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return receiving.ListFilter{}, err
	}
	poIDs, err := ParseIDs("purchaseOrderId", q.PurchaseOrderID)
	if err != nil {
		return receiving.ListFilter{}, err
	}
	return receiving.ListFilter{ListFilter: base, PurchaseOrderIDs: poIDs}, nil
}
