package receiving

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
)

func TestQualifiedQuantity(t *testing.T) {
	tests := []struct {
		name   string
		item   Item
		expect int64
	}{
		{"passed", Item{ActualQuantity: 40, InspectionResult: InspectionPassed}, 40},
		{"partial", Item{ActualQuantity: 40, FailedQuantity: 5, InspectionResult: InspectionPartialPassed}, 35},
		{"failed", Item{ActualQuantity: 40, InspectionResult: InspectionFailed}, 0},
		{"failed exceeds actual", Item{ActualQuantity: 4, FailedQuantity: 9, InspectionResult: InspectionPartialPassed}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.item.QualifiedQuantity())
		})
	}
}

func TestBatchNumber(t *testing.T) {
	productID := id.MustParse("0190f3a2-7c1d-7b00-8000-000000000001")
	assert.Equal(t, "RCV-20260302-001-0190f3a2", BatchNumber("RCV-20260302-001", productID))
}

func TestNewNote(t *testing.T) {
	poID, productID := id.New(), id.New()
	n := NewNote(poID, Header{Receiver: "warehouse"}, []ItemInput{{
		PurchaseOrderItemID: id.New(),
		ProductID:           productID,
		ExpectedQuantity:    10,
		ActualQuantity:      10,
		InspectionResult:    InspectionPassed,
		ProductionDate:      time.Date(2026, 2, 1, 15, 30, 0, 0, time.UTC),
	}})

	assert.Equal(t, entity.Today(), n.ReceivingDate)
	require.Len(t, n.Items, 1)
	assert.Equal(t, 1, n.Items[0].LineNo)
	assert.Equal(t, n.ID, n.Items[0].ReceivingNoteID)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), n.Items[0].ProductionDate)

	n.AssignNumber("RCV-20260302-004")
	assert.Equal(t, "RCV-20260302-004", n.Number)
	assert.Equal(t, BatchNumber("RCV-20260302-004", productID), n.Items[0].BatchNo)
}

func TestValidate(t *testing.T) {
	valid := func() *Note {
		return NewNote(id.New(), Header{Receiver: "warehouse"}, []ItemInput{{
			PurchaseOrderItemID: id.New(),
			ProductID:           id.New(),
			ActualQuantity:      10,
			InspectionResult:    InspectionPassed,
			ProductionDate:      time.Now(),
		}})
	}
	require.NoError(t, valid().Validate(context.Background()))

	tests := []struct {
		name   string
		mutate func(n *Note)
		field  string
	}{
		{"purchase order", func(n *Note) { n.PurchaseOrderID = id.Nil() }, "purchaseOrderId"},
		{"receiver", func(n *Note) { n.Receiver = "" }, "receiver"},
		{"no items", func(n *Note) { n.Items = nil }, "items"},
		{"failed above actual", func(n *Note) { n.Items[0].FailedQuantity = 11 }, "items"},
		{"negative actual", func(n *Note) { n.Items[0].ActualQuantity = -1 }, "items"},
		{"inspection", func(n *Note) { n.Items[0].InspectionResult = "skipped" }, "items"},
		{"production date", func(n *Note) { n.Items[0].ProductionDate = time.Time{} }, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid()
			tt.mutate(n)
			appErr, ok := apperror.AsAppError(n.Validate(context.Background()))
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}
