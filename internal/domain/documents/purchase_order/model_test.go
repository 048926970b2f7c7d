package purchase_order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusOrdered, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusPartialReceived, false},
		{StatusOrdered, StatusPartialReceived, true},
		{StatusOrdered, StatusFullyReceived, true},
		{StatusPartialReceived, StatusFullyReceived, true},
		{StatusPartialReceived, StatusCancelled, false},
		{StatusFullyReceived, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusOrdered, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := tt.from.Next(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
		})
	}
}

func TestStatus_Flags(t *testing.T) {
	assert.True(t, StatusDraft.IsCancellable())
	assert.True(t, StatusOrdered.IsCancellable())
	assert.False(t, StatusPartialReceived.IsCancellable())
	assert.True(t, StatusOrdered.TracksReceipts())
	assert.True(t, StatusPartialReceived.TracksReceipts())
	assert.False(t, StatusFullyReceived.TracksReceipts())
}

func TestReceiptStatus(t *testing.T) {
	tests := []struct {
		name     string
		received []int64
		want     Status
	}{
		{name: "nothing received", received: []int64{0, 0}, want: StatusOrdered},
		{name: "one line partial", received: []int64{5, 0}, want: StatusPartialReceived},
		{name: "one line complete", received: []int64{10, 0}, want: StatusPartialReceived},
		{name: "all complete", received: []int64{10, 20}, want: StatusFullyReceived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &PurchaseOrder{Status: StatusOrdered, Items: []Item{
				{Quantity: 10, ReceivedQuantity: tt.received[0]},
				{Quantity: 20, ReceivedQuantity: tt.received[1]},
			}}
			assert.Equal(t, tt.want, o.ReceiptStatus())
		})
	}

	empty := &PurchaseOrder{Status: StatusOrdered}
	assert.Equal(t, StatusOrdered, empty.ReceiptStatus())
}

func TestReplaceItems_Totals(t *testing.T) {
	o := NewPurchaseOrder(Header{SupplierID: id.New()})
	o.ReplaceItems([]ItemInput{
		{ProductID: id.New(), Quantity: 100, UnitPrice: decimal.RequireFromString("1.2")},
		{ProductID: id.New(), Quantity: 3, UnitPrice: decimal.RequireFromString("0.333")},
	})
	require.Len(t, o.Items, 2)
	assert.Equal(t, "120.00", o.Items[0].Amount.StringFixed(2))
	assert.Equal(t, "1.00", o.Items[1].Amount.StringFixed(2))
	assert.Equal(t, "121.00", o.TotalAmount.StringFixed(2))

	item, ok := o.FindItem(o.Items[1].ID)
	require.True(t, ok)
	assert.Equal(t, int64(3), item.RemainingQuantity())
	_, ok = o.FindItem(id.New())
	assert.False(t, ok)
}
