package outbound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snackexport/internal/core/apperror"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusConfirmed, true},
		{StatusDraft, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := tt.from.Next(tt.to)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, got)
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestOrder_TotalQuantity(t *testing.T) {
	o := &Order{Items: []Item{{Quantity: 60}, {Quantity: 40}}}
	assert.Equal(t, int64(100), o.TotalQuantity())
	assert.Zero(t, (&Order{}).TotalQuantity())
}
