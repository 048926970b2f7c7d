package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"snackexport/internal/domain/cascade"
)

func TestNextRetryAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{3, 8 * time.Minute},
		{6, time.Hour},
		{20, time.Hour},
	}

	for _, tt := range tests {
		assert.Equal(t, now.Add(tt.want), NextRetryAt(now, tt.retryCount), "retry %d", tt.retryCount)
	}
}

func TestStatusChangedEvent(t *testing.T) {
	assert.Equal(t, "sales_order.status_changed", StatusChangedEvent(cascade.AggregateSalesOrder))
	assert.Equal(t, "outbound_order.status_changed", StatusChangedEvent(cascade.AggregateOutbound))
}
