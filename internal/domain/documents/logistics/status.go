package logistics

import (
	"slices"

	"snackexport/internal/core/apperror"
)

// Status of a logistics record. Statuses only move forward along sequence.
type Status string

const (
	StatusBooked         Status = "booked"
	StatusCustomsCleared Status = "customs_cleared"
	StatusLoadedOnShip   Status = "loaded_on_ship"
	StatusInTransit      Status = "in_transit"
	StatusArrived        Status = "arrived"
	StatusPickedUp       Status = "picked_up"
	StatusDelivered      Status = "delivered"
)

var sequence = []Status{
	StatusBooked,
	StatusCustomsCleared,
	StatusLoadedOnShip,
	StatusInTransit,
	StatusArrived,
	StatusPickedUp,
	StatusDelivered,
}

// AllStatuses returns the statuses in shipping order.
func AllStatuses() []Status {
	return slices.Clone(sequence)
}

// Index is the position of s in the sequence, -1 when unknown.
func (s Status) Index() int {
	return slices.Index(sequence, s)
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s.Index() >= 0
}

// Next accepts any status strictly later than s; skipping forward is allowed.
func (s Status) Next(next Status) (Status, error) {
	if !next.IsValid() {
		return s, apperror.NewValidation("unknown logistics status").
			WithDetail("status", string(next))
	}
	if next.Index() <= s.Index() {
		return s, apperror.NewBusinessRule(apperror.CodeStatusNotForward,
			"logistics status can only move forward").
			WithDetail("from", string(s)).
			WithDetail("to", string(next))
	}
	return next, nil
}
