package purchase_order

import (
	"slices"

	"snackexport/internal/core/apperror"
)

// Status of a purchase order.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusOrdered         Status = "ordered"
	StatusPartialReceived Status = "partial_received"
	StatusFullyReceived   Status = "fully_received"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:           {StatusOrdered, StatusCancelled},
	StatusOrdered:         {StatusPartialReceived, StatusFullyReceived, StatusCancelled},
	StatusPartialReceived: {StatusFullyReceived},
	StatusFullyReceived:   {StatusCompleted},
	StatusCompleted:       {},
	StatusCancelled:       {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Next validates s -> next against the table.
func (s Status) Next(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, apperror.NewInvalidTransition("purchase order", string(s), string(next))
	}
	return next, nil
}

// IsCancellable reports whether Cancel is allowed.
func (s Status) IsCancellable() bool {
	return s == StatusDraft || s == StatusOrdered
}

// TracksReceipts reports whether receipts recompute the status.
func (s Status) TracksReceipts() bool {
	return s == StatusOrdered || s == StatusPartialReceived
}
