package outbound

import (
	"slices"

	"snackexport/internal/core/apperror"
)

// Status of an outbound order.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// Next validates s -> next against the table.
func (s Status) Next(next Status) (Status, error) {
	if !slices.Contains(transitions[s], next) {
		return s, apperror.NewInvalidTransition("outbound order", string(s), string(next))
	}
	return next, nil
}
