package container_plan

import (
	"slices"

	"snackexport/internal/core/apperror"
)

// Status of a container plan.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusConfirmed Status = "confirmed"
	StatusLoading   Status = "loading"
	StatusLoaded    Status = "loaded"
	StatusShipped   Status = "shipped"
)

var transitions = map[Status][]Status{
	StatusPlanning:  {StatusConfirmed},
	StatusConfirmed: {StatusLoading},
	StatusLoading:   {StatusLoaded},
	StatusLoaded:    {StatusShipped},
	StatusShipped:   {},
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
		return s, apperror.NewInvalidTransition("container plan", string(s), string(next))
	}
	return next, nil
}

// AcceptsStuffing reports whether stuffing records may be added.
func (s Status) AcceptsStuffing() bool {
	return s == StatusConfirmed || s == StatusLoading
}
