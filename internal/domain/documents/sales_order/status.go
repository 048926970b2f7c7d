package sales_order

import (
	"slices"

	"snackexport/internal/core/apperror"
)

// Status of a sales order.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusConfirmed        Status = "confirmed"
	StatusPurchasing       Status = "purchasing"
	StatusGoodsReady       Status = "goods_ready"
	StatusContainerPlanned Status = "container_planned"
	StatusContainerLoaded  Status = "container_loaded"
	StatusShipped          Status = "shipped"
	StatusDelivered        Status = "delivered"
	StatusCompleted        Status = "completed"
	StatusAbnormal         Status = "abnormal"
)

// transitions lists the allowed next states. Confirm moves draft straight to purchasing,
// so StatusConfirmed is never entered; it stays here for rows written by older releases.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusPurchasing, StatusAbnormal},
	StatusConfirmed:        {StatusPurchasing, StatusAbnormal},
	StatusPurchasing:       {StatusGoodsReady, StatusAbnormal},
	StatusGoodsReady:       {StatusContainerPlanned, StatusAbnormal},
	StatusContainerPlanned: {StatusContainerLoaded, StatusAbnormal},
	StatusContainerLoaded:  {StatusShipped, StatusAbnormal},
	StatusShipped:          {StatusDelivered, StatusAbnormal},
	StatusDelivered:        {StatusCompleted, StatusAbnormal},
	StatusCompleted:        {StatusAbnormal},
	StatusAbnormal:         {},
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusDraft, StatusConfirmed, StatusPurchasing, StatusGoodsReady, StatusContainerPlanned,
		StatusContainerLoaded, StatusShipped, StatusDelivered, StatusCompleted, StatusAbnormal,
	}
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
	if !next.IsValid() {
		return s, apperror.NewValidation("unknown sales order status").
			WithDetail("status", string(next))
	}
	if !s.CanTransitionTo(next) {
		return s, apperror.NewInvalidTransition("sales order", string(s), string(next))
	}
	return next, nil
}

// IsEditable reports whether header and lines may be changed.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusPurchasing
}

// AllowsProcurement reports whether purchase orders may be generated from the order.
func (s Status) AllowsProcurement() bool {
	return s == StatusDraft || s == StatusPurchasing
}
