package dto

import (
	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/outbound"
)

// CreateOutboundRequest drafts an outbound order for a loaded container plan.
type CreateOutboundRequest struct {
	ContainerPlanID id.ID  `json:"containerPlanId" binding:"required"`
	Remark          string `json:"remark" binding:"max=1000"`
}

// ConfirmOutboundRequest releases the goods.
type ConfirmOutboundRequest struct {
	OutboundDate *Date  `json:"outboundDate"`
	Operator     string `json:"operator" binding:"max=100"`
}

// ToInput maps the request to the confirm input.
func (r ConfirmOutboundRequest) ToInput() outbound.ConfirmInput {
	in := outbound.ConfirmInput{Operator: r.Operator}
	if d := r.OutboundDate.Ptr(); d != nil {
		in.OutboundDate = *d
	}
	return in
}

// OutboundListQuery filters the outbound order list.
type OutboundListQuery struct {
	ListQuery
	Status          []string `form:"status"`
	ContainerPlanID string   `form:"containerPlanId"`
}

// ToFilter converts the query into an outbound filter.
func (q OutboundListQuery) ToFilter() (outbound.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return outbound.ListFilter{}, err
	}
	f := outbound.ListFilter{ListFilter: base}
	if f.ContainerPlanID, err = ParseOptionalID("containerPlanId", q.ContainerPlanID); err != nil {
		return f, err
	}
	for _, s := range SplitValues(q.Status) {
		f.Statuses = append(f.Statuses, outbound.Status(s))
	}
	return f, nil
}
