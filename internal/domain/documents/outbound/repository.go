package outbound

import (
	"context"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for outbound orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, order *Order) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)

	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error

	// FindActiveByPlan returns the non-cancelled order of a plan, or nil.
	FindActiveByPlan(ctx context.Context, planID id.ID) (*Order, error)
}

// ListFilter for filtering outbound orders.
type ListFilter struct {
	domain.ListFilter

	Statuses        []Status
	ContainerPlanID *id.ID
}
