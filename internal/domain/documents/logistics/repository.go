package logistics

import (
	"context"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// Repository defines operations for logistics records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, recordID id.ID) (*Record, error)
	GetForUpdate(ctx context.Context, recordID id.ID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Record], error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)

	// Costs
	GetCosts(ctx context.Context, recordID id.ID) ([]Cost, error)
	CreateCost(ctx context.Context, cost *Cost) error
	UpdateCost(ctx context.Context, cost *Cost) error
	DeleteCost(ctx context.Context, costID id.ID) error

	// SumCosts computes the live total of a record's costs.
	SumCosts(ctx context.Context, recordID id.ID) (decimal.Decimal, error)
	SetTotalCost(ctx context.Context, recordID id.ID, total decimal.Decimal) error
}

// ListFilter for filtering logistics records.
type ListFilter struct {
	domain.ListFilter

	Statuses         []Status
	ContainerPlanIDs []id.ID
}
