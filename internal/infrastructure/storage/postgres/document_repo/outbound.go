package document_repo

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	outboundOrdersTable     = "doc_outbound_orders"
	outboundOrderItemsTable = "doc_outbound_order_items"
)

// OutboundRepo implements outbound.Repository.
type OutboundRepo struct {
	*BaseDocumentRepo[*outbound.Order]
	items childTable[outbound.Item]
}

var _ outbound.Repository = (*OutboundRepo)(nil)

// NewOutboundRepo creates a new outbound order repository.
func NewOutboundRepo(txm *postgres.TxManager) *OutboundRepo {
	return &OutboundRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			outboundOrdersTable,
			postgres.ExtractDBColumns[outbound.Order](),
			"created_at",
			func() *outbound.Order { return &outbound.Order{} },
		),
		items: newChildTable[outbound.Item](txm, outboundOrderItemsTable, "outbound_order_id", "id"),
	}
}

// List retrieves outbound orders with filtering.
func (r *OutboundRepo) List(ctx context.Context, filter outbound.ListFilter) (domain.ListResult[*outbound.Order], error) {
	q := r.baseSelect()
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if filter.ContainerPlanID != nil {
		q = q.Where(squirrel.Eq{"container_plan_id": *filter.ContainerPlanID})
	}
	return r.page(ctx, q, filter.ListFilter)
}

// GetItems retrieves the lines of an order.
func (r *OutboundRepo) GetItems(ctx context.Context, orderID id.ID) ([]outbound.Item, error) {
	return r.items.byParent(ctx, orderID)
}

// SaveItems replaces the lines of an order.
func (r *OutboundRepo) SaveItems(ctx context.Context, orderID id.ID, items []outbound.Item) error {
	for i := range items {
		items[i].OutboundOrderID = orderID
	}
	return r.items.replace(ctx, orderID, items)
}

// FindActiveByPlan returns the non-cancelled order of a plan, or nil.
// The partial unique index on container_plan_id keeps it at most one row.
func (r *OutboundRepo) FindActiveByPlan(ctx context.Context, planID id.ID) (*outbound.Order, error) {
	order, err := r.getOne(ctx,
		r.baseSelect().
			Where(squirrel.Eq{"container_plan_id": planID}).
			Where(squirrel.NotEq{"status": outbound.StatusCancelled}),
		planID.String())
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}
