package sales_order

import (
	"context"
	"fmt"

	"snackexport/internal/core/apperror"
	appctx "snackexport/internal/core/context"
	"snackexport/internal/core/id"
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/masterdata"
	"snackexport/pkg/logger"
)

// Service provides business operations for sales orders.
type Service struct {
	repo      Repository
	products  masterdata.ProductReader
	purchases PurchaseOrderCreator
	numerator numerator.Generator
	txManager tx.Manager
	journal   cascade.Journal
	hooks     *domain.HookRegistry[*SalesOrder]
}

// NewService creates a new sales order service.
func NewService(
	repo Repository,
	products masterdata.ProductReader,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	s := &Service{
		repo:      repo,
		products:  products,
		numerator: numerator,
		txManager: txManager,
		journal:   journal,
		hooks:     domain.NewHookRegistry[*SalesOrder](),
	}
	s.hooks.OnBeforeCreate(func(ctx context.Context, o *SalesOrder) error {
		audit.EnrichCreatedByDirect(ctx, &o.CreatedBy, &o.UpdatedBy)
		return nil
	})
	s.hooks.OnBeforeUpdate(func(ctx context.Context, o *SalesOrder) error {
		audit.EnrichUpdatedByDirect(ctx, &o.UpdatedBy)
		return nil
	})
	return s
}

// SetPurchaseOrderCreator wires the procurement workflow used by GeneratePurchaseOrders.
func (s *Service) SetPurchaseOrderCreator(c PurchaseOrderCreator) {
	s.purchases = c
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*SalesOrder] {
	return s.hooks
}

// CreateInput is the payload of Create.
type CreateInput struct {
	Header
	Items []ItemInput
}

// Create creates a draft sales order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*SalesOrder, error) {
	order := NewSalesOrder(in.Header)
	order.ReplaceItems(in.Items)

	if err := s.hooks.RunBeforeCreate(ctx, order); err != nil {
		return nil, err
	}
	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
		&numerator.Options{Strategy: NumeratorStrategy}, order.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	order.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create sales order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterCreate(ctx, order); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "sales order created",
		"id", order.ID,
		"number", order.Number,
		"items", len(order.Items))

	return s.Get(ctx, order.ID)
}

// Get retrieves a sales order with items.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*SalesOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	order.Items = items
	return order, nil
}

// List retrieves sales orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// UpdateInput is the payload of Update. Nil Items keeps the current lines.
type UpdateInput struct {
	Header
	Items []ItemInput
}

// Update edits header fields and optionally replaces all items.
// Allowed while the order is draft or purchasing. Lines already referenced by
// purchase orders, receipts or shipments cannot be replaced.
func (s *Service) Update(ctx context.Context, orderID id.ID, in UpdateInput) (*SalesOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.IsEditable() {
			return apperror.NewBusinessRule(apperror.CodeOrderNotEditable,
				"sales order can only be edited in draft or purchasing status").
				WithDetail("status", string(order.Status))
		}

		items, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		order.Items = items

		order.ApplyHeader(in.Header)
		if in.Items != nil {
			if order.HasItemActivity() {
				return apperror.NewBusinessRule(apperror.CodeItemsLocked,
					"items already referenced by procurement, receiving or shipment cannot be replaced")
			}
			order.ReplaceItems(in.Items)
		}

		if err := s.hooks.RunBeforeUpdate(ctx, order); err != nil {
			return err
		}
		if err := order.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		if in.Items != nil {
			if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales order updated", "id", orderID, "items_replaced", in.Items != nil)
	return s.Get(ctx, orderID)
}

// Confirm moves a draft order straight to purchasing.
func (s *Service) Confirm(ctx context.Context, orderID id.ID) (*SalesOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeOrderNotConfirmable,
				"only draft sales orders can be confirmed").
				WithDetail("status", string(order.Status))
		}
		return s.transition(ctx, order, StatusPurchasing, "confirm")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// UpdateStatus is the manual status override; restricted to elevated actors.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, status Status) (*SalesOrder, error) {
	if !appctx.IsElevated(ctx) {
		return nil, apperror.NewForbidden("manual status change requires elevated privileges")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.transition(ctx, order, status, "manual")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// CheckReadiness reports per-line receiving progress.
func (s *Service) CheckReadiness(ctx context.Context, orderID id.ID) (Readiness, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return Readiness{}, err
	}
	return order.Readiness(), nil
}

// OrderRefs returns order headers for the given ids; missing ids are a not-found error.
func (s *Service) OrderRefs(ctx context.Context, orderIDs []id.ID) ([]*SalesOrder, error) {
	orderIDs = id.Unique(orderIDs)
	orders, err := s.repo.GetMany(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	return orderedByIDs(orders, orderIDs)
}

// LockOrderRefs is OrderRefs with row locks; must run inside a transaction.
func (s *Service) LockOrderRefs(ctx context.Context, orderIDs []id.ID) ([]*SalesOrder, error) {
	orderIDs = id.Unique(orderIDs)
	orders, err := s.repo.GetManyForUpdate(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	return orderedByIDs(orders, orderIDs)
}

func orderedByIDs(orders []*SalesOrder, orderIDs []id.ID) ([]*SalesOrder, error) {
	byID := make(map[id.ID]*SalesOrder, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	out := make([]*SalesOrder, 0, len(orderIDs))
	for _, oid := range orderIDs {
		o, ok := byID[oid]
		if !ok {
			return nil, apperror.NewNotFound("sales_order", oid)
		}
		out = append(out, o)
	}
	return out, nil
}

// transition validates and persists a status change of a locked order and journals it.
func (s *Service) transition(ctx context.Context, order *SalesOrder, to Status, cause string) error {
	t, err := s.applyStatus(ctx, order, to, cause)
	if err != nil {
		return err
	}
	if err := s.journal.Record(ctx, t); err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// applyStatus validates and persists a status change of a locked order.
func (s *Service) applyStatus(ctx context.Context, order *SalesOrder, to Status, cause string) (cascade.Transition, error) {
	from := order.Status
	next, err := from.Next(to)
	if err != nil {
		return cascade.Transition{}, err
	}
	order.Status = next
	audit.EnrichUpdatedByDirect(ctx, &order.UpdatedBy)
	if err := s.repo.Update(ctx, order); err != nil {
		return cascade.Transition{}, fmt.Errorf("update sales order status: %w", err)
	}

	logger.Info(ctx, "sales order status changed",
		"id", order.ID,
		"number", order.Number,
		"from", from,
		"to", next,
		"cause", cause)
	return cascade.NewTransition(cascade.AggregateSalesOrder, order.ID, order.Number, string(from), string(next), cause), nil
}
