package purchase_order

import (
	"context"
	"fmt"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/pkg/logger"
)

// DemandLedger is the sales order side of purchase lines.
type DemandLedger interface {
	DrawDemand(ctx context.Context, itemID id.ID, qty int64) (*sales_order.Item, error)
	ReleaseDemand(ctx context.Context, itemID id.ID, qty int64) (*sales_order.Item, error)
	OrderRefs(ctx context.Context, orderIDs []id.ID) ([]*sales_order.SalesOrder, error)
}

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	demand    DemandLedger
	numerator numerator.Generator
	txManager tx.Manager
	journal   cascade.Journal
	hooks     *domain.HookRegistry[*PurchaseOrder]
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	demand DemandLedger,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	s := &Service{
		repo:      repo,
		demand:    demand,
		numerator: numerator,
		txManager: txManager,
		journal:   journal,
		hooks:     domain.NewHookRegistry[*PurchaseOrder](),
	}
	s.hooks.OnBeforeCreate(func(ctx context.Context, o *PurchaseOrder) error {
		audit.EnrichCreatedByDirect(ctx, &o.CreatedBy, &o.UpdatedBy)
		return nil
	})
	s.hooks.OnBeforeUpdate(func(ctx context.Context, o *PurchaseOrder) error {
		audit.EnrichUpdatedByDirect(ctx, &o.UpdatedBy)
		return nil
	})
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseOrder] {
	return s.hooks
}

// CreateInput is the payload of Create.
type CreateInput struct {
	Header
	SalesOrderIDs []id.ID
	Items         []ItemInput
}

// Create creates a draft purchase order. Lines referencing sales order items draw
// their demand; the owning sales orders are linked together with SalesOrderIDs.
func (s *Service) Create(ctx context.Context, in CreateInput) (*PurchaseOrder, error) {
	order := NewPurchaseOrder(in.Header)
	order.ReplaceItems(in.Items)

	if err := s.hooks.RunBeforeCreate(ctx, order); err != nil {
		return nil, err
	}
	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.create(ctx, order, in.SalesOrderIDs)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterCreate(ctx, order); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}
	return s.Get(ctx, order.ID)
}

// CreateFromDraft creates a draft purchase order covering the remaining demand of
// sales order lines. Runs in the caller's transaction when there is one.
func (s *Service) CreateFromDraft(ctx context.Context, draft sales_order.PurchaseDraft) (id.ID, error) {
	order := NewPurchaseOrder(Header{SupplierID: draft.SupplierID})
	inputs := make([]ItemInput, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		inputs = append(inputs, ItemInput{
			ProductID:        l.ProductID,
			SalesOrderItemID: id.Ptr(l.SalesOrderItemID),
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
		})
	}
	order.ReplaceItems(inputs)

	if err := s.hooks.RunBeforeCreate(ctx, order); err != nil {
		return id.Nil(), err
	}
	if err := order.Validate(ctx); err != nil {
		return id.Nil(), err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.create(ctx, order, []id.ID{draft.SalesOrderID})
	})
	if err != nil {
		return id.Nil(), err
	}
	return order.ID, nil
}

func (s *Service) create(ctx context.Context, order *PurchaseOrder, salesOrderIDs []id.ID) error {
	owners, err := s.drawLines(ctx, order.Items)
	if err != nil {
		return err
	}
	linked := id.Unique(append(append([]id.ID{}, salesOrderIDs...), owners...))
	if _, err := s.demand.OrderRefs(ctx, linked); err != nil {
		return err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
		&numerator.Options{Strategy: NumeratorStrategy}, order.OrderDate)
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	order.Number = number

	if err := s.repo.Create(ctx, order); err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	if err := s.repo.EnsureLinked(ctx, order.ID, linked); err != nil {
		return fmt.Errorf("link sales orders: %w", err)
	}
	order.SalesOrderIDs = linked

	logger.Info(ctx, "purchase order created",
		"id", order.ID,
		"number", order.Number,
		"supplier_id", order.SupplierID,
		"items", len(order.Items),
		"sales_orders", len(linked))
	return nil
}

// drawLines books every line against its sales order item and returns the owning orders.
// Lines on the same sales order item accumulate because each draw sees the previous one.
func (s *Service) drawLines(ctx context.Context, items []Item) ([]id.ID, error) {
	var owners []id.ID
	for _, it := range items {
		if it.SalesOrderItemID == nil {
			continue
		}
		soItem, err := s.demand.DrawDemand(ctx, *it.SalesOrderItemID, it.Quantity)
		if err != nil {
			return nil, err
		}
		owners = append(owners, soItem.SalesOrderID)
	}
	return owners, nil
}

func (s *Service) releaseLines(ctx context.Context, items []Item) error {
	for _, it := range items {
		if it.SalesOrderItemID == nil {
			continue
		}
		if _, err := s.demand.ReleaseDemand(ctx, *it.SalesOrderItemID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a purchase order with items and linked sales orders.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) loadDetails(ctx context.Context, order *PurchaseOrder) error {
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	linked, err := s.repo.LinkedSalesOrderIDs(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("get linked sales orders: %w", err)
	}
	order.Items = items
	order.SalesOrderIDs = linked
	return nil
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// UpdateInput is the payload of Update. Nil Items keeps the current lines.
type UpdateInput struct {
	Header
	SalesOrderIDs []id.ID
	Items         []ItemInput
}

// Update edits a draft purchase order. Replacing items releases the demand of the
// old lines before the new lines draw theirs.
func (s *Service) Update(ctx context.Context, orderID id.ID, in UpdateInput) (*PurchaseOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeOrderNotEditable,
				"purchase order can only be edited in draft status").
				WithDetail("status", string(order.Status))
		}
		if err := s.loadDetails(ctx, order); err != nil {
			return err
		}

		order.ApplyHeader(in.Header)
		var owners []id.ID
		if in.Items != nil {
			if err := s.releaseLines(ctx, order.Items); err != nil {
				return err
			}
			order.ReplaceItems(in.Items)
			if owners, err = s.drawLines(ctx, order.Items); err != nil {
				return err
			}
		}

		if err := s.hooks.RunBeforeUpdate(ctx, order); err != nil {
			return err
		}
		if err := order.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		if in.Items != nil {
			if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}
		}

		extra := id.Unique(append(append([]id.ID{}, in.SalesOrderIDs...), owners...))
		if len(extra) > 0 {
			if _, err := s.demand.OrderRefs(ctx, extra); err != nil {
				return err
			}
			if err := s.repo.EnsureLinked(ctx, order.ID, extra); err != nil {
				return fmt.Errorf("link sales orders: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order updated", "id", orderID, "items_replaced", in.Items != nil)
	return s.Get(ctx, orderID)
}

// Confirm moves a draft purchase order to ordered.
func (s *Service) Confirm(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeOrderNotConfirmable,
				"only draft purchase orders can be confirmed").
				WithDetail("status", string(order.Status))
		}
		return s.transition(ctx, order, StatusOrdered, "confirm")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Cancel cancels a draft or ordered purchase order and releases its sales order demand.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.IsCancellable() {
			return apperror.NewBusinessRule(apperror.CodeOrderNotCancellable,
				"only draft or ordered purchase orders can be cancelled").
				WithDetail("status", string(order.Status))
		}
		items, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		if err := s.releaseLines(ctx, items); err != nil {
			return err
		}
		return s.transition(ctx, order, StatusCancelled, "cancel")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Complete closes a fully received purchase order.
func (s *Service) Complete(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.transition(ctx, order, StatusCompleted, "complete")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// LinkSalesOrders adds sales orders to the order's linked set. Existing links are kept.
func (s *Service) LinkSalesOrders(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) (*PurchaseOrder, error) {
	salesOrderIDs = id.Unique(salesOrderIDs)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if _, err := s.demand.OrderRefs(ctx, salesOrderIDs); err != nil {
			return err
		}
		return s.repo.EnsureLinked(ctx, orderID, salesOrderIDs)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "sales orders linked", "id", orderID, "sales_orders", len(salesOrderIDs))
	return s.Get(ctx, orderID)
}

// UnlinkSalesOrders removes sales orders from the linked set. Missing links are ignored.
func (s *Service) UnlinkSalesOrders(ctx context.Context, orderID id.ID, salesOrderIDs []id.ID) (*PurchaseOrder, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		return s.repo.Unlink(ctx, orderID, id.Unique(salesOrderIDs))
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "sales orders unlinked", "id", orderID, "sales_orders", len(salesOrderIDs))
	return s.Get(ctx, orderID)
}

func (s *Service) transition(ctx context.Context, order *PurchaseOrder, to Status, cause string) error {
	t, err := s.applyStatus(ctx, order, to, cause)
	if err != nil {
		return err
	}
	if err := s.journal.Record(ctx, t); err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

func (s *Service) applyStatus(ctx context.Context, order *PurchaseOrder, to Status, cause string) (cascade.Transition, error) {
	from := order.Status
	next, err := from.Next(to)
	if err != nil {
		return cascade.Transition{}, err
	}
	order.Status = next
	audit.EnrichUpdatedByDirect(ctx, &order.UpdatedBy)
	if err := s.repo.Update(ctx, order); err != nil {
		return cascade.Transition{}, fmt.Errorf("update purchase order status: %w", err)
	}

	logger.Info(ctx, "purchase order status changed",
		"id", order.ID,
		"number", order.Number,
		"from", from,
		"to", next,
		"cause", cause)
	return cascade.NewTransition(cascade.AggregatePurchaseOrder, order.ID, order.Number, string(from), string(next), cause), nil
}
