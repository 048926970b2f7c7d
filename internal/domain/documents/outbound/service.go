package outbound

import (
	"context"
	"fmt"
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/registers/inventory"
	"snackexport/pkg/logger"
)

// Plans gives access to loaded container plans.
type Plans interface {
	LockForOutbound(ctx context.Context, planID id.ID) (*container_plan.Plan, error)
}

// Stock is the inventory ledger as seen by outbound.
type Stock interface {
	Get(ctx context.Context, recordID id.ID) (*inventory.Record, error)
	AllocateFIFO(ctx context.Context, productID id.ID, salesOrderID *id.ID, qty int64, pending inventory.Pending) ([]inventory.Allocation, error)
	Deduct(ctx context.Context, recordID id.ID, qty int64) (*inventory.Record, error)
}

// DemandLedger credits shipped quantities to sales order lines.
type DemandLedger interface {
	RecordOutbound(ctx context.Context, orderID, productID id.ID, qty int64) error
}

// Service provides business operations for outbound orders.
type Service struct {
	repo      Repository
	plans     Plans
	stock     Stock
	demand    DemandLedger
	numerator numerator.Generator
	txManager tx.Manager
	journal   cascade.Journal
}

// NewService creates a new outbound service.
func NewService(
	repo Repository,
	plans Plans,
	stock Stock,
	demand DemandLedger,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	return &Service{
		repo:      repo,
		plans:     plans,
		stock:     stock,
		demand:    demand,
		numerator: numerator,
		txManager: txManager,
		journal:   journal,
	}
}

// Create drafts the outbound order of a loaded plan. A plan has at most one
// non-cancelled outbound order.
func (s *Service) Create(ctx context.Context, planID id.ID, remark string) (*Order, error) {
	order := &Order{
		Document:        entity.NewDocument(),
		ContainerPlanID: planID,
		Status:          StatusDraft,
	}
	order.Remark = remark
	audit.EnrichCreatedByDirect(ctx, &order.CreatedBy, &order.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.plans.LockForOutbound(ctx, planID)
		if err != nil {
			return err
		}
		if plan.Status != container_plan.StatusLoaded {
			return apperror.NewBusinessRule(apperror.CodePlanNotLoaded,
				fmt.Sprintf("container plan is %s, only loaded plans can be released", plan.Status)).
				WithDetail("container_plan_id", plan.ID).
				WithDetail("status", string(plan.Status))
		}
		existing, err := s.repo.FindActiveByPlan(ctx, planID)
		if err != nil {
			return fmt.Errorf("find active outbound order: %w", err)
		}
		if existing != nil {
			return apperror.NewConflict("container plan already has outbound order "+existing.Number).
				WithDetail("container_plan_id", planID).
				WithDetail("outbound_order_id", existing.ID)
		}

		items, err := s.buildItems(ctx, order.ID, plan.Items)
		if err != nil {
			return err
		}
		order.Items = items

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: NumeratorStrategy}, entity.Today())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		order.Number = number

		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create outbound order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "outbound order created",
		"id", order.ID,
		"number", order.Number,
		"container_plan_id", planID,
		"items", len(order.Items))
	return s.Get(ctx, order.ID)
}

// buildItems copies plan items onto batches. Pinned items use their batch; other
// items are spread over the batches of their product and sales order, oldest first,
// after the quantities already taken by the order's other items.
// Items without any batch are skipped.
func (s *Service) buildItems(ctx context.Context, orderID id.ID, planItems []container_plan.Item) ([]Item, error) {
	items := make([]Item, 0, len(planItems))
	pending := inventory.Pending{}
	for _, pi := range pinnedFirst(planItems) {
		var allocations []inventory.Allocation
		if pi.InventoryRecordID != nil {
			rec, err := s.stock.Get(ctx, *pi.InventoryRecordID)
			if apperror.IsNotFound(err) {
				logger.Warn(ctx, "plan item references missing batch",
					"container_plan_item_id", pi.ID,
					"inventory_record_id", *pi.InventoryRecordID)
				continue
			}
			if err != nil {
				return nil, err
			}
			allocations = []inventory.Allocation{{Record: *rec, Quantity: pi.Quantity}}
			pending.Add(rec.ID, pi.Quantity)
		} else {
			var err error
			allocations, err = s.stock.AllocateFIFO(ctx, pi.ProductID, pi.SalesOrderID, pi.Quantity, pending)
			if err != nil {
				return nil, fmt.Errorf("allocate batches: %w", err)
			}
			if len(allocations) == 0 {
				logger.Warn(ctx, "no batch for plan item",
					"container_plan_item_id", pi.ID,
					"product_id", pi.ProductID)
				continue
			}
		}

		for _, a := range allocations {
			items = append(items, Item{
				ID:                  id.New(),
				OutboundOrderID:     orderID,
				ContainerPlanItemID: pi.ID,
				InventoryRecordID:   a.Record.ID,
				ProductID:           pi.ProductID,
				SalesOrderID:        pi.SalesOrderID,
				Quantity:            a.Quantity,
				BatchNo:             a.Record.BatchNo,
				ProductionDate:      a.Record.ProductionDate,
			})
		}
	}
	return items, nil
}

// pinnedFirst orders items with a fixed batch before the FIFO ones, so FIFO
// allocation sees every pinned quantity. Relative order is kept otherwise.
func pinnedFirst(planItems []container_plan.Item) []container_plan.Item {
	out := make([]container_plan.Item, 0, len(planItems))
	for _, pi := range planItems {
		if pi.InventoryRecordID != nil {
			out = append(out, pi)
		}
	}
	for _, pi := range planItems {
		if pi.InventoryRecordID == nil {
			out = append(out, pi)
		}
	}
	return out
}

// Get retrieves an outbound order with items.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
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

// List retrieves outbound orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// ConfirmInput is the payload of Confirm. A zero date means today.
type ConfirmInput struct {
	OutboundDate time.Time
	Operator     string
}

// Confirm releases the goods: every item is deducted from its batch and credited to
// the sales order line of its product.
func (s *Service) Confirm(ctx context.Context, orderID id.ID, in ConfirmInput) (*Order, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeOrderNotConfirmable,
				"only draft outbound orders can be confirmed").
				WithDetail("status", string(order.Status))
		}
		items, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}

		for _, it := range items {
			if _, err := s.stock.Deduct(ctx, it.InventoryRecordID, it.Quantity); err != nil {
				return err
			}
			if it.SalesOrderID != nil {
				if err := s.demand.RecordOutbound(ctx, *it.SalesOrderID, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		date := entity.DateOf(in.OutboundDate)
		if in.OutboundDate.IsZero() {
			date = entity.Today()
		}
		order.OutboundDate = &date
		order.Operator = in.Operator
		return s.transition(ctx, order, StatusConfirmed, "confirm")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Cancel cancels a draft outbound order. No stock has moved yet.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*Order, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return apperror.NewBusinessRule(apperror.CodeOrderNotCancellable,
				"only draft outbound orders can be cancelled").
				WithDetail("status", string(order.Status))
		}
		return s.transition(ctx, order, StatusCancelled, "cancel")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

func (s *Service) transition(ctx context.Context, order *Order, to Status, cause string) error {
	from := order.Status
	next, err := from.Next(to)
	if err != nil {
		return err
	}
	order.Status = next
	audit.EnrichUpdatedByDirect(ctx, &order.UpdatedBy)
	if err := s.repo.Update(ctx, order); err != nil {
		return fmt.Errorf("update outbound order: %w", err)
	}
	if err := s.journal.Record(ctx, cascade.NewTransition(cascade.AggregateOutbound,
		order.ID, order.Number, string(from), string(next), cause)); err != nil {
		return fmt.Errorf("record transition: %w", err)
	}

	logger.Info(ctx, "outbound order status changed",
		"id", order.ID,
		"number", order.Number,
		"from", from,
		"to", next,
		"cause", cause)
	return nil
}
