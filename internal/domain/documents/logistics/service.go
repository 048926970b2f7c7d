package logistics

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/core/types"
	"snackexport/internal/domain"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/pkg/logger"
)

// Plans is the container plan side of a shipment.
type Plans interface {
	Get(ctx context.Context, planID id.ID) (*container_plan.Plan, error)
	ShippedEffect(planID id.ID, cause string) cascade.Effect
}

// OrderBook advances the sales orders of a shipped plan.
type OrderBook interface {
	AdvanceEffect(orderIDs []id.ID, from, to sales_order.Status, cause string) cascade.Effect
}

// Service provides business operations for logistics records.
type Service struct {
	repo      Repository
	plans     Plans
	orders    OrderBook
	numerator numerator.Generator
	txManager tx.Manager
	journal   cascade.Journal
}

// NewService creates a new logistics service.
func NewService(
	repo Repository,
	plans Plans,
	orders OrderBook,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	return &Service{
		repo:      repo,
		plans:     plans,
		orders:    orders,
		numerator: numerator,
		txManager: txManager,
		journal:   journal,
	}
}

// CreateInput is the payload of Create. The port of discharge defaults to the
// destination port of the plan.
type CreateInput struct {
	ContainerPlanID id.ID
	Header
}

// Create books a shipment for a container plan.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	plan, err := s.plans.Get(ctx, in.ContainerPlanID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Document:        entity.NewDocument(),
		ContainerPlanID: plan.ID,
		Status:          StatusBooked,
		TotalCost:       decimal.Zero,
	}
	in.Header.Apply(rec)
	if strings.TrimSpace(rec.PortOfDischarge) == "" {
		rec.PortOfDischarge = plan.DestinationPort
	}
	audit.EnrichCreatedByDirect(ctx, &rec.CreatedBy, &rec.UpdatedBy)
	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
		&numerator.Options{Strategy: NumeratorStrategy}, entity.Today())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	rec.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("create logistics record: %w", err)
	}

	logger.Info(ctx, "logistics record created",
		"id", rec.ID,
		"number", rec.Number,
		"container_plan_id", rec.ContainerPlanID)
	return s.Get(ctx, rec.ID)
}

// Get retrieves a logistics record with costs.
func (s *Service) Get(ctx context.Context, recordID id.ID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	costs, err := s.repo.GetCosts(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get costs: %w", err)
	}
	rec.Costs = costs
	return rec, nil
}

// List retrieves logistics records with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Record], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Kanban counts records and their cost per status, in shipping order.
func (s *Service) Kanban(ctx context.Context) ([]StatusCount, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StatusCount, 0, len(sequence))
	for _, st := range sequence {
		c := StatusCount{Status: st, TotalCost: decimal.Zero}
		if i := slices.IndexFunc(counts, func(sc StatusCount) bool { return sc.Status == st }); i >= 0 {
			c = counts[i]
		}
		out = append(out, c)
	}
	return out, nil
}

// Update edits header fields. The status is changed only by UpdateStatus.
func (s *Service) Update(ctx context.Context, recordID id.ID, h Header) (*Record, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.repo.GetForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		h.Apply(rec)
		if err := rec.Validate(ctx); err != nil {
			return err
		}
		audit.EnrichUpdatedByDirect(ctx, &rec.UpdatedBy)
		return s.repo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "logistics record updated", "id", recordID)
	return s.Get(ctx, recordID)
}

// UpdateStatus moves the record forward. Reaching loaded_on_ship ships the plan and
// its container-loaded sales orders; reaching delivered delivers the shipped orders.
func (s *Service) UpdateStatus(ctx context.Context, recordID id.ID, status Status) (*Record, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.repo.GetForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		from := rec.Status
		next, err := from.Next(status)
		if err != nil {
			return err
		}
		rec.Status = next
		audit.EnrichUpdatedByDirect(ctx, &rec.UpdatedBy)
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("update logistics record: %w", err)
		}
		cause := "logistics " + rec.Number + " " + string(next)
		if err := s.journal.Record(ctx, cascade.NewTransition(cascade.AggregateLogistics,
			rec.ID, rec.Number, string(from), string(next), cause)); err != nil {
			return fmt.Errorf("record transition: %w", err)
		}
		logger.Info(ctx, "logistics status changed",
			"id", rec.ID,
			"number", rec.Number,
			"from", from,
			"to", next)

		plan, err := s.plans.Get(ctx, rec.ContainerPlanID)
		if apperror.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		effects := cascade.NewPlan(cause)
		switch next {
		case StatusLoadedOnShip:
			effects.
				Then(s.plans.ShippedEffect(plan.ID, cause)).
				Then(s.orders.AdvanceEffect(plan.SalesOrderIDs,
					sales_order.StatusContainerLoaded, sales_order.StatusShipped, cause))
		case StatusDelivered:
			effects.Then(s.orders.AdvanceEffect(plan.SalesOrderIDs,
				sales_order.StatusShipped, sales_order.StatusDelivered, cause))
		}
		_, err = effects.Apply(ctx, s.journal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recordID)
}

// AddCost adds a cost line and recomputes the total.
func (s *Service) AddCost(ctx context.Context, recordID id.ID, in CostInput) (*Record, error) {
	cost := &Cost{
		ID:                id.New(),
		LogisticsRecordID: recordID,
		CostType:          in.CostType,
		Amount:            types.RoundMoney(in.Amount),
		Currency:          in.Currency,
		Remark:            in.Remark,
		CreatedAt:         time.Now().UTC(),
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, recordID); err != nil {
			return err
		}
		if err := s.repo.CreateCost(ctx, cost); err != nil {
			return fmt.Errorf("create cost: %w", err)
		}
		return s.recalculateTotal(ctx, recordID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "logistics cost added", "id", recordID, "cost_id", cost.ID, "amount", cost.Amount)
	return s.Get(ctx, recordID)
}

// UpdateCost changes a cost line and recomputes the total.
func (s *Service) UpdateCost(ctx context.Context, recordID, costID id.ID, patch CostPatch) (*Record, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cost, err := s.lockCost(ctx, recordID, costID)
		if err != nil {
			return err
		}
		patch.Apply(cost)
		if err := cost.Validate(); err != nil {
			return err
		}
		if err := s.repo.UpdateCost(ctx, cost); err != nil {
			return fmt.Errorf("update cost: %w", err)
		}
		return s.recalculateTotal(ctx, recordID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "logistics cost updated", "id", recordID, "cost_id", costID)
	return s.Get(ctx, recordID)
}

// DeleteCost removes a cost line and recomputes the total.
func (s *Service) DeleteCost(ctx context.Context, recordID, costID id.ID) (*Record, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lockCost(ctx, recordID, costID); err != nil {
			return err
		}
		if err := s.repo.DeleteCost(ctx, costID); err != nil {
			return fmt.Errorf("delete cost: %w", err)
		}
		return s.recalculateTotal(ctx, recordID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "logistics cost deleted", "id", recordID, "cost_id", costID)
	return s.Get(ctx, recordID)
}

// lockCost locks the record and returns one of its costs.
func (s *Service) lockCost(ctx context.Context, recordID, costID id.ID) (*Cost, error) {
	if _, err := s.repo.GetForUpdate(ctx, recordID); err != nil {
		return nil, err
	}
	costs, err := s.repo.GetCosts(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get costs: %w", err)
	}
	i := slices.IndexFunc(costs, func(c Cost) bool { return c.ID == costID })
	if i < 0 {
		return nil, apperror.NewNotFound("logistics_cost", costID)
	}
	return &costs[i], nil
}

// recalculateTotal stores the live sum of the costs as total_cost.
func (s *Service) recalculateTotal(ctx context.Context, recordID id.ID) error {
	total, err := s.repo.SumCosts(ctx, recordID)
	if err != nil {
		return fmt.Errorf("sum costs: %w", err)
	}
	return s.repo.SetTotalCost(ctx, recordID, types.RoundMoney(total))
}
