package container_plan

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/registers/inventory"
	"snackexport/pkg/logger"
)

// OrderBook is the sales order side of planning.
type OrderBook interface {
	OrderRefs(ctx context.Context, orderIDs []id.ID) ([]*sales_order.SalesOrder, error)
	LockOrderRefs(ctx context.Context, orderIDs []id.ID) ([]*sales_order.SalesOrder, error)
	AdvanceEffect(orderIDs []id.ID, from, to sales_order.Status, cause string) cascade.Effect
}

// Stock is the inventory ledger as seen by planning.
type Stock interface {
	Get(ctx context.Context, recordID id.ID) (*inventory.Record, error)
	Available(ctx context.Context, productID id.ID, salesOrderID *id.ID) (int64, error)
	Batches(ctx context.Context, filter inventory.BatchFilter) ([]inventory.Record, error)
}

// Service provides business operations for container plans.
type Service struct {
	repo      Repository
	orders    OrderBook
	stock     Stock
	products  masterdata.ProductReader
	settings  masterdata.SettingsReader
	numerator numerator.Generator
	txManager tx.Manager
	journal   cascade.Journal
}

// NewService creates a new container plan service.
func NewService(
	repo Repository,
	orders OrderBook,
	stock Stock,
	products masterdata.ProductReader,
	settings masterdata.SettingsReader,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		stock:     stock,
		products:  products,
		settings:  settings,
		numerator: numerator,
		txManager: txManager,
		journal:   journal,
	}
}

// CreateInput is the payload of Create. DestinationPort overrides the ports of the orders.
type CreateInput struct {
	SalesOrderIDs   []id.ID
	ContainerType   ContainerType
	ContainerCount  int
	DestinationPort string
	Remark          string
}

// Create plans containers for goods-ready sales orders sharing one destination port.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Plan, error) {
	plan := &Plan{
		Document:        entity.NewDocument(),
		ContainerType:   in.ContainerType,
		ContainerCount:  in.ContainerCount,
		DestinationPort: strings.TrimSpace(in.DestinationPort),
		Status:          StatusPlanning,
		SalesOrderIDs:   id.Unique(in.SalesOrderIDs),
	}
	if plan.ContainerCount == 0 {
		plan.ContainerCount = 1
	}
	plan.Remark = in.Remark
	audit.EnrichCreatedByDirect(ctx, &plan.CreatedBy, &plan.UpdatedBy)

	if len(plan.SalesOrderIDs) == 0 {
		return nil, apperror.NewValidation("at least one sales order is required").
			WithDetail("field", "salesOrderIds")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		orders, err := s.orders.LockOrderRefs(ctx, plan.SalesOrderIDs)
		if err != nil {
			return err
		}
		port, err := resolvePort(orders, plan.DestinationPort)
		if err != nil {
			return err
		}
		plan.DestinationPort = port

		if err := plan.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: NumeratorStrategy}, entity.Today())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		plan.Number = number

		if err := s.repo.Create(ctx, plan); err != nil {
			return fmt.Errorf("create container plan: %w", err)
		}
		if err := s.repo.EnsureLinked(ctx, plan.ID, plan.SalesOrderIDs); err != nil {
			return fmt.Errorf("link sales orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "container plan created",
		"id", plan.ID,
		"number", plan.Number,
		"container_type", plan.ContainerType,
		"container_count", plan.ContainerCount,
		"sales_orders", len(plan.SalesOrderIDs))
	return s.Get(ctx, plan.ID)
}

// resolvePort requires every order to be goods ready and, without an override,
// to share one destination port.
func resolvePort(orders []*sales_order.SalesOrder, override string) (string, error) {
	var ports []string
	for _, o := range orders {
		if o.Status != sales_order.StatusGoodsReady {
			return "", apperror.NewBusinessRule(apperror.CodeOrderNotReady,
				fmt.Sprintf("sales order %s is %s, only goods ready orders can be planned", o.Number, o.Status)).
				WithDetail("sales_order_id", o.ID).
				WithDetail("number", o.Number).
				WithDetail("status", string(o.Status))
		}
		if !slices.Contains(ports, o.DestinationPort) {
			ports = append(ports, o.DestinationPort)
		}
	}
	if override != "" {
		return override, nil
	}
	if len(ports) > 1 {
		sort.Strings(ports)
		return "", apperror.NewBusinessRule(apperror.CodePortMismatch,
			"sales orders have different destination ports: "+strings.Join(ports, ", ")).
			WithDetail("ports", ports)
	}
	if len(ports) == 0 {
		return "", nil
	}
	return ports[0], nil
}

// Get retrieves a plan with linked orders, items and stuffing records.
func (s *Service) Get(ctx context.Context, planID id.ID) (*Plan, error) {
	plan, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.loadDetails(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) loadDetails(ctx context.Context, plan *Plan) error {
	linked, err := s.repo.LinkedSalesOrderIDs(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("get linked sales orders: %w", err)
	}
	items, err := s.repo.GetItems(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	records, err := s.repo.GetStuffingRecords(ctx, plan.ID)
	if err != nil {
		return fmt.Errorf("get stuffing records: %w", err)
	}
	if len(records) > 0 {
		recordIDs := make([]id.ID, 0, len(records))
		for _, r := range records {
			recordIDs = append(recordIDs, r.ID)
		}
		photos, err := s.repo.GetPhotos(ctx, recordIDs)
		if err != nil {
			return fmt.Errorf("get photos: %w", err)
		}
		for i := range records {
			records[i].Photos = []Photo{}
			for _, p := range photos {
				if p.StuffingRecordID == records[i].ID {
					records[i].Photos = append(records[i].Photos, p)
				}
			}
		}
	}
	plan.SalesOrderIDs = linked
	plan.Items = items
	plan.StuffingRecords = records
	return nil
}

// List retrieves container plans with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Plan], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// UpdateInput changes plan header fields; nil fields are kept.
type UpdateInput struct {
	ContainerType   *ContainerType
	ContainerCount  *int
	DestinationPort *string
	Remark          *string
}

// Update edits a planning plan. The container count may not drop below the
// highest container sequence already allocated.
func (s *Service) Update(ctx context.Context, planID id.ID, in UpdateInput) (*Plan, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if err := plan.RequirePlanning(); err != nil {
			return err
		}

		if in.ContainerType != nil {
			plan.ContainerType = *in.ContainerType
		}
		if in.ContainerCount != nil {
			if highest := plan.MaxContainerSeq(); *in.ContainerCount < highest {
				return apperror.NewBusinessRule(apperror.CodeContainerSeqOutOfRange,
					"container count is below an allocated container sequence").
					WithDetail("container_seq", highest).
					WithDetail("container_count", *in.ContainerCount)
			}
			plan.ContainerCount = *in.ContainerCount
		}
		if in.DestinationPort != nil {
			plan.DestinationPort = strings.TrimSpace(*in.DestinationPort)
		}
		if in.Remark != nil {
			plan.Remark = *in.Remark
		}
		if err := plan.Validate(ctx); err != nil {
			return err
		}

		audit.EnrichUpdatedByDirect(ctx, &plan.UpdatedBy)
		return s.repo.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "container plan updated", "id", planID)
	return s.Get(ctx, planID)
}

// lockWithDetails locks the plan row and loads its details.
func (s *Service) lockWithDetails(ctx context.Context, planID id.ID) (*Plan, error) {
	plan, err := s.repo.GetForUpdate(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.loadDetails(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// LockForOutbound locks the plan and returns it with details. Must run inside a transaction.
func (s *Service) LockForOutbound(ctx context.Context, planID id.ID) (*Plan, error) {
	return s.lockWithDetails(ctx, planID)
}

// AddItem allocates stock to a container of a planning plan.
func (s *Service) AddItem(ctx context.Context, planID id.ID, in ItemInput) (*Plan, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if err := plan.RequirePlanning(); err != nil {
			return err
		}

		item := newItem(plan.ID, in)
		if err := validateItem(item); err != nil {
			return err
		}
		if err := plan.CheckSeq(item.ContainerSeq); err != nil {
			return err
		}
		if err := s.checkAvailability(ctx, plan, item); err != nil {
			return err
		}
		if err := s.repo.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		logger.Info(ctx, "container plan item added",
			"id", plan.ID,
			"item_id", item.ID,
			"container_seq", item.ContainerSeq,
			"product_id", item.ProductID,
			"quantity", item.Quantity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, planID)
}

// UpdateItem changes an allocation of a planning plan and re-checks availability.
func (s *Service) UpdateItem(ctx context.Context, planID, itemID id.ID, patch ItemPatch) (*Plan, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if err := plan.RequirePlanning(); err != nil {
			return err
		}

		i := slices.IndexFunc(plan.Items, func(it Item) bool { return it.ID == itemID })
		if i < 0 {
			return apperror.NewNotFound("container_plan_item", itemID)
		}
		item := plan.Items[i]
		patch.Apply(&item)

		if err := validateItem(item); err != nil {
			return err
		}
		if err := plan.CheckSeq(item.ContainerSeq); err != nil {
			return err
		}
		if err := s.checkAvailability(ctx, plan, item); err != nil {
			return err
		}
		return s.repo.UpdateItem(ctx, &item)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "container plan item updated", "id", planID, "item_id", itemID)
	return s.Get(ctx, planID)
}

// DeleteItem removes an allocation from a planning plan.
func (s *Service) DeleteItem(ctx context.Context, planID, itemID id.ID) (*Plan, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.lockWithDetails(ctx, planID)
		if err != nil {
			return err
		}
		if err := plan.RequirePlanning(); err != nil {
			return err
		}
		if !slices.ContainsFunc(plan.Items, func(it Item) bool { return it.ID == itemID }) {
			return apperror.NewNotFound("container_plan_item", itemID)
		}
		return s.repo.DeleteItem(ctx, itemID)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "container plan item deleted", "id", planID, "item_id", itemID)
	return s.Get(ctx, planID)
}

// checkAvailability guards against allocating more than the ledger holds.
// The pair check subtracts every other allocation of the plan for the same product
// and sales order. An item pinned to a batch is also checked against that batch.
func (s *Service) checkAvailability(ctx context.Context, plan *Plan, item Item) error {
	available, err := s.stock.Available(ctx, item.ProductID, item.SalesOrderID)
	if err != nil {
		return fmt.Errorf("available stock: %w", err)
	}
	for i := range plan.Items {
		other := &plan.Items[i]
		if other.ID != item.ID && other.SamePair(&item) {
			available -= other.Quantity
		}
	}
	if item.Quantity > available {
		return s.insufficient(plan, item, available)
	}

	if item.InventoryRecordID == nil {
		return nil
	}
	rec, err := s.stock.Get(ctx, *item.InventoryRecordID)
	if err != nil {
		return err
	}
	if rec.ProductID != item.ProductID || !id.EqualPtr(rec.SalesOrderID, item.SalesOrderID) {
		return apperror.NewValidation("inventory batch does not match product and sales order").
			WithDetail("field", "inventoryRecordId")
	}
	batchAvailable := rec.AvailableQuantity
	for i := range plan.Items {
		other := &plan.Items[i]
		if other.ID != item.ID && id.EqualPtr(other.InventoryRecordID, item.InventoryRecordID) {
			batchAvailable -= other.Quantity
		}
	}
	if item.Quantity > batchAvailable {
		return s.insufficient(plan, item, batchAvailable).
			WithDetail("inventory_record_id", rec.ID).
			WithDetail("batch_no", rec.BatchNo)
	}
	return nil
}

func (s *Service) insufficient(plan *Plan, item Item, available int64) *apperror.AppError {
	e := apperror.NewInsufficientStock(item.ProductID.String(), item.Quantity, max(available, 0)).
		WithDetail("container_plan_id", plan.ID)
	if item.SalesOrderID != nil {
		e = e.WithDetail("sales_order_id", *item.SalesOrderID)
	}
	return e
}
