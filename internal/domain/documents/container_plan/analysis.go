package container_plan

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/core/types"
	"snackexport/internal/domain/registers/inventory"
)

// Summary is the per-container loading report of a plan.
type Summary struct {
	ContainerPlanID id.ID              `json:"containerPlanId"`
	ContainerType   ContainerType      `json:"containerType"`
	ContainerCount  int                `json:"containerCount"`
	Containers      []ContainerSummary `json:"containers"`
}

// Summary reports loaded volume and weight against the limits of every container.
func (s *Service) Summary(ctx context.Context, planID id.ID) (*Summary, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	spec, err := planSpec(plan)
	if err != nil {
		return nil, err
	}
	return &Summary{
		ContainerPlanID: plan.ID,
		ContainerType:   plan.ContainerType,
		ContainerCount:  plan.ContainerCount,
		Containers:      Summarize(spec, plan.ContainerCount, plan.Items),
	}, nil
}

// ValidationResult lists capacity errors and shelf-life warnings of a plan.
type ValidationResult struct {
	IsValid  bool               `json:"isValid"`
	Errors   []CapacityError    `json:"errors"`
	Warnings []ShelfLifeWarning `json:"warnings"`
}

// Validate checks container capacity and the shelf life of the allocated stock.
func (s *Service) Validate(ctx context.Context, planID id.ID) (*ValidationResult, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.validate(ctx, plan, time.Now())
}

func (s *Service) validate(ctx context.Context, plan *Plan, today time.Time) (*ValidationResult, error) {
	spec, err := planSpec(plan)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings snapshot: %w", err)
	}

	result := &ValidationResult{
		Errors:   CheckCapacity(spec, plan.Items),
		Warnings: []ShelfLifeWarning{},
	}
	if result.Errors == nil {
		result.Errors = []CapacityError{}
	}
	result.IsValid = len(result.Errors) == 0

	if len(plan.Items) == 0 {
		return result, nil
	}
	productIDs := make([]id.ID, 0, len(plan.Items))
	for _, it := range plan.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	products, err := s.products.GetProducts(ctx, id.Unique(productIDs))
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	for _, it := range plan.Items {
		product, ok := products[it.ProductID]
		if !ok {
			continue
		}
		batches, err := s.stock.Batches(ctx, inventory.BatchFilter{
			ProductID:     it.ProductID,
			SalesOrderID:  it.SalesOrderID,
			OnlyAvailable: true,
		})
		if err != nil {
			return nil, fmt.Errorf("list batches: %w", err)
		}
		if w := CheckShelfLife(it, product, batches, settings.ShelfLifeThreshold, today); w != nil {
			result.Warnings = append(result.Warnings, *w)
		}
	}
	return result, nil
}

func planSpec(plan *Plan) (Spec, error) {
	spec, ok := plan.ContainerType.Spec()
	if !ok {
		return Spec{}, apperror.NewValidation("unknown container type").
			WithDetail("containerType", string(plan.ContainerType))
	}
	return spec, nil
}

// Cargo sources used by RecommendType.
const (
	SourceItems       = "items"
	SourceSalesOrders = "sales_orders"
)

// RecommendationResult ranks the container types for the plan's cargo.
type RecommendationResult struct {
	TotalVolumeCBM  decimal.Decimal  `json:"totalVolumeCbm"`
	TotalWeightKG   decimal.Decimal  `json:"totalWeightKg"`
	Source          string           `json:"source"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendType ranks container types for the allocated cargo, falling back to the
// estimates of the linked sales orders while nothing is allocated.
func (s *Service) RecommendType(ctx context.Context, planID id.ID) (*RecommendationResult, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	volume, weight := plan.Totals()
	source := SourceItems
	if volume.IsZero() && weight.IsZero() {
		orders, err := s.orders.OrderRefs(ctx, plan.SalesOrderIDs)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			volume = volume.Add(o.EstimatedVolumeCBM)
			weight = weight.Add(o.EstimatedWeightKG)
		}
		source = SourceSalesOrders
	}

	return &RecommendationResult{
		TotalVolumeCBM:  types.RoundVolume(volume),
		TotalWeightKG:   types.RoundWeight(weight),
		Source:          source,
		Recommendations: Recommend(volume, weight),
	}, nil
}

// PackingList is the shipping document view of a plan.
type PackingList struct {
	ContainerPlanID id.ID            `json:"containerPlanId"`
	Number          string           `json:"number"`
	ContainerType   ContainerType    `json:"containerType"`
	ContainerCount  int              `json:"containerCount"`
	DestinationPort string           `json:"destinationPort"`
	SalesOrders     []PackingOrder   `json:"salesOrders"`
	Lines           []PackingLine    `json:"lines"`
	Containers      []StuffingRecord `json:"containers"`
	TotalQuantity   int64            `json:"totalQuantity"`
	TotalVolumeCBM  decimal.Decimal  `json:"totalVolumeCbm"`
	TotalWeightKG   decimal.Decimal  `json:"totalWeightKg"`
}

// PackingOrder is a sales order reference on a packing list.
type PackingOrder struct {
	ID     id.ID  `json:"id"`
	Number string `json:"number"`
}

// PackingLine is one allocation enriched with product and batch data.
type PackingLine struct {
	ContainerSeq   int             `json:"containerSeq"`
	ProductID      id.ID           `json:"productId"`
	ProductName    string          `json:"productName,omitempty"`
	SalesOrderID   *id.ID          `json:"salesOrderId,omitempty"`
	Quantity       int64           `json:"quantity"`
	VolumeCBM      decimal.Decimal `json:"volumeCbm"`
	WeightKG       decimal.Decimal `json:"weightKg"`
	BatchNo        string          `json:"batchNo,omitempty"`
	ProductionDate *time.Time      `json:"productionDate,omitempty"`
}

// PackingList builds the packing list of a plan. Lines without a pinned batch show
// the oldest batch of their product and sales order.
func (s *Service) PackingList(ctx context.Context, planID id.ID) (*PackingList, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.OrderRefs(ctx, plan.SalesOrderIDs)
	if err != nil {
		return nil, err
	}
	productIDs := make([]id.ID, 0, len(plan.Items))
	for _, it := range plan.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	products, err := s.products.GetProducts(ctx, id.Unique(productIDs))
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	volume, weight := plan.Totals()
	pl := &PackingList{
		ContainerPlanID: plan.ID,
		Number:          plan.Number,
		ContainerType:   plan.ContainerType,
		ContainerCount:  plan.ContainerCount,
		DestinationPort: plan.DestinationPort,
		SalesOrders:     make([]PackingOrder, 0, len(orders)),
		Lines:           make([]PackingLine, 0, len(plan.Items)),
		Containers:      plan.StuffingRecords,
		TotalVolumeCBM:  types.RoundVolume(volume),
		TotalWeightKG:   types.RoundWeight(weight),
	}
	for _, o := range orders {
		pl.SalesOrders = append(pl.SalesOrders, PackingOrder{ID: o.ID, Number: o.Number})
	}

	for _, it := range plan.Items {
		line := PackingLine{
			ContainerSeq: it.ContainerSeq,
			ProductID:    it.ProductID,
			ProductName:  products[it.ProductID].Name,
			SalesOrderID: it.SalesOrderID,
			Quantity:     it.Quantity,
			VolumeCBM:    it.VolumeCBM,
			WeightKG:     it.WeightKG,
		}
		batch, err := s.batchFor(ctx, it)
		if err != nil {
			return nil, err
		}
		if batch != nil {
			line.BatchNo = batch.BatchNo
			line.ProductionDate = &batch.ProductionDate
		}
		pl.Lines = append(pl.Lines, line)
		pl.TotalQuantity += it.Quantity
	}
	return pl, nil
}

func (s *Service) batchFor(ctx context.Context, it Item) (*inventory.Record, error) {
	if it.InventoryRecordID != nil {
		return s.stock.Get(ctx, *it.InventoryRecordID)
	}
	batches, err := s.stock.Batches(ctx, inventory.BatchFilter{ProductID: it.ProductID, SalesOrderID: it.SalesOrderID})
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return &batches[0], nil
}
