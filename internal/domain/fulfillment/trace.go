// Package fulfillment assembles the end-to-end trace of a sales order across
// procurement, receiving, inventory, container planning, outbound and logistics.
package fulfillment

import (
	"context"
	"fmt"

	"snackexport/internal/core/id"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/registers/inventory"
)

// Readers used by the trace.
type (
	SalesOrders interface {
		Get(ctx context.Context, orderID id.ID) (*sales_order.SalesOrder, error)
	}
	PurchaseOrders interface {
		Get(ctx context.Context, orderID id.ID) (*purchase_order.PurchaseOrder, error)
		List(ctx context.Context, filter purchase_order.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error)
	}
	ReceivingNotes interface {
		Get(ctx context.Context, noteID id.ID) (*receiving.Note, error)
		List(ctx context.Context, filter receiving.ListFilter) (domain.ListResult[*receiving.Note], error)
	}
	Stock interface {
		BySalesOrder(ctx context.Context, salesOrderID id.ID) (*inventory.SalesOrderStock, error)
	}
	ContainerPlans interface {
		Get(ctx context.Context, planID id.ID) (*container_plan.Plan, error)
		List(ctx context.Context, filter container_plan.ListFilter) (domain.ListResult[*container_plan.Plan], error)
	}
	OutboundOrders interface {
		List(ctx context.Context, filter outbound.ListFilter) (domain.ListResult[*outbound.Order], error)
	}
	LogisticsRecords interface {
		Get(ctx context.Context, recordID id.ID) (*logistics.Record, error)
		List(ctx context.Context, filter logistics.ListFilter) (domain.ListResult[*logistics.Record], error)
	}
)

// Trace is every document touching one sales order.
type Trace struct {
	SalesOrder       *sales_order.SalesOrder         `json:"salesOrder"`
	PurchaseOrders   []*purchase_order.PurchaseOrder `json:"purchaseOrders"`
	ReceivingNotes   []*receiving.Note               `json:"receivingNotes"`
	Stock            *inventory.SalesOrderStock      `json:"stock"`
	ContainerPlans   []*container_plan.Plan          `json:"containerPlans"`
	OutboundOrders   []*outbound.Order               `json:"outboundOrders"`
	LogisticsRecords []*logistics.Record             `json:"logisticsRecords"`
	Readiness        sales_order.Readiness           `json:"readiness"`
}

// Service builds fulfillment traces.
type Service struct {
	orders    SalesOrders
	purchases PurchaseOrders
	notes     ReceivingNotes
	stock     Stock
	plans     ContainerPlans
	outbound  OutboundOrders
	logistics LogisticsRecords
	txManager tx.Manager
}

// NewService creates a new fulfillment trace service.
func NewService(
	orders SalesOrders,
	purchases PurchaseOrders,
	notes ReceivingNotes,
	stock Stock,
	plans ContainerPlans,
	outbound OutboundOrders,
	logistics LogisticsRecords,
	txManager tx.Manager,
) *Service {
	return &Service{
		orders:    orders,
		purchases: purchases,
		notes:     notes,
		stock:     stock,
		plans:     plans,
		outbound:  outbound,
		logistics: logistics,
		txManager: txManager,
	}
}

// traceLimit bounds every related-document listing of one trace.
const traceLimit = 500

func traceFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Limit = traceLimit
	f.OrderBy = "created_at"
	return f
}

// Trace collects the documents related to the sales order from one snapshot.
func (s *Service) Trace(ctx context.Context, salesOrderID id.ID) (*Trace, error) {
	var t *Trace
	err := tx.ReadOnly(ctx, s.txManager, func(ctx context.Context) error {
		var err error
		t, err = s.collect(ctx, salesOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) collect(ctx context.Context, salesOrderID id.ID) (*Trace, error) {
	order, err := s.orders.Get(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	t := &Trace{
		SalesOrder:       order,
		PurchaseOrders:   []*purchase_order.PurchaseOrder{},
		ReceivingNotes:   []*receiving.Note{},
		ContainerPlans:   []*container_plan.Plan{},
		OutboundOrders:   []*outbound.Order{},
		LogisticsRecords: []*logistics.Record{},
		Readiness:        order.Readiness(),
	}

	pos, err := s.purchases.List(ctx, purchase_order.ListFilter{
		ListFilter:   traceFilter(),
		SalesOrderID: &salesOrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	poIDs := make([]id.ID, 0, len(pos.Items))
	for _, po := range pos.Items {
		full, err := s.purchases.Get(ctx, po.ID)
		if err != nil {
			return nil, err
		}
		t.PurchaseOrders = append(t.PurchaseOrders, full)
		poIDs = append(poIDs, po.ID)
	}

	if len(poIDs) > 0 {
		notes, err := s.notes.List(ctx, receiving.ListFilter{
			ListFilter:       traceFilter(),
			PurchaseOrderIDs: poIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("list receiving notes: %w", err)
		}
		for _, n := range notes.Items {
			full, err := s.notes.Get(ctx, n.ID)
			if err != nil {
				return nil, err
			}
			t.ReceivingNotes = append(t.ReceivingNotes, full)
		}
	}

	if t.Stock, err = s.stock.BySalesOrder(ctx, salesOrderID); err != nil {
		return nil, err
	}

	plans, err := s.plans.List(ctx, container_plan.ListFilter{
		ListFilter:   traceFilter(),
		SalesOrderID: &salesOrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("list container plans: %w", err)
	}
	planIDs := make([]id.ID, 0, len(plans.Items))
	for _, p := range plans.Items {
		full, err := s.plans.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		t.ContainerPlans = append(t.ContainerPlans, full)
		planIDs = append(planIDs, p.ID)

		outs, err := s.outbound.List(ctx, outbound.ListFilter{
			ListFilter:      traceFilter(),
			ContainerPlanID: &p.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("list outbound orders: %w", err)
		}
		t.OutboundOrders = append(t.OutboundOrders, outs.Items...)
	}

	if len(planIDs) > 0 {
		recs, err := s.logistics.List(ctx, logistics.ListFilter{
			ListFilter:       traceFilter(),
			ContainerPlanIDs: planIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("list logistics records: %w", err)
		}
		for _, r := range recs.Items {
			full, err := s.logistics.Get(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			t.LogisticsRecords = append(t.LogisticsRecords, full)
		}
	}
	return t, nil
}
