package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/pkg/logger"
)

// Service provides ledger operations.
// Mutations are called by the receiving and outbound workflows inside their transactions.
type Service struct {
	repo Repository
}

// NewService creates a new inventory ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Receive creates a batch with quantity = available = receipt quantity.
func (s *Service) Receive(ctx context.Context, in Receipt) (*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:                  id.New(),
		ProductID:           in.ProductID,
		SalesOrderID:        in.SalesOrderID,
		ReceivingNoteItemID: in.ReceivingNoteItemID,
		BatchNo:             in.BatchNo,
		ProductionDate:      in.ProductionDate,
		Quantity:            in.Quantity,
		AvailableQuantity:   in.Quantity,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create inventory record: %w", err)
	}

	logger.Info(ctx, "inventory batch received",
		"id", rec.ID,
		"batch_no", rec.BatchNo,
		"product_id", rec.ProductID,
		"quantity", rec.Quantity)
	return rec, nil
}

// Get returns one batch.
func (s *Service) Get(ctx context.Context, recordID id.ID) (*Record, error) {
	return s.repo.GetByID(ctx, recordID)
}

// Deduct locks the batch and removes qty from its available balance.
// Must run inside a transaction.
func (s *Service) Deduct(ctx context.Context, recordID id.ID, qty int64) (*Record, error) {
	rec, err := s.repo.GetForUpdate(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := rec.Deduct(qty); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBalances(ctx, rec); err != nil {
		return nil, fmt.Errorf("update inventory balances: %w", err)
	}

	logger.Info(ctx, "inventory deducted",
		"id", rec.ID,
		"batch_no", rec.BatchNo,
		"quantity", qty,
		"available", rec.AvailableQuantity)
	return rec, nil
}

// Available returns the available quantity of product earmarked for the sales order.
// A nil sales order selects un-earmarked stock.
func (s *Service) Available(ctx context.Context, productID id.ID, salesOrderID *id.ID) (int64, error) {
	return s.repo.SumAvailable(ctx, productID, salesOrderID)
}

// Batches lists the batches of a product/sales order pair, oldest production first.
func (s *Service) Batches(ctx context.Context, filter BatchFilter) ([]Record, error) {
	return s.repo.Batches(ctx, filter)
}

// Allocation is a part of a requested quantity assigned to one batch.
type Allocation struct {
	Record   Record
	Quantity int64
}

// Pending tracks quantities already assigned to batches by earlier allocations
// of the same document that have not been deducted yet.
type Pending map[id.ID]int64

// Add books qty against a batch.
func (p Pending) Add(recordID id.ID, qty int64) {
	p[recordID] += qty
}

// AllocateFIFO spreads qty over the available batches of the pair, oldest production first.
// Quantities in pending count as taken and the new allocations are added to it, so
// sibling lines of one document never draw the same stock twice. pending may be nil.
// Any remainder that cannot be covered is added to the last batch, so the shortage
// surfaces as insufficient stock when the allocation is deducted.
// Returns nil when the pair has no batch at all.
func (s *Service) AllocateFIFO(ctx context.Context, productID id.ID, salesOrderID *id.ID, qty int64, pending Pending) ([]Allocation, error) {
	if pending == nil {
		pending = Pending{}
	}
	batches, err := s.repo.Batches(ctx, BatchFilter{
		ProductID:     productID,
		SalesOrderID:  salesOrderID,
		OnlyAvailable: true,
	})
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		batches, err = s.repo.Batches(ctx, BatchFilter{ProductID: productID, SalesOrderID: salesOrderID})
		if err != nil {
			return nil, err
		}
		if len(batches) == 0 {
			return nil, nil
		}
		pending.Add(batches[0].ID, qty)
		return []Allocation{{Record: batches[0], Quantity: qty}}, nil
	}
	return splitFIFO(batches, qty, pending), nil
}

func splitFIFO(batches []Record, qty int64, pending Pending) []Allocation {
	var out []Allocation
	remaining := qty
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		take := b.AvailableQuantity - pending[b.ID]
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		out = append(out, Allocation{Record: b, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		if len(out) == 0 {
			out = append(out, Allocation{Record: batches[0]})
		}
		out[len(out)-1].Quantity += remaining
	}
	for _, a := range out {
		pending.Add(a.Record.ID, a.Quantity)
	}
	return out
}

// ByProduct aggregates stock per product.
func (s *Service) ByProduct(ctx context.Context, filter TotalsFilter) (domain.ListResult[ProductTotal], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.TotalsByProduct(ctx, filter)
}

// BySalesOrder returns stock earmarked for a sales order, aggregated per product.
func (s *Service) BySalesOrder(ctx context.Context, salesOrderID id.ID) (*SalesOrderStock, error) {
	batches, err := s.repo.ListBySalesOrder(ctx, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return &SalesOrderStock{
		SalesOrderID: salesOrderID,
		Products:     Totals(batches),
		Batches:      batches,
	}, nil
}

// List returns batches matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Record], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Totals aggregates batches per product, ordered by first appearance.
func Totals(batches []Record) []ProductTotal {
	index := make(map[id.ID]int)
	var out []ProductTotal
	for _, b := range batches {
		i, ok := index[b.ProductID]
		if !ok {
			i = len(out)
			index[b.ProductID] = i
			out = append(out, ProductTotal{ProductID: b.ProductID})
		}
		out[i].TotalQuantity += b.Quantity
		out[i].ReservedQuantity += b.ReservedQuantity
		out[i].AvailableQuantity += b.AvailableQuantity
		out[i].BatchCount++
	}
	return out
}

// SortByProduction orders batches oldest production first, then by creation.
func SortByProduction(batches []Record) {
	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].ProductionDate.Equal(batches[j].ProductionDate) {
			return batches[i].ProductionDate.Before(batches[j].ProductionDate)
		}
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})
}
