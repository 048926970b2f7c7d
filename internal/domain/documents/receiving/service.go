package receiving

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
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/registers/inventory"
	"snackexport/pkg/logger"
)

// Procurement is the purchase order side of a receipt.
type Procurement interface {
	OpenForReceiving(ctx context.Context, orderID id.ID) (*purchase_order.PurchaseOrder, error)
	ReceiveItem(ctx context.Context, orderID, itemID id.ID, qty int64) (*purchase_order.Item, error)
	ReceiptStatusEffect(orderID id.ID, cause string) cascade.Effect
}

// DemandLedger is the sales order side of a receipt.
type DemandLedger interface {
	RecordReceipt(ctx context.Context, itemID id.ID, qty int64) (*sales_order.Item, error)
	GoodsReadyEffect(orderIDs []id.ID, cause string) cascade.Effect
}

// Ledger creates inventory batches.
type Ledger interface {
	Receive(ctx context.Context, in inventory.Receipt) (*inventory.Record, error)
}

// Service provides business operations for receiving notes.
type Service struct {
	repo        Repository
	procurement Procurement
	demand      DemandLedger
	ledger      Ledger
	numerator   numerator.Generator
	txManager   tx.Manager
	journal     cascade.Journal
}

// NewService creates a new receiving service.
func NewService(
	repo Repository,
	procurement Procurement,
	demand DemandLedger,
	ledger Ledger,
	numerator numerator.Generator,
	txManager tx.Manager,
	journal cascade.Journal,
) *Service {
	return &Service{
		repo:        repo,
		procurement: procurement,
		demand:      demand,
		ledger:      ledger,
		numerator:   numerator,
		txManager:   txManager,
		journal:     journal,
	}
}

// CreateInput is the payload of Create.
type CreateInput struct {
	PurchaseOrderID id.ID
	Header
	Items []ItemInput
}

// Create posts a receiving note. In one transaction it books every line against its
// purchase line, credits the chained sales order line with the qualified quantity,
// creates an inventory batch per qualified line and cascades sales order readiness
// and the purchase order receipt status.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Note, error) {
	note := NewNote(in.PurchaseOrderID, in.Header, in.Items)
	audit.EnrichCreatedByDirect(ctx, &note.CreatedBy, &note.UpdatedBy)
	if err := note.Validate(ctx); err != nil {
		return nil, err
	}

	var applied []cascade.Transition
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		po, err := s.procurement.OpenForReceiving(ctx, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		if err := checkAgainstOrder(note, po); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: NumeratorStrategy}, note.ReceivingDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		note.AssignNumber(number)

		if err := s.repo.Create(ctx, note); err != nil {
			return fmt.Errorf("create receiving note: %w", err)
		}
		if err := s.repo.SaveItems(ctx, note.ID, note.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		for _, it := range note.Items {
			if err := s.post(ctx, po, it); err != nil {
				return err
			}
		}

		cause := "receiving " + note.Number
		applied, err = cascade.NewPlan(cause).
			Then(s.demand.GoodsReadyEffect(po.SalesOrderIDs, cause)).
			Then(s.procurement.ReceiptStatusEffect(po.ID, cause)).
			Apply(ctx, s.journal)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "receiving note created",
		"id", note.ID,
		"number", note.Number,
		"purchase_order_id", note.PurchaseOrderID,
		"items", len(note.Items),
		"transitions", len(applied))

	return s.Get(ctx, note.ID)
}

// checkAgainstOrder rejects lines of other orders and receipts above the remaining
// quantity before anything is written. Lines on the same purchase line accumulate.
func checkAgainstOrder(note *Note, po *purchase_order.PurchaseOrder) error {
	booked := make(map[id.ID]int64)
	for _, it := range note.Items {
		poItem, ok := po.FindItem(it.PurchaseOrderItemID)
		if !ok {
			return apperror.NewNotFound("purchase_order_item", it.PurchaseOrderItemID).
				WithDetail("purchase_order_id", po.ID)
		}
		if poItem.ProductID != it.ProductID {
			return apperror.NewValidation("product does not match the purchase order item").
				WithDetail("field", "items").
				WithDetail("lineNo", it.LineNo)
		}
		remaining := poItem.RemainingQuantity() - booked[poItem.ID]
		if it.ActualQuantity > remaining {
			return apperror.NewBusinessRule(apperror.CodeReceiptExceeded,
				"received quantity exceeds remaining purchase quantity").
				WithDetail("purchase_order_item_id", poItem.ID).
				WithDetail("actual_quantity", it.ActualQuantity).
				WithDetail("remaining", remaining)
		}
		booked[poItem.ID] += it.ActualQuantity
	}
	return nil
}

// post books one received line.
func (s *Service) post(ctx context.Context, po *purchase_order.PurchaseOrder, it Item) error {
	poItem, err := s.procurement.ReceiveItem(ctx, po.ID, it.PurchaseOrderItemID, it.ActualQuantity)
	if err != nil {
		return err
	}

	qualified := it.QualifiedQuantity()
	if it.InspectionResult == InspectionFailed {
		return nil
	}

	var salesOrderID *id.ID
	if poItem.SalesOrderItemID != nil {
		soItem, err := s.demand.RecordReceipt(ctx, *poItem.SalesOrderItemID, qualified)
		if err != nil {
			return err
		}
		salesOrderID = id.Ptr(soItem.SalesOrderID)
	}

	if qualified <= 0 {
		return nil
	}
	_, err = s.ledger.Receive(ctx, inventory.Receipt{
		ProductID:           it.ProductID,
		SalesOrderID:        salesOrderID,
		ReceivingNoteItemID: it.ID,
		BatchNo:             it.BatchNo,
		ProductionDate:      it.ProductionDate,
		Quantity:            qualified,
	})
	return err
}

// Get retrieves a receiving note with items.
func (s *Service) Get(ctx context.Context, noteID id.ID) (*Note, error) {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	note.Items = items
	return note, nil
}

// List retrieves receiving notes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Note], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Update edits header fields. Posted quantities are immutable.
func (s *Service) Update(ctx context.Context, noteID id.ID, h Header) (*Note, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}
		if h.Receiver == "" {
			h.Receiver = note.Receiver
		}
		if h.ReceivingDate.IsZero() {
			h.ReceivingDate = note.ReceivingDate
		}
		note.ApplyHeader(h)
		audit.EnrichUpdatedByDirect(ctx, &note.UpdatedBy)
		return s.repo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "receiving note updated", "id", noteID)
	return s.Get(ctx, noteID)
}
