package sales_order

import (
	"context"
	"fmt"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/pkg/logger"
)

// The demand ledger keeps the per-line counters consistent with downstream workflows.
// Every method locks the item row and must run inside the caller's transaction.

// DrawDemand books qty of purchase order quantity against the line's remaining demand.
func (s *Service) DrawDemand(ctx context.Context, itemID id.ID, qty int64) (*Item, error) {
	item, err := s.repo.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	remaining := item.RemainingDemand()
	if qty > remaining {
		return nil, apperror.NewBusinessRule(apperror.CodeDemandExceeded,
			"purchase quantity exceeds remaining sales order demand").
			WithDetail("sales_order_item_id", itemID).
			WithDetail("requested", qty).
			WithDetail("remaining", remaining)
	}
	item.PurchasedQuantity += qty
	if err := s.repo.UpdateItemCounters(ctx, item); err != nil {
		return nil, fmt.Errorf("update item counters: %w", err)
	}
	return item, nil
}

// ReleaseDemand rolls back qty of purchased quantity, floored at zero.
func (s *Service) ReleaseDemand(ctx context.Context, itemID id.ID, qty int64) (*Item, error) {
	item, err := s.repo.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.PurchasedQuantity = max(item.PurchasedQuantity-qty, 0)
	if err := s.repo.UpdateItemCounters(ctx, item); err != nil {
		return nil, fmt.Errorf("update item counters: %w", err)
	}
	return item, nil
}

// RecordReceipt adds qualified received quantity to the line.
func (s *Service) RecordReceipt(ctx context.Context, itemID id.ID, qty int64) (*Item, error) {
	item, err := s.repo.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.ReceivedQuantity += qty
	if err := s.repo.UpdateItemCounters(ctx, item); err != nil {
		return nil, fmt.Errorf("update item counters: %w", err)
	}
	return item, nil
}

// RecordOutbound adds shipped quantity to the first line of the order carrying the product.
// Orders without such a line are left untouched.
func (s *Service) RecordOutbound(ctx context.Context, orderID, productID id.ID, qty int64) error {
	item, err := s.repo.FindItemForUpdate(ctx, orderID, productID)
	if apperror.IsNotFound(err) {
		logger.Warn(ctx, "outbound for product without sales order line",
			"sales_order_id", orderID,
			"product_id", productID)
		return nil
	}
	if err != nil {
		return err
	}
	item.OutboundQuantity += qty
	if err := s.repo.UpdateItemCounters(ctx, item); err != nil {
		return fmt.Errorf("update item counters: %w", err)
	}
	return nil
}
