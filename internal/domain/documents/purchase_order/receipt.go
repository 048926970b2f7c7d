package purchase_order

import (
	"context"
	"fmt"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/cascade"
)

// OpenForReceiving returns the order with items and links, rejecting cancelled orders.
// Locks the order row; must run inside a transaction.
func (s *Service) OpenForReceiving(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	order, err := s.repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusCancelled {
		return nil, apperror.NewBusinessRule(apperror.CodeOrderNotReceivable,
			"cancelled purchase orders cannot be received").
			WithDetail("purchase_order_id", orderID).
			WithDetail("status", string(order.Status))
	}
	if err := s.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiveItem books qty against the remaining quantity of a purchase line.
// Locks the line; must run inside a transaction.
func (s *Service) ReceiveItem(ctx context.Context, orderID, itemID id.ID, qty int64) (*Item, error) {
	item, err := s.repo.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.PurchaseOrderID != orderID {
		return nil, apperror.NewValidation("item does not belong to the purchase order").
			WithDetail("purchase_order_id", orderID).
			WithDetail("purchase_order_item_id", itemID)
	}
	remaining := item.RemainingQuantity()
	if qty > remaining {
		return nil, apperror.NewBusinessRule(apperror.CodeReceiptExceeded,
			"received quantity exceeds remaining purchase quantity").
			WithDetail("purchase_order_item_id", itemID).
			WithDetail("actual_quantity", qty).
			WithDetail("remaining", remaining)
	}
	item.ReceivedQuantity += qty
	if err := s.repo.UpdateItemReceived(ctx, item); err != nil {
		return nil, fmt.Errorf("update received quantity: %w", err)
	}
	return item, nil
}

// ReceiptStatusEffect recomputes the status of an ordered or partially received order
// from its received quantities.
func (s *Service) ReceiptStatusEffect(orderID id.ID, cause string) cascade.Effect {
	return cascade.EffectFunc{
		Label: "purchase order receipt status",
		Fn: func(ctx context.Context) ([]cascade.Transition, error) {
			order, err := s.repo.GetForUpdate(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if !order.Status.TracksReceipts() {
				return nil, nil
			}
			items, err := s.repo.GetItems(ctx, orderID)
			if err != nil {
				return nil, fmt.Errorf("get items: %w", err)
			}
			order.Items = items

			next := order.ReceiptStatus()
			if next == order.Status {
				return nil, nil
			}
			t, err := s.applyStatus(ctx, order, next, cause)
			if err != nil {
				return nil, err
			}
			return []cascade.Transition{t}, nil
		},
	}
}
