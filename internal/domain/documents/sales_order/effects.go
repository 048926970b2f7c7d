package sales_order

import (
	"context"
	"fmt"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/cascade"
)

// AdvanceEffect moves every listed order currently in from to to.
// Orders in any other status are skipped.
func (s *Service) AdvanceEffect(orderIDs []id.ID, from, to Status, cause string) cascade.Effect {
	return cascade.EffectFunc{
		Label: fmt.Sprintf("sales orders %s -> %s", from, to),
		Fn: func(ctx context.Context) ([]cascade.Transition, error) {
			orders, err := s.repo.GetManyForUpdate(ctx, id.Unique(orderIDs))
			if err != nil {
				return nil, err
			}
			var out []cascade.Transition
			for _, order := range orders {
				if order.Status != from {
					continue
				}
				t, err := s.applyStatus(ctx, order, to, cause)
				if err != nil {
					return nil, err
				}
				out = append(out, t)
			}
			return out, nil
		},
	}
}

// GoodsReadyEffect advances purchasing orders whose every line is fully received.
func (s *Service) GoodsReadyEffect(orderIDs []id.ID, cause string) cascade.Effect {
	return cascade.EffectFunc{
		Label: "sales orders goods ready",
		Fn: func(ctx context.Context) ([]cascade.Transition, error) {
			orders, err := s.repo.GetManyForUpdate(ctx, id.Unique(orderIDs))
			if err != nil {
				return nil, err
			}
			var out []cascade.Transition
			for _, order := range orders {
				if order.Status != StatusPurchasing {
					continue
				}
				items, err := s.repo.GetItems(ctx, order.ID)
				if err != nil {
					return nil, fmt.Errorf("get items: %w", err)
				}
				order.Items = items
				if !order.AllItemsReceived() {
					continue
				}
				t, err := s.applyStatus(ctx, order, StatusGoodsReady, cause)
				if err != nil {
					return nil, err
				}
				out = append(out, t)
			}
			return out, nil
		},
	}
}
