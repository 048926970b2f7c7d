package sales_order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/trade"
	"snackexport/pkg/logger"
)

// PurchaseDraft is one purchase order to be created for a supplier.
type PurchaseDraft struct {
	SupplierID   id.ID
	SalesOrderID id.ID
	Lines        []PurchaseDraftLine
}

// PurchaseDraftLine covers the remaining demand of one sales order line.
type PurchaseDraftLine struct {
	ProductID        id.ID
	SalesOrderItemID id.ID
	Quantity         int64
	Unit             trade.Unit
	UnitPrice        decimal.Decimal
}

// PurchaseOrderCreator is implemented by the procurement workflow.
type PurchaseOrderCreator interface {
	CreateFromDraft(ctx context.Context, draft PurchaseDraft) (id.ID, error)
}

// GenerationResult lists the purchase orders created for a sales order.
type GenerationResult struct {
	SalesOrderID     id.ID   `json:"salesOrderId"`
	PurchaseOrderIDs []id.ID `json:"purchaseOrderIds"`
	Count            int     `json:"count"`
}

// BuildPurchaseDrafts groups lines with remaining demand by the product's default supplier.
// Lines whose product has no default supplier are skipped. Drafts keep the order in which
// suppliers first appear among the lines. The unit price is the product's default purchase
// price, falling back to the sales price of the line.
func BuildPurchaseDrafts(order *SalesOrder, products map[id.ID]masterdata.Product) []PurchaseDraft {
	var drafts []PurchaseDraft
	index := make(map[id.ID]int)

	for _, it := range order.Items {
		remaining := it.RemainingDemand()
		if remaining <= 0 {
			continue
		}
		product, ok := products[it.ProductID]
		if !ok || product.DefaultSupplierID == nil {
			continue
		}

		price := it.UnitPrice
		if product.DefaultPurchasePrice != nil {
			price = *product.DefaultPurchasePrice
		}

		supplierID := *product.DefaultSupplierID
		i, seen := index[supplierID]
		if !seen {
			i = len(drafts)
			index[supplierID] = i
			drafts = append(drafts, PurchaseDraft{SupplierID: supplierID, SalesOrderID: order.ID})
		}
		drafts[i].Lines = append(drafts[i].Lines, PurchaseDraftLine{
			ProductID:        it.ProductID,
			SalesOrderItemID: it.ID,
			Quantity:         remaining,
			Unit:             it.Unit,
			UnitPrice:        price,
		})
	}
	return drafts
}

// GeneratePurchaseOrders creates one purchase order per default supplier for the
// remaining demand of the order. All purchase orders are created in one transaction.
func (s *Service) GeneratePurchaseOrders(ctx context.Context, orderID id.ID) (*GenerationResult, error) {
	if s.purchases == nil {
		return nil, apperror.NewInternal(fmt.Errorf("purchase order creator is not configured"))
	}

	result := &GenerationResult{SalesOrderID: orderID, PurchaseOrderIDs: []id.ID{}}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.AllowsProcurement() {
			return apperror.NewBusinessRule(apperror.CodeGenerationNotAllowed,
				"purchase orders can only be generated in draft or purchasing status").
				WithDetail("status", string(order.Status))
		}

		items, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		order.Items = items

		productIDs := make([]id.ID, 0, len(items))
		for _, it := range items {
			productIDs = append(productIDs, it.ProductID)
		}
		products, err := s.products.GetProducts(ctx, id.Unique(productIDs))
		if err != nil {
			return fmt.Errorf("get products: %w", err)
		}

		for _, draft := range BuildPurchaseDrafts(order, products) {
			poID, err := s.purchases.CreateFromDraft(ctx, draft)
			if err != nil {
				return fmt.Errorf("create purchase order for supplier %s: %w", draft.SupplierID, err)
			}
			result.PurchaseOrderIDs = append(result.PurchaseOrderIDs, poID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Count = len(result.PurchaseOrderIDs)
	logger.Info(ctx, "purchase orders generated",
		"sales_order_id", orderID,
		"count", result.Count)
	return result, nil
}
