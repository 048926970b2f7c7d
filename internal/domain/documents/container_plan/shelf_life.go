package container_plan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/core/types"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/registers/inventory"
)

// ShelfLifeWarning flags a batch whose remaining shelf life is below the threshold.
type ShelfLifeWarning struct {
	Code           string          `json:"code"`
	PlanItemID     id.ID           `json:"planItemId"`
	ProductID      id.ID           `json:"productId"`
	BatchNo        string          `json:"batchNo"`
	RemainingDays  int             `json:"remainingDays"`
	RemainingRatio decimal.Decimal `json:"remainingRatio"`
	Threshold      decimal.Decimal `json:"threshold"`
	Message        string          `json:"message"`
}

// RemainingRatio returns (shelfLifeDays - elapsed days) / shelfLifeDays and the remaining days.
func RemainingRatio(shelfLifeDays int, production, today time.Time) (decimal.Decimal, int) {
	elapsed := int(entity.DateOf(today).Sub(entity.DateOf(production)).Hours() / 24)
	remaining := shelfLifeDays - elapsed
	return decimal.NewFromInt(int64(remaining)).Div(decimal.NewFromInt(int64(shelfLifeDays))), remaining
}

// CheckShelfLife returns the first batch of the item below threshold, or nil.
// Products without a positive shelf life are never flagged.
func CheckShelfLife(item Item, product masterdata.Product, batches []inventory.Record, threshold decimal.Decimal, today time.Time) *ShelfLifeWarning {
	if product.ShelfLifeDays == nil || *product.ShelfLifeDays <= 0 {
		return nil
	}
	for _, b := range batches {
		if b.AvailableQuantity <= 0 {
			continue
		}
		ratio, remaining := RemainingRatio(*product.ShelfLifeDays, b.ProductionDate, today)
		if !ratio.LessThan(threshold) {
			continue
		}
		days := max(remaining, 0)
		return &ShelfLifeWarning{
			Code:           apperror.CodeShelfLifeWarning,
			PlanItemID:     item.ID,
			ProductID:      item.ProductID,
			BatchNo:        b.BatchNo,
			RemainingDays:  days,
			RemainingRatio: ratio.Round(types.RatioScale),
			Threshold:      threshold,
			Message: fmt.Sprintf("product %s batch %s has %d days of shelf life left (%s%%), below threshold %s%%",
				product.Name, b.BatchNo, days,
				ratio.Mul(decimal.NewFromInt(100)).Round(types.PercentScale),
				threshold.Mul(decimal.NewFromInt(100)).Round(types.PercentScale)),
		}
	}
	return nil
}
