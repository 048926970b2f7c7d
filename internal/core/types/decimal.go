// Package types provides fixed-point value helpers shared by the fulfillment models.
package types

import (
	"github.com/shopspring/decimal"
)

// Scales per field family.
const (
	MoneyScale   int32 = 2
	VolumeScale  int32 = 4
	WeightScale  int32 = 3
	RatioScale   int32 = 4
	PercentScale int32 = 1
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LineAmount returns quantity × unit price at money scale.
func LineAmount(quantity int64, unitPrice Money) Money {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(MoneyScale)
}

// RoundMoney rounds to 2 fractional digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyScale) }

// RoundVolume rounds cubic meters to 4 fractional digits.
func RoundVolume(d decimal.Decimal) decimal.Decimal { return d.Round(VolumeScale) }

// RoundWeight rounds kilograms to 3 fractional digits.
func RoundWeight(d decimal.Decimal) decimal.Decimal { return d.Round(WeightScale) }

// Percent returns part/whole × 100 rounded to one fractional digit.
// A non-positive whole yields zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(PercentScale)
}

// CeilDiv returns ceil(a / b) as an integer; b must be positive.
func CeilDiv(a, b decimal.Decimal) int64 {
	if !b.IsPositive() {
		return 0
	}
	return a.Div(b).Ceil().IntPart()
}

