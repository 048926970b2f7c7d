package purchase_order

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the prefix of purchase order numbers.
	NumberPrefix = "PO"

	// NumeratorStrategy: purchase orders are audited, gaps are not allowed.
	NumeratorStrategy = numerator.StrategyStrict
)
