package sales_order

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the document number prefix (SO-YYYYMMDD-NNN).
	NumberPrefix = "SO"

	// NumeratorStrategy defines the numbering strategy for this document type.
	NumeratorStrategy = numerator.StrategyStrict
)
