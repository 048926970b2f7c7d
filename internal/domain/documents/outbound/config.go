package outbound

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the prefix of outbound order numbers.
	NumberPrefix = "OUT"

	NumeratorStrategy = numerator.StrategyStrict
)
