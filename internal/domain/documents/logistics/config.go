package logistics

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the prefix of logistics record numbers.
	NumberPrefix = "LOG"

	// NumeratorStrategy: logistics numbers are informational, gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
