package receiving

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the prefix of receiving note numbers.
	NumberPrefix = "RCV"

	// NumeratorStrategy: batch numbers embed the note number.
	NumeratorStrategy = numerator.StrategyStrict
)
