package container_plan

import "snackexport/internal/core/numerator"

const (
	// NumberPrefix is the prefix of container plan numbers.
	NumberPrefix = "CL"

	NumeratorStrategy = numerator.StrategyStrict
)
