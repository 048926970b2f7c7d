// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPDATE ... RETURNING for every number.
	// Guarantees sequential numbers without gaps.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// May produce gaps if the application restarts.
	StrategyCached
)

// ParseStrategy maps a configuration value to a Strategy; unknown values fall back to strict.
func ParseStrategy(s string) Strategy {
	if s == "cached" {
		return StrategyCached
	}
	return StrategyStrict
}

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of IDs to allocate at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Reset periods.
const (
	ResetDaily   = "day"
	ResetMonthly = "month"
	ResetYearly  = "year"
	ResetNever   = "never"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "SO", "RCV")
	Prefix string

	// DateLayout embeds the period date into the number; empty omits it
	DateLayout string

	// PadWidth is the minimum width of the sequence part
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never"
	ResetPeriod string
}

// DefaultConfig returns the PREFIX-YYYYMMDD-NNN layout with a daily sequence.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		DateLayout:  "20060102",
		PadWidth:    3,
		ResetPeriod: ResetDaily,
	}
}
