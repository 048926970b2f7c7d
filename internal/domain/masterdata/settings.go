package masterdata

import (
	"context"

	"github.com/shopspring/decimal"
)

// Configuration keys read from the system configuration store.
const (
	KeyShelfLifeThreshold = "shelf_life_threshold"
)

// DefaultShelfLifeThreshold is used when the key is absent or malformed.
var DefaultShelfLifeThreshold = decimal.RequireFromString("0.667")

// Settings is an immutable snapshot of the configuration values the workflows use.
// Services take one snapshot per operation and pass it down by value.
type Settings struct {
	ShelfLifeThreshold decimal.Decimal
}

// DefaultSettings returns the fallback snapshot.
func DefaultSettings() Settings {
	return Settings{ShelfLifeThreshold: DefaultShelfLifeThreshold}
}

// SettingsFromValues builds a snapshot from raw key/value pairs, falling back per key.
func SettingsFromValues(values map[string]string) Settings {
	s := DefaultSettings()
	if raw, ok := values[KeyShelfLifeThreshold]; ok {
		if d, err := decimal.NewFromString(raw); err == nil && d.IsPositive() && d.LessThanOrEqual(decimal.NewFromInt(1)) {
			s.ShelfLifeThreshold = d
		}
	}
	return s
}

// SettingsReader provides configuration snapshots.
type SettingsReader interface {
	Snapshot(ctx context.Context) (Settings, error)
}

// StaticSettings is a SettingsReader returning a fixed snapshot.
type StaticSettings Settings

// Snapshot implements SettingsReader.
func (s StaticSettings) Snapshot(context.Context) (Settings, error) {
	return Settings(s), nil
}
