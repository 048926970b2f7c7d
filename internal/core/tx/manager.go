// Package tx lets domain services run units of work without knowing the store.
package tx

import (
	"context"
)

// Manager runs fn as one unit of work. fn's error rolls the unit back.
// A call made with a context that already carries a unit joins it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager can also run a unit that only reads, against one snapshot.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnly runs fn through m.ReadOnly when m supports it and falls back to
// RunInTransaction otherwise.
func ReadOnly(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	if ro, ok := m.(ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return m.RunInTransaction(ctx, fn)
}
