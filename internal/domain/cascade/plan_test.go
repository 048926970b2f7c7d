package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/id"
)

func step(label string, out *[]string, transitions ...Transition) Effect {
	return EffectFunc{Label: label, Fn: func(ctx context.Context) ([]Transition, error) {
		*out = append(*out, label)
		return transitions, nil
	}}
}

func TestPlan_AppliesInOrderAndRecords(t *testing.T) {
	soID := id.New()
	poID := id.New()
	var order []string

	plan := NewPlan("receiving").
		Then(step("sales orders", &order, NewTransition(AggregateSalesOrder, soID, "SO-1", "purchasing", "goods_ready", "receiving"))).
		Then(nil).
		Then(step("purchase order", &order, NewTransition(AggregatePurchaseOrder, poID, "PO-1", "ordered", "fully_received", "receiving")))

	journal := &MemoryJournal{}
	applied, err := plan.Apply(context.Background(), journal)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, []string{"sales orders", "purchase order"}, order)
	require.Len(t, applied, 2)
	assert.Equal(t, applied, journal.Entries)
	assert.Equal(t, "goods_ready", journal.For(soID)[0].To)
}

func TestPlan_StopsOnFirstError(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	plan := NewPlan("logistics").
		Then(step("plan shipped", &order, NewTransition(AggregateContainerPlan, id.New(), "CL-1", "loaded", "shipped", ""))).
		Then(EffectFunc{Label: "orders shipped", Fn: func(ctx context.Context) ([]Transition, error) {
			return nil, boom
		}}).
		Then(step("never", &order))

	journal := &MemoryJournal{}
	_, err := plan.Apply(context.Background(), journal)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "orders shipped")
	assert.Equal(t, []string{"plan shipped"}, order)
	assert.Empty(t, journal.Entries, "nothing is journaled when a later effect fails")
}

func TestPlan_EmptyIsNoop(t *testing.T) {
	applied, err := NewPlan("noop").Apply(context.Background(), NopJournal{})
	require.NoError(t, err)
	assert.Empty(t, applied)
}
