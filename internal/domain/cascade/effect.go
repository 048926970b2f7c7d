// Package cascade drives cross-aggregate status changes as an explicit list of effects
// applied inside the transaction of the triggering transition.
package cascade

import (
	"context"
	"fmt"
	"time"

	"snackexport/internal/core/id"
)

// Aggregate names used in transitions, audit rows and outbox topics.
const (
	AggregateSalesOrder    = "sales_order"
	AggregatePurchaseOrder = "purchase_order"
	AggregateContainerPlan = "container_plan"
	AggregateOutbound      = "outbound_order"
	AggregateLogistics     = "logistics_record"
)

// Transition is one applied status change.
type Transition struct {
	Aggregate string    `json:"aggregate"`
	ID        id.ID     `json:"id"`
	Number    string    `json:"number,omitempty"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Cause     string    `json:"cause,omitempty"`
	At        time.Time `json:"at"`
}

// NewTransition stamps a transition with the current time.
func NewTransition(aggregate string, aggregateID id.ID, number, from, to, cause string) Transition {
	return Transition{
		Aggregate: aggregate,
		ID:        aggregateID,
		Number:    number,
		From:      from,
		To:        to,
		Cause:     cause,
		At:        time.Now().UTC(),
	}
}

// String implements fmt.Stringer.
func (t Transition) String() string {
	return fmt.Sprintf("%s %s: %s -> %s", t.Aggregate, t.ID, t.From, t.To)
}

// Effect is a follow-up mutation of another aggregate.
// Apply runs inside the caller's transaction and returns the transitions it made;
// an effect whose precondition does not hold is a no-op, not an error.
type Effect interface {
	Name() string
	Apply(ctx context.Context) ([]Transition, error)
}

// EffectFunc adapts a function to the Effect interface.
type EffectFunc struct {
	Label string
	Fn    func(ctx context.Context) ([]Transition, error)
}

// Name implements Effect.
func (f EffectFunc) Name() string { return f.Label }

// Apply implements Effect.
func (f EffectFunc) Apply(ctx context.Context) ([]Transition, error) { return f.Fn(ctx) }

// Journal records transitions (audit trail and domain events).
type Journal interface {
	Record(ctx context.Context, transitions ...Transition) error
}

// NopJournal discards transitions.
type NopJournal struct{}

// Record implements Journal.
func (NopJournal) Record(context.Context, ...Transition) error { return nil }

// MemoryJournal keeps transitions in memory.
type MemoryJournal struct {
	Entries []Transition
}

// Record implements Journal.
func (j *MemoryJournal) Record(_ context.Context, transitions ...Transition) error {
	j.Entries = append(j.Entries, transitions...)
	return nil
}

// For returns the recorded transitions of one aggregate instance.
func (j *MemoryJournal) For(aggregateID id.ID) []Transition {
	var out []Transition
	for _, t := range j.Entries {
		if t.ID == aggregateID {
			out = append(out, t)
		}
	}
	return out
}
