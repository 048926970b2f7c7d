package cascade

import (
	"context"
	"fmt"

	"snackexport/pkg/logger"
)

// Plan is an ordered list of effects triggered by one transition.
type Plan struct {
	cause   string
	effects []Effect
}

// NewPlan creates an empty plan; cause is copied into the log lines.
func NewPlan(cause string) *Plan {
	return &Plan{cause: cause}
}

// Then appends an effect. Nil effects are ignored.
func (p *Plan) Then(e Effect) *Plan {
	if e != nil {
		p.effects = append(p.effects, e)
	}
	return p
}

// Len returns the number of queued effects.
func (p *Plan) Len() int {
	return len(p.effects)
}

// Apply runs every effect in order and records all transitions in the journal.
// It must be called inside a transaction: the first failure is returned and the
// caller's transaction rolls back the triggering change together with earlier effects.
func (p *Plan) Apply(ctx context.Context, journal Journal) ([]Transition, error) {
	var applied []Transition
	for _, e := range p.effects {
		transitions, err := e.Apply(ctx)
		if err != nil {
			return nil, fmt.Errorf("cascade %s: %w", e.Name(), err)
		}
		applied = append(applied, transitions...)
	}

	if len(applied) > 0 && journal != nil {
		if err := journal.Record(ctx, applied...); err != nil {
			return nil, fmt.Errorf("record cascade: %w", err)
		}
	}

	for _, t := range applied {
		logger.Info(ctx, "cascade applied",
			"cause", p.cause,
			"aggregate", t.Aggregate,
			"id", t.ID,
			"from", t.From,
			"to", t.To)
	}
	return applied, nil
}
