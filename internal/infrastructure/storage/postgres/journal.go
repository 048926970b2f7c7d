package postgres

import (
	"context"
	"fmt"

	"snackexport/internal/domain/cascade"
)

// Journal implements cascade.Journal on top of sys_audit and sys_outbox.
// Each transition becomes one audit row and one "<aggregate>.status_changed" event,
// both written in the caller's transaction.
type Journal struct {
	audit  *AuditLog
	outbox *OutboxPublisher
}

var _ cascade.Journal = (*Journal)(nil)

// NewJournal creates a transition journal.
func NewJournal(audit *AuditLog, outbox *OutboxPublisher) *Journal {
	return &Journal{audit: audit, outbox: outbox}
}

// StatusChangedEvent returns the outbox event type for an aggregate.
func StatusChangedEvent(aggregate string) string {
	return aggregate + ".status_changed"
}

// Record implements cascade.Journal.
func (j *Journal) Record(ctx context.Context, transitions ...cascade.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	events := make([]DomainEvent, 0, len(transitions))
	for _, t := range transitions {
		if err := j.audit.LogChange(ctx, t.Aggregate, t.ID, AuditActionStatusChange, t); err != nil {
			return fmt.Errorf("audit %s: %w", t, err)
		}
		events = append(events, DomainEvent{
			AggregateType: t.Aggregate,
			AggregateID:   t.ID,
			EventType:     StatusChangedEvent(t.Aggregate),
			Payload:       t,
		})
	}
	return j.outbox.PublishBatch(ctx, events)
}
