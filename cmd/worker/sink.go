package main

import (
	"context"

	"snackexport/internal/infrastructure/storage/postgres"
	"snackexport/pkg/logger"
)

// NewLogSink returns an outbox handler that writes every event to the log.
// Downstream consumers tail the structured log stream.
func NewLogSink(log *logger.Logger) postgres.OutboxHandler {
	sink := log.WithComponent("outbox")
	return postgres.OutboxHandlerFunc(func(ctx context.Context, msg *postgres.OutboxMessage) error {
		sink.WithContext(ctx).Infow("domain event",
			"event_id", msg.ID,
			"event_type", msg.EventType,
			"aggregate_type", msg.AggregateType,
			"aggregate_id", msg.AggregateID,
			"payload", string(msg.Payload),
			"attempt", msg.RetryCount+1,
		)
		return nil
	})
}
