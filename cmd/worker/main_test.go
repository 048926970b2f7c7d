package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"snackexport/internal/core/id"
	"snackexport/internal/infrastructure/storage/postgres"
	"snackexport/pkg/logger"
)

type fakeRelay struct {
	batches   []int
	calls     int
	err       error
	dlq       int64
	purged    time.Duration
	purgeHits int
}

func (f *fakeRelay) ProcessBatch(ctx context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeRelay) MoveToDLQ(ctx context.Context) (int64, error) { return f.dlq, nil }

func (f *fakeRelay) PurgePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.purged = olderThan
	f.purgeHits++
	return 0, nil
}

type fakeKeys struct{ calls int }

func (f *fakeKeys) CleanupExpired(ctx context.Context) (int64, error) {
	f.calls++
	return 2, nil
}

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func TestWorker_DrainOutbox(t *testing.T) {
	tests := []struct {
		name      string
		relay     *fakeRelay
		wantCalls int
	}{
		{"empty outbox", &fakeRelay{}, 1},
		{"drains until empty", &fakeRelay{batches: []int{100, 100, 7}}, 4},
		{"stops on error", &fakeRelay{err: errors.New("db down")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := observedLogger()
			w := NewWorker(tt.relay, &fakeKeys{}, time.Second, log)
			w.drainOutbox(context.Background())
			assert.Equal(t, tt.wantCalls, tt.relay.calls)
		})
	}
}

func TestWorker_Cleanup(t *testing.T) {
	log, logs := observedLogger()
	relay := &fakeRelay{dlq: 3}
	keys := &fakeKeys{}
	w := NewWorker(relay, keys, 0, log)

	w.cleanup(context.Background())

	assert.Equal(t, publishedRetention, relay.purged)
	assert.Equal(t, 1, keys.calls)
	assert.Equal(t, 1, logs.FilterMessage("moved outbox messages to dead letter queue").Len())
	assert.Equal(t, 1, logs.FilterMessage("cleaned up idempotency keys").Len())
	assert.Equal(t, time.Second, w.pollInterval)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	log, _ := observedLogger()
	w := NewWorker(&fakeRelay{}, &fakeKeys{}, 10*time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestLogSink(t *testing.T) {
	log, logs := observedLogger()
	sink := NewLogSink(log)

	msg := &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "sales_order",
		AggregateID:   id.New(),
		EventType:     "sales_order.status_changed",
		Payload:       []byte(`{"to":"confirmed"}`),
	}
	require.NoError(t, sink.Handle(context.Background(), msg))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sales_order.status_changed", fields["event_type"])
	assert.Equal(t, "outbox", fields["component"])
	assert.Equal(t, int64(1), fields["attempt"])
}
