package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
)

func TestKeyRow_Outcome(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	stored := keyRow{userID: "u-1", operation: "POST /sales-orders", requestHash: "h1", updatedAt: now.Add(-10 * time.Second)}

	with := func(mutate func(*keyRow)) keyRow {
		r := stored
		mutate(&r)
		return r
	}

	stale := with(func(r *keyRow) { r.state = keyPending })
	stale.updatedAt = now.Add(-2 * time.Minute)

	tests := []struct {
		name string
		row  keyRow
		hash string
		want keyOutcome
		code string
	}{
		{name: "fresh insert", row: with(func(r *keyRow) { r.inserted = true }), hash: "other", want: keyProceed},
		{name: "completed replays", row: with(func(r *keyRow) { r.state = keyCompleted }), hash: "h1", want: keyReplay},
		{name: "failed replays", row: with(func(r *keyRow) { r.state = keyFailed }), hash: "h1", want: keyReplay},
		{name: "pending in flight", row: with(func(r *keyRow) { r.state = keyPending }), hash: "h1", code: apperror.CodeIdempotency},
		{name: "stale pending taken over", row: stale, hash: "h1", want: keyTakeOver},
		{name: "different body", row: with(func(r *keyRow) { r.state = keyCompleted }), hash: "h2", code: apperror.CodeIdempotency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.row.outcome("k-1", "u-1", "POST /sales-orders", tt.hash, now)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyRow_Replay(t *testing.T) {
	got := keyRow{response: []byte(`{"id":"1"}`)}.replay()
	assert.Equal(t, &IdempotencyReplay{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"id":"1"}`)}, got)

	got = keyRow{statusCode: 422, contentType: "application/problem+json"}.replay()
	assert.Equal(t, 422, got.StatusCode)
	assert.Equal(t, "application/problem+json", got.ContentType)
	assert.Nil(t, got.Body)
}
