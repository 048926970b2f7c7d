package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"snackexport/internal/core/apperror"
)

type keyState string

const (
	keyPending   keyState = "pending"
	keyCompleted keyState = "success"
	keyFailed    keyState = "failed"
)

// staleAfter is how long a pending key may go untouched before another request
// may take it over.
const staleAfter = time.Minute

// IdempotencyReplay is a stored response returned for a repeated key.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// keyRow is one sys_idempotency row as seen by the request that upserted it.
type keyRow struct {
	inserted    bool
	userID      string
	operation   string
	state       keyState
	requestHash string
	response    []byte
	statusCode  int
	contentType string
	updatedAt   time.Time
}

// keyOutcome is what a request should do with a key it tried to acquire.
type keyOutcome int

const (
	keyProceed keyOutcome = iota
	keyReplay
	keyTakeOver
)

// IdempotencyStore keeps Idempotency-Key rows in sys_idempotency.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a store whose keys live for ttl (24h when unset).
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		txManager: txManager,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

const upsertKeySQL = `
INSERT INTO sys_idempotency
	(idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
ON CONFLICT (idempotency_key) DO UPDATE
	SET expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
RETURNING (xmax = 0), user_id, operation, status, request_hash,
	response, response_status, response_content_type, updated_at`

// AcquireKey claims key for the request. It returns a replay when the key has
// already finished, nil when the caller should run the request, and an error
// when the key belongs to another request or is still in flight.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := s.now()

	var row keyRow
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, upsertKeySQL,
		key, userID, operation, keyPending, requestHash, now, now.Add(s.ttl),
	).Scan(
		&row.inserted, &row.userID, &row.operation, &row.state, &row.requestHash,
		&row.response, &row.statusCode, &row.contentType, &row.updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	outcome, err := row.outcome(key, userID, operation, requestHash, now)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case keyReplay:
		return row.replay(), nil
	case keyTakeOver:
		tag, err := s.txManager.GetQuerier(ctx).Exec(ctx,
			`UPDATE sys_idempotency SET updated_at = $1 WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4`,
			now, key, keyPending, row.updatedAt)
		if err != nil {
			return nil, fmt.Errorf("take over stale idempotency key: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(key)
		}
	}
	return nil, nil
}

func (r keyRow) outcome(key, userID, operation, requestHash string, now time.Time) (keyOutcome, error) {
	if r.inserted {
		return keyProceed, nil
	}
	if r.userID != userID || r.operation != operation || r.requestHash != requestHash {
		return 0, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", r.operation).
			WithDetail("request_operation", operation)
	}
	switch r.state {
	case keyCompleted, keyFailed:
		return keyReplay, nil
	case keyPending:
		if now.Sub(r.updatedAt) > staleAfter {
			return keyTakeOver, nil
		}
	}
	return 0, apperror.NewIdempotencyConflict(key)
}

func (r keyRow) replay() *IdempotencyReplay {
	out := &IdempotencyReplay{StatusCode: r.statusCode, ContentType: r.contentType, Body: r.response}
	if out.StatusCode == 0 {
		out.StatusCode = http.StatusOK
	}
	if out.ContentType == "" {
		out.ContentType = "application/json"
	}
	return out
}

// CompleteKey stores a successful response under key.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := marshalResponse(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return s.finish(ctx, key, keyCompleted, statusCode, contentType, body)
}

// FailKey stores an error response under key. A body that cannot be encoded is
// replaced by its encoding error so the key still settles.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := marshalResponse(response)
	if err != nil {
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return s.finish(ctx, key, keyFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, state keyState, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
UPDATE sys_idempotency
SET status = $1, response = $2, response_status = $3, response_content_type = $4, updated_at = $5
WHERE idempotency_key = $6`,
		state, body, statusCode, contentType, s.now(), key)
	if err != nil {
		return fmt.Errorf("settle idempotency key %s: %w", key, err)
	}
	return nil
}

func marshalResponse(response any) ([]byte, error) {
	if response == nil {
		return nil, nil
	}
	return json.Marshal(response)
}

// CleanupExpired deletes expired keys and reports how many went.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
