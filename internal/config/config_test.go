package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/snackexport")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "300-M", cfg.HTTP.RateLimit)
	assert.Equal(t, "cached", cfg.NumeratorStrategy)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.True(t, cfg.Development())
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("NUMERATOR_STRATEGY", "strict")
	t.Setenv("IDEMPOTENCY_TTL", "not-a-duration")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.Development())
	assert.Equal(t, 40, cfg.DB.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, "strict", cfg.NumeratorStrategy)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL, "unparsable values fall back to the default")
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}, "DATABASE_URL is required"},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"pool bounds", map[string]string{"DB_MIN_CONNS": "30"}, "invalid pool size"},
		{"numerator strategy", map[string]string{"NUMERATOR_STRATEGY": "random"}, "NUMERATOR_STRATEGY"},
		{"batch size", map[string]string{"OUTBOX_BATCH_SIZE": "0"}, "OUTBOX_BATCH_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
