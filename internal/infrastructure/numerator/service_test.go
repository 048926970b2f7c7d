package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "snackexport/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences rows keyed by sequence key.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	key := args[0].(string)
	increment := int64(1)
	if len(args) == 2 {
		increment = args[1].(int64)
	}
	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SO")
	day := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, day)
	require.NoError(t, err)
	assert.Equal(t, "SO-20260227-001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, day)
	require.NoError(t, err)
	assert.Equal(t, "SO-20260227-002", num)

	// New day starts a new sequence.
	num, err = svc.GetNextNumber(ctx, cfg, nil, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "SO-20260228-001", num)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("RCV")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, opts, day)
	require.NoError(t, err)
	assert.Equal(t, "RCV-20260301-001", num)
	assert.Equal(t, 1, q.calls)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, day)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range of 10 served from memory")

	num, err = svc.GetNextNumber(ctx, cfg, opts, day)
	require.NoError(t, err)
	assert.Equal(t, "RCV-20260301-011", num)
	assert.Equal(t, 2, q.calls)
}

func TestFormatNumber(t *testing.T) {
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cfg  corenumerator.Config
		num  int64
		want string
	}{
		{name: "default layout", cfg: corenumerator.DefaultConfig("CL"), num: 7, want: "CL-20260227-007"},
		{name: "wider than pad", cfg: corenumerator.DefaultConfig("OUT"), num: 1234, want: "OUT-20260227-1234"},
		{name: "no date", cfg: corenumerator.Config{Prefix: "LOG", PadWidth: 5}, num: 42, want: "LOG-00042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.cfg, day, tt.num))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(12), ParseNumber("PO-20260227-012"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("SO-"))
}

func TestGetNextNumber_StrictOnlyIgnoresCachedRequests(t *testing.T) {
	q := newMockQuerier()
	svc := New(q).StrictOnly()
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("LOG")
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 50}

	for i := 1; i <= 3; i++ {
		_, err := svc.GetNextNumber(ctx, cfg, opts, day)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, q.calls)
	assert.Equal(t, int64(3), q.values[buildKey(cfg, day)])
}
