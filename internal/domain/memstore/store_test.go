package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/sales_order"
)

func newOrder(number string, created time.Time) *sales_order.SalesOrder {
	o := sales_order.NewSalesOrder(sales_order.Header{CustomerID: id.New(), OrderDate: created})
	o.Number = number
	o.CreatedAt = created
	return o
}

func TestTxManager_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	kept := newOrder("SO-1", time.Now())
	require.NoError(t, s.SalesOrders().Create(ctx, kept))

	dropped := newOrder("SO-2", time.Now())
	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SalesOrders().Create(ctx, dropped))
		require.NoError(t, s.Journal().Record(ctx, cascade.Transition{ID: dropped.ID, To: "purchasing"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.SalesOrders().GetByID(ctx, dropped.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = s.SalesOrders().GetByID(ctx, kept.ID)
	assert.NoError(t, err)
	assert.Empty(t, s.Journal().Entries())
}

func TestTxManager_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	tm := s.TxManager()
	o := newOrder("SO-1", time.Now())

	err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.SalesOrders().Create(ctx, o)
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	_, err = s.SalesOrders().GetByID(ctx, o.ID)
	assert.True(t, apperror.IsNotFound(err), "inner work rolls back with the outer transaction")
}

func TestUpdate_VersionConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.SalesOrders()
	o := newOrder("SO-1", time.Now())
	require.NoError(t, repo.Create(ctx, o))

	first, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	first.Remark = "first"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, o.Version+1, first.Version)

	second.Remark = "second"
	err = repo.Update(ctx, second)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))

	stored, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Remark)
}

func TestRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := newOrder("SO-1", time.Now())
	require.NoError(t, s.SalesOrders().Create(ctx, o))

	o.Remark = "changed after create"
	stored, err := s.SalesOrders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Remark)
}

func TestPage(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []*sales_order.SalesOrder{
		newOrder("SO-20260301-002", base.Add(2*time.Hour)),
		newOrder("SO-20260301-001", base.Add(time.Hour)),
		newOrder("SO-20260302-001", base.Add(3*time.Hour)),
	}
	cols := func(o *sales_order.SalesOrder) doc {
		return doc{id: o.ID, number: o.Number, date: o.OrderDate, created: o.CreatedAt}
	}
	numbers := func(r domain.ListResult[*sales_order.SalesOrder]) []string {
		var out []string
		for _, o := range r.Items {
			out = append(out, o.Number)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.ListFilter
		want   []string
		total  int64
	}{
		{
			name:   "created order by default",
			filter: domain.ListFilter{},
			want:   []string{"SO-20260301-001", "SO-20260301-002", "SO-20260302-001"},
			total:  3,
		},
		{
			name:   "descending number",
			filter: domain.ListFilter{OrderBy: "-number"},
			want:   []string{"SO-20260302-001", "SO-20260301-002", "SO-20260301-001"},
			total:  3,
		},
		{
			name:   "search",
			filter: domain.ListFilter{Search: "so-20260301", OrderBy: "number"},
			want:   []string{"SO-20260301-001", "SO-20260301-002"},
			total:  2,
		},
		{
			name:   "limit and offset",
			filter: domain.ListFilter{OrderBy: "number", Limit: 1, Offset: 1},
			want:   []string{"SO-20260301-002"},
			total:  3,
		},
		{
			name:   "offset past end",
			filter: domain.ListFilter{Limit: 10, Offset: 10},
			want:   nil,
			total:  3,
		},
		{
			name:   "ids",
			filter: domain.ListFilter{IDs: []id.ID{rows[2].ID}},
			want:   []string{"SO-20260302-001"},
			total:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := page(rows, tt.filter, cols)
			assert.Equal(t, tt.want, numbers(got))
			assert.Equal(t, tt.total, got.TotalCount)
		})
	}
}
