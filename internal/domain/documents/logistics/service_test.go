package logistics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/memstore"
	"snackexport/internal/domain/trade"
)

func ptr[T any](v T) *T { return &v }

func newRecord(t *testing.T) (*memstore.Harness, *logistics.Record) {
	t.Helper()
	ctx := context.Background()
	h := memstore.NewHarness(nil, masterdata.DefaultSettings())

	plan := &container_plan.Plan{
		Document:        entity.NewDocument(),
		ContainerType:   container_plan.Type40GP,
		ContainerCount:  1,
		DestinationPort: "Hamburg",
		Status:          container_plan.StatusLoaded,
	}
	plan.Number = "CL-20260301-001"
	require.NoError(t, h.Store.ContainerPlans().Create(ctx, plan))

	rec, err := h.Logistics.Create(ctx, logistics.CreateInput{
		ContainerPlanID: plan.ID,
		Header: logistics.Header{
			ShippingCompany: ptr("COSCO"),
			PortOfLoading:   ptr("Qingdao"),
		},
	})
	require.NoError(t, err)
	return h, rec
}

func TestCreate(t *testing.T) {
	h, rec := newRecord(t)
	assert.Equal(t, logistics.StatusBooked, rec.Status)
	assert.Equal(t, "Hamburg", rec.PortOfDischarge)
	assert.True(t, rec.TotalCost.IsZero())
	assert.Empty(t, rec.Costs)

	t.Run("unknown plan", func(t *testing.T) {
		_, err := h.Logistics.Create(context.Background(), logistics.CreateInput{
			ContainerPlanID: id.New(),
			Header:          logistics.Header{PortOfLoading: ptr("Qingdao")},
		})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("port of loading required", func(t *testing.T) {
		_, err := h.Logistics.Create(context.Background(), logistics.CreateInput{ContainerPlanID: rec.ContainerPlanID})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}

func TestUpdate_KeepsStatus(t *testing.T) {
	h, rec := newRecord(t)
	ctx := context.Background()

	rec, err := h.Logistics.Update(ctx, rec.ID, logistics.Header{
		BLNo:         ptr("COSU6182736450"),
		VesselVoyage: ptr("COSCO SHIPPING ARIES 041W"),
	})
	require.NoError(t, err)
	assert.Equal(t, "COSU6182736450", rec.BLNo)
	assert.Equal(t, "COSCO", rec.ShippingCompany)
	assert.Equal(t, logistics.StatusBooked, rec.Status)
	assert.Equal(t, 2, rec.Version)
}

func TestCosts_TotalIsLiveSum(t *testing.T) {
	h, rec := newRecord(t)
	ctx := context.Background()

	rec, err := h.Logistics.AddCost(ctx, rec.ID, logistics.CostInput{
		CostType: logistics.CostOceanFreight,
		Amount:   decimal.RequireFromString("1850.255"),
		Currency: trade.CurrencyUSD,
	})
	require.NoError(t, err)
	assert.Equal(t, "1850.26", rec.TotalCost.StringFixed(2))

	rec, err = h.Logistics.AddCost(ctx, rec.ID, logistics.CostInput{
		CostType: logistics.CostCustomsFee,
		Amount:   decimal.RequireFromString("120"),
		Currency: trade.CurrencyUSD,
	})
	require.NoError(t, err)
	require.Len(t, rec.Costs, 2)
	assert.Equal(t, "1970.26", rec.TotalCost.StringFixed(2))

	customs := rec.Costs[1].ID
	rec, err = h.Logistics.UpdateCost(ctx, rec.ID, customs, logistics.CostPatch{Amount: ptr(decimal.RequireFromString("80.5"))})
	require.NoError(t, err)
	assert.Equal(t, "1930.76", rec.TotalCost.StringFixed(2))

	rec, err = h.Logistics.DeleteCost(ctx, rec.ID, rec.Costs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "80.50", rec.TotalCost.StringFixed(2))

	t.Run("invalid cost", func(t *testing.T) {
		tests := []struct {
			name string
			in   logistics.CostInput
		}{
			{name: "negative", in: logistics.CostInput{CostType: logistics.CostOther, Amount: decimal.NewFromInt(-1), Currency: trade.CurrencyUSD}},
			{name: "unknown type", in: logistics.CostInput{CostType: "bribe", Amount: decimal.NewFromInt(1), Currency: trade.CurrencyUSD}},
			{name: "unknown currency", in: logistics.CostInput{CostType: logistics.CostOther, Amount: decimal.NewFromInt(1), Currency: "XXX"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := h.Logistics.AddCost(ctx, rec.ID, tt.in)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			})
		}
	})

	t.Run("cost of another record", func(t *testing.T) {
		_, err := h.Logistics.DeleteCost(ctx, id.New(), customs)
		assert.True(t, apperror.IsNotFound(err))
		_, err = h.Logistics.DeleteCost(ctx, rec.ID, id.New())
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestKanban(t *testing.T) {
	h, rec := newRecord(t)
	ctx := context.Background()

	_, err := h.Logistics.AddCost(ctx, rec.ID, logistics.CostInput{
		CostType: logistics.CostPortCharge,
		Amount:   decimal.RequireFromString("300"),
		Currency: trade.CurrencyUSD,
	})
	require.NoError(t, err)
	_, err = h.Logistics.UpdateStatus(ctx, rec.ID, logistics.StatusInTransit)
	require.NoError(t, err)

	board, err := h.Logistics.Kanban(ctx)
	require.NoError(t, err)
	require.Len(t, board, len(logistics.AllStatuses()))
	for i, col := range board {
		assert.Equal(t, logistics.AllStatuses()[i], col.Status)
		if col.Status == logistics.StatusInTransit {
			assert.Equal(t, int64(1), col.Count)
			assert.Equal(t, "300", col.TotalCost.String())
			continue
		}
		assert.Zero(t, col.Count)
	}
}
