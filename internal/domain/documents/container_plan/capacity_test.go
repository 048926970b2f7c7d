package container_plan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/registers/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(seq int, volume, weight string) Item {
	return Item{ID: id.New(), ContainerSeq: seq, ProductID: id.New(), Quantity: 1, VolumeCBM: d(volume), WeightKG: d(weight)}
}

func TestContainerType_Spec(t *testing.T) {
	tests := []struct {
		typ    ContainerType
		volume string
		weight string
	}{
		{Type20GP, "33.2", "21800"},
		{Type40GP, "67.7", "26680"},
		{Type40HQ, "76.3", "26580"},
		{TypeReefer, "28", "27000"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			spec, ok := tt.typ.Spec()
			require.True(t, ok)
			assert.True(t, d(tt.volume).Equal(spec.VolumeCBM))
			assert.True(t, d(tt.weight).Equal(spec.MaxWeightKG))
		})
	}

	_, ok := ContainerType("45HC").Spec()
	assert.False(t, ok)
}

func TestCheckCapacity(t *testing.T) {
	spec, _ := Type40HQ.Spec()

	tests := []struct {
		name  string
		items []Item
		want  []struct {
			seq   int
			field string
		}
	}{
		{
			name:  "single item over volume",
			items: []Item{item(1, "80", "1000")},
			want: []struct {
				seq   int
				field string
			}{{1, FieldVolume}},
		},
		{
			name:  "exactly at the limits",
			items: []Item{item(1, "50", "20000"), item(1, "26.3", "6580")},
		},
		{
			name:  "cumulative per container",
			items: []Item{item(2, "40", "14000"), item(1, "10", "100"), item(2, "40", "14000")},
			want: []struct {
				seq   int
				field string
			}{{2, FieldVolume}, {2, FieldWeight}},
		},
		{
			name:  "errors ordered by container",
			items: []Item{item(3, "1", "30000"), item(1, "77", "1")},
			want: []struct {
				seq   int
				field string
			}{{1, FieldVolume}, {3, FieldWeight}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckCapacity(spec, tt.items)
			require.Len(t, errs, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.seq, errs[i].ContainerSeq)
				assert.Equal(t, w.field, errs[i].Field)
			}
		})
	}
}

func TestCheckCapacity_ErrorCodes(t *testing.T) {
	spec, _ := Type20GP.Spec()
	errs := CheckCapacity(spec, []Item{item(1, "40", "22000")})
	require.Len(t, errs, 2)
	assert.Equal(t, apperror.CodeVolumeExceeded, errs[0].Code)
	assert.True(t, d("40").Equal(errs[0].Loaded))
	assert.True(t, d("33.2").Equal(errs[0].Limit))
	assert.Equal(t, apperror.CodeWeightExceeded, errs[1].Code)
	assert.Equal(t, "container 1 weight 22000 kg exceeds limit 21800 kg", errs[1].Message)
}

func TestSummarize(t *testing.T) {
	spec, _ := Type20GP.Spec()
	out := Summarize(spec, 2, []Item{item(1, "20", "5000"), item(1, "13.2", "5900")})
	require.Len(t, out, 2)

	assert.Equal(t, 1, out[0].ContainerSeq)
	assert.Equal(t, "33.2", out[0].LoadedVolumeCBM.String())
	assert.Equal(t, "100", out[0].VolumeUtilization.String())
	assert.Equal(t, "50", out[0].WeightUtilization.String())
	assert.False(t, out[0].IsOverVolume)
	assert.Equal(t, 2, out[0].ItemCount)

	assert.Equal(t, 2, out[1].ContainerSeq)
	assert.True(t, out[1].LoadedVolumeCBM.IsZero())
	assert.Zero(t, out[1].ItemCount)
}

func TestRecommend(t *testing.T) {
	t.Run("fewest containers then fullest", func(t *testing.T) {
		got := Recommend(d("50"), d("10000"))
		require.Len(t, got, 3)
		assert.Equal(t, Type40GP, got[0].ContainerType)
		assert.Equal(t, int64(1), got[0].Count)
		assert.Equal(t, "73.9", got[0].VolumeUtilization.String())
		assert.Equal(t, Type40HQ, got[1].ContainerType)
		assert.Equal(t, "65.5", got[1].VolumeUtilization.String())
		assert.Equal(t, Type20GP, got[2].ContainerType)
		assert.Equal(t, int64(2), got[2].Count)
		assert.Equal(t, "75.3", got[2].VolumeUtilization.String())
	})

	t.Run("weight drives the count", func(t *testing.T) {
		got := Recommend(d("10"), d("50000"))
		for _, r := range got {
			assert.GreaterOrEqual(t, r.Count, int64(2), r.ContainerType)
		}
	})

	t.Run("empty cargo needs one container", func(t *testing.T) {
		got := Recommend(decimal.Zero, decimal.Zero)
		require.Len(t, got, 3)
		for _, r := range got {
			assert.Equal(t, int64(1), r.Count)
			assert.NotEqual(t, TypeReefer, r.ContainerType)
		}
	})
}

func TestCheckShelfLife(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	days := 365
	product := masterdata.Product{ID: id.New(), Name: "Rice Crackers", ShelfLifeDays: &days}
	it := Item{ID: id.New(), ProductID: product.ID}
	threshold := masterdata.DefaultShelfLifeThreshold

	batch := func(no string, age, available int) inventory.Record {
		return inventory.Record{
			BatchNo:           no,
			ProductionDate:    today.AddDate(0, 0, -age),
			Quantity:          100,
			AvailableQuantity: int64(available),
		}
	}

	tests := []struct {
		name      string
		product   masterdata.Product
		batches   []inventory.Record
		wantBatch string
		wantDays  int
		wantRatio string
	}{
		{name: "fresh", product: product, batches: []inventory.Record{batch("B1", 10, 100)}},
		{name: "old batch", product: product, batches: []inventory.Record{batch("B1", 200, 100)}, wantBatch: "B1", wantDays: 165, wantRatio: "0.4521"},
		{name: "old batch used up", product: product, batches: []inventory.Record{batch("B1", 200, 0), batch("B2", 5, 50)}},
		{name: "first offending batch", product: product, batches: []inventory.Record{batch("B1", 130, 10), batch("B2", 400, 10)}, wantBatch: "B1", wantDays: 235, wantRatio: "0.6438"},
		{name: "expired", product: product, batches: []inventory.Record{batch("B9", 400, 10)}, wantBatch: "B9", wantDays: 0, wantRatio: "-0.0959"},
		{name: "no shelf life", product: masterdata.Product{ID: product.ID}, batches: []inventory.Record{batch("B1", 400, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CheckShelfLife(it, tt.product, tt.batches, threshold, today)
			if tt.wantBatch == "" {
				assert.Nil(t, w)
				return
			}
			require.NotNil(t, w)
			assert.Equal(t, apperror.CodeShelfLifeWarning, w.Code)
			assert.Equal(t, tt.wantBatch, w.BatchNo)
			assert.Equal(t, tt.wantDays, w.RemainingDays)
			assert.Equal(t, tt.wantRatio, w.RemainingRatio.String())
			assert.Equal(t, it.ID, w.PlanItemID)
		})
	}
}

func TestResolvePort(t *testing.T) {
	order := func(number, port string, status sales_order.Status) *sales_order.SalesOrder {
		o := &sales_order.SalesOrder{DestinationPort: port, Status: status}
		o.ID = id.New()
		o.Number = number
		return o
	}

	t.Run("shared port", func(t *testing.T) {
		port, err := resolvePort([]*sales_order.SalesOrder{
			order("SO-1", "Sydney", sales_order.StatusGoodsReady),
			order("SO-2", "Sydney", sales_order.StatusGoodsReady),
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "Sydney", port)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := resolvePort([]*sales_order.SalesOrder{
			order("SO-1", "Sydney", sales_order.StatusGoodsReady),
			order("SO-2", "Melbourne", sales_order.StatusGoodsReady),
		}, "")
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodePortMismatch, appErr.Code)
		assert.Equal(t, []string{"Melbourne", "Sydney"}, appErr.Details["ports"])
	})

	t.Run("override", func(t *testing.T) {
		port, err := resolvePort([]*sales_order.SalesOrder{
			order("SO-1", "Sydney", sales_order.StatusGoodsReady),
			order("SO-2", "Melbourne", sales_order.StatusGoodsReady),
		}, "Brisbane")
		require.NoError(t, err)
		assert.Equal(t, "Brisbane", port)
	})

	t.Run("override does not skip readiness", func(t *testing.T) {
		_, err := resolvePort([]*sales_order.SalesOrder{
			order("SO-1", "Sydney", sales_order.StatusPurchasing),
		}, "Brisbane")
		assert.True(t, apperror.HasCode(err, apperror.CodeOrderNotReady))
	})
}

func TestPlan_CheckSeq(t *testing.T) {
	p := &Plan{ContainerCount: 2}
	assert.NoError(t, p.CheckSeq(1))
	assert.NoError(t, p.CheckSeq(2))
	assert.True(t, apperror.HasCode(p.CheckSeq(0), apperror.CodeContainerSeqOutOfRange))
	assert.True(t, apperror.HasCode(p.CheckSeq(3), apperror.CodeContainerSeqOutOfRange))
}
