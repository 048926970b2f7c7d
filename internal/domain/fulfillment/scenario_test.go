package fulfillment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	appctx "snackexport/internal/core/context"
	"snackexport/internal/core/id"
	"snackexport/internal/core/security"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/memstore"
	"snackexport/internal/domain/registers/inventory"
	"snackexport/internal/domain/trade"
)

type fixture struct {
	*memstore.Harness
	ctx        context.Context
	productID  id.ID
	supplierID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	productID, supplierID := id.New(), id.New()
	shelfLife := 365
	price := decimal.RequireFromString("1.20")
	products := masterdata.StaticProducts{
		productID: {
			ID:                   productID,
			Name:                 "Seaweed Crisps",
			ShelfLifeDays:        &shelfLife,
			DefaultSupplierID:    &supplierID,
			DefaultPurchasePrice: &price,
		},
	}
	return &fixture{
		Harness:    memstore.NewHarness(products, masterdata.DefaultSettings()),
		ctx:        context.Background(),
		productID:  productID,
		supplierID: supplierID,
	}
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, code), "expected %s, got %v", code, err)
}

func (f *fixture) salesOrder(t *testing.T, port string, qty int64) *sales_order.SalesOrder {
	t.Helper()
	so, err := f.SalesOrders.Create(f.ctx, sales_order.CreateInput{
		Header: sales_order.Header{
			CustomerID:      id.New(),
			OrderDate:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			DestinationPort: port,
			TradeTerm:       trade.TradeTermFOB,
			Currency:        trade.CurrencyUSD,
			PaymentMethod:   trade.PaymentTT,
		},
		Items: []sales_order.ItemInput{{
			ProductID: f.productID,
			Quantity:  qty,
			UnitPrice: decimal.RequireFromString("2.50"),
		}},
	})
	require.NoError(t, err)
	return so
}

// purchased confirms the sales order and returns its confirmed, generated purchase order.
func (f *fixture) purchased(t *testing.T, so *sales_order.SalesOrder) *purchase_order.PurchaseOrder {
	t.Helper()
	_, err := f.SalesOrders.Confirm(f.ctx, so.ID)
	require.NoError(t, err)
	gen, err := f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
	require.NoError(t, err)
	require.Equal(t, 1, gen.Count)
	po, err := f.PurchaseOrders.Confirm(f.ctx, gen.PurchaseOrderIDs[0])
	require.NoError(t, err)
	return po
}

func (f *fixture) receive(t *testing.T, po *purchase_order.PurchaseOrder, qty int64, produced time.Time) *receiving.Note {
	t.Helper()
	note, err := f.Receiving.Create(f.ctx, receiving.CreateInput{
		PurchaseOrderID: po.ID,
		Header:          receiving.Header{Receiver: "warehouse"},
		Items: []receiving.ItemInput{{
			PurchaseOrderItemID: po.Items[0].ID,
			ProductID:           f.productID,
			ExpectedQuantity:    po.Items[0].Quantity,
			ActualQuantity:      qty,
			InspectionResult:    receiving.InspectionPassed,
			ProductionDate:      produced,
		}},
	})
	require.NoError(t, err)
	return note
}

// goodsReady runs a sales order of qty through purchasing and full receipt.
func (f *fixture) goodsReady(t *testing.T, port string, qty int64) *sales_order.SalesOrder {
	t.Helper()
	so := f.salesOrder(t, port, qty)
	po := f.purchased(t, so)
	f.receive(t, po, qty, time.Now().AddDate(0, 0, -10))
	so, err := f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	require.Equal(t, sales_order.StatusGoodsReady, so.Status)
	return so
}

func (f *fixture) plan(t *testing.T, so *sales_order.SalesOrder, volume string) *container_plan.Plan {
	t.Helper()
	plan, err := f.ContainerPlans.Create(f.ctx, container_plan.CreateInput{
		SalesOrderIDs:  []id.ID{so.ID},
		ContainerType:  container_plan.Type40HQ,
		ContainerCount: 1,
	})
	require.NoError(t, err)
	plan, err = f.ContainerPlans.AddItem(f.ctx, plan.ID, container_plan.ItemInput{
		ContainerSeq: 1,
		ProductID:    f.productID,
		SalesOrderID: id.Ptr(so.ID),
		Quantity:     so.Items[0].Quantity,
		VolumeCBM:    decimal.RequireFromString(volume),
		WeightKG:     decimal.RequireFromString("1800"),
	})
	require.NoError(t, err)
	return plan
}

// loaded confirms and stuffs a single-container plan.
func (f *fixture) loaded(t *testing.T, so *sales_order.SalesOrder) *container_plan.Plan {
	t.Helper()
	plan := f.plan(t, so, "24.5")
	_, err := f.ContainerPlans.Confirm(f.ctx, plan.ID)
	require.NoError(t, err)
	plan, err = f.ContainerPlans.RecordStuffing(f.ctx, plan.ID, container_plan.StuffingInput{
		ContainerSeq: 1,
		ContainerNo:  "MSKU1234565",
		SealNo:       "SL-0091",
	})
	require.NoError(t, err)
	return plan
}

func (f *fixture) salesOrderStatus(t *testing.T, soID id.ID) sales_order.Status {
	t.Helper()
	so, err := f.SalesOrders.Get(f.ctx, soID)
	require.NoError(t, err)
	return so.Status
}

func TestScenarioA_ConfirmAndGeneratePurchaseOrder(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	assert.Equal(t, sales_order.StatusDraft, so.Status)
	assert.Equal(t, "SO-20260302-001", so.Number)

	so, err := f.SalesOrders.Confirm(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, sales_order.StatusPurchasing, so.Status)
	assert.Equal(t, []string{"purchasing"}, f.Journal.Statuses(so.ID))

	gen, err := f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
	require.NoError(t, err)
	require.Equal(t, 1, gen.Count)

	po, err := f.PurchaseOrders.Get(f.ctx, gen.PurchaseOrderIDs[0])
	require.NoError(t, err)
	assert.Equal(t, purchase_order.StatusDraft, po.Status)
	assert.Equal(t, f.supplierID, po.SupplierID)
	assert.Equal(t, []id.ID{so.ID}, po.SalesOrderIDs)
	require.Len(t, po.Items, 1)
	assert.Equal(t, int64(100), po.Items[0].Quantity)
	assert.Equal(t, so.Items[0].ID, *po.Items[0].SalesOrderItemID)
	assert.Equal(t, "1.2", po.Items[0].UnitPrice.String())
	assert.Equal(t, "120", po.TotalAmount.String())

	so, err = f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), so.Items[0].PurchasedQuantity)

	t.Run("no remaining demand generates nothing", func(t *testing.T) {
		again, err := f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Count)
		assert.Empty(t, again.PurchaseOrderIDs)
	})

	t.Run("manual line above remaining demand", func(t *testing.T) {
		_, err := f.PurchaseOrders.Create(f.ctx, purchase_order.CreateInput{
			Header: purchase_order.Header{SupplierID: f.supplierID},
			Items: []purchase_order.ItemInput{{
				ProductID:        f.productID,
				SalesOrderItemID: id.Ptr(so.Items[0].ID),
				Quantity:         1,
			}},
		})
		requireCode(t, err, apperror.CodeDemandExceeded)
	})
}

func TestScenarioB_ReceivingAdvancesOrders(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	po := f.purchased(t, so)
	assert.Equal(t, purchase_order.StatusOrdered, po.Status)

	produced := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	t.Run("partial receipt", func(t *testing.T) {
		note := f.receive(t, po, 40, produced)
		assert.Equal(t, receiving.BatchNumber(note.Number, f.productID), note.Items[0].BatchNo)

		got, err := f.PurchaseOrders.Get(f.ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, purchase_order.StatusPartialReceived, got.Status)
		assert.Equal(t, sales_order.StatusPurchasing, f.salesOrderStatus(t, so.ID))
	})

	t.Run("remaining receipt", func(t *testing.T) {
		f.receive(t, po, 60, produced)

		got, err := f.PurchaseOrders.Get(f.ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, purchase_order.StatusFullyReceived, got.Status)

		order, err := f.SalesOrders.Get(f.ctx, so.ID)
		require.NoError(t, err)
		assert.Equal(t, sales_order.StatusGoodsReady, order.Status)
		assert.Equal(t, int64(100), order.Items[0].ReceivedQuantity)

		stock, err := f.Inventory.BySalesOrder(f.ctx, so.ID)
		require.NoError(t, err)
		require.Len(t, stock.Products, 1)
		assert.Equal(t, int64(100), stock.Products[0].AvailableQuantity)
		assert.Equal(t, int64(2), stock.Products[0].BatchCount)
	})

	t.Run("receipt above ordered quantity", func(t *testing.T) {
		before := len(f.Journal.Entries())
		_, err := f.Receiving.Create(f.ctx, receiving.CreateInput{
			PurchaseOrderID: po.ID,
			Header:          receiving.Header{Receiver: "warehouse"},
			Items: []receiving.ItemInput{{
				PurchaseOrderItemID: po.Items[0].ID,
				ProductID:           f.productID,
				ActualQuantity:      1,
				InspectionResult:    receiving.InspectionPassed,
				ProductionDate:      produced,
			}},
		})
		requireCode(t, err, apperror.CodeReceiptExceeded)
		assert.Len(t, f.Journal.Entries(), before)
	})
}

func TestReceivingFailedInspection(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	po := f.purchased(t, so)

	_, err := f.Receiving.Create(f.ctx, receiving.CreateInput{
		PurchaseOrderID: po.ID,
		Header:          receiving.Header{Receiver: "warehouse"},
		Items: []receiving.ItemInput{{
			PurchaseOrderItemID: po.Items[0].ID,
			ProductID:           f.productID,
			ActualQuantity:      100,
			InspectionResult:    receiving.InspectionFailed,
			ProductionDate:      time.Now(),
		}},
	})
	require.NoError(t, err)

	order, err := f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Items[0].ReceivedQuantity)
	assert.Equal(t, sales_order.StatusPurchasing, order.Status)

	stock, err := f.Inventory.BySalesOrder(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Empty(t, stock.Batches)

	got, err := f.PurchaseOrders.Get(f.ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase_order.StatusFullyReceived, got.Status)
}

func TestScenarioC_CapacityValidation(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.plan(t, so, "80")

	result, err := f.ContainerPlans.Validate(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].ContainerSeq)
	assert.Equal(t, container_plan.FieldVolume, result.Errors[0].Field)
	assert.Equal(t, apperror.CodeVolumeExceeded, result.Errors[0].Code)
	assert.Empty(t, result.Warnings)

	_, err = f.ContainerPlans.Confirm(f.ctx, plan.ID)
	requireCode(t, err, apperror.CodeCapacityExceeded)

	got, err := f.ContainerPlans.Get(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, container_plan.StatusPlanning, got.Status)
	assert.Equal(t, sales_order.StatusGoodsReady, f.salesOrderStatus(t, so.ID))
}

func TestScenarioD_StuffingLoadsPlan(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.plan(t, so, "24.5")

	plan, err := f.ContainerPlans.Confirm(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, container_plan.StatusConfirmed, plan.Status)
	assert.Equal(t, sales_order.StatusContainerPlanned, f.salesOrderStatus(t, so.ID))

	plan, err = f.ContainerPlans.RecordStuffing(f.ctx, plan.ID, container_plan.StuffingInput{
		ContainerSeq: 1,
		ContainerNo:  "MSKU1234565",
		SealNo:       "SL-0091",
	})
	require.NoError(t, err)
	assert.Equal(t, container_plan.StatusLoaded, plan.Status)
	require.Len(t, plan.StuffingRecords, 1)
	assert.Equal(t, sales_order.StatusContainerLoaded, f.salesOrderStatus(t, so.ID))
	assert.Equal(t, []string{"confirmed", "loading", "loaded"}, f.Journal.Statuses(plan.ID))

	_, err = f.ContainerPlans.RecordStuffing(f.ctx, plan.ID, container_plan.StuffingInput{
		ContainerSeq: 1,
		ContainerNo:  "MSKU1234565",
		SealNo:       "SL-0092",
	})
	requireCode(t, err, apperror.CodeStuffingNotAllowed)
}

func TestScenarioE_OutboundDeductsInventory(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.loaded(t, so)

	totals := func() int64 {
		res, err := f.Inventory.ByProduct(f.ctx, inventory.TotalsFilter{ProductIDs: []id.ID{f.productID}})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		return res.Items[0].AvailableQuantity
	}
	before := totals()

	order, err := f.Outbound.Create(f.ctx, plan.ID, "")
	require.NoError(t, err)
	assert.Equal(t, outbound.StatusDraft, order.Status)
	assert.Equal(t, int64(100), order.TotalQuantity())
	assert.Equal(t, before, totals(), "draft orders do not move stock")

	order, err = f.Outbound.Confirm(f.ctx, order.ID, outbound.ConfirmInput{Operator: "dock-3"})
	require.NoError(t, err)
	assert.Equal(t, outbound.StatusConfirmed, order.Status)
	require.NotNil(t, order.OutboundDate)
	assert.Equal(t, before-order.TotalQuantity(), totals())

	for _, it := range order.Items {
		rec, err := f.Inventory.Get(f.ctx, it.InventoryRecordID)
		require.NoError(t, err)
		assert.Equal(t, rec.Quantity-it.Quantity, rec.AvailableQuantity)
	}

	got, err := f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Items[0].OutboundQuantity)

	t.Run("second outbound for the plan", func(t *testing.T) {
		journal := len(f.Journal.Entries())
		_, err := f.Outbound.Create(f.ctx, plan.ID, "")
		requireCode(t, err, apperror.CodeConflict)
		assert.Len(t, f.Journal.Entries(), journal)

		list, err := f.Outbound.List(f.ctx, outbound.ListFilter{ContainerPlanID: id.Ptr(plan.ID)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.TotalCount)
	})

	t.Run("confirm twice", func(t *testing.T) {
		_, err := f.Outbound.Confirm(f.ctx, order.ID, outbound.ConfirmInput{})
		requireCode(t, err, apperror.CodeOrderNotConfirmable)
		assert.Equal(t, before-100, totals())
	})
}

func TestOutboundCancelAllowsNewOrder(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.loaded(t, so)

	first, err := f.Outbound.Create(f.ctx, plan.ID, "")
	require.NoError(t, err)
	_, err = f.Outbound.Cancel(f.ctx, first.ID)
	require.NoError(t, err)

	second, err := f.Outbound.Create(f.ctx, plan.ID, "reissued")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestScenarioF_LogisticsCascade(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.loaded(t, so)

	rec, err := f.Logistics.Create(f.ctx, logistics.CreateInput{
		ContainerPlanID: plan.ID,
		Header: logistics.Header{
			ShippingCompany: ptr("Evergreen"),
			PortOfLoading:   ptr("Shenzhen"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, logistics.StatusBooked, rec.Status)
	assert.Equal(t, "Los Angeles", rec.PortOfDischarge)

	rec, err = f.Logistics.UpdateStatus(f.ctx, rec.ID, logistics.StatusCustomsCleared)
	require.NoError(t, err)
	assert.Equal(t, logistics.StatusCustomsCleared, rec.Status)
	assert.Equal(t, sales_order.StatusContainerLoaded, f.salesOrderStatus(t, so.ID))

	rec, err = f.Logistics.UpdateStatus(f.ctx, rec.ID, logistics.StatusLoadedOnShip)
	require.NoError(t, err)
	assert.Equal(t, logistics.StatusLoadedOnShip, rec.Status)

	gotPlan, err := f.ContainerPlans.Get(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, container_plan.StatusShipped, gotPlan.Status)
	assert.Equal(t, sales_order.StatusShipped, f.salesOrderStatus(t, so.ID))

	for _, status := range []logistics.Status{logistics.StatusBooked, logistics.StatusLoadedOnShip} {
		t.Run("reject "+string(status), func(t *testing.T) {
			_, err := f.Logistics.UpdateStatus(f.ctx, rec.ID, status)
			requireCode(t, err, apperror.CodeStatusNotForward)
		})
	}

	rec, err = f.Logistics.UpdateStatus(f.ctx, rec.ID, logistics.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, logistics.StatusDelivered, rec.Status)
	assert.Equal(t, sales_order.StatusDelivered, f.salesOrderStatus(t, so.ID))

	assert.Equal(t, []string{
		"purchasing", "goods_ready", "container_planned", "container_loaded", "shipped", "delivered",
	}, f.Journal.Statuses(so.ID))
}

func TestPurchaseOrderConfirmTwice(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	po := f.purchased(t, so)

	journal := len(f.Journal.Entries())
	_, err := f.PurchaseOrders.Confirm(f.ctx, po.ID)
	requireCode(t, err, apperror.CodeOrderNotConfirmable)

	got, err := f.PurchaseOrders.Get(f.ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase_order.StatusOrdered, got.Status)
	assert.Equal(t, po.Version, got.Version)
	assert.Len(t, f.Journal.Entries(), journal)
}

func TestPurchaseOrderCancelReleasesDemand(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	po := f.purchased(t, so)

	_, err := f.PurchaseOrders.Cancel(f.ctx, po.ID)
	require.NoError(t, err)

	order, err := f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Items[0].PurchasedQuantity)

	gen, err := f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.Count)

	_, err = f.Receiving.Create(f.ctx, receiving.CreateInput{
		PurchaseOrderID: po.ID,
		Header:          receiving.Header{Receiver: "warehouse"},
		Items: []receiving.ItemInput{{
			PurchaseOrderItemID: po.Items[0].ID,
			ProductID:           f.productID,
			ActualQuantity:      10,
			InspectionResult:    receiving.InspectionPassed,
			ProductionDate:      time.Now(),
		}},
	})
	requireCode(t, err, apperror.CodeOrderNotReceivable)
}

func TestContainerPlanPreconditions(t *testing.T) {
	f := newFixture(t)

	t.Run("order not goods ready", func(t *testing.T) {
		so := f.salesOrder(t, "Los Angeles", 10)
		_, err := f.ContainerPlans.Create(f.ctx, container_plan.CreateInput{
			SalesOrderIDs: []id.ID{so.ID},
			ContainerType: container_plan.Type20GP,
		})
		requireCode(t, err, apperror.CodeOrderNotReady)
	})

	first := f.goodsReady(t, "Los Angeles", 10)
	second := f.goodsReady(t, "Hamburg", 10)

	t.Run("different ports", func(t *testing.T) {
		_, err := f.ContainerPlans.Create(f.ctx, container_plan.CreateInput{
			SalesOrderIDs: []id.ID{first.ID, second.ID},
			ContainerType: container_plan.Type20GP,
		})
		requireCode(t, err, apperror.CodePortMismatch)
	})

	t.Run("port override", func(t *testing.T) {
		plan, err := f.ContainerPlans.Create(f.ctx, container_plan.CreateInput{
			SalesOrderIDs:   []id.ID{first.ID, second.ID},
			ContainerType:   container_plan.Type20GP,
			DestinationPort: "Rotterdam",
		})
		require.NoError(t, err)
		assert.Equal(t, "Rotterdam", plan.DestinationPort)
		assert.Equal(t, 1, plan.ContainerCount)
		assert.ElementsMatch(t, []id.ID{first.ID, second.ID}, plan.SalesOrderIDs)

		_, err = f.ContainerPlans.AddItem(f.ctx, plan.ID, container_plan.ItemInput{
			ContainerSeq: 1,
			ProductID:    f.productID,
			SalesOrderID: id.Ptr(first.ID),
			Quantity:     11,
		})
		requireCode(t, err, apperror.CodeInsufficientStock)

		_, err = f.ContainerPlans.AddItem(f.ctx, plan.ID, container_plan.ItemInput{
			ContainerSeq: 2,
			ProductID:    f.productID,
			SalesOrderID: id.Ptr(first.ID),
			Quantity:     5,
		})
		requireCode(t, err, apperror.CodeContainerSeqOutOfRange)
	})
}

func TestManualStatusOverride(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 10)

	_, err := f.SalesOrders.UpdateStatus(f.ctx, so.ID, sales_order.StatusAbnormal)
	requireCode(t, err, apperror.CodeForbidden)

	admin := appctx.WithUser(f.ctx, &appctx.UserContext{UserID: "ops-1", Roles: []string{appctx.RoleAdmin}})
	admin = security.WithUserID(admin, "ops-1")
	_, err = f.SalesOrders.UpdateStatus(admin, so.ID, sales_order.StatusShipped)
	requireCode(t, err, apperror.CodeInvalidTransition)

	got, err := f.SalesOrders.UpdateStatus(admin, so.ID, sales_order.StatusAbnormal)
	require.NoError(t, err)
	assert.Equal(t, sales_order.StatusAbnormal, got.Status)
	assert.Equal(t, "ops-1", got.UpdatedBy)
}

func TestTraceFollowsTheOrder(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.loaded(t, so)
	order, err := f.Outbound.Create(f.ctx, plan.ID, "")
	require.NoError(t, err)
	rec, err := f.Logistics.Create(f.ctx, logistics.CreateInput{
		ContainerPlanID: plan.ID,
		Header:          logistics.Header{PortOfLoading: ptr("Shenzhen")},
	})
	require.NoError(t, err)

	f.salesOrder(t, "Los Angeles", 5)

	tr, err := f.Trace.Trace(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, so.ID, tr.SalesOrder.ID)
	require.Len(t, tr.PurchaseOrders, 1)
	assert.Len(t, tr.PurchaseOrders[0].Items, 1)
	assert.Len(t, tr.ReceivingNotes, 1)
	require.NotNil(t, tr.Stock)
	assert.Len(t, tr.Stock.Batches, 1)
	require.Len(t, tr.ContainerPlans, 1)
	assert.Equal(t, plan.ID, tr.ContainerPlans[0].ID)
	require.Len(t, tr.OutboundOrders, 1)
	assert.Equal(t, order.ID, tr.OutboundOrders[0].ID)
	require.Len(t, tr.LogisticsRecords, 1)
	assert.Equal(t, rec.ID, tr.LogisticsRecords[0].ID)
	assert.True(t, tr.Readiness.IsReady)

	_, err = f.Trace.Trace(f.ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

// splitPlan plans one container per quantity for the sales order.
func (f *fixture) splitPlan(t *testing.T, so *sales_order.SalesOrder, quantities ...int64) *container_plan.Plan {
	t.Helper()
	plan, err := f.ContainerPlans.Create(f.ctx, container_plan.CreateInput{
		SalesOrderIDs:  []id.ID{so.ID},
		ContainerType:  container_plan.Type40HQ,
		ContainerCount: len(quantities),
	})
	require.NoError(t, err)
	for i, qty := range quantities {
		plan, err = f.ContainerPlans.AddItem(f.ctx, plan.ID, container_plan.ItemInput{
			ContainerSeq: i + 1,
			ProductID:    f.productID,
			SalesOrderID: id.Ptr(so.ID),
			Quantity:     qty,
			VolumeCBM:    decimal.RequireFromString("20"),
			WeightKG:     decimal.RequireFromString("900"),
		})
		require.NoError(t, err)
	}
	return plan
}

func headerOf(so *sales_order.SalesOrder) sales_order.Header {
	return sales_order.Header{
		CustomerID:      so.CustomerID,
		OrderDate:       so.OrderDate,
		DestinationPort: so.DestinationPort,
		TradeTerm:       so.TradeTerm,
		Currency:        so.Currency,
		PaymentMethod:   so.PaymentMethod,
	}
}

func TestOutboundSplitsBatchesAcrossContainers(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	po := f.purchased(t, so)
	f.receive(t, po, 60, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	f.receive(t, po, 40, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	require.Equal(t, sales_order.StatusGoodsReady, f.salesOrderStatus(t, so.ID))

	plan := f.splitPlan(t, so, 50, 50)
	_, err := f.ContainerPlans.Confirm(f.ctx, plan.ID)
	require.NoError(t, err)
	for seq, containerNo := range []string{"MSKU1234565", "TGHU7654321"} {
		plan, err = f.ContainerPlans.RecordStuffing(f.ctx, plan.ID, container_plan.StuffingInput{
			ContainerSeq: seq + 1,
			ContainerNo:  containerNo,
			SealNo:       "SL-10" + containerNo[len(containerNo)-1:],
		})
		require.NoError(t, err)
	}
	require.Equal(t, container_plan.StatusLoaded, plan.Status)

	order, err := f.Outbound.Create(f.ctx, plan.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.TotalQuantity())

	perBatch := map[id.ID]int64{}
	for _, it := range order.Items {
		perBatch[it.InventoryRecordID] += it.Quantity
	}
	require.Len(t, perBatch, 2)

	order, err = f.Outbound.Confirm(f.ctx, order.ID, outbound.ConfirmInput{Operator: "dock-1"})
	require.NoError(t, err)
	assert.Equal(t, outbound.StatusConfirmed, order.Status)

	for recordID, qty := range perBatch {
		rec, err := f.Inventory.Get(f.ctx, recordID)
		require.NoError(t, err)
		assert.Equal(t, rec.Quantity, qty, "batch %s", rec.BatchNo)
		assert.Zero(t, rec.AvailableQuantity, "batch %s", rec.BatchNo)
	}

	got, err := f.SalesOrders.Get(f.ctx, so.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Items[0].OutboundQuantity)
}

func TestPurchaseOrderUpdateReappliesDemand(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	_, err := f.SalesOrders.Confirm(f.ctx, so.ID)
	require.NoError(t, err)
	gen, err := f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
	require.NoError(t, err)
	poID := gen.PurchaseOrderIDs[0]

	purchased := func() int64 {
		order, err := f.SalesOrders.Get(f.ctx, so.ID)
		require.NoError(t, err)
		return order.Items[0].PurchasedQuantity
	}
	lines := func(qty int64) []purchase_order.ItemInput {
		return []purchase_order.ItemInput{{
			ProductID:        f.productID,
			SalesOrderItemID: id.Ptr(so.Items[0].ID),
			Quantity:         qty,
			UnitPrice:        decimal.RequireFromString("1.20"),
		}}
	}
	header := purchase_order.Header{SupplierID: f.supplierID}

	tests := []struct {
		name      string
		items     []purchase_order.ItemInput
		code      string
		purchased int64
	}{
		{name: "smaller line releases the difference", items: lines(60), purchased: 60},
		{name: "line above demand rolls back", items: lines(101), code: apperror.CodeDemandExceeded, purchased: 60},
		{name: "header only keeps lines", items: nil, purchased: 60},
		{name: "full demand again", items: lines(100), purchased: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po, err := f.PurchaseOrders.Update(f.ctx, poID, purchase_order.UpdateInput{Header: header, Items: tt.items})
			if tt.code != "" {
				requireCode(t, err, tt.code)
			} else {
				require.NoError(t, err)
				require.Len(t, po.Items, 1)
				assert.Equal(t, tt.purchased, po.Items[0].Quantity)
				assert.Equal(t, []id.ID{so.ID}, po.SalesOrderIDs)
			}
			assert.Equal(t, tt.purchased, purchased())
		})
	}

	t.Run("ordered purchase order", func(t *testing.T) {
		_, err := f.PurchaseOrders.Confirm(f.ctx, poID)
		require.NoError(t, err)
		_, err = f.PurchaseOrders.Update(f.ctx, poID, purchase_order.UpdateInput{Header: header, Items: lines(50)})
		requireCode(t, err, apperror.CodeOrderNotEditable)
		assert.Equal(t, int64(100), purchased())
	})
}

func TestSalesOrderUpdateItems(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)

	replacement := []sales_order.ItemInput{
		{ProductID: f.productID, Quantity: 40, UnitPrice: decimal.RequireFromString("2.50")},
		{ProductID: f.productID, Quantity: 10, UnitPrice: decimal.RequireFromString("3.00")},
	}

	t.Run("draft replaces items", func(t *testing.T) {
		got, err := f.SalesOrders.Update(f.ctx, so.ID, sales_order.UpdateInput{Header: headerOf(so), Items: replacement})
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, int64(50), got.TotalQuantity)
		assert.Equal(t, "130", got.TotalAmount.String())
		so = got
	})

	_, err := f.SalesOrders.Confirm(f.ctx, so.ID)
	require.NoError(t, err)
	_, err = f.SalesOrders.GeneratePurchaseOrders(f.ctx, so.ID)
	require.NoError(t, err)

	t.Run("purchased lines are locked", func(t *testing.T) {
		_, err := f.SalesOrders.Update(f.ctx, so.ID, sales_order.UpdateInput{Header: headerOf(so), Items: replacement[:1]})
		requireCode(t, err, apperror.CodeItemsLocked)

		got, err := f.SalesOrders.Get(f.ctx, so.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	})

	t.Run("header only while purchasing", func(t *testing.T) {
		h := headerOf(so)
		h.DestinationPort = "Long Beach"
		got, err := f.SalesOrders.Update(f.ctx, so.ID, sales_order.UpdateInput{Header: h})
		require.NoError(t, err)
		assert.Equal(t, "Long Beach", got.DestinationPort)
		assert.Equal(t, sales_order.StatusPurchasing, got.Status)
		require.Len(t, got.Items, 2)
		assert.Equal(t, int64(40), got.Items[0].PurchasedQuantity)
	})
}

func TestContainerPlanItemEdits(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.splitPlan(t, so, 60)
	plan, err := f.ContainerPlans.AddItem(f.ctx, plan.ID, container_plan.ItemInput{
		ContainerSeq: 1,
		ProductID:    f.productID,
		SalesOrderID: id.Ptr(so.ID),
		Quantity:     40,
	})
	require.NoError(t, err)
	require.Len(t, plan.Items, 2)
	first, second := plan.Items[0].ID, plan.Items[1].ID

	tests := []struct {
		name  string
		patch container_plan.ItemPatch
		code  string
	}{
		{name: "above the remaining stock", patch: container_plan.ItemPatch{Quantity: ptr(int64(61))}, code: apperror.CodeInsufficientStock},
		{name: "container outside the plan", patch: container_plan.ItemPatch{ContainerSeq: ptr(2)}, code: apperror.CodeContainerSeqOutOfRange},
		{name: "zero quantity", patch: container_plan.ItemPatch{Quantity: ptr(int64(0))}, code: apperror.CodeValidation},
		{name: "within the remaining stock", patch: container_plan.ItemPatch{Quantity: ptr(int64(55))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ContainerPlans.UpdateItem(f.ctx, plan.ID, first, tt.patch)
			if tt.code != "" {
				requireCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(55), got.Items[0].Quantity)
		})
	}

	t.Run("delete frees stock", func(t *testing.T) {
		got, err := f.ContainerPlans.DeleteItem(f.ctx, plan.ID, second)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)

		got, err = f.ContainerPlans.UpdateItem(f.ctx, plan.ID, first, container_plan.ItemPatch{Quantity: ptr(int64(100))})
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Items[0].Quantity)

		_, err = f.ContainerPlans.DeleteItem(f.ctx, plan.ID, second)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("confirmed plan is frozen", func(t *testing.T) {
		_, err := f.ContainerPlans.Confirm(f.ctx, plan.ID)
		require.NoError(t, err)

		_, err = f.ContainerPlans.UpdateItem(f.ctx, plan.ID, first, container_plan.ItemPatch{Quantity: ptr(int64(90))})
		requireCode(t, err, apperror.CodePlanNotEditable)
		_, err = f.ContainerPlans.DeleteItem(f.ctx, plan.ID, first)
		requireCode(t, err, apperror.CodePlanNotEditable)
	})
}

func TestStuffingPhotoAttachesToLatestRecord(t *testing.T) {
	f := newFixture(t)
	so := f.goodsReady(t, "Los Angeles", 100)
	plan := f.splitPlan(t, so, 50, 50)
	_, err := f.ContainerPlans.Confirm(f.ctx, plan.ID)
	require.NoError(t, err)

	_, err = f.ContainerPlans.AddStuffingPhoto(f.ctx, plan.ID, "https://files.example/p0.jpg", "")
	requireCode(t, err, apperror.CodeNoStuffingRecord)

	for _, seq := range []int{2, 1} {
		_, err = f.ContainerPlans.RecordStuffing(f.ctx, plan.ID, container_plan.StuffingInput{
			ContainerSeq: seq,
			ContainerNo:  "MSKU123456" + string(rune('0'+seq)),
			SealNo:       "SL-0091",
		})
		require.NoError(t, err)
	}

	_, err = f.ContainerPlans.AddStuffingPhoto(f.ctx, plan.ID, "", "door")
	requireCode(t, err, apperror.CodeValidation)

	photo, err := f.ContainerPlans.AddStuffingPhoto(f.ctx, plan.ID, "https://files.example/p1.jpg", "door")
	require.NoError(t, err)

	got, err := f.ContainerPlans.Get(f.ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, got.StuffingRecords, 2)
	for _, rec := range got.StuffingRecords {
		if rec.ContainerSeq == 1 {
			assert.Equal(t, rec.ID, photo.StuffingRecordID)
			require.Len(t, rec.Photos, 1)
			assert.Equal(t, "door", rec.Photos[0].Description)
		} else {
			assert.Empty(t, rec.Photos)
		}
	}
}

func TestPurchaseOrderLinks(t *testing.T) {
	f := newFixture(t)
	so := f.salesOrder(t, "Los Angeles", 100)
	other := f.salesOrder(t, "Los Angeles", 20)
	po := f.purchased(t, so)

	steps := []struct {
		name   string
		apply  func() (*purchase_order.PurchaseOrder, error)
		linked []id.ID
	}{
		{
			name:   "link with duplicates",
			apply:  func() (*purchase_order.PurchaseOrder, error) { return f.PurchaseOrders.LinkSalesOrders(f.ctx, po.ID, []id.ID{other.ID, other.ID}) },
			linked: []id.ID{so.ID, other.ID},
		},
		{
			name:   "link again",
			apply:  func() (*purchase_order.PurchaseOrder, error) { return f.PurchaseOrders.LinkSalesOrders(f.ctx, po.ID, []id.ID{so.ID, other.ID}) },
			linked: []id.ID{so.ID, other.ID},
		},
		{
			name:   "unlink with unknown order",
			apply:  func() (*purchase_order.PurchaseOrder, error) { return f.PurchaseOrders.UnlinkSalesOrders(f.ctx, po.ID, []id.ID{other.ID, id.New()}) },
			linked: []id.ID{so.ID},
		},
		{
			name:   "unlink again",
			apply:  func() (*purchase_order.PurchaseOrder, error) { return f.PurchaseOrders.UnlinkSalesOrders(f.ctx, po.ID, []id.ID{other.ID}) },
			linked: []id.ID{so.ID},
		},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			got, err := step.apply()
			require.NoError(t, err)
			assert.ElementsMatch(t, step.linked, got.SalesOrderIDs)
		})
	}

	t.Run("link missing sales order", func(t *testing.T) {
		_, err := f.PurchaseOrders.LinkSalesOrders(f.ctx, po.ID, []id.ID{id.New()})
		assert.True(t, apperror.IsNotFound(err))
	})
}
