package memstore

import (
	"snackexport/internal/core/numerator"
	"snackexport/internal/domain/fulfillment"
	"snackexport/internal/domain/masterdata"
)

// Harness is a fully wired engine over an empty store.
type Harness struct {
	*fulfillment.Engine

	Store     *Store
	Journal   *Journal
	Numerator *numerator.MockGenerator
	Products  masterdata.StaticProducts
}

// NewHarness wires every workflow to a fresh store.
func NewHarness(products masterdata.StaticProducts, settings masterdata.Settings) *Harness {
	if products == nil {
		products = masterdata.StaticProducts{}
	}
	store := New()
	num := &numerator.MockGenerator{}
	engine := fulfillment.NewEngine(fulfillment.Deps{
		Repos: fulfillment.Repositories{
			SalesOrders:    store.SalesOrders(),
			PurchaseOrders: store.PurchaseOrders(),
			ReceivingNotes: store.ReceivingNotes(),
			Inventory:      store.Inventory(),
			ContainerPlans: store.ContainerPlans(),
			OutboundOrders: store.OutboundOrders(),
			Logistics:      store.Logistics(),
		},
		Products:  products,
		Settings:  masterdata.StaticSettings(settings),
		Numerator: num,
		TxManager: store.TxManager(),
		Journal:   store.Journal(),
	})
	return &Harness{
		Engine:    engine,
		Store:     store,
		Journal:   store.Journal(),
		Numerator: num,
		Products:  products,
	}
}
