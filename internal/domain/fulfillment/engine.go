package fulfillment

import (
	"snackexport/internal/core/numerator"
	"snackexport/internal/core/tx"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/registers/inventory"
)

// Repositories is the storage backing an Engine.
type Repositories struct {
	SalesOrders    sales_order.Repository
	PurchaseOrders purchase_order.Repository
	ReceivingNotes receiving.Repository
	Inventory      inventory.Repository
	ContainerPlans container_plan.Repository
	OutboundOrders outbound.Repository
	Logistics      logistics.Repository
}

// Deps are the collaborators shared by every workflow.
type Deps struct {
	Repos     Repositories
	Products  masterdata.ProductReader
	Settings  masterdata.SettingsReader
	Numerator numerator.Generator
	TxManager tx.Manager
	Journal   cascade.Journal
}

// Engine wires the workflows to each other.
type Engine struct {
	SalesOrders    *sales_order.Service
	PurchaseOrders *purchase_order.Service
	Receiving      *receiving.Service
	Inventory      *inventory.Service
	ContainerPlans *container_plan.Service
	Outbound       *outbound.Service
	Logistics      *logistics.Service
	Trace          *Service
}

// NewEngine builds every workflow service over deps.
func NewEngine(deps Deps) *Engine {
	journal := deps.Journal
	if journal == nil {
		journal = cascade.NopJournal{}
	}
	settings := deps.Settings
	if settings == nil {
		settings = masterdata.StaticSettings(masterdata.DefaultSettings())
	}

	e := &Engine{}
	e.Inventory = inventory.NewService(deps.Repos.Inventory)
	e.SalesOrders = sales_order.NewService(deps.Repos.SalesOrders, deps.Products,
		deps.Numerator, deps.TxManager, journal)
	e.PurchaseOrders = purchase_order.NewService(deps.Repos.PurchaseOrders, e.SalesOrders,
		deps.Numerator, deps.TxManager, journal)
	e.SalesOrders.SetPurchaseOrderCreator(e.PurchaseOrders)
	e.Receiving = receiving.NewService(deps.Repos.ReceivingNotes, e.PurchaseOrders, e.SalesOrders,
		e.Inventory, deps.Numerator, deps.TxManager, journal)
	e.ContainerPlans = container_plan.NewService(deps.Repos.ContainerPlans, e.SalesOrders, e.Inventory,
		deps.Products, settings, deps.Numerator, deps.TxManager, journal)
	e.Outbound = outbound.NewService(deps.Repos.OutboundOrders, e.ContainerPlans, e.Inventory,
		e.SalesOrders, deps.Numerator, deps.TxManager, journal)
	e.Logistics = logistics.NewService(deps.Repos.Logistics, e.ContainerPlans, e.SalesOrders,
		deps.Numerator, deps.TxManager, journal)
	e.Trace = NewService(e.SalesOrders, e.PurchaseOrders, e.Receiving, e.Inventory,
		e.ContainerPlans, e.Outbound, e.Logistics, deps.TxManager)
	return e
}
