// Package memstore provides in-memory repositories and a snapshotting transaction
// manager for exercising the workflows without a database.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/cascade"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/registers/inventory"
)

// table keeps rows in insertion order.
type table[K comparable, V any] struct {
	rows  map[K]V
	order []K
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{rows: make(map[K]V)}
}

func (t *table[K, V]) put(k K, v V) {
	if _, ok := t.rows[k]; !ok {
		t.order = append(t.order, k)
	}
	t.rows[k] = v
}

func (t *table[K, V]) get(k K) (V, bool) {
	v, ok := t.rows[k]
	return v, ok
}

func (t *table[K, V]) has(k K) bool {
	_, ok := t.rows[k]
	return ok
}

func (t *table[K, V]) delete(k K) {
	if _, ok := t.rows[k]; !ok {
		return
	}
	delete(t.rows, k)
	t.order = slices.DeleteFunc(t.order, func(o K) bool { return o == k })
}

// values returns rows matching keep, in insertion order.
func (t *table[K, V]) values(keep func(V) bool) []V {
	out := make([]V, 0, len(t.order))
	for _, k := range t.order {
		v := t.rows[k]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[K, V]) clone() *table[K, V] {
	return &table[K, V]{rows: maps.Clone(t.rows), order: slices.Clone(t.order)}
}

type link struct {
	Owner      id.ID
	SalesOrder id.ID
}

type tables struct {
	salesOrders     *table[id.ID, sales_order.SalesOrder]
	salesOrderItems *table[id.ID, sales_order.Item]

	purchaseOrders     *table[id.ID, purchase_order.PurchaseOrder]
	purchaseOrderItems *table[id.ID, purchase_order.Item]
	purchaseLinks      *table[link, struct{}]

	receivingNotes *table[id.ID, receiving.Note]
	receivingItems *table[id.ID, receiving.Item]

	inventory *table[id.ID, inventory.Record]

	plans     *table[id.ID, container_plan.Plan]
	planItems *table[id.ID, container_plan.Item]
	planLinks *table[link, struct{}]
	stuffing  *table[id.ID, container_plan.StuffingRecord]
	photos    *table[id.ID, container_plan.Photo]

	outbound      *table[id.ID, outbound.Order]
	outboundItems *table[id.ID, outbound.Item]

	logistics      *table[id.ID, logistics.Record]
	logisticsCosts *table[id.ID, logistics.Cost]

	journal []cascade.Transition
}

func newTables() *tables {
	return &tables{
		salesOrders:        newTable[id.ID, sales_order.SalesOrder](),
		salesOrderItems:    newTable[id.ID, sales_order.Item](),
		purchaseOrders:     newTable[id.ID, purchase_order.PurchaseOrder](),
		purchaseOrderItems: newTable[id.ID, purchase_order.Item](),
		purchaseLinks:      newTable[link, struct{}](),
		receivingNotes:     newTable[id.ID, receiving.Note](),
		receivingItems:     newTable[id.ID, receiving.Item](),
		inventory:          newTable[id.ID, inventory.Record](),
		plans:              newTable[id.ID, container_plan.Plan](),
		planItems:          newTable[id.ID, container_plan.Item](),
		planLinks:          newTable[link, struct{}](),
		stuffing:           newTable[id.ID, container_plan.StuffingRecord](),
		photos:             newTable[id.ID, container_plan.Photo](),
		outbound:           newTable[id.ID, outbound.Order](),
		outboundItems:      newTable[id.ID, outbound.Item](),
		logistics:          newTable[id.ID, logistics.Record](),
		logisticsCosts:     newTable[id.ID, logistics.Cost](),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		salesOrders:        t.salesOrders.clone(),
		salesOrderItems:    t.salesOrderItems.clone(),
		purchaseOrders:     t.purchaseOrders.clone(),
		purchaseOrderItems: t.purchaseOrderItems.clone(),
		purchaseLinks:      t.purchaseLinks.clone(),
		receivingNotes:     t.receivingNotes.clone(),
		receivingItems:     t.receivingItems.clone(),
		inventory:          t.inventory.clone(),
		plans:              t.plans.clone(),
		planItems:          t.planItems.clone(),
		planLinks:          t.planLinks.clone(),
		stuffing:           t.stuffing.clone(),
		photos:             t.photos.clone(),
		outbound:           t.outbound.clone(),
		outboundItems:      t.outboundItems.clone(),
		logistics:          t.logistics.clone(),
		logisticsCosts:     t.logisticsCosts.clone(),
		journal:            slices.Clone(t.journal),
	}
}

// Store holds every table. Rows are stored by value so callers never share
// memory with the store.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	db   *tables
}

// New creates an empty store.
func New() *Store {
	return &Store{db: newTables()}
}

func (s *Store) read(fn func(db *tables)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.db)
}

func (s *Store) write(fn func(db *tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.db)
}

// Repositories.
func (s *Store) SalesOrders() *SalesOrderRepo       { return &SalesOrderRepo{s: s} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }
func (s *Store) ReceivingNotes() *ReceivingRepo     { return &ReceivingRepo{s: s} }
func (s *Store) Inventory() *InventoryRepo          { return &InventoryRepo{s: s} }
func (s *Store) ContainerPlans() *ContainerPlanRepo { return &ContainerPlanRepo{s: s} }
func (s *Store) OutboundOrders() *OutboundRepo      { return &OutboundRepo{s: s} }
func (s *Store) Logistics() *LogisticsRepo          { return &LogisticsRepo{s: s} }
func (s *Store) Journal() *Journal                  { return &Journal{s: s} }

type txKey struct{}

// TxManager runs functions against a snapshot of the store; an error restores it.
// Transactions are serialized, which stands in for row locks.
type TxManager struct {
	s *Store
}

// TxManager returns the transaction manager of the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// RunInTransaction implements tx.Manager. Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.Lock()
	snapshot := m.s.db.clone()
	m.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.mu.Lock()
		m.s.db = snapshot
		m.s.mu.Unlock()
		return err
	}
	return nil
}
