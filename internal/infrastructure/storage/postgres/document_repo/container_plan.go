package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/infrastructure/storage/postgres"
)

const (
	containerPlansTable     = "doc_container_plans"
	containerPlanItemsTable = "doc_container_plan_items"
	containerPlanLinksTable = "doc_container_plan_sales_orders"
	stuffingRecordsTable    = "doc_stuffing_records"
	stuffingPhotosTable     = "doc_stuffing_photos"
)

// ContainerPlanRepo implements container_plan.Repository.
type ContainerPlanRepo struct {
	*BaseDocumentRepo[*container_plan.Plan]
	items    childTable[container_plan.Item]
	stuffing childTable[container_plan.StuffingRecord]
	photos   childTable[container_plan.Photo]
	links    linkTable
}

var _ container_plan.Repository = (*ContainerPlanRepo)(nil)

// NewContainerPlanRepo creates a new container plan repository.
func NewContainerPlanRepo(txm *postgres.TxManager) *ContainerPlanRepo {
	return &ContainerPlanRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			containerPlansTable,
			postgres.ExtractDBColumns[container_plan.Plan](),
			"created_at",
			func() *container_plan.Plan { return &container_plan.Plan{} },
		),
		items:    newChildTable[container_plan.Item](txm, containerPlanItemsTable, "container_plan_id", "container_seq, id"),
		stuffing: newChildTable[container_plan.StuffingRecord](txm, stuffingRecordsTable, "container_plan_id", "created_at, id"),
		photos:   newChildTable[container_plan.Photo](txm, stuffingPhotosTable, "stuffing_record_id", "created_at, id"),
		links:    linkTable{txm: txm, name: containerPlanLinksTable, ownerCol: "container_plan_id"},
	}
}

// List retrieves container plans with filtering.
func (r *ContainerPlanRepo) List(ctx context.Context, filter container_plan.ListFilter) (domain.ListResult[*container_plan.Plan], error) {
	q := r.baseSelect()
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": filter.Statuses})
	}
	if filter.SalesOrderID != nil {
		q = q.Where(r.links.ownersOf(*filter.SalesOrderID))
	}
	return r.page(ctx, q, filter.ListFilter)
}

// EnsureLinked links the plan to sales orders, ignoring existing pairs.
func (r *ContainerPlanRepo) EnsureLinked(ctx context.Context, planID id.ID, salesOrderIDs []id.ID) error {
	return r.links.ensure(ctx, planID, salesOrderIDs)
}

// LinkedSalesOrderIDs lists the linked sales orders.
func (r *ContainerPlanRepo) LinkedSalesOrderIDs(ctx context.Context, planID id.ID) ([]id.ID, error) {
	ids, err := r.links.salesOrders(ctx, planID)
	if ids == nil && err == nil {
		ids = []id.ID{}
	}
	return ids, err
}

// GetItems retrieves the items of a plan ordered by container.
func (r *ContainerPlanRepo) GetItems(ctx context.Context, planID id.ID) ([]container_plan.Item, error) {
	return r.items.byParent(ctx, planID)
}

// CreateItem inserts one item.
func (r *ContainerPlanRepo) CreateItem(ctx context.Context, item *container_plan.Item) error {
	return r.items.insert(ctx, *item)
}

// UpdateItem rewrites the editable columns of an item.
func (r *ContainerPlanRepo) UpdateItem(ctx context.Context, item *container_plan.Item) error {
	return r.items.update(ctx, item.ID, *item,
		"container_seq", "product_id", "sales_order_id", "inventory_record_id",
		"quantity", "volume_cbm", "weight_kg")
}

// DeleteItem removes one item.
func (r *ContainerPlanRepo) DeleteItem(ctx context.Context, itemID id.ID) error {
	return r.items.delete(ctx, itemID)
}

// GetStuffingRecords lists the stuffing records of a plan in creation order.
func (r *ContainerPlanRepo) GetStuffingRecords(ctx context.Context, planID id.ID) ([]container_plan.StuffingRecord, error) {
	return r.stuffing.byParent(ctx, planID)
}

// CreateStuffingRecord inserts a stuffing record. One record per container is
// enforced by a unique index on (container_plan_id, container_seq).
func (r *ContainerPlanRepo) CreateStuffingRecord(ctx context.Context, rec *container_plan.StuffingRecord) error {
	return r.stuffing.insert(ctx, *rec)
}

// GetPhotos lists the photos of the given stuffing records.
func (r *ContainerPlanRepo) GetPhotos(ctx context.Context, recordIDs []id.ID) ([]container_plan.Photo, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	return r.photos.selectRows(ctx, squirrel.Eq{"stuffing_record_id": recordIDs})
}

// CreatePhoto inserts a photo reference.
func (r *ContainerPlanRepo) CreatePhoto(ctx context.Context, photo *container_plan.Photo) error {
	return r.photos.insert(ctx, *photo)
}
