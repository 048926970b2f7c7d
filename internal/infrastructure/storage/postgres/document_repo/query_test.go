package document_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/purchase_order"
)

func TestParseOrderBy(t *testing.T) {
	repo := NewSalesOrderRepo(nil)

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "default", orderBy: "", want: "created_at DESC"},
		{name: "blank", orderBy: "   ", want: "created_at DESC"},
		{name: "descending", orderBy: "-number", want: "number DESC"},
		{name: "explicit ascending", orderBy: "+status", want: "status ASC"},
		{name: "date alias", orderBy: "-date", want: "order_date DESC"},
		{name: "unknown column", orderBy: "password", wantErr: true},
		{name: "injection", orderBy: "number; DROP TABLE doc_sales_orders", wantErr: true},
		{name: "sign only", orderBy: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderBy_DateColumnPerDocument(t *testing.T) {
	receivingOrder, err := NewReceivingRepo(nil).parseOrderBy("date")
	require.NoError(t, err)
	assert.Equal(t, "receiving_date ASC", receivingOrder)

	planOrder, err := NewContainerPlanRepo(nil).parseOrderBy("date")
	require.NoError(t, err)
	assert.Equal(t, "created_at ASC", planOrder)
}

func TestLinkTable_OwnersOf(t *testing.T) {
	links := linkTable{name: purchaseOrderLinksTable, ownerCol: "purchase_order_id"}
	soID := id.New()

	sql, args, err := builder().
		Select("id").
		From(purchaseOrdersTable).
		Where(links.ownersOf(soID)).
		Where(squirrel.Eq{"status": purchase_order.StatusOrdered}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM doc_purchase_orders WHERE id IN "+
			"(SELECT purchase_order_id FROM doc_purchase_order_sales_orders WHERE sales_order_id = $1) "+
			"AND status = $2",
		sql)
	assert.Equal(t, []any{soID.String(), purchase_order.StatusOrdered}, args)
}

func TestBaseSelect_Columns(t *testing.T) {
	repo := NewLogisticsRepo(nil)

	sql, _, err := repo.baseSelect().ToSql()

	require.NoError(t, err)
	assert.Contains(t, sql, "FROM doc_logistics_records")
	assert.Contains(t, sql, "total_cost")
	assert.NotContains(t, sql, "costs")
	_, readOnly := repo.readOnly["total_cost"]
	assert.True(t, readOnly)
}

func TestChildTable_Columns(t *testing.T) {
	repo := NewSalesOrderRepo(nil)

	assert.Equal(t, salesOrderItemsTable, repo.items.name)
	assert.Equal(t, "sales_order_id", repo.items.parentCol)
	assert.Contains(t, repo.items.cols, "id")
	assert.Contains(t, repo.items.cols, "product_id")
	assert.Contains(t, repo.items.cols, "reserved_quantity")
}
