package register_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/id"
)

func TestSalesOrderPredicate(t *testing.T) {
	soID := id.New()

	tests := []struct {
		name     string
		input    *id.ID
		wantSQL  string
		wantArgs []any
	}{
		{name: "unallocated stock", input: nil, wantSQL: "sales_order_id IS NULL"},
		{name: "allocated stock", input: &soID, wantSQL: "sales_order_id = ?", wantArgs: []any{soID.String()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := salesOrderPredicate(tt.input).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, len(tt.wantArgs), len(args))
			if len(tt.wantArgs) > 0 {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}
