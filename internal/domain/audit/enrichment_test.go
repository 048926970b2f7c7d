package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"snackexport/internal/core/security"
)

func TestEnrichCreatedByDirect(t *testing.T) {
	t.Run("stamps both fields from actor", func(t *testing.T) {
		ctx := security.WithUserID(context.Background(), "u-42")
		var createdBy, updatedBy string
		EnrichCreatedByDirect(ctx, &createdBy, &updatedBy)
		assert.Equal(t, "u-42", createdBy)
		assert.Equal(t, "u-42", updatedBy)
	})

	t.Run("no actor leaves fields untouched", func(t *testing.T) {
		createdBy, updatedBy := "seed", "seed"
		EnrichCreatedByDirect(context.Background(), &createdBy, &updatedBy)
		assert.Equal(t, "seed", createdBy)
		assert.Equal(t, "seed", updatedBy)
	})
}

func TestEnrichUpdatedByDirect(t *testing.T) {
	ctx := security.WithUserID(context.Background(), "u-7")
	updatedBy := "u-1"
	EnrichUpdatedByDirect(ctx, &updatedBy)
	assert.Equal(t, "u-7", updatedBy)
}
