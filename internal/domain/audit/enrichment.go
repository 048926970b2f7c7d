// Package audit stamps actor references on documents before they are written.
package audit

import (
	"context"

	"snackexport/internal/core/security"
)

// EnrichCreatedByDirect sets CreatedBy and UpdatedBy from the context actor.
// If no actor is present, this is a no-op.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect sets UpdatedBy from the context actor.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
