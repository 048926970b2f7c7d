package memstore

import (
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
)

// bumpVersion applies the optimistic check the SQL repositories perform with
// "WHERE version = $n" and advances the caller's copy.
func bumpVersion(stored entity.BaseDocument, incoming *entity.BaseDocument, entityName string) error {
	if stored.Version != incoming.Version {
		return apperror.NewConcurrentModification(entityName, incoming.ID)
	}
	incoming.Version++
	incoming.UpdatedAt = time.Now().UTC()
	incoming.CreatedAt = stored.CreatedAt
	incoming.CreatedBy = stored.CreatedBy
	return nil
}
