package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/id"
	"snackexport/internal/infrastructure/storage/postgres"
)

// AuditReader reads the audit trail of one entity.
type AuditReader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AuditHandler exposes the status-change history recorded by the transition journal.
type AuditHandler struct {
	*BaseHandler
	reader AuditReader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, reader AuditReader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			h.Error(c, apperror.NewValidation("limit must be between 1 and 500").WithDetail("limit", v))
			return
		}
		limit = n
	}
	entries, err := h.reader.History(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []postgres.AuditEntry{}
	}
	h.OK(c, gin.H{"items": entries})
}
