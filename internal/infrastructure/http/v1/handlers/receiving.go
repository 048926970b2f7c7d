package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/documents/receiving"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// ReceivingHandler handles HTTP requests for receiving notes.
type ReceivingHandler struct {
	*BaseHandler
	service *receiving.Service
}

// NewReceivingHandler creates a new receiving handler.
func NewReceivingHandler(base *BaseHandler, service *receiving.Service) *ReceivingHandler {
	return &ReceivingHandler{BaseHandler: base, service: service}
}

// Create handles POST /receiving-notes.
func (h *ReceivingHandler) Create(c *gin.Context) {
	var req dto.ReceivingNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	note, err := h.service.Create(c.Request.Context(), req.ToCreateInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, note)
}

// List handles GET /receiving-notes.
func (h *ReceivingHandler) List(c *gin.Context) {
	var q dto.ReceivingListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Get handles GET /receiving-notes/:id.
func (h *ReceivingHandler) Get(c *gin.Context) {
	noteID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	note, err := h.service.Get(c.Request.Context(), noteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, note)
}

// Update handles PUT /receiving-notes/:id.
func (h *ReceivingHandler) Update(c *gin.Context) {
	noteID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceivingHeaderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	note, err := h.service.Update(c.Request.Context(), noteID, req.ToHeader())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, note)
}

// RegisterRoutes registers the receiving note routes.
func (h *ReceivingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
