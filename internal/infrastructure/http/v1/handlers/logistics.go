package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/documents/logistics"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// LogisticsHandler handles HTTP requests for logistics records.
type LogisticsHandler struct {
	*BaseHandler
	service *logistics.Service
}

// NewLogisticsHandler creates a new logistics handler.
func NewLogisticsHandler(base *BaseHandler, service *logistics.Service) *LogisticsHandler {
	return &LogisticsHandler{BaseHandler: base, service: service}
}

// Create handles POST /logistics.
func (h *LogisticsHandler) Create(c *gin.Context) {
	var req dto.CreateLogisticsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// List handles GET /logistics.
func (h *LogisticsHandler) List(c *gin.Context) {
	var q dto.LogisticsListQuery
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

// Kanban handles GET /logistics/kanban.
func (h *LogisticsHandler) Kanban(c *gin.Context) {
	counts, err := h.service.Kanban(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, counts)
}

// Get handles GET /logistics/:id.
func (h *LogisticsHandler) Get(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Get)
}

// Update handles PUT /logistics/:id.
func (h *LogisticsHandler) Update(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.LogisticsHeaderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.Update(c.Request.Context(), recordID, req.ToHeader())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// UpdateStatus handles PUT /logistics/:id/status.
func (h *LogisticsHandler) UpdateStatus(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.LogisticsStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.UpdateStatus(c.Request.Context(), recordID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// AddCost handles POST /logistics/:id/costs.
func (h *LogisticsHandler) AddCost(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.LogisticsCostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.AddCost(c.Request.Context(), recordID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// UpdateCost handles PUT /logistics/:id/costs/:costId.
func (h *LogisticsHandler) UpdateCost(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	costID, ok := h.ParamID(c, "costId")
	if !ok {
		return
	}
	var req dto.LogisticsCostPatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.UpdateCost(c.Request.Context(), recordID, costID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// DeleteCost handles DELETE /logistics/:id/costs/:costId.
func (h *LogisticsHandler) DeleteCost(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	costID, ok := h.ParamID(c, "costId")
	if !ok {
		return
	}
	rec, err := h.service.DeleteCost(c.Request.Context(), recordID, costID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// RegisterRoutes registers the logistics routes.
func (h *LogisticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/kanban", h.Kanban)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PUT("/:id/status", h.UpdateStatus)
	rg.POST("/:id/costs", h.AddCost)
	rg.PUT("/:id/costs/:costId", h.UpdateCost)
	rg.DELETE("/:id/costs/:costId", h.DeleteCost)
}
