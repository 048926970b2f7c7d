package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/documents/container_plan"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// ContainerPlanHandler handles HTTP requests for container plans.
type ContainerPlanHandler struct {
	*BaseHandler
	service *container_plan.Service
}

// NewContainerPlanHandler creates a new container plan handler.
func NewContainerPlanHandler(base *BaseHandler, service *container_plan.Service) *ContainerPlanHandler {
	return &ContainerPlanHandler{BaseHandler: base, service: service}
}

// Create handles POST /container-plans.
func (h *ContainerPlanHandler) Create(c *gin.Context) {
	var req dto.CreateContainerPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, plan)
}

// List handles GET /container-plans.
func (h *ContainerPlanHandler) List(c *gin.Context) {
	var q dto.ContainerPlanListQuery
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

// Get handles GET /container-plans/:id.
func (h *ContainerPlanHandler) Get(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Get)
}

// Update handles PUT /container-plans/:id.
func (h *ContainerPlanHandler) Update(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateContainerPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.service.Update(c.Request.Context(), planID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, plan)
}

// AddItem handles POST /container-plans/:id/items.
func (h *ContainerPlanHandler) AddItem(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ContainerItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.service.AddItem(c.Request.Context(), planID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, plan)
}

// UpdateItem handles PUT /container-plans/:id/items/:itemId.
func (h *ContainerPlanHandler) UpdateItem(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParamID(c, "itemId")
	if !ok {
		return
	}
	var req dto.ContainerItemPatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.service.UpdateItem(c.Request.Context(), planID, itemID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, plan)
}

// DeleteItem handles DELETE /container-plans/:id/items/:itemId.
func (h *ContainerPlanHandler) DeleteItem(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParamID(c, "itemId")
	if !ok {
		return
	}
	plan, err := h.service.DeleteItem(c.Request.Context(), planID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, plan)
}

// Summary handles GET /container-plans/:id/summary.
func (h *ContainerPlanHandler) Summary(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Summary)
}

// Validate handles GET /container-plans/:id/validate.
func (h *ContainerPlanHandler) Validate(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Validate)
}

// RecommendType handles GET /container-plans/:id/recommend-type.
func (h *ContainerPlanHandler) RecommendType(c *gin.Context) {
	read(h.BaseHandler, c, h.service.RecommendType)
}

// PackingList handles GET /container-plans/:id/packing-list.
func (h *ContainerPlanHandler) PackingList(c *gin.Context) {
	read(h.BaseHandler, c, h.service.PackingList)
}

// Confirm handles POST /container-plans/:id/confirm.
func (h *ContainerPlanHandler) Confirm(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Confirm)
}

// RecordStuffing handles POST /container-plans/:id/stuffing.
func (h *ContainerPlanHandler) RecordStuffing(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StuffingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.service.RecordStuffing(c.Request.Context(), planID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, plan)
}

// AddStuffingPhoto handles POST /container-plans/:id/stuffing/photos.
func (h *ContainerPlanHandler) AddStuffingPhoto(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StuffingPhotoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	photo, err := h.service.AddStuffingPhoto(c.Request.Context(), planID, req.PhotoURL, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, photo)
}

// RegisterRoutes registers the container plan routes.
func (h *ContainerPlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/items", h.AddItem)
	rg.PUT("/:id/items/:itemId", h.UpdateItem)
	rg.DELETE("/:id/items/:itemId", h.DeleteItem)
	rg.GET("/:id/summary", h.Summary)
	rg.GET("/:id/validate", h.Validate)
	rg.GET("/:id/recommend-type", h.RecommendType)
	rg.GET("/:id/packing-list", h.PackingList)
	rg.POST("/:id/confirm", h.Confirm)
	rg.POST("/:id/stuffing", h.RecordStuffing)
	rg.POST("/:id/stuffing/photos", h.AddStuffingPhoto)
}
