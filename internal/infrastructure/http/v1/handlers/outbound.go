package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/documents/outbound"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// OutboundHandler handles HTTP requests for outbound orders.
type OutboundHandler struct {
	*BaseHandler
	service *outbound.Service
}

// NewOutboundHandler creates a new outbound handler.
func NewOutboundHandler(base *BaseHandler, service *outbound.Service) *OutboundHandler {
	return &OutboundHandler{BaseHandler: base, service: service}
}

// Create handles POST /outbound-orders.
func (h *OutboundHandler) Create(c *gin.Context) {
	var req dto.CreateOutboundRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Create(c.Request.Context(), req.ContainerPlanID, req.Remark)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /outbound-orders.
func (h *OutboundHandler) List(c *gin.Context) {
	var q dto.OutboundListQuery
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

// Get handles GET /outbound-orders/:id.
func (h *OutboundHandler) Get(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Get)
}

// Confirm handles POST /outbound-orders/:id/confirm. The body is optional.
func (h *OutboundHandler) Confirm(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmOutboundRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	if req.Operator == "" {
		req.Operator = h.GetUserID(c)
	}
	order, err := h.service.Confirm(c.Request.Context(), orderID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Cancel handles POST /outbound-orders/:id/cancel.
func (h *OutboundHandler) Cancel(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Cancel)
}

// RegisterRoutes registers the outbound order routes.
func (h *OutboundHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/confirm", h.Confirm)
	rg.POST("/:id/cancel", h.Cancel)
}
