package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/fulfillment"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// SalesOrderHandler handles HTTP requests for sales orders.
type SalesOrderHandler struct {
	*BaseHandler
	service *sales_order.Service
	trace   *fulfillment.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *sales_order.Service, trace *fulfillment.Service) *SalesOrderHandler {
	return &SalesOrderHandler{BaseHandler: base, service: service, trace: trace}
}

// Create handles POST /sales-orders.
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req dto.SalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Create(c.Request.Context(), req.ToCreateInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /sales-orders.
func (h *SalesOrderHandler) List(c *gin.Context) {
	var q dto.SalesOrderListQuery
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

// Get handles GET /sales-orders/:id.
func (h *SalesOrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Update handles PUT /sales-orders/:id.
func (h *SalesOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.SalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Update(c.Request.Context(), orderID, req.ToUpdateInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Confirm handles POST /sales-orders/:id/confirm.
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.Confirm(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// UpdateStatus handles POST /sales-orders/:id/status.
func (h *SalesOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.SalesOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// GeneratePurchaseOrders handles POST /sales-orders/:id/generate-purchase-orders.
func (h *SalesOrderHandler) GeneratePurchaseOrders(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.GeneratePurchaseOrders(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// Readiness handles GET /sales-orders/:id/readiness.
func (h *SalesOrderHandler) Readiness(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	readiness, err := h.service.CheckReadiness(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, readiness)
}

// Fulfillment handles GET /sales-orders/:id/fulfillment.
func (h *SalesOrderHandler) Fulfillment(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	trace, err := h.trace.Trace(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, trace)
}

// RegisterRoutes registers the sales order routes.
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/confirm", h.Confirm)
	rg.POST("/:id/status", admin, h.UpdateStatus)
	rg.POST("/:id/generate-purchase-orders", h.GeneratePurchaseOrders)
	rg.GET("/:id/readiness", h.Readiness)
	rg.GET("/:id/fulfillment", h.Fulfillment)
}
