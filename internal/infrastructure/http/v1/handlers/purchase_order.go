package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"snackexport/internal/core/id"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase_order.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.PurchaseOrderRequest
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

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var q dto.PurchaseOrderListQuery
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

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Get)
}

// Update handles PUT /purchase-orders/:id.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseOrderRequest
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

// Confirm handles POST /purchase-orders/:id/confirm.
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Confirm)
}

// Cancel handles POST /purchase-orders/:id/cancel.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Cancel)
}

// Complete handles POST /purchase-orders/:id/complete.
func (h *PurchaseOrderHandler) Complete(c *gin.Context) {
	read(h.BaseHandler, c, h.service.Complete)
}

// LinkSalesOrders handles POST /purchase-orders/:id/sales-orders.
func (h *PurchaseOrderHandler) LinkSalesOrders(c *gin.Context) {
	h.links(c, h.service.LinkSalesOrders)
}

// UnlinkSalesOrders handles DELETE /purchase-orders/:id/sales-orders.
func (h *PurchaseOrderHandler) UnlinkSalesOrders(c *gin.Context) {
	h.links(c, h.service.UnlinkSalesOrders)
}

func (h *PurchaseOrderHandler) links(c *gin.Context, fn func(context.Context, id.ID, []id.ID) (*purchase_order.PurchaseOrder, error)) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.SalesOrderLinksRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := fn(c.Request.Context(), orderID, req.SalesOrderIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// RegisterRoutes registers the purchase order routes.
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/confirm", h.Confirm)
	rg.POST("/:id/cancel", h.Cancel)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/:id/sales-orders", h.LinkSalesOrders)
	rg.DELETE("/:id/sales-orders", h.UnlinkSalesOrders)
}
