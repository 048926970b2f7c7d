package handlers

import (
	"github.com/gin-gonic/gin"

	"snackexport/internal/domain/registers/inventory"
	"snackexport/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves the read side of the inventory ledger.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// List handles GET /inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	var q dto.InventoryListQuery
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

// ByProduct handles GET /inventory/by-product.
func (h *InventoryHandler) ByProduct(c *gin.Context) {
	var q dto.InventoryTotalsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := h.service.ByProduct(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// BySalesOrder handles GET /inventory/by-sales-order/:id.
func (h *InventoryHandler) BySalesOrder(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	stock, err := h.service.BySalesOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stock)
}

// Get handles GET /inventory/:id.
func (h *InventoryHandler) Get(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	rec, err := h.service.Get(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// RegisterRoutes registers the inventory routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/by-product", h.ByProduct)
	rg.GET("/by-sales-order/:id", h.BySalesOrder)
	rg.GET("/:id", h.Get)
}
