// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	appctx "snackexport/internal/core/context"
	"snackexport/internal/domain/audit"
	"snackexport/internal/domain/documents/purchase_order"
	"snackexport/internal/domain/documents/sales_order"
	"snackexport/internal/domain/fulfillment"
	"snackexport/internal/infrastructure/http/v1/handlers"
	"snackexport/internal/infrastructure/http/v1/middleware"
	"snackexport/internal/infrastructure/storage/postgres"
	"snackexport/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is used by the health endpoints; nil disables them
	Pool *postgres.Pool

	// Engine exposes the fulfillment workflows
	Engine *fulfillment.Engine

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuditLog serves the admin history endpoint when set
	AuditLog handlers.AuditReader

	// IdempotencyStore enables Idempotency-Key handling when set
	IdempotencyStore middleware.IdempotencyStore

	// CORSOrigins is a comma-separated origin list; empty allows any origin
	CORSOrigins string

	// RateLimit is a limiter rate such as "100-S"; empty disables rate limiting
	RateLimit string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Logger != nil {
		router.Use(middleware.Logger(cfg.Logger))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.RateLimit != "" {
		limit, err := middleware.RateLimit(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		router.Use(limit)
	}
	router.Use(middleware.ErrorHandler())

	if cfg.Pool != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Pool)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
			health.GET("/info", healthHandler.Info)
		}
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	v1.Use(middleware.UserContext())
	if cfg.IdempotencyStore != nil {
		v1.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	registerAuditHooks(cfg.Engine)
	registerRoutes(v1, cfg.Engine)
	if cfg.AuditLog != nil {
		auditHandler := handlers.NewAuditHandler(handlers.NewBaseHandler(), cfg.AuditLog)
		v1.GET("/audit/:entityType/:id", middleware.RequireRole(appctx.RoleAdmin), auditHandler.History)
	}

	return router, nil
}

// registerAuditHooks stamps created_by/updated_by on documents edited through hooks.
func registerAuditHooks(e *fulfillment.Engine) {
	e.SalesOrders.Hooks().OnBeforeCreate(func(ctx context.Context, doc *sales_order.SalesOrder) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})
	e.SalesOrders.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *sales_order.SalesOrder) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return nil
	})
	e.PurchaseOrders.Hooks().OnBeforeCreate(func(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})
	e.PurchaseOrders.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return nil
	})
}

func registerRoutes(rg *gin.RouterGroup, e *fulfillment.Engine) {
	base := handlers.NewBaseHandler()

	handlers.NewSalesOrderHandler(base, e.SalesOrders, e.Trace).
		RegisterRoutes(rg.Group("/sales-orders"), middleware.RequireRole(appctx.RoleAdmin))
	handlers.NewPurchaseOrderHandler(base, e.PurchaseOrders).RegisterRoutes(rg.Group("/purchase-orders"))
	handlers.NewReceivingHandler(base, e.Receiving).RegisterRoutes(rg.Group("/receiving-notes"))
	handlers.NewInventoryHandler(base, e.Inventory).RegisterRoutes(rg.Group("/inventory"))
	handlers.NewContainerPlanHandler(base, e.ContainerPlans).RegisterRoutes(rg.Group("/container-plans"))
	handlers.NewOutboundHandler(base, e.Outbound).RegisterRoutes(rg.Group("/outbound-orders"))
	handlers.NewLogisticsHandler(base, e.Logistics).RegisterRoutes(rg.Group("/logistics"))
}
