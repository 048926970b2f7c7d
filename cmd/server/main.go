// Package main is the entry point for the snackexport API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snackexport/internal/config"
	corenumerator "snackexport/internal/core/numerator"
	"snackexport/internal/domain/auth"
	"snackexport/internal/domain/fulfillment"
	"snackexport/internal/infrastructure/cache"
	v1 "snackexport/internal/infrastructure/http/v1"
	"snackexport/internal/infrastructure/numerator"
	"snackexport/internal/infrastructure/storage/postgres"
	"snackexport/internal/infrastructure/storage/postgres/document_repo"
	"snackexport/internal/infrastructure/storage/postgres/masterdata_repo"
	"snackexport/internal/infrastructure/storage/postgres/register_repo"
	"snackexport/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		Service:     "snackexport-api",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting snackexport server", "env", cfg.AppEnv)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = int32(cfg.DB.MaxConns)
	poolCfg.MinConns = int32(cfg.DB.MinConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Numerator ---
	numeratorService := numerator.New(pool)
	if corenumerator.ParseStrategy(cfg.NumeratorStrategy) == corenumerator.StrategyStrict {
		numeratorService.StrictOnly()
	}

	// --- Transition journal ---
	auditLog, err := postgres.NewAuditLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit log", "error", err)
	}
	defer auditLog.Close()
	journal := postgres.NewJournal(auditLog, postgres.NewOutboxPublisher(txManager))

	// --- Settings ---
	settings := cache.NewSettingsCache(masterdata_repo.NewSettingsRepo(txManager), pool.Unwrap())
	if err := settings.Start(ctx); err != nil {
		log.Fatalw("failed to start settings cache", "error", err)
	}
	defer settings.Stop()

	// --- Workflows ---
	engine := fulfillment.NewEngine(fulfillment.Deps{
		Repos: fulfillment.Repositories{
			SalesOrders:    document_repo.NewSalesOrderRepo(txManager),
			PurchaseOrders: document_repo.NewPurchaseOrderRepo(txManager),
			ReceivingNotes: document_repo.NewReceivingRepo(txManager),
			Inventory:      register_repo.NewInventoryRepo(txManager),
			ContainerPlans: document_repo.NewContainerPlanRepo(txManager),
			OutboundOrders: document_repo.NewOutboundRepo(txManager),
			Logistics:      document_repo.NewLogisticsRepo(txManager),
		},
		Products:  masterdata_repo.NewProductRepo(txManager),
		Settings:  settings,
		Numerator: numeratorService,
		TxManager: txManager,
		Journal:   journal,
	})

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.Issuer = cfg.Auth.JWTIssuer
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool,
		Engine:           engine,
		JWTValidator:     jwtService,
		AuditLog:         auditLog,
		IdempotencyStore: postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL),
		CORSOrigins:      cfg.HTTP.CORSAllowedOrigins,
		RateLimit:        cfg.HTTP.RateLimit,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	pool.LogStats(shutdownCtx)
	_ = log.Sync()
	log.Info("server stopped")
}
