package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/backoffice/backend/internal/application/finance"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/cache"
	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/infrastructure/event"
	"github.com/backoffice/backend/internal/infrastructure/logger"
	"github.com/backoffice/backend/internal/infrastructure/persistence"
	"github.com/backoffice/backend/internal/interfaces/http/handler"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
	"github.com/backoffice/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Backoffice Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormCustomerPaymentRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	customerCreditRepo := persistence.NewGormCustomerCreditRepository(db.DB)
	numberGenerator := persistence.NewGormDocumentNumberGenerator(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	txManager := persistence.NewGormTransactionManager(db)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store (Redis when reachable, in-memory otherwise)
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Credit exposure is maintained from invoice, payment, and credit note
	// events. The idempotent wrapper suppresses duplicate deliveries by event ID.
	creditExposureHandler := financeapp.NewCreditExposureHandler(customerCreditRepo, log)
	idempotentExposureHandler := event.NewIdempotentHandler(creditExposureHandler, idempotencyStore, log)
	eventBus.Subscribe(idempotentExposureHandler)

	log.Info("Event handlers registered",
		zap.Strings("credit_exposure_events", creditExposureHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Choose how services publish events. With the outbox processor enabled,
	// events are persisted to outbox_events and delivered by the processor,
	// surviving restarts. Otherwise they go straight onto the in-process bus.
	var eventPublisher shared.EventPublisher = eventBus
	if cfg.Event.ProcessorEnabled {
		eventPublisher = event.NewDurableEventPublisher(outboxRepo, eventSerializer)

		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Initialize application services
	ledgerSync := financeapp.NewLoggingLedgerSync(log)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, numberGenerator, txManager, eventPublisher, ledgerSync, log)
	paymentService := financeapp.NewPaymentService(paymentRepo, invoiceRepo, numberGenerator, txManager, eventPublisher, ledgerSync, idempotencyStore, log)
	creditNoteService := financeapp.NewCreditNoteService(creditNoteRepo, invoiceRepo, numberGenerator, txManager, eventPublisher, log)
	customerCreditService := financeapp.NewCustomerCreditService(customerCreditRepo, invoiceRepo, txManager, eventPublisher, log)

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	customerCreditHandler := handler.NewCustomerCreditHandler(customerCreditService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tenant - Extract tenant context from X-Tenant-ID
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tenant context extraction
	engine.Use(middleware.TenantMiddleware())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Finance domain (invoices, payments, credit notes, customer credit).
	// Mounted directly under the API version, matching the public paths.
	financeRoutes := router.NewDomainGroup("finance", "")

	// Invoice routes
	financeRoutes.POST("/invoices", invoiceHandler.Create)
	financeRoutes.GET("/invoices", invoiceHandler.List)
	financeRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	financeRoutes.PUT("/invoices/:id", invoiceHandler.Update)
	financeRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)
	financeRoutes.POST("/invoices/:id/send", invoiceHandler.Send)
	financeRoutes.POST("/invoices/:id/convert", invoiceHandler.Convert)
	financeRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)

	// Customer payment routes (static paths before :id)
	financeRoutes.POST("/customer-payments", paymentHandler.Create)
	financeRoutes.GET("/customer-payments", paymentHandler.List)
	financeRoutes.GET("/customer-payments/unallocated", paymentHandler.ListUnallocated)
	financeRoutes.GET("/customer-payments/:id", paymentHandler.GetByID)
	financeRoutes.PUT("/customer-payments/:id", paymentHandler.Update)
	financeRoutes.DELETE("/customer-payments/:id", paymentHandler.Delete)
	financeRoutes.POST("/customer-payments/:id/allocate", paymentHandler.Allocate)

	// Credit note routes
	financeRoutes.POST("/credit-notes", creditNoteHandler.Create)
	financeRoutes.GET("/credit-notes", creditNoteHandler.List)
	financeRoutes.GET("/credit-notes/:id", creditNoteHandler.GetByID)
	financeRoutes.PUT("/credit-notes/:id", creditNoteHandler.Update)
	financeRoutes.DELETE("/credit-notes/:id", creditNoteHandler.Delete)
	financeRoutes.POST("/credit-notes/:id/apply", creditNoteHandler.Apply)
	financeRoutes.POST("/credit-notes/:id/void", creditNoteHandler.Void)

	// Customer credit routes
	financeRoutes.POST("/customer-credits", customerCreditHandler.Create)
	financeRoutes.GET("/customer-credits", customerCreditHandler.List)
	financeRoutes.GET("/customer-credits/by-customer/:customerId", customerCreditHandler.GetByCustomer)
	financeRoutes.POST("/customer-credits/by-customer/:customerId/recalculate", customerCreditHandler.Recalculate)
	financeRoutes.GET("/customer-credits/:id", customerCreditHandler.GetByID)
	financeRoutes.PUT("/customer-credits/:id", customerCreditHandler.Update)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(financeRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
