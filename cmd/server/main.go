package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	eventapp "github.com/storefront/backend/internal/application/event"
	identityapp "github.com/storefront/backend/internal/application/identity"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	reportapp "github.com/storefront/backend/internal/application/report"
	reviewapp "github.com/storefront/backend/internal/application/review"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Catalog, cart, checkout and order fulfilment for a single-vendor shop.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// OpenTelemetry log export rides along as an extra zap core
	logProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := bootLog
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level))); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for name, shutdown := range map[string]func(context.Context) error{
			"meter":  meterProvider.Shutdown,
			"tracer": tracerProvider.Shutdown,
			"logger": logProvider.Shutdown,
		} {
			if err := shutdown(ctx); err != nil {
				log.Error("Error shutting down telemetry", zap.String("provider", name), zap.Error(err))
			}
		}
	}()
	meter := meterProvider.Meter(telemetry.TracerName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := migrateSchema(db, &cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	dbInstr, err := telemetry.NewDBInstrumentation(telemetry.DBConfig{
		TraceEnabled: cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:   cfg.Telemetry.DBLogFullSQL,
		SlowQuery:    cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:     dbSystem(db.Driver()),
	}, meter, log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := db.DB.Use(dbInstr); err != nil {
		log.Fatal("Failed to install database instrumentation", zap.Error(err))
	}
	dbInstr.StartPoolStatsCollection(rootCtx)
	defer dbInstr.Stop()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Redis backs the token blacklist and event idempotency when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if redisClient, err = cache.NewRedisClient(rootCtx, cfg.Redis); err != nil {
			log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}
	blacklist := auth.NewTokenBlacklist(redisClient)
	idempotencyStore, err := cache.NewIdempotencyStore(rootCtx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Product images
	var images catalogapp.ImageResolver = storage.NewPublicImageStore(cfg.Storage.PublicBaseURL)
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ImageStore(rootCtx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(rootCtx); err != nil {
			log.Warn("Image bucket check failed", zap.String("bucket", s3Store.Bucket()), zap.Error(err))
		}
		images = s3Store
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events are written to the outbox inside the checkout and transition
	// transactions and delivered afterwards by the processor
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer, cfg.Event.MaxRetries)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	storeMetrics, err := telemetry.NewStoreMetrics(telemetry.StoreMetricsConfig{Meter: meter, Logger: log})
	if err != nil {
		log.Fatal("Failed to create store metrics", zap.Error(err))
	}
	storeMetrics.StartLowStockCollection(rootCtx, dashboardRepo, cfg.Catalog.LowStockThreshold, cfg.Telemetry.MetricsInterval)
	defer storeMetrics.Stop()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	productService := catalogapp.NewProductService(productRepo, orderRepo, images, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, txScope, images)
	checkoutService := checkoutapp.NewCheckoutService(txScope, storeMetrics, log)
	orderService := orderapp.NewOrderService(orderRepo, txScope,
		orderapp.ServiceConfig{EnforceTransitions: cfg.Order.EnforceTransitions}, log)
	orderService.SetTransitionRecorder(storeMetrics)
	if cfg.Invoice.Enabled {
		pdfRenderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
			Timeout:   cfg.Invoice.Timeout,
			RemoteURL: cfg.Invoice.ChromeURL,
			NoSandbox: cfg.Invoice.NoSandbox,
			Paper:     printing.ParsePaperSize(cfg.Invoice.Paper),
			Logger:    log,
		})
		defer func() { _ = pdfRenderer.Close() }()
		orderService.SetInvoiceRenderer(pdfRenderer)
	}
	reviewService := reviewapp.NewReviewService(reviewRepo, productRepo)
	wishlistService := wishlistapp.NewWishlistService(wishlistRepo, productRepo, images)
	dashboardConfig := reportapp.DefaultDashboardConfig()
	dashboardConfig.LowStockThreshold = cfg.Catalog.LowStockThreshold
	dashboardService := reportapp.NewDashboardService(dashboardRepo, productRepo, orderRepo, dashboardConfig)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	if cfg.Admin.SeedEmail != "" {
		created, err := authService.SeedAdmin(rootCtx, cfg.Admin.SeedName, cfg.Admin.SeedEmail, cfg.Admin.SeedPassword)
		if err != nil {
			log.Fatal("Failed to seed administrator", zap.Error(err))
		}
		if created {
			log.Info("Administrator account created", zap.String("email", cfg.Admin.SeedEmail))
		}
	}

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	notifier := notificationapp.NewNotificationHandler(userRepo, notification.NewLogSender(log), log)
	idempotencyConfig := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idempotencyConfig.TTL = cfg.Event.IdempotencyTTL
	}
	eventBus.Subscribe(event.NewIdempotentHandler("notification", notifier, idempotencyStore, idempotencyConfig, log))
	log.Info("Event handlers registered", zap.Strings("notification_events", notifier.EventTypes()))

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		processorConfig.CleanupInterval = cfg.Event.CleanupInterval
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		outboxProcessor.SetObserver(storeMetrics)
		if err := outboxProcessor.Start(rootCtx); err != nil {
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

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.Env == "production"

	// Order matters: the request ID must exist before recovery and access
	// logging run, and the tracing span must wrap everything after it.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(securityConfig),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	healthChecks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(version, healthChecks)
	engine.GET("/health", healthHandler.Health)

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateWindow)
	authLimiter.StartCleanup(rootCtx)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Product:   handler.NewProductHandler(productService, cfg.Catalog.LowStockThreshold, cfg.Catalog.LowStockLimit),
		Review:    handler.NewReviewHandler(reviewService),
		Wishlist:  handler.NewWishlistHandler(wishlistService),
		Cart:      handler.NewCartHandler(cartService),
		Checkout:  handler.NewCheckoutHandler(checkoutService),
		Order:     handler.NewOrderHandler(orderService),
		Outbox:    handler.NewOutboxHandler(outboxService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health:    healthHandler,
	}
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.Storefront(handlers, router.StorefrontConfig{
			Authenticator: authService,
			AuthLimiter:   authLimiter,
			Logger:        log,
		})...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on postgres and GORM
// auto-migration on sqlite
func migrateSchema(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver() != "postgres" {
		if !cfg.AutoMigrate {
			return nil
		}
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
