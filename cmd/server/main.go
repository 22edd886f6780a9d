package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/ecommerce"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storesync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	stagedProductRepo := persistence.NewGormStagedProductRepository(db.DB)
	stagedOrderRepo := persistence.NewGormStagedOrderRepository(db.DB)
	stagedCustomerRepo := persistence.NewGormStagedCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	productLinkRepo := persistence.NewGormProductLinkRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	orderItemRepo := persistence.NewGormOrderItemRepository(db.DB)
	orderNoteRepo := persistence.NewGormOrderNoteRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	tagRepo := persistence.NewGormTagRepository(db.DB)
	syncJobRepo := persistence.NewGormSyncJobRepository(db.DB)
	jobErrorRepo := persistence.NewGormJobErrorRepository(db.DB)

	// Storefront gateway with one rate budget shared across all jobs
	limiter := rate.NewLimiter(rate.Limit(cfg.Shopify.RateLimitRPS), cfg.Shopify.RateLimitBurst)
	gateway, err := ecommerce.NewShopifyGateway(ecommerce.ShopifyConfig{
		APIVersion: cfg.Shopify.APIVersion,
		Timeout:    cfg.Shopify.Timeout,
		MaxRetries: cfg.Shopify.MaxRetries,
	}, limiter, log)
	if err != nil {
		log.Fatal("Failed to create storefront gateway", zap.Error(err))
	}
	credsProvider := ecommerce.NewStaticCredentialsProvider(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken)

	// Status cache and webhook dedupe, Redis-backed with in-memory fallback
	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping() },
	}

	var statusCache appsync.StatusCache
	var dedupeStore cache.DedupeStore
	redisCfg := cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	redisStatusCache, err := cache.NewRedisStatusCache(redisCfg, cfg.Redis.StatusTTL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory status cache and dedupe store", zap.Error(err))
		memStatusCache := cache.NewInMemoryStatusCache(cfg.Redis.StatusTTL)
		defer func() { _ = memStatusCache.Close() }()
		statusCache = memStatusCache

		memDedupe := cache.NewInMemoryDedupeStore()
		defer func() { _ = memDedupe.Close() }()
		dedupeStore = memDedupe
	} else {
		defer func() { _ = redisStatusCache.Close() }()
		statusCache = redisStatusCache
		healthChecks["redis"] = redisStatusCache.Ping

		redisDedupe, err := cache.NewRedisDedupeStore(redisCfg)
		if err != nil {
			log.Fatal("Failed to create Redis dedupe store", zap.Error(err))
		}
		defer func() { _ = redisDedupe.Close() }()
		dedupeStore = redisDedupe
		log.Info("Redis connected")
	}

	// Sync pipeline
	tagService := appsync.NewTagService(tagRepo, log)
	noteExtractor := appsync.NewNoteExtractor(orderNoteRepo, log)
	productLinker := appsync.NewProductLinker(productRepo, variantRepo, stagedProductRepo, productLinkRepo, log)
	orderLinker := appsync.NewOrderLinker(orderRepo, orderItemRepo, customerRepo, productLinkRepo, stagedOrderRepo, tagService, noteExtractor, log)
	customerLinker := appsync.NewCustomerLinker(customerRepo, stagedCustomerRepo, log)

	engine := appsync.NewEngine(
		gateway,
		credsProvider,
		syncJobRepo,
		jobErrorRepo,
		stagedProductRepo,
		stagedOrderRepo,
		stagedCustomerRepo,
		productLinker,
		orderLinker,
		customerLinker,
		statusCache,
		appsync.Options{
			PageSize:          cfg.Sync.PageSize,
			InterPageDelay:    cfg.Sync.InterPageDelay,
			IncrementalBuffer: cfg.Sync.IncrementalBuffer,
		},
		log,
	)

	// Worker pool executing sync runs
	pool, err := scheduler.NewWorkerPool(scheduler.WorkerPoolConfig{
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		QueueSize:         cfg.Scheduler.QueueSize,
	}, engine, log)
	if err != nil {
		log.Fatal("Failed to create worker pool", zap.Error(err))
	}
	if err := pool.Start(context.Background()); err != nil {
		log.Fatal("Failed to start worker pool", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pool.Stop(ctx); err != nil {
			log.Error("Error stopping worker pool", zap.Error(err))
		}
	}()

	syncService := appsync.NewService(syncJobRepo, jobErrorRepo, pool, statusCache, log)
	webhookService := appsync.NewWebhookService(
		engine,
		stagedProductRepo,
		stagedOrderRepo,
		stagedCustomerRepo,
		productRepo,
		variantRepo,
		orderRepo,
		customerRepo,
		log,
	)

	// Recurring incremental sync
	if cfg.Scheduler.Enabled && cfg.Scheduler.Interval > 0 {
		tenantIDs := cfg.Scheduler.TenantUUIDs()
		if len(tenantIDs) == 0 {
			log.Warn("Scheduler enabled but no tenant ids configured, skipping recurring sync")
		} else {
			triggerCfg := scheduler.DefaultIntervalTriggerConfig()
			triggerCfg.Interval = cfg.Scheduler.Interval
			trigger, err := scheduler.NewIntervalTrigger(triggerCfg, syncService,
				scheduler.TenantSourceFunc(func(ctx context.Context) ([]uuid.UUID, error) {
					return tenantIDs, nil
				}), log)
			if err != nil {
				log.Fatal("Failed to create interval trigger", zap.Error(err))
			}
			if err := trigger.Start(context.Background()); err != nil {
				log.Fatal("Failed to start interval trigger", zap.Error(err))
			}
			defer trigger.Stop()
			log.Info("Recurring sync scheduled",
				zap.Duration("interval", cfg.Scheduler.Interval),
				zap.Int("tenants", len(tenantIDs)),
			)
		}
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	ginEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	ginEngine.Use(middleware.TenantWithConfig(middleware.TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system/info"},
		Required:  true,
	}))

	systemHandler := handler.NewSystemHandler(healthChecks)
	systemHandler.RegisterRoot(ginEngine)

	router.NewRouter(ginEngine, router.WithAPIVersion("v1")).
		Register(handler.NewSyncHandler(syncService)).
		Register(handler.NewWebhookHandler(webhookService, dedupeStore, log)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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
