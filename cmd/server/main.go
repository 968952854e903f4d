package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	addressapp "github.com/chiclet/backend/internal/application/address"
	cartapp "github.com/chiclet/backend/internal/application/cart"
	catalogapp "github.com/chiclet/backend/internal/application/catalog"
	dashboardapp "github.com/chiclet/backend/internal/application/dashboard"
	identityapp "github.com/chiclet/backend/internal/application/identity"
	orderapp "github.com/chiclet/backend/internal/application/order"
	paymentapp "github.com/chiclet/backend/internal/application/payment"
	paymentdomain "github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/auth"
	"github.com/chiclet/backend/internal/infrastructure/cache"
	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/event"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/infrastructure/payment"
	"github.com/chiclet/backend/internal/infrastructure/persistence"
	"github.com/chiclet/backend/internal/infrastructure/printing"
	"github.com/chiclet/backend/internal/infrastructure/storage"
	"github.com/chiclet/backend/internal/infrastructure/telemetry"
	"github.com/chiclet/backend/internal/interfaces/http/handler"
	"github.com/chiclet/backend/internal/interfaces/http/middleware"
	"github.com/chiclet/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting chiclet backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Error reporting, tracing and profiling
	flushSentry, err := telemetry.InitSentry(cfg.Sentry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize sentry", zap.Error(err))
	}
	defer flushSentry()

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFromApp(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := logs.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = telemetry.BridgeLogger(log, telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: logs,
		Level:          logger.ParseLevel(cfg.Log.Level),
	})

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFromApp(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFromApp(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meters.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFromApp(cfg.Profiling), log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
	} else {
		defer func() { _ = profiler.Stop() }()
		if cfg.Profiling.SpanProfiles {
			if err := tracer.EnableSpanProfiles(); err != nil {
				log.Warn("Span profiles not enabled", zap.Error(err))
			}
		}
	}

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
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFromApp(cfg.Telemetry), log).Register(db.DB); err != nil {
		log.Warn("Database tracing not registered", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meters, telemetry.DBMetricsConfigFromApp(cfg.Telemetry), log)
	if err != nil {
		log.Warn("Database metrics not registered", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist and webhook idempotency when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	defer func() { _ = idempotency.Close() }()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Event bus: product deletions clear the product from every cart
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		cartapp.NewProductDeletedHandler(cartRepo, log),
		idempotency,
		shared.DefaultIdempotencyConfig(),
		log,
	))

	// Object storage for product images and archived invoices
	var images catalogapp.ImageStorage
	var invoiceArchive orderapp.InvoiceArchive
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		images, invoiceArchive = s3, s3
		log.Info("Object storage enabled", zap.String("bucket", s3.GetBucket()))
	}

	// Razorpay; without credentials checkout answers PAYMENT_UNAVAILABLE
	var gateway paymentdomain.Gateway
	razorpay, err := payment.NewRazorpayAdapter(payment.RazorpayConfigFromApp(cfg.Payment))
	if err != nil {
		log.Warn("Razorpay not configured, checkout disabled", zap.Error(err))
	} else {
		gateway = razorpay
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, eventBus, log)

	productService := catalogapp.NewProductService(productRepo, images, eventBus, log)
	productService.SetUploadExpiry(cfg.Storage.PresignExpiry)
	cartService := cartapp.NewService(cartRepo, productRepo, log)
	addressService := addressapp.NewService(addressRepo, db, log)

	checkoutService := orderapp.NewCheckoutService(orderapp.CheckoutDeps{
		Items:     cartRepo,
		Addresses: addressRepo,
		Orders:    orderRepo,
		Gateway:   gateway,
		Tx:        db,
		Events:    eventBus,
		Currency:  cfg.Payment.Currency,
		Logger:    log,
	})
	orderService := orderapp.NewService(orderRepo, eventBus, log)

	templates, err := printing.NewTemplateEngine(cfg.Invoice.Locale)
	if err != nil {
		log.Fatal("Failed to parse invoice templates", zap.Error(err))
	}
	renderer := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Invoice.Timeout,
		RemoteURL:      cfg.Invoice.ChromeRemoteURL,
		ExecPath:       cfg.Invoice.ChromePath,
		NoSandbox:      true,
		Logger:         log,
	})
	defer func() { _ = renderer.Close() }()
	invoiceService := orderapp.NewInvoiceService(orderRepo, userRepo, addressRepo, templates, renderer, invoiceArchive,
		orderapp.InvoiceSettings{
			StoreName:    cfg.Invoice.StoreName,
			StoreAddress: cfg.Invoice.StoreAddress,
			Locale:       cfg.Invoice.Locale,
			Timeout:      cfg.Invoice.Timeout,
		}, log)

	paymentService := paymentapp.NewService(paymentRepo)
	webhookService := paymentapp.NewWebhookService(paymentapp.WebhookServiceConfig{
		Gateway:     gateway,
		Payments:    paymentRepo,
		Orders:      orderRepo,
		Idempotency: idempotency,
		Config:      shared.IdempotencyConfig{TTL: cfg.Payment.IdempotencyTTL},
		Events:      eventBus,
		Logger:      log,
	})

	dashboardService := dashboardapp.NewService(orderRepo, productRepo, userRepo, paymentRepo, cfg.App.Location(), log)

	// HTTP handlers
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.Cookie),
		Products:    handler.NewProductHandler(productService),
		Cart:        handler.NewCartHandler(cartService),
		Addresses:   handler.NewAddressHandler(addressService),
		Orders:      handler.NewOrderHandler(checkoutService, orderService),
		AdminOrders: handler.NewAdminOrderHandler(orderService, invoiceService),
		Payments:    handler.NewPaymentHandler(paymentService),
		Users:       handler.NewUserHandler(userService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		Webhook:     handler.NewRazorpayWebhookHandler(webhookService, cfg.Payment.MaxWebhookBytes),
		System:      handler.NewSystemHandler(cfg.App.Name, version, checks),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
	}
	guards := router.Guards{
		Session: middleware.Auth(middleware.AuthConfig{
			Sessions:   authService,
			CookieName: cfg.Cookie.AccessName,
			Logger:     log,
		}),
		Admin:      middleware.RequireAdmin(userRepo, log),
		SuperAdmin: middleware.RequireSuperAdmin(userRepo, log),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		go authLimiter.Run(ctx)
		guards.AuthLimit = middleware.RateLimit(authLimiter)
	}

	engineOpts := router.OptionsFromConfig(cfg, limiter, log)
	engineOpts.Meters = meters
	engine := router.NewEngine(engineOpts)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Mount(r, handlers, guards)
	r.Setup()

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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
