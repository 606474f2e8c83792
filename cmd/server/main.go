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
	appcontribution "github.com/sgi/backend/internal/application/contribution"
	appfortuna "github.com/sgi/backend/internal/application/fortuna"
	apphousehold "github.com/sgi/backend/internal/application/household"
	appidentity "github.com/sgi/backend/internal/application/identity"
	appnotification "github.com/sgi/backend/internal/application/notification"
	apporg "github.com/sgi/backend/internal/application/org"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/auth"
	"github.com/sgi/backend/internal/infrastructure/cache"
	"github.com/sgi/backend/internal/infrastructure/config"
	"github.com/sgi/backend/internal/infrastructure/email"
	"github.com/sgi/backend/internal/infrastructure/event"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/persistence"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"github.com/sgi/backend/internal/infrastructure/storage"
	"github.com/sgi/backend/internal/infrastructure/telemetry"
	"github.com/sgi/backend/internal/interfaces/http/handler"
	"github.com/sgi/backend/internal/interfaces/http/middleware"
	"github.com/sgi/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry comes first so its log core can be teed into the logger
	bootLog := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	prov, err := telemetry.New(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	if prov.Enabled() {
		logCfg.Extra = []zapcore.Core{prov.ZapCore(logger.ParseLevel(cfg.Log.Level))}
	}
	log := logger.New(logCfg)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SGI backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.DB.AutoMigrate(models.AllModels()...); err != nil {
			log.Fatal("Failed to synchronize sqlite schema", zap.Error(err))
		}
	}
	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   dbSystem,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(func(context.Context) error { return db.Ping() }),
	}

	// Redis backs token revocation and event idempotency when enabled
	var redisClient *redis.Client
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info("Redis connected", zap.String("host", cfg.Redis.Host))
	}
	var idemClient redis.UniversalClient
	if redisClient != nil {
		idemClient = redisClient
	}
	idempotency, err := cache.NewIdempotencyStore(cfg.Event, idemClient, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	receipts, err := newReceiptStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	mailer, err := email.NewSender(cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to initialize email sender", zap.Error(err))
	}

	metrics, err := telemetry.NewWorkflowMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Warn("Workflow metrics disabled", zap.Error(err))
	}

	// Repositories
	actorRepo := persistence.NewGormActorRepository(db.DB)
	orgRepo := persistence.NewGormOrgRepository(db.DB)
	householdRepo := persistence.NewGormHouseholdRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	issueRepo := persistence.NewGormIssueRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)

	// Application services
	clock := shared.SystemClock
	orgService := apporg.NewService(orgRepo, actorRepo, clock)
	actorService := appidentity.NewActorService(actorRepo, orgRepo, orgService, clock)
	householdService := apphousehold.NewService(householdRepo, actorRepo, orgService, txManager, clock)
	reportService := appcontribution.NewReportService(
		reportRepo, ledgerRepo, actorRepo, householdService, orgService, receipts, txManager, clock)
	ledgerService := appcontribution.NewLedgerService(
		ledgerRepo, actorRepo, orgService, clock, cfg.Contribution.ActiveThreshold)
	fortunaService := appfortuna.NewService(purchaseRepo, issueRepo, orgService, receipts, clock)
	notificationService := appnotification.NewService(notificationRepo, clock)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(actorRepo, jwtService, blacklist, clock, log)

	// Decisions reach the member through the inbox and by email
	bus := event.NewInMemoryEventBus(log,
		event.WithDispatchTimeout(cfg.Event.DispatchTimeout),
		event.WithFailureHook(func(ctx context.Context, eventType string, err error) {
			metrics.HandlerFailed(ctx, eventType)
		}),
	)
	notifier := appnotification.NewWorkflowNotifier(actorRepo, notificationService, mailer, metrics, log)
	idemCfg := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idemCfg.TTL = cfg.Event.IdempotencyTTL
	}
	bus.Subscribe(event.NewIdempotentHandler(notifier, idempotency, log, event.WithIdempotencyConfig(idemCfg)),
		notifier.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	reportService.SetEventPublisher(bus)
	reportService.SetMetrics(metrics)
	ledgerService.SetMetrics(metrics)
	householdService.SetEventPublisher(bus)
	fortunaService.SetEventPublisher(bus)
	fortunaService.SetMetrics(metrics)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRateLimit > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		defer loginLimiter.Stop()
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine, err := router.New(router.Options{
		Logger:         log,
		Authenticator:  authService,
		LoginLimiter:   loginLimiter,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        prov.Enabled(),
		ServiceName:    cfg.Telemetry.ServiceName,
		MeterProvider:  otel.GetMeterProvider(),
	}, router.Handlers{
		Health:       handler.NewHealthHandler(version, checks),
		Auth:         handler.NewAuthHandler(authService),
		Actor:        handler.NewActorHandler(actorService),
		Org:          handler.NewOrgHandler(orgService),
		Receipt:      handler.NewReceiptHandler(receipts, handler.DefaultMaxReceiptSize),
		Report:       handler.NewContributionReportHandler(reportService),
		Contribution: handler.NewContributionHandler(ledgerService),
		Household:    handler.NewHouseholdHandler(householdService),
		Fortuna:      handler.NewFortunaHandler(fortunaService),
		Notification: handler.NewNotificationHandler(notificationService),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}
	if err := prov.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newReceiptStore returns the S3 store when storage is enabled, otherwise
// an in-process store that forgets receipts on restart.
func newReceiptStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (shared.ReceiptStore, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, receipts are kept in memory")
		return storage.NewMemoryReceiptStore(cfg.Storage.KeyPrefix), nil
	}
	store, err := storage.NewS3ReceiptStore(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Receipt storage ready",
		zap.String("endpoint", cfg.Storage.Endpoint),
		zap.String("bucket", cfg.Storage.Bucket),
	)
	return store, nil
}
