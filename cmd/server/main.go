package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appnotification "github.com/erp/notify/internal/application/notification"
	"github.com/erp/notify/internal/infrastructure/auth"
	"github.com/erp/notify/internal/infrastructure/cache"
	"github.com/erp/notify/internal/infrastructure/config"
	"github.com/erp/notify/internal/infrastructure/logger"
	"github.com/erp/notify/internal/infrastructure/persistence"
	"github.com/erp/notify/internal/infrastructure/scheduler"
	"github.com/erp/notify/internal/infrastructure/telemetry"
	"github.com/erp/notify/internal/infrastructure/transport"
	"github.com/erp/notify/internal/interfaces/http/handler"
	"github.com/erp/notify/internal/interfaces/http/middleware"
	"github.com/erp/notify/internal/interfaces/http/router"
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
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting notification service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing (no-op unless enabled in config)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	notifRepo := persistence.NewGormNotificationRepository(db.DB)
	prefRepo := persistence.NewGormPreferenceRepository(db.DB)
	tplRepo := persistence.NewGormTemplateRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	auditor := persistence.NewAuditRecorder(auditRepo, log)

	// Idempotency store: Redis when enabled, in-memory otherwise
	var idemStore appnotification.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		idemStore = redisStore
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idemStore = memStore
	}

	// Channel transports
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	var emailSender appnotification.EmailSender
	if cfg.Email.Enabled && cfg.Email.Provider == "ses" {
		emailSender, err = transport.NewSESEmailSender(startupCtx, transport.SESConfig{
			Region:      cfg.Email.Region,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize SES transport", zap.Error(err))
		}
		log.Info("SES email transport ready", zap.String("region", cfg.Email.Region))
	} else {
		emailSender = transport.NewLogEmailSender(log)
	}

	var smsSender appnotification.SMSSender
	if cfg.SMS.Enabled && cfg.SMS.Provider == "sns" {
		smsSender, err = transport.NewSNSSMSSender(startupCtx, transport.SNSConfig{
			Region:   cfg.SMS.Region,
			SenderID: cfg.SMS.SenderID,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize SNS transport", zap.Error(err))
		}
		log.Info("SNS SMS transport ready", zap.String("region", cfg.SMS.Region))
	} else {
		smsSender = transport.NewLogSMSSender(log)
	}

	pushSender := transport.NewLogPushSender(log)

	// Application services
	dispatchService := appnotification.NewDispatchService(
		notifRepo, prefRepo, tplRepo, userRepo, auditor,
		emailSender, smsSender, pushSender, idemStore, log,
	)
	notificationService := appnotification.NewNotificationService(notifRepo, log)
	preferenceService := appnotification.NewPreferenceService(prefRepo, auditor, log)

	// Background sweeper for scheduled release and retention cleanup
	sweepLoc, err := time.LoadLocation(cfg.Retention.CleanupTZ)
	if err != nil {
		log.Fatal("Invalid retention timezone", zap.String("tz", cfg.Retention.CleanupTZ), zap.Error(err))
	}
	sweeper, err := scheduler.NewNotificationSweeper(notifRepo, auditor, log, scheduler.SweeperConfig{
		SweepEnabled:     cfg.Sweep.Enabled,
		CheckInterval:    cfg.Sweep.CheckInterval,
		RetentionEnabled: cfg.Retention.Enabled,
		RetainFor:        cfg.Retention.RetainFor,
		CleanupHour:      cfg.Retention.CleanupHour,
		Location:         sweepLoc,
	})
	if err != nil {
		log.Fatal("Invalid sweeper configuration", zap.Error(err))
	}
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sweeper", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			log.Error("Error stopping sweeper", zap.Error(err))
		}
	}()

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	notificationHandler := handler.NewNotificationHandler(notificationService, dispatchService)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
		},
		Logger: log,
	}))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(notificationHandler).
		Register(preferenceHandler).
		Register(systemHandler)
	r.Setup()

	// HTTP server
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
