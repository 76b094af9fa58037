package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"watts-backend/internal/archive"
	"watts-backend/internal/cache"
	"watts-backend/internal/config"
	"watts-backend/internal/database"
	"watts-backend/internal/db"
	apihandlers "watts-backend/internal/handlers"
	"watts-backend/internal/health"
	h "watts-backend/internal/http"
	"watts-backend/internal/influxdb"
	"watts-backend/internal/logging"
	"watts-backend/internal/middleware"
	"watts-backend/internal/repositories"
	"watts-backend/internal/services"
	"watts-backend/migrations"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	pool, err := db.Connect(connectCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	migrator := database.NewMigrator(pool, migrations.FS, ".", logger)
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if cfg.Redis.Enabled {
		if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			logger.Warn("redis unavailable, read-model cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
			defer cache.Close()
		}
	}

	// Repositories
	meterRepo := repositories.NewMeterRepository(pool)
	cycleRepo := repositories.NewBillingCycleRepository(pool)
	readingRepo := repositories.NewReadingRepository(pool)
	slabRepo := repositories.NewSlabRateRepository(pool)
	settingsRepo := repositories.NewSettingsRepository(pool)

	// Services
	meterService := services.NewMeterService(meterRepo, logger)
	cycleService := services.NewBillingCycleService(cycleRepo, readingRepo, logger)
	readingService := services.NewReadingService(readingRepo, logger)
	slabService := services.NewSlabRateService(slabRepo, logger)
	settingsService := services.NewSettingsService(settingsRepo)
	dashboardService := services.NewDashboardService(meterRepo, cycleRepo, readingRepo, slabRepo, settingsRepo, logger)
	analyticsService := services.NewAnalyticsService(meterRepo, cycleRepo, readingRepo, slabRepo, logger)
	statementService := services.NewStatementService(meterRepo, cycleRepo, readingRepo, slabRepo, logger)

	if cache.GetClient() != nil {
		dashboardService.SetCacheTTL(cfg.Redis.TTL)
		analyticsService.SetCacheTTL(cfg.Redis.TTL)
	}

	if cfg.InfluxDB.Enabled {
		influx, err := influxdb.NewClient(ctx, cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org, cfg.InfluxDB.Bucket)
		if err != nil {
			logger.Warn("influxdb unavailable, readings will not be mirrored", zap.Error(err))
		} else {
			defer influx.Close()
			readingService.SetSink(influx)
			logger.Info("mirroring readings to influxdb", zap.String("bucket", cfg.InfluxDB.Bucket))
		}
	}

	if cfg.Archive.Enabled {
		store, err := archive.New(ctx, archive.Options{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.Bucket,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Prefix:    cfg.Archive.Prefix,
		})
		if err != nil {
			logger.Warn("statement archive disabled", zap.Error(err))
		} else {
			statementService.SetUploader(store)
			logger.Info("statement archive enabled", zap.String("bucket", cfg.Archive.Bucket))
		}
	}

	if err := cycleService.CheckRecoverable(ctx); err != nil {
		logger.Warn("billing cycle recovery check failed", zap.Error(err))
	}

	// Health
	checker := health.NewHealthChecker(pool)
	checker.SetCacheProbe(cache.IsHealthy)

	router := h.NewRouter(h.Handlers{
		Meter:        apihandlers.NewMeterHandler(meterService, logger),
		BillingCycle: apihandlers.NewBillingCycleHandler(cycleService, logger),
		Reading:      apihandlers.NewReadingHandler(readingService, logger),
		SlabRate:     apihandlers.NewSlabRateHandler(slabService, logger),
		Settings:     apihandlers.NewSettingsHandler(settingsService, logger),
		Report:       apihandlers.NewReportHandler(dashboardService, analyticsService, statementService, logger),
		Health:       apihandlers.NewHealthHandler(checker),
	},
		middleware.RequestID,
		middleware.RequestLogger(logger.Named("http")),
		middleware.MetricsMiddleware,
		middleware.PanicRecovery(logger),
	)

	handler := middleware.NewCORS(cfg)(handlers.CompressHandler(router))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	return h.NewServer(addr, handler, logger).Run(ctx)
}
