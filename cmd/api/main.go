// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/biblioflow/inventory-update/internal/adapters/archive"
	"github.com/biblioflow/inventory-update/internal/adapters/db"
	redis_a "github.com/biblioflow/inventory-update/internal/adapters/redis_adapter"
	"github.com/biblioflow/inventory-update/internal/adapters/storage"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/core/services"
	"github.com/biblioflow/inventory-update/internal/handlers"
	"github.com/biblioflow/inventory-update/internal/handlers/middleware"
	"github.com/biblioflow/inventory-update/internal/pkg/config"
	"github.com/biblioflow/inventory-update/internal/pkg/logger"
	"github.com/biblioflow/inventory-update/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json").Logger

	slogger.Info("starting inventory update service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if cfg.IsProduction() {
		if secretName := os.Getenv("AWS_SECRET_NAME"); secretName != "" {
			sm, err := config.NewAWSSecretsManager(cfg.AWS.Region, secretName, slogger)
			if err != nil {
				slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
				os.Exit(1)
			}
			if err := cfg.ApplySecrets(ctx, sm, slogger); err != nil {
				slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if err := runMigrations(ctx, cfg, slogger); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		if cfg.IsProduction() {
			os.Exit(1)
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	storageClient *storage.Client
	locations     ports.LocationResolver
	updateLog     ports.UpdateLogRepository

	upsertService *services.UpsertService
	deleteService *services.DeleteService
	fetchService  *services.FetchService

	updateHandler *handlers.UpdateHandler
	fetchHandler  *handlers.FetchHandler
	healthHandler *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Database connection
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	// Redis connection
	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	// Asynq client for the single-record retry queue
	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	// Inventory storage client
	deps.storageClient = storage.NewClient(storage.Config{
		BaseURL:        cfg.Storage.BaseURL,
		Token:          cfg.Storage.Token,
		Timeout:        cfg.Storage.Timeout,
		RateLimitRPS:   cfg.Storage.RateLimitRPS,
		RateLimitBurst: cfg.Storage.RateLimitBurst,
	}, logger)

	// Location reference data, cached in Redis
	deps.locations = redis_a.NewLocationCache(redisClient, deps.storageClient, cfg.Redis.TTL, logger)

	// Batch outcome log
	deps.updateLog = db.NewUpdateLogRepository(database, logger)

	// Failed batch archive is best effort; the service runs without it.
	var archiver ports.Archiver
	if cfg.AWS.S3Bucket != "" {
		s3Archive, err := archive.NewS3Archive(ctx, &archive.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			Prefix:          cfg.AWS.S3Prefix,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, logger)
		if err != nil {
			logger.Warn("failed batch archive unavailable", slog.String("error", err.Error()))
		} else {
			archiver = s3Archive
		}
	}

	merge, err := mergePolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	retryQueue := workers.NewEnqueuer(deps.asynqClient, cfg.Inventory.RetryQueue, logger)

	upsertOpts := []services.UpsertOption{
		services.WithUpdateLog(deps.updateLog),
		services.WithRetryQueue(retryQueue),
	}
	if archiver != nil {
		upsertOpts = append(upsertOpts, services.WithArchiver(archiver))
	}
	if cfg.Inventory.Institution != "" {
		upsertOpts = append(upsertOpts, services.WithInstitution(cfg.Inventory.Institution))
	}

	deps.upsertService = services.NewUpsertService(deps.storageClient, deps.locations, logger, merge, upsertOpts...)
	deps.deleteService = services.NewDeleteService(deps.storageClient, deps.locations, logger, deps.updateLog)
	deps.fetchService = services.NewFetchService(deps.storageClient, logger)

	deps.updateHandler = handlers.NewUpdateHandler(deps.upsertService, deps.deleteService, logger)
	deps.fetchHandler = handlers.NewFetchHandler(deps.fetchService, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		redisClient,
		deps.asynqInspector,
		cfg,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func mergePolicyFromConfig(cfg *config.Config) (services.MergePolicy, error) {
	switch cfg.Inventory.RetentionPolicy {
	case "retainAllOmitted":
		return services.MergePolicy{Policy: services.RetainAllOmitted, Properties: cfg.Inventory.RetainedProperties}, nil
	case "retainListed":
		return services.MergePolicy{Policy: services.RetainListed, Properties: cfg.Inventory.RetainedProperties}, nil
	default:
		return services.MergePolicy{}, fmt.Errorf("unknown retention policy %q", cfg.Inventory.RetentionPolicy)
	}
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps)

	l := logger.NewLogger(&logger.LogConfig{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})

	// Middleware chain, innermost first
	var handler http.Handler = mux
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	if cfg.Server.RateLimitPerMin > 0 {
		handler = middleware.RateLimit(cfg.Server.RateLimitPerMin, time.Minute)(handler)
	}
	handler = middleware.Logger(l)(handler)
	handler = middleware.Recovery(slogger)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	// Every inventory route is tenant scoped
	tenantScoped := func(h http.HandlerFunc) http.Handler {
		return middleware.Tenant(h)
	}

	mux.Handle("PUT /inventory-batch-upsert-hrid", tenantScoped(deps.updateHandler.BatchUpsertHRID))
	mux.Handle("DELETE /inventory-batch-upsert-hrid", tenantScoped(deps.updateHandler.DeleteByHRID))
	mux.Handle("PUT /shared-inventory-upsert-matchkey", tenantScoped(deps.updateHandler.SharedUpsertMatchKey))
	mux.Handle("DELETE /shared-inventory-upsert-matchkey", tenantScoped(deps.updateHandler.DeleteSharedInstitution))
	mux.Handle("GET /inventory-upsert-fetch/{id}", tenantScoped(deps.fetchHandler.FetchRecordSet))

	// Probes stay outside the tenant scope
	mux.HandleFunc("GET /healthz", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
