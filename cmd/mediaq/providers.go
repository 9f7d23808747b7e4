package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api"
	"github.com/WayneDavenport/Mediaq-sub000/internal/config"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
	"github.com/WayneDavenport/Mediaq-sub000/internal/scheduler"
	"github.com/WayneDavenport/Mediaq-sub000/internal/utils"
)

// App is everything a command needs once wired
type App struct {
	Logger    zerolog.Logger
	Engine    *controllers.Engine
	Server    *api.Server
	Scheduler *scheduler.Scheduler
}

var providerSet = wire.NewSet(
	provideLogger,
	provideDatabase,
	provideRegistry,
	provideTracerProvider,
	provideSettings,
	provideEngineOptions,
	provideScheduler,
	controllers.NewMetrics,
	controllers.NewEngine,
	api.NewServer,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	wire.Struct(new(App), "*"),
)

func provideLogger(cfg *config.Config) zerolog.Logger {
	return utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

func provideDatabase(cfg *config.Config, logger zerolog.Logger) (*models.Database, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabaseFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info().Msg("Database initialized")

	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideTracerProvider(cfg *config.Config, logger zerolog.Logger) (trace.TracerProvider, func()) {
	tp, shutdown := utils.NewTracerProvider(cfg.TracingEnabled, logger)
	return tp, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}
}

func provideSettings(cfg *config.Config, db *models.Database) *controllers.SettingsProvider {
	return controllers.NewSettingsProvider(db, controllers.SettingsOptions{
		DefaultPagesPerInterval: cfg.DefaultPagesPerInterval,
		CacheTTL:                cfg.SettingsCacheTTL,
	})
}

func provideEngineOptions(cfg *config.Config) controllers.EngineOptions {
	return controllers.EngineOptions{RetryMaxElapsed: cfg.StoreRetryMaxElapsed}
}

func provideScheduler(cfg *config.Config, engine *controllers.Engine, logger zerolog.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(engine, cfg.QueueAuditSchedule, cfg.QueueAutoRepair, logger)
}
