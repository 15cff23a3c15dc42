package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"areadata.app/api"
	"areadata.app/breaker"
	"areadata.app/cache"
	"areadata.app/config"
	"areadata.app/database"
	"areadata.app/metrics"
	"areadata.app/repository"
	"areadata.app/scheduler"
	"areadata.app/service"
	"areadata.app/upstream"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing snapshot store...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Snapshot store initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	backend, err := app.createCache()
	if err != nil {
		return fmt.Errorf("create response cache: %w", err)
	}
	responses := cache.NewInstrumentedCache(backend, app.config.Cache.Backend)

	upstreamMetrics := metrics.NewUpstreamMetrics()

	breakers := breaker.NewRegistry(breaker.Config{
		FailureThreshold: app.config.Breaker.FailureThreshold,
		Cooldown:         app.config.Breaker.Cooldown,
	}, upstreamMetrics)

	registry := upstream.NewRegistry(&app.config.Upstreams)
	slog.Info("Configured upstreams", "upstreams", registry.IDs())

	policy := upstream.Policy{
		MaxAttempts:    app.config.Retry.MaxAttempts,
		BaseDelay:      app.config.Retry.BaseDelay,
		MaxDelay:       app.config.Retry.MaxDelay,
		AttemptTimeout: app.config.Retry.AttemptTimeout,
	}

	snapshotRepo := repository.NewSnapshotRepository(app.db)

	metricService := service.NewMetricService(
		registry,
		upstream.NewFetcher(),
		upstream.NewExecutor(breakers, upstreamMetrics),
		responses,
		policy,
		service.TTLConfig{
			SeriesTTL: app.config.Cache.SeriesTTL,
			PlacesTTL: app.config.Cache.PlacesTTL,
			StaleTTL:  app.config.Cache.StaleTTL,
		},
		snapshotRepo,
	)

	app.server = api.NewServer(app.config, metricService, breakers, responses, responses.Metrics(), snapshotRepo)
	app.scheduler = scheduler.NewScheduler(&app.config.Refresh, metricService, snapshotRepo)

	slog.Info("Services initialized successfully")
	return nil
}

// createCache selects the response cache backend from configuration.
func (app *Application) createCache() (cache.Cache, error) {
	switch app.config.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr:         app.config.Cache.RedisAddr,
			Password:     app.config.Cache.RedisPassword,
			DB:           app.config.Cache.RedisDB,
			DialTimeout:  app.config.Cache.RedisDialTimeout,
			ReadTimeout:  app.config.Cache.RedisReadTimeout,
			WriteTimeout: app.config.Cache.RedisWriteTimeout,
		})
	default:
		return cache.NewMemoryCache(), nil
	}
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
