package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oguzbenturk/ukcworld-rates/internal/adapters/database/pgsql"
	"github.com/oguzbenturk/ukcworld-rates/internal/adapters/notify"
	"github.com/oguzbenturk/ukcworld-rates/internal/adapters/ratesource"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/handlers"
	"github.com/oguzbenturk/ukcworld-rates/internal/middleware"
	"github.com/oguzbenturk/ukcworld-rates/internal/platform/config"
	"github.com/oguzbenturk/ukcworld-rates/internal/scheduler"
	"github.com/oguzbenturk/ukcworld-rates/pkg/database"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	currencyRepo := pgsql.NewCurrencyRepository(dbPool)
	logRepo := pgsql.NewRateUpdateLogRepository(dbPool)

	// Rate source chain: primary scrape, secondary REST API, last-known-good cache.
	chain := ratesource.NewChain(logger,
		ratesource.NewPrimary(ratesource.PrimaryOptions{
			BaseURL: cfg.PrimarySourceURL,
			Timeout: cfg.FetchTimeout,
		}),
		ratesource.NewSecondary(ratesource.SecondaryOptions{
			BaseURL:      cfg.SecondarySourceURL,
			BaseCurrency: cfg.BaseCurrency,
			APIKey:       cfg.SecondaryAPIKey,
			Timeout:      cfg.FetchTimeout,
		}),
		ratesource.NewCache(currencyRepo),
	)

	var notifier ports.FailureNotifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.FetchTimeout, logger)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	// Services
	currencyService := services.NewCurrencyService(currencyRepo, logRepo)
	rateUpdateService := services.NewRateUpdateService(currencyService, chain, notifier, cfg.UpdateConcurrency)
	transparencyService := services.NewTransparencyService(currencyService)

	serviceContainer := &portssvc.ServiceContainer{
		Currency:     currencyService,
		RateUpdater:  rateUpdateService,
		Transparency: transparencyService,
	}

	// Scheduled due-check tick
	sched := scheduler.New(scheduler.Options{Interval: cfg.TickInterval}, rateUpdateService, logger)
	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Scheduler stopped", slog.String("error", err.Error()))
		}
	}()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	limiterInstance := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 120})
	r.Use(middleware.RateLimit(limiterInstance))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx/v5/stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
