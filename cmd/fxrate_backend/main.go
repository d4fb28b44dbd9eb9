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

	"github.com/SscSPs/currency_conversion_app/internal/adapters/ratesource"
	"github.com/SscSPs/currency_conversion_app/internal/core/ports"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/core/services"
	"github.com/SscSPs/currency_conversion_app/internal/handlers"
	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/SscSPs/currency_conversion_app/internal/platform/config"
	"github.com/SscSPs/currency_conversion_app/internal/platform/migrations"
	"github.com/SscSPs/currency_conversion_app/internal/platform/telemetry"
	boltrepo "github.com/SscSPs/currency_conversion_app/internal/repositories/database/bolt"
	"github.com/SscSPs/currency_conversion_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/currency_conversion_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Currency Conversion API
// @version 1.0
// @description Synchronizes exchange rates from an external provider and answers rate and conversion queries.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key
// @description Static API key.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Application stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewSyncMetrics(registry)

	source, err := newRateSource(cfg, metrics)
	if err != nil {
		return err
	}

	container := services.NewServiceContainer(repos, source, metrics)

	seeded, err := container.Currency.SeedCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed currencies: %w", err)
	}
	if seeded > 0 {
		logger.Info("Seeded currency registry", slog.Int("count", seeded))
	}

	router, err := newRouter(cfg, container, registry, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	scheduler := services.NewSchedulerFromConfig(cfg, container, repos)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return scheduler.Start(gctx)
	})

	return g.Wait()
}

// openStore connects the configured store and returns its repositories with a close func.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverBolt:
		db, err := database.NewBoltDB(cfg.BoltPath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		repos, err := boltrepo.NewRepositoryProvider(db)
		if err != nil {
			database.CloseBoltDB(db)
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to prepare bolt store: %w", err)
		}
		return repos, func() { database.CloseBoltDB(db) }, nil

	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		if err := migrations.Run(cfg.DatabaseURL, migrations.DefaultPath, logger); err != nil {
			database.ClosePgxPool(dbPool)
			return portsrepo.RepositoryProvider{}, nil, err
		}
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
	}
}

// newRateSource builds the provider client selected by EXTERNAL_API_PROVIDER.
func newRateSource(cfg *config.Config, metrics *telemetry.SyncMetrics) (ports.RateSource, error) {
	provider, err := ratesource.ParseProvider(cfg.ExternalAPIProvider)
	if err != nil {
		return nil, err
	}
	parser, err := ratesource.NewParser(provider)
	if err != nil {
		return nil, err
	}
	return ratesource.NewClient(parser,
		ratesource.WithBaseURL(cfg.ExternalAPIBaseURL),
		ratesource.WithAPIKey(cfg.ExternalAPIKey),
		ratesource.WithTimeout(cfg.ExternalAPITimeout),
		ratesource.WithRetry(cfg.ExternalAPIMaxAttempts, cfg.ExternalAPIRetryDelay),
		ratesource.WithMetrics(metrics),
	), nil
}

func newRouter(cfg *config.Config, container *portssvc.ServiceContainer, registry *prometheus.Registry, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader, "X-Request-ID"},
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			MaxAge:        12 * time.Hour,
		}))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	if err := handlers.RegisterRoutes(r, cfg, container, registry); err != nil {
		return nil, err
	}
	return r, nil
}
