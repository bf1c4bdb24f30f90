// Package main is the entry point for the aqwal service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aqwal-app/aqwal/internal/adapters/clients"
	"github.com/aqwal-app/aqwal/internal/adapters/clients/acl"
	"github.com/aqwal-app/aqwal/internal/adapters/flags"
	httpadapter "github.com/aqwal-app/aqwal/internal/adapters/http"
	"github.com/aqwal-app/aqwal/internal/adapters/http/handlers"
	"github.com/aqwal-app/aqwal/internal/adapters/memstore"
	"github.com/aqwal-app/aqwal/internal/adapters/poster"
	"github.com/aqwal-app/aqwal/internal/app"
	"github.com/aqwal-app/aqwal/internal/platform/config"
	"github.com/aqwal-app/aqwal/internal/platform/logging"
	"github.com/aqwal-app/aqwal/internal/platform/telemetry"
	"github.com/aqwal-app/aqwal/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	// 6. Create the quote repository. Without a remote URL the service
	// runs local-only on the built-in samples.
	var repo ports.QuoteRepository

	if cfg.Remote.Enabled() {
		apiKey := cfg.Remote.APIKey

		httpClient, clientErr := clients.New(&clients.Config{
			BaseURL:     cfg.Remote.URL,
			ServiceName: "quote-table",
			Timeout:     cfg.Client.Timeout,
			Retry:       cfg.Client.Retry,
			Circuit:     cfg.Client.CircuitBreaker,
			AuthFunc: func(req *http.Request) {
				req.Header.Set("apikey", apiKey)
				req.Header.Set("Authorization", "Bearer "+apiKey)
			},
			Logger: logger,
		})
		if clientErr != nil {
			return fmt.Errorf("creating HTTP client: %w", clientErr)
		}

		quoteTable := acl.NewQuoteTable(acl.QuoteTableConfig{
			Client: httpClient,
			Table:  cfg.Remote.Table,
			Logger: logger,
		})

		if err := healthRegistry.Register(quoteTable); err != nil {
			return fmt.Errorf("registering quote table health check: %w", err)
		}

		repo = quoteTable
	}

	// 7. Create application services
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:      memstore.New(),
		Repository: repo,
		FetchLimit: cfg.Remote.FetchLimit,
		Logger:     logger,
	})

	// Warm the store; a dead remote only logs and falls back to samples.
	if _, err := quoteService.Load(ctx); err != nil {
		logger.Warn("initial quote load failed", slog.Any("error", err))
	}

	importService := app.NewImportService(app.ImportServiceConfig{
		Quotes:       quoteService,
		PreviewLimit: cfg.Import.PreviewLimit,
		Logger:       logger,
	})

	// 8. Create the poster renderer
	renderer, err := poster.New(poster.Config{
		Width:    cfg.Poster.Width,
		Height:   cfg.Poster.Height,
		Scale:    cfg.Poster.Scale,
		FontPath: cfg.Poster.FontPath,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating poster renderer: %w", err)
	}

	// 9. Create handlers and feature flags
	featureFlags := flags.New(cfg.Flags)

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	quoteHandler := handlers.NewQuoteHandler(quoteService, renderer, featureFlags)
	adminHandler := handlers.NewAdminHandler(quoteService, importService)

	// 10. Create HTTP server
	server := httpadapter.New(&cfg.Server, logger)

	// 11. Setup router with all middleware and routes
	routerCfg := httpadapter.RouterConfig{
		Logger:        logger,
		AuthConfig:    &cfg.Auth,
		AppConfig:     &cfg.App,
		HealthHandler: healthHandler,
		QuoteHandler:  quoteHandler,
		AdminHandler:  adminHandler,
		Flags:         featureFlags,
		Timeout:       httpadapter.DefaultRequestTimeout,
	}
	httpadapter.SetupRouter(server.Engine(), routerCfg)

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *httpadapter.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
