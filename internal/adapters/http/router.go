package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aqwal-app/aqwal/internal/adapters/http/handlers"
	"github.com/aqwal-app/aqwal/internal/adapters/http/middleware"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/platform/config"
	"github.com/aqwal-app/aqwal/internal/platform/telemetry"
	"github.com/aqwal-app/aqwal/internal/ports"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig contains authentication header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler handles the public quote endpoints.
	QuoteHandler *handlers.QuoteHandler

	// AdminHandler handles quote creation and the bulk import workflow.
	AdminHandler *handlers.AdminHandler

	// Flags gates optional surfaces like the admin API.
	Flags ports.FeatureFlags

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (applied per-route or globally)
//
// Route groups:
//   - /-/ (internal): Health endpoints, no auth required
//   - /api/v1/ (public API): Quote read endpoints
//   - /api/v1/admin/ (admin API): Writes and imports, flag-gated
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Register health endpoints (no auth, no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers the quote API and the flag-gated admin API.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	if cfg.AdminHandler == nil {
		return
	}

	admin := rg.Group("/admin")
	admin.Use(requireFlag(cfg.Flags, ports.FlagAdminAPI))

	if cfg.AuthConfig != nil && cfg.AuthConfig.Enabled {
		admin.Use(
			middleware.RequireAuth(cfg.AuthConfig),
			middleware.RequireRole(cfg.AuthConfig, cfg.AuthConfig.AdminRole),
		)
	}

	cfg.AdminHandler.RegisterAdminRoutes(admin)
}

// requireFlag rejects requests with 403 while the flag is off.
func requireFlag(flags ports.FeatureFlags, flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if flags != nil && !flags.Enabled(c.Request.Context(), flag) {
			AbortWithError(c, domain.NewForbiddenError(flag, "feature is disabled"))
			return
		}

		c.Next()
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
