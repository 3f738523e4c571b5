package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/garage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/garage-service/internal/platform/config"
	"github.com/jsamuelsen/garage-service/internal/platform/telemetry"
)

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

	// ParkingHandler handles car and garage endpoints.
	ParkingHandler *handlers.ParkingHandler

	// Timeout is the default request timeout.
	Timeout time.Duration

	// RateLimiter, when set, limits /api/v1 requests per client.
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Context logger - cfg.Logger becomes the request logger
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - ties enter and leave calls of one trip together
//  5. OpenTelemetry - otelgin span, then request metrics and X-Trace-ID
//  6. Logging - request logging (skips /-/ endpoints)
//  7. Rate limit - per-client token bucket on /api/v1 only
//  8. Timeout - request deadline on /api/v1 only
//
// Route groups:
//   - /-/ (internal): health, build info and Prometheus metrics, no auth
//   - /api/v1/ (public API): cars and garages
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Probes get no timeout.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.RateLimiter != nil {
		apiV1.Use(cfg.RateLimiter.Middleware(middleware.SubjectHeader(cfg.AuthConfig)))
	}

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.ParkingHandler != nil {
		cfg.ParkingHandler.RegisterParkingRoutes(apiV1, cfg.AuthConfig)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
	parkingHandler *handlers.ParkingHandler,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AuthConfig:     authCfg,
		AppConfig:      appCfg,
		HealthHandler:  healthHandler,
		ParkingHandler: parkingHandler,
		Timeout:        config.DefaultRequestTimeout,
	}
}
