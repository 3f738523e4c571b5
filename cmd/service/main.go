// Package main is the entry point of the garage service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/garage-service/internal/adapters/clients"
	"github.com/jsamuelsen/garage-service/internal/adapters/events"
	"github.com/jsamuelsen/garage-service/internal/adapters/flags"
	"github.com/jsamuelsen/garage-service/internal/adapters/http"
	"github.com/jsamuelsen/garage-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/garage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/garage-service/internal/adapters/memory"
	"github.com/jsamuelsen/garage-service/internal/app"
	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/config"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
	"github.com/jsamuelsen/garage-service/internal/platform/metrics"
	"github.com/jsamuelsen/garage-service/internal/platform/telemetry"
	"github.com/jsamuelsen/garage-service/internal/ports"
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

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting garage service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

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

	server, err := newServer(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	serverErr, err := server.Start()
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
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
}

// newServer wires stores, the parking service and the HTTP layer.
// Parking metrics are registered with reg.
func newServer(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*http.Server, error) {
	seed, err := seedGarages(cfg.Parking.Garages)
	if err != nil {
		return nil, fmt.Errorf("seeding garages: %w", err)
	}

	cars := memory.NewCarRepository()
	garages := memory.NewGarageRepository(seed...)

	healthRegistry := ports.NewHealthRegistry().WithCheckTimeout(cfg.Server.RequestTimeout)
	for _, checker := range []ports.HealthChecker{cars, garages} {
		if err := healthRegistry.Register(checker); err != nil {
			return nil, fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	publisher, err := newPublisher(&cfg.Events, logger)
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	featureFlags := flags.NewStatic(cfg.Features)

	parkingService := app.NewParkingService(app.ParkingServiceDeps{
		Cars:      cars,
		Garages:   garages,
		Publisher: publisher,
		Metrics:   metrics.NewCollector(reg, cars.Parked),
		Flags:     featureFlags,
	}, &app.ServiceConfig{
		Logger:         logger,
		MaxPlateLength: cfg.Parking.MaxPlateLength,
	})

	var limiter *middleware.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter = middleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst, rl.IdleTTL)
	}

	gatherer, _ := reg.(prometheus.Gatherer)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:         logger,
		AuthConfig:     &cfg.Auth,
		AppConfig:      &cfg.App,
		HealthHandler:  handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), gatherer),
		ParkingHandler: handlers.NewParkingHandler(parkingService, featureFlags),
		Timeout:        cfg.Server.RequestTimeout,
		RateLimiter:    limiter,
	})

	logger.Info("garage service wired",
		slog.Int("garages", len(seed)),
		slog.Int("max_plate_length", cfg.Parking.MaxPlateLength),
		slog.Bool("auth_enabled", cfg.Auth.Enabled),
		slog.Bool("webhook_enabled", cfg.Events.Webhook.Enabled),
		slog.Bool("rate_limit_enabled", cfg.Server.RateLimit.Enabled),
	)

	return server, nil
}

// newPublisher logs every event, and also posts it to the webhook when one
// is enabled.
func newPublisher(cfg *config.EventsConfig, logger *slog.Logger) (ports.EventPublisher, error) {
	logPublisher := events.NewLogPublisher(logger)

	hook := cfg.Webhook
	if !hook.Enabled {
		return logPublisher, nil
	}

	client, err := clients.New(clients.Config{
		Name:    "event-webhook",
		BaseURL: hook.URL,
		Timeout: hook.Timeout,
		Retry: clients.RetryPolicy{
			MaxAttempts:     hook.Retry.MaxAttempts,
			InitialInterval: hook.Retry.InitialInterval,
			MaxInterval:     hook.Retry.MaxInterval,
			Multiplier:      hook.Retry.Multiplier,
		},
		Breaker: clients.BreakerConfig{
			MaxFailures:   hook.Circuit.MaxFailures,
			OpenTimeout:   hook.Circuit.OpenTimeout,
			HalfOpenLimit: hook.Circuit.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return events.Fanout{logPublisher, events.NewWebhook(client, hook.Path)}, nil
}

// seedGarages converts the configured garages. Duplicate IDs are rejected.
func seedGarages(seeds []config.GarageSeed) ([]domain.Garage, error) {
	garages := make([]domain.Garage, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))

	for _, s := range seeds {
		g, err := domain.NewGarage(s.ID, s.Name, s.Address)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[g.ID]; dup {
			return nil, domain.NewConflictError("garage", "id "+g.ID+" is configured twice")
		}

		seen[g.ID] = struct{}{}
		garages = append(garages, g)
	}

	return garages, nil
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
