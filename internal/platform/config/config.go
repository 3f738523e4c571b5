// Package config loads the service configuration with koanf and validates it
// with go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultMaxPlateLength is the default longest accepted license plate, in runes.
	DefaultMaxPlateLength = 16

	// DefaultRequestTimeout bounds each /api/v1 request.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Parking   ParkingConfig   `koanf:"parking"   validate:"required"`
	Events    EventsConfig    `koanf:"events"`
	Features  map[string]any  `koanf:"features"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int             `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string          `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration   `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration   `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration   `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64           `koanf:"max_request_size" validate:"required,min=1"`
	RequestTimeout  time.Duration   `koanf:"request_timeout"  validate:"min=0"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	JWKSEndpoint  string `koanf:"jwks_endpoint"  validate:"required_if=Enabled true,omitempty,url"`
	Issuer        string `koanf:"issuer"         validate:"required_if=Enabled true"`
	Audience      string `koanf:"audience"       validate:"required_if=Enabled true"`
	RolesHeader   string `koanf:"roles_header"`
	SubjectHeader string `koanf:"subject_header"`
}

// ParkingConfig contains settings of the parking service.
type ParkingConfig struct {
	MaxPlateLength int          `koanf:"max_plate_length" validate:"required,min=1,max=64"`
	Garages        []GarageSeed `koanf:"garages"          validate:"dive"`
}

// GarageSeed is a garage registered at startup.
type GarageSeed struct {
	ID      string `koanf:"id"      validate:"required"`
	Name    string `koanf:"name"    validate:"required"`
	Address string `koanf:"address"`
}

// RateLimitConfig limits /api/v1 requests per client.
type RateLimitConfig struct {
	Enabled           bool          `koanf:"enabled"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"required_if=Enabled true,omitempty,gt=0"`
	Burst             int           `koanf:"burst"               validate:"omitempty,min=1"`
	IdleTTL           time.Duration `koanf:"idle_ttl"            validate:"omitempty,min=1s"`
}

// EventsConfig configures where parking events go besides the log.
type EventsConfig struct {
	Webhook WebhookConfig `koanf:"webhook"`
}

// WebhookConfig configures the parking event webhook.
type WebhookConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"     validate:"required_if=Enabled true,omitempty,url"`
	Path    string        `koanf:"path"`
	Timeout time.Duration `koanf:"timeout" validate:"omitempty,min=100ms"`
	Retry   RetryConfig   `koanf:"retry"`
	Circuit CircuitConfig `koanf:"circuit"`
}

// RetryConfig configures retries of outbound calls.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"omitempty,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"omitempty,min=1ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"omitempty,min=1ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"omitempty,min=1"`
}

// CircuitConfig configures the circuit breaker of outbound calls.
type CircuitConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"omitempty,min=1"`
	OpenTimeout   time.Duration `koanf:"open_timeout"    validate:"omitempty,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"omitempty,min=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "garage-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.request_timeout":  DefaultRequestTimeout.String(),

		"server.rate_limit.enabled":             false,
		"server.rate_limit.requests_per_second": 10.0,
		"server.rate_limit.burst":               20,
		"server.rate_limit.idle_ttl":            "10m",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "garage-service",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.jwks_endpoint":  "",
		"auth.issuer":         "",
		"auth.audience":       "",
		"auth.roles_header":   "X-User-Roles",
		"auth.subject_header": "X-User-ID",

		"parking.max_plate_length": DefaultMaxPlateLength,

		"events.webhook.enabled":                 false,
		"events.webhook.url":                     "",
		"events.webhook.path":                    "/events",
		"events.webhook.timeout":                 "2s",
		"events.webhook.retry.max_attempts":      3,
		"events.webhook.retry.initial_interval":  "100ms",
		"events.webhook.retry.max_interval":      "1s",
		"events.webhook.retry.multiplier":        2.0,
		"events.webhook.circuit.max_failures":    5,
		"events.webhook.circuit.open_timeout":    "30s",
		"events.webhook.circuit.half_open_limit": 1,

		"features.parking-events":      true,
		"features.history-text-format": true,
	}
}

// EnvPrefix marks environment variables that override configuration.
const EnvPrefix = "APP_"

// Load builds the configuration from, lowest precedence first: defaults,
// configs/base.yaml, configs/<profile>.yaml and APP_ environment variables.
// Missing files are skipped.
func Load(profile string) (*Config, error) {
	return LoadDir("configs", profile)
}

// LoadDir is Load reading the YAML files from dir.
func LoadDir(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyMapper(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SERVER_READ_TIMEOUT to server.read_timeout and
// APP_FEATURES_PARKING_EVENTS to features.parking-events by folding the
// separators of the keys already loaded. Unknown variables get one level per
// underscore.
func envKeyMapper(known []string) func(string) string {
	folded := make(map[string]string, len(known))
	for _, key := range known {
		folded[foldKey(key)] = key
	}

	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key, ok := folded[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

func foldKey(key string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(strings.ToLower(key))
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
