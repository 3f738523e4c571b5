package ports

import (
	"context"
)

// Feature flag names understood by the service.
const (
	// FlagParkingEvents toggles publishing of car.entered / car.left events.
	FlagParkingEvents = "parking-events"

	// FlagHistoryTextFormat toggles the plain-text history endpoint.
	FlagHistoryTextFormat = "history-text-format"
)

// FeatureFlags defines the contract for feature flag evaluation.
// Every getter falls back to defaultValue when the flag is unknown or has the
// wrong type.
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetString retrieves a string feature flag value.
	GetString(ctx context.Context, flag string, defaultValue string) string

	// GetInt retrieves an integer feature flag value.
	GetInt(ctx context.Context, flag string, defaultValue int) int

	// GetFloat retrieves a float feature flag value.
	GetFloat(ctx context.Context, flag string, defaultValue float64) float64

	// GetJSON decodes a structured flag value into target.
	// Returns domain.ErrNotFound if the flag doesn't exist.
	GetJSON(ctx context.Context, flag string, target any) error
}
