// Package flags provides a ports.FeatureFlags implementation backed by
// configuration values.
package flags

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var _ ports.FeatureFlags = (*Static)(nil)

// Static serves flags from a fixed map, typically the `features` config section.
// Values may be native types or strings, since environment overrides arrive as
// strings. Flag names are case-insensitive.
type Static struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStatic creates flags from the given values.
func NewStatic(values map[string]any) *Static {
	s := &Static{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[normalize(k)] = v
	}

	return s
}

// Set overrides a single flag.
func (s *Static) Set(flag string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[normalize(flag)] = value
}

func (s *Static) lookup(flag string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[normalize(flag)]

	return v, ok
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	v, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return defaultValue
		}

		return b
	default:
		return defaultValue
	}
}

// GetString implements ports.FeatureFlags.
func (s *Static) GetString(_ context.Context, flag string, defaultValue string) string {
	v, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	if str, ok := v.(string); ok {
		return str
	}

	return defaultValue
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	v, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}

	return defaultValue
}

// GetFloat implements ports.FeatureFlags.
func (s *Static) GetFloat(_ context.Context, flag string, defaultValue float64) float64 {
	v, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}

	return defaultValue
}

// GetJSON implements ports.FeatureFlags. String values are decoded as JSON
// documents; other values are re-encoded and decoded into target.
func (s *Static) GetJSON(_ context.Context, flag string, target any) error {
	v, ok := s.lookup(flag)
	if !ok {
		return domain.NewNotFoundError("feature flag", flag)
	}

	var raw []byte

	if str, isString := v.(string); isString {
		raw = []byte(str)
	} else {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding flag %q: %w", flag, err)
		}

		raw = encoded
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return domain.NewValidationErrorWithValue(flag, "is not valid JSON for the target type", string(raw))
	}

	return nil
}

func normalize(flag string) string {
	return strings.ToLower(strings.TrimSpace(flag))
}
