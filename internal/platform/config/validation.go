package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key, so an error names the YAML key
// or APP_ variable to fix.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("koanf"); name != "" && name != "-" {
			return name
		}

		return strings.ToLower(fld.Name)
	})

	return v
}

// Validate checks the configuration. The service refuses to start on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	var problems []string

	if c.Server.RequestTimeout > c.Server.WriteTimeout {
		problems = append(problems, fmt.Sprintf("server.request_timeout (%s) must not exceed server.write_timeout (%s)",
			c.Server.RequestTimeout, c.Server.WriteTimeout))
	}

	if r := c.Events.Webhook.Retry; r.InitialInterval > 0 && r.MaxInterval > 0 && r.MaxInterval < r.InitialInterval {
		problems = append(problems, fmt.Sprintf("events.webhook.retry.max_interval (%s) must not be below events.webhook.retry.initial_interval (%s)",
			r.MaxInterval, r.InitialInterval))
	}

	seen := make(map[string]int, len(c.Parking.Garages))
	for i, g := range c.Parking.Garages {
		if first, dup := seen[g.ID]; dup {
			problems = append(problems, fmt.Sprintf("parking.garages[%d].id %q duplicates parking.garages[%d].id", i, g.ID, first))
			continue
		}

		seen[g.ID] = i
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	lines := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		lines = append(lines, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath turns a validator namespace such as
// "Config.parking.garages[1].id" into the koanf path "parking.garages[1].id".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return strings.ToLower(namespace)
	}

	return strings.ToLower(path)
}
