package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/masq"
	"github.com/stretchr/testify/assert"
)

func newRedactingLogger(buf *bytes.Buffer, opts ...masq.Option) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr(opts...)}))
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		field  string
		value  string
		redact bool
	}{
		{"password", "hunter2", true},
		{"token", "tok-123", true},
		{"authorization", "Bearer tok-123", true},
		{"secret_config", "sensitive-data", true},
		{"private_key", "-----BEGIN KEY-----", true},
		{"auth", "Basic dXNlcjpwYXNz", true},
		{"header", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln", true},
		{"license_plate", "AB-123-CD", false},
		{"garage_id", "g-capitole", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var buf bytes.Buffer
			newRedactingLogger(&buf).Info("test", slog.String(tt.field, tt.value))

			assert.Contains(t, buf.String(), tt.field)
			if tt.redact {
				assert.NotContains(t, buf.String(), tt.value)
			} else {
				assert.Contains(t, buf.String(), tt.value)
			}
		})
	}
}

func TestNewReplaceAttr_CustomOptions(t *testing.T) {
	var buf bytes.Buffer
	newRedactingLogger(&buf, masq.WithFieldName("owner_phone")).Info("test", slog.String("owner_phone", "+33 6 00 00 00 00"))

	assert.NotContains(t, buf.String(), "+33 6 00 00 00 00")
}

func TestContextWithRedaction(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithRequestID(WithContext(context.Background(), newRedactingLogger(&buf)), "req-1")
	FromContext(ctx).Info("login", slog.String("license_plate", "AB-123-CD"), slog.String("password", "hunter2"))

	assert.Contains(t, buf.String(), "req-1")
	assert.Contains(t, buf.String(), "AB-123-CD")
	assert.NotContains(t, buf.String(), "hunter2")
}
