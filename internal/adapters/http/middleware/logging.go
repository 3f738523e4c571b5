package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/garage-service/internal/platform/logging"
)

// ContextLogger stores logger in the request context. It runs before the ID
// and telemetry middleware, which enrich the stored logger with their IDs.
func ContextLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		}

		c.Next()
	}
}

// Logging logs every request outside the internal /-/ routes at debug when it
// starts and again when it completes, at a level set by the status: 4xx warn,
// 5xx error. Car routes also log the license plate. logger is used when no
// earlier middleware stored one in the context.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		if strings.HasPrefix(req.URL.Path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()
		ctx := req.Context()
		reqLogger := logging.FromContextOr(ctx, logger).With(slog.String("method", req.Method))

		target := req.URL.Path
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}

		if plate := c.Param("plate"); plate != "" {
			reqLogger = reqLogger.With(slog.String("license_plate", plate))
		}

		reqLogger.DebugContext(ctx, "request started",
			slog.String("path", target),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", req.UserAgent()),
		)

		c.Next()

		status := c.Writer.Status()
		reqLogger.Log(ctx, statusLevel(status), "request completed",
			slog.String("route", c.FullPath()),
			slog.String("path", target),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		)
	}
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
