package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
	"github.com/jsamuelsen/garage-service/internal/platform/telemetry"
)

const (
	// ContextKeyTraceID is the gin context key the telemetry middleware stores the trace ID under.
	ContextKeyTraceID = telemetry.ContextKeyTraceID

	// ContextKeyRequestID is the gin context key of the request ID.
	ContextKeyRequestID = "request_id"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var stateErr *domain.InvalidStateError

	switch {
	case errors.As(err, &stateErr):
		// The reason alone, without the wrapping added by the service layers.
		return http.StatusConflict, NewErrorResponse(ErrorCodeInvalidState, stateErr.Reason)

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, messageOf[*domain.NotFoundError](err))

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, messageOf[*domain.ConflictError](err))

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, messageOf[*domain.ValidationError](err))

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, messageOf[*domain.ForbiddenError](err))

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	case domain.IsUnavailable(err):
		// Dependency details stay in the logs.
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"service temporarily unavailable",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// messageOf returns the message of the first T in err's chain, so callers see
// the domain message without the context added on the way up.
func messageOf[T error](err error) string {
	var target T
	if errors.As(err, &target) {
		return target.Error()
	}

	return err.Error()
}

// HandleError writes the error envelope for err and logs server-side failures.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Any("error", err),
			slog.Int("status", status),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an error envelope for adapter-level failures that do
// not originate in the domain, such as malformed bodies.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	).WithTraceID(GetTraceID(c)))
}

// GetTraceID returns the request's trace ID, looking in order at the gin
// context, the active span, then the request ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyTraceID); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}

	return c.Request.Header.Get("X-Request-ID")
}

// AbortWithCode aborts the handler chain with an error envelope. Used by
// middleware that rejects a request before it reaches a handler.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}
