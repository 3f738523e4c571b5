package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/dto"
)

// Timeout gives each request a context deadline. Handlers are not
// interrupted: the parking service checks the context between steps and
// reports a 504 itself. A handler that ran out of time without writing a
// response gets the 504 from here.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			dto.AbortWithCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
		}
	}
}
