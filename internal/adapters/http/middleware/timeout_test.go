package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{name: "bounded", timeout: time.Second, wantDeadline: true},
		{name: "disabled", timeout: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(Timeout(tt.timeout))

			var deadline time.Time
			var hasDeadline bool
			engine.GET("/api/v1/garages", func(c *gin.Context) {
				deadline, hasDeadline = c.Request.Context().Deadline()
				c.Status(http.StatusOK)
			})

			start := time.Now()
			engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/garages", http.NoBody))

			assert.Equal(t, tt.wantDeadline, hasDeadline)
			if tt.wantDeadline {
				assert.WithinDuration(t, start.Add(tt.timeout), deadline, 500*time.Millisecond)
			}
		})
	}
}

func TestTimeout_SilentHandler(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(10 * time.Millisecond))
	engine.GET("/api/v1/cars", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	engine.GET("/api/v1/garages", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.String(http.StatusOK, "partial")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cars", http.NoBody))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"TIMEOUT"`)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/garages", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code, "a written response is kept")
	assert.Equal(t, "partial", w.Body.String())
}
