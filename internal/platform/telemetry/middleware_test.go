package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testTelemetry struct {
	engine *gin.Engine
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func newTestEngine(t *testing.T) *testTelemetry {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := newMetrics(mp.Meter(instrumentationName))
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(
		otelgin.Middleware("garage-service", otelgin.WithTracerProvider(tp)),
		middleware("garage-service", metrics),
	)

	return &testTelemetry{engine: engine, spans: spans, reader: reader}
}

func TestMiddleware_TraceIDAvailableToHandler(t *testing.T) {
	tt := newTestEngine(t)

	var seen string
	tt.engine.GET("/api/v1/cars/:plate", func(c *gin.Context) {
		seen = c.GetString(ContextKeyTraceID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	tt.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cars/AB-123-CD", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(HeaderTraceID))

	ended := tt.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, seen, ended[0].SpanContext().TraceID().String())
}

func TestMiddleware_WithoutSpan(t *testing.T) {
	metrics, err := newMetrics(sdkmetric.NewMeterProvider().Meter(instrumentationName))
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware("garage-service", metrics))
	engine.GET("/api/v1/garages", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/garages", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderTraceID))
}

func TestMiddleware_NilMetrics(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware("garage-service", nil))
	engine.GET("/api/v1/garages", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/garages", http.NoBody))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_RecordsRequestMetrics(t *testing.T) {
	tt := newTestEngine(t)
	tt.engine.POST("/api/v1/cars/:plate/leave", func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	for range 2 {
		tt.engine.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodPost, "/api/v1/cars/AB-123-CD/leave", http.NoBody))
	}
	tt.engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))

	var rm metricdata.ResourceMetrics
	require.NoError(t, tt.reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				status, _ := dp.Attributes.Value("http.status_code")
				totals[route.AsString()+" "+status.Emit()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"/api/v1/cars/:plate/leave 409": 2,
		"unmatched 404":                 1,
	}, totals)
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})

	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}
