package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/garage-service/internal/adapters/clients"

const (
	defaultTimeout         = 5 * time.Second
	defaultMaxAttempts     = 3
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxInterval     = 2 * time.Second
	defaultMultiplier      = 2.0

	// jitter spreads each backoff over ±25%.
	jitter = 0.25
)

// RetryPolicy tunes retries. Zero fields take defaults.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}

	if p.InitialInterval <= 0 {
		p.InitialInterval = defaultInitialInterval
	}

	if p.MaxInterval <= 0 {
		p.MaxInterval = defaultMaxInterval
	}

	if p.Multiplier < 1 {
		p.Multiplier = defaultMultiplier
	}

	return p
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialInterval,
		RandomizationFactor: jitter,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxInterval,
	}
}

// Config configures a Client.
type Config struct {
	// Name identifies the endpoint in logs, spans and metrics.
	Name string

	// BaseURL is prefixed to every request path.
	BaseURL string

	// Timeout bounds each attempt.
	Timeout time.Duration

	Retry   RetryPolicy
	Breaker BreakerConfig

	// Transport defaults to a pooled http.Transport.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client calls one HTTP endpoint.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	retry   RetryPolicy
	breaker *Breaker
	logger  *slog.Logger
	tracer  trace.Tracer

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a client. Name is required.
func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, errors.New("client name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Transport == nil {
		cfg.Transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "clients.Client"))

	meter := otel.Meter(instrumentationName)

	calls, err := meter.Int64Counter("garage.client.calls",
		metric.WithDescription("Outbound HTTP calls by downstream and result"))
	if err != nil {
		return nil, fmt.Errorf("creating call counter: %w", err)
	}

	duration, err := meter.Float64Histogram("garage.client.duration",
		metric.WithDescription("Outbound HTTP call duration, retries included"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Client{
		name:    cfg.Name,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		retry:   cfg.Retry.withDefaults(),
		breaker: NewBreaker(cfg.Breaker, func(from, to BreakerState) {
			logger.Warn("circuit breaker state changed",
				slog.String("downstream", cfg.Name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		calls:    calls,
		duration: duration,
	}, nil
}

// BreakerState returns the state of the client's circuit breaker.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

// PostJSON posts body encoded as JSON. The caller closes the response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return c.Do(ctx, http.MethodPost, path, payload, http.Header{"Content-Type": {"application/json"}})
}

// Do sends the request, retrying network errors, 429 and 5xx answers. The
// breaker records one outcome per call. A response is returned for any
// status below 500; the caller closes its body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.name),
		slog.String("method", method),
		slog.String("path", path),
	)

	if !c.breaker.Allow() {
		c.record(ctx, method, "circuit_open", 0, time.Since(start))
		logger.WarnContext(ctx, "call rejected by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("peer.service", c.name),
		),
	)
	defer span.End()

	resp, attempts, err := c.attempt(ctx, method, path, body, header, logger)
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("http.attempts", attempts))

	if err != nil {
		c.breaker.Done(false)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, method, "error", 0, elapsed)
		logger.ErrorContext(ctx, "call failed",
			slog.Int("attempts", attempts),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)

		return nil, err
	}

	c.breaker.Done(true)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	c.record(ctx, method, fmt.Sprintf("%dxx", resp.StatusCode/100), resp.StatusCode, elapsed)
	logger.DebugContext(ctx, "call completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("attempts", attempts),
		slog.Duration("duration", elapsed),
	)

	return resp, nil
}

func (c *Client) attempt(
	ctx context.Context,
	method, path string,
	body []byte,
	header http.Header,
	logger *slog.Logger,
) (*http.Response, int, error) {
	attempts := 0

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		attempts++

		req, err := c.newRequest(ctx, method, path, body, header)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)

		switch {
		case err != nil && (ctx.Err() != nil || !retryable(err)):
			return nil, backoff.Permanent(err)
		case err != nil:
			return nil, err
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			drain(resp)
			return nil, fmt.Errorf("%s answered %s", c.name, resp.Status)
		}

		return resp, nil
	},
		backoff.WithBackOff(c.retry.newBackOff()),
		backoff.WithMaxTries(uint(c.retry.MaxAttempts)), //nolint:gosec // MaxAttempts is positive after withDefaults
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.DebugContext(ctx, "retrying call",
				slog.Int("attempt", attempts+1),
				slog.Duration("backoff", wait),
				slog.Any("error", err),
			)
		}),
	)

	var permanent *backoff.PermanentError

	switch {
	case err == nil:
		return resp, attempts, nil
	case errors.As(err, &permanent):
		return nil, attempts, permanent.Unwrap()
	case ctx.Err() != nil:
		return nil, attempts, err
	default:
		return nil, attempts, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Request, error) {
	url := c.baseURL
	if path != "" {
		url += "/" + strings.TrimPrefix(path, "/")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for k, v := range header {
		req.Header[k] = v
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func (c *Client) record(ctx context.Context, method, result string, status int, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("peer.service", c.name),
		attribute.String("http.method", method),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	c.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	c.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// retryable reports whether a transport error may succeed on retry. The
// caller checks its own context first, so a deadline here is the per-attempt
// timeout.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
