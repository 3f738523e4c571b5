// Package events provides ports.EventPublisher implementations.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var (
	_ ports.EventPublisher = (*LogPublisher)(nil)
	_ ports.EventPublisher = (*Recorder)(nil)
)

// LogPublisher writes every event as a structured log line.
// It is always on; the webhook is optional.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs through logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPublisher{logger: logger.With(slog.String("component", "events.LogPublisher"))}
}

// Publish implements ports.EventPublisher.
func (p *LogPublisher) Publish(ctx context.Context, event ports.Event) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnavailableError("event log", err.Error())
	}

	logging.FromContextOr(ctx, p.logger).InfoContext(ctx, "event published",
		slog.String("event_type", event.EventType()),
		slog.Any("payload", event.Payload()),
	)

	return nil
}

// Recorder keeps published events in memory, in publish order.
type Recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements ports.EventPublisher.
func (r *Recorder) Publish(_ context.Context, event ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ports.Event, len(r.events))
	copy(out, r.events)

	return out
}
