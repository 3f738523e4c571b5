package events

import (
	"context"
	"errors"

	"github.com/jsamuelsen/garage-service/internal/ports"
)

var _ ports.EventPublisher = Fanout(nil)

// Fanout publishes every event to each publisher in order. All publishers
// are tried; their errors are joined.
type Fanout []ports.EventPublisher

// Publish implements ports.EventPublisher.
func (f Fanout) Publish(ctx context.Context, event ports.Event) error {
	var errs []error

	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
