package events

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jsamuelsen/garage-service/internal/adapters/clients"
	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var _ ports.EventPublisher = (*Webhook)(nil)

const webhookDependency = "event webhook"

// envelope is the JSON body posted for every event.
type envelope struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sentAt"`
	Data   any       `json:"data"`
}

// Webhook posts events to an HTTP endpoint.
type Webhook struct {
	client *clients.Client
	path   string
	now    func() time.Time
}

// NewWebhook creates a publisher posting to path on the client's base URL.
func NewWebhook(client *clients.Client, path string) *Webhook {
	return &Webhook{client: client, path: path, now: time.Now}
}

// Publish implements ports.EventPublisher. Any answer outside 2xx fails.
func (w *Webhook) Publish(ctx context.Context, event ports.Event) error {
	resp, err := w.client.PostJSON(ctx, w.path, envelope{
		Type:   event.EventType(),
		SentAt: w.now().UTC(),
		Data:   event.Payload(),
	})
	if err != nil {
		return domain.NewUnavailableError(webhookDependency, err.Error())
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.NewUnavailableError(webhookDependency, fmt.Sprintf("answered %s", resp.Status))
	}

	return nil
}
