// Package eventbus abstracts the broker the activity events are
// published to. The write path treats publishing as best-effort; a nil
// Publisher disables it entirely.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"blogforge/events"
)

// Event is the broker message payload.
type Event struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher publishes events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewBase builds the envelope header for a typed event.
func NewBase(t events.EventType, source string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   "1",
	}
}

// Envelope serializes a typed event into a broker Event keyed by the
// envelope id.
func Envelope(id string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Payload: data}, nil
}
