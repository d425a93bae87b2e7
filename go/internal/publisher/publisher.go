package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/rs/zerolog/log"
)

// Publisher sends session events to a message bus
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)

// envelope is the wire form shared by every bus publisher
type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func marshalEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(envelope{
		EventID:   event.ID,
		EventType: string(event.Type),
		SessionID: event.SessionID,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:   event.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// LogPublisher only logs events. It is used when no bus is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event events.Event) error {
	data, err := marshalEnvelope(event)
	if err != nil {
		return err
	}

	log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("session_id", event.SessionID).
		Int("size", len(data)).
		Msg("publishing event")
	return nil
}
