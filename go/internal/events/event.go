package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
)

// Event is the envelope for everything a draw session emits
type Event struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of session event
type EventType string

const (
	EventTypeSpinStarted         EventType = "SpinStarted"
	EventTypeSpinTick            EventType = "SpinTick"
	EventTypeSpinCompleted       EventType = "SpinCompleted"
	EventTypeSpinCancelled       EventType = "SpinCancelled"
	EventTypeSelectionCleared    EventType = "SelectionCleared"
	EventTypeCandidatesExhausted EventType = "CandidatesExhausted"

	// EventTypeSessionSnapshot is sent to a client when it connects
	EventTypeSessionSnapshot EventType = "SessionSnapshot"
)

// New wraps payload in an envelope stamped with a fresh id
func New(sessionID uuid.UUID, eventType EventType, at time.Time, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}, nil
}

// ParsePayload parses event data into the appropriate payload struct
func ParsePayload(event *Event) (interface{}, error) {
	switch event.Type {
	case EventTypeSpinStarted:
		var payload SpinStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSpinTick:
		var payload SpinTickPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSpinCompleted:
		var payload SpinCompletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSpinCancelled:
		var payload SpinCancelledPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSelectionCleared:
		var payload SelectionClearedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeCandidatesExhausted:
		var payload CandidatesExhaustedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionSnapshot:
		var payload models.DrawSnapshot
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}
