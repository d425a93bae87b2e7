package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
)

func TestNewAndParsePayload(t *testing.T) {
	sessionID := uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		eventType EventType
		payload   interface{}
		check     func(t *testing.T, got interface{})
	}{
		{
			name:      "tick",
			eventType: EventTypeSpinTick,
			payload:   SpinTickPayload{Name: "Alice", Tick: 3, NextInMs: 120},
			check: func(t *testing.T, got interface{}) {
				p, ok := got.(SpinTickPayload)
				if !ok || p.Name != "Alice" || p.Tick != 3 || p.NextInMs != 120 {
					t.Errorf("got %#v", got)
				}
			},
		},
		{
			name:      "exhausted",
			eventType: EventTypeCandidatesExhausted,
			payload:   CandidatesExhaustedPayload{Excluded: "Bob", Remaining: []string{"Alice"}},
			check: func(t *testing.T, got interface{}) {
				p, ok := got.(CandidatesExhaustedPayload)
				if !ok || p.Excluded != "Bob" || len(p.Remaining) != 1 {
					t.Errorf("got %#v", got)
				}
			},
		},
		{
			name:      "snapshot",
			eventType: EventTypeSessionSnapshot,
			payload:   models.DrawSnapshot{SessionID: sessionID, Names: []string{"A", "B"}, Status: models.DrawStatusIdle},
			check: func(t *testing.T, got interface{}) {
				p, ok := got.(models.DrawSnapshot)
				if !ok || p.SessionID != sessionID || len(p.Names) != 2 {
					t.Errorf("got %#v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := New(sessionID, tt.eventType, at, tt.payload)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if ev.SessionID != sessionID.String() || ev.Type != tt.eventType || !ev.Timestamp.Equal(at) {
				t.Fatalf("envelope = %+v", ev)
			}
			if _, err := uuid.Parse(ev.ID); err != nil {
				t.Fatalf("event id %q is not a uuid", ev.ID)
			}

			got, err := ParsePayload(ev)
			if err != nil {
				t.Fatalf("ParsePayload() error = %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestNewEventIDsAreUnique(t *testing.T) {
	a, _ := New(uuid.New(), EventTypeSelectionCleared, time.Now(), SelectionClearedPayload{})
	b, _ := New(uuid.New(), EventTypeSelectionCleared, time.Now(), SelectionClearedPayload{})
	if a.ID == b.ID {
		t.Error("expected distinct event ids")
	}
}

func TestParsePayloadUnknownType(t *testing.T) {
	ev := &Event{Type: "Nope", Data: json.RawMessage(`{}`)}
	if _, err := ParsePayload(ev); err == nil {
		t.Error("expected an error for an unknown type")
	}
}

func TestNewRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := New(uuid.New(), EventTypeSpinTick, time.Now(), make(chan int)); err == nil {
		t.Error("expected a marshal error")
	}
}
