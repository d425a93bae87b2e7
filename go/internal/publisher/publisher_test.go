package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/nats-io/nats.go/jetstream"
)

func testEvent(t *testing.T) *events.Event {
	t.Helper()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ev, err := events.New(uuid.New(), events.EventTypeSpinCompleted, at, events.SpinCompletedPayload{
		RunID:  uuid.NewString(),
		Winner: "Alice",
	})
	if err != nil {
		t.Fatalf("events.New() error = %v", err)
	}
	return ev
}

func TestMarshalEnvelope(t *testing.T) {
	ev := testEvent(t)

	data, err := marshalEnvelope(*ev)
	if err != nil {
		t.Fatalf("marshalEnvelope() error = %v", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.EventID != ev.ID || env.SessionID != ev.SessionID {
		t.Errorf("envelope ids = %s/%s, want %s/%s", env.EventID, env.SessionID, ev.ID, ev.SessionID)
	}
	if env.EventType != "SpinCompleted" {
		t.Errorf("EventType = %s, want SpinCompleted", env.EventType)
	}
	if env.Timestamp != "2024-03-01T12:00:00.000Z" {
		t.Errorf("Timestamp = %s", env.Timestamp)
	}

	var payload events.SpinCompletedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Winner != "Alice" {
		t.Errorf("Winner = %s, want Alice", payload.Winner)
	}
}

func TestSubject(t *testing.T) {
	cfg := DefaultJetStreamConfig()
	if got := Subject(cfg.SubjectPrefix, events.EventTypeSpinStarted); got != "plouf.events.SpinStarted" {
		t.Errorf("Subject() = %s", got)
	}
}

func TestStreamConfigEqual(t *testing.T) {
	p := &NATSPublisher{config: DefaultJetStreamConfig()}
	a := p.streamConfig()
	b := p.streamConfig()
	if !streamConfigEqual(a, b) {
		t.Error("identical configs should be equal")
	}

	b.Subjects = []string{"other.>"}
	if streamConfigEqual(a, b) {
		t.Error("different subjects should not be equal")
	}

	c := p.streamConfig()
	c.MaxAge = time.Hour
	if streamConfigEqual(a, c) {
		t.Error("different max age should not be equal")
	}
	if a.Retention != jetstream.LimitsPolicy {
		t.Errorf("Retention = %v, want limits", a.Retention)
	}
}

func TestLogPublisher(t *testing.T) {
	if err := NewLogPublisher().Publish(context.Background(), *testEvent(t)); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
