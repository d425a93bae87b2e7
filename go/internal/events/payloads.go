package events

import (
	"time"
)

// Event payload types that are shared between the draw, gateway and publisher packages

// SpinStartedPayload is the payload for a SpinStarted event
type SpinStartedPayload struct {
	RunID      string    `json:"run_id"`
	Candidates []string  `json:"candidates"`
	StartedAt  time.Time `json:"started_at"`
	EndsAt     time.Time `json:"ends_at"`
	DurationMs int64     `json:"duration_ms"`
}

// SpinTickPayload is the payload for a SpinTick event, one per flashing name
type SpinTickPayload struct {
	RunID    string    `json:"run_id"`
	Name     string    `json:"name"`
	Tick     int       `json:"tick"`
	NextInMs int64     `json:"next_in_ms"`
	TickedAt time.Time `json:"ticked_at"`
}

// SpinCompletedPayload is the payload for a SpinCompleted event
type SpinCompletedPayload struct {
	RunID       string    `json:"run_id"`
	Winner      string    `json:"winner"`
	Candidates  []string  `json:"candidates"`
	Ticks       int       `json:"ticks"`
	CompletedAt time.Time `json:"completed_at"`
}

// SpinCancelledPayload is the payload for a SpinCancelled event
type SpinCancelledPayload struct {
	RunID       string    `json:"run_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// SelectionClearedPayload is sent when the displayed result is cleared before a restart
type SelectionClearedPayload struct {
	ClearedAt time.Time `json:"cleared_at"`
}

// CandidatesExhaustedPayload is sent when an exclusion leaves too few names to spin
type CandidatesExhaustedPayload struct {
	Excluded  string    `json:"excluded"`
	Remaining []string  `json:"remaining"`
	At        time.Time `json:"at"`
}
