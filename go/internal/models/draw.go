package models

import (
	"time"

	"github.com/google/uuid"
)

// DrawStatus is the displayed state of a draw session.
type DrawStatus string

const (
	DrawStatusIdle      DrawStatus = "IDLE"
	DrawStatusSelecting DrawStatus = "SELECTING"
	DrawStatusDecided   DrawStatus = "DECIDED"
	DrawStatusExhausted DrawStatus = "EXHAUSTED"
)

// Winner is one committed pick of a session.
type Winner struct {
	Name      string    `json:"name"`
	RunID     uuid.UUID `json:"run_id"`
	DecidedAt time.Time `json:"decided_at"`
}

// DrawSnapshot is the state a client renders for a draw session.
type DrawSnapshot struct {
	SessionID uuid.UUID  `json:"session_id"`
	Names     []string   `json:"names"`
	Selected  *string    `json:"selected,omitempty"`
	Status    DrawStatus `json:"status"`
	CanSpin   bool       `json:"can_spin"`
	RunID     *uuid.UUID `json:"run_id,omitempty"`
	Winners   []Winner   `json:"winners"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
