package spinner

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
)

// RunHandle identifies one run of an Engine. The zero value refers to no run.
type RunHandle struct {
	ID  uuid.UUID
	gen uint64
}

// Valid reports whether the handle refers to a run that was actually started.
func (h RunHandle) Valid() bool {
	return h.gen != 0
}

// RunState is a snapshot of the engine's active run slot.
type RunState struct {
	ID            uuid.UUID     `json:"id"`
	Status        Status        `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration"`
	CurrentDelay  time.Duration `json:"current_delay"`
	LastEmitted   string        `json:"last_emitted"`
	Ticks         int           `json:"ticks"`

	gen uint64
}

// Handle returns the handle of the run described by the state.
func (s RunState) Handle() RunHandle {
	return RunHandle{ID: s.ID, gen: s.gen}
}
