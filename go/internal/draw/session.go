package draw

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/candidates"
	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/maelkermann/plouf-plouf/go/internal/spinner"
	"github.com/rs/zerolog/log"
)

// Session is one user's name list, its spinner and the displayed result.
//
// Lock order is opMu, then the engine lock, then mu. Engine callbacks only
// take mu, so opMu holders must never call into the engine while holding mu.
type Session struct {
	id      uuid.UUID
	engine  *spinner.Engine
	manager *Manager

	opMu sync.Mutex

	mu        sync.Mutex
	names     *candidates.Set
	selected  *string
	selecting bool
	exhausted bool
	winner    *models.Winner
	runID     *uuid.UUID
	winners   []models.Winner
	createdAt time.Time
	updatedAt time.Time
}

func (s *Session) snapshot() *models.DrawSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *models.DrawSnapshot {
	snap := &models.DrawSnapshot{
		SessionID: s.id,
		Names:     s.names.Names(),
		Status:    models.DrawStatusIdle,
		CanSpin:   s.names.CanDraw() && !s.selecting,
		Winners:   append([]models.Winner{}, s.winners...),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.selected != nil {
		name := *s.selected
		snap.Selected = &name
	}
	if s.runID != nil {
		id := *s.runID
		snap.RunID = &id
	}
	switch {
	case s.selecting:
		snap.Status = models.DrawStatusSelecting
	case s.exhausted:
		snap.Status = models.DrawStatusExhausted
	case s.winner != nil:
		snap.Status = models.DrawStatusDecided
	}
	return snap
}

func (s *Session) touchLocked() {
	s.updatedAt = s.manager.clock.Now()
}

// editNames applies fn to the name list unless a spin is in progress.
func (s *Session) editNames(fn func(names *candidates.Set) error) (*models.DrawSnapshot, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selecting {
		return nil, ErrSpinInProgress
	}
	if err := fn(s.names); err != nil {
		return nil, err
	}
	s.exhausted = false
	s.touchLocked()
	return s.snapshotLocked(), nil
}

func (s *Session) addName(name string) (*models.DrawSnapshot, error) {
	return s.editNames(func(names *candidates.Set) error {
		return names.Add(name)
	})
}

func (s *Session) removeName(index int) (*models.DrawSnapshot, error) {
	return s.editNames(func(names *candidates.Set) error {
		_, err := names.RemoveAt(index)
		return err
	})
}

func (s *Session) loadNames(list []string) (*models.DrawSnapshot, error) {
	set, err := candidates.New(list...)
	if err != nil {
		return nil, fmt.Errorf("invalid name list: %w", err)
	}
	return s.editNames(func(names *candidates.Set) error {
		*names = *set
		return nil
	})
}

// spin starts a run unless one is already in progress.
func (s *Session) spin() bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.engine.Running() {
		return false
	}
	return s.startLocked()
}

// restart clears the displayed result, lets observers see the cleared
// state, then starts a new run, superseding any active one.
func (s *Session) restart() bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	// Superseded runs must not report picks over the cleared state.
	s.engine.Stop()
	s.clearSelection()
	return s.startLocked()
}

// restartWithoutWinner drops the committed winner from the list and spins
// again over the remaining names.
func (s *Session) restartWithoutWinner() (bool, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.selecting || s.winner == nil {
		s.mu.Unlock()
		return false, ErrNoWinner
	}
	excluded := s.winner.Name
	s.names = s.names.Without(excluded)
	remaining := s.names.Names()
	s.touchLocked()
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id.String()).
		Str("excluded", excluded).
		Int("remaining", len(remaining)).
		Msg("excluding winner")

	if len(remaining) < candidates.MinDrawSize {
		s.mu.Lock()
		s.selected = nil
		s.winner = nil
		s.exhausted = true
		s.touchLocked()
		s.mu.Unlock()

		s.manager.emit(s.id, events.EventTypeCandidatesExhausted, events.CandidatesExhaustedPayload{
			Excluded:  excluded,
			Remaining: remaining,
			At:        s.manager.clock.Now(),
		}, true)
		return false, nil
	}

	s.clearSelection()
	return s.startLocked(), nil
}

// cancel stops the active run, if any.
func (s *Session) cancel() bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	h := s.engine.Stop()
	if !h.Valid() {
		return false
	}

	s.mu.Lock()
	s.selecting = false
	s.touchLocked()
	s.mu.Unlock()

	s.manager.emit(s.id, events.EventTypeSpinCancelled, events.SpinCancelledPayload{
		RunID:       h.ID.String(),
		CancelledAt: s.manager.clock.Now(),
	}, true)
	return true
}

func (s *Session) clearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.winner = nil
	s.selecting = s.engine.Running()
	s.exhausted = false
	s.touchLocked()
	s.mu.Unlock()

	s.manager.emit(s.id, events.EventTypeSelectionCleared, events.SelectionClearedPayload{
		ClearedAt: s.manager.clock.Now(),
	}, false)
}

// startLocked runs the engine over the current names. Caller holds opMu.
func (s *Session) startLocked() bool {
	s.mu.Lock()
	if !s.names.CanDraw() {
		s.mu.Unlock()
		return false
	}
	names := s.names.Names()
	s.selected = nil
	s.winner = nil
	s.exhausted = false
	s.selecting = true
	s.touchLocked()
	s.mu.Unlock()

	h, ok := s.engine.Start(names, s.onPick, s.onComplete)
	if !ok {
		s.mu.Lock()
		s.selecting = false
		s.mu.Unlock()
		return false
	}

	log.Info().
		Str("session_id", s.id.String()).
		Str("run_id", h.ID.String()).
		Int("candidates", len(names)).
		Msg("spin requested")
	return true
}

// onPick runs under the engine lock. The first tick of a run is reported
// synchronously from Start and announces the run.
func (s *Session) onPick(name string) {
	st := s.engine.State()

	s.mu.Lock()
	s.selected = &name
	s.runID = &st.ID
	names := s.names.Names()
	s.touchLocked()
	s.mu.Unlock()

	if st.Ticks == 1 {
		s.manager.emit(s.id, events.EventTypeSpinStarted, events.SpinStartedPayload{
			RunID:      st.ID.String(),
			Candidates: names,
			StartedAt:  st.StartTime,
			EndsAt:     st.EndTime,
			DurationMs: st.TotalDuration.Milliseconds(),
		}, true)
	}

	s.manager.emit(s.id, events.EventTypeSpinTick, events.SpinTickPayload{
		RunID:    st.ID.String(),
		Name:     name,
		Tick:     st.Ticks,
		NextInMs: st.CurrentDelay.Milliseconds(),
		TickedAt: s.manager.clock.Now(),
	}, false)
}

// onComplete runs under the engine lock.
func (s *Session) onComplete(name string) {
	st := s.engine.State()
	now := s.manager.clock.Now()
	w := models.Winner{Name: name, RunID: st.ID, DecidedAt: now}

	s.mu.Lock()
	s.selected = &name
	s.selecting = false
	s.winner = &w
	s.winners = append(s.winners, w)
	names := s.names.Names()
	s.touchLocked()
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id.String()).
		Str("run_id", st.ID.String()).
		Str("winner", name).
		Msg("winner selected")

	s.manager.emit(s.id, events.EventTypeSpinCompleted, events.SpinCompletedPayload{
		RunID:       st.ID.String(),
		Winner:      name,
		Candidates:  names,
		Ticks:       st.Ticks,
		CompletedAt: now,
	}, true)
}
