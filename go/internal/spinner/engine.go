package spinner

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

/*
The engine owns a single run slot. A run is a chain of one-shot AfterFunc
timers: every tick draws a candidate, reports it, and schedules the next tick
with a delay that grows linearly with the elapsed fraction of the run. When
the run's end time has passed the next tick commits an independent final
draw instead.

Each scheduled continuation captures the generation it was created for.
Start and Cancel bump the generation under the engine lock, so a timer that
already fired but has not yet acquired the lock finds a stale generation and
returns without emitting anything.
*/

// Rand is the source of candidate indexes.
type Rand interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timestamps and tick timers.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithRand sets the source of random indexes.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithConfig sets the run timing.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg.withDefaults()
	}
}

// Engine runs one decelerating random draw at a time.
//
// onPick and onComplete are called while the engine lock is held. They must
// not call Start, Cancel or Stop on the same engine synchronously; State is
// lock-free and already reflects the tick being reported.
type Engine struct {
	clock clockwork.Clock
	rng   Rand
	cfg   Config

	mu         sync.Mutex
	gen        uint64
	state      RunState
	candidates []string
	onPick     func(string)
	onComplete func(string)
	timer      clockwork.Timer

	snap atomic.Pointer[RunState]
}

// NewEngine creates an engine with a real clock, its own seeded random
// source and DefaultConfig unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: clockwork.NewRealClock(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:   DefaultConfig(),
		state: RunState{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.publishLocked()
	return e
}

// Config returns the run timing used by the engine.
func (e *Engine) Config() Config {
	return e.cfg
}

// Start begins a new run over candidates, cancelling any active run first.
// With fewer than two candidates the request is ignored: nothing is
// mutated and the returned bool is false.
func (e *Engine) Start(candidates []string, onPick, onComplete func(string)) (RunHandle, bool) {
	if len(candidates) < 2 || onPick == nil || onComplete == nil {
		log.Debug().
			Int("candidates", len(candidates)).
			Msg("ignoring spin request")
		return RunHandle{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status == StatusRunning {
		log.Debug().
			Str("run_id", e.state.ID.String()).
			Msg("replacing active run")
	}
	e.revokeLocked()

	now := e.clock.Now()
	e.candidates = append([]string(nil), candidates...)
	e.onPick = onPick
	e.onComplete = onComplete
	e.state = RunState{
		ID:            uuid.New(),
		Status:        StatusRunning,
		StartTime:     now,
		EndTime:       now.Add(e.cfg.Duration),
		TotalDuration: e.cfg.Duration,
		CurrentDelay:  e.cfg.MinDelay,
		gen:           e.gen,
	}

	log.Info().
		Str("run_id", e.state.ID.String()).
		Int("candidates", len(e.candidates)).
		Dur("duration", e.cfg.Duration).
		Msg("spin started")

	h := e.state.Handle()
	e.publishLocked()
	e.tickLocked(e.gen)
	return h, true
}

// Cancel stops the run identified by h. Once Cancel returns no callback of
// that run fires. Cancelling a finished, cancelled or superseded run is a
// no-op.
func (e *Engine) Cancel(h RunHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !h.Valid() || h.gen != e.gen || e.state.Status != StatusRunning {
		return
	}
	e.revokeLocked()
	log.Info().Str("run_id", h.ID.String()).Msg("spin cancelled")
}

// Stop cancels whatever run is active and returns its handle, or the zero
// handle when nothing was running.
func (e *Engine) Stop() RunHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status != StatusRunning {
		return RunHandle{}
	}
	h := e.state.Handle()
	e.revokeLocked()
	log.Info().Str("run_id", h.ID.String()).Msg("spin stopped")
	return h
}

// State returns a snapshot of the current run slot.
func (e *Engine) State() RunState {
	return *e.snap.Load()
}

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	return e.State().Status == StatusRunning
}

func (e *Engine) publishLocked() {
	st := e.state
	e.snap.Store(&st)
}

// revokeLocked invalidates the current generation, stops its pending timer
// and resets the run slot.
func (e *Engine) revokeLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.candidates = nil
	e.onPick = nil
	e.onComplete = nil
	e.state = RunState{Status: StatusIdle}
	e.publishLocked()
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(gen)
}

func (e *Engine) tickLocked(gen uint64) {
	if gen != e.gen || e.state.Status != StatusRunning {
		return
	}
	e.timer = nil

	now := e.clock.Now()
	if !now.Before(e.state.EndTime) {
		winner := e.draw()
		onComplete := e.onComplete
		e.state.Status = StatusCompleted
		e.state.LastEmitted = winner
		e.candidates = nil
		e.onPick = nil
		e.onComplete = nil
		e.publishLocked()

		log.Info().
			Str("run_id", e.state.ID.String()).
			Str("winner", winner).
			Int("ticks", e.state.Ticks).
			Dur("elapsed", now.Sub(e.state.StartTime)).
			Msg("spin completed")

		onComplete(winner)
		return
	}

	name := e.draw()
	delay := TickDelay(e.cfg, Progress(e.state.StartTime, now, e.cfg.Duration))
	if delay < e.state.CurrentDelay {
		delay = e.state.CurrentDelay
	}
	e.state.LastEmitted = name
	e.state.Ticks++
	e.state.CurrentDelay = delay
	e.timer = e.clock.AfterFunc(delay, func() {
		e.fire(gen)
	})
	e.publishLocked()

	log.Debug().
		Str("run_id", e.state.ID.String()).
		Str("pick", name).
		Dur("delay", delay).
		Msg("spin tick")

	e.onPick(name)
}

func (e *Engine) draw() string {
	return e.candidates[e.rng.Intn(len(e.candidates))]
}
