package draw

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/maelkermann/plouf-plouf/go/internal/candidates"
	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/maelkermann/plouf-plouf/go/internal/spinner"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("draw session not found")
	ErrSpinInProgress  = errors.New("spin in progress")
	ErrNoWinner        = errors.New("no winner to exclude")
)

const (
	publishBufferSize = 256
	publishTimeout    = 5 * time.Second
)

// Broadcaster pushes session events to connected clients
type Broadcaster interface {
	BroadcastToSession(sessionID uuid.UUID, event *events.Event)
}

// Publisher forwards session events to the message bus
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Option configures a Manager
type Option func(*Manager)

// WithClock sets the clock shared by the manager and its spinners
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithSpinnerConfig sets the run timing of every session's spinner
func WithSpinnerConfig(cfg spinner.Config) Option {
	return func(m *Manager) {
		m.spinnerCfg = cfg
	}
}

// WithEngineOptions appends options applied to every new session's spinner
func WithEngineOptions(opts ...spinner.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// Manager owns the draw sessions and fans their events out
type Manager struct {
	clock       clockwork.Clock
	spinnerCfg  spinner.Config
	engineOpts  []spinner.Option
	broadcaster Broadcaster
	publisher   Publisher
	publishCh   chan events.Event

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	published   atomic.Uint64
	failed      atomic.Uint64
	dropped     atomic.Uint64
	lastPublish atomic.Int64 // unix nanos
}

// PublishStats counts what the publish loop has forwarded to the bus
type PublishStats struct {
	Sessions      int
	Published     uint64
	Failed        uint64
	Dropped       uint64
	LastPublished time.Time
}

// NewManager creates a session manager. broadcaster and publisher may be nil.
func NewManager(broadcaster Broadcaster, publisher Publisher, opts ...Option) *Manager {
	m := &Manager{
		clock:       clockwork.NewRealClock(),
		spinnerCfg:  spinner.DefaultConfig(),
		broadcaster: broadcaster,
		publisher:   publisher,
		publishCh:   make(chan events.Event, publishBufferSize),
		sessions:    make(map[uuid.UUID]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run forwards queued events to the publisher until ctx is done
func (m *Manager) Run(ctx context.Context) {
	log.Info().Msg("draw event publisher started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("draw event publisher shutting down")
			return
		case event := <-m.publishCh:
			if m.publisher == nil {
				continue
			}
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := m.publisher.Publish(pubCtx, event); err != nil {
				m.failed.Add(1)
				log.Error().
					Err(err).
					Str("session_id", event.SessionID).
					Str("event_type", string(event.Type)).
					Msg("failed to publish draw event")
			} else {
				m.published.Add(1)
				m.lastPublish.Store(m.clock.Now().UnixNano())
			}
			cancel()
		}
	}
}

// CreateSession starts a new session over names (which may be empty)
func (m *Manager) CreateSession(names []string) (*models.DrawSnapshot, error) {
	set, err := candidates.New(names...)
	if err != nil {
		return nil, err
	}

	opts := append([]spinner.Option{
		spinner.WithClock(m.clock),
		spinner.WithConfig(m.spinnerCfg),
	}, m.engineOpts...)

	now := m.clock.Now()
	s := &Session{
		id:        uuid.New(),
		engine:    spinner.NewEngine(opts...),
		manager:   m,
		names:     set,
		createdAt: now,
		updatedAt: now,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	log.Info().
		Str("session_id", s.id.String()).
		Int("names", set.Len()).
		Msg("draw session created")

	return s.snapshot(), nil
}

// DeleteSession cancels the session's run and forgets it
func (m *Manager) DeleteSession(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.engine.Stop()
	log.Info().Str("session_id", id.String()).Msg("draw session deleted")
	return nil
}

// Snapshot returns the current state of a session
func (m *Manager) Snapshot(id uuid.UUID) (*models.DrawSnapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// AddName appends a name to the session's list
func (m *Manager) AddName(id uuid.UUID, name string) (*models.DrawSnapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return s.addName(name)
}

// RemoveName removes the name at index from the session's list
func (m *Manager) RemoveName(id uuid.UUID, index int) (*models.DrawSnapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return s.removeName(index)
}

// LoadNames replaces the session's list, e.g. with a saved list
func (m *Manager) LoadNames(id uuid.UUID, names []string) (*models.DrawSnapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return s.loadNames(names)
}

// Spin starts a draw. It reports false without error when the session has
// fewer than two names or is already spinning.
func (m *Manager) Spin(id uuid.UUID) (bool, error) {
	s, err := m.session(id)
	if err != nil {
		return false, err
	}
	return s.spin(), nil
}

// Restart clears the displayed result and spins again
func (m *Manager) Restart(id uuid.UUID) (bool, error) {
	s, err := m.session(id)
	if err != nil {
		return false, err
	}
	return s.restart(), nil
}

// RestartWithoutWinner removes the last winner and spins again over the
// remaining names. When fewer than two names remain the session is marked
// exhausted and no spin starts.
func (m *Manager) RestartWithoutWinner(id uuid.UUID) (bool, error) {
	s, err := m.session(id)
	if err != nil {
		return false, err
	}
	return s.restartWithoutWinner()
}

// Cancel stops the session's active spin. It reports whether one was running.
func (m *Manager) Cancel(id uuid.UUID) (bool, error) {
	s, err := m.session(id)
	if err != nil {
		return false, err
	}
	return s.cancel(), nil
}

// Close stops every active spin
func (m *Manager) Close() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, s := range m.sessions {
		if h := s.engine.Stop(); h.Valid() {
			log.Debug().Str("session_id", id.String()).Msg("stopped spin on shutdown")
		}
	}
}

// Stats returns the session count and publish counters
func (m *Manager) Stats() PublishStats {
	m.mu.RLock()
	n := len(m.sessions)
	m.mu.RUnlock()

	stats := PublishStats{
		Sessions:  n,
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
		Dropped:   m.dropped.Load(),
	}
	if ns := m.lastPublish.Load(); ns != 0 {
		stats.LastPublished = time.Unix(0, ns)
	}
	return stats
}

func (m *Manager) session(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// emit broadcasts an event and, if publish is set, queues it for the bus.
// It never blocks: it is called from spinner callbacks.
func (m *Manager) emit(sessionID uuid.UUID, eventType events.EventType, payload interface{}, publish bool) {
	event, err := events.New(sessionID, eventType, m.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to build draw event")
		return
	}

	if m.broadcaster != nil {
		m.broadcaster.BroadcastToSession(sessionID, event)
	}
	if !publish || m.publisher == nil {
		return
	}
	select {
	case m.publishCh <- *event:
	default:
		m.dropped.Add(1)
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("event_type", string(eventType)).
			Msg("publish channel full, dropping event")
	}
}
