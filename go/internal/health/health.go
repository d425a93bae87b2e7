package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maelkermann/plouf-plouf/go/internal/draw"
	"github.com/rs/zerolog/log"
)

// maxDropped is how many dropped bus events are tolerated before reporting unhealthy
const maxDropped = 100

type Status struct {
	Healthy           bool       `json:"healthy"`
	Sessions          int        `json:"sessions"`
	EventsPublished   uint64     `json:"events_published"`
	EventsFailed      uint64     `json:"events_failed"`
	EventsDropped     uint64     `json:"events_dropped"`
	LastPublishTime   *time.Time `json:"last_publish_time,omitempty"`
	DatabaseConnected *bool      `json:"database_connected,omitempty"`
	NATSConnected     *bool      `json:"nats_connected,omitempty"`
	Errors            []string   `json:"errors"`
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectionState is satisfied by the NATS publisher
type ConnectionState interface {
	Connected() bool
}

// StatsProvider is satisfied by *draw.Manager
type StatsProvider interface {
	Stats() draw.PublishStats
}

// Checker reports readiness of the server's dependencies. db and bus are
// optional.
type Checker struct {
	stats StatsProvider
	db    Pinger
	bus   ConnectionState
}

func NewChecker(stats StatsProvider, db Pinger, bus ConnectionState) *Checker {
	return &Checker{stats: stats, db: db, bus: bus}
}

func (c *Checker) Check(ctx context.Context) Status {
	st := c.stats.Stats()
	status := Status{
		Healthy:         true,
		Sessions:        st.Sessions,
		EventsPublished: st.Published,
		EventsFailed:    st.Failed,
		EventsDropped:   st.Dropped,
		Errors:          []string{},
	}
	if !st.LastPublished.IsZero() {
		last := st.LastPublished
		status.LastPublishTime = &last
	}

	if c.db != nil {
		connected := true
		if err := c.db.PingContext(ctx); err != nil {
			connected = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		}
		status.DatabaseConnected = &connected
	}

	if c.bus != nil {
		connected := c.bus.Connected()
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
		status.NATSConnected = &connected
	}

	if st.Dropped > maxDropped {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("dropped %d events", st.Dropped))
	}

	return status
}

func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := c.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode health status")
	}
}
