package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/draw"
	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SnapshotProvider returns the current state of a draw session
type SnapshotProvider interface {
	Snapshot(id uuid.UUID) (*models.DrawSnapshot, error)
}

// WebSocketHandler handles WebSocket upgrade requests for session watchers
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	snapshots         SnapshotProvider
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, snapshots SnapshotProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		snapshots:         snapshots,
	}
}

// HandleSessionConnection handles GET /ws/sessions?session_id=...
// The first message on the socket is a SessionSnapshot event.
func (h *WebSocketHandler) HandleSessionConnection(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := r.URL.Query().Get("session_id")
	if sessionIDStr == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session_id format", http.StatusBadRequest)
		return
	}

	snap, err := h.snapshots.Snapshot(sessionID)
	if errors.Is(err, draw.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to get session snapshot")
		http.Error(w, "failed to get session", http.StatusInternalServerError)
		return
	}

	initial, err := events.New(sessionID, events.EventTypeSessionSnapshot, time.Now(), snap)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to build snapshot event")
		http.Error(w, "failed to get session", http.StatusInternalServerError)
		return
	}

	// The upgrader has already written an error response on failure
	if err := h.connectionManager.UpgradeConnection(w, r, sessionID, initial); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/sessions", h.HandleSessionConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
