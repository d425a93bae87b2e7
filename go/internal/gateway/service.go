package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/events"
	"github.com/rs/zerolog/log"
)

// Service bundles the WebSocket fan-out and the JSON API
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	httpHandler       *HTTPHandler
}

// NewService creates the gateway over an existing connection manager. The
// manager is created first because the draw manager broadcasts through it.
func NewService(cm *ConnectionManager, sessions SessionService, lists ListService) *Service {
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, sessions),
		httpHandler:       NewHTTPHandler(sessions, lists, cm),
	}
}

// Start runs the broadcast loop until ctx is done
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("gateway service stopped")
}

// RegisterRoutes registers the WebSocket and API routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.httpHandler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// BroadcastToSession forwards an event to a session's clients
func (s *Service) BroadcastToSession(sessionID uuid.UUID, event *events.Event) {
	s.connectionManager.BroadcastToSession(sessionID, event)
}
