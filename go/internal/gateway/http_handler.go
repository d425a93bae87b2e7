package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/maelkermann/plouf-plouf/go/internal/candidates"
	"github.com/maelkermann/plouf-plouf/go/internal/draw"
	"github.com/maelkermann/plouf-plouf/go/internal/models"
	"github.com/maelkermann/plouf-plouf/go/internal/savedlists"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 64 << 10

// SessionService is what the HTTP layer needs from the draw manager
type SessionService interface {
	CreateSession(names []string) (*models.DrawSnapshot, error)
	DeleteSession(id uuid.UUID) error
	Snapshot(id uuid.UUID) (*models.DrawSnapshot, error)
	AddName(id uuid.UUID, name string) (*models.DrawSnapshot, error)
	RemoveName(id uuid.UUID, index int) (*models.DrawSnapshot, error)
	LoadNames(id uuid.UUID, names []string) (*models.DrawSnapshot, error)
	Spin(id uuid.UUID) (bool, error)
	Restart(id uuid.UUID) (bool, error)
	RestartWithoutWinner(id uuid.UUID) (bool, error)
	Cancel(id uuid.UUID) (bool, error)
}

// ListService is what the HTTP layer needs from saved lists
type ListService interface {
	SaveList(ctx context.Context, req savedlists.SaveListRequest) (*models.NameList, error)
	GetList(ctx context.Context, id string) (*models.NameList, error)
	ListLists(ctx context.Context) ([]models.NameList, error)
	DeleteList(ctx context.Context, id string) error
}

type createSessionRequest struct {
	Names []string `json:"names"`
}

type addNameRequest struct {
	Name string `json:"name"`
}

type loadNamesRequest struct {
	Names []string `json:"names"`
}

// saveListRequest saves either explicit names or the current names of a session
type saveListRequest struct {
	Name      string   `json:"name"`
	Names     []string `json:"names,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// ActionResponse reports whether an action took effect and the resulting state
type ActionResponse struct {
	Started   *bool                `json:"started,omitempty"`
	Cancelled *bool                `json:"cancelled,omitempty"`
	Session   *models.DrawSnapshot `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPHandler serves the JSON API for sessions and saved lists
type HTTPHandler struct {
	sessions    SessionService
	lists       ListService
	connections *ConnectionManager
}

// NewHTTPHandler creates the API handler. connections may be nil.
func NewHTTPHandler(sessions SessionService, lists ListService, connections *ConnectionManager) *HTTPHandler {
	return &HTTPHandler{
		sessions:    sessions,
		lists:       lists,
		connections: connections,
	}
}

// RegisterRoutes registers the API routes with an HTTP mux
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/names", h.HandleAddName)
	mux.HandleFunc("PUT /api/sessions/{id}/names", h.HandleLoadNames)
	mux.HandleFunc("DELETE /api/sessions/{id}/names/{index}", h.HandleRemoveName)
	mux.HandleFunc("POST /api/sessions/{id}/spin", h.HandleSpin)
	mux.HandleFunc("POST /api/sessions/{id}/restart", h.HandleRestart)
	mux.HandleFunc("POST /api/sessions/{id}/exclude-winner", h.HandleExcludeWinner)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", h.HandleCancel)
	mux.HandleFunc("POST /api/sessions/{id}/load/{listID}", h.HandleLoadList)

	mux.HandleFunc("GET /api/lists", h.HandleListLists)
	mux.HandleFunc("POST /api/lists", h.HandleSaveList)
	mux.HandleFunc("GET /api/lists/{listID}", h.HandleGetList)
	mux.HandleFunc("DELETE /api/lists/{listID}", h.HandleDeleteList)
}

// HandleCreateSession handles POST /api/sessions
func (h *HTTPHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	snap, err := h.sessions.CreateSession(req.Names)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleGetSession handles GET /api/sessions/{id}
func (h *HTTPHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleDeleteSession handles DELETE /api/sessions/{id}
func (h *HTTPHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.DeleteSession(id); err != nil {
		h.handleError(w, r, err)
		return
	}
	if h.connections != nil {
		h.connections.CloseSession(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddName handles POST /api/sessions/{id}/names
func (h *HTTPHandler) HandleAddName(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req addNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := h.sessions.AddName(id, req.Name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleLoadNames handles PUT /api/sessions/{id}/names
func (h *HTTPHandler) HandleLoadNames(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req loadNamesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := h.sessions.LoadNames(id, req.Names)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRemoveName handles DELETE /api/sessions/{id}/names/{index}
func (h *HTTPHandler) HandleRemoveName(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}

	snap, err := h.sessions.RemoveName(id, index)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleSpin handles POST /api/sessions/{id}/spin
func (h *HTTPHandler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	h.handleStart(w, r, h.sessions.Spin)
}

// HandleRestart handles POST /api/sessions/{id}/restart
func (h *HTTPHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	h.handleStart(w, r, h.sessions.Restart)
}

// HandleExcludeWinner handles POST /api/sessions/{id}/exclude-winner
func (h *HTTPHandler) HandleExcludeWinner(w http.ResponseWriter, r *http.Request) {
	h.handleStart(w, r, h.sessions.RestartWithoutWinner)
}

func (h *HTTPHandler) handleStart(w http.ResponseWriter, r *http.Request, start func(uuid.UUID) (bool, error)) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	started, err := start(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeAction(w, r, id, ActionResponse{Started: &started})
}

// HandleCancel handles POST /api/sessions/{id}/cancel
func (h *HTTPHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	cancelled, err := h.sessions.Cancel(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeAction(w, r, id, ActionResponse{Cancelled: &cancelled})
}

func (h *HTTPHandler) writeAction(w http.ResponseWriter, r *http.Request, id uuid.UUID, resp ActionResponse) {
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	resp.Session = snap
	writeJSON(w, http.StatusOK, resp)
}

// HandleLoadList handles POST /api/sessions/{id}/load/{listID}
func (h *HTTPHandler) HandleLoadList(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	list, err := h.lists.GetList(r.Context(), r.PathValue("listID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	snap, err := h.sessions.LoadNames(id, list.Names)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleListLists handles GET /api/lists
func (h *HTTPHandler) HandleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListLists(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// HandleSaveList handles POST /api/lists
func (h *HTTPHandler) HandleSaveList(w http.ResponseWriter, r *http.Request) {
	var req saveListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	names := req.Names
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid session_id format"))
			return
		}
		snap, err := h.sessions.Snapshot(id)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		names = snap.Names
	}

	list, err := h.lists.SaveList(r.Context(), savedlists.SaveListRequest{Name: req.Name, Names: names})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// HandleGetList handles GET /api/lists/{listID}
func (h *HTTPHandler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetList(r.Context(), r.PathValue("listID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleDeleteList handles DELETE /api/lists/{listID}
func (h *HTTPHandler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.DeleteList(r.Context(), r.PathValue("listID")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, errors.New("internal error"))
		return
	}
	log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, draw.ErrSessionNotFound),
		errors.Is(err, savedlists.ErrListNotFound):
		return http.StatusNotFound
	case errors.Is(err, draw.ErrSpinInProgress),
		errors.Is(err, draw.ErrNoWinner),
		errors.Is(err, candidates.ErrDuplicateName),
		errors.Is(err, savedlists.ErrListExists):
		return http.StatusConflict
	case errors.Is(err, candidates.ErrEmptyName),
		errors.Is(err, candidates.ErrIndexOutOfRange),
		errors.Is(err, savedlists.ErrEmptyList),
		errors.Is(err, savedlists.ErrEmptyListName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid session id format"))
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
