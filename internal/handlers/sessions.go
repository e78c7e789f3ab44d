package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/verdant-hollow/internal/chronicle"
	"github.com/jwebster45206/verdant-hollow/internal/session"
	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

type StartRequest struct {
	PlayerName string `json:"player_name"`
}

type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewSessionHandler(sessions *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// ServeHTTP routes:
// POST   /v1/sessions                 - Start or resume a run
// GET    /v1/sessions/{id}            - Current view
// POST   /v1/sessions/{id}/input      - Submit one input
// GET    /v1/sessions/{id}/chronicle  - PDF of the story so far
// DELETE /v1/sessions/{id}            - Drop the live session
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleStart(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleView(w, id)
	case action == "" && r.Method == http.MethodDelete:
		h.sessions.End(id)
		w.WriteHeader(http.StatusNoContent)
	case action == "input" && r.Method == http.MethodPost:
		h.handleInput(w, r, id)
	case action == "chronicle" && r.Method == http.MethodGet:
		h.handleChronicle(w, id)
	case action == "" || action == "input" || action == "chronicle":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	view, err := h.sessions.Start(r.Context(), req.PlayerName)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, view)
}

func (h *SessionHandler) handleView(w http.ResponseWriter, id uuid.UUID) {
	view, err := h.sessions.View(id)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleInput(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req chat.InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	view, err := h.sessions.Step(r.Context(), id, req.Input)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleChronicle(w http.ResponseWriter, id uuid.UUID) {
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}
	pdf, err := chronicle.Render(chronicle.Chronicle{
		Player:  snap.Player,
		Points:  snap.Points,
		Stage:   snap.Stage,
		History: snap.History,
		Written: time.Now(),
	})
	if err != nil {
		h.logger.Error("Failed to render chronicle", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to render chronicle")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chronicle.Filename(snap.Player.Name)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("Failed to write chronicle", "error", err)
	}
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
	case errors.Is(err, story.ErrSessionEnded):
		writeError(w, h.logger, http.StatusConflict, "Session has ended")
	default:
		// Remaining errors are input validation failures.
		h.logger.Debug("Rejected session request", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	}
}
