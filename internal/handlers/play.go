package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jwebster45206/verdant-hollow/internal/logger"
	"github.com/jwebster45206/verdant-hollow/internal/session"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	// Clients are the console and local tools.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PlayHandler runs a session over a websocket at /v1/play?player=NAME.
// Each text frame is one input; each reply is a JSON view, or an
// ErrorResponse for rejected input.
type PlayHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewPlayHandler(sessions *session.Manager, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{sessions: sessions, logger: logger}
}

func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("player")
	if err := session.ValidateName(name); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	view, err := h.sessions.Start(ctx, name)
	if err != nil {
		h.send(conn, ErrorResponse{Error: err.Error()})
		return
	}
	log := logger.WithSession(h.logger, view.SessionID.String(), name)
	log.Info("Websocket session opened")
	if !h.send(conn, view) {
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Error reading message", "error", err)
			}
			return
		}

		id := view.SessionID
		view, err := h.sessions.Step(ctx, id, string(msg))
		switch {
		case errors.Is(err, story.ErrSessionEnded):
			h.sessions.End(id)
			h.send(conn, ErrorResponse{Error: "Session has ended"})
			h.close(conn, "session ended")
			return
		case err != nil:
			if !h.send(conn, ErrorResponse{Error: err.Error()}) {
				return
			}
			continue
		}

		if !h.send(conn, view) {
			return
		}
		if view.Ended {
			h.sessions.End(id)
			log.Info("Websocket session ended", "node", view.Node)
			h.close(conn, "session ended")
			return
		}
	}
}

func (h *PlayHandler) send(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Warn("Failed to write message", "error", err)
		return false
	}
	return true
}

func (h *PlayHandler) close(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
