package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/verdant-hollow/internal/services"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

// SessionCounter reports live sessions.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	storage  storage.Storage
	llm      services.LLMService
	sessions SessionCounter
	logger   *slog.Logger
}

// NewHealthHandler takes a nil llm when the game runs on local encounters.
func NewHealthHandler(store storage.Storage, llm services.LLMService, sessions SessionCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  store,
		llm:      llm,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	// Encounters fall back to the local pool, so a missing provider is
	// reported but never degrades the service.
	if h.llm != nil {
		components["llm"] = h.llm.Name()
	} else {
		components["llm"] = "disabled"
	}
	if h.sessions != nil {
		components["sessions"] = h.sessions.Len()
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "verdant-hollow",
		Components: components,
	})
}
