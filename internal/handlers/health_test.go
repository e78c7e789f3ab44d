package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/internal/services"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		setupStorage    func() storage.Storage
		llm             services.LLMService
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedLLM     string
	}{
		{
			name: "all healthy",
			setupStorage: func() storage.Storage {
				m := storage.NewMockStorage()
				m.SetPingSuccess()
				return m
			},
			llm:             services.NewMockLLMAPI(),
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedLLM:     "mock",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() storage.Storage {
				m := storage.NewMockStorage()
				m.SetPingError(errors.New("connection failed"))
				return m
			},
			llm:             services.NewMockLLMAPI(),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedLLM:     "mock",
		},
		{
			name:            "no llm provider",
			setupStorage:    func() storage.Storage { return storage.NewMockStorage() },
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedLLM:     "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.setupStorage()
			handler := NewHealthHandler(store, tt.llm, newTestManager(t, store), testLogger())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Equal(t, "verdant-hollow", resp.Service)
			assert.Equal(t, tt.expectedStorage, resp.Components["storage"])
			assert.Equal(t, tt.expectedLLM, resp.Components["llm"])
			assert.EqualValues(t, 0, resp.Components["sessions"])
		})
	}
}
