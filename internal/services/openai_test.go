package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var encounterMessages = []chat.ChatMessage{
	{Role: chat.ChatRoleSystem, Content: "You are a storyteller."},
	{Role: chat.ChatRoleUser, Content: "Create an encounter."},
}

func TestOpenAIService_Chat(t *testing.T) {
	var got OpenAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"x","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"SCENE: A fox."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-test", "", testLogger())
	svc.baseURL = srv.URL

	resp, err := svc.Chat(context.Background(), encounterMessages)
	require.NoError(t, err)
	assert.Equal(t, "SCENE: A fox.", resp.Message)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, "openai/gpt-4o-mini", svc.Name())
}

func TestOpenAIService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, "status 429"},
		{"api error", http.StatusOK, `{"error":{"message":"bad key"}}`, "API error: bad key"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"refusal", http.StatusOK, `{"choices":[{"message":{"refusal":"no"}}]}`, "refused"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, "no text content"},
		{"garbage", http.StatusOK, `not json`, "failed to unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewOpenAIService("sk-test", "gpt-4o", testLogger())
			svc.baseURL = srv.URL
			_, err := svc.Chat(context.Background(), encounterMessages)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOpenAIService_NoMessages(t *testing.T) {
	svc := NewOpenAIService("sk-test", "", testLogger())
	_, err := svc.Chat(context.Background(), nil)
	assert.Error(t, err)
}
