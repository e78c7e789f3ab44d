package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

func sampleView() *story.View {
	p := player.New("Ayla")
	p.Inventory = []string{"sword"}
	return &story.View{
		SessionID: uuid.New(),
		Node:      story.NodeEncounter,
		Lines:     []string{"A goblin blocks the path."},
		Prompt:    "What do you do?",
		Choices:   []string{"Talk", "Attack"},
		Points:    10,
		Player:    *p,
	}
}

func TestAPIClient(t *testing.T) {
	want := sampleView()
	var gotInput chat.InputRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(want)
	})
	mux.HandleFunc("/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/input"):
			_ = json.NewDecoder(r.Body).Decode(&gotInput)
			_ = json.NewEncoder(w).Encode(want)
		case strings.HasSuffix(r.URL.Path, "/chronicle"):
			w.Header().Set("Content-Disposition", `attachment; filename="ayla-chronicle.pdf"`)
			_, _ = w.Write([]byte("%PDF-1.3"))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := srv.Client()

	v, err := startSession(client, srv.URL, "Ayla")
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, v.SessionID)
	assert.Equal(t, "Ayla", v.Player.Name)

	_, err = sendInput(client, srv.URL, v.SessionID, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", gotInput.Input)
	assert.Equal(t, v.SessionID, gotInput.SessionID)

	pdf, name, err := downloadChronicle(client, srv.URL, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "ayla-chronicle.pdf", name)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	assert.NoError(t, endSession(client, srv.URL, v.SessionID))
}

func TestAPIClient_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "player_name is required"})
	}))
	defer srv.Close()

	_, err := startSession(srv.Client(), srv.URL, "")
	assert.EqualError(t, err, "player_name is required")

	_, _, err = downloadChronicle(srv.Client(), srv.URL, uuid.New())
	assert.ErrorContains(t, err, "player_name is required")

	assert.Error(t, endSession(srv.Client(), srv.URL, uuid.New()))
}

func TestSceneText(t *testing.T) {
	assert.Equal(t, "What do you do?\n1. Talk\n2. Attack", sceneText(sampleView()))
	assert.Empty(t, sceneText(nil))
}

func TestPromptBlock(t *testing.T) {
	v := sampleView()
	block := promptBlock(v, 60)
	assert.Contains(t, block, "What do you do?")
	assert.Contains(t, block, "Attack")
	assert.Contains(t, block, "/act")

	v.Ended = true
	assert.Contains(t, promptBlock(v, 60), "/new")
}

func TestStatsAndInventory(t *testing.T) {
	v := sampleView()
	stats := statsText(v)
	assert.Equal(t, "Ayla, level 1", stats[0])
	assert.Contains(t, stats, "Points 10")

	assert.Equal(t, []string{"You carry:", "• sword"}, inventoryText(v))
	v.Player.Inventory = nil
	assert.Equal(t, []string{"Your pack is empty."}, inventoryText(v))
}

func TestIsLocalCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/stats", true},
		{"/NEW", true},
		{"/act sneak past", false},
		{"/ACT sneak past", false},
		{"/train luck", false},
		{"/Train Luck", false},
		{"2", false},
		{"yes", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLocalCommand(tt.input), tt.input)
	}
}
