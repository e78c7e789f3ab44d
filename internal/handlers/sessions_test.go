package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/pkg/storage"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) story.View {
	t.Helper()
	var v story.View
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestSessionHandler_PlayThrough(t *testing.T) {
	store := storage.NewMockStorage()
	h := NewSessionHandler(newTestManager(t, store), testLogger())

	w := do(t, h, http.MethodPost, "/v1/sessions", `{"player_name":"Ayla"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	start := decodeView(t, w)
	assert.Equal(t, story.NodeIntro, start.Node)
	assert.Equal(t, []string{"Yes", "No"}, start.Choices)
	base := "/v1/sessions/" + start.SessionID.String()

	w = do(t, h, http.MethodPost, base+"/input", `{"input":"banana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.True(t, v.Invalid)
	assert.Equal(t, story.NodeIntro, v.Node)

	w = do(t, h, http.MethodPost, base+"/input", `{"input":"yes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, story.NodeForest, decodeView(t, w).Node)

	w = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, story.NodeForest, decodeView(t, w).Node)

	// Right at the fork is certain death.
	w = do(t, h, http.MethodPost, base+"/input", `{"input":"right"}`)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.True(t, v.Ended)
	assert.Equal(t, story.NodeDead, v.Node)
	assert.NotNil(t, store.Saved("Ayla"))

	w = do(t, h, http.MethodPost, base+"/input", `{"input":"yes"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/v1/sessions", `{"player_name":"Ayla"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	next := decodeView(t, w)
	assert.False(t, next.Ended)
	assert.Equal(t, story.NodeIntro, next.Node)
	w = do(t, h, http.MethodPost, "/v1/sessions/"+next.SessionID.String()+"/input", `{"input":"yes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, story.NodeForest, decodeView(t, w).Node)
}

func TestSessionHandler_Chronicle(t *testing.T) {
	h := NewSessionHandler(newTestManager(t, nil), testLogger())
	start := decodeView(t, do(t, h, http.MethodPost, "/v1/sessions", `{"player_name":"Sir Ayla"}`))

	w := do(t, h, http.MethodGet, "/v1/sessions/"+start.SessionID.String()+"/chronicle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sir-ayla-chronicle.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestSessionHandler_Delete(t *testing.T) {
	h := NewSessionHandler(newTestManager(t, nil), testLogger())
	start := decodeView(t, do(t, h, http.MethodPost, "/v1/sessions", `{"player_name":"Ayla"}`))
	base := "/v1/sessions/" + start.SessionID.String()

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, base, "").Code)
}

func TestSessionHandler_Errors(t *testing.T) {
	h := NewSessionHandler(newTestManager(t, nil), testLogger())
	known := decodeView(t, do(t, h, http.MethodPost, "/v1/sessions", `{"player_name":"Ayla"}`)).SessionID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad json", http.MethodPost, "/v1/sessions", `{`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/v1/sessions", `{"player_name":""}`, http.StatusBadRequest},
		{"list not allowed", http.MethodGet, "/v1/sessions", "", http.StatusMethodNotAllowed},
		{"bad id", http.MethodGet, "/v1/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/v1/sessions/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown input", http.MethodPost, "/v1/sessions/" + uuid.NewString() + "/input", `{"input":"yes"}`, http.StatusNotFound},
		{"empty input", http.MethodPost, "/v1/sessions/" + known + "/input", `{"input":"  "}`, http.StatusBadRequest},
		{"bad input json", http.MethodPost, "/v1/sessions/" + known + "/input", `nope`, http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/v1/sessions/" + known, "", http.StatusMethodNotAllowed},
		{"unknown action", http.MethodGet, "/v1/sessions/" + known + "/map", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
