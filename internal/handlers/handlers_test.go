package handlers

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/internal/session"
	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestManager(t *testing.T, store storage.Storage) *session.Manager {
	t.Helper()
	g, err := story.New(story.Options{
		Mode:    story.ModeScripted,
		Roller:  dice.NewRoller(dice.NewScriptedSource()),
		Storage: store,
		Logger:  testLogger(),
		Now:     func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return session.NewManager(g, testLogger())
}
