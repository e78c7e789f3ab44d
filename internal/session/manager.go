// Package session keeps live story sessions for the network front-ends.
// Each session's turns run one at a time; different sessions run in
// parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

var ErrNotFound = errors.New("session not found")

// MaxNameLength bounds player names accepted from clients.
const MaxNameLength = 40

// Engine is the part of story.Game the manager drives.
type Engine interface {
	Start(ctx context.Context, name string) (*story.Session, story.View)
	Step(ctx context.Context, s *story.Session, input string) (story.View, error)
	View(s *story.Session, lines []string) story.View
}

var _ Engine = (*story.Game)(nil)

type entry struct {
	mu      sync.Mutex
	s       *story.Session
	last    story.View
	touched time.Time
}

// Snapshot is a copy of a session's state for export.
type Snapshot struct {
	ID      uuid.UUID
	Player  player.Player
	Points  int
	Stage   string
	History []string
	Ended   bool
}

// Manager owns live sessions keyed by ID. A player has at most one live
// session; starting again reattaches to it.
type Manager struct {
	engine Engine
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
	byPlayer map[string]uuid.UUID
}

func NewManager(engine Engine, logger *slog.Logger) *Manager {
	return &Manager{
		engine:   engine,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
		byPlayer: make(map[string]uuid.UUID),
	}
}

// ValidateName checks a player name supplied by a client.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player_name is required")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("player_name exceeds maximum length of %d characters", MaxNameLength)
	}
	return nil
}

// Start begins or resumes a run for name.
func (m *Manager) Start(ctx context.Context, name string) (story.View, error) {
	if err := ValidateName(name); err != nil {
		return story.View{}, err
	}
	key := storage.Key(name)

	m.mu.RLock()
	id, live := m.byPlayer[key]
	e := m.sessions[id]
	m.mu.RUnlock()
	if live && e != nil {
		e.mu.Lock()
		if !e.last.Ended {
			e.touched = m.now()
			v := m.engine.View(e.s, e.last.Lines)
			e.mu.Unlock()
			m.logger.Debug("Reattached to live session", "session_id", id, "player", name)
			return v, nil
		}
		e.mu.Unlock()
		// The run is over; drop it so the engine starts the next one.
		m.End(id)
	}

	s, view := m.engine.Start(ctx, name)
	e = &entry{s: s, last: view, touched: m.now()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPlayer[key]; ok {
		// Lost a race with another Start for the same player.
		if other := m.sessions[id]; other != nil {
			return other.last, nil
		}
	}
	m.sessions[s.ID] = e
	m.byPlayer[key] = s.ID
	m.logger.Info("Session started", "session_id", s.ID, "player", s.Player.Name, "resumed", s.Resumed)
	return view, nil
}

func (m *Manager) get(id uuid.UUID) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// View returns the session's current view without consuming input.
func (m *Manager) View(id uuid.UUID) (story.View, error) {
	e, err := m.get(id)
	if err != nil {
		return story.View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.engine.View(e.s, e.last.Lines), nil
}

// Step applies one input. Calls for the same session serialise.
func (m *Manager) Step(ctx context.Context, id uuid.UUID, input string) (story.View, error) {
	req := chat.InputRequest{SessionID: id, Input: input}
	if err := req.Validate(); err != nil {
		return story.View{}, err
	}
	e, err := m.get(id)
	if err != nil {
		return story.View{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	view, err := m.engine.Step(ctx, e.s, input)
	if err != nil {
		return view, err
	}
	e.last = view
	e.touched = m.now()
	return view, nil
}

// Snapshot copies a session's state.
func (m *Manager) Snapshot(id uuid.UUID) (Snapshot, error) {
	e, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		ID:      e.s.ID,
		Player:  *e.s.Player.Clone(),
		Points:  e.s.Points,
		Stage:   e.s.Stage,
		History: append([]string(nil), e.s.History...),
		Ended:   e.last.Ended,
	}, nil
}

// End drops a session. Its progress is already saved at stage boundaries.
func (m *Manager) End(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return
	}
	delete(m.sessions, id)
	if key := storage.Key(e.s.Player.Name); m.byPlayer[key] == id {
		delete(m.byPlayer, key)
	}
}

// Sweep drops sessions idle for longer than idle and returns how many.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []uuid.UUID
	for id, e := range m.sessions {
		// A locked session is mid-turn, so not idle.
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.End(id)
	}
	if len(stale) > 0 {
		m.logger.Info("Swept idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
