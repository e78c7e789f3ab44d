package storage

import (
	"context"
	"sync"
)

// MockStorage is an in-memory Storage for tests. Setting SaveFunc or
// LoadFunc overrides the map-backed behaviour.
type MockStorage struct {
	mu        sync.RWMutex
	saves     map[string]*SaveRecord
	pingError error

	SaveFunc func(ctx context.Context, rec *SaveRecord) error
	LoadFunc func(ctx context.Context, playerName string) (*SaveRecord, error)

	SaveCalls []SaveRecord
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{saves: make(map[string]*SaveRecord)}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGame(ctx context.Context, rec *SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, *rec)
	fn := m.SaveFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, rec)
	}

	cp := *rec
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[Key(rec.PlayerName)] = &cp
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context, playerName string) (*SaveRecord, error) {
	m.mu.RLock()
	fn := m.LoadFunc
	rec, ok := m.saves[Key(playerName)]
	m.mu.RUnlock()
	if fn != nil {
		return fn(ctx, playerName)
	}
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStorage) DeleteGame(ctx context.Context, playerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, Key(playerName))
	return nil
}

// Saved returns the stored record for a player, for assertions.
func (m *MockStorage) Saved(playerName string) *SaveRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[Key(playerName)]
}

// SaveCount returns how many times SaveGame was called.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SaveCalls)
}
