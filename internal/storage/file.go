package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// FileStorage writes one YAML file per player under a directory.
type FileStorage struct {
	dir    string
	mu     sync.RWMutex
	logger *slog.Logger
}

var _ storage.Storage = (*FileStorage)(nil)

// NewFileStorage creates dir if it does not exist.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if dir == "" {
		dir = ".saves"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

// path maps a player to a file. Keys that need escaping get a short hash of
// the original key so that names like "Ayla!" and "Ayla?" stay distinct.
func (f *FileStorage) path(playerName string) string {
	key := storage.Key(playerName)
	name := unsafeChars.ReplaceAllString(key, "_")
	if name != key {
		sum := sha256.Sum256([]byte(key))
		name += "-" + hex.EncodeToString(sum[:4])
	}
	return filepath.Join(f.dir, name+".yaml")
}

func (f *FileStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("save directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("save path %s is not a directory", f.dir)
	}
	return nil
}

func (f *FileStorage) Close() error { return nil }

func (f *FileStorage) SaveGame(ctx context.Context, rec *storage.SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Write then rename so a crash never leaves a half-written save.
	target := f.path(rec.PlayerName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	f.logger.Debug("Saved game to file", "player", rec.PlayerName, "path", target)
	return nil
}

func (f *FileStorage) LoadGame(ctx context.Context, playerName string) (*storage.SaveRecord, error) {
	f.mu.RLock()
	data, err := os.ReadFile(f.path(playerName))
	f.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read save: %w", err)
	}

	var rec storage.SaveRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse save: %w", err)
	}
	return &rec, nil
}

func (f *FileStorage) DeleteGame(ctx context.Context, playerName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(playerName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
