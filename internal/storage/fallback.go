package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

// FallbackStorage writes to primary and, when primary fails, to local.
// Loads read both and return the most recently updated record, so a save
// written locally during an outage wins over the stale primary copy.
type FallbackStorage struct {
	primary storage.Storage
	local   storage.Storage
	logger  *slog.Logger
}

var _ storage.Storage = (*FallbackStorage)(nil)

func NewFallbackStorage(primary, local storage.Storage, logger *slog.Logger) *FallbackStorage {
	return &FallbackStorage{primary: primary, local: local, logger: logger}
}

// Ping succeeds while either backend is reachable.
func (s *FallbackStorage) Ping(ctx context.Context) error {
	perr := s.primary.Ping(ctx)
	if perr == nil {
		return nil
	}
	if lerr := s.local.Ping(ctx); lerr != nil {
		return errors.Join(perr, lerr)
	}
	s.logger.Warn("Primary save store unreachable, local store available", "error", perr)
	return nil
}

func (s *FallbackStorage) Close() error {
	return errors.Join(s.primary.Close(), s.local.Close())
}

func (s *FallbackStorage) SaveGame(ctx context.Context, rec *storage.SaveRecord) error {
	err := s.primary.SaveGame(ctx, rec)
	if err == nil {
		return nil
	}
	s.logger.Warn("Primary save failed, falling back to local save", "player", rec.PlayerName, "error", err)
	return s.local.SaveGame(ctx, rec)
}

func (s *FallbackStorage) LoadGame(ctx context.Context, playerName string) (*storage.SaveRecord, error) {
	rec, err := s.primary.LoadGame(ctx, playerName)
	if err != nil {
		s.logger.Warn("Primary load failed, trying local save", "player", playerName, "error", err)
	}
	local, lerr := s.local.LoadGame(ctx, playerName)
	if lerr != nil {
		if err != nil {
			return nil, errors.Join(err, lerr)
		}
		s.logger.Warn("Local load failed", "player", playerName, "error", lerr)
		return rec, nil
	}
	if local != nil && (rec == nil || local.UpdatedAt.After(rec.UpdatedAt)) {
		if rec != nil {
			s.logger.Info("Local save is newer than primary", "player", playerName,
				"local_updated_at", local.UpdatedAt, "primary_updated_at", rec.UpdatedAt)
		}
		return local, nil
	}
	return rec, nil
}

func (s *FallbackStorage) DeleteGame(ctx context.Context, playerName string) error {
	return errors.Join(s.primary.DeleteGame(ctx, playerName), s.local.DeleteGame(ctx, playerName))
}
