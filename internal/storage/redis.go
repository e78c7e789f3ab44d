// Package storage holds the save-game backends: Redis, Postgres, a local
// YAML directory, and a chain that falls back from one to another.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

const (
	savePrefix    = "save:"
	historyPrefix = "history:"

	// HistoryListLimit caps the story lines mirrored to the history list.
	HistoryListLimit = 50
)

// RedisStorage keeps each save as a JSON blob and mirrors the tail of the
// story history into a capped list that can be read with LRANGE.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage accepts either a redis:// URL or a bare host:port.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	var opt *redis.Options
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: redisURL}
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func saveKey(name string) string    { return savePrefix + storage.Key(name) }
func historyKey(name string) string { return historyPrefix + storage.Key(name) }

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SaveGame(ctx context.Context, rec *storage.SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal save", "player", rec.PlayerName, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	tail := rec.StoryHistory
	if len(tail) > HistoryListLimit {
		tail = tail[len(tail)-HistoryListLimit:]
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, saveKey(rec.PlayerName), data, 0)
		pipe.Del(ctx, historyKey(rec.PlayerName))
		if len(tail) > 0 {
			vals := make([]interface{}, len(tail))
			for i, l := range tail {
				vals[i] = l
			}
			pipe.RPush(ctx, historyKey(rec.PlayerName), vals...)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save game", "player", rec.PlayerName, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context, playerName string) (*storage.SaveRecord, error) {
	data, err := r.client.Get(ctx, saveKey(playerName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Save not found", "player", playerName)
			return nil, nil
		}
		r.logger.Error("Failed to load game", "player", playerName, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if data == "" {
		return nil, nil
	}

	var rec storage.SaveRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		r.logger.Error("Failed to unmarshal save", "player", playerName, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, playerName string) error {
	if err := r.client.Del(ctx, saveKey(playerName), historyKey(playerName)).Err(); err != nil {
		r.logger.Error("Failed to delete game", "player", playerName, "error", err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}
