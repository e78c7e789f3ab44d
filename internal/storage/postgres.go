package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_saves (
	id UUID NOT NULL,
	player_name TEXT PRIMARY KEY,
	strength INTEGER NOT NULL,
	luck INTEGER NOT NULL,
	agility INTEGER NOT NULL,
	player_class TEXT NOT NULL,
	health INTEGER NOT NULL,
	points INTEGER NOT NULL,
	inventory JSONB NOT NULL,
	current_story TEXT NOT NULL,
	story_history JSONB NOT NULL,
	current_choices JSONB NOT NULL,
	current_scene TEXT NOT NULL DEFAULT '',
	encounter_count INTEGER NOT NULL DEFAULT 0,
	player JSONB NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// PostgresStorage keeps one row per player in game_saves. List columns are
// stored as JSONB.
type PostgresStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Storage = (*PostgresStorage)(nil)

// NewPostgresStorage connects and creates the table if needed.
func NewPostgresStorage(ctx context.Context, connectionString string, logger *slog.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info("Connected to Postgres save store")
	return &PostgresStorage{db: db, logger: logger}, nil
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	return p.db.Close()
}

func (p *PostgresStorage) SaveGame(ctx context.Context, rec *storage.SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.UpdatedAt = time.Now().UTC()

	cols, err := marshalColumns(rec)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO game_saves (id, player_name, strength, luck, agility, player_class, health, points,
		inventory, current_story, story_history, current_choices, current_scene, encounter_count, player, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (player_name)
	DO UPDATE SET
		id = $1, strength = $3, luck = $4, agility = $5, player_class = $6, health = $7, points = $8,
		inventory = $9, current_story = $10, story_history = $11, current_choices = $12,
		current_scene = $13, encounter_count = $14, player = $15, updated_at = $16
	`
	_, err = p.db.ExecContext(ctx, query,
		rec.ID, storage.Key(rec.PlayerName), rec.Strength, rec.Luck, rec.Agility, rec.PlayerClass,
		rec.Health, rec.Points, cols.inventory, rec.Stage, cols.history, cols.choices,
		rec.CurrentScene, rec.EncounterCount, cols.player, rec.UpdatedAt)
	if err != nil {
		p.logger.Error("Failed to save game", "player", rec.PlayerName, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

type jsonColumns struct {
	inventory, history, choices, player string
}

func marshalColumns(rec *storage.SaveRecord) (jsonColumns, error) {
	var cols jsonColumns
	fields := []struct {
		dst *string
		v   any
	}{
		{&cols.inventory, nonNil(rec.Inventory)},
		{&cols.history, nonNil(rec.StoryHistory)},
		{&cols.choices, nonNil(rec.CurrentChoices)},
		{&cols.player, rec.Player},
	}
	for _, f := range fields {
		b, err := json.Marshal(f.v)
		if err != nil {
			return cols, fmt.Errorf("failed to marshal save column: %w", err)
		}
		*f.dst = string(b)
	}
	return cols, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (p *PostgresStorage) LoadGame(ctx context.Context, playerName string) (*storage.SaveRecord, error) {
	const query = `
	SELECT id, player_name, strength, luck, agility, player_class, health, points, inventory,
		current_story, story_history, current_choices, current_scene, encounter_count, player, updated_at
	FROM game_saves WHERE player_name = $1`

	var (
		rec                                 storage.SaveRecord
		inventory, history, choices, player []byte
	)
	err := p.db.QueryRowContext(ctx, query, storage.Key(playerName)).Scan(
		&rec.ID, &rec.PlayerName, &rec.Strength, &rec.Luck, &rec.Agility, &rec.PlayerClass,
		&rec.Health, &rec.Points, &inventory, &rec.Stage, &history, &choices,
		&rec.CurrentScene, &rec.EncounterCount, &player, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		p.logger.Error("Failed to load game", "player", playerName, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	for _, c := range []struct {
		src []byte
		dst any
	}{
		{inventory, &rec.Inventory},
		{history, &rec.StoryHistory},
		{choices, &rec.CurrentChoices},
		{player, &rec.Player},
	} {
		if err := json.Unmarshal(c.src, c.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal save column: %w", err)
		}
	}
	if rec.Player.Name != "" {
		rec.PlayerName = rec.Player.Name
	}
	return &rec, nil
}

func (p *PostgresStorage) DeleteGame(ctx context.Context, playerName string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM game_saves WHERE player_name = $1`, storage.Key(playerName)); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}
