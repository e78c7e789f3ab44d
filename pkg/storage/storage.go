package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/verdant-hollow/pkg/inventory"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

// ErrNotConfigured is returned by backends that were disabled at startup.
var ErrNotConfigured = errors.New("storage backend not configured")

// Storage persists saved games keyed by player name.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveGame writes or replaces the record for rec.PlayerName.
	SaveGame(ctx context.Context, rec *SaveRecord) error
	// LoadGame returns nil, nil when the player has no save.
	LoadGame(ctx context.Context, playerName string) (*SaveRecord, error)
	DeleteGame(ctx context.Context, playerName string) error
}

// SaveRecord is one player's saved game. The flat stat fields mirror the
// hosted table's columns; Player carries the full snapshot for progression.
type SaveRecord struct {
	ID             uuid.UUID     `json:"id" yaml:"id"`
	PlayerName     string        `json:"player_name" yaml:"player_name"`
	Strength       int           `json:"strength" yaml:"strength"`
	Luck           int           `json:"luck" yaml:"luck"`
	Agility        int           `json:"agility" yaml:"agility"`
	PlayerClass    string        `json:"player_class" yaml:"player_class"`
	Health         int           `json:"health" yaml:"health"`
	Points         int           `json:"points" yaml:"points"`
	Inventory      []string      `json:"inventory" yaml:"inventory"`
	Stage          string        `json:"current_story" yaml:"current_story"`
	StoryHistory   []string      `json:"story_history" yaml:"story_history"`
	CurrentChoices []string      `json:"current_choices" yaml:"current_choices"`
	CurrentScene   string        `json:"current_scene,omitempty" yaml:"current_scene,omitempty"`
	EncounterCount int           `json:"encounter_count" yaml:"encounter_count"`
	Player         player.Player `json:"player" yaml:"player"`
	UpdatedAt      time.Time     `json:"updated_at" yaml:"updated_at"`
}

// Key normalizes a player name for use as a storage key.
func Key(playerName string) string {
	return strings.ToLower(strings.TrimSpace(playerName))
}

// Validate checks the fields every backend relies on.
func (r *SaveRecord) Validate() error {
	if r == nil {
		return errors.New("save record cannot be nil")
	}
	if Key(r.PlayerName) == "" {
		return errors.New("player name cannot be empty")
	}
	return nil
}

// Restore rebuilds the player from the record. Older records without a
// snapshot get one from the flat columns.
func (r *SaveRecord) Restore() *player.Player {
	p := r.Player.Clone()
	p.Inventory = append([]string{}, r.Inventory...)
	if p.Name == "" {
		// Older saves only carry the flat fields and may hold duplicate or
		// unknown items from before the one-per-category rule.
		p = player.New(r.PlayerName)
		p.Strength = r.Strength
		p.Luck = r.Luck
		p.Agility = r.Agility
		p.LastLogin = time.Time{}
		p.Inventory = inventory.Clean(r.Inventory)
	}
	p.Health = r.Health
	p.Normalize()
	return p
}
