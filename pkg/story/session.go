package story

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/verdant-hollow/pkg/combat"
	"github.com/jwebster45206/verdant-hollow/pkg/encounter"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
)

const (
	// HistoryLimit caps the story log kept on a session.
	HistoryLimit = 200
	// RecentScenesLimit caps the scenes sent back to the storyteller.
	RecentScenesLimit = 5

	defaultClass = "Adventurer"
)

// Session is one player's run. It is not safe for concurrent use; callers
// serialise turns.
type Session struct {
	ID             uuid.UUID            `json:"id"`
	Player         *player.Player       `json:"player"`
	Points         int                  `json:"points"`
	Stage          string               `json:"stage"`
	Node           NodeID               `json:"node"`
	History        []string             `json:"history"`
	Encounter      *encounter.Encounter `json:"encounter,omitempty"`
	EncounterCount int                  `json:"encounter_count"`
	RecentScenes   []string             `json:"recent_scenes,omitempty"`
	Battle         *combat.Battle       `json:"-"`
	Resumed        bool                 `json:"resumed"`
}

// NewSession starts a fresh run for p at node.
func NewSession(p *player.Player, node NodeID) *Session {
	return &Session{
		ID:      uuid.New(),
		Player:  p,
		Node:    node,
		History: []string{},
	}
}

func (s *Session) log(lines ...string) {
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		s.History = append(s.History, l)
	}
	if over := len(s.History) - HistoryLimit; over > 0 {
		s.History = append([]string(nil), s.History[over:]...)
	}
}

func (s *Session) rememberScene(scene string) {
	s.RecentScenes = append(s.RecentScenes, scene)
	if over := len(s.RecentScenes) - RecentScenesLimit; over > 0 {
		s.RecentScenes = append([]string(nil), s.RecentScenes[over:]...)
	}
}

// Class is the player's first available role, or Adventurer.
func (s *Session) Class() string {
	if len(s.Player.AvailableRoles) > 0 {
		return string(s.Player.AvailableRoles[0])
	}
	return defaultClass
}

// Record builds the save record for the session.
func (s *Session) Record(choices []string) *storage.SaveRecord {
	p := s.Player.Clone()
	rec := &storage.SaveRecord{
		ID:             s.ID,
		PlayerName:     p.Name,
		Strength:       p.Strength,
		Luck:           p.Luck,
		Agility:        p.Agility,
		PlayerClass:    s.Class(),
		Health:         p.Health,
		Points:         s.Points,
		Inventory:      append([]string{}, p.Inventory...),
		Stage:          s.Stage,
		StoryHistory:   append([]string{}, s.History...),
		CurrentChoices: append([]string{}, choices...),
		EncounterCount: s.EncounterCount,
		Player:         *p,
		UpdatedAt:      time.Now().UTC(),
	}
	if s.Encounter != nil {
		rec.CurrentScene = s.Encounter.Scene
	}
	return rec
}
