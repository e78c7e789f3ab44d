// Package encounter produces the scene and choices for a dynamic
// encounter, from a storyteller model when one is configured and from a
// local pool otherwise.
package encounter

import (
	"context"
	"strings"
)

const (
	// DefaultScene replaces a missing or empty scene line.
	DefaultScene = "You encounter something mysterious in the forest..."
	// DefaultLocation is used when the caller does not name one.
	DefaultLocation = "Verdant Hollow"

	MinChoices = 2
	MaxChoices = 3
)

// DefaultChoices replace a reply that offered fewer than MinChoices.
var DefaultChoices = []string{"Fight with strength", "Try your luck", "Use agility to escape"}

// Source records where an encounter came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Encounter is a scene and the 2-3 choices offered in it. Choice i tests
// the stat bound to position i.
type Encounter struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Scene   string   `json:"scene" yaml:"scene"`
	Choices []string `json:"choices" yaml:"choices"`
	Source  Source   `json:"source,omitempty" yaml:"-"`
}

// Valid reports whether the encounter has a scene and 2-3 choices.
func (e *Encounter) Valid() bool {
	return e != nil && strings.TrimSpace(e.Scene) != "" && len(e.Choices) >= MinChoices && len(e.Choices) <= MaxChoices
}

// Request carries what the generator may use to tailor an encounter.
type Request struct {
	Name         string
	Strength     int
	Luck         int
	Agility      int
	Inventory    []string
	Location     string
	RecentScenes []string
}

// Generator produces one encounter per call.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Encounter, error)
}

// Parse reads a storyteller reply. Lines starting with "SCENE:" set the
// scene, the last one winning. Lines starting with "CHOICE" add the text
// after their first colon, or the whole line when there is none. Fewer
// than two choices fall back to DefaultChoices; more than three are cut.
func Parse(text string) *Encounter {
	var scene string
	var choices []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "SCENE:"):
			scene = strings.TrimSpace(strings.TrimPrefix(line, "SCENE:"))
		case strings.HasPrefix(line, "CHOICE"):
			choice := line
			if _, after, ok := strings.Cut(line, ":"); ok {
				choice = strings.TrimSpace(after)
			}
			choices = append(choices, choice)
		}
	}

	if scene == "" {
		scene = DefaultScene
	}
	if len(choices) < MinChoices {
		choices = append([]string(nil), DefaultChoices...)
	}
	if len(choices) > MaxChoices {
		choices = choices[:MaxChoices]
	}

	return &Encounter{Scene: scene, Choices: choices}
}
