// Package combat runs horde battles against packs of enemies.
package combat

import (
	_ "embed"
	"fmt"

	"github.com/jwebster45206/d20"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/verdant-hollow/pkg/dice"
)

//go:embed content/enemies.yaml
var bestiaryYAML []byte

// Template describes a kind of enemy. HP and Damage are inclusive ranges.
type Template struct {
	Name        string `yaml:"name"`
	HP          [2]int `yaml:"hp"`
	Damage      [2]int `yaml:"damage"`
	AC          int    `yaml:"ac"`
	Description string `yaml:"description"`
}

// Bestiary holds every template and the packs they appear in.
type Bestiary struct {
	Templates map[string]Template
	Groups    [][]string
}

// LoadBestiary decodes a bestiary document and checks that every group
// member names a known template.
func LoadBestiary(data []byte) (*Bestiary, error) {
	var doc struct {
		Enemies []Template `yaml:"enemies"`
		Groups  [][]string `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bestiary: %w", err)
	}
	b := &Bestiary{Templates: make(map[string]Template, len(doc.Enemies)), Groups: doc.Groups}
	for _, t := range doc.Enemies {
		if t.HP[0] <= 0 || t.HP[1] < t.HP[0] {
			return nil, fmt.Errorf("enemy %q has invalid hp range %v", t.Name, t.HP)
		}
		b.Templates[t.Name] = t
	}
	if len(b.Groups) == 0 {
		return nil, fmt.Errorf("bestiary has no groups")
	}
	for i, g := range b.Groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("group %d is empty", i)
		}
		for _, name := range g {
			if _, ok := b.Templates[name]; !ok {
				return nil, fmt.Errorf("group %d references unknown enemy %q", i, name)
			}
		}
	}
	return b, nil
}

// DefaultBestiary returns the built-in bestiary.
func DefaultBestiary() *Bestiary {
	b, err := LoadBestiary(bestiaryYAML)
	if err != nil {
		panic(err)
	}
	return b
}

// Enemy is one combatant in a battle. Its stat block lives in a d20.Actor;
// current hit points are tracked here so that a defeated enemy can sit at zero.
type Enemy struct {
	ID          string
	Name        string
	Description string
	actor       *d20.Actor
	hp          int
}

// Spawn rolls a new enemy from a template.
func (t Template) Spawn(id string, roller *dice.Roller) (*Enemy, error) {
	hp := roller.Between(t.HP[0], t.HP[1])
	dmg := roller.Between(t.Damage[0], t.Damage[1])
	ac := t.AC
	if ac <= 0 {
		ac = 10
	}
	actor, err := d20.NewActor(id).
		WithHP(hp).
		WithAC(ac).
		WithAttributes(map[string]int{"damage": dmg}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build enemy %s: %w", t.Name, err)
	}
	return &Enemy{
		ID:          id,
		Name:        t.Name,
		Description: t.Description,
		actor:       actor,
		hp:          hp,
	}, nil
}

func (e *Enemy) HP() int    { return e.hp }
func (e *Enemy) MaxHP() int { return e.actor.MaxHP() }
func (e *Enemy) AC() int    { return e.actor.AC() }

// Damage is the enemy's base hit.
func (e *Enemy) Damage() int {
	v, _ := e.actor.Attribute("damage")
	return v
}

func (e *Enemy) Defeated() bool { return e.hp <= 0 }

// takeDamage lowers hit points, keeping the actor in step while alive.
func (e *Enemy) takeDamage(n int) error {
	if n <= 0 || e.Defeated() {
		return nil
	}
	e.hp -= n
	if e.hp <= 0 {
		e.hp = 0
		return nil
	}
	if err := e.actor.SetHP(e.hp); err != nil {
		return fmt.Errorf("failed to set hp on %s: %w", e.ID, err)
	}
	return nil
}
