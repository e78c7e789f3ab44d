// Package player holds the adventurer's record and the progression rules
// that act on it.
package player

import (
	"strings"
	"time"

	"github.com/jwebster45206/verdant-hollow/pkg/inventory"
)

const (
	DefaultName       = "Zachor"
	DefaultHealth     = 100
	DefaultStrength   = 7
	DefaultAgility    = 6
	DefaultLuck       = 5
	DefaultSanity     = 10
	DefaultMaxStat    = 10
	UnlockedMaxStat   = 15
	HordeUnlockLevel  = 5
	DailyEventCadence = 24 * time.Hour
)

// Stat names one of the three rollable attributes.
type Stat string

const (
	Strength Stat = "Strength"
	Agility  Stat = "Agility"
	Luck     Stat = "Luck"
)

// ParseStat reads a stat name, ignoring case.
func ParseStat(s string) (Stat, bool) {
	for _, st := range []Stat{Strength, Agility, Luck} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Player is the adventurer. Health is kept within [0, MaxHealth] by the
// mutating helpers; code that assigns fields directly must call Normalize.
type Player struct {
	Name           string    `json:"name" yaml:"name"`
	Health         int       `json:"health" yaml:"health"`
	MaxHealth      int       `json:"max_health" yaml:"max_health"`
	Strength       int       `json:"strength" yaml:"strength"`
	Agility        int       `json:"agility" yaml:"agility"`
	Luck           int       `json:"luck" yaml:"luck"`
	Sanity         int       `json:"sanity" yaml:"sanity"`
	Corruption     int       `json:"corruption" yaml:"corruption"`
	Reputation     int       `json:"reputation" yaml:"reputation"`
	Level          int       `json:"level" yaml:"level"`
	StatPoints     int       `json:"stat_points" yaml:"stat_points"`
	MaxStat        int       `json:"max_stat" yaml:"max_stat"`
	HordesUnlocked bool      `json:"hordes_unlocked" yaml:"hordes_unlocked"`
	AvailableRoles []Role    `json:"available_roles,omitempty" yaml:"available_roles,omitempty"`
	Inventory      []string  `json:"inventory" yaml:"inventory"`
	LastLogin      time.Time `json:"last_login" yaml:"last_login"`
}

// New returns a level one adventurer with the default attributes.
func New(name string) *Player {
	if name == "" {
		name = DefaultName
	}
	return &Player{
		Name:      name,
		Health:    DefaultHealth,
		MaxHealth: DefaultHealth,
		Strength:  DefaultStrength,
		Agility:   DefaultAgility,
		Luck:      DefaultLuck,
		Sanity:    DefaultSanity,
		Level:     1,
		MaxStat:   DefaultMaxStat,
		Inventory: []string{},
		LastLogin: time.Now(),
	}
}

// IsAlive reports whether the player still has health.
func (p *Player) IsAlive() bool {
	return p.Health > 0
}

// StatValue returns the current value of a rollable attribute.
// Unknown stats read as zero.
func (p *Player) StatValue(s Stat) int {
	switch s {
	case Strength:
		return p.Strength
	case Agility:
		return p.Agility
	case Luck:
		return p.Luck
	}
	return 0
}

// Damage lowers health by n, stopping at zero, and returns the amount lost.
func (p *Player) Damage(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.Health
	p.Health -= n
	if p.Health < 0 {
		p.Health = 0
	}
	return before - p.Health
}

// Heal raises health by n, stopping at MaxHealth, and returns the amount gained.
func (p *Player) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.Health
	p.Health += n
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - before
}

// SetHealth assigns health, clamped to [0, MaxHealth].
func (p *Player) SetHealth(n int) {
	p.Health = n
	p.Normalize()
}

// SetMaxHealth changes the ceiling and clamps current health under it.
func (p *Player) SetMaxHealth(n int) {
	if n < 1 {
		n = 1
	}
	p.MaxHealth = n
	p.Normalize()
}

// Normalize restores the health bounds after direct field edits.
func (p *Player) Normalize() {
	if p.MaxHealth < 1 {
		p.MaxHealth = DefaultHealth
	}
	if p.Health < 0 {
		p.Health = 0
	}
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Inventory == nil {
		p.Inventory = []string{}
	}
}

// AddItem adds an item through the one-per-category rule.
func (p *Player) AddItem(item string) {
	p.Inventory = inventory.AddUnique(p.Inventory, item)
}

// RemoveItem drops the first copy of an item.
func (p *Player) RemoveItem(item string) {
	p.Inventory = inventory.Remove(p.Inventory, item)
}

// HasItem reports whether the player carries item.
func (p *Player) HasItem(item string) bool {
	return inventory.Has(p.Inventory, item)
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	c := *p
	c.Inventory = append([]string{}, p.Inventory...)
	if p.AvailableRoles != nil {
		c.AvailableRoles = append([]Role(nil), p.AvailableRoles...)
	}
	return &c
}
