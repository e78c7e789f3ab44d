package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	p := New("")
	assert.Equal(t, "Zachor", p.Name)
	assert.Equal(t, 100, p.Health)
	assert.Equal(t, 100, p.MaxHealth)
	assert.Equal(t, 7, p.Strength)
	assert.Equal(t, 6, p.Agility)
	assert.Equal(t, 5, p.Luck)
	assert.Equal(t, 10, p.Sanity)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 10, p.MaxStat)
	assert.False(t, p.HordesUnlocked)
	assert.NotNil(t, p.Inventory)
}

func TestPlayer_HealthBounds(t *testing.T) {
	p := New("Ash")

	lost := p.Damage(30)
	assert.Equal(t, 30, lost)
	assert.Equal(t, 70, p.Health)

	gained := p.Heal(50)
	assert.Equal(t, 30, gained)
	assert.Equal(t, 100, p.Health)

	lost = p.Damage(250)
	assert.Equal(t, 100, lost)
	assert.Equal(t, 0, p.Health)
	assert.False(t, p.IsAlive())

	p.SetHealth(150)
	assert.Equal(t, 100, p.Health)

	p.SetMaxHealth(150)
	p.SetHealth(150)
	assert.Equal(t, 150, p.Health)

	p.SetMaxHealth(80)
	assert.Equal(t, 80, p.Health)
}

func TestPlayer_Items(t *testing.T) {
	p := New("Ash")
	p.AddItem("sword")
	p.AddItem("better sword")
	p.AddItem("potion")
	assert.Equal(t, []string{"better sword", "potion"}, p.Inventory)
	p.RemoveItem("potion")
	assert.False(t, p.HasItem("potion"))
}

func TestPlayer_CloneIsDeep(t *testing.T) {
	p := New("Ash")
	p.AddItem("map")
	c := p.Clone()
	c.AddItem("sword")
	c.Health = 1
	assert.Equal(t, []string{"map"}, p.Inventory)
	assert.Equal(t, 100, p.Health)
}

func TestDetermineRoles(t *testing.T) {
	tests := []struct {
		name string
		rep  int
		corr int
		want []Role
	}{
		{"politician only", 8, 8, []Role{RolePolitician}},
		{"cultist and outcast", 1, 9, []Role{RoleDarkCultist, RoleOutcast}},
		{"priest", 6, 2, []Role{RolePriest}},
		{"fresh player is an outcast", 0, 0, []Role{RoleOutcast}},
		{"politician and cultist", 7, 9, []Role{RolePolitician, RoleDarkCultist}},
		{"nothing", 5, 5, []Role{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineRoles(tt.rep, tt.corr))
		})
	}
}

func TestLevelUp(t *testing.T) {
	p := New("Ash")
	p.Health = 1
	p.Reputation = 8
	p.Corruption = 8

	next := LevelUp(*p)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 1, next.StatPoints)
	assert.Equal(t, 100, next.Health)
	assert.Equal(t, []Role{RolePolitician}, next.AvailableRoles)

	// input untouched
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, p.Health)
	assert.Nil(t, p.AvailableRoles)
}

func TestLevelUp_RolesReplaced(t *testing.T) {
	p := New("Ash")
	p.AvailableRoles = []Role{RolePriest, RoleDarkCultist}
	p.Reputation = 8
	p.Corruption = 8

	first := LevelUp(*p)
	second := LevelUp(*p)
	assert.Equal(t, first.AvailableRoles, second.AvailableRoles)
	assert.Equal(t, []Role{RolePolitician}, first.AvailableRoles)
}

func TestLevelUp_UnlocksPastFive(t *testing.T) {
	p := *New("Ash")
	for p.Level < 5 {
		p = LevelUp(p)
		assert.Equal(t, 10, p.MaxStat)
		assert.False(t, p.HordesUnlocked)
	}

	p = LevelUp(p)
	require.Equal(t, 6, p.Level)
	assert.Equal(t, 15, p.MaxStat)
	assert.True(t, p.HordesUnlocked)

	p = LevelUp(p)
	assert.Equal(t, 15, p.MaxStat)
	assert.True(t, p.HordesUnlocked)
}

func TestDailyEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New("Ash")
	p.LastLogin = now.Add(-25 * time.Hour)
	assert.True(t, p.DailyEvent(now))
	assert.Equal(t, 1, p.Corruption)
	assert.Equal(t, now, p.LastLogin)

	assert.False(t, p.DailyEvent(now.Add(time.Hour)))
	assert.Equal(t, 1, p.Corruption)

	p.LastLogin = time.Time{}
	assert.False(t, p.DailyEvent(now))
	assert.Equal(t, now, p.LastLogin)
}

func TestSpendStatPoint(t *testing.T) {
	p := New("Ash")
	assert.False(t, p.SpendStatPoint(Strength))

	p.StatPoints = 2
	assert.True(t, p.SpendStatPoint(Strength))
	assert.Equal(t, 8, p.Strength)
	assert.Equal(t, 1, p.StatPoints)

	p.Luck = p.MaxStat
	assert.False(t, p.SpendStatPoint(Luck))
	assert.False(t, p.SpendStatPoint(Stat("Charm")))
}

func TestStatValue(t *testing.T) {
	p := New("Ash")
	assert.Equal(t, 7, p.StatValue(Strength))
	assert.Equal(t, 6, p.StatValue(Agility))
	assert.Equal(t, 5, p.StatValue(Luck))
	assert.Equal(t, 0, p.StatValue(Stat("Sanity")))
}

func TestParseStat(t *testing.T) {
	tests := []struct {
		in   string
		want Stat
		ok   bool
	}{
		{"strength", Strength, true},
		{" AGILITY ", Agility, true},
		{"Luck", Luck, true},
		{"sanity", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
