package outcome

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCoarse_Classify(t *testing.T) {
	tests := []struct {
		total int
		want  Tier
	}{
		{16, GreatSuccess},
		{15, GreatSuccess},
		{11, Success},
		{10, Success},
		{9, Failure},
		{5, Failure},
	}
	for _, tt := range tests {
		if got := Coarse.Classify(tt.total); got != tt.want {
			t.Errorf("Coarse.Classify(%d) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestFine_Classify(t *testing.T) {
	tests := []struct {
		total int
		want  Tier
	}{
		{30, CriticalSuccess},
		{25, CriticalSuccess},
		{24, GreatSuccess},
		{18, GreatSuccess},
		{12, Success},
		{11, PartialSuccess},
		{8, PartialSuccess},
		{7, Failure},
	}
	for _, tt := range tests {
		if got := Fine.Classify(tt.total); got != tt.want {
			t.Errorf("Fine.Classify(%d) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestPolicy_Tiers(t *testing.T) {
	assert.Equal(t, []Tier{GreatSuccess, Success, Failure}, Coarse.Tiers())
	assert.Len(t, Fine.Tiers(), 5)
}

func TestTier_Title(t *testing.T) {
	assert.Equal(t, "Great Success", GreatSuccess.Title())
	assert.Equal(t, "Failure", Failure.Title())
	assert.True(t, PartialSuccess.Succeeded())
	assert.False(t, Failure.Succeeded())
}

func TestStatForChoice(t *testing.T) {
	assert.Equal(t, player.Strength, StatForChoice(0))
	assert.Equal(t, player.Luck, StatForChoice(1))
	assert.Equal(t, player.Agility, StatForChoice(2))
	assert.Equal(t, player.Luck, StatForChoice(3))
	assert.Equal(t, player.Luck, StatForChoice(-1))
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  Choice
	}{
		{"1", 3, Choice{Index: 0, Stat: player.Strength}},
		{" 2 ", 3, Choice{Index: 1, Stat: player.Luck}},
		{"3", 3, Choice{Index: 2, Stat: player.Agility}},
		{"3", 2, Choice{Index: 0, Stat: player.Luck, Clamped: true}},
		{"0", 3, Choice{Index: 0, Stat: player.Luck, Clamped: true}},
		{"attack", 3, Choice{Index: 0, Stat: player.Luck, Clamped: true}},
		{"", 3, Choice{Index: 0, Stat: player.Luck, Clamped: true}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseChoice(tt.input, tt.n))
		})
	}
}

func TestParseStrict(t *testing.T) {
	i, err := ParseStrict("2", 2)
	assert.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = ParseStrict("3", 2)
	assert.Error(t, err)
	_, err = ParseStrict("yes", 2)
	assert.Error(t, err)
}

func TestStatForAction(t *testing.T) {
	tests := []struct {
		action string
		want   player.Stat
	}{
		{"Attack the goblin", player.Strength},
		{"SMASH the door", player.Strength},
		{"sneak past the guard", player.Agility},
		{"climb the wall", player.Agility},
		{"search the room", player.Luck},
		{"sing a song", player.Luck},
		{"run and fight", player.Strength},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, StatForAction(tt.action))
		})
	}
}

func TestAnalyzeAction(t *testing.T) {
	p := player.New("Ash")
	p.Strength = 8
	p.Agility = 4
	p.Luck = 2

	a := AnalyzeAction("attack", p)
	assert.Equal(t, player.Strength, a.Stat)
	assert.Equal(t, Easy, a.Difficulty)
	assert.Contains(t, a.Prediction, "excellent chance")

	a = AnalyzeAction("quickly dodge the blade", p)
	assert.Equal(t, player.Agility, a.Stat)
	assert.Equal(t, Medium, a.Difficulty)
	assert.Contains(t, a.Prediction, "challenging but possible")

	a = AnalyzeAction("look around the old hut for anything", p)
	assert.Equal(t, player.Luck, a.Stat)
	assert.Equal(t, Hard, a.Difficulty)
	assert.Contains(t, a.Prediction, "quite risky")
}

func TestExecutor_ResolveChoice(t *testing.T) {
	p := player.New("Ash")
	// d10 shows 8; strength 7 -> 15
	ex := NewExecutor(dice.NewRoller(dice.Faces(8)), testLogger())
	res := ex.ResolveChoice(ParseChoice("1", 3), p)
	assert.Equal(t, "coarse", res.Policy)
	assert.Equal(t, player.Strength, res.Stat)
	assert.Equal(t, 10, res.Roll.Sides)
	assert.Equal(t, 15, res.Roll.Total)
	assert.Equal(t, GreatSuccess, res.Tier)
	assert.Equal(t, "Rolling Strength: 8 + 7 = 15 (Great Success)", res.RollText())
}

func TestExecutor_ResolveClampedChoice(t *testing.T) {
	p := player.New("Ash")
	// d10 shows 4; luck 5 -> 9
	ex := NewExecutor(dice.NewRoller(dice.Faces(4)), testLogger())
	res := ex.ResolveChoice(ParseChoice("9", 3), p)
	assert.Equal(t, player.Luck, res.Stat)
	assert.Equal(t, Failure, res.Tier)
}

func TestExecutor_ResolveAction(t *testing.T) {
	p := player.New("Ash")
	// d20 shows 18; strength 7 -> 25
	ex := NewExecutor(dice.NewRoller(dice.Faces(18)), testLogger())
	res := ex.ResolveAction("strike the troll", p)
	assert.Equal(t, "fine", res.Policy)
	assert.Equal(t, 20, res.Roll.Sides)
	assert.Equal(t, CriticalSuccess, res.Tier)
}

func TestExecutor_Apply(t *testing.T) {
	t.Run("critical success", func(t *testing.T) {
		p := player.New("Ash")
		p.Health = 50
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(0)), testLogger())
		eff := ex.Apply(CriticalSuccess, p)
		assert.Equal(t, 30, eff.Points)
		assert.Equal(t, 65, p.Health)
		assert.Equal(t, "excalibur", eff.Item)
		assert.True(t, p.HasItem("excalibur"))
	})

	t.Run("great success caps health", func(t *testing.T) {
		p := player.New("Ash")
		p.Health = 95
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(3)), testLogger())
		eff := ex.Apply(GreatSuccess, p)
		assert.Equal(t, 20, eff.Points)
		assert.Equal(t, 100, p.Health)
		assert.Equal(t, "cool hat", eff.Item)
	})

	t.Run("success with item", func(t *testing.T) {
		p := player.New("Ash")
		// chance draw 0 (<1 of 2), then pick index 2
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(0, 2)), testLogger())
		eff := ex.Apply(Success, p)
		assert.Equal(t, 10, eff.Points)
		assert.Equal(t, "rope", eff.Item)
	})

	t.Run("success without item", func(t *testing.T) {
		p := player.New("Ash")
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(1)), testLogger())
		eff := ex.Apply(Success, p)
		assert.Equal(t, 10, eff.Points)
		assert.Empty(t, eff.Item)
		assert.Empty(t, p.Inventory)
	})

	t.Run("partial success changes nothing", func(t *testing.T) {
		p := player.New("Ash")
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource()), testLogger())
		eff := ex.Apply(PartialSuccess, p)
		assert.Equal(t, 0, eff.Points)
		assert.Equal(t, 100, p.Health)
		assert.Empty(t, eff.Changes)
	})

	t.Run("failure damages", func(t *testing.T) {
		p := player.New("Ash")
		// Between(10, 20) with draw 5 -> 15
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(5)), testLogger())
		eff := ex.Apply(Failure, p)
		assert.Equal(t, 85, p.Health)
		assert.False(t, eff.Dead)
		assert.Equal(t, []Change{{Field: "health", Before: 100, After: 85}}, eff.Changes)
	})

	t.Run("failure kills", func(t *testing.T) {
		p := player.New("Ash")
		p.Health = 12
		ex := NewExecutor(dice.NewRoller(dice.NewScriptedSource(10)), testLogger())
		eff := ex.Apply(Failure, p)
		assert.Equal(t, 0, p.Health)
		assert.True(t, eff.Dead)
		assert.Contains(t, Describe(eff), "You have fallen.")
	})
}

func TestNarrate(t *testing.T) {
	assert.Equal(t,
		"Ash tries to open the chest with incredible success! The outcome exceeds all expectations.",
		Narrate("Ash", "Open the chest", CriticalSuccess))
	assert.Contains(t, Narrate("Ash", "run", Failure), "don't go as planned")
}

func TestDescribe(t *testing.T) {
	eff := Effect{
		Tier:    GreatSuccess,
		Points:  20,
		Item:    "map",
		Changes: []Change{{Field: "health", Before: 80, After: 90}},
	}
	assert.Equal(t, "Great success! Health +10. +20 points. You found: map.", Describe(eff))
}
