package encounter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/pkg/chat"
	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/textfilter"
)

type stubLLM struct {
	reply string
	err   error
	calls [][]chat.ChatMessage
}

func (s *stubLLM) Chat(_ context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return nil, s.err
	}
	return &chat.ChatResponse{Message: s.reply}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantScene   string
		wantChoices []string
	}{
		{
			name:        "well formed",
			text:        "SCENE: A troll blocks the bridge.\nCHOICE1: Shove it aside\nCHOICE2: Bet it a riddle\nCHOICE3: Slip underneath",
			wantScene:   "A troll blocks the bridge.",
			wantChoices: []string{"Shove it aside", "Bet it a riddle", "Slip underneath"},
		},
		{
			name:        "blank lines and padding",
			text:        "\n  SCENE:   Mist rolls in.  \n\n CHOICE1: Push on\n\nCHOICE2: Wait\n",
			wantScene:   "Mist rolls in.",
			wantChoices: []string{"Push on", "Wait"},
		},
		{
			name:        "last scene wins",
			text:        "SCENE: first\nSCENE: second\nCHOICE1: a\nCHOICE2: b",
			wantScene:   "second",
			wantChoices: []string{"a", "b"},
		},
		{
			name:        "choice without colon keeps whole line",
			text:        "SCENE: x\nCHOICE one\nCHOICE2: two",
			wantScene:   "x",
			wantChoices: []string{"CHOICE one", "two"},
		},
		{
			name:        "only first colon splits",
			text:        "SCENE: x\nCHOICE1: Say: hello\nCHOICE2: b",
			wantScene:   "x",
			wantChoices: []string{"Say: hello", "b"},
		},
		{
			name:        "one choice falls back to defaults",
			text:        "SCENE: A lonely shrine.\nCHOICE1: Pray",
			wantScene:   "A lonely shrine.",
			wantChoices: DefaultChoices,
		},
		{
			name:        "no scene uses default",
			text:        "CHOICE1: a\nCHOICE2: b",
			wantScene:   DefaultScene,
			wantChoices: []string{"a", "b"},
		},
		{
			name:        "garbage",
			text:        "I'm sorry, I can't help with that.",
			wantScene:   DefaultScene,
			wantChoices: DefaultChoices,
		},
		{
			name:        "extra choices truncated",
			text:        "SCENE: x\nCHOICE1: a\nCHOICE2: b\nCHOICE3: c\nCHOICE4: d",
			wantScene:   "x",
			wantChoices: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := Parse(tt.text)
			assert.Equal(t, tt.wantScene, enc.Scene)
			assert.Equal(t, tt.wantChoices, enc.Choices)
			assert.True(t, enc.Valid())
		})
	}
}

func TestParse_DefaultsAreCopied(t *testing.T) {
	enc := Parse("")
	enc.Choices[0] = "changed"
	assert.Equal(t, "Fight with strength", DefaultChoices[0])
}

func TestLoadPool(t *testing.T) {
	pool, err := LoadPool(fallbackPool)
	require.NoError(t, err)
	require.Len(t, pool, 3)
	assert.Equal(t, "goblin_ambush", pool[0].ID)
	assert.Equal(t, "A goblin jumps out from behind a tree, wielding a rusty dagger!", pool[0].Scene)
	assert.Equal(t, []string{"Help them directly", "Offer them an item from your inventory", "Approach cautiously"}, pool[2].Choices)

	_, err = LoadPool([]byte("encounters: []"))
	assert.Error(t, err)

	_, err = LoadPool([]byte("encounters:\n  - scene: x\n    choices: [only one]\n"))
	assert.Error(t, err)

	_, err = LoadPool([]byte(":::"))
	assert.Error(t, err)
}

func TestFallbackGenerator(t *testing.T) {
	src := dice.NewScriptedSource(1)
	g := NewFallbackGenerator(dice.NewRoller(src))

	enc, err := g.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "You find a mysterious glowing chest half-buried in the ground.", enc.Scene)
	assert.Equal(t, SourceFallback, enc.Source)
	assert.Equal(t, []int{3}, src.Calls())

	enc.Choices[0] = "mutated"
	assert.Equal(t, "Force it open with strength", g.Pool()[1].Choices[0])
}

func TestFallbackGenerator_AlwaysValid(t *testing.T) {
	g := NewFallbackGenerator(dice.NewRoller(nil))
	for i := 0; i < 100; i++ {
		enc, err := g.Generate(context.Background(), Request{})
		require.NoError(t, err)
		require.True(t, enc.Valid())
	}
}

func TestNewFallbackGeneratorWithPool(t *testing.T) {
	_, err := NewFallbackGeneratorWithPool(nil, dice.NewRoller(nil))
	assert.Error(t, err)

	g, err := NewFallbackGeneratorWithPool([]Encounter{{Scene: "s", Choices: []string{"a", "b"}}}, dice.NewRoller(nil))
	require.NoError(t, err)
	enc, _ := g.Generate(context.Background(), Request{})
	assert.Equal(t, "s", enc.Scene)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Request{
		Name:         "Zachor",
		Strength:     7,
		Luck:         5,
		Agility:      6,
		Inventory:    []string{"sword", "map"},
		RecentScenes: []string{"A goblin jumps out"},
	}, textfilter.RatingPG13)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Strength: 7")
	assert.Contains(t, prompt, "- Luck: 5")
	assert.Contains(t, prompt, "- Agility: 6")
	assert.Contains(t, prompt, "- Inventory: sword, map")
	assert.Contains(t, prompt, "- Location: Verdant Hollow")
	assert.Contains(t, prompt, "Do not repeat any of these recent encounters:\n- A goblin jumps out")
	assert.Contains(t, prompt, "PG13 rating")
	assert.Contains(t, prompt, "CHOICE3: [choice] (Agility-based)")

	prompt, err = BuildPrompt(Request{Location: "the hut"}, "")
	require.NoError(t, err)
	assert.Contains(t, prompt, "- Inventory: nothing")
	assert.Contains(t, prompt, "- Location: the hut")
	assert.NotContains(t, prompt, "Do not repeat")
	assert.NotContains(t, prompt, "rating")
}

func TestAIGenerator_Generate(t *testing.T) {
	llm := &stubLLM{reply: "SCENE: A bastard knight bars the way.\nCHOICE1: Fight\nCHOICE2: Gamble\nCHOICE3: Flee"}
	g := NewAIGenerator(llm, textfilter.RatingPG, quietLogger())

	enc, err := g.Generate(context.Background(), Request{Strength: 7})
	require.NoError(t, err)
	assert.Equal(t, SourceAI, enc.Source)
	assert.Equal(t, "A knave knight bars the way.", enc.Scene)
	assert.Equal(t, []string{"Fight", "Gamble", "Flee"}, enc.Choices)

	require.Len(t, llm.calls, 1)
	require.Len(t, llm.calls[0], 2)
	assert.Equal(t, chat.ChatRoleSystem, llm.calls[0][0].Role)
	assert.True(t, strings.Contains(llm.calls[0][1].Content, "- Strength: 7"))
}

func TestAIGenerator_UnfilteredRating(t *testing.T) {
	llm := &stubLLM{reply: "SCENE: A bastard knight bars the way.\nCHOICE1: a\nCHOICE2: b"}
	g := NewAIGenerator(llm, textfilter.RatingR, quietLogger())
	enc, err := g.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "A bastard knight bars the way.", enc.Scene)
}

func TestAIGenerator_Errors(t *testing.T) {
	g := NewAIGenerator(&stubLLM{err: errors.New("rate limited")}, textfilter.RatingPG13, quietLogger())
	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorContains(t, err, "rate limited")

	g = NewAIGenerator(&stubLLM{reply: "   "}, textfilter.RatingPG13, quietLogger())
	_, err = g.Generate(context.Background(), Request{})
	assert.ErrorContains(t, err, "empty response")
}

func TestWithFallback(t *testing.T) {
	fallback := NewFallbackGenerator(dice.NewRoller(dice.NewScriptedSource(0)))

	t.Run("primary succeeds", func(t *testing.T) {
		llm := &stubLLM{reply: "SCENE: ok\nCHOICE1: a\nCHOICE2: b"}
		g := NewWithFallback(NewAIGenerator(llm, textfilter.RatingR, quietLogger()), fallback, quietLogger())
		enc, err := g.Generate(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, SourceAI, enc.Source)
	})

	t.Run("primary fails once per call", func(t *testing.T) {
		llm := &stubLLM{err: errors.New("unauthorized")}
		g := NewWithFallback(NewAIGenerator(llm, textfilter.RatingR, quietLogger()), fallback, quietLogger())
		enc, err := g.Generate(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, SourceFallback, enc.Source)
		assert.Equal(t, "A goblin jumps out from behind a tree, wielding a rusty dagger!", enc.Scene)
		assert.Len(t, llm.calls, 1)
	})
}
