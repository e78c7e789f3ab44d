package outcome

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

// KeywordRule binds a set of action words to the stat they test.
type KeywordRule struct {
	Stat     player.Stat
	Keywords []string
}

// KeywordRules is evaluated in order; the first rule with a keyword
// contained in the action wins.
var KeywordRules = []KeywordRule{
	{player.Strength, []string{"fight", "attack", "punch", "strike", "force", "break", "smash", "lift", "push"}},
	{player.Agility, []string{"dodge", "run", "quick", "fast", "escape", "sneak", "climb", "jump", "stealth"}},
	{player.Luck, []string{"luck", "chance", "gamble", "risk", "try", "search", "find", "discover"}},
}

// StatForAction picks the stat a free-text action tests. Matching is a
// case-insensitive substring search; unmatched actions test Luck.
func StatForAction(action string) player.Stat {
	lower := strings.ToLower(action)
	for _, rule := range KeywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Stat
			}
		}
	}
	return player.Luck
}

// Difficulty is a coarse label derived from how elaborate an action is.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Analysis previews how a free-text action will be resolved.
type Analysis struct {
	Stat       player.Stat `json:"stat"`
	StatValue  int         `json:"stat_value"`
	Difficulty Difficulty  `json:"difficulty"`
	Prediction string      `json:"prediction"`
}

// AnalyzeAction describes the stat, difficulty and likely outcome of an
// action without rolling anything.
func AnalyzeAction(action string, p *player.Player) Analysis {
	stat := StatForAction(action)
	value := p.StatValue(stat)

	words := len(strings.Fields(action))
	difficulty := Hard
	switch {
	case words <= 2:
		difficulty = Easy
	case words <= 4:
		difficulty = Medium
	}

	var prediction string
	switch {
	case value >= 8:
		prediction = fmt.Sprintf("With your high %s (%d), you have an excellent chance of success!", stat, value)
	case value >= 6:
		prediction = fmt.Sprintf("Your %s (%d) gives you a good chance of success.", stat, value)
	case value >= 4:
		prediction = fmt.Sprintf("Your %s (%d) makes this challenging but possible.", stat, value)
	default:
		prediction = fmt.Sprintf("With low %s (%d), this action is quite risky.", stat, value)
	}

	return Analysis{
		Stat:       stat,
		StatValue:  value,
		Difficulty: difficulty,
		Prediction: prediction,
	}
}
