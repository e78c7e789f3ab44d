package outcome

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

// choiceStats is the positional binding between an encounter's choices
// and the stat they test.
var choiceStats = []player.Stat{player.Strength, player.Luck, player.Agility}

// StatForChoice returns the stat tested by the choice at a zero-based
// index. Indices outside the table test Luck.
func StatForChoice(index int) player.Stat {
	if index < 0 || index >= len(choiceStats) {
		return player.Luck
	}
	return choiceStats[index]
}

// Choice is a parsed numbered selection.
type Choice struct {
	Index   int         `json:"index"`
	Stat    player.Stat `json:"stat"`
	Clamped bool        `json:"clamped"`
}

// ParseChoice reads a 1-based selection out of n options. Anything that
// is not a number in [1, n] selects the first option but is rolled
// against Luck, and is reported as clamped.
func ParseChoice(input string, n int) Choice {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return Choice{Index: 0, Stat: player.Luck, Clamped: true}
	}
	return Choice{Index: v - 1, Stat: StatForChoice(v - 1)}
}

// ParseStrict reads a 1-based selection out of n options and rejects
// anything else.
func ParseStrict(input string, n int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", input)
	}
	if v < 1 || v > n {
		return 0, fmt.Errorf("choice %d out of range 1-%d", v, n)
	}
	return v - 1, nil
}
