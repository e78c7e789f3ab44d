package outcome

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

var (
	// CriticalRewards are drawn from on a critical success.
	CriticalRewards = []string{"excalibur", "Treasure", "elixir", "crown"}
	// GreatRewards are drawn from on a great success.
	GreatRewards = []string{"sword", "potion", "map", "cool hat"}
	// SuccessRewards are drawn from, half the time, on a plain success.
	SuccessRewards = []string{"potion", "map", "rope"}
)

const (
	failureDamageMin = 10
	failureDamageMax = 20
)

// Resolution is a rolled and classified attempt.
type Resolution struct {
	Policy string      `json:"policy"`
	Stat   player.Stat `json:"stat"`
	Roll   dice.Result `json:"roll"`
	Tier   Tier        `json:"tier"`
}

// RollText renders the audit line shown after narration.
func (r Resolution) RollText() string {
	return fmt.Sprintf("Rolling %s: %d + %d = %d (%s)", r.Stat, r.Roll.Die, r.Roll.Attribute, r.Roll.Total, r.Tier.Title())
}

// Change records one field mutated by Apply.
type Change struct {
	Field  string `json:"field"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Effect is what Apply did to the player.
type Effect struct {
	Tier    Tier     `json:"tier"`
	Points  int      `json:"points"`
	Item    string   `json:"item,omitempty"`
	Changes []Change `json:"changes,omitempty"`
	Dead    bool     `json:"dead"`
}

// Executor resolves choices and actions and applies their tiers.
type Executor struct {
	roller *dice.Roller
	logger *slog.Logger
}

// NewExecutor returns an executor drawing from roller.
func NewExecutor(roller *dice.Roller, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{roller: roller, logger: logger}
}

// ResolveChoice rolls the stat bound to a numbered encounter choice under
// the coarse policy.
func (e *Executor) ResolveChoice(c Choice, p *player.Player) Resolution {
	return e.resolve(Coarse, c.Stat, p)
}

// ResolveAction rolls the keyword-selected stat for a free-text action
// under the fine policy.
func (e *Executor) ResolveAction(action string, p *player.Player) Resolution {
	return e.resolve(Fine, StatForAction(action), p)
}

func (e *Executor) resolve(policy Policy, stat player.Stat, p *player.Player) Resolution {
	roll := e.roller.Roll(policy.Sides, p.StatValue(stat))
	res := Resolution{
		Policy: policy.Name,
		Stat:   stat,
		Roll:   roll,
		Tier:   policy.Classify(roll.Total),
	}
	e.logger.Debug("Resolved roll",
		"policy", policy.Name,
		"stat", stat,
		"die", roll.Die,
		"total", roll.Total,
		"tier", res.Tier)
	return res
}

// Apply mutates p according to tier and reports what changed. Health gains
// never exceed MaxHealth. Dead is set when a failure drains health to zero.
func (e *Executor) Apply(tier Tier, p *player.Player) Effect {
	eff := Effect{Tier: tier}

	switch tier {
	case CriticalSuccess:
		eff.Points = 30
		e.heal(&eff, p, 15)
		e.reward(&eff, p, CriticalRewards)
	case GreatSuccess:
		eff.Points = 20
		e.heal(&eff, p, 10)
		e.reward(&eff, p, GreatRewards)
	case Success:
		eff.Points = 10
		if e.roller.Chance(1, 2) {
			e.reward(&eff, p, SuccessRewards)
		}
	case PartialSuccess:
	default:
		dmg := e.roller.Between(failureDamageMin, failureDamageMax)
		before := p.Health
		p.Damage(dmg)
		eff.Changes = append(eff.Changes, Change{Field: "health", Before: before, After: p.Health})
		eff.Dead = !p.IsAlive()
	}

	e.logger.Debug("Applied outcome",
		"tier", tier,
		"points", eff.Points,
		"item", eff.Item,
		"health", p.Health,
		"dead", eff.Dead)
	return eff
}

func (e *Executor) heal(eff *Effect, p *player.Player, n int) {
	before := p.Health
	p.Heal(n)
	eff.Changes = append(eff.Changes, Change{Field: "health", Before: before, After: p.Health})
}

func (e *Executor) reward(eff *Effect, p *player.Player, pool []string) {
	i := e.roller.Pick(len(pool))
	if i < 0 {
		return
	}
	eff.Item = pool[i]
	p.AddItem(eff.Item)
}

// Narrate returns the stock sentence for an action at a tier, used when no
// generated narration is available.
func Narrate(name, action string, tier Tier) string {
	verb := strings.ToLower(strings.TrimSpace(action))
	switch tier {
	case CriticalSuccess:
		return fmt.Sprintf("%s tries to %s with incredible success! The outcome exceeds all expectations.", name, verb)
	case GreatSuccess:
		return fmt.Sprintf("%s tries to %s very successfully! Everything goes better than planned.", name, verb)
	case Success:
		return fmt.Sprintf("%s tries to %s and succeeds, continuing the adventure.", name, verb)
	case PartialSuccess:
		return fmt.Sprintf("%s tries to %s with mixed results. There are both benefits and drawbacks.", name, verb)
	default:
		return fmt.Sprintf("%s tries to %s but things don't go as planned. The situation becomes more challenging.", name, verb)
	}
}

// Describe summarises an effect for the player.
func Describe(eff Effect) string {
	var parts []string
	switch eff.Tier {
	case CriticalSuccess:
		parts = append(parts, "A legendary triumph!")
	case GreatSuccess:
		parts = append(parts, "Great success!")
	case Success:
		parts = append(parts, "Success!")
	case PartialSuccess:
		parts = append(parts, "You scrape through, no better or worse for it.")
	default:
		parts = append(parts, "Failure!")
	}
	for _, c := range eff.Changes {
		if c.After != c.Before {
			parts = append(parts, fmt.Sprintf("%s %+d.", title(c.Field), c.After-c.Before))
		}
	}
	if eff.Points > 0 {
		parts = append(parts, fmt.Sprintf("+%d points.", eff.Points))
	}
	if eff.Item != "" {
		parts = append(parts, fmt.Sprintf("You found: %s.", eff.Item))
	}
	if eff.Dead {
		parts = append(parts, "You have fallen.")
	}
	return strings.Join(parts, " ")
}
