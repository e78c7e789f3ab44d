package combat

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/inventory"
	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

// Weapon bonuses added to every hit.
var weaponBonus = map[string]int{
	"sword":               5,
	"better sword":        10,
	"excalibur":           20,
	"enchanted excalibur": 30,
}

const (
	attackSpread = 3
	enemySpread  = 2
)

// Battle is a horde fight in progress.
type Battle struct {
	Enemies []*Enemy
	Round   int
	Escaped bool
	roller  *dice.Roller
}

// RoundResult reports what happened in one exchange.
type RoundResult struct {
	Lines       []string `json:"lines"`
	DamageTaken int      `json:"damage_taken"`
	Escaped     bool     `json:"escaped"`
	Won         bool     `json:"won"`
	Dead        bool     `json:"dead"`
}

// NewHordeBattle rolls a random group from the bestiary.
func NewHordeBattle(b *Bestiary, roller *dice.Roller) (*Battle, error) {
	group := b.Groups[roller.Pick(len(b.Groups))]
	battle := &Battle{roller: roller}
	for i, name := range group {
		e, err := b.Templates[name].Spawn(fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(name, " ", "-")), i+1), roller)
		if err != nil {
			return nil, err
		}
		battle.Enemies = append(battle.Enemies, e)
	}
	return battle, nil
}

// AttackPower is the centre of the player's damage range.
func AttackPower(p *player.Player) int {
	power := p.Strength * 3
	if w, ok := inventory.InCategory(p.Inventory, inventory.Weapons); ok {
		power += weaponBonus[w]
	}
	return power
}

// Over reports whether the fight has ended for any reason.
func (b *Battle) Over(p *player.Player) bool {
	return b.Escaped || !p.IsAlive() || b.Won()
}

// Won reports whether every enemy is defeated.
func (b *Battle) Won() bool {
	for _, e := range b.Enemies {
		if !e.Defeated() {
			return false
		}
	}
	return true
}

// Standing returns the enemies still in the fight.
func (b *Battle) Standing() []*Enemy {
	var out []*Enemy
	for _, e := range b.Enemies {
		if !e.Defeated() {
			out = append(out, e)
		}
	}
	return out
}

// Describe lists the enemies and the moves available.
func (b *Battle) Describe() string {
	var sb strings.Builder
	sb.WriteString("You are ambushed by:\n")
	for i, e := range b.Enemies {
		if e.Defeated() {
			fmt.Fprintf(&sb, "  %d. %s (defeated)\n", i+1, e.Name)
			continue
		}
		fmt.Fprintf(&sb, "  %d. Attack %s (%d HP)\n", i+1, e.Name, e.HP())
	}
	sb.WriteString("Enter an enemy number to attack, 'p' to drink a potion, or 'r' to run.")
	return sb.String()
}

// Attack strikes the enemy at a 1-based position, then the survivors hit back.
func (b *Battle) Attack(target int, p *player.Player) (RoundResult, error) {
	if target < 1 || target > len(b.Enemies) {
		return RoundResult{}, fmt.Errorf("no enemy at position %d", target)
	}
	e := b.Enemies[target-1]
	if e.Defeated() {
		return RoundResult{}, fmt.Errorf("%s is already defeated", e.Name)
	}

	b.Round++
	var res RoundResult
	hit := b.roller.Roll(20, p.Strength)
	if hit.Meets(e.AC()) {
		power := AttackPower(p)
		dmg := b.roller.Between(max(1, power-attackSpread), power+attackSpread)
		if err := e.takeDamage(dmg); err != nil {
			return res, err
		}
		res.Lines = append(res.Lines, fmt.Sprintf("You hit the %s for %d damage! (%s)", e.Name, dmg, hit))
		if e.Defeated() {
			res.Lines = append(res.Lines, fmt.Sprintf("The %s falls.", e.Name))
		}
	} else {
		res.Lines = append(res.Lines, fmt.Sprintf("You miss the %s. (%s)", e.Name, hit))
	}

	b.retaliate(p, &res)
	return res, nil
}

// Flee tries to escape; half the time it fails and the enemies strike.
func (b *Battle) Flee(p *player.Player) RoundResult {
	b.Round++
	var res RoundResult
	if b.roller.Chance(1, 2) {
		b.Escaped = true
		res.Escaped = true
		res.Lines = append(res.Lines, "You escaped!")
		return res
	}
	res.Lines = append(res.Lines, "You failed to escape!")
	b.retaliate(p, &res)
	return res
}

// Drink uses a potion to restore full health; the enemies still strike.
func (b *Battle) Drink(p *player.Player) (RoundResult, error) {
	if !p.HasItem("potion") {
		return RoundResult{}, fmt.Errorf("you have no potion")
	}
	b.Round++
	var res RoundResult
	p.RemoveItem("potion")
	p.SetHealth(p.MaxHealth)
	res.Lines = append(res.Lines, "You drink the potion and feel whole again.")
	b.retaliate(p, &res)
	return res, nil
}

func (b *Battle) retaliate(p *player.Player, res *RoundResult) {
	for _, e := range b.Enemies {
		if e.Defeated() || !p.IsAlive() {
			continue
		}
		dmg := b.roller.Between(max(0, e.Damage()-enemySpread), e.Damage()+enemySpread)
		res.DamageTaken += p.Damage(dmg)
		res.Lines = append(res.Lines, fmt.Sprintf("The %s hits you for %d damage! You now have %d HP.", e.Name, dmg, p.Health))
	}
	res.Won = b.Won()
	res.Dead = !p.IsAlive()
	switch {
	case res.Dead:
		res.Lines = append(res.Lines, "You died.")
	case res.Won:
		res.Lines = append(res.Lines, "You survived the pack!")
	}
}
