package player

import "time"

// Role is a narrative role the player may take on.
type Role string

const (
	RolePolitician  Role = "Politician"
	RolePriest      Role = "Priest"
	RoleDarkCultist Role = "Dark Cultist"
	RoleOutcast     Role = "Outcast"
)

type roleRule struct {
	role Role
	ok   func(rep, corr int) bool
}

// Rules are independent; a player can qualify for several at once.
var roleRules = []roleRule{
	{RolePolitician, func(rep, corr int) bool { return rep >= 7 && corr >= 7 }},
	{RolePriest, func(rep, corr int) bool { return rep >= 6 && corr <= 2 }},
	{RoleDarkCultist, func(rep, corr int) bool { return corr >= 9 }},
	{RoleOutcast, func(rep, corr int) bool { return rep <= 2 }},
}

// DetermineRoles returns every role the reputation and corruption values
// qualify for, in a fixed order. It never returns nil.
func DetermineRoles(reputation, corruption int) []Role {
	roles := []Role{}
	for _, r := range roleRules {
		if r.ok(reputation, corruption) {
			roles = append(roles, r.role)
		}
	}
	return roles
}

// LevelUp returns an advanced copy of p: one more level and stat point,
// full health, the stat cap and hordes unlocked past level five, and
// roles recomputed from scratch. p is left untouched.
func LevelUp(p Player) Player {
	next := *p.Clone()
	next.Level++
	next.StatPoints++
	next.Health = next.MaxHealth
	if next.Level > HordeUnlockLevel {
		next.MaxStat = UnlockedMaxStat
		next.HordesUnlocked = true
	}
	next.AvailableRoles = DetermineRoles(next.Reputation, next.Corruption)
	return next
}

// DailyEvent adds one corruption when at least a day has passed since the
// last login and stamps the login time. It reports whether it fired.
// A zero LastLogin only records the time.
func (p *Player) DailyEvent(now time.Time) bool {
	if p.LastLogin.IsZero() {
		p.LastLogin = now
		return false
	}
	if now.Sub(p.LastLogin) < DailyEventCadence {
		return false
	}
	p.Corruption++
	p.LastLogin = now
	return true
}

// SpendStatPoint raises one attribute by one if a point is available and
// the attribute is below the cap.
func (p *Player) SpendStatPoint(s Stat) bool {
	if p.StatPoints <= 0 {
		return false
	}
	var field *int
	switch s {
	case Strength:
		field = &p.Strength
	case Agility:
		field = &p.Agility
	case Luck:
		field = &p.Luck
	default:
		return false
	}
	if *field >= p.MaxStat {
		return false
	}
	*field++
	p.StatPoints--
	return true
}
