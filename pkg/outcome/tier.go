// Package outcome classifies roll totals into tiers and applies the
// rewards and penalties each tier carries.
package outcome

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the graded result of a resolved roll.
type Tier string

const (
	CriticalSuccess Tier = "critical_success"
	GreatSuccess    Tier = "great_success"
	Success         Tier = "success"
	PartialSuccess  Tier = "partial_success"
	Failure         Tier = "failure"
)

// Title renders a tier for display, e.g. "Great Success".
func (t Tier) Title() string {
	return title(strings.ReplaceAll(string(t), "_", " "))
}

// Casers carry state, so one is built per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Succeeded reports whether the tier is any kind of success.
func (t Tier) Succeeded() bool {
	return t != Failure && t != ""
}

// Band maps totals at or above Min to Tier.
type Band struct {
	Min  int
	Tier Tier
}

// Policy is a named tier table bound to one die size. Bands are checked
// in order; totals below every band are failures.
type Policy struct {
	Name  string
	Sides int
	Bands []Band
}

// Coarse is the three-tier table used for numbered encounter choices.
var Coarse = Policy{
	Name:  "coarse",
	Sides: 10,
	Bands: []Band{
		{Min: 15, Tier: GreatSuccess},
		{Min: 10, Tier: Success},
	},
}

// Fine is the five-tier table used for free-text actions.
var Fine = Policy{
	Name:  "fine",
	Sides: 20,
	Bands: []Band{
		{Min: 25, Tier: CriticalSuccess},
		{Min: 18, Tier: GreatSuccess},
		{Min: 12, Tier: Success},
		{Min: 8, Tier: PartialSuccess},
	},
}

// Classify maps a roll total onto the policy's tiers.
func (p Policy) Classify(total int) Tier {
	for _, b := range p.Bands {
		if total >= b.Min {
			return b.Tier
		}
	}
	return Failure
}

// Tiers lists every tier the policy can produce, best first.
func (p Policy) Tiers() []Tier {
	out := make([]Tier, 0, len(p.Bands)+1)
	for _, b := range p.Bands {
		out = append(out, b.Tier)
	}
	return append(out, Failure)
}
