package encounter

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/verdant-hollow/pkg/dice"
)

//go:embed content/fallback.yaml
var fallbackPool []byte

// FallbackGenerator picks uniformly from a fixed pool. Repeats are allowed.
type FallbackGenerator struct {
	pool   []Encounter
	roller *dice.Roller
}

var _ Generator = (*FallbackGenerator)(nil)

// LoadPool decodes a YAML document with a top-level "encounters" list.
// Every entry must have a scene and 2-3 choices.
func LoadPool(data []byte) ([]Encounter, error) {
	var doc struct {
		Encounters []Encounter `yaml:"encounters"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse encounter pool: %w", err)
	}
	if len(doc.Encounters) == 0 {
		return nil, fmt.Errorf("encounter pool is empty")
	}
	for i := range doc.Encounters {
		if !doc.Encounters[i].Valid() {
			return nil, fmt.Errorf("encounter %d (%s) needs a scene and %d-%d choices", i, doc.Encounters[i].ID, MinChoices, MaxChoices)
		}
	}
	return doc.Encounters, nil
}

// NewFallbackGenerator uses the built-in pool.
func NewFallbackGenerator(roller *dice.Roller) *FallbackGenerator {
	pool, err := LoadPool(fallbackPool)
	if err != nil {
		// The embedded pool is part of the binary; a bad one is a build defect.
		panic(err)
	}
	return &FallbackGenerator{pool: pool, roller: roller}
}

// NewFallbackGeneratorWithPool uses a caller-supplied pool.
func NewFallbackGeneratorWithPool(pool []Encounter, roller *dice.Roller) (*FallbackGenerator, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("encounter pool is empty")
	}
	return &FallbackGenerator{pool: pool, roller: roller}, nil
}

// Pool returns a copy of the encounters this generator draws from.
func (g *FallbackGenerator) Pool() []Encounter {
	out := make([]Encounter, len(g.pool))
	copy(out, g.pool)
	return out
}

// Generate ignores the request and returns a random pool entry. It never fails.
func (g *FallbackGenerator) Generate(_ context.Context, _ Request) (*Encounter, error) {
	e := g.pool[g.roller.Pick(len(g.pool))]
	e.Choices = append([]string(nil), e.Choices...)
	e.Source = SourceFallback
	return &e, nil
}
