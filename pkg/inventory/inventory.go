// Package inventory keeps a player's bag to at most one item per category.
package inventory

import "slices"

// Category groups interchangeable items; a bag holds one of each.
type Category string

const (
	Weapons     Category = "weapons"
	Armor       Category = "armor"
	Hats        Category = "hats"
	Consumables Category = "consumables"
	Treasures   Category = "treasures"
	Maps        Category = "maps"
	Tools       Category = "tools"
	Books       Category = "books"
)

// Categories lists every category in display order.
var Categories = []Category{Weapons, Armor, Hats, Consumables, Treasures, Maps, Tools, Books}

var categoryItems = map[Category][]string{
	Weapons:     {"sword", "better sword", "excalibur", "enchanted excalibur"},
	Armor:       {"Dragon armour", "leather armor", "chain mail", "plate armor"},
	Hats:        {"cool hat", "wizard's hat", "pirate hat", "crown"},
	Consumables: {"potion", "health potion", "mana potion", "elixir"},
	Treasures:   {"Treasure", "Fake, trap treasure chest", "gold coins", "jewels", "ancient artifact"},
	Maps:        {"map", "treasure map", "dungeon map", "world map"},
	Tools:       {"lockpick", "rope", "torch", "compass"},
	Books:       {"spellbook", "journal", "ancient tome", "scroll"},
}

var itemCategory = func() map[string]Category {
	m := make(map[string]Category)
	for c, items := range categoryItems {
		for _, it := range items {
			m[it] = c
		}
	}
	return m
}()

// CategoryOf returns the category an item belongs to. Matching is exact.
func CategoryOf(item string) (Category, bool) {
	c, ok := itemCategory[item]
	return c, ok
}

// ItemsIn returns the known items of a category.
func ItemsIn(c Category) []string {
	return slices.Clone(categoryItems[c])
}

// AddUnique returns a new bag with item appended after evicting every item
// that shares its category. Items with no category are appended and evict
// nothing. The input slice is not modified.
func AddUnique(inv []string, item string) []string {
	cat, ok := CategoryOf(item)
	out := make([]string, 0, len(inv)+1)
	for _, existing := range inv {
		if ok {
			if c, has := CategoryOf(existing); has && c == cat {
				continue
			}
		}
		out = append(out, existing)
	}
	return append(out, item)
}

// Clean keeps the first item of each category in bag order and drops the
// rest. Items with no category are dropped as well, so a cleaned bag only
// ever holds catalogued items. Clean is idempotent.
func Clean(inv []string) []string {
	seen := make(map[Category]bool)
	out := make([]string, 0, len(inv))
	for _, item := range inv {
		c, ok := CategoryOf(item)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, item)
	}
	return out
}

// Remove returns a new bag without the first occurrence of item.
func Remove(inv []string, item string) []string {
	i := slices.Index(inv, item)
	if i < 0 {
		return slices.Clone(inv)
	}
	out := make([]string, 0, len(inv)-1)
	out = append(out, inv[:i]...)
	return append(out, inv[i+1:]...)
}

// Has reports whether the bag holds item.
func Has(inv []string, item string) bool {
	return slices.Contains(inv, item)
}

// InCategory returns the item currently held for a category, if any.
func InCategory(inv []string, c Category) (string, bool) {
	for _, item := range inv {
		if ic, ok := CategoryOf(item); ok && ic == c {
			return item, true
		}
	}
	return "", false
}
