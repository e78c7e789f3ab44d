// Package textfilter softens generated scene text for younger ratings.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rating is the content rating a game is configured for.
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG13"
	RatingR    Rating = "R"
)

// ParseRating normalises a configured rating. Unknown values become PG13.
func ParseRating(s string) Rating {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "G":
		return RatingG
	case "PG":
		return RatingPG
	case "R":
		return RatingR
	default:
		return RatingPG13
	}
}

// Filters reports whether text for this rating passes through the filter.
func (r Rating) Filters() bool {
	return r != RatingR
}

// Words a storyteller model tends to reach for, mapped to tavern-safe
// substitutes. Fantasy vocabulary such as "hell" or "damned" is left alone.
var replacements = map[string]string{
	"fuck":         "curse",
	"fucking":      "cursed",
	"motherfucker": "wretch",
	"shit":         "dung",
	"bullshit":     "nonsense",
	"horseshit":    "nonsense",
	"shithead":     "wretch",
	"dipshit":      "fool",
	"ass":          "hide",
	"asshole":      "wretch",
	"dumbass":      "fool",
	"jackass":      "fool",
	"bitch":        "hag",
	"bastard":      "knave",
	"crap":         "muck",
	"piss":         "bile",
	"dick":         "knave",
	"dickhead":     "knave",
	"prick":        "knave",
	"douche":       "knave",
	"douchebag":    "knave",
	"goddamn":      "accursed",
	"cock":         "[censored]",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
}

type rule struct {
	word        string
	pattern     *regexp.Regexp
	replacement string
}

// Filter replaces listed words on whole-word boundaries.
type Filter struct {
	rules []rule
}

// New compiles the word list. Longer words are tried first.
func New() *Filter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	f := &Filter{rules: make([]rule, 0, len(words))}
	for _, w := range words {
		f.rules = append(f.rules, rule{
			word:        w,
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
			replacement: replacements[w],
		})
	}
	return f
}

// Scrub returns text with every listed word replaced and the number of
// replacements made.
func (f *Filter) Scrub(text string) (string, int) {
	n := 0
	for _, r := range f.rules {
		text = r.pattern.ReplaceAllStringFunc(text, func(match string) string {
			n++
			return matchCase(match, r.replacement)
		})
	}
	return text, n
}

// Apply scrubs text when the rating calls for it.
func (f *Filter) Apply(rating Rating, text string) string {
	if !rating.Filters() {
		return text
	}
	out, _ := f.Scrub(text)
	return out
}

// Contains reports whether text holds any listed word.
func (f *Filter) Contains(text string) bool {
	for _, r := range f.rules {
		if r.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// matchCase gives replacement the casing shape of original.
func matchCase(original, replacement string) string {
	switch {
	case original == "":
		return replacement
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	}

	caser := cases.Title(language.English)
	if caser.String(strings.ToLower(original)) == original {
		return caser.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
