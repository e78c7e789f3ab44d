// Package dice rolls a single die and adds attribute modifiers to it.
// Thresholds are applied by callers; this package only produces totals.
package dice

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Source is the randomness provider for rolls.
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n must be > 0.
	Intn(n int) int
}

type runtimeSource struct{}

func (runtimeSource) Intn(n int) int { return rand.IntN(n) }

// NewSource returns an unseeded source backed by the runtime generator.
func NewSource() Source {
	return runtimeSource{}
}

// Result is the audit trail for one roll.
type Result struct {
	Sides     int   `json:"sides"`
	Die       int   `json:"die"`
	Attribute int   `json:"attribute"`
	Bonus     []int `json:"bonus,omitempty"`
	Total     int   `json:"total"`
}

// Meets reports whether the total reaches threshold.
func (r Result) Meets(threshold int) bool {
	return r.Total >= threshold
}

// String renders the roll as e.g. "d20: 14 + 7 = 21".
func (r Result) String() string {
	var b strings.Builder
	if r.Sides > 0 {
		fmt.Fprintf(&b, "d%d: %d + %d", r.Sides, r.Die, r.Attribute)
	} else {
		fmt.Fprintf(&b, "roll: %d + %d", r.Die, r.Attribute)
	}
	for _, v := range r.Bonus {
		if v < 0 {
			fmt.Fprintf(&b, " - %d", -v)
		} else {
			fmt.Fprintf(&b, " + %d", v)
		}
	}
	fmt.Fprintf(&b, " = %d", r.Total)
	return b.String()
}

// Roller produces independent rolls from a Source.
type Roller struct {
	src Source
}

// NewRoller returns a roller. A nil source falls back to NewSource().
func NewRoller(src Source) *Roller {
	if src == nil {
		src = NewSource()
	}
	return &Roller{src: src}
}

// Source exposes the underlying randomness so that other components
// (item rewards, encounter selection) draw from the same stream.
func (r *Roller) Source() Source {
	return r.src
}

// Roll draws uniformly in [1, sides] and adds attribute and every bonus term.
// sides below 1 is treated as a d1.
func (r *Roller) Roll(sides int, attribute int, bonus ...int) Result {
	if sides < 1 {
		sides = 1
	}
	res := r.Range(1, sides, attribute, bonus...)
	res.Sides = sides
	return res
}

// Range draws uniformly in [min, max] and adds attribute and every bonus term.
// Used for draws that do not start at one, such as the 20..30 monster roll.
func (r *Roller) Range(min, max int, attribute int, bonus ...int) Result {
	if max < min {
		min, max = max, min
	}
	die := min + r.src.Intn(max-min+1)
	total := die + attribute
	for _, v := range bonus {
		total += v
	}
	var b []int
	if len(bonus) > 0 {
		b = append([]int(nil), bonus...)
	}
	return Result{
		Die:       die,
		Attribute: attribute,
		Bonus:     b,
		Total:     total,
	}
}

// Between draws a plain uniform integer in [min, max] with no modifiers.
func (r *Roller) Between(min, max int) int {
	return r.Range(min, max, 0).Die
}

// Chance returns true with probability num/den.
func (r *Roller) Chance(num, den int) bool {
	if den <= 0 {
		return false
	}
	return r.src.Intn(den) < num
}

// Pick returns a uniform index into a slice of length n, or -1 when n is 0.
func (r *Roller) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return r.src.Intn(n)
}

// Weighted returns an index chosen with probability proportional to
// weights[i]. Non-positive weights are never chosen. Returns -1 when
// every weight is non-positive.
func (r *Roller) Weighted(weights []int) int {
	sum := 0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		return -1
	}
	n := r.src.Intn(sum)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}
