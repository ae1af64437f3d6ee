// Package matching decides whether a source property path matches a destination property path.
//
// Both paths arrive as token segments, one segment per path member. Tokens are
// compared after Unicode case folding (see Fold). A destination run of tokens
// consumes a source run when their concatenations are equal, so ["full", "name"]
// on one side consumes ["fullname"] on the other.
package matching

import (
	"fmt"
	"slices"
	"strings"
)

// PropertyNames holds the token segments of a candidate source path and a destination path.
// Tokens must already be folded.
type PropertyNames struct {
	Source      [][]string
	Destination [][]string
}

// Strategy evaluates a candidate pair.
// Score is the share of destination tokens consumed, in (0, 1]; it is meaningful only when ok.
type Strategy interface {
	Match(names PropertyNames) (score float64, ok bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(names PropertyNames) (float64, bool)

func (f StrategyFunc) Match(names PropertyNames) (float64, bool) {
	return f(names)
}

var (
	// Standard requires every destination token to be consumed and every source
	// segment to contribute at least one token.
	//
	// Extra source tokens are allowed, so a destination Name is matched by both Name and
	// FirstName with the same score, and a source holding both makes it ambiguous. Use
	// Strict, an explicit declaration or ignored ambiguity for such models.
	Standard Strategy = named{name: "standard", match: matchStandard}

	// Loose requires only the last destination segment to be fully consumed and the
	// last source segment to contribute.
	Loose Strategy = named{name: "loose", match: matchLoose}

	// Strict requires identical token sequences.
	Strict Strategy = named{name: "strict", match: matchStrict}
)

type named struct {
	name  string
	match func(PropertyNames) (float64, bool)
}

func (n named) Match(names PropertyNames) (float64, bool) {
	return n.match(names)
}

func (n named) String() string {
	return n.name
}

// ByName returns the built-in strategy called name: "standard", "loose" or "strict".
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "standard", "":
		return Standard, nil
	case "loose":
		return Loose, nil
	case "strict":
		return Strict, nil
	default:
		return nil, fmt.Errorf("unknown matching strategy %q", name)
	}
}

func matchStandard(names PropertyNames) (float64, bool) {
	c := consume(names)
	if c.total == 0 || c.consumed != c.total {
		return 0, false
	}

	for _, used := range c.sourceUsed {
		if !used {
			return 0, false
		}
	}

	return 1, true
}

func matchLoose(names PropertyNames) (float64, bool) {
	c := consume(names)
	if c.total == 0 || !c.lastDestinationConsumed {
		return 0, false
	}

	if len(c.sourceUsed) == 0 || !c.sourceUsed[len(c.sourceUsed)-1] {
		return 0, false
	}

	return float64(c.consumed) / float64(c.total), true
}

func matchStrict(names PropertyNames) (float64, bool) {
	src := slices.Concat(names.Source...)
	dst := slices.Concat(names.Destination...)

	if len(dst) == 0 || !slices.Equal(src, dst) {
		return 0, false
	}

	return 1, true
}

type consumption struct {
	consumed                int
	total                   int
	sourceUsed              []bool // per source segment
	lastDestinationConsumed bool
}

// consume walks destination segments in order and greedily lets the longest
// destination run consume an unused source run with the same concatenation.
func consume(names PropertyNames) consumption {
	used := make([][]bool, len(names.Source))
	for i, seg := range names.Source {
		used[i] = make([]bool, len(seg))
	}

	c := consumption{sourceUsed: make([]bool, len(names.Source))}

	for di, seg := range names.Destination {
		c.total += len(seg)
		segConsumed := 0

		for i := 0; i < len(seg); {
			k := longestRun(seg, i, names.Source, used, c.sourceUsed)
			if k < 0 {
				i++

				continue
			}

			segConsumed += k - i + 1
			i = k + 1
		}

		c.consumed += segConsumed

		if di == len(names.Destination)-1 {
			c.lastDestinationConsumed = segConsumed == len(seg)
		}
	}

	return c
}

// longestRun finds the longest run seg[i..k] whose concatenation equals an unused source
// run, marks that source run used and returns k, or -1 when no run starting at i matches.
func longestRun(seg []string, i int, source [][]string, used [][]bool, segUsed []bool) int {
	for k := len(seg) - 1; k >= i; k-- {
		run := strings.Join(seg[i:k+1], "")

		for si, src := range source {
			if j, l, ok := findRun(src, used[si], run); ok {
				for x := j; x <= l; x++ {
					used[si][x] = true
				}

				segUsed[si] = true

				return k
			}
		}
	}

	return -1
}

// findRun locates unused tokens src[j..l] whose concatenation equals run.
func findRun(src []string, used []bool, run string) (int, int, bool) {
	for j := range src {
		var joined strings.Builder

		for l := j; l < len(src) && !used[l]; l++ {
			joined.WriteString(src[l])

			s := joined.String()
			if s == run {
				return j, l, true
			}

			if len(s) >= len(run) || !strings.HasPrefix(run, s) {
				break
			}
		}
	}

	return 0, 0, false
}
