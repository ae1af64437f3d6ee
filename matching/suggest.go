package matching

import (
	"sort"
	"strings"
)

// Suggestion is a source path ranked by name similarity to an unmatched destination path.
type Suggestion struct {
	Path  string
	Score float64 // normalized Levenshtein similarity, 1.0 means identical
}

// SuggestionList is sorted by score (descending), then by path.
type SuggestionList []Suggestion

func (l SuggestionList) Len() int      { return len(l) }
func (l SuggestionList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l SuggestionList) Less(i, j int) bool {
	if l[i].Score != l[j].Score {
		return l[i].Score > l[j].Score
	}

	return l[i].Path < l[j].Path
}

// Top returns the first n suggestions.
func (l SuggestionList) Top(n int) SuggestionList {
	if n >= len(l) {
		return l
	}

	return l[:n]
}

// Paths returns the suggested paths in order.
func (l SuggestionList) Paths() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.Path
	}

	return out
}

// Suggest ranks candidates against target and keeps those at or above minScore.
// Names are compared as folded tokens joined without separators.
func Suggest(target []string, candidates map[string][]string, minScore float64) SuggestionList {
	want := strings.Join(Fold(target), "")

	var out SuggestionList

	for path, tokens := range candidates {
		score := LevenshteinNormalized(strings.Join(Fold(tokens), ""), want)
		if score >= minScore {
			out = append(out, Suggestion{Path: path, Score: score})
		}
	}

	sort.Sort(out)

	return out
}

// Levenshtein computes the edit distance between two strings.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	// keep a as the shorter string
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// LevenshteinNormalized computes a similarity score between 0 and 1:
// 1 - (distance / max(len(a), len(b))).
func LevenshteinNormalized(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	maxLen := max(len(b), len(a))

	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}
