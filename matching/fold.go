package matching

import "golang.org/x/text/cases"

// Fold returns the case-folded form of tokens. The input slice is not modified.
func Fold(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	// a Caser keeps state, so each call gets its own
	folder := cases.Fold()
	out := make([]string, len(tokens))

	for i, tok := range tokens {
		out[i] = folder.String(tok)
	}

	return out
}
