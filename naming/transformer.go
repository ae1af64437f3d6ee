package naming

import "strings"

// Transformer rewrites the tokens of a member name before matching.
type Transformer interface {
	Transform(tokens []string, kind MemberKind) []string
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(tokens []string, kind MemberKind) []string

func (f TransformerFunc) Transform(tokens []string, kind MemberKind) []string {
	return f(tokens, kind)
}

var (
	// Identity returns tokens unchanged.
	Identity Transformer = TransformerFunc(func(tokens []string, _ MemberKind) []string {
		return tokens
	})

	// AccessorPrefixes strips "Get", "Is" and "Set" from method names.
	AccessorPrefixes = StripPrefix("Get", "Is", "Set")
)

// StripPrefix drops the first token of a method name when it equals one of prefixes,
// ignoring case. A name that consists of the prefix alone is left intact.
// Field names are never changed.
func StripPrefix(prefixes ...string) Transformer {
	return TransformerFunc(func(tokens []string, kind MemberKind) []string {
		if kind != Method || len(tokens) < 2 {
			return tokens
		}

		for _, p := range prefixes {
			if strings.EqualFold(tokens[0], p) {
				return tokens[1:]
			}
		}

		return tokens
	})
}
