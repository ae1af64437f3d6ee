// Package naming splits member names into tokens and decides which members take part in matching.
//
// The three concerns are independent and configured per side:
//   - a Tokenizer turns "customerFirstName" into ["customer", "First", "Name"];
//   - a Transformer rewrites tokens, e.g. dropping a "Get" accessor prefix;
//   - a Convention filters which member names are considered at all.
package naming

import (
	"strings"
	"unicode"

	"github.com/kamilors/modelmapper/mapperrors"
)

// MemberKind tells name processing whether a name belongs to a field or an accessor method.
//
//go:generate go tool stringer -type=MemberKind -linecomment -output=memberkind_string.go
type MemberKind int

const (
	Field  MemberKind = iota // field
	Method                   // method
)

// Tokenizer splits a member name into ordered tokens.
// Implementations must be pure and safe for concurrent use.
type Tokenizer interface {
	Tokenize(name string, kind MemberKind) []string
}

// TokenizerFunc adapts a function to Tokenizer.
type TokenizerFunc func(name string, kind MemberKind) []string

func (f TokenizerFunc) Tokenize(name string, kind MemberKind) []string {
	return f(name, kind)
}

var (
	// CamelCase splits on case boundaries and on '_', '-' and ' '.
	// Acronyms stay together: "XMLParser" -> ["XML", "Parser"].
	CamelCase Tokenizer = TokenizerFunc(func(name string, _ MemberKind) []string {
		return tokenizeCamelCase(name)
	})

	// Underscore splits snake_case names.
	Underscore = Delimited("_")
)

// Delimited returns a tokenizer splitting names on sep. Empty tokens are dropped.
// It panics with an invalid-argument error when sep is empty.
func Delimited(sep string) Tokenizer {
	if sep == "" {
		panic(mapperrors.NewArgumentError("sep", "delimiter must not be empty"))
	}

	return TokenizerFunc(func(name string, _ MemberKind) []string {
		var tokens []string

		for _, part := range strings.Split(name, sep) {
			if part != "" {
				tokens = append(tokens, part)
			}
		}

		return tokens
	})
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "getHTTPResponse" -> ["get", "HTTP", "Response"]
//   - "first_name" -> ["first", "name"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// "orderID": split before 'I'
	if isUpper && !isPrevUpper {
		return true
	}

	// "XMLParser": split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	return isUpper && isPrevUpper && hasNextLower
}
