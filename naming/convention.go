package naming

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Convention decides whether a member name participates in matching.
// Implementations must be pure and total.
type Convention interface {
	Applicable(owner reflect.Type, name string, kind MemberKind) bool
}

// ConventionFunc adapts a function to Convention.
type ConventionFunc func(owner reflect.Type, name string, kind MemberKind) bool

func (f ConventionFunc) Applicable(owner reflect.Type, name string, kind MemberKind) bool {
	return f(owner, name, kind)
}

var (
	// None accepts every member.
	None Convention = ConventionFunc(func(reflect.Type, string, MemberKind) bool {
		return true
	})

	// Getters accepts fields and methods named GetX or IsX.
	Getters Convention = ConventionFunc(func(_ reflect.Type, name string, kind MemberKind) bool {
		return kind == Field || hasAccessorPrefix(name, "Get") || hasAccessorPrefix(name, "Is")
	})

	// Setters accepts fields and methods named SetX.
	Setters Convention = ConventionFunc(func(_ reflect.Type, name string, kind MemberKind) bool {
		return kind == Field || hasAccessorPrefix(name, "Set")
	})
)

// hasAccessorPrefix reports whether name is prefix followed by an upper-case letter.
func hasAccessorPrefix(name, prefix string) bool {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}

	r, _ := utf8.DecodeRuneInString(name[len(prefix):])

	return unicode.IsUpper(r)
}
