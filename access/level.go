// Package access enumerates and reads or writes the members of Go values.
//
// A Member is a struct field, an accessor method, or a key exposed by a
// ValueReader / ValueWriter. The Accessor interface abstracts introspection so
// the planning and execution layers never touch reflect field indexes directly.
package access

import (
	"fmt"
	"strings"
)

// Level is the most restrictive visibility still considered during matching.
// Levels are ordered Public < Protected < PackagePrivate < Private.
//
// Go knows two visibilities: exported members are Public, and unexported members
// are included by every level above Public.
type Level int

const (
	Public Level = iota
	Protected
	PackagePrivate
	Private
)

var levelNames = [...]string{"public", "protected", "package_private", "private"}

func (l Level) String() string {
	if l < Public || l > Private {
		return fmt.Sprintf("Level(%d)", int(l))
	}

	return levelNames[l]
}

// Includes reports whether a member with the given visibility is visible at l.
func (l Level) Includes(exported bool) bool {
	return exported || l > Public
}

// ParseLevel parses a level name as produced by String. Dashes and case are ignored.
func ParseLevel(s string) (Level, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range levelNames {
		if name == norm {
			return Level(i), nil
		}
	}

	return Public, fmt.Errorf("unknown access level %q", s)
}
