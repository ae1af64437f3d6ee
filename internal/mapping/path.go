package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// FieldPath is a parsed dotted member path.
type FieldPath struct {
	Segments []PathSegment
}

// PathSegment is one member name. Method segments are written with a trailing "()".
type PathSegment struct {
	Name   string
	Method bool
}

func (s PathSegment) String() string {
	if s.Method {
		return s.Name + "()"
	}

	return s.Name
}

func (p FieldPath) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}

	return strings.Join(parts, ".")
}

// ParsePath parses a member path string into a FieldPath.
// Supports: "Field", "Nested.Field", "GetName()", "Nested.GetCity()".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		name, method := strings.CutSuffix(part, "()")

		if strings.HasSuffix(name, "[]") {
			return FieldPath{}, fmt.Errorf("invalid path %q: element paths are not supported", path)
		}

		if !isValidIdent(name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid identifier %q", path, name)
		}

		segments = append(segments, PathSegment{Name: name, Method: method})
	}

	return FieldPath{Segments: segments}, nil
}

// isValidIdent reports whether s is a member name: a letter or underscore followed by
// letters, digits or underscores.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}
