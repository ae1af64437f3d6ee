package mapping

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts a scalar or a sequence of scalars. An empty scalar is an empty list.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringOrArray{}
		if node.Value != "" {
			*s = append(*s, node.Value)
		}

		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}

		*s = names

		return nil
	default:
		return fmt.Errorf("line %d: expected a name or a list of names", node.Line)
	}
}

// MarshalYAML writes a single name as a scalar.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first name, or "" for an empty list.
func (s StringOrArray) First() string {
	if len(s) == 0 {
		return ""
	}

	return s[0]
}

func (s StringOrArray) Contains(name string) bool {
	return slices.Contains(s, name)
}

type plainFieldMapping FieldMapping

// UnmarshalYAML accepts the full mapping form or a scalar naming a member present on
// both sides.
func (f *FieldMapping) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = FieldMapping{Source: node.Value, Destination: node.Value}

		return nil
	case yaml.MappingNode:
		var plain plainFieldMapping
		if err := node.Decode(&plain); err != nil {
			return err
		}

		*f = FieldMapping(plain)

		return nil
	default:
		return fmt.Errorf("line %d: expected a member name or a field mapping", node.Line)
	}
}

// MarshalYAML writes the scalar form when only matching names are set.
func (f FieldMapping) MarshalYAML() (any, error) {
	if f.Source == f.Destination && f.Converter == "" && f.Condition == "" {
		return f.Source, nil
	}

	return plainFieldMapping(f), nil
}
