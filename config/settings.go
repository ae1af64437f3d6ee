package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/mapperrors"
	"github.com/kamilors/modelmapper/matching"
	"github.com/kamilors/modelmapper/naming"
)

// Settings is the serializable subset of a Configuration. Unset fields leave the
// configuration unchanged.
type Settings struct {
	Access   *AccessSettings   `yaml:"access,omitempty"`
	Matching *MatchingSettings `yaml:"matching,omitempty"`
	Naming   *NamingSettings   `yaml:"naming,omitempty"`

	SkipNull         *bool `yaml:"skip_null,omitempty"`
	DeepCopy         *bool `yaml:"deep_copy,omitempty"`
	CollectionsMerge *bool `yaml:"collections_merge,omitempty"`
	ErrorCollection  *bool `yaml:"error_collection,omitempty"`
}

type AccessSettings struct {
	Fields      *bool  `yaml:"fields,omitempty"`
	Methods     *bool  `yaml:"methods,omitempty"`
	FieldLevel  string `yaml:"field_level,omitempty"`
	MethodLevel string `yaml:"method_level,omitempty"`
}

type MatchingSettings struct {
	Strategy                 string `yaml:"strategy,omitempty"`
	AmbiguityIgnored         *bool  `yaml:"ambiguity_ignored,omitempty"`
	FullTypeMatchingRequired *bool  `yaml:"full_type_matching_required,omitempty"`
	Implicit                 *bool  `yaml:"implicit,omitempty"`
	PreferNested             *bool  `yaml:"prefer_nested,omitempty"`
}

// NamingSettings selects built-in tokenizers by name: "camel_case", "underscore" or any
// other non-empty string prefixed with "delimited:".
type NamingSettings struct {
	SourceTokenizer      string `yaml:"source_tokenizer,omitempty"`
	DestinationTokenizer string `yaml:"destination_tokenizer,omitempty"`
	StripAccessorPrefix  *bool  `yaml:"strip_accessor_prefix,omitempty"`
}

// ParseSettings decodes a YAML settings document. Unknown keys are rejected.
func ParseSettings(data []byte) (*Settings, error) {
	return ReadSettings(bytes.NewReader(data))
}

// ReadSettings decodes a YAML settings document from r.
func ReadSettings(r io.Reader) (*Settings, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return &s, nil
}

type step func(*Configuration)

// Validate reports the first invalid value in s.
func (s *Settings) Validate() error {
	if s == nil {
		return nil
	}

	_, err := s.steps()

	return err
}

// Apply validates s and applies it to c. Nothing is applied when any value is invalid.
func (s *Settings) Apply(c *Configuration) error {
	if s == nil {
		return nil
	}

	steps, err := s.steps()
	if err != nil {
		return err
	}

	for _, st := range steps {
		st(c)
	}

	return nil
}

func (s *Settings) steps() ([]step, error) {
	var steps []step

	flag := func(v *bool, set func(*Configuration, bool) *Configuration) {
		if v != nil {
			on := *v
			steps = append(steps, func(c *Configuration) { set(c, on) })
		}
	}

	if a := s.Access; a != nil {
		flag(a.Fields, (*Configuration).SetFieldMatchingEnabled)
		flag(a.Methods, (*Configuration).SetMethodMatchingEnabled)

		for _, lv := range []struct {
			arg, name string
			set       func(*Configuration, access.Level) *Configuration
		}{
			{"access.field_level", a.FieldLevel, (*Configuration).SetFieldAccessLevel},
			{"access.method_level", a.MethodLevel, (*Configuration).SetMethodAccessLevel},
		} {
			if lv.name == "" {
				continue
			}

			level, err := access.ParseLevel(lv.name)
			if err != nil {
				return nil, mapperrors.NewArgumentError(lv.arg, err.Error())
			}

			set := lv.set
			steps = append(steps, func(c *Configuration) { set(c, level) })
		}
	}

	if m := s.Matching; m != nil {
		if m.Strategy != "" {
			strategy, err := matching.ByName(m.Strategy)
			if err != nil {
				return nil, mapperrors.NewArgumentError("matching.strategy", err.Error())
			}

			steps = append(steps, func(c *Configuration) { c.SetMatchingStrategy(strategy) })
		}

		flag(m.AmbiguityIgnored, (*Configuration).SetAmbiguityIgnored)
		flag(m.FullTypeMatchingRequired, (*Configuration).SetFullTypeMatchingRequired)
		flag(m.Implicit, (*Configuration).SetImplicitMappingEnabled)
		flag(m.PreferNested, (*Configuration).SetPreferNestedProperties)
	}

	if n := s.Naming; n != nil {
		for _, tk := range []struct {
			side Side
			name string
		}{{Source, n.SourceTokenizer}, {Destination, n.DestinationTokenizer}} {
			if tk.name == "" {
				continue
			}

			tokenizer, err := TokenizerByName(tk.name)
			if err != nil {
				return nil, mapperrors.NewArgumentError("naming."+tk.side.String()+"_tokenizer", err.Error())
			}

			side := tk.side
			steps = append(steps, func(c *Configuration) { c.SetNameTokenizer(side, tokenizer) })
		}

		if n.StripAccessorPrefix != nil {
			transformer := naming.Identity
			if *n.StripAccessorPrefix {
				transformer = naming.AccessorPrefixes
			}

			steps = append(steps, func(c *Configuration) {
				c.SetNameTransformer(Source, transformer).SetNameTransformer(Destination, transformer)
			})
		}
	}

	flag(s.SkipNull, (*Configuration).SetSkipNullEnabled)
	flag(s.DeepCopy, (*Configuration).SetDeepCopyEnabled)
	flag(s.CollectionsMerge, (*Configuration).SetCollectionsMergeEnabled)
	flag(s.ErrorCollection, (*Configuration).SetErrorCollectionEnabled)

	return steps, nil
}

const delimitedPrefix = "delimited:"

// TokenizerByName returns a built-in tokenizer.
func TokenizerByName(name string) (naming.Tokenizer, error) {
	switch n := strings.ToLower(name); {
	case n == "camel_case" || n == "camelcase":
		return naming.CamelCase, nil
	case n == "underscore" || n == "snake_case":
		return naming.Underscore, nil
	case strings.HasPrefix(n, delimitedPrefix) && len(name) > len(delimitedPrefix):
		return naming.Delimited(name[len(delimitedPrefix):]), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}
