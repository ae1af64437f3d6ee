package plan

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/diagnostic"
	"github.com/kamilors/modelmapper/mapperrors"
)

// Path is a root-to-leaf sequence of members. An empty source path denotes the source root.
type Path []access.Member

// String returns the dotted form, e.g. "Address.City".
func (p Path) String() string {
	names := make([]string, len(p))
	for i, m := range p {
		names[i] = m.String()
	}

	return strings.Join(names, ".")
}

// Leaf returns the last member.
func (p Path) Leaf() access.Member {
	return p[len(p)-1]
}

func (p Path) with(m access.Member) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = m

	return out
}

// Resolution is the converter chosen for a (source, destination) type pair.
type Resolution struct {
	Converter convert.ConditionalConverter
	Result    convert.MatchResult
	// Adapted is set when the converter was found for the pointer base types.
	Adapted bool
	// Dynamic is set when the source is an interface; the converter is chosen from the
	// value's dynamic type during execution.
	Dynamic bool
}

// Convertible reports whether the pair can be converted.
func (r Resolution) Convertible() bool {
	return r.Converter != nil || r.Dynamic
}

// PropertyMapping maps one source path onto one destination path.
type PropertyMapping struct {
	Source      Path
	Destination Path
	// SourceType is the declared type read at the end of Source.
	SourceType reflect.Type
	Resolution
	// Condition overrides the configured property condition when set.
	Condition convert.Condition
	Explicit  bool
	Skip      bool
}

func (pm PropertyMapping) String() string {
	if pm.Skip {
		return "skip " + pm.Destination.String()
	}

	src := pm.Source.String()
	if src == "" {
		src = "<root>"
	}

	return src + " -> " + pm.Destination.String()
}

// TypeMap is the mapping plan between two types. It is immutable once built.
type TypeMap struct {
	SourceType      reflect.Type
	DestinationType reflect.Type
	// Config is the snapshot the map was built with.
	Config       *config.Configuration
	Mappings     []PropertyMapping
	Declarations []Declaration
	// Unmapped lists destination paths no source was found for.
	Unmapped    []string
	Diagnostics diagnostic.Diagnostics
	// ReaderBacked maps are built from one source instance and never cached.
	ReaderBacked bool
}

func (tm *TypeMap) String() string {
	return pairString(tm.SourceType, tm.DestinationType)
}

// Mapping returns the mapping writing destination path dst.
func (tm *TypeMap) Mapping(dst string) (PropertyMapping, bool) {
	for _, pm := range tm.Mappings {
		if pm.Destination.String() == dst {
			return pm, true
		}
	}

	return PropertyMapping{}, false
}

// Validate fails with an *UnmappedError when destination properties were left unmapped.
func (tm *TypeMap) Validate() error {
	if len(tm.Unmapped) == 0 {
		return nil
	}

	return &mapperrors.UnmappedError{
		SourceType:      tm.SourceType.String(),
		DestinationType: tm.DestinationType.String(),
		Paths:           tm.Unmapped,
	}
}

// Declaration is an explicit mapping requested by the caller.
type Declaration struct {
	// Source is a dotted source path; empty maps the whole source value.
	Source      string
	Destination string
	Converter   convert.ConditionalConverter
	Condition   convert.Condition
	Skip        bool
}

func (d Declaration) String() string {
	if d.Skip {
		return "skip " + d.Destination
	}

	return fmt.Sprintf("%s -> %s", d.Source, d.Destination)
}

// Pair identifies a source and destination type.
type Pair struct {
	Source, Destination reflect.Type
}

func (p Pair) String() string {
	return pairString(p.Source, p.Destination)
}

func pairString(src, dst reflect.Type) string {
	return fmt.Sprintf("%v -> %v", src, dst)
}
