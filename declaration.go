package modelmapper

import (
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/plan"
)

// Declaration is an explicit property mapping registered with CreateTypeMap.
type Declaration struct {
	d plan.Declaration
}

// Declare maps the dotted source path src onto the destination path dst. An empty src
// maps the whole source value, which then needs a converter from the source type.
func Declare(src, dst string) Declaration {
	return Declaration{d: plan.Declaration{Source: src, Destination: dst}}
}

// Skip leaves the destination path dst untouched.
func Skip(dst string) Declaration {
	return Declaration{d: plan.Declaration{Destination: dst, Skip: true}}
}

// Using converts the source value with c instead of the converter chain.
func (d Declaration) Using(c convert.ConditionalConverter) Declaration {
	d.d.Converter = c
	return d
}

// When applies the mapping only when c applies, overriding the configured property
// condition.
func (d Declaration) When(c convert.Condition) Declaration {
	d.d.Condition = c
	return d
}

func (d Declaration) String() string {
	return d.d.String()
}

func declarations(decls []Declaration) []plan.Declaration {
	out := make([]plan.Declaration, len(decls))
	for i, d := range decls {
		out[i] = d.d
	}

	return out
}
