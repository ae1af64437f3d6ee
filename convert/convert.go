// Package convert holds the conditional converter chain.
//
// Each ConditionalConverter inspects a (source, destination) type pair and answers
// with a MatchResult. Resolve walks an ordered chain: the first FULL match wins,
// otherwise the first PARTIAL match, otherwise nothing applies. Converters that
// need to convert nested values (collection elements, struct members) recurse
// through the Mapper carried by the Context.
package convert

import (
	"reflect"
)

//go:generate go tool stringer -type=MatchResult -linecomment -output=matchresult_string.go

type MatchResult int

const (
	None    MatchResult = iota // none
	Partial                    // partial
	Full                       // full
)

// ConditionalConverter converts values of the type pairs it matches.
// Match must be pure; Convert is only called for pairs Match accepted.
type ConditionalConverter interface {
	Match(src, dst reflect.Type) MatchResult
	// Convert returns a value assignable to ctx.DestinationType. An invalid value
	// with a nil error means "no value": the destination is left untouched.
	Convert(ctx *Context) (reflect.Value, error)
}

// Aliasing is implemented by converters whose result may share memory with the source.
// Resolve skips them for reference-like destinations when deep copy is requested.
type Aliasing interface {
	Aliases() bool
}

// Options are the execution toggles converters honour.
type Options struct {
	DeepCopy         bool
	CollectionsMerge bool
	SkipNull         bool
}

// Mapper is the recursion entry point handed to converters.
type Mapper interface {
	// Convert converts ctx.Source to ctx.DestinationType through the converter chain,
	// following pointers on either side.
	Convert(ctx *Context) (reflect.Value, error)
	// Map maps the struct-like ctx.Source onto ctx.DestinationType through a type map,
	// merging into ctx.Destination when it is valid.
	Map(ctx *Context) (reflect.Value, error)
}

// Context describes one conversion.
type Context struct {
	Source          reflect.Value
	SourceType      reflect.Type
	Destination     reflect.Value // current destination value, invalid when there is none
	DestinationType reflect.Type
	SourcePath      string
	DestinationPath string
	Options         Options
	Mapper          Mapper
}

// SourceValue returns the source as an interface value; nil for invalid or nil values.
func (c *Context) SourceValue() any {
	return interfaceOf(c.Source)
}

// DestinationValue returns the current destination as an interface value.
func (c *Context) DestinationValue() any {
	return interfaceOf(c.Destination)
}

// Child derives the context for a nested conversion.
func (c *Context) Child(src reflect.Value, dstType reflect.Type, existing reflect.Value, srcPath, dstPath string) *Context {
	var srcType reflect.Type
	if src.IsValid() {
		srcType = src.Type()
	}

	return &Context{
		Source:          src,
		SourceType:      srcType,
		Destination:     existing,
		DestinationType: dstType,
		SourcePath:      srcPath,
		DestinationPath: dstPath,
		Options:         c.Options,
		Mapper:          c.Mapper,
	}
}

func interfaceOf(v reflect.Value) any {
	if !v.IsValid() || IsNil(v) || !v.CanInterface() {
		return nil
	}

	return v.Interface()
}

// IsNil reports whether v is invalid or a nil pointer, interface, map, slice, func or channel.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// ResolveOptions tune Resolve.
type ResolveOptions struct {
	FullTypeMatchingRequired bool
	DeepCopy                 bool
}

// Resolve returns the converter chosen for (src, dst): the first FULL match, otherwise the
// first PARTIAL match unless FullTypeMatchingRequired is set, otherwise nil and None.
func Resolve(converters []ConditionalConverter, src, dst reflect.Type, opts ResolveOptions) (ConditionalConverter, MatchResult) {
	var partial ConditionalConverter

	skipAliasing := opts.DeepCopy && IsReferenceLike(dst)

	for _, c := range converters {
		if skipAliasing && aliases(c) {
			continue
		}

		switch c.Match(src, dst) {
		case Full:
			return c, Full
		case Partial:
			if partial == nil && !opts.FullTypeMatchingRequired {
				partial = c
			}
		}
	}

	if partial != nil {
		return partial, Partial
	}

	return nil, None
}

func aliases(c ConditionalConverter) bool {
	a, ok := c.(Aliasing)

	return ok && a.Aliases()
}

// IsReferenceLike reports whether copying a value of t by assignment would share memory
// reachable through members: pointers, slices, maps, and arrays or structs holding them.
// Structs without exported fields, such as time.Time, are treated as opaque values.
func IsReferenceLike(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return true
	case reflect.Array:
		return IsReferenceLike(t.Elem())
	case reflect.Struct:
		return hasExportedFields(t)
	default:
		return false
	}
}

func hasExportedFields(t reflect.Type) bool {
	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && !f.Anonymous {
			return true
		}
	}

	return false
}
