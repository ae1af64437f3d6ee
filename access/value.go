package access

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kamilors/modelmapper/naming"
)

// ValueReader exposes the members of a loosely typed source, such as a map.
type ValueReader interface {
	// Type is the type the reader is registered for.
	Type() reflect.Type
	// MemberNames lists member names of source in a stable order.
	MemberNames(source reflect.Value) []string
	// Get returns the named member; false when it is absent.
	Get(source reflect.Value, name string) (reflect.Value, bool)
}

// ValueWriter populates the members of a loosely typed destination.
type ValueWriter interface {
	Type() reflect.Type
	// ElemType is the type of values assigned to members of destination.
	ElemType(destination reflect.Type) reflect.Type
	// New creates an empty destination of type t.
	New(t reflect.Type) reflect.Value
	// Set assigns value to the named member. A nil destination is replaced by New when settable.
	Set(destination reflect.Value, name string, value reflect.Value) error
}

// Supporter is implemented by readers and writers that apply to more than their exact Type.
type Supporter interface {
	Supports(t reflect.Type) bool
}

// Applies reports whether a reader or writer registered for declared with implementation impl
// handles t.
func Applies(declared, t reflect.Type, impl any) bool {
	if declared == t {
		return true
	}

	s, ok := impl.(Supporter)

	return ok && s.Supports(t)
}

// FindReader returns the first reader applying to t, or nil.
func FindReader(readers []ValueReader, t reflect.Type) ValueReader {
	for _, r := range readers {
		if Applies(r.Type(), t, r) {
			return r
		}
	}

	return nil
}

// FindWriter returns the first writer applying to t, or nil.
func FindWriter(writers []ValueWriter, t reflect.Type) ValueWriter {
	for _, w := range writers {
		if Applies(w.Type(), t, w) {
			return w
		}
	}

	return nil
}

// ReaderMembers lists the members of source as seen through r.
// A member's type is the dynamic type of its current value.
func ReaderMembers(r ValueReader, source reflect.Value) []Member {
	source = Indirect(source)
	if !source.IsValid() {
		return nil
	}

	names := r.MemberNames(source)
	members := make([]Member, 0, len(names))

	for _, name := range names {
		m := Member{
			Name:     name,
			Kind:     naming.Field,
			Owner:    source.Type(),
			Exported: true,
			reader:   r,
		}

		if v, ok := r.Get(source, name); ok && v.IsValid() {
			m.Type = v.Type()
		} else {
			m.Type = anyType
		}

		members = append(members, m)
	}

	return members
}

// ReaderMember describes the member name of source type t read through w when no
// instance is at hand. Its type is any.
func ReaderMember(r ValueReader, t reflect.Type, name string) Member {
	return Member{
		Name:     name,
		Kind:     naming.Field,
		Type:     anyType,
		Owner:    t,
		Exported: true,
		reader:   r,
	}
}

// WriterMember describes the member name of destination type t written through w.
func WriterMember(w ValueWriter, t reflect.Type, name string) Member {
	return Member{
		Name:     name,
		Kind:     naming.Field,
		Type:     w.ElemType(t),
		Owner:    t,
		Exported: true,
		writer:   w,
	}
}

var anyType = reflect.TypeFor[any]()

// MapReader reads string-keyed maps.
type MapReader struct{}

func (MapReader) Type() reflect.Type {
	return reflect.TypeFor[map[string]any]()
}

func (MapReader) Supports(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (MapReader) MemberNames(source reflect.Value) []string {
	if source.Kind() != reflect.Map {
		return nil
	}

	names := make([]string, 0, source.Len())
	for _, k := range source.MapKeys() {
		names = append(names, k.String())
	}

	sort.Strings(names)

	return names
}

func (MapReader) Get(source reflect.Value, name string) (reflect.Value, bool) {
	if source.Kind() != reflect.Map || source.IsNil() {
		return reflect.Value{}, false
	}

	v := source.MapIndex(reflect.ValueOf(name).Convert(source.Type().Key()))
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	return v, true
}

// MapWriter writes string-keyed maps.
type MapWriter struct{}

func (MapWriter) Type() reflect.Type {
	return reflect.TypeFor[map[string]any]()
}

func (MapWriter) Supports(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (MapWriter) ElemType(t reflect.Type) reflect.Type {
	return t.Elem()
}

func (MapWriter) New(t reflect.Type) reflect.Value {
	return reflect.MakeMap(t)
}

func (w MapWriter) Set(destination reflect.Value, name string, value reflect.Value) error {
	if destination.Kind() != reflect.Map {
		return fmt.Errorf("map writer: destination is %s", destination.Type())
	}

	if destination.IsNil() {
		if !destination.CanSet() {
			return fmt.Errorf("map writer: nil %s is not settable", destination.Type())
		}

		destination.Set(w.New(destination.Type()))
	}

	elem := destination.Type().Elem()

	switch {
	case !value.IsValid():
		value = reflect.Zero(elem)
	case !value.Type().AssignableTo(elem):
		return fmt.Errorf("map writer: %s is not assignable to %s", value.Type(), elem)
	}

	destination.SetMapIndex(reflect.ValueOf(name).Convert(destination.Type().Key()), value)

	return nil
}
