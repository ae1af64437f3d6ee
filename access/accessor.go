package access

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/kamilors/modelmapper/naming"
)

// Member describes one readable or writable member of a type.
type Member struct {
	Name     string
	Kind     naming.MemberKind
	Type     reflect.Type // field type, getter result or setter argument
	Owner    reflect.Type
	Exported bool

	index  []int // field index path, promoted fields included
	reader ValueReader
	writer ValueWriter
}

// Backed reports whether the member is served by a ValueReader or ValueWriter.
func (m Member) Backed() bool {
	return m.reader != nil || m.writer != nil
}

func (m Member) String() string {
	if m.Kind == naming.Method {
		return m.Name + "()"
	}

	return m.Name
}

// Options selects which members an Accessor reports.
// Unexported methods cannot be called through reflection, so MethodLevel never widens the
// method set beyond exported methods.
type Options struct {
	Fields      bool
	Methods     bool
	FieldLevel  Level
	MethodLevel Level
}

// Accessor enumerates members and moves values in and out of them.
type Accessor interface {
	// Readable lists members of struct type t that can be read.
	Readable(t reflect.Type, opts Options) []Member
	// Writable lists members of struct type t that can be assigned.
	Writable(t reflect.Type, opts Options) []Member
	// Read returns the member value of owner; false when owner or an embedded pointer is nil.
	Read(owner reflect.Value, m Member) (reflect.Value, bool)
	// Write assigns v to the member of owner. owner must be addressable.
	Write(owner reflect.Value, m Member, v reflect.Value) error
}

var errorType = reflect.TypeFor[error]()

// Reflect is the default Accessor. Member lists are cached per type and options.
type Reflect struct {
	cache sync.Map // memberKey -> []Member
}

type memberKey struct {
	t     reflect.Type
	opts  Options
	write bool
}

// NewReflect returns a reflect-based Accessor.
func NewReflect() *Reflect {
	return &Reflect{}
}

// Default is the shared reflect-based Accessor.
var Default = NewReflect()

var _ Accessor = (*Reflect)(nil)

func (a *Reflect) Readable(t reflect.Type, opts Options) []Member {
	return a.members(t, opts, false)
}

func (a *Reflect) Writable(t reflect.Type, opts Options) []Member {
	return a.members(t, opts, true)
}

func (a *Reflect) members(t reflect.Type, opts Options, write bool) []Member {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	key := memberKey{t: t, opts: opts, write: write}
	if cached, ok := a.cache.Load(key); ok {
		return cached.([]Member)
	}

	var members []Member

	if opts.Fields {
		members = append(members, fields(t, opts.FieldLevel)...)
	}

	if opts.Methods {
		members = append(members, methods(t, write)...)
	}

	actual, _ := a.cache.LoadOrStore(key, members)

	return actual.([]Member)
}

func fields(t reflect.Type, level Level) []Member {
	var out []Member

	for _, f := range reflect.VisibleFields(t) {
		// embedded structs contribute their promoted fields instead
		if f.Anonymous && baseKind(f.Type) == reflect.Struct {
			continue
		}

		if !level.Includes(f.IsExported()) {
			continue
		}

		out = append(out, Member{
			Name:     f.Name,
			Kind:     naming.Field,
			Type:     f.Type,
			Owner:    t,
			Exported: f.IsExported(),
			index:    f.Index,
		})
	}

	return out
}

// methods lists getters (no arguments, one result) or setters (one argument, no result
// or an error) in the pointer method set of t.
func methods(t reflect.Type, write bool) []Member {
	pt := reflect.PointerTo(t)

	var out []Member

	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		ft := m.Type // receiver is In(0)

		var typ reflect.Type

		switch {
		case !write && ft.NumIn() == 1 && ft.NumOut() == 1:
			typ = ft.Out(0)
		case write && ft.NumIn() == 2 && (ft.NumOut() == 0 || ft.NumOut() == 1 && ft.Out(0) == errorType):
			typ = ft.In(1)
		default:
			continue
		}

		out = append(out, Member{
			Name:     m.Name,
			Kind:     naming.Method,
			Type:     typ,
			Owner:    t,
			Exported: true,
		})
	}

	return out
}

func (a *Reflect) Read(owner reflect.Value, m Member) (reflect.Value, bool) {
	if m.reader != nil {
		return m.reader.Get(owner, m.Name)
	}

	owner = Indirect(owner)
	if !owner.IsValid() || owner.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	if m.Kind == naming.Method {
		return callGetter(owner, m.Name)
	}

	if !m.Exported && !owner.CanAddr() {
		owner = addressable(owner)
	}

	f, ok := fieldByIndex(owner, m.index, false)
	if !ok {
		return reflect.Value{}, false
	}

	if !m.Exported {
		f = expose(f)
	}

	return f, true
}

func (a *Reflect) Write(owner reflect.Value, m Member, v reflect.Value) error {
	if m.writer != nil {
		return m.writer.Set(owner, m.Name, v)
	}

	if owner.Kind() == reflect.Pointer {
		if owner.IsNil() {
			return fmt.Errorf("write %s: nil %s", m, owner.Type())
		}

		owner = owner.Elem()
	}

	if !owner.CanAddr() {
		return fmt.Errorf("write %s: %s is not addressable", m, owner.Type())
	}

	if !v.IsValid() {
		v = reflect.Zero(m.Type)
	}

	if !v.Type().AssignableTo(m.Type) {
		return fmt.Errorf("write %s: %s is not assignable to %s", m, v.Type(), m.Type)
	}

	if m.Kind == naming.Method {
		return callSetter(owner, m.Name, v)
	}

	f, _ := fieldByIndex(owner, m.index, true)
	if !f.CanSet() {
		f = expose(f)
	}

	f.Set(v)

	return nil
}

func callGetter(owner reflect.Value, name string) (reflect.Value, bool) {
	fn := owner.MethodByName(name)
	if !fn.IsValid() {
		if !owner.CanAddr() {
			owner = addressable(owner)
		}

		fn = owner.Addr().MethodByName(name)
	}

	if !fn.IsValid() {
		return reflect.Value{}, false
	}

	return fn.Call(nil)[0], true
}

func callSetter(owner reflect.Value, name string, v reflect.Value) error {
	fn := owner.Addr().MethodByName(name)
	if !fn.IsValid() {
		return fmt.Errorf("write %s(): no such method on %s", name, owner.Type())
	}

	out := fn.Call([]reflect.Value{v})
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}

	return nil
}

// fieldByIndex walks index from v. Nil embedded pointers make it fail unless alloc is set,
// in which case they are allocated; v must then be addressable.
func fieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}

				if !v.CanSet() {
					v = expose(v)
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v, true
}

// expose returns a settable view of the addressable value v, unexported or not.
func expose(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func addressable(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)

	return c
}

// Indirect follows pointers and interfaces until a non-pointer value; invalid when one is nil.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

// Base strips all pointer levels from t.
func Base(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func baseKind(t reflect.Type) reflect.Kind {
	return Base(t).Kind()
}

// Find returns the member of members named name, comparing exactly first and then ignoring case.
// A trailing "()" in name is ignored.
func Find(members []Member, name string) (Member, error) {
	name = strings.TrimSuffix(name, "()")

	for _, m := range members {
		if m.Name == name {
			return m, nil
		}
	}

	var found []Member

	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			found = append(found, m)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Member{}, fmt.Errorf("%w: %q", ErrNoMember, name)
	default:
		return Member{}, fmt.Errorf("%w: %q matches %d members", ErrNoMember, name, len(found))
	}
}

// ErrNoMember is returned by Find when no single member matches.
var ErrNoMember = errors.New("no such member")
