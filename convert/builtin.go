package convert

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/kamilors/modelmapper/primitive"
)

// Defaults returns a fresh copy of the built-in chain in resolution order.
func Defaults() []ConditionalConverter {
	return []ConditionalConverter{
		Collection,
		Map,
		Assignable,
		Number,
		Bool,
		Time,
		Convertible,
		String,
		Struct,
	}
}

var (
	// Collection converts between slices and arrays element by element. The result is
	// always a new container; with collections merge the current destination tail is kept.
	Collection ConditionalConverter = collectionConverter{}

	// Map converts between maps, converting keys and values.
	Map ConditionalConverter = mapConverter{}

	// Assignable passes values through when the source type is assignable to the destination.
	Assignable ConditionalConverter = assignableConverter{}

	// Number converts between numbers and from numeric strings. Widening is FULL,
	// narrowing is PARTIAL and range checked.
	Number ConditionalConverter = primitiveConverter{
		name: "number",
		categories: primitive.CategorySafeNumber | primitive.CategoryUnsafeNumber |
			primitive.CategoryTextNumber,
		toNumber: true,
	}

	// Bool converts between booleans and 0/1 numbers or true/false, yes/no, on/off strings.
	Bool ConditionalConverter = primitiveConverter{
		name:       "bool",
		categories: primitive.CategoryNumericBool | primitive.CategoryTextualBool,
	}

	// Time converts time.Time and time.Duration to and from their textual and numeric forms.
	Time ConditionalConverter = primitiveConverter{
		name: "time",
		categories: primitive.CategoryDatetime | primitive.CategoryTimestamp | primitive.CategoryDuration |
			primitive.CategoryNanoseconds | primitive.CategorySeconds,
	}

	// Convertible applies Go conversions between scalar types of the same kind,
	// such as string and a named string type.
	Convertible ConditionalConverter = convertibleConverter{}

	// String renders numbers, fmt.Stringer, error and []byte values as strings.
	String ConditionalConverter = stringConverter{}

	// Struct maps struct-like values member by member through a nested type map.
	Struct ConditionalConverter = structConverter{}
)

type collectionConverter struct{}

func isSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func (collectionConverter) Match(src, dst reflect.Type) MatchResult {
	if isSequence(src) && isSequence(dst) {
		return Full
	}

	return None
}

func (collectionConverter) Convert(ctx *Context) (reflect.Value, error) {
	src := ctx.Source
	dstType := ctx.DestinationType

	if src.Kind() == reflect.Slice && src.IsNil() {
		return reflect.Zero(dstType), nil
	}

	existing := ctx.Destination
	merge := ctx.Options.CollectionsMerge && !IsNil(existing)

	m := src.Len()
	n := 0

	if merge {
		n = existing.Len()
	}

	var out reflect.Value

	if dstType.Kind() == reflect.Array {
		out = reflect.New(dstType).Elem()
		if merge {
			out.Set(existing)
		}
	} else {
		size := m
		if merge && n > m {
			size = n
		}

		out = reflect.MakeSlice(dstType, size, size)
		if merge && n > m {
			// the first m elements are overwritten below, the tail survives
			reflect.Copy(out, existing)
		}
	}

	elem := dstType.Elem()

	for i := 0; i < m && i < out.Len(); i++ {
		var cur reflect.Value
		if merge && i < n {
			cur = existing.Index(i)
		}

		idx := "[" + strconv.Itoa(i) + "]"

		v, err := ctx.Mapper.Convert(ctx.Child(src.Index(i), elem, cur, ctx.SourcePath+idx, ctx.DestinationPath+idx))
		if err != nil {
			return reflect.Value{}, err
		}

		if v.IsValid() {
			out.Index(i).Set(v)
		}
	}

	return out, nil
}

type mapConverter struct{}

func (mapConverter) Match(src, dst reflect.Type) MatchResult {
	if src.Kind() == reflect.Map && dst.Kind() == reflect.Map {
		return Full
	}

	return None
}

func (mapConverter) Convert(ctx *Context) (reflect.Value, error) {
	src := ctx.Source
	dstType := ctx.DestinationType

	if src.IsNil() {
		return reflect.Zero(dstType), nil
	}

	existing := ctx.Destination
	merge := ctx.Options.CollectionsMerge && !IsNil(existing)
	out := reflect.MakeMapWithSize(dstType, src.Len())

	if merge {
		iter := existing.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}

	iter := src.MapRange()
	for iter.Next() {
		keyPath := fmt.Sprintf("[%v]", iter.Key())

		k, err := ctx.Mapper.Convert(ctx.Child(iter.Key(), dstType.Key(), reflect.Value{},
			ctx.SourcePath+keyPath, ctx.DestinationPath+keyPath))
		if err != nil {
			return reflect.Value{}, err
		}

		if !k.IsValid() {
			continue
		}

		var cur reflect.Value
		if merge {
			cur = existing.MapIndex(k)
		}

		v, err := ctx.Mapper.Convert(ctx.Child(iter.Value(), dstType.Elem(), cur,
			ctx.SourcePath+keyPath, ctx.DestinationPath+keyPath))
		if err != nil {
			return reflect.Value{}, err
		}

		if !v.IsValid() {
			v = reflect.Zero(dstType.Elem())
		}

		out.SetMapIndex(k, v)
	}

	return out, nil
}

type assignableConverter struct{}

func (assignableConverter) Match(src, dst reflect.Type) MatchResult {
	switch {
	case src == dst:
		return Full
	case src.AssignableTo(dst):
		return Partial
	default:
		return None
	}
}

func (assignableConverter) Convert(ctx *Context) (reflect.Value, error) {
	return ctx.Source, nil
}

func (assignableConverter) Aliases() bool {
	return true
}

// primitiveConverter covers the conversion categories of the primitive package.
type primitiveConverter struct {
	name       string
	categories primitive.CategoryEnum
	toNumber   bool // only claims pairs with a numeric destination
}

func (c primitiveConverter) Match(src, dst reflect.Type) MatchResult {
	from, to := primitive.FromReflectType(src), primitive.FromReflectType(dst)
	if c.toNumber && !to.IsNumber() {
		return None
	}

	category := primitive.CategoryOf(from, to)

	switch {
	case category&c.categories == 0:
		return None
	case category == primitive.CategorySafeNumber:
		return Full
	default:
		return Partial
	}
}

func (c primitiveConverter) Convert(ctx *Context) (reflect.Value, error) {
	return primitive.Convert(ctx.Source, ctx.DestinationType)
}

func (c primitiveConverter) String() string {
	return c.name
}

type convertibleConverter struct{}

func (convertibleConverter) Match(src, dst reflect.Type) MatchResult {
	from, to := primitive.FromReflectType(src), primitive.FromReflectType(dst)

	if from == 0 || to == 0 || from == primitive.KindTime || src.Kind() != dst.Kind() {
		return None
	}

	if src.ConvertibleTo(dst) {
		return Partial
	}

	return None
}

func (convertibleConverter) Convert(ctx *Context) (reflect.Value, error) {
	return ctx.Source.Convert(ctx.DestinationType), nil
}

type stringConverter struct{}

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	errorType    = reflect.TypeFor[error]()
	bytesType    = reflect.TypeFor[[]byte]()
)

func (stringConverter) Match(src, dst reflect.Type) MatchResult {
	if dst.Kind() != reflect.String {
		return None
	}

	switch {
	case src.Implements(stringerType), src.Implements(errorType):
		return Partial
	case src.Kind() == reflect.Slice && src.Elem().Kind() == reflect.Uint8:
		return Partial
	case primitive.CategoryOf(primitive.FromReflectType(src), primitive.KindString) == primitive.CategoryTextNumber:
		return Partial
	default:
		return None
	}
}

func (stringConverter) Convert(ctx *Context) (reflect.Value, error) {
	src := ctx.Source
	out := reflect.New(ctx.DestinationType).Elem()

	switch v := src.Interface().(type) {
	case fmt.Stringer:
		out.SetString(v.String())
	case error:
		out.SetString(v.Error())
	default:
		if src.Kind() == reflect.Slice {
			out.SetString(string(src.Convert(bytesType).Interface().([]byte)))

			return out, nil
		}

		return primitive.Convert(src, ctx.DestinationType)
	}

	return out, nil
}

type structConverter struct{}

func (structConverter) Match(src, dst reflect.Type) MatchResult {
	if !StructLike(src) || !StructLike(dst) {
		return None
	}

	if dst.Kind() == reflect.Struct && !hasExportedFields(dst) {
		return None
	}

	return Partial
}

// StructLike reports whether members of t can be enumerated: structs and string-keyed maps.
func StructLike(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	default:
		return false
	}
}

func (structConverter) Convert(ctx *Context) (reflect.Value, error) {
	return ctx.Mapper.Map(ctx)
}
