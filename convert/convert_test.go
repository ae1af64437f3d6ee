package convert

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainMapper resolves nested conversions against the default chain without pointer handling.
type chainMapper struct {
	chain []ConditionalConverter
}

func (m chainMapper) Convert(ctx *Context) (reflect.Value, error) {
	if IsNil(ctx.Source) {
		return reflect.Zero(ctx.DestinationType), nil
	}

	c, _ := Resolve(m.chain, ctx.Source.Type(), ctx.DestinationType, ResolveOptions{DeepCopy: ctx.Options.DeepCopy})
	if c == nil {
		return reflect.Value{}, fmt.Errorf("no converter for %s -> %s", ctx.Source.Type(), ctx.DestinationType)
	}

	return c.Convert(ctx)
}

func (chainMapper) Map(*Context) (reflect.Value, error) {
	return reflect.Value{}, errors.New("not supported")
}

func run(t *testing.T, c ConditionalConverter, src any, dst reflect.Type, existing any, opts Options) reflect.Value {
	t.Helper()

	var cur reflect.Value
	if existing != nil {
		cur = reflect.ValueOf(existing)
	}

	ctx := &Context{
		Source:          reflect.ValueOf(src),
		SourceType:      reflect.TypeOf(src),
		Destination:     cur,
		DestinationType: dst,
		Options:         opts,
		Mapper:          chainMapper{chain: Defaults()},
	}

	out, err := c.Convert(ctx)
	require.NoError(t, err)

	return out
}

type Status string

type Level int

func (l Level) String() string { return fmt.Sprintf("L%d", int(l)) }

type Address struct {
	City string
}

type AddressDTO struct {
	City string
}

type opaque struct {
	n int
}

func typ[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func TestResolveDefaults(t *testing.T) {
	tests := []struct {
		name     string
		src, dst reflect.Type
		expected ConditionalConverter
		result   MatchResult
	}{
		{"identical scalars", typ[int](), typ[int](), Assignable, Full},
		{"identical slices use collection", typ[[]int](), typ[[]int](), Collection, Full},
		{"array to slice", typ[[3]int](), typ[[]int64](), Collection, Full},
		{"maps", typ[map[string]int](), typ[map[string]string](), Map, Full},
		{"interface destination", typ[int](), typ[any](), Assignable, Partial},
		{"widening", typ[int8](), typ[int64](), Number, Full},
		{"narrowing", typ[int64](), typ[int8](), Number, Partial},
		{"numeric string", typ[string](), typ[float64](), Number, Partial},
		{"bool from int", typ[int](), typ[bool](), Bool, Partial},
		{"bool to string", typ[bool](), typ[string](), Bool, Partial},
		{"time to string", typ[time.Time](), typ[string](), Time, Partial},
		{"duration from string", typ[string](), typ[time.Duration](), Time, Partial},
		{"named string", typ[string](), typ[Status](), Convertible, Partial},
		{"stringer beats number", typ[Level](), typ[string](), String, Partial},
		{"number to string", typ[uint16](), typ[string](), String, Partial},
		{"bytes to string", typ[[]byte](), typ[string](), String, Partial},
		{"struct to struct", typ[Address](), typ[AddressDTO](), Struct, Partial},
		{"identical underlying struct", typ[Address](), typ[struct{ City string }](), Assignable, Partial},
		{"map to struct", typ[map[string]any](), typ[Address](), Struct, Partial},
		{"struct to map", typ[Address](), typ[map[string]any](), Struct, Partial},
		{"opaque struct", typ[Address](), typ[opaque](), nil, None},
		{"unrelated", typ[chan int](), typ[int](), nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := Resolve(Defaults(), tt.src, tt.dst, ResolveOptions{})
			assert.Equal(t, tt.result, r)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestResolveFullTypeMatchingRequired(t *testing.T) {
	c, r := Resolve(Defaults(), typ[int64](), typ[int8](), ResolveOptions{FullTypeMatchingRequired: true})
	assert.Nil(t, c)
	assert.Equal(t, None, r)

	c, r = Resolve(Defaults(), typ[int8](), typ[int64](), ResolveOptions{FullTypeMatchingRequired: true})
	assert.Equal(t, Number, c)
	assert.Equal(t, Full, r)
}

func TestResolveDeepCopySkipsAliasing(t *testing.T) {
	c, r := Resolve(Defaults(), typ[*Address](), typ[*Address](), ResolveOptions{})
	assert.Equal(t, Assignable, c)
	assert.Equal(t, Full, r)

	c, _ = Resolve(Defaults(), typ[*Address](), typ[*Address](), ResolveOptions{DeepCopy: true})
	assert.Nil(t, c, "pointers resolve on their bases under deep copy")

	c, _ = Resolve(Defaults(), typ[Address](), typ[Address](), ResolveOptions{DeepCopy: true})
	assert.Equal(t, Struct, c)

	c, _ = Resolve(Defaults(), typ[time.Time](), typ[time.Time](), ResolveOptions{DeepCopy: true})
	assert.Equal(t, Assignable, c, "opaque values are still assigned")
}

func TestResolveDeterministic(t *testing.T) {
	first, _ := Resolve(Defaults(), typ[uint8](), typ[string](), ResolveOptions{})

	for range 20 {
		c, _ := Resolve(Defaults(), typ[uint8](), typ[string](), ResolveOptions{})
		assert.Equal(t, first, c)
	}
}

func TestIsReferenceLike(t *testing.T) {
	assert.True(t, IsReferenceLike(typ[*int]()))
	assert.True(t, IsReferenceLike(typ[[]int]()))
	assert.True(t, IsReferenceLike(typ[map[string]int]()))
	assert.True(t, IsReferenceLike(typ[[2]*int]()))
	assert.False(t, IsReferenceLike(typ[[2]int]()))
	assert.True(t, IsReferenceLike(typ[Address]()))
	assert.False(t, IsReferenceLike(typ[time.Time]()))
	assert.False(t, IsReferenceLike(typ[string]()))
	assert.False(t, IsReferenceLike(nil))
}

func TestCollectionMerge(t *testing.T) {
	merge := Options{CollectionsMerge: true}

	t.Run("shorter source keeps tail", func(t *testing.T) {
		out := run(t, Collection, []int{9, 8}, typ[[]int](), []int{1, 2, 3, 4, 5}, merge)
		assert.Equal(t, []int{9, 8, 3, 4, 5}, out.Interface())
	})

	t.Run("longer source extends", func(t *testing.T) {
		out := run(t, Collection, []int{9, 8, 7}, typ[[]int](), []int{1}, merge)
		assert.Equal(t, []int{9, 8, 7}, out.Interface())
	})

	t.Run("merge disabled replaces", func(t *testing.T) {
		out := run(t, Collection, []int{9, 8}, typ[[]int](), []int{1, 2, 3, 4, 5}, Options{})
		assert.Equal(t, []int{9, 8}, out.Interface())
	})

	t.Run("result is a new container", func(t *testing.T) {
		src := []int{1, 2}
		out := run(t, Collection, src, typ[[]int](), nil, Options{}).Interface().([]int)
		out[0] = 100
		assert.Equal(t, 1, src[0])
	})

	t.Run("elements are converted", func(t *testing.T) {
		out := run(t, Collection, [3]int8{1, 2, 3}, typ[[]string](), nil, Options{})
		assert.Equal(t, []string{"1", "2", "3"}, out.Interface())
	})

	t.Run("array destination keeps unused slots", func(t *testing.T) {
		out := run(t, Collection, []int{7}, typ[[3]int](), [3]int{1, 2, 3}, merge)
		assert.Equal(t, [3]int{7, 2, 3}, out.Interface())
	})

	t.Run("nil slice", func(t *testing.T) {
		out := run(t, Collection, []int(nil), typ[[]int](), nil, merge)
		assert.True(t, out.IsNil())
	})
}

func TestMapConverter(t *testing.T) {
	out := run(t, Map, map[string]int{"a": 1}, typ[map[string]string](), nil, Options{})
	assert.Equal(t, map[string]string{"a": "1"}, out.Interface())

	out = run(t, Map, map[string]int{"a": 1}, typ[map[string]int](), map[string]int{"b": 2}, Options{CollectionsMerge: true})
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, out.Interface())

	out = run(t, Map, map[string]int{"a": 1}, typ[map[string]int](), map[string]int{"b": 2}, Options{})
	assert.Equal(t, map[string]int{"a": 1}, out.Interface())
}

func TestScalarConverters(t *testing.T) {
	assert.Equal(t, int8(5), run(t, Number, 5, typ[int8](), nil, Options{}).Interface())
	assert.Equal(t, true, run(t, Bool, "on", typ[bool](), nil, Options{}).Interface())
	assert.Equal(t, Status("x"), run(t, Convertible, "x", typ[Status](), nil, Options{}).Interface())
	assert.Equal(t, "L3", run(t, String, Level(3), typ[string](), nil, Options{}).Interface())
	assert.Equal(t, "boom", run(t, String, errors.New("boom"), typ[string](), nil, Options{}).Interface())
	assert.Equal(t, "hi", run(t, String, []byte("hi"), typ[string](), nil, Options{}).Interface())
	assert.Equal(t, "12", run(t, String, 12, typ[string](), nil, Options{}).Interface())
	assert.Equal(t, time.Second, run(t, Time, "1s", typ[time.Duration](), nil, Options{}).Interface())

	_, err := Number.Convert(&Context{Source: reflect.ValueOf(300), DestinationType: typ[int8]()})
	assert.ErrorContains(t, err, "overflows int8")
}

func TestMatchResultString(t *testing.T) {
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "MatchResult(5)", MatchResult(5).String())
}

func TestContextValues(t *testing.T) {
	ctx := &Context{Source: reflect.ValueOf((*int)(nil)), Destination: reflect.ValueOf("x")}

	assert.Nil(t, ctx.SourceValue())
	assert.Equal(t, "x", ctx.DestinationValue())

	child := ctx.Child(reflect.ValueOf(1), typ[int](), reflect.Value{}, "A", "B")
	assert.Equal(t, typ[int](), child.SourceType)
	assert.Equal(t, "A", child.SourcePath)
	assert.Nil(t, child.DestinationValue())
}
