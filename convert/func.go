package convert

import (
	"errors"
	"path"
	"reflect"
	"runtime"
	"strings"

	"github.com/kamilors/modelmapper/internal/common"
)

var (
	ErrIsNotAConverter         = errors.New("provided function is not a recognizable converter")
	ErrConverterIsNotAFunction = errors.New("provided converter is not a function")
	ErrDoublePointer           = errors.New("converter function does not support double pointers")
)

// FuncConverter adapts a plain Go function to ConditionalConverter.
type FuncConverter struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// Func inspects fn and wraps it as a converter for its (argument, result) type pair.
//
// Supports signatures:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
//
// A false bool result means "no value" and leaves the destination untouched.
func Func(fn any) (*FuncConverter, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return nil, ErrConverterIsNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return nil, ErrIsNotAConverter
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Pointer && src.Elem().Kind() == reflect.Pointer {
		return nil, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return nil, ErrDoublePointer
	}

	// "github.com/acme/app/dto.ToCents" -> "dto", "ToCents"
	file := common.Second(path.Split(runtime.FuncForPC(fnVal.Pointer()).Name()))
	alias, name := common.Unpack2(strings.SplitN(file, ".", 2))

	c := &FuncConverter{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: alias,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return nil, ErrIsNotAConverter

	case 1:
		return c, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return nil, ErrIsNotAConverter
		case last.Kind() == reflect.Bool:
			c.HasBool = true
		case last == errorType:
			c.HasErr = true
		}

		return c, nil

	case 3:
		if fnType.Out(1).Kind() != reflect.Bool || fnType.Out(2) != errorType {
			return nil, ErrIsNotAConverter
		}

		c.HasBool = true
		c.HasErr = true

		return c, nil
	}
}

// MustFunc is like Func but panics on error.
func MustFunc(fn any) *FuncConverter {
	c, err := Func(fn)
	if err != nil {
		panic(err)
	}

	return c
}

// Match is FULL for the exact pair and PARTIAL when src is assignable to the argument
// and the result is assignable to dst.
func (c *FuncConverter) Match(src, dst reflect.Type) MatchResult {
	switch {
	case src == c.Src && dst == c.Dst:
		return Full
	case src.AssignableTo(c.Src) && c.Dst.AssignableTo(dst):
		return Partial
	default:
		return None
	}
}

func (c *FuncConverter) Convert(ctx *Context) (reflect.Value, error) {
	in := ctx.Source
	if !in.IsValid() {
		in = reflect.Zero(c.Src)
	}

	out := c.fn.Call([]reflect.Value{in})

	if c.HasErr {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return reflect.Value{}, err
		}
	}

	if c.HasBool && !out[1].Bool() {
		return reflect.Value{}, nil
	}

	return out[0], nil
}

func (c *FuncConverter) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}
