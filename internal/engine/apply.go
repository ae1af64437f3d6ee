package engine

import (
	"errors"
	"reflect"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/plan"
	"github.com/kamilors/modelmapper/mapperrors"
	"github.com/kamilors/modelmapper/naming"
)

// apply runs one property mapping: read, intercept, condition, null handling, convert, write.
func (r *run) apply(src, dst reflect.Value, pm plan.PropertyMapping, srcPrefix, dstPrefix string) error {
	srcPath := join(srcPrefix, pm.Source.String())
	dstPath := join(dstPrefix, pm.Destination.String())

	value, ok := r.read(src, pm.Source)
	if !ok {
		return nil
	}

	leaf := pm.Destination.Leaf()
	ctx := r.context(value, r.peek(dst, pm.Destination), leaf.Type, srcPath, dstPath)

	if ic := r.cfg.ResolveSourceValueInterceptor(); ic != nil {
		value = ic.Intercept(ctx, value)
		ctx = r.context(value, ctx.Destination, leaf.Type, srcPath, dstPath)
	}

	condition := pm.Condition
	if condition == nil {
		condition = r.cfg.PropertyCondition()
	}

	if condition != nil && !condition.Applies(ctx) {
		return nil
	}

	if convert.IsNil(value) {
		if r.opts.SkipNull {
			return nil
		}

		return r.write(dst, pm.Destination, reflect.Zero(leaf.Type), src, dstPrefix, false)
	}

	out, err := r.convert(ctx, pm)
	if err != nil {
		var me *mapperrors.MappingError
		if errors.As(err, &me) {
			return err
		}

		return &mapperrors.MappingError{
			Op:              mapperrors.OpConvert,
			SourcePath:      srcPath,
			DestinationPath: dstPath,
			SourceType:      ctx.SourceType.String(),
			DestinationType: leaf.Type.String(),
			Cause:           err,
		}
	}

	if !out.IsValid() {
		return nil
	}

	return r.write(dst, pm.Destination, out, src, dstPrefix, true)
}

// convert uses the converter chosen at build time when the value still has the declared
// type, and resolves from the runtime type otherwise.
func (r *run) convert(ctx *convert.Context, pm plan.PropertyMapping) (reflect.Value, error) {
	if pm.Converter != nil && !pm.Adapted && !pm.Dynamic && ctx.SourceType == pm.SourceType {
		return pm.Converter.Convert(ctx)
	}

	return r.Convert(ctx)
}

// read follows path from src. ok is false when an intermediate value is absent; an
// absent leaf reads as an invalid value.
func (r *run) read(src reflect.Value, path plan.Path) (reflect.Value, bool) {
	cur := src

	for i, m := range path {
		owner := access.Indirect(cur)
		if !owner.IsValid() {
			return reflect.Value{}, false
		}

		v, ok := r.acc.Read(owner, m)
		if !ok {
			return reflect.Value{}, i == len(path)-1
		}

		cur = v
	}

	return cur, true
}

// peek returns the current destination value at path without allocating anything.
// Setter and writer-backed members cannot be read back and peek as invalid.
func (r *run) peek(dst reflect.Value, path plan.Path) reflect.Value {
	for _, m := range path {
		if m.Kind != naming.Field || m.Backed() {
			return reflect.Value{}
		}
	}

	v, _ := r.read(dst, path)

	return v
}

// write assigns v at path below the addressable owner found at prefix. Nil pointer
// intermediates are provisioned when provision is set; otherwise the write is dropped.
func (r *run) write(owner reflect.Value, path plan.Path, v, src reflect.Value, prefix string, provision bool) error {
	m := path[0]
	here := join(prefix, m.String())

	if len(path) == 1 {
		if err := r.acc.Write(owner, m, v); err != nil {
			return writeError(here, m.Type, err)
		}

		return nil
	}

	cur, ok := r.acc.Read(owner, m)

	var next reflect.Value

	switch {
	case m.Type.Kind() != reflect.Pointer:
		next = reflect.New(m.Type).Elem()
		if ok {
			next.Set(cur)
		}

	case ok && !cur.IsNil():
		next = cur

	case !provision:
		return nil

	default:
		p, err := r.provide(m.Type.Elem(), src, here)
		if err != nil {
			return err
		}

		next = p
	}

	if err := r.write(access.Indirect(next), path[1:], v, src, here, provision); err != nil {
		return err
	}

	if err := r.acc.Write(owner, m, next); err != nil {
		return writeError(here, m.Type, err)
	}

	return nil
}

func writeError(path string, t reflect.Type, err error) error {
	return &mapperrors.MappingError{
		Op:              mapperrors.OpWrite,
		DestinationPath: path,
		DestinationType: t.String(),
		Cause:           err,
	}
}
