package engine

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/diagnostic"
	"github.com/kamilors/modelmapper/internal/plan"
	"github.com/kamilors/modelmapper/mapperrors"
)

// TypeMaps supplies the TypeMaps nested struct-like values are mapped through.
type TypeMaps interface {
	TypeMap(cfg *config.Configuration, src, dst reflect.Type, instance reflect.Value) (*plan.TypeMap, error)
	Resolver(cfg *config.Configuration) *plan.Resolver
}

// Engine replays TypeMaps against instances. It holds no per-call state.
type Engine struct {
	maps TypeMaps
}

// New returns an Engine resolving nested TypeMaps through maps.
func New(maps TypeMaps) *Engine {
	return &Engine{maps: maps}
}

// Execute maps source onto destination following tm and returns the populated
// destination, a value of tm.DestinationType. An invalid destination is provisioned.
// With error collection enabled, failures other than provisioning are gathered and
// returned together after every mapping ran, alongside the partial destination.
func (e *Engine) Execute(source, destination reflect.Value, tm *plan.TypeMap) (reflect.Value, error) {
	r := e.begin(tm.Config)

	out, err := r.execute(access.Indirect(source), access.Indirect(destination), tm, "", "")
	if err != nil {
		return reflect.Value{}, err
	}

	return out, r.collected.Err()
}

// Convert converts source to dst through the converter chain of cfg.
func (e *Engine) Convert(cfg *config.Configuration, source, destination reflect.Value, dst reflect.Type) (reflect.Value, error) {
	r := e.begin(cfg)

	out, err := r.Convert(r.context(source, destination, dst, "", ""))
	if err != nil {
		return reflect.Value{}, err
	}

	return out, r.collected.Err()
}

func (e *Engine) begin(cfg *config.Configuration) *run {
	return &run{
		maps:     e.maps,
		cfg:      cfg,
		acc:      cfg.Accessor(),
		resolver: e.maps.Resolver(cfg),
		opts:     cfg.ConvertOptions(),
		collect:  cfg.ErrorCollectionEnabled(),
	}
}

// run carries one Execute or Convert call. It is the convert.Mapper handed to converters.
type run struct {
	maps      TypeMaps
	cfg       *config.Configuration
	acc       access.Accessor
	resolver  *plan.Resolver
	opts      convert.Options
	collect   bool
	collected diagnostic.Diagnostics
}

var _ convert.Mapper = (*run)(nil)

func (r *run) context(src, existing reflect.Value, dst reflect.Type, srcPath, dstPath string) *convert.Context {
	ctx := &convert.Context{
		Source:          src,
		Destination:     existing,
		DestinationType: dst,
		SourcePath:      srcPath,
		DestinationPath: dstPath,
		Options:         r.opts,
		Mapper:          r,
	}

	if src.IsValid() {
		ctx.SourceType = src.Type()
	}

	return ctx
}

// Convert resolves a converter for the runtime source type. Pointers are dereferenced on
// the source side and allocated on the destination side; an existing non-nil destination
// pointer is written through and returned.
func (r *run) Convert(ctx *convert.Context) (reflect.Value, error) {
	src := ctx.Source
	dt := ctx.DestinationType

	if src.IsValid() && src.Kind() == reflect.Interface {
		if src.IsNil() {
			return reflect.Zero(dt), nil
		}

		return r.Convert(ctx.Child(src.Elem(), dt, ctx.Destination, ctx.SourcePath, ctx.DestinationPath))
	}

	if !src.IsValid() {
		return reflect.Zero(dt), nil
	}

	if res := r.resolver.Resolve(src.Type(), dt); res.Converter != nil && !res.Adapted {
		return res.Converter.Convert(ctx)
	}

	switch {
	case src.Kind() == reflect.Pointer && dt.Kind() == reflect.Pointer:
		if src.IsNil() {
			return reflect.Zero(dt), nil
		}

		return r.wrap(ctx, src.Elem())

	case src.Kind() == reflect.Pointer:
		if src.IsNil() {
			return reflect.Zero(dt), nil
		}

		return r.Convert(ctx.Child(src.Elem(), dt, ctx.Destination, ctx.SourcePath, ctx.DestinationPath))

	case dt.Kind() == reflect.Pointer:
		return r.wrap(ctx, src)
	}

	return reflect.Value{}, fmt.Errorf("%w: %v -> %v", plan.ErrNoConverter, src.Type(), dt)
}

// wrap converts src to the element type of the pointer ctx.DestinationType.
func (r *run) wrap(ctx *convert.Context, src reflect.Value) (reflect.Value, error) {
	dt := ctx.DestinationType
	existing := ctx.Destination

	var cur reflect.Value
	if existing.IsValid() && existing.Kind() == reflect.Pointer && !existing.IsNil() && existing.Type() == dt {
		cur = existing.Elem()
	}

	v, err := r.Convert(ctx.Child(src, dt.Elem(), cur, ctx.SourcePath, ctx.DestinationPath))
	if err != nil || !v.IsValid() {
		return reflect.Value{}, err
	}

	if cur.IsValid() {
		cur.Set(v)

		return existing, nil
	}

	p := reflect.New(dt.Elem())
	p.Elem().Set(v)

	return p, nil
}

// Map maps a struct-like source through the TypeMap of its runtime type.
func (r *run) Map(ctx *convert.Context) (reflect.Value, error) {
	src := access.Indirect(ctx.Source)
	if !src.IsValid() {
		return reflect.Zero(ctx.DestinationType), nil
	}

	tm, err := r.maps.TypeMap(r.cfg, src.Type(), ctx.DestinationType, src)
	if err != nil {
		return reflect.Value{}, err
	}

	return r.execute(src, access.Indirect(ctx.Destination), tm, ctx.SourcePath, ctx.DestinationPath)
}

func (r *run) execute(src, existing reflect.Value, tm *plan.TypeMap, srcPrefix, dstPrefix string) (reflect.Value, error) {
	dst, err := r.destination(tm.DestinationType, src, existing, dstPrefix)
	if err != nil {
		return reflect.Value{}, err
	}

	for _, pm := range tm.Mappings {
		if pm.Skip {
			continue
		}

		err := r.apply(src, dst, pm, srcPrefix, dstPrefix)
		if err == nil {
			continue
		}

		if !r.collect || errors.Is(err, mapperrors.ErrProvisioning) {
			return reflect.Value{}, err
		}

		r.collected.AddCause(diagnostic.CodeConversion, err, tm.String(), join(dstPrefix, pm.Destination.String()))
	}

	return dst, nil
}

// destination returns an addressable destination of type t: a copy of existing when it is
// set, a provisioned instance otherwise.
func (r *run) destination(t reflect.Type, src, existing reflect.Value, path string) (reflect.Value, error) {
	if existing.IsValid() && existing.Type() == t && !convert.IsNil(existing) {
		dst := reflect.New(t).Elem()
		dst.Set(existing)

		return dst, nil
	}

	p, err := r.provide(t, src, path)
	if err != nil {
		return reflect.Value{}, err
	}

	return p.Elem(), nil
}

// provide returns a pointer to a new instance of t from the configured Provider, falling
// back to reflect.New.
func (r *run) provide(t reflect.Type, src reflect.Value, path string) (reflect.Value, error) {
	provider := r.cfg.Provider()
	if provider == nil {
		return reflect.New(t), nil
	}

	v, err := provider.Provide(convert.ProvisionRequest{Type: t, Source: src, Path: path})
	if err != nil {
		return reflect.Value{}, provisionError(t, path, err)
	}

	switch {
	case !v.IsValid():
		return reflect.New(t), nil
	case v.Type() == reflect.PointerTo(t) && !v.IsNil():
		return v, nil
	case v.Type() == t:
		p := reflect.New(t)
		p.Elem().Set(v)

		return p, nil
	default:
		return reflect.Value{}, provisionError(t, path, fmt.Errorf("provider returned %v", v.Type()))
	}
}

func provisionError(t reflect.Type, path string, err error) error {
	return &mapperrors.MappingError{
		Op:              mapperrors.OpProvision,
		DestinationPath: path,
		DestinationType: t.String(),
		Cause:           err,
	}
}

func join(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}
