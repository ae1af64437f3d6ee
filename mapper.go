package modelmapper

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/engine"
	"github.com/kamilors/modelmapper/internal/plan"
	"github.com/kamilors/modelmapper/mapperrors"
)

type (
	// TypeMap is the cached mapping plan between a source and a destination type.
	TypeMap = plan.TypeMap
	// PropertyMapping maps one source path onto one destination path.
	PropertyMapping = plan.PropertyMapping
	// Pair identifies a source and destination type.
	Pair = plan.Pair
)

// PairOf returns the Pair of S and D.
func PairOf[S, D any]() Pair {
	return Pair{Source: reflect.TypeFor[S](), Destination: reflect.TypeFor[D]()}
}

// ModelMapper matches, caches and executes mappings between object graphs. It is safe for
// concurrent use once configured.
type ModelMapper struct {
	cfg    *config.Configuration
	logger Logger
	store  *plan.Store
	engine *engine.Engine
}

// Option configures a ModelMapper.
type Option func(*ModelMapper)

// WithConfiguration uses cfg instead of config.New(). Changes made to cfg later apply to
// TypeMaps built after the change.
func WithConfiguration(cfg *config.Configuration) Option {
	return func(m *ModelMapper) {
		if cfg == nil {
			panic(mapperrors.NewArgumentError("configuration", "must not be nil"))
		}

		m.cfg = cfg
	}
}

// WithLogger reports TypeMap builds to l.
func WithLogger(l Logger) Option {
	return func(m *ModelMapper) {
		if l == nil {
			l = NopLogger{}
		}

		m.logger = l
	}
}

// New returns a ModelMapper with the default configuration.
func New(opts ...Option) *ModelMapper {
	m := &ModelMapper{cfg: config.New(), logger: NopLogger{}}

	for _, opt := range opts {
		opt(m)
	}

	m.store = plan.NewStore(plan.Hooks{Built: m.built, Failed: m.failed})
	m.engine = engine.New(m.store)

	return m
}

// Configuration returns the live configuration of m.
func (m *ModelMapper) Configuration() *config.Configuration {
	return m.cfg
}

// TypeMap returns the TypeMap for src -> dst, building it on first use.
func (m *ModelMapper) TypeMap(src, dst reflect.Type) (*TypeMap, error) {
	if err := checkPair(src, dst); err != nil {
		return nil, err
	}

	return m.store.TypeMap(m.cfg, src, dst, reflect.Value{})
}

// TypeMapOf returns the TypeMap for S -> D.
func TypeMapOf[S, D any](m *ModelMapper) (*TypeMap, error) {
	return m.TypeMap(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

// CreateTypeMap registers decls for src -> dst and returns the rebuilt TypeMap. Calling it
// again for the same pair adds to the declarations already registered. Nothing is
// registered when the resulting TypeMap cannot be built.
func (m *ModelMapper) CreateTypeMap(src, dst reflect.Type, decls ...Declaration) (*TypeMap, error) {
	return m.define(src, dst, plan.Registration{Declarations: declarations(decls)})
}

// EmptyTypeMap is CreateTypeMap with implicit matching disabled for the pair: only decls
// are mapped.
func (m *ModelMapper) EmptyTypeMap(src, dst reflect.Type, decls ...Declaration) (*TypeMap, error) {
	off := false

	return m.define(src, dst, plan.Registration{Declarations: declarations(decls), Implicit: &off})
}

func (m *ModelMapper) define(src, dst reflect.Type, reg plan.Registration) (*TypeMap, error) {
	if err := checkPair(src, dst); err != nil {
		return nil, err
	}

	tm, err := m.store.Define(m.cfg, src, dst, reg)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("type map declared", "pair", tm.String(), "declarations", len(reg.Declarations))

	return tm, nil
}

// Map maps source onto the value destination points to. Existing destination values are
// updated in place of unset ones; with error collection enabled, the partially mapped
// destination is stored alongside the joined errors.
func (m *ModelMapper) Map(source, destination any) error {
	start := time.Now()

	sv := reflect.ValueOf(source)
	if convert.IsNil(sv) {
		return mapperrors.NewArgumentError("source", "must not be nil")
	}

	dv := reflect.ValueOf(destination)
	if !dv.IsValid() || dv.Kind() != reflect.Pointer || dv.IsNil() {
		return mapperrors.NewArgumentError("destination", "must be a non-nil pointer")
	}

	dt := dv.Type().Elem()

	out, err := m.run(sv, dv, dt)
	if out.IsValid() {
		dv.Elem().Set(out)
	}

	emitMapComplete(context.Background(), sv.Type().String(), dt.String(), time.Since(start), err)

	return err
}

// MapTo maps source onto a new D.
func MapTo[D any](m *ModelMapper, source any) (D, error) {
	var out D
	err := m.Map(source, &out)

	return out, err
}

// run maps struct-like pairs through a TypeMap, identical types included, and hands
// everything else, map to map conversions among them, to the converter chain.
func (m *ModelMapper) run(sv, dv reflect.Value, dt reflect.Type) (reflect.Value, error) {
	src := access.Indirect(sv)
	st := src.Type()

	if convert.Struct.Match(st, dt) != convert.None && (st.Kind() != reflect.Map || dt.Kind() != reflect.Map) {
		tm, err := m.store.TypeMap(m.cfg, st, dt, src)
		if err != nil {
			return reflect.Value{}, err
		}

		return m.engine.Execute(src, dv, tm)
	}

	return m.engine.Convert(m.cfg, sv, dv.Elem(), dt)
}

// Validate builds the TypeMap of every registered pair and fails with the joined build
// errors and *UnmappedError values.
func (m *ModelMapper) Validate() error {
	var errs []error

	for _, p := range m.store.Pairs() {
		tm, err := m.store.TypeMap(m.cfg, p.Source, p.Destination, reflect.Value{})
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := tm.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Warm builds the TypeMaps of pairs, or of every registered pair when none are given, and
// of the nested pairs they convert through.
func (m *ModelMapper) Warm(ctx context.Context, pairs ...Pair) error {
	if len(pairs) == 0 {
		pairs = m.store.Pairs()
	}

	for _, p := range pairs {
		if err := checkPair(p.Source, p.Destination); err != nil {
			return err
		}
	}

	return m.store.Warm(ctx, m.cfg, pairs...)
}

func (m *ModelMapper) built(tm *TypeMap, elapsed time.Duration) {
	m.logger.Debug("type map built",
		"pair", tm.String(),
		"mappings", len(tm.Mappings),
		"unmapped", len(tm.Unmapped),
		"elapsed", elapsed,
	)

	for _, w := range tm.Diagnostics.Warnings {
		m.logger.Debug("type map warning", "pair", tm.String(), "code", w.Code, "path", w.Path, "message", w.Message)
	}

	emitTypeMapBuilt(context.Background(), tm.SourceType.String(), tm.DestinationType.String(),
		len(tm.Mappings), len(tm.Unmapped), elapsed)
}

func (m *ModelMapper) failed(pair Pair, err error) {
	m.logger.Error("type map build failed", "pair", pair.String(), "error", err)
	emitTypeMapFailed(context.Background(), pair.Source.String(), pair.Destination.String(), err)
}

func checkPair(src, dst reflect.Type) error {
	switch {
	case src == nil:
		return mapperrors.NewArgumentError("source type", "must not be nil")
	case dst == nil:
		return mapperrors.NewArgumentError("destination type", "must not be nil")
	default:
		return nil
	}
}
