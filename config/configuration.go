// Package config holds the Configuration that drives matching and mapping.
//
// Every setter returns the receiver so calls chain. Required collaborators (strategy,
// tokenizers, transformers and conventions) panic with an *ArgumentError when set to nil.
// Each change gives the configuration a new ID, which keys cached type maps.
package config

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/mapperrors"
	"github.com/kamilors/modelmapper/matching"
	"github.com/kamilors/modelmapper/naming"
)

var (
	ErrInvalidArgument = mapperrors.ErrInvalidArgument
)

type ArgumentError = mapperrors.ArgumentError

var lastID atomic.Uint64

// Side selects the source or destination half of a symmetric setting.
type Side int

const (
	Source Side = iota
	Destination
)

func (s Side) String() string {
	if s == Source {
		return "source"
	}

	return "destination"
}

type sided[T any] struct {
	source, destination T
}

func (s *sided[T]) get(side Side) T {
	if side == Source {
		return s.source
	}

	return s.destination
}

func (s *sided[T]) set(side Side, v T) {
	if side == Source {
		s.source = v
	} else {
		s.destination = v
	}
}

type Configuration struct {
	mu sync.RWMutex
	id atomic.Uint64

	fieldLevel  access.Level
	methodLevel access.Level
	strategy    matching.Strategy
	tokenizers  sided[naming.Tokenizer]
	transforms  sided[naming.Transformer]
	conventions sided[naming.Convention]
	accessor    access.Accessor

	fieldMatching    bool
	methodMatching   bool
	ambiguityIgnored bool
	fullTypeMatching bool
	implicitMapping  bool
	preferNested     bool
	skipNull         bool
	deepCopy         bool
	collectionsMerge bool
	errorCollection  bool

	condition   convert.Condition
	provider    convert.Provider
	interceptor convert.SourceInterceptor

	converters *List[convert.ConditionalConverter]
	readers    *List[access.ValueReader]
	writers    *List[access.ValueWriter]
}

// New returns a configuration with the default settings: exported fields only, standard
// matching, camel case names with accessor prefixes stripped, implicit mapping, nested
// properties preferred and collections merged.
func New() *Configuration {
	c := &Configuration{
		fieldLevel:       access.Public,
		methodLevel:      access.Public,
		strategy:         matching.Standard,
		tokenizers:       sided[naming.Tokenizer]{naming.CamelCase, naming.CamelCase},
		transforms:       sided[naming.Transformer]{naming.AccessorPrefixes, naming.AccessorPrefixes},
		conventions:      sided[naming.Convention]{naming.Getters, naming.Setters},
		accessor:         access.Default,
		fieldMatching:    true,
		implicitMapping:  true,
		preferNested:     true,
		collectionsMerge: true,
	}

	c.converters = newList("converter", nil, convert.Defaults()...)
	c.readers = newList[access.ValueReader]("value reader", validReader, access.MapReader{})
	c.writers = newList[access.ValueWriter]("value writer", validWriter, access.MapWriter{})
	c.bind()
	c.touch()

	return c
}

func validReader(r access.ValueReader) error {
	if r.Type() == nil {
		return mapperrors.NewArgumentError("value reader", "type must not be nil")
	}

	return nil
}

func validWriter(w access.ValueWriter) error {
	if w.Type() == nil {
		return mapperrors.NewArgumentError("value writer", "type must not be nil")
	}

	return nil
}

func (c *Configuration) bind() {
	c.converters.onChange = c.touch
	c.readers.onChange = c.touch
	c.writers.onChange = c.touch
}

func (c *Configuration) touch() {
	c.id.Store(lastID.Add(1))
}

// ID identifies the current settings. It changes on every modification and differs
// between a configuration and its copies.
func (c *Configuration) ID() uint64 {
	return c.id.Load()
}

// Copy returns an independent snapshot with a fresh ID.
func (c *Configuration) Copy() *Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp := &Configuration{
		fieldLevel:       c.fieldLevel,
		methodLevel:      c.methodLevel,
		strategy:         c.strategy,
		tokenizers:       c.tokenizers,
		transforms:       c.transforms,
		conventions:      c.conventions,
		accessor:         c.accessor,
		fieldMatching:    c.fieldMatching,
		methodMatching:   c.methodMatching,
		ambiguityIgnored: c.ambiguityIgnored,
		fullTypeMatching: c.fullTypeMatching,
		implicitMapping:  c.implicitMapping,
		preferNested:     c.preferNested,
		skipNull:         c.skipNull,
		deepCopy:         c.deepCopy,
		collectionsMerge: c.collectionsMerge,
		errorCollection:  c.errorCollection,
		condition:        c.condition,
		provider:         c.provider,
		interceptor:      c.interceptor,
		converters:       c.converters.clone(),
		readers:          c.readers.clone(),
		writers:          c.writers.clone(),
	}

	cp.bind()
	cp.touch()

	return cp
}

func read[T any](c *Configuration, field *T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return *field
}

func write[T any](c *Configuration, field *T, v T) *Configuration {
	c.mu.Lock()
	*field = v
	c.mu.Unlock()
	c.touch()

	return c
}

func required(arg string, v any) {
	if v == nil || isNil(v) {
		panic(mapperrors.NewArgumentError(arg, "must not be nil"))
	}
}

func (c *Configuration) FieldAccessLevel() access.Level { return read(c, &c.fieldLevel) }

func (c *Configuration) SetFieldAccessLevel(l access.Level) *Configuration {
	checkLevel(l)

	return write(c, &c.fieldLevel, l)
}

func (c *Configuration) MethodAccessLevel() access.Level { return read(c, &c.methodLevel) }

func (c *Configuration) SetMethodAccessLevel(l access.Level) *Configuration {
	checkLevel(l)

	return write(c, &c.methodLevel, l)
}

func checkLevel(l access.Level) {
	if l < access.Public || l > access.Private {
		panic(mapperrors.NewArgumentError("access level", l.String()+" is not a level"))
	}
}

func (c *Configuration) MatchingStrategy() matching.Strategy { return read(c, &c.strategy) }

func (c *Configuration) SetMatchingStrategy(s matching.Strategy) *Configuration {
	required("matching strategy", s)

	return write(c, &c.strategy, s)
}

// NameTokenizer returns the tokenizer of one side.
func (c *Configuration) NameTokenizer(side Side) naming.Tokenizer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tokenizers.get(side)
}

func (c *Configuration) SetNameTokenizer(side Side, t naming.Tokenizer) *Configuration {
	required(side.String()+" name tokenizer", t)

	c.mu.Lock()
	c.tokenizers.set(side, t)
	c.mu.Unlock()
	c.touch()

	return c
}

// NameTransformer returns the transformer of one side.
func (c *Configuration) NameTransformer(side Side) naming.Transformer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.transforms.get(side)
}

func (c *Configuration) SetNameTransformer(side Side, t naming.Transformer) *Configuration {
	required(side.String()+" name transformer", t)

	c.mu.Lock()
	c.transforms.set(side, t)
	c.mu.Unlock()
	c.touch()

	return c
}

// NamingConvention returns the convention of one side.
func (c *Configuration) NamingConvention(side Side) naming.Convention {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conventions.get(side)
}

func (c *Configuration) SetNamingConvention(side Side, conv naming.Convention) *Configuration {
	required(side.String()+" naming convention", conv)

	c.mu.Lock()
	c.conventions.set(side, conv)
	c.mu.Unlock()
	c.touch()

	return c
}

// Accessor returns the member accessor used for introspection and value transfer.
func (c *Configuration) Accessor() access.Accessor { return read(c, &c.accessor) }

func (c *Configuration) SetAccessor(a access.Accessor) *Configuration {
	required("accessor", a)

	return write(c, &c.accessor, a)
}

func (c *Configuration) FieldMatchingEnabled() bool { return read(c, &c.fieldMatching) }

func (c *Configuration) SetFieldMatchingEnabled(on bool) *Configuration {
	return write(c, &c.fieldMatching, on)
}

// MethodMatchingEnabled reports whether getter and setter methods take part in matching.
// Off by default: with fields on as well, a field and its getter would compete.
func (c *Configuration) MethodMatchingEnabled() bool { return read(c, &c.methodMatching) }

func (c *Configuration) SetMethodMatchingEnabled(on bool) *Configuration {
	return write(c, &c.methodMatching, on)
}

func (c *Configuration) AmbiguityIgnored() bool { return read(c, &c.ambiguityIgnored) }

func (c *Configuration) SetAmbiguityIgnored(on bool) *Configuration {
	return write(c, &c.ambiguityIgnored, on)
}

func (c *Configuration) FullTypeMatchingRequired() bool { return read(c, &c.fullTypeMatching) }

func (c *Configuration) SetFullTypeMatchingRequired(on bool) *Configuration {
	return write(c, &c.fullTypeMatching, on)
}

func (c *Configuration) ImplicitMappingEnabled() bool { return read(c, &c.implicitMapping) }

func (c *Configuration) SetImplicitMappingEnabled(on bool) *Configuration {
	return write(c, &c.implicitMapping, on)
}

func (c *Configuration) PreferNestedProperties() bool { return read(c, &c.preferNested) }

func (c *Configuration) SetPreferNestedProperties(on bool) *Configuration {
	return write(c, &c.preferNested, on)
}

func (c *Configuration) SkipNullEnabled() bool { return read(c, &c.skipNull) }

func (c *Configuration) SetSkipNullEnabled(on bool) *Configuration {
	return write(c, &c.skipNull, on)
}

func (c *Configuration) DeepCopyEnabled() bool { return read(c, &c.deepCopy) }

func (c *Configuration) SetDeepCopyEnabled(on bool) *Configuration {
	return write(c, &c.deepCopy, on)
}

func (c *Configuration) CollectionsMergeEnabled() bool { return read(c, &c.collectionsMerge) }

func (c *Configuration) SetCollectionsMergeEnabled(on bool) *Configuration {
	return write(c, &c.collectionsMerge, on)
}

// ErrorCollectionEnabled reports whether mapping continues past failed properties and
// reports them together.
func (c *Configuration) ErrorCollectionEnabled() bool { return read(c, &c.errorCollection) }

func (c *Configuration) SetErrorCollectionEnabled(on bool) *Configuration {
	return write(c, &c.errorCollection, on)
}

// PropertyCondition is the condition applied to mappings without their own, or nil when
// none was set.
func (c *Configuration) PropertyCondition() convert.Condition { return read(c, &c.condition) }

func (c *Configuration) SetPropertyCondition(cond convert.Condition) *Configuration {
	required("property condition", cond)

	return write(c, &c.condition, cond)
}

// Provider supplies destination instances. It is nil until set, and reflect.New is used then.
func (c *Configuration) Provider() convert.Provider { return read(c, &c.provider) }

func (c *Configuration) SetProvider(p convert.Provider) *Configuration {
	required("provider", p)

	return write(c, &c.provider, p)
}

func (c *Configuration) ResolveSourceValueInterceptor() convert.SourceInterceptor {
	return read(c, &c.interceptor)
}

func (c *Configuration) SetResolveSourceValueInterceptor(i convert.SourceInterceptor) *Configuration {
	return write(c, &c.interceptor, i)
}

// Converters is the ordered converter chain. Earlier converters take precedence.
func (c *Configuration) Converters() *List[convert.ConditionalConverter] {
	return c.converters
}

// ValueReaders are consulted in order for reader-backed source types.
func (c *Configuration) ValueReaders() *List[access.ValueReader] {
	return c.readers
}

// ValueWriters are consulted in order for writer-backed destination types.
func (c *Configuration) ValueWriters() *List[access.ValueWriter] {
	return c.writers
}

// AccessOptions returns the member selection derived from the matching and access settings.
func (c *Configuration) AccessOptions() access.Options {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return access.Options{
		Fields:      c.fieldMatching,
		Methods:     c.methodMatching,
		FieldLevel:  c.fieldLevel,
		MethodLevel: c.methodLevel,
	}
}

// ConvertOptions returns the execution toggles handed to converters.
func (c *Configuration) ConvertOptions() convert.Options {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return convert.Options{
		DeepCopy:         c.deepCopy,
		CollectionsMerge: c.collectionsMerge,
		SkipNull:         c.skipNull,
	}
}

// ResolveOptions returns the options for convert.Resolve.
func (c *Configuration) ResolveOptions() convert.ResolveOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return convert.ResolveOptions{
		FullTypeMatchingRequired: c.fullTypeMatching,
		DeepCopy:                 c.deepCopy,
	}
}

// ValueReader returns the first registered reader applying to t, or nil.
func (c *Configuration) ValueReader(t reflect.Type) access.ValueReader {
	return access.FindReader(c.readers.Snapshot(), t)
}

// ValueWriter returns the first registered writer applying to t, or nil.
func (c *Configuration) ValueWriter(t reflect.Type) access.ValueWriter {
	return access.FindWriter(c.writers.Snapshot(), t)
}
