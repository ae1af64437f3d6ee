package plan

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/diagnostic"
	"github.com/kamilors/modelmapper/mapperrors"
	"github.com/kamilors/modelmapper/matching"
	"github.com/kamilors/modelmapper/naming"
)

const (
	suggestionMinScore = 0.5
	maxSuggestions     = 3
)

// Request describes a TypeMap to build.
type Request struct {
	Source, Destination reflect.Type
	// Instance is the source value. Reader-backed sources enumerate members from it.
	Instance reflect.Value
	// Config must be a snapshot owned by the TypeMap.
	Config       *config.Configuration
	Declarations []Declaration
	// Implicit overrides the configured implicit mapping setting when set.
	Implicit *bool
	// Resolver is shared between maps built from the same snapshot; created when nil.
	Resolver *Resolver
	// Declared reports whether a nested pair has explicit declarations of its own. Such
	// destinations are mapped through their own TypeMap instead of being descended.
	Declared func(src, dst reflect.Type) bool
}

type source struct {
	path  Path
	names [][]string
	typ   reflect.Type
}

type candidate struct {
	source
	Resolution
}

type builder struct {
	req      Request
	cfg      *config.Configuration
	acc      access.Accessor
	opts     access.Options
	resolver *Resolver
	strategy matching.Strategy
	pair     string
	tm       *TypeMap
	err      error

	sources  []source
	explicit map[string]struct{}
	prefixes map[string]struct{}
	dstStack []reflect.Type
}

// Build matches the members of req.Source against those of req.Destination.
func Build(req Request) (*TypeMap, error) {
	if req.Source == nil || req.Destination == nil {
		return nil, mapperrors.NewArgumentError("type", "source and destination types are required")
	}

	if req.Config == nil {
		return nil, mapperrors.NewArgumentError("configuration", "must not be nil")
	}

	b := &builder{
		req:      req,
		cfg:      req.Config,
		acc:      req.Config.Accessor(),
		opts:     req.Config.AccessOptions(),
		resolver: req.Resolver,
		strategy: req.Config.MatchingStrategy(),
		explicit: make(map[string]struct{}),
		prefixes: make(map[string]struct{}),
		tm: &TypeMap{
			SourceType:      req.Source,
			DestinationType: req.Destination,
			Config:          req.Config,
			Declarations:    slices.Clone(req.Declarations),
		},
	}

	if b.resolver == nil {
		b.resolver = NewResolver(req.Config)
	}

	b.pair = b.tm.String()

	if err := b.build(); err != nil {
		return nil, err
	}

	return b.tm, nil
}

func (b *builder) build() error {
	src := access.Base(b.req.Source)
	b.collectSources(src, access.Indirect(b.req.Instance), nil, nil, []reflect.Type{src})

	declared := make([]PropertyMapping, 0, len(b.req.Declarations))

	for _, d := range b.req.Declarations {
		pm, err := b.declare(d)
		if err != nil {
			return err
		}

		declared = append(declared, pm)
	}

	implicit := b.cfg.ImplicitMappingEnabled()
	if b.req.Implicit != nil {
		implicit = *b.req.Implicit
	}

	if implicit {
		dst := access.Base(b.req.Destination)

		if w := b.cfg.ValueWriter(dst); w != nil {
			b.mirrorSources(w, dst)
		} else {
			b.dstStack = []reflect.Type{dst}
			b.mapDestination(dst, nil, nil)
		}
	}

	if b.err != nil {
		return b.err
	}

	b.tm.Mappings = append(b.tm.Mappings, declared...)

	return nil
}

func (b *builder) tokens(side config.Side, m access.Member) []string {
	tokens := b.cfg.NameTokenizer(side).Tokenize(m.Name, m.Kind)

	return matching.Fold(b.cfg.NameTransformer(side).Transform(tokens, m.Kind))
}

// sourceMembers lists the readable members of t. Reader-backed types need the instance v.
func (b *builder) sourceMembers(t reflect.Type, v reflect.Value) []access.Member {
	if r := b.cfg.ValueReader(t); r != nil {
		if !v.IsValid() {
			return nil
		}

		b.tm.ReaderBacked = true

		return access.ReaderMembers(r, v)
	}

	convention := b.cfg.NamingConvention(config.Source)

	var out []access.Member

	for _, m := range b.acc.Readable(t, b.opts) {
		if convention.Applicable(t, m.Name, m.Kind) {
			out = append(out, m)
		}
	}

	return out
}

func (b *builder) collectSources(t reflect.Type, v reflect.Value, prefix Path, names [][]string, stack []reflect.Type) {
	for _, m := range b.sourceMembers(t, v) {
		seg := b.tokens(config.Source, m)
		if len(seg) == 0 {
			continue
		}

		path := prefix.with(m)
		segNames := slices.Concat(names, [][]string{seg})
		b.sources = append(b.sources, source{path: path, names: segNames, typ: m.Type})

		var nv reflect.Value
		if v.IsValid() {
			if cur, ok := b.acc.Read(v, m); ok {
				nv = access.Indirect(cur)
			}
		}

		nt := access.Base(m.Type)
		if nt.Kind() == reflect.Interface && nv.IsValid() {
			nt = nv.Type()
		}

		if slices.Contains(stack, nt) || !b.sourceDescendable(nt, nv) {
			continue
		}

		b.collectSources(nt, nv, path, segNames, append(slices.Clip(stack), nt))
	}
}

func (b *builder) sourceDescendable(t reflect.Type, v reflect.Value) bool {
	if b.cfg.ValueReader(t) != nil {
		return v.IsValid()
	}

	return t.Kind() == reflect.Struct && len(b.sourceMembers(t, v)) > 0
}

func (b *builder) destinationMembers(t reflect.Type) []access.Member {
	convention := b.cfg.NamingConvention(config.Destination)

	var out []access.Member

	for _, m := range b.acc.Writable(t, b.opts) {
		if convention.Applicable(t, m.Name, m.Kind) {
			out = append(out, m)
		}
	}

	return out
}

func (b *builder) destinationDescendable(m access.Member) bool {
	if m.Kind != naming.Field || m.Backed() {
		return false
	}

	t := access.Base(m.Type)

	return t.Kind() == reflect.Struct && b.cfg.ValueWriter(t) == nil && len(b.destinationMembers(t)) > 0
}

// mapDestination maps the members of t and returns the number of mappings added.
func (b *builder) mapDestination(t reflect.Type, prefix Path, names [][]string) int {
	added := 0

	for _, m := range b.destinationMembers(t) {
		if b.err != nil {
			return added
		}

		path := prefix.with(m)
		key := path.String()

		if _, ok := b.explicit[key]; ok {
			continue
		}

		seg := b.tokens(config.Destination, m)
		if len(seg) == 0 {
			continue
		}

		_, forced := b.prefixes[key]
		added += b.mapMember(path, slices.Concat(names, [][]string{seg}), forced)
	}

	return added
}

func (b *builder) mapMember(path Path, names [][]string, forced bool) int {
	m := path.Leaf()

	var winners []candidate
	if !forced {
		winners = b.match(names, m.Type)
	}

	descendable := b.destinationDescendable(m)
	if descendable && len(winners) == 1 && b.req.Declared != nil &&
		b.req.Declared(access.Base(winners[0].typ), access.Base(m.Type)) {
		descendable = false
	}

	preferNested := b.cfg.PreferNestedProperties()

	var descend bool

	switch len(winners) {
	case 0:
		descend = descendable
	case 1:
		descend = descendable && winners[0].Result != convert.Full && preferNested
	default:
		descend = descendable && preferNested
	}

	if descend || forced {
		mark := b.mark()

		if n := b.descend(path, names, m.Type); n > 0 || forced {
			return n
		}

		b.rollback(mark)
	}

	switch len(winners) {
	case 0:
		b.unmapped(path, names)

		return 0
	case 1:
		w := winners[0]
		b.tm.Mappings = append(b.tm.Mappings, PropertyMapping{
			Source:      w.path,
			Destination: path,
			SourceType:  w.typ,
			Resolution:  w.Resolution,
		})

		return 1
	default:
		b.ambiguous(path, winners)

		return 0
	}
}

// match returns the convertible source paths sharing the top score for the destination.
func (b *builder) match(names [][]string, dst reflect.Type) []candidate {
	var (
		best    float64
		winners []candidate
	)

	for _, s := range b.sources {
		score, ok := b.strategy.Match(matching.PropertyNames{Source: s.names, Destination: names})
		if !ok || (len(winners) > 0 && score < best) {
			continue
		}

		res := b.resolver.Resolve(s.typ, dst)
		if !res.Convertible() {
			continue
		}

		if len(winners) == 0 || score > best {
			best, winners = score, []candidate{{source: s, Resolution: res}}
		} else {
			winners = append(winners, candidate{source: s, Resolution: res})
		}
	}

	return winners
}

func (b *builder) descend(path Path, names [][]string, t reflect.Type) int {
	bt := access.Base(t)
	if slices.Contains(b.dstStack, bt) {
		b.tm.Diagnostics.AddInfo(diagnostic.CodeNestedCycle,
			fmt.Sprintf("%v is already being mapped", bt), b.pair, path.String())

		return 0
	}

	b.dstStack = append(b.dstStack, bt)
	defer func() { b.dstStack = b.dstStack[:len(b.dstStack)-1] }()

	return b.mapDestination(bt, path, names)
}

type mark struct {
	unmapped int
	diags    diagnostic.Mark
}

func (b *builder) mark() mark {
	return mark{unmapped: len(b.tm.Unmapped), diags: b.tm.Diagnostics.Mark()}
}

func (b *builder) rollback(m mark) {
	b.tm.Unmapped = b.tm.Unmapped[:m.unmapped]
	b.tm.Diagnostics.Truncate(m.diags)
}

func (b *builder) unmapped(path Path, names [][]string) {
	key := path.String()
	b.tm.Unmapped = append(b.tm.Unmapped, key)

	candidates := make(map[string][]string, len(b.sources))
	for _, s := range b.sources {
		candidates[s.path.String()] = slices.Concat(s.names...)
	}

	suggestions := matching.Suggest(slices.Concat(names...), candidates, suggestionMinScore).Top(maxSuggestions)

	b.tm.Diagnostics.AddWarning(diagnostic.CodeUnmapped, "no matching source property",
		b.pair, key, suggestions.Paths()...)
}

func (b *builder) ambiguous(path Path, winners []candidate) {
	sources := make([]string, len(winners))
	for i, w := range winners {
		sources[i] = w.path.String()
	}

	key := path.String()

	if b.cfg.AmbiguityIgnored() {
		b.tm.Unmapped = append(b.tm.Unmapped, key)
		b.tm.Diagnostics.AddWarning(diagnostic.CodeAmbiguous,
			"skipped, matches "+strings.Join(sources, ", "), b.pair, key)

		return
	}

	b.err = &mapperrors.AmbiguityError{
		SourceType:      b.req.Source.String(),
		DestinationType: b.req.Destination.String(),
		Destination:     key,
		Sources:         sources,
	}
}

// mirrorSources maps every top-level source member onto a destination member of the same
// name written through w.
func (b *builder) mirrorSources(w access.ValueWriter, dst reflect.Type) {
	for _, s := range b.sources {
		if len(s.path) != 1 {
			continue
		}

		m := access.WriterMember(w, dst, s.path[0].Name)
		path := Path{m}

		if _, ok := b.explicit[path.String()]; ok {
			continue
		}

		res := b.resolver.Resolve(s.typ, m.Type)
		if !res.Convertible() {
			b.unmapped(path, s.names)

			continue
		}

		b.tm.Mappings = append(b.tm.Mappings, PropertyMapping{
			Source:      s.path,
			Destination: path,
			SourceType:  s.typ,
			Resolution:  res,
		})
	}
}
