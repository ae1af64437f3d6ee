package plan

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
)

// Hooks observe the builds of a Store. Either function may be nil.
type Hooks struct {
	Built  func(tm *TypeMap, elapsed time.Duration)
	Failed func(pair Pair, err error)
}

// Registration holds the explicit declarations of one type pair.
type Registration struct {
	Declarations []Declaration
	// Implicit overrides the configured implicit mapping setting when set.
	Implicit *bool
}

func (r Registration) merge(other Registration) Registration {
	out := Registration{
		Declarations: slices.Concat(r.Declarations, other.Declarations),
		Implicit:     r.Implicit,
	}

	if other.Implicit != nil {
		out.Implicit = other.Implicit
	}

	return out
}

type registry map[Pair]Registration

func (r registry) declared(src, dst reflect.Type) bool {
	_, ok := r[Pair{Source: src, Destination: dst}]

	return ok
}

type cacheKey struct {
	Pair
	config     uint64
	generation uint64
}

// declarations is the registry together with the generation it was published as.
type declarations struct {
	regs       registry
	generation uint64
}

// epoch is the snapshot taken of a live configuration at one of its IDs.
type epoch struct {
	id       uint64
	snapshot *config.Configuration
	snapID   uint64
}

// Store builds TypeMaps on first request and caches them per (source, destination,
// configuration) triple. Concurrent requests for the same triple share one build.
//
// Every live configuration is used through one snapshot per ID. When a configuration is
// seen with a new ID, the maps and resolver of its previous snapshot are dropped.
type Store struct {
	hooks Hooks

	maps      sync.Map // cacheKey -> *TypeMap
	resolvers sync.Map // snapshot ID -> *Resolver
	group     singleflight.Group

	epochMu sync.Mutex
	epochs  sync.Map // *config.Configuration -> epoch

	mu         sync.Mutex // serializes Define
	registered atomic.Pointer[declarations]
}

// NewStore returns an empty Store.
func NewStore(hooks Hooks) *Store {
	s := &Store{hooks: hooks}
	s.registered.Store(&declarations{regs: registry{}})

	return s
}

func (s *Store) registrations() registry {
	return s.registered.Load().regs
}

// snapshot returns the snapshot cfg is used through at its current ID. Snapshots map to
// themselves, so maps built while executing a TypeMap share its cache entries.
func (s *Store) snapshot(cfg *config.Configuration) *config.Configuration {
	id := cfg.ID()
	if e, ok := s.epochs.Load(cfg); ok && e.(epoch).id == id {
		return e.(epoch).snapshot
	}

	s.epochMu.Lock()
	defer s.epochMu.Unlock()

	if e, ok := s.epochs.Load(cfg); ok {
		prev := e.(epoch)
		if prev.id == id {
			return prev.snapshot
		}

		s.forget(prev)
	}

	snap := cfg.Copy()
	s.epochs.Store(cfg, epoch{id: id, snapshot: snap, snapID: snap.ID()})
	s.epochs.Store(snap, epoch{id: snap.ID(), snapshot: snap, snapID: snap.ID()})

	return snap
}

// forget drops everything cached for the snapshot of e.
func (s *Store) forget(e epoch) {
	id := e.snapID

	s.epochs.Delete(e.snapshot)
	s.resolvers.Delete(id)
	s.maps.Range(func(k, _ any) bool {
		if k.(cacheKey).config == id {
			s.maps.Delete(k)
		}

		return true
	})
}

// TypeMap returns the TypeMap for src -> dst under cfg. Types are reduced to their pointer
// bases. Reader-backed sources are built from instance on every call and never cached.
func (s *Store) TypeMap(cfg *config.Configuration, src, dst reflect.Type, instance reflect.Value) (*TypeMap, error) {
	pair := basePair(src, dst)
	snap := s.snapshot(cfg)
	decls := s.registered.Load()

	if snap.ValueReader(pair.Source) != nil {
		return s.build(snap, pair, decls.regs, instance)
	}

	key := cacheKey{Pair: pair, config: snap.ID(), generation: decls.generation}

	if cached, ok := s.maps.Load(key); ok {
		return cached.(*TypeMap), nil
	}

	flight := fmt.Sprintf("%p:%p:%d:%d", pair.Source, pair.Destination, key.config, key.generation)

	v, err, _ := s.group.Do(flight, func() (any, error) {
		if cached, ok := s.maps.Load(key); ok {
			return cached, nil
		}

		tm, err := s.build(snap, pair, decls.regs, reflect.Value{})
		if err != nil {
			return nil, err
		}

		// a Define published meanwhile has cleared the cache; keep it clear
		if !tm.ReaderBacked && s.registered.Load() == decls {
			s.maps.Store(key, tm)
		}

		return tm, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*TypeMap), nil
}

// Define adds reg to the declarations of src -> dst and builds the resulting TypeMap.
// Nothing is registered when the build fails. A successful Define drops every cached
// TypeMap, since maps of enclosing pairs may have descended into this one.
func (s *Store) Define(cfg *config.Configuration, src, dst reflect.Type, reg Registration) (*TypeMap, error) {
	pair := basePair(src, dst)
	snap := s.snapshot(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.registered.Load()
	next := &declarations{regs: maps.Clone(cur.regs), generation: cur.generation + 1}
	next.regs[pair] = next.regs[pair].merge(reg)

	tm, err := s.build(snap, pair, next.regs, reflect.Value{})
	if err != nil {
		return nil, err
	}

	s.registered.Store(next)
	s.maps.Clear()

	if !tm.ReaderBacked {
		s.maps.Store(cacheKey{Pair: pair, config: snap.ID(), generation: next.generation}, tm)
	}

	return tm, nil
}

// Registration returns the declarations registered for src -> dst.
func (s *Store) Registration(src, dst reflect.Type) (Registration, bool) {
	reg, ok := s.registrations()[basePair(src, dst)]

	return reg, ok
}

// Pairs lists the registered type pairs in a stable order.
func (s *Store) Pairs() []Pair {
	pairs := slices.Collect(maps.Keys(s.registrations()))
	slices.SortFunc(pairs, func(a, b Pair) int {
		return strings.Compare(a.String(), b.String())
	})

	return pairs
}

// Resolver returns the shared Resolver of the current snapshot of cfg.
func (s *Store) Resolver(cfg *config.Configuration) *Resolver {
	snap := s.snapshot(cfg)
	if r, ok := s.resolvers.Load(snap.ID()); ok {
		return r.(*Resolver)
	}

	r, _ := s.resolvers.LoadOrStore(snap.ID(), NewResolver(snap))

	return r.(*Resolver)
}

// Warm builds the TypeMaps of pairs and of every nested struct pair reachable from them.
// Each round of newly discovered pairs is built in parallel.
func (s *Store) Warm(ctx context.Context, cfg *config.Configuration, pairs ...Pair) error {
	var dealer Dealer

	for _, p := range pairs {
		dealer.Needs(access.Base(p.Source), access.Base(p.Destination))
	}

	resolver := s.Resolver(cfg)

	for {
		var round []Pair

		for p, ok := dealer.NextNeeds(); ok; p, ok = dealer.NextNeeds() {
			round = append(round, p)
		}

		if len(round) == 0 {
			return nil
		}

		built := make([]*TypeMap, len(round))

		g, gctx := errgroup.WithContext(ctx)

		for i, p := range round {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				tm, err := s.TypeMap(cfg, p.Source, p.Destination, reflect.Value{})
				built[i] = tm

				return err
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		for _, tm := range built {
			for _, p := range NestedPairs(tm, resolver) {
				dealer.Needs(p.Source, p.Destination)
			}
		}
	}
}

// build builds pair under snap, a snapshot returned by Store.snapshot.
func (s *Store) build(snap *config.Configuration, pair Pair, regs registry, instance reflect.Value) (*TypeMap, error) {
	start := time.Now()

	reg := regs[pair]

	tm, err := Build(Request{
		Source:       pair.Source,
		Destination:  pair.Destination,
		Instance:     instance,
		Config:       snap,
		Declarations: reg.Declarations,
		Implicit:     reg.Implicit,
		Resolver:     s.Resolver(snap),
		Declared:     regs.declared,
	})
	if err != nil {
		if s.hooks.Failed != nil {
			s.hooks.Failed(pair, err)
		}

		return nil, err
	}

	if s.hooks.Built != nil {
		s.hooks.Built(tm, time.Since(start))
	}

	return tm, nil
}

func basePair(src, dst reflect.Type) Pair {
	return Pair{Source: access.Base(src), Destination: access.Base(dst)}
}
