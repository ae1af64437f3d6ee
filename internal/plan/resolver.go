package plan

import (
	"reflect"
	"sync"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
)

// Resolver picks converters from a configuration's chain and caches the results per pair.
// The configuration must be a snapshot: cached resolutions are never invalidated.
type Resolver struct {
	cfg      *config.Configuration
	chain    []convert.ConditionalConverter
	opts     convert.ResolveOptions
	resolved sync.Map // Pair -> Resolution
}

// NewResolver returns a Resolver over the converters of cfg.
func NewResolver(cfg *config.Configuration) *Resolver {
	return &Resolver{
		cfg:   cfg,
		chain: cfg.Converters().Snapshot(),
		opts:  cfg.ResolveOptions(),
	}
}

// Config returns the configuration the resolver reads.
func (r *Resolver) Config() *config.Configuration {
	return r.cfg
}

// Resolve returns the converter for src -> dst. When the declared pair has none, the
// pointer base types are tried. Interface sources resolve as Dynamic.
func (r *Resolver) Resolve(src, dst reflect.Type) Resolution {
	pair := Pair{Source: src, Destination: dst}
	if cached, ok := r.resolved.Load(pair); ok {
		return cached.(Resolution)
	}

	res := r.resolve(src, dst)
	r.resolved.Store(pair, res)

	return res
}

// Direct resolves the declared pair only.
func (r *Resolver) Direct(src, dst reflect.Type) (convert.ConditionalConverter, convert.MatchResult) {
	return convert.Resolve(r.chain, src, dst, r.opts)
}

func (r *Resolver) resolve(src, dst reflect.Type) Resolution {
	if c, result := r.Direct(src, dst); c != nil {
		return Resolution{Converter: c, Result: result}
	}

	if src.Kind() == reflect.Interface {
		return Resolution{Result: convert.Partial, Dynamic: true}
	}

	bs, bd := access.Base(src), access.Base(dst)
	if bs == src && bd == dst {
		return Resolution{}
	}

	if bs.Kind() == reflect.Interface {
		return Resolution{Result: convert.Partial, Dynamic: true, Adapted: true}
	}

	c, result := r.Direct(bs, bd)

	return Resolution{Converter: c, Result: result, Adapted: c != nil}
}
