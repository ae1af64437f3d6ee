package modelmapper

import (
	"reflect"
	"sync"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/mapperrors"
)

// Registry resolves the type and converter names used in mapping files.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]reflect.Type
	converters map[string]convert.ConditionalConverter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:      make(map[string]reflect.Type),
		converters: make(map[string]convert.ConditionalConverter),
	}
}

// RegisterType makes t available under name. Pointer types are reduced to their base.
func (r *Registry) RegisterType(name string, t reflect.Type) *Registry {
	if name == "" {
		panic(mapperrors.NewArgumentError("type name", "must not be empty"))
	}

	if t == nil {
		panic(mapperrors.NewArgumentError("type", "must not be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[name] = access.Base(t)

	return r
}

// RegisterConverter makes c available under name.
func (r *Registry) RegisterConverter(name string, c convert.ConditionalConverter) *Registry {
	if name == "" {
		panic(mapperrors.NewArgumentError("converter name", "must not be empty"))
	}

	if c == nil {
		panic(mapperrors.NewArgumentError("converter", "must not be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.converters[name] = c

	return r
}

// Register makes T available under name.
func Register[T any](r *Registry, name string) *Registry {
	return r.RegisterType(name, reflect.TypeFor[T]())
}

func (r *Registry) Type(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]

	return t, ok
}

func (r *Registry) Converter(name string) (convert.ConditionalConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.converters[name]

	return c, ok
}
