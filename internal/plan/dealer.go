package plan

import (
	"reflect"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/convert"
)

// Dealer hands out the type pairs still to be built, each at most once.
type Dealer struct {
	needs map[Pair]struct{}
	done  map[Pair]struct{}
}

func (d *Dealer) NextNeeds() (Pair, bool) {
	for pair := range d.needs {
		delete(d.needs, pair)

		if _, exists := d.done[pair]; !exists {
			d.Done(pair.Source, pair.Destination)

			return pair, true
		}
	}

	return Pair{}, false
}

func (d *Dealer) Needs(src, dst reflect.Type) {
	if d.needs == nil {
		d.needs = make(map[Pair]struct{})
	}

	pair := Pair{Source: src, Destination: dst}
	if _, exists := d.done[pair]; !exists {
		d.needs[pair] = struct{}{}
	}
}

func (d *Dealer) Done(src, dst reflect.Type) {
	if d.done == nil {
		d.done = make(map[Pair]struct{})
	}

	pair := Pair{Source: src, Destination: dst}
	delete(d.needs, pair)
	d.done[pair] = struct{}{}
}

// NestedPairs lists the struct pairs the mappings of tm convert through their own
// TypeMaps: the leaf types, or the element types of containers on both sides, that
// resolve to the struct converter.
func NestedPairs(tm *TypeMap, r *Resolver) []Pair {
	seen := make(map[Pair]struct{})

	var out []Pair

	for _, pm := range tm.Mappings {
		if pm.Skip || pm.SourceType == nil {
			continue
		}

		src, dst := elems(access.Base(pm.SourceType), access.Base(pm.Destination.Leaf().Type))

		if c, _ := r.Direct(src, dst); c != convert.Struct {
			continue
		}

		pair := Pair{Source: src, Destination: dst}
		if _, dup := seen[pair]; dup {
			continue
		}

		seen[pair] = struct{}{}
		out = append(out, pair)
	}

	return out
}

// elems unwraps pointers, sequences and maps while both sides share the container shape.
func elems(src, dst reflect.Type) (reflect.Type, reflect.Type) {
	for shape(src) != 0 && shape(src) == shape(dst) {
		src, dst = access.Base(src.Elem()), access.Base(dst.Elem())
	}

	return src, dst
}

const (
	sequence = 1 + iota
	dictionary
)

func shape(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return sequence
	case reflect.Map:
		return dictionary
	default:
		return 0
	}
}
