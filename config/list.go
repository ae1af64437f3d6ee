package config

import (
	"iter"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kamilors/modelmapper/mapperrors"
)

// List is an ordered, copy-on-write list. Readers take a snapshot without locking and
// never observe a partially applied write; writers are serialized.
type List[T any] struct {
	mu       sync.Mutex
	items    atomic.Pointer[[]T]
	name     string
	validate func(T) error
	onChange func()
}

func newList[T any](name string, validate func(T) error, items ...T) *List[T] {
	l := &List[T]{name: name, validate: validate}
	snapshot := slices.Clone(items)
	l.items.Store(&snapshot)

	return l
}

// Snapshot returns the current items. The returned slice must not be modified.
func (l *List[T]) Snapshot() []T {
	return *l.items.Load()
}

// All iterates over a snapshot.
func (l *List[T]) All() iter.Seq2[int, T] {
	return slices.All(l.Snapshot())
}

func (l *List[T]) Len() int {
	return len(l.Snapshot())
}

// Get returns the item at index i.
func (l *List[T]) Get(i int) T {
	return l.Snapshot()[i]
}

// Add appends items.
func (l *List[T]) Add(items ...T) *List[T] {
	l.check(items...)

	return l.update(func(cur []T) []T {
		return append(slices.Clone(cur), items...)
	})
}

// Insert places item at index i, shifting later items.
func (l *List[T]) Insert(i int, item T) *List[T] {
	l.check(item)

	return l.update(func(cur []T) []T {
		if i < 0 || i > len(cur) {
			panic(mapperrors.NewArgumentError("index", "out of range"))
		}

		return slices.Insert(slices.Clone(cur), i, item)
	})
}

// Set replaces the item at index i.
func (l *List[T]) Set(i int, item T) *List[T] {
	l.check(item)

	return l.update(func(cur []T) []T {
		if i < 0 || i >= len(cur) {
			panic(mapperrors.NewArgumentError("index", "out of range"))
		}

		next := slices.Clone(cur)
		next[i] = item

		return next
	})
}

// RemoveFunc removes every item for which del returns true and reports how many were removed.
func (l *List[T]) RemoveFunc(del func(T) bool) int {
	removed := 0

	l.update(func(cur []T) []T {
		next := slices.DeleteFunc(slices.Clone(cur), del)
		removed = len(cur) - len(next)

		return next
	})

	return removed
}

// Clear removes all items.
func (l *List[T]) Clear() *List[T] {
	return l.update(func([]T) []T { return nil })
}

func (l *List[T]) clone() *List[T] {
	return newList(l.name, l.validate, l.Snapshot()...)
}

func (l *List[T]) update(fn func([]T) []T) *List[T] {
	l.replace(fn)

	if l.onChange != nil {
		l.onChange()
	}

	return l
}

// replace runs fn under the writer lock. fn may panic with an argument error; the list is
// left unchanged and unlocked.
func (l *List[T]) replace(fn func([]T) []T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := fn(*l.items.Load())
	l.items.Store(&next)
}

func (l *List[T]) check(items ...T) {
	for _, item := range items {
		if isNil(item) {
			panic(mapperrors.NewArgumentError(l.name, "must not be nil"))
		}

		if l.validate != nil {
			if err := l.validate(item); err != nil {
				panic(err)
			}
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
