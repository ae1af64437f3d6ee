package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	l := newList[string]("item", nil, "a", "b")

	snapshot := l.Snapshot()

	l.Add("c").Insert(0, "z").Set(1, "A")
	assert.Equal(t, []string{"z", "A", "b", "c"}, l.Snapshot())
	assert.Equal(t, []string{"a", "b"}, snapshot, "snapshots are not affected by later writes")

	assert.Equal(t, 1, l.RemoveFunc(func(s string) bool { return s == "z" }))
	assert.Equal(t, "A", l.Get(0))
	assert.Equal(t, 3, l.Len())

	var seen []string
	for i, s := range l.All() {
		assert.Equal(t, l.Get(i), s)
		seen = append(seen, s)
	}

	assert.Equal(t, []string{"A", "b", "c"}, seen)

	cp := l.clone()
	l.Clear()
	assert.Zero(t, l.Len())
	assert.Equal(t, 3, cp.Len())

	assert.Panics(t, func() { l.Insert(5, "x") })
	assert.Panics(t, func() { l.Set(0, "x") })
}

func TestListUsableAfterPanic(t *testing.T) {
	l := newList[string]("item", nil, "a")

	calls := 0
	l.onChange = func() { calls++ }

	require.Panics(t, func() { l.Insert(5, "x") })
	require.Panics(t, func() { l.Set(3, "x") })
	assert.Equal(t, []string{"a"}, l.Snapshot())
	assert.Zero(t, calls, "failed writes report no change")

	done := make(chan struct{})

	go func() {
		defer close(done)
		l.Add("b").Insert(0, "z").Set(2, "B")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("list writes blocked after a recovered panic")
	}

	assert.Equal(t, []string{"z", "a", "B"}, l.Snapshot())
	assert.Equal(t, 3, calls)
}

func TestListOnChange(t *testing.T) {
	calls := 0
	l := newList[int]("n", nil)
	l.onChange = func() { calls++ }

	l.Add(1)
	l.RemoveFunc(func(int) bool { return false })
	l.Clear()

	assert.Equal(t, 3, calls)
}
