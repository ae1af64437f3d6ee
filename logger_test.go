package modelmapper

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}

	l.Debug("debug", "k", 1)
	l.Info("info")
	l.Warn("warn")
	l.Error("error")
	assert.Equal(t, NopLogger{}, l.With("k", "v"))
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer

	l := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.With("pair", "a -> b").Debug("type map built", "mappings", 3)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="type map built"`)
	assert.Contains(t, out, `pair="a -> b"`)
	assert.Contains(t, out, "mappings=3")

	assert.NotNil(t, NewSlogAdapter(nil).logger)
}
