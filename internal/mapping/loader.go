package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a YAML mapping document from r.
func Read(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File

	err := dec.Decode(&f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// Normalize expands the 121 shorthand into Fields entries placed before the explicit
// ones, in source path order.
func Normalize(tm *TypeMapping) {
	if len(tm.OneToOne) == 0 {
		return
	}

	sources := make([]string, 0, len(tm.OneToOne))
	for src := range tm.OneToOne {
		sources = append(sources, src)
	}

	slices.SortFunc(sources, strings.Compare)

	expanded := make([]FieldMapping, 0, len(sources)+len(tm.Fields))
	for _, src := range sources {
		expanded = append(expanded, FieldMapping{Source: src, Destination: tm.OneToOne[src]})
	}

	tm.Fields = append(expanded, tm.Fields...)
	tm.OneToOne = nil
}
