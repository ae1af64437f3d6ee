package mapping

import (
	"github.com/kamilors/modelmapper/config"
)

// CurrentVersion is the only schema version understood.
const CurrentVersion = "1"

// File represents the root of a YAML mapping declaration file.
type File struct {
	// Version of the mapping schema.
	Version string `yaml:"version,omitempty"`

	// Settings are applied to the configuration before any mapping is declared.
	Settings *config.Settings `yaml:"settings,omitempty"`

	// TypeMappings is a list of type pair declarations.
	TypeMappings []TypeMapping `yaml:"mappings"`
}

// TypeMapping declares how one source type maps to one destination type.
type TypeMapping struct {
	// Source type name, resolved through the caller's registry (e.g. "store.Order").
	Source string `yaml:"source"`

	// Destination type name.
	Destination string `yaml:"destination"`

	// Implicit overrides the implicit-mapping setting for this pair. When false only the
	// declared fields are mapped.
	Implicit *bool `yaml:"implicit,omitempty"`

	// OneToOne is the shorthand for plain 1:1 mappings: keys are source paths and values
	// destination paths.
	// Example: { "OrderID": "ID", "Customer.Name": "CustomerName" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields declares explicit mappings with converters and conditions.
	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Skip lists destination paths that are never written.
	Skip StringOrArray `yaml:"skip,omitempty"`
}

// FieldMapping declares one explicit mapping.
// The scalar form "Name" maps a source member onto the destination member of the same name.
type FieldMapping struct {
	// Source path; empty maps the whole source value onto the destination path.
	Source string `yaml:"source,omitempty"`

	// Destination path. Required.
	Destination string `yaml:"destination"`

	// Converter names a converter from the caller's registry.
	Converter string `yaml:"converter,omitempty"`

	// Condition is an expr-lang boolean expression over source, destination,
	// sourcePath and destinationPath.
	Condition string `yaml:"condition,omitempty"`
}

// StringOrArray is a string list that can be written as a single string.
type StringOrArray []string
