package modelmapper

import (
	"fmt"
	"io"

	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/mapping"
	"github.com/kamilors/modelmapper/internal/plan"
	"github.com/kamilors/modelmapper/mapperrors"
)

// LoadMappings reads a YAML mapping file from r, applies its settings block to the
// configuration and registers its type mappings. Type and converter names are resolved
// through reg. The file is validated before anything is applied; a mapping that fails to
// build stops the load, leaving the mappings before it registered.
func (m *ModelMapper) LoadMappings(r io.Reader, reg *Registry) error {
	f, err := mapping.Read(r)
	if err != nil {
		return err
	}

	return m.load(f, reg)
}

// LoadMappingsFile is LoadMappings reading the file at path.
func (m *ModelMapper) LoadMappingsFile(path string, reg *Registry) error {
	f, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	return m.load(f, reg)
}

func (m *ModelMapper) load(f *mapping.File, reg *Registry) error {
	if reg == nil {
		return mapperrors.NewArgumentError("registry", "must not be nil")
	}

	if diags := mapping.Validate(f, reg); diags.HasErrors() {
		return diags.Err()
	}

	if f.Settings != nil {
		if err := f.Settings.Apply(m.cfg); err != nil {
			return err
		}
	}

	for _, tm := range f.TypeMappings {
		mapping.Normalize(&tm)

		decls, err := fileDeclarations(tm, reg)
		if err != nil {
			return fmt.Errorf("mapping %s -> %s: %w", tm.Source, tm.Destination, err)
		}

		src, _ := reg.Type(tm.Source)
		dst, _ := reg.Type(tm.Destination)

		if _, err := m.define(src, dst, plan.Registration{Declarations: decls, Implicit: tm.Implicit}); err != nil {
			return fmt.Errorf("mapping %s -> %s: %w", tm.Source, tm.Destination, err)
		}
	}

	m.logger.Info("mappings loaded", "mappings", len(f.TypeMappings))

	return nil
}

func fileDeclarations(tm mapping.TypeMapping, reg *Registry) ([]plan.Declaration, error) {
	out := make([]plan.Declaration, 0, len(tm.Fields)+len(tm.Skip))

	for _, fm := range tm.Fields {
		d := plan.Declaration{Source: fm.Source, Destination: fm.Destination}

		if fm.Converter != "" {
			d.Converter, _ = reg.Converter(fm.Converter)
		}

		if fm.Condition != "" {
			cond, err := convert.Expr(fm.Condition)
			if err != nil {
				return nil, err
			}

			d.Condition = cond
		}

		out = append(out, d)
	}

	for _, dst := range tm.Skip {
		out = append(out, plan.Declaration{Destination: dst, Skip: true})
	}

	return out, nil
}
