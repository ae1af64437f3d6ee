package plan

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kamilors/modelmapper/access"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/diagnostic"
	"github.com/kamilors/modelmapper/internal/mapping"
	"github.com/kamilors/modelmapper/mapperrors"
	"github.com/kamilors/modelmapper/naming"
)

// ErrNoConverter is the cause reported for explicit mappings no converter applies to.
var ErrNoConverter = errors.New("no converter applies")

func (b *builder) declare(d Declaration) (PropertyMapping, error) {
	dst, err := b.destinationPath(d.Destination)
	if err != nil {
		return PropertyMapping{}, b.argument("destination", d.Destination, err)
	}

	key := dst.String()
	if _, dup := b.explicit[key]; dup {
		return PropertyMapping{}, b.argument("destination", d.Destination, errors.New("declared twice"))
	}

	b.explicit[key] = struct{}{}
	for i := 1; i < len(dst); i++ {
		b.prefixes[dst[:i].String()] = struct{}{}
	}

	if d.Skip {
		b.tm.Diagnostics.AddInfo(diagnostic.CodeSkipped, "skipped by declaration", b.pair, key)

		return PropertyMapping{Destination: dst, Explicit: true, Skip: true}, nil
	}

	src, srcType, err := b.sourcePath(d.Source)
	if err != nil {
		return PropertyMapping{}, b.argument("source", d.Source, err)
	}

	dstType := dst.Leaf().Type
	pm := PropertyMapping{
		Source:      src,
		Destination: dst,
		SourceType:  srcType,
		Condition:   d.Condition,
		Explicit:    true,
	}

	if d.Converter != nil {
		result := d.Converter.Match(srcType, dstType)
		if result == convert.None {
			return PropertyMapping{}, b.argument("converter", fmt.Sprint(d.Converter),
				fmt.Errorf("does not convert %v to %v", srcType, dstType))
		}

		pm.Resolution = Resolution{Converter: d.Converter, Result: result}

		return pm, nil
	}

	pm.Resolution = b.resolver.Resolve(srcType, dstType)
	if !pm.Convertible() {
		return PropertyMapping{}, &mapperrors.MappingError{
			Op:              mapperrors.OpConvert,
			SourcePath:      src.String(),
			DestinationPath: key,
			SourceType:      srcType.String(),
			DestinationType: dstType.String(),
			Cause:           ErrNoConverter,
		}
	}

	return pm, nil
}

func (b *builder) argument(arg, value string, err error) error {
	return mapperrors.NewArgumentError(arg, fmt.Sprintf("%s: %q: %v", b.pair, value, err))
}

func (b *builder) destinationPath(s string) (Path, error) {
	fp, err := mapping.ParsePath(s)
	if err != nil {
		return nil, err
	}

	t := access.Base(b.req.Destination)

	if w := b.cfg.ValueWriter(t); w != nil {
		if len(fp.Segments) != 1 {
			return nil, fmt.Errorf("%v members cannot be nested", t)
		}

		return Path{access.WriterMember(w, t, fp.Segments[0].Name)}, nil
	}

	var path Path

	for i, seg := range fp.Segments {
		m, err := access.Find(b.acc.Writable(t, b.opts), seg.String())
		if err != nil {
			return nil, err
		}

		if i < len(fp.Segments)-1 {
			next := access.Base(m.Type)
			if m.Kind != naming.Field || next.Kind() != reflect.Struct {
				return nil, fmt.Errorf("%s is not a struct", m)
			}

			t = next
		}

		path = append(path, m)
	}

	return path, nil
}

// sourcePath resolves a dotted source path; the empty path is the source root.
func (b *builder) sourcePath(s string) (Path, reflect.Type, error) {
	if s == "" {
		return nil, b.req.Source, nil
	}

	fp, err := mapping.ParsePath(s)
	if err != nil {
		return nil, nil, err
	}

	t := access.Base(b.req.Source)
	v := access.Indirect(b.req.Instance)

	var path Path

	for i, seg := range fp.Segments {
		var (
			m   access.Member
			err error
		)

		// keys absent from a reader-backed instance read as absent values
		switch r := b.cfg.ValueReader(t); {
		case r != nil:
			if m, err = access.Find(access.ReaderMembers(r, v), seg.String()); err != nil {
				m, err = access.ReaderMember(r, t, seg.Name), nil
			}
		default:
			m, err = access.Find(b.acc.Readable(t, b.opts), seg.String())
		}

		if err != nil {
			return nil, nil, err
		}

		path = append(path, m)

		if i == len(fp.Segments)-1 {
			break
		}

		var next reflect.Value
		if v.IsValid() {
			if cur, ok := b.acc.Read(v, m); ok {
				next = access.Indirect(cur)
			}
		}

		t, v = access.Base(m.Type), next
		if t.Kind() == reflect.Interface && v.IsValid() {
			t = v.Type()
		}
	}

	return path, path.Leaf().Type, nil
}
