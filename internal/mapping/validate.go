package mapping

import (
	"fmt"
	"reflect"

	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/diagnostic"
)

// Lookup resolves the type and converter names a mapping file refers to.
type Lookup interface {
	Type(name string) (reflect.Type, bool)
	Converter(name string) (convert.ConditionalConverter, bool)
}

// Validate validates a mapping file. This is a structural validation step only: member
// paths are checked against the types when the mapping is registered.
// A nil lookup skips the type and converter name checks.
func Validate(f *File, l Lookup) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(diagnostic.CodeMissingField, "mapping file is nil", "", "")
		return res
	}

	if f.Version != CurrentVersion {
		res.AddError(diagnostic.CodeUnsupportedVer,
			fmt.Sprintf("unsupported version %q, expected %q", f.Version, CurrentVersion), "", "version")
	}

	if err := f.Settings.Validate(); err != nil {
		res.AddCause(diagnostic.CodeInvalidSetting, err, "", "settings")
	}

	seenPairs := map[string]struct{}{}

	for i := range f.TypeMappings {
		tm := &f.TypeMappings[i]
		tpStr := fmt.Sprintf("%s -> %s", tm.Source, tm.Destination)

		if !validateTypes(res, tm, tpStr, l) {
			continue
		}

		if _, dup := seenPairs[tpStr]; dup {
			res.AddError(diagnostic.CodeDuplicate, "type pair declared twice", tpStr, "")
			continue
		}

		seenPairs[tpStr] = struct{}{}

		validateFields(res, tm, tpStr, l)
	}

	return res
}

func validateTypes(res *diagnostic.Diagnostics, tm *TypeMapping, tpStr string, l Lookup) bool {
	ok := true

	for _, side := range []struct{ name, value string }{
		{"source", tm.Source},
		{"destination", tm.Destination},
	} {
		if side.value == "" {
			res.AddError(diagnostic.CodeMissingField, side.name+" type is required", tpStr, side.name)
			ok = false

			continue
		}

		if l == nil {
			continue
		}

		if _, found := l.Type(side.value); !found {
			res.AddError(diagnostic.CodeUnknownType,
				fmt.Sprintf("%s type %q not found", side.name, side.value), tpStr, side.value)
			ok = false
		}
	}

	return ok
}

func validateFields(res *diagnostic.Diagnostics, tm *TypeMapping, tpStr string, l Lookup) {
	seen := map[string]struct{}{}

	claim := func(dst string) {
		if _, dup := seen[dst]; dup {
			res.AddError(diagnostic.CodeDuplicate, "destination declared twice", tpStr, dst)
			return
		}

		seen[dst] = struct{}{}
	}

	checkPath := func(path, what string) bool {
		if _, err := ParsePath(path); err != nil {
			res.AddError(diagnostic.CodeInvalidPath, fmt.Sprintf("invalid %s path: %v", what, err), tpStr, path)
			return false
		}

		return true
	}

	for sp, dp := range tm.OneToOne {
		checkPath(sp, "source")

		if checkPath(dp, "destination") {
			claim(dp)
		}
	}

	for _, fm := range tm.Fields {
		if fm.Destination == "" {
			res.AddError(diagnostic.CodeMissingField, "field destination is required", tpStr, fm.Source)
			continue
		}

		if fm.Source != "" {
			checkPath(fm.Source, "source")
		}

		if checkPath(fm.Destination, "destination") {
			claim(fm.Destination)
		}

		if fm.Converter != "" && l != nil {
			if _, found := l.Converter(fm.Converter); !found {
				res.AddError(diagnostic.CodeUnknownFunc,
					fmt.Sprintf("converter %q not found", fm.Converter), tpStr, fm.Destination)
			}
		}

		if fm.Condition != "" {
			if _, err := convert.Expr(fm.Condition); err != nil {
				res.AddCause(diagnostic.CodeInvalidExpr, err, tpStr, fm.Destination)
			}
		}
	}

	for _, dp := range tm.Skip {
		if checkPath(dp, "skip") {
			claim(dp)
		}
	}
}
