package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic codes reported while building and executing type maps.
const (
	CodeUnmapped       = "unmapped"
	CodeAmbiguous      = "ambiguous"
	CodeSkipped        = "skipped"
	CodeNoConverter    = "no_converter"
	CodeNestedCycle    = "nested_cycle"
	CodeInvalidPath    = "invalid_path"
	CodeConversion     = "conversion_failed"
	CodeProvisioning   = "provisioning_failed"
	CodeUnknownType    = "unknown_type"
	CodeUnknownFunc    = "unknown_converter"
	CodeInvalidExpr    = "invalid_condition"
	CodeDuplicate      = "duplicate"
	CodeMissingField   = "missing_field"
	CodeUnsupportedVer = "unsupported_version"
	CodeInvalidSetting = "invalid_setting"
)

// Diagnostics holds all diagnostic information from building or executing a type map.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypePair identifies which type map this relates to (if any).
	TypePair string
	// Path identifies which property this relates to (if any).
	Path string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
	// Err is the underlying error, kept for errors.Is and errors.As.
	Err error
}

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Add appends d to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case Error:
		d.Errors = append(d.Errors, diag)
	case Warning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typePair, path string) {
	d.Add(Diagnostic{Severity: Error, Code: code, Message: message, TypePair: typePair, Path: path})
}

// AddCause adds an error diagnostic carrying err.
func (d *Diagnostics) AddCause(code string, err error, typePair, path string) {
	d.Add(Diagnostic{Severity: Error, Code: code, Message: err.Error(), TypePair: typePair, Path: path, Err: err})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typePair, path string, suggestions ...string) {
	d.Add(Diagnostic{
		Severity:    Warning,
		Code:        code,
		Message:     message,
		TypePair:    typePair,
		Path:        path,
		Suggestions: suggestions,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typePair, path string) {
	d.Add(Diagnostic{Severity: Info, Code: code, Message: message, TypePair: typePair, Path: path})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Truncate drops diagnostics added after mark was taken.
func (d *Diagnostics) Truncate(mark Mark) {
	d.Errors = d.Errors[:mark.errors]
	d.Warnings = d.Warnings[:mark.warnings]
	d.Infos = d.Infos[:mark.infos]
}

// Mark records the current length of each list.
type Mark struct {
	errors, warnings, infos int
}

// Mark returns a position Truncate can roll back to.
func (d *Diagnostics) Mark() Mark {
	return Mark{errors: len(d.Errors), warnings: len(d.Warnings), infos: len(d.Infos)}
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// WithCode returns every diagnostic of any severity carrying code.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range list {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}

	return out
}

// Err joins the error diagnostics into one error, or returns nil if valid. Diagnostics
// carrying an underlying error contribute it unchanged so errors.Is and errors.As see it.
func (d *Diagnostics) Err() error {
	if d.IsValid() {
		return nil
	}

	errs := make([]error, 0, len(d.Errors))

	for _, e := range d.Errors {
		if e.Err != nil {
			errs = append(errs, e.Err)
		} else {
			errs = append(errs, errors.New(e.String()))
		}
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.TypePair != "" {
		prefix = append(prefix, "["+d.TypePair+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
