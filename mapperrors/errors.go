// Package mapperrors provides the error types shared by every modelmapper package.
//
// Each typed error reports itself as one of the sentinel errors through its Is
// method, so callers can branch with errors.Is and still reach the details with
// errors.As:
//
//	if err := mm.Map(src, &dst); err != nil {
//	    var merr *mapperrors.MappingError
//	    if errors.As(err, &merr) {
//	        log.Printf("failed at %s", merr.DestinationPath)
//	    }
//	}
package mapperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument indicates a nil or malformed argument passed to a setter or factory.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAmbiguousMapping indicates that several source paths matched a destination equally well.
	ErrAmbiguousMapping = errors.New("ambiguous mapping")

	// ErrConversion indicates that a converter failed or no converter applied.
	ErrConversion = errors.New("conversion error")

	// ErrProvisioning indicates that a destination instance could not be created.
	ErrProvisioning = errors.New("provisioning error")

	// ErrUnmapped indicates destination properties without a mapping during validation.
	ErrUnmapped = errors.New("unmapped destination properties")
)

// ArgumentError describes an invalid argument.
type ArgumentError struct {
	// Arg names the offending argument or option.
	Arg string
	// Reason explains what was wrong with it.
	Reason string
}

// NewArgumentError returns an *ArgumentError for arg.
func NewArgumentError(arg, reason string) *ArgumentError {
	return &ArgumentError{Arg: arg, Reason: reason}
}

func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid argument %s", e.Arg)
	}

	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// AmbiguityError lists the source paths competing for one destination path.
type AmbiguityError struct {
	SourceType      string
	DestinationType string
	Destination     string
	Sources         []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous mapping %s -> %s: destination %q matches %s",
		e.SourceType, e.DestinationType, e.Destination, strings.Join(e.Sources, ", "))
}

// Is reports whether target is ErrAmbiguousMapping.
func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguousMapping
}

// Op values recorded in MappingError.
const (
	OpConvert   = "convert"
	OpRead      = "read"
	OpWrite     = "write"
	OpProvision = "provision"
)

// MappingError reports a failure while executing one property mapping.
type MappingError struct {
	Op              string
	SourcePath      string
	DestinationPath string
	SourceType      string
	DestinationType string
	Cause           error
}

func (e *MappingError) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)
	b.WriteString(" failed")

	if e.SourcePath != "" || e.DestinationPath != "" {
		fmt.Fprintf(&b, " mapping %s -> %s", orRoot(e.SourcePath), orRoot(e.DestinationPath))
	}

	switch {
	case e.SourceType != "" && e.DestinationType != "":
		fmt.Fprintf(&b, " (%s -> %s)", e.SourceType, e.DestinationType)
	case e.SourceType != "" || e.DestinationType != "":
		fmt.Fprintf(&b, " (%s%s)", e.SourceType, e.DestinationType)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *MappingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel matching Op.
func (e *MappingError) Is(target error) bool {
	if e.Op == OpProvision {
		return target == ErrProvisioning
	}

	return target == ErrConversion
}

// UnmappedError lists destination paths left without a mapping.
type UnmappedError struct {
	SourceType      string
	DestinationType string
	Paths           []string
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("unmapped destination properties in %s -> %s: %s",
		e.SourceType, e.DestinationType, strings.Join(e.Paths, ", "))
}

// Is reports whether target is ErrUnmapped.
func (e *UnmappedError) Is(target error) bool {
	return target == ErrUnmapped
}

func orRoot(p string) string {
	if p == "" {
		return "<root>"
	}

	return p
}
