package modelmapper

import "github.com/kamilors/modelmapper/mapperrors"

// Sentinel errors, re-exported from mapperrors.
var (
	ErrInvalidArgument  = mapperrors.ErrInvalidArgument
	ErrAmbiguousMapping = mapperrors.ErrAmbiguousMapping
	ErrConversion       = mapperrors.ErrConversion
	ErrProvisioning     = mapperrors.ErrProvisioning
	ErrUnmapped         = mapperrors.ErrUnmapped
)

// Typed errors, re-exported from mapperrors.
type (
	ArgumentError  = mapperrors.ArgumentError
	AmbiguityError = mapperrors.AmbiguityError
	MappingError   = mapperrors.MappingError
	UnmappedError  = mapperrors.UnmappedError
)
