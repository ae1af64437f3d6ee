package modelmapper

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for mapper events.
var (
	SignalTypeMapBuilt  = capitan.NewSignal("modelmapper.typemap.built", "TypeMap built")
	SignalTypeMapFailed = capitan.NewSignal("modelmapper.typemap.failed", "TypeMap build failed")
	SignalMapComplete   = capitan.NewSignal("modelmapper.map.complete", "Map operation finished")
)

// Keys for typed event data.
var (
	KeySourceType      = capitan.NewStringKey("source_type")
	KeyDestinationType = capitan.NewStringKey("destination_type")
	KeyMappings        = capitan.NewIntKey("mappings")
	KeyUnmapped        = capitan.NewIntKey("unmapped")
	KeyDuration        = capitan.NewDurationKey("duration")
	KeyError           = capitan.NewErrorKey("error")
)

func emitTypeMapBuilt(ctx context.Context, src, dst string, mappings, unmapped int, duration time.Duration) {
	capitan.Emit(ctx, SignalTypeMapBuilt,
		KeySourceType.Field(src),
		KeyDestinationType.Field(dst),
		KeyMappings.Field(mappings),
		KeyUnmapped.Field(unmapped),
		KeyDuration.Field(duration),
	)
}

func emitTypeMapFailed(ctx context.Context, src, dst string, err error) {
	capitan.Error(ctx, SignalTypeMapFailed,
		KeySourceType.Field(src),
		KeyDestinationType.Field(dst),
		KeyError.Field(err),
	)
}

func emitMapComplete(ctx context.Context, src, dst string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeySourceType.Field(src),
		KeyDestinationType.Field(dst),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMapComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMapComplete, fields...)
	}
}
