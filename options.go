package jsonmodel

import (
	"log/slog"

	"github.com/blang/semver/v4"
)

// DefaultVersion is the metadata version tag used when Options.Version is zero.
var DefaultVersion = semver.MustParse("1.0.0")

// Options configures a Model. The zero value is a usable default: no logging,
// no validation on write, no import limits.
type Options struct {
	// EnableLogging logs mutations and lifecycle events at debug level.
	EnableLogging bool
	// EnableValidation runs the registered rules for a path before every Set
	// on that path and rejects the write when any rule fails.
	EnableValidation bool
	// Immutable stores deep copies of objects and arrays handed to Set and the
	// array operations, so caller-held references never alias the document.
	Immutable bool
	// Defaults is the document Reset restores from.
	Defaults map[string]any
	// Version is reported in Metadata.
	Version semver.Version
	// Limits bounds what FromJSON accepts.
	Limits ImportLimits
	// Logger receives log records; slog.Default() when nil.
	Logger *slog.Logger
}

// ImportLimits bounds JSON imports. Zero values disable a check.
type ImportLimits struct {
	MaxDepth            int
	MaxBytes            int64
	RejectDuplicateKeys bool
}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Immediate invokes the callback once at registration with the current value.
	Immediate bool
}

func normalizeOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Version.Equals(semver.Version{}) {
		opt.Version = DefaultVersion
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}
