// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource provides the lifecycle shared by all engine resources:
// identity, load state, generic element queries, the stream mapping
// fallback and error reporting.
//
// Concrete resources embed Base and override the element, parameter and
// stream methods for the elements they understand, delegating everything
// else back to Base.
package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNoData is returned by Load when the payload is empty.
	ErrNoData = errors.New("resource: no data")

	// ErrAlreadyLoaded is returned by Load when the resource holds data.
	ErrAlreadyLoaded = errors.New("resource: already loaded")

	// ErrUnknownElement is returned for element or parameter queries the
	// resource does not support.
	ErrUnknownElement = errors.New("resource: unknown element or parameter")

	// ErrStreamUnavailable is returned when a stream cannot be mapped.
	ErrStreamUnavailable = errors.New("resource: stream not available")
)

// Type identifies a resource kind.
type Type uint8

const (
	// TypeUndefined is the zero Type.
	TypeUndefined Type = iota

	// TypeTexture is a GPU texture.
	TypeTexture
)

// String returns the resource kind as used in diagnostics.
func (t Type) String() string {
	switch t {
	case TypeTexture:
		return "Texture"
	default:
		return "Undefined"
	}
}

// Flags are construction flags.
type Flags uint32

const (
	// FlagNoQuery excludes the resource from registry queries.
	FlagNoQuery Flags = 1 << iota

	// FlagNoCompression disables texture compression.
	FlagNoCompression

	// FlagNoMipmaps disables mip chains.
	FlagNoMipmaps

	// FlagCubemap requests a cube map.
	FlagCubemap

	// FlagDynamic marks data that is updated frequently.
	FlagDynamic

	// FlagRenderTarget requests a render-target-backed texture.
	FlagRenderTarget

	// FlagSRGB marks sRGB-encoded color data.
	FlagSRGB
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Elem, Param and Stream identify queryable parts of a resource. Their
// values are defined by each resource kind.
type (
	Elem   int
	Param  int
	Stream int
)

// Base is the state shared by all resources.
type Base struct {
	name   string
	typ    Type
	flags  Flags
	loaded bool
	logger func() *slog.Logger
}

// NewBase returns a Base. logger is called on every report, so a logger
// replaced at runtime takes effect immediately; nil disables reporting.
func NewBase(typ Type, name string, flags Flags, logger func() *slog.Logger) Base {
	return Base{name: name, typ: typ, flags: flags, logger: logger}
}

// Name returns the resource name.
func (b *Base) Name() string { return b.name }

// Type returns the resource kind.
func (b *Base) Type() Type { return b.typ }

// Flags returns the construction flags.
func (b *Base) Flags() Flags { return b.flags }

// SetFlags replaces the construction flags.
func (b *Base) SetFlags(f Flags) { b.flags = f }

// Loaded reports whether Load has accepted a payload.
func (b *Base) Loaded() bool { return b.loaded }

// Load validates a raw payload before format-specific decoding. The
// resource counts as loaded once the payload is accepted, even if the
// decoder then fails; Unload clears it.
func (b *Base) Load(data []byte) error {
	if b.loaded {
		return fmt.Errorf("%w: %s resource '%s'", ErrAlreadyLoaded, b.typ, b.name)
	}
	if len(data) == 0 {
		b.ReportError("no data")
		return fmt.Errorf("%w: %s resource '%s'", ErrNoData, b.typ, b.name)
	}
	b.loaded = true
	return nil
}

// MarkLoaded marks a resource created without a payload as loaded.
func (b *Base) MarkLoaded() {
	b.loaded = true
}

// Unload marks the resource as not loaded.
func (b *Base) Unload() {
	b.loaded = false
}

// ElemCount returns 0: a bare resource has no elements.
func (b *Base) ElemCount(Elem) int {
	return 0
}

// ElemParamI reports an unknown element or parameter.
func (b *Base) ElemParamI(elem Elem, idx int, param Param) (int, error) {
	return 0, fmt.Errorf("%w: %s resource '%s' elem %d[%d] param %d",
		ErrUnknownElement, b.typ, b.name, elem, idx, param)
}

// MapStream is the fallback for streams a resource cannot map. It never
// allocates.
func (b *Base) MapStream(elem Elem, idx int, stream Stream, read, write bool) error {
	return fmt.Errorf("%w: %s resource '%s' elem %d[%d] stream %d (read=%v write=%v)",
		ErrStreamUnavailable, b.typ, b.name, elem, idx, stream, read, write)
}

// UnmapStream is the fallback unmap; it does nothing.
func (b *Base) UnmapStream() {}

// ReportError logs msg as "<type> resource '<name>': <msg>".
func (b *Base) ReportError(msg string) {
	b.report(slog.LevelError, msg)
}

// ReportWarning is ReportError at warning level.
func (b *Base) ReportWarning(msg string) {
	b.report(slog.LevelWarn, msg)
}

func (b *Base) report(level slog.Level, msg string) {
	if b.logger == nil {
		return
	}
	l := b.logger()
	if l == nil {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf("%s resource '%s': %s", b.typ, b.name, msg),
		"resource", b.name)
}
