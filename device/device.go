// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the render device abstraction consumed by texture
// resources.
//
// A Device allocates and destroys device textures and render buffers and
// moves pixel data between CPU memory and individual texture surfaces.
// Handles are small integers: the zero handle means "no resource", which
// lets callers keep a handle field without a separate validity flag.
//
// Two implementations ship with this module:
//   - memdevice: an in-memory software device for headless use and tests
//   - haldevice: a device over gogpu/wgpu/hal
package device

import (
	"errors"
	"math/bits"
)

// Device errors.
var (
	// ErrInvalidHandle is returned when a handle does not name a live resource.
	ErrInvalidHandle = errors.New("device: invalid handle")

	// ErrUnsupportedFormat is returned when the device cannot store a format.
	ErrUnsupportedFormat = errors.New("device: unsupported texture format")

	// ErrInvalidDimensions is returned for zero, negative or oversized extents.
	ErrInvalidDimensions = errors.New("device: invalid texture dimensions")

	// ErrUnsupportedType is returned when the device lacks a texture type
	// (for example 3D textures).
	ErrUnsupportedType = errors.New("device: unsupported texture type")

	// ErrSurfaceOutOfRange is returned for a slice or mip level the texture
	// does not have.
	ErrSurfaceOutOfRange = errors.New("device: surface out of range")

	// ErrBufferSize is returned when a pixel buffer is smaller than the surface.
	ErrBufferSize = errors.New("device: pixel buffer too small")
)

// Texture is an opaque device texture handle. Zero means no texture.
type Texture uint32

// RenderBuffer is an opaque render buffer handle. Zero means no render buffer.
type RenderBuffer uint32

// TextureType is the shape of a texture.
type TextureType uint8

const (
	// Tex2D is a plain two-dimensional texture.
	Tex2D TextureType = iota

	// TexCube is a cube map with six faces (slices).
	TexCube

	// Tex3D is a volume texture.
	Tex3D
)

// String returns a human-readable name for the texture type.
func (t TextureType) String() string {
	switch t {
	case Tex2D:
		return "2D"
	case TexCube:
		return "Cube"
	case Tex3D:
		return "3D"
	default:
		return "Unknown"
	}
}

// Slices returns the number of addressable slices of the type:
// six faces for cube maps, one otherwise.
func (t TextureType) Slices() int {
	if t == TexCube {
		return 6
	}
	return 1
}

// TextureDesc describes parameters for creating a texture.
type TextureDesc struct {
	// Label is an optional debug label for the texture.
	Label string

	// Type is the texture shape.
	Type TextureType

	// Width, Height and Depth are the base level extents.
	// Depth is 1 for 2D and cube textures.
	Width, Height, Depth int

	// Format is the texture pixel format.
	Format Format

	// Mipmaps allocates the full mip chain down to 1x1.
	Mipmaps bool

	// GenMipmaps makes the device rebuild levels 1..n whenever level 0
	// of a slice is uploaded. It has no effect without Mipmaps.
	GenMipmaps bool

	// SRGB selects the sRGB variant of the format.
	SRGB bool
}

// Levels returns the number of mip levels a texture created from d holds.
// Volume chains continue until width, height and depth all reach 1.
func (d TextureDesc) Levels() int {
	if !d.Mipmaps {
		return 1
	}
	base := d.Width
	if d.Type == Tex3D {
		base = max(base, d.Depth)
	}
	return max(MipLevels(base, d.Height), 1)
}

// RenderBufferDesc describes parameters for creating a render buffer.
type RenderBufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the attachment extents.
	Width, Height int

	// Format is the color attachment format.
	Format Format

	// Depth adds a depth attachment.
	Depth bool

	// Samples is the multisample count. Values below 2 disable MSAA.
	Samples int

	// ColorCount is the number of color attachments. Zero means one.
	ColorCount int
}

// Caps describes the capabilities of a device.
type Caps struct {
	// Tex3D indicates volume textures are supported.
	Tex3D bool

	// TexCompressed indicates block-compressed formats are supported.
	TexCompressed bool

	// MaxTextureSize is the maximum 2D texture dimension.
	MaxTextureSize int

	// Name is the adapter or implementation name.
	Name string
}

// Device is the render device a texture resource talks to.
//
// All calls are synchronous. A failed creation returns a zero handle
// together with an error; texture resources treat both as the same signal.
type Device interface {
	// CreateTexture allocates a texture. Surfaces start zeroed.
	CreateTexture(desc TextureDesc) (Texture, error)

	// UploadTextureData writes a whole (slice, mip) surface.
	UploadTextureData(tex Texture, slice, mip int, pixels []byte) error

	// UpdateTextureData rewrites a surface of an existing texture.
	// It is the write-back path of stream mappings.
	UpdateTextureData(tex Texture, slice, mip int, pixels []byte) error

	// TextureData reads a (slice, mip) surface into dst.
	TextureData(tex Texture, slice, mip int, dst []byte) error

	// DestroyTexture releases a texture. Unknown handles are ignored.
	DestroyTexture(tex Texture)

	// CreateRenderBuffer allocates a render target.
	CreateRenderBuffer(desc RenderBufferDesc) (RenderBuffer, error)

	// RenderBufferTexture returns the texture backing a color attachment,
	// or zero. The texture is owned by the render buffer.
	RenderBufferTexture(rb RenderBuffer, attachment int) Texture

	// DestroyRenderBuffer releases a render buffer and its attachments.
	DestroyRenderBuffer(rb RenderBuffer)

	// CalcTextureSize returns the byte size of a surface.
	CalcTextureSize(format Format, width, height, depth int) int

	// Caps returns the device capabilities.
	Caps() Caps
}

// MipLevels returns the number of levels in a full mip chain for the
// given base extents: floor(log2(max(width, height))) + 1.
// Returns 0 for empty extents.
func MipLevels(width, height int) int {
	m := max(width, height)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// MipExtent returns max(1, base >> level).
func MipExtent(base, level int) int {
	return max(1, base>>level)
}
