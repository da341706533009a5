// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "fmt"

// Format represents the pixel format of a device texture.
type Format uint8

const (
	// FormatUnknown marks a pixel format that has no device equivalent.
	FormatUnknown Format = iota

	// FormatR8 is a single 8-bit unsigned normalized channel.
	FormatR8

	// FormatR16F is a single 16-bit float channel.
	FormatR16F

	// FormatR32F is a single 32-bit float channel.
	FormatR32F

	// FormatRG8 is two 8-bit unsigned normalized channels.
	FormatRG8

	// FormatRG16F is two 16-bit float channels.
	FormatRG16F

	// FormatRG32F is two 32-bit float channels.
	FormatRG32F

	// FormatRGBA8 is 32-bit RGBA (4 bytes per pixel).
	// This is the base format of placeholder and empty textures.
	FormatRGBA8

	// FormatRGBA16F is 64-bit RGBA with half float channels.
	// Used for high-dynamic-range images.
	FormatRGBA16F

	// FormatRGBA32F is 128-bit RGBA with float channels.
	FormatRGBA32F

	// FormatBC1 is S3TC DXT1, 8 bytes per 4x4 block.
	FormatBC1

	// FormatBC2 is S3TC DXT3, 16 bytes per 4x4 block.
	FormatBC2

	// FormatBC3 is S3TC DXT5, 16 bytes per 4x4 block.
	FormatBC3

	// FormatBC4 is RGTC1, 8 bytes per 4x4 block.
	FormatBC4

	// FormatBC5 is RGTC2, 16 bytes per 4x4 block.
	FormatBC5

	// FormatBC6UF16 is unsigned BPTC float, 16 bytes per 4x4 block.
	FormatBC6UF16

	// FormatBC6SF16 is signed BPTC float, 16 bytes per 4x4 block.
	FormatBC6SF16

	// FormatBC7 is BPTC unorm, 16 bytes per 4x4 block.
	FormatBC7

	// FormatETC1 is ETC1 RGB, 8 bytes per 4x4 block.
	FormatETC1

	// FormatETC2RGB8 is ETC2 RGB, 8 bytes per 4x4 block.
	FormatETC2RGB8

	// FormatETC2RGBA8 is ETC2 RGBA (EAC alpha), 16 bytes per 4x4 block.
	FormatETC2RGBA8

	// FormatDepth is a 32-bit depth format for render buffer attachments.
	FormatDepth

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Name is the human-readable format name.
	Name string

	// BytesPerPixel is the pixel size for uncompressed formats, 0 otherwise.
	BytesPerPixel int

	// BlockBytes is the size of a 4x4 block for compressed formats, 0 otherwise.
	BlockBytes int

	// Channels is the number of color channels.
	Channels int

	// IsFloat indicates float channel storage.
	IsFloat bool

	// SRGBCapable indicates the format has an sRGB variant on common devices.
	SRGBCapable bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatUnknown:   {Name: "Unknown"},
	FormatR8:        {Name: "R8", BytesPerPixel: 1, Channels: 1},
	FormatR16F:      {Name: "R16F", BytesPerPixel: 2, Channels: 1, IsFloat: true},
	FormatR32F:      {Name: "R32F", BytesPerPixel: 4, Channels: 1, IsFloat: true},
	FormatRG8:       {Name: "RG8", BytesPerPixel: 2, Channels: 2},
	FormatRG16F:     {Name: "RG16F", BytesPerPixel: 4, Channels: 2, IsFloat: true},
	FormatRG32F:     {Name: "RG32F", BytesPerPixel: 8, Channels: 2, IsFloat: true},
	FormatRGBA8:     {Name: "RGBA8", BytesPerPixel: 4, Channels: 4, SRGBCapable: true},
	FormatRGBA16F:   {Name: "RGBA16F", BytesPerPixel: 8, Channels: 4, IsFloat: true},
	FormatRGBA32F:   {Name: "RGBA32F", BytesPerPixel: 16, Channels: 4, IsFloat: true},
	FormatBC1:       {Name: "BC1", BlockBytes: 8, Channels: 4, SRGBCapable: true},
	FormatBC2:       {Name: "BC2", BlockBytes: 16, Channels: 4, SRGBCapable: true},
	FormatBC3:       {Name: "BC3", BlockBytes: 16, Channels: 4, SRGBCapable: true},
	FormatBC4:       {Name: "BC4", BlockBytes: 8, Channels: 1},
	FormatBC5:       {Name: "BC5", BlockBytes: 16, Channels: 2},
	FormatBC6UF16:   {Name: "BC6UF16", BlockBytes: 16, Channels: 3, IsFloat: true},
	FormatBC6SF16:   {Name: "BC6SF16", BlockBytes: 16, Channels: 3, IsFloat: true},
	FormatBC7:       {Name: "BC7", BlockBytes: 16, Channels: 4, SRGBCapable: true},
	FormatETC1:      {Name: "ETC1", BlockBytes: 8, Channels: 3},
	FormatETC2RGB8:  {Name: "ETC2RGB8", BlockBytes: 8, Channels: 3, SRGBCapable: true},
	FormatETC2RGBA8: {Name: "ETC2RGBA8", BlockBytes: 16, Channels: 4, SRGBCapable: true},
	FormatDepth:     {Name: "Depth", BytesPerPixel: 4, Channels: 1, IsFloat: true},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// IsValid returns true if the format is a known format other than FormatUnknown.
func (f Format) IsValid() bool {
	return f > FormatUnknown && f < formatCount
}

// IsCompressed reports whether the format stores 4x4 pixel blocks.
func (f Format) IsCompressed() bool {
	return f.Info().BlockBytes > 0
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatInfoTable[f].Name
}

// SurfaceSize returns the byte size of a single width x height x depth
// surface in format f. Non-positive dimensions count as zero.
// Compressed formats round each dimension up to whole 4x4 blocks.
func SurfaceSize(f Format, width, height, depth int) int {
	if width <= 0 || height <= 0 || depth <= 0 {
		return 0
	}
	info := f.Info()
	switch {
	case info.BlockBytes > 0:
		bw := (width + 3) / 4
		bh := (height + 3) / 4
		return bw * bh * info.BlockBytes * depth
	case info.BytesPerPixel > 0:
		return width * height * depth * info.BytesPerPixel
	default:
		return 0
	}
}
