// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package container decodes self-describing multi-surface texture
// containers (DDS and KTX 1.1) into per-surface pixel payloads.
//
// Decode never converts block-compressed data: surfaces are returned in
// the device pixel format named by Info.Format, ready for upload. The only
// transformation performed is a BGRA to RGBA swizzle for 32-bit DDS
// bitmask layouts and byte swapping of big-endian KTX payloads.
//
// A container whose pixel format has no device equivalent decodes
// successfully with Format == device.FormatUnknown and no surfaces.
package container

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gogpu/texture/device"
)

// ErrCorrupt is returned when a container header cannot be parsed or the
// payload is shorter than the header describes.
var ErrCorrupt = errors.New("container: corrupt container")

// MaxExtent is the largest width, height or depth a container may declare.
const MaxExtent = 1 << 16

// Container identifies the container encoding.
type Container uint8

const (
	// DDS is a DirectDraw Surface file, with or without the DX10 header.
	DDS Container = iota + 1

	// KTX is a Khronos texture file, version 1.1.
	KTX
)

// String returns the container name.
func (c Container) String() string {
	switch c {
	case DDS:
		return "DDS"
	case KTX:
		return "KTX"
	default:
		return fmt.Sprintf("Container(%d)", c)
	}
}

// Surface is one uploadable (slice, mip) payload.
type Surface struct {
	Mip   int
	Slice int
	Data  []byte
}

// Info describes a decoded container.
type Info struct {
	Container Container
	Width     int
	Height    int
	Depth     int
	Format    device.Format
	MipCount  int
	Type      device.TextureType

	// SRGB is set when the container declares sRGB-encoded data.
	SRGB bool

	// Surfaces are ordered slice-major, mip-minor.
	Surfaces []Surface
}

// Slices returns the number of slices (6 for cube maps, otherwise 1).
func (i *Info) Slices() int {
	return i.Type.Slices()
}

var (
	ddsMagic = []byte("DDS ")
	ktxMagic = []byte{0xAB, 'K', 'T', 'X', ' ', '1', '1', 0xBB, '\r', '\n', 0x1A, '\n'}
)

// MatchDDS reports whether data starts with the DDS signature.
func MatchDDS(data []byte) bool {
	return bytes.HasPrefix(data, ddsMagic)
}

// MatchKTX reports whether data starts with the KTX 1.1 identifier.
func MatchKTX(data []byte) bool {
	return bytes.HasPrefix(data, ktxMagic)
}

// Check reports whether data carries a supported container signature.
// No decoding is performed.
func Check(data []byte) bool {
	return MatchDDS(data) || MatchKTX(data)
}

// Decode parses a DDS or KTX container.
func Decode(data []byte) (*Info, error) {
	switch {
	case MatchDDS(data):
		return decodeDDS(data)
	case MatchKTX(data):
		return decodeKTX(data)
	default:
		return nil, fmt.Errorf("%w: unknown signature", ErrCorrupt)
	}
}

// validate checks the geometry shared by all containers.
func (i *Info) validate() error {
	if i.Width <= 0 || i.Height <= 0 || i.Depth <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%dx%d", ErrCorrupt, i.Width, i.Height, i.Depth)
	}
	if i.Width > MaxExtent || i.Height > MaxExtent || i.Depth > MaxExtent {
		return fmt.Errorf("%w: dimensions %dx%dx%d exceed %d", ErrCorrupt, i.Width, i.Height, i.Depth, MaxExtent)
	}
	if i.Type == device.TexCube && i.Width != i.Height {
		return fmt.Errorf("%w: cube faces must be square, got %dx%d", ErrCorrupt, i.Width, i.Height)
	}
	maxLevels := device.MipLevels(max(i.Width, i.Depth), i.Height)
	if i.MipCount < 1 || i.MipCount > maxLevels {
		return fmt.Errorf("%w: mip count %d out of range [1, %d]", ErrCorrupt, i.MipCount, maxLevels)
	}
	return nil
}

// surfaceExtent returns the extent of a mip level.
func (i *Info) surfaceExtent(mip int) (w, h, d int) {
	return device.MipExtent(i.Width, mip), device.MipExtent(i.Height, mip), device.MipExtent(i.Depth, mip)
}

// surfaceSize returns the byte size of a mip level of one slice.
func (i *Info) surfaceSize(mip int) int {
	w, h, d := i.surfaceExtent(mip)
	return device.SurfaceSize(i.Format, w, h, d)
}
