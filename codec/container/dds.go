// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gogpu/texture/device"
)

// DDS header layout. Offsets are relative to the end of the magic.
const (
	ddsHeaderSize     = 124
	ddsPixelFmtSize   = 32
	ddsDX10HeaderSize = 20

	ddsOffFlags       = 4
	ddsOffHeight      = 8
	ddsOffWidth       = 12
	ddsOffPitch       = 16
	ddsOffDepth       = 20
	ddsOffMipCount    = 24
	ddsOffPixelFormat = 72
	ddsOffCaps        = 104
	ddsOffCaps2       = 108
)

// Header flags.
const (
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000
	ddsdLinearSize  = 0x80000
	ddsdDepth       = 0x800000
)

// Pixel format flags.
const (
	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
	ddpfLuminance   = 0x20000
)

// Caps.
const (
	ddsCapsComplex = 0x8
	ddsCapsTexture = 0x1000
	ddsCapsMipMap  = 0x400000

	ddsCaps2Cubemap  = 0x200
	ddsCaps2AllFaces = 0xFC00
	ddsCaps2Volume   = 0x200000
)

// DX10 extension header values.
const (
	dx10MiscCube     = 0x4
	dx10DimTexture2D = 3
	dx10DimTexture3D = 4
	dx10ArraySizeOne = 1
)

// D3DFMT codes stored in the FourCC field.
const (
	d3dfmtR16F    = 111
	d3dfmtRG16F   = 112
	d3dfmtRGBA16F = 113
	d3dfmtR32F    = 114
	d3dfmtRG32F   = 115
	d3dfmtRGBA32F = 116
)

// DXGI_FORMAT codes.
const (
	dxgiRGBA32F   = 2
	dxgiRGBA16F   = 10
	dxgiRG32F     = 16
	dxgiRGBA8     = 28
	dxgiRGBA8SRGB = 29
	dxgiRG16F     = 34
	dxgiR32F      = 41
	dxgiRG8       = 49
	dxgiR16F      = 54
	dxgiR8        = 61
	dxgiBC1       = 71
	dxgiBC1SRGB   = 72
	dxgiBC2       = 74
	dxgiBC2SRGB   = 75
	dxgiBC3       = 77
	dxgiBC3SRGB   = 78
	dxgiBC4       = 80
	dxgiBC5       = 83
	dxgiBGRA8     = 87
	dxgiBGRA8SRGB = 91
	dxgiBC6HUF16  = 95
	dxgiBC6HSF16  = 96
	dxgiBC7       = 98
	dxgiBC7SRGB   = 99
)

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

var (
	fccDXT1 = fourCC("DXT1")
	fccDXT3 = fourCC("DXT3")
	fccDXT5 = fourCC("DXT5")
	fccATI1 = fourCC("ATI1")
	fccBC4U = fourCC("BC4U")
	fccATI2 = fourCC("ATI2")
	fccBC5U = fourCC("BC5U")
	fccDX10 = fourCC("DX10")
)

// ddsLayout describes how stored pixels map to the device format.
type ddsLayout struct {
	format device.Format
	srgb   bool

	// swizzle swaps the red and blue channels of 32-bit pixels.
	swizzle bool

	// opaque forces alpha to 0xFF for layouts without an alpha mask.
	opaque bool
}

type ddsPixelFormat struct {
	flags, fourCC, bitCount uint32
	rMask, gMask, bMask     uint32
	aMask                   uint32
}

func decodeDDS(data []byte) (*Info, error) {
	const base = 4
	if len(data) < base+ddsHeaderSize {
		return nil, fmt.Errorf("%w: DDS header truncated (%d bytes)", ErrCorrupt, len(data))
	}
	le := binary.LittleEndian
	h := data[base : base+ddsHeaderSize]

	if le.Uint32(h[0:]) != ddsHeaderSize || le.Uint32(h[ddsOffPixelFormat:]) != ddsPixelFmtSize {
		return nil, fmt.Errorf("%w: bad DDS header size", ErrCorrupt)
	}

	pf := ddsPixelFormat{
		flags:    le.Uint32(h[ddsOffPixelFormat+4:]),
		fourCC:   le.Uint32(h[ddsOffPixelFormat+8:]),
		bitCount: le.Uint32(h[ddsOffPixelFormat+12:]),
		rMask:    le.Uint32(h[ddsOffPixelFormat+16:]),
		gMask:    le.Uint32(h[ddsOffPixelFormat+20:]),
		bMask:    le.Uint32(h[ddsOffPixelFormat+24:]),
		aMask:    le.Uint32(h[ddsOffPixelFormat+28:]),
	}
	caps2 := le.Uint32(h[ddsOffCaps2:])

	info := &Info{
		Container: DDS,
		Width:     int(le.Uint32(h[ddsOffWidth:])),
		Height:    int(le.Uint32(h[ddsOffHeight:])),
		Depth:     1,
		MipCount:  max(int(le.Uint32(h[ddsOffMipCount:])), 1),
		Type:      device.Tex2D,
	}
	if caps2&ddsCaps2Volume != 0 {
		if d := int(le.Uint32(h[ddsOffDepth:])); d > 1 {
			info.Depth = d
		}
	}
	if caps2&ddsCaps2Cubemap != 0 {
		if caps2&ddsCaps2AllFaces != ddsCaps2AllFaces {
			return nil, fmt.Errorf("%w: partial DDS cube map", ErrCorrupt)
		}
		info.Type = device.TexCube
	}

	offset := base + ddsHeaderSize
	var layout ddsLayout
	if pf.flags&ddpfFourCC != 0 && pf.fourCC == fccDX10 {
		if len(data) < offset+ddsDX10HeaderSize {
			return nil, fmt.Errorf("%w: DX10 header truncated", ErrCorrupt)
		}
		x := data[offset : offset+ddsDX10HeaderSize]
		layout = dxgiLayout(le.Uint32(x[0:]))
		switch le.Uint32(x[4:]) {
		case dx10DimTexture3D:
			info.Depth = max(int(le.Uint32(h[ddsOffDepth:])), 1)
		case dx10DimTexture2D:
			if le.Uint32(x[8:])&dx10MiscCube != 0 {
				info.Type = device.TexCube
			}
		default:
			return nil, fmt.Errorf("%w: unsupported DX10 resource dimension %d", ErrCorrupt, le.Uint32(x[4:]))
		}
		offset += ddsDX10HeaderSize
	} else {
		layout = legacyLayout(pf)
	}

	// Depth wins over a conflicting cube flag.
	if info.Depth > 1 {
		info.Type = device.Tex3D
	}
	info.Format = layout.format
	info.SRGB = layout.srgb

	if err := info.validate(); err != nil {
		return nil, err
	}
	if info.Format == device.FormatUnknown {
		return info, nil
	}

	// Only the first array element is read; trailing elements are ignored.
	info.Surfaces = make([]Surface, 0, info.Slices()*info.MipCount)
	for slice := 0; slice < info.Slices(); slice++ {
		for mip := 0; mip < info.MipCount; mip++ {
			size := info.surfaceSize(mip)
			if size > len(data)-offset {
				return nil, fmt.Errorf("%w: DDS surface %d/%d truncated", ErrCorrupt, slice, mip)
			}
			pix := data[offset : offset+size : offset+size]
			if layout.swizzle || layout.opaque {
				pix = swizzleRGBA(pix, layout.swizzle, layout.opaque)
			}
			info.Surfaces = append(info.Surfaces, Surface{Mip: mip, Slice: slice, Data: pix})
			offset += size
		}
	}
	return info, nil
}

func legacyLayout(pf ddsPixelFormat) ddsLayout {
	switch {
	case pf.flags&ddpfFourCC != 0:
		switch pf.fourCC {
		case fccDXT1:
			return ddsLayout{format: device.FormatBC1}
		case fccDXT3:
			return ddsLayout{format: device.FormatBC2}
		case fccDXT5:
			return ddsLayout{format: device.FormatBC3}
		case fccATI1, fccBC4U:
			return ddsLayout{format: device.FormatBC4}
		case fccATI2, fccBC5U:
			return ddsLayout{format: device.FormatBC5}
		case d3dfmtRGBA16F:
			return ddsLayout{format: device.FormatRGBA16F}
		case d3dfmtRGBA32F:
			return ddsLayout{format: device.FormatRGBA32F}
		case d3dfmtR16F:
			return ddsLayout{format: device.FormatR16F}
		case d3dfmtR32F:
			return ddsLayout{format: device.FormatR32F}
		case d3dfmtRG16F:
			return ddsLayout{format: device.FormatRG16F}
		case d3dfmtRG32F:
			return ddsLayout{format: device.FormatRG32F}
		}
	case pf.flags&ddpfRGB != 0 && pf.bitCount == 32:
		opaque := pf.flags&ddpfAlphaPixels == 0 || pf.aMask == 0
		switch {
		case pf.rMask == 0x00FF0000 && pf.gMask == 0x0000FF00 && pf.bMask == 0x000000FF:
			return ddsLayout{format: device.FormatRGBA8, swizzle: true, opaque: opaque}
		case pf.rMask == 0x000000FF && pf.gMask == 0x0000FF00 && pf.bMask == 0x00FF0000:
			return ddsLayout{format: device.FormatRGBA8, opaque: opaque}
		}
	case pf.flags&ddpfLuminance != 0 && pf.bitCount == 8:
		return ddsLayout{format: device.FormatR8}
	}
	return ddsLayout{format: device.FormatUnknown}
}

func dxgiLayout(dxgi uint32) ddsLayout {
	switch dxgi {
	case dxgiRGBA8:
		return ddsLayout{format: device.FormatRGBA8}
	case dxgiRGBA8SRGB:
		return ddsLayout{format: device.FormatRGBA8, srgb: true}
	case dxgiBGRA8:
		return ddsLayout{format: device.FormatRGBA8, swizzle: true}
	case dxgiBGRA8SRGB:
		return ddsLayout{format: device.FormatRGBA8, srgb: true, swizzle: true}
	case dxgiRGBA16F:
		return ddsLayout{format: device.FormatRGBA16F}
	case dxgiRGBA32F:
		return ddsLayout{format: device.FormatRGBA32F}
	case dxgiR8:
		return ddsLayout{format: device.FormatR8}
	case dxgiRG8:
		return ddsLayout{format: device.FormatRG8}
	case dxgiR16F:
		return ddsLayout{format: device.FormatR16F}
	case dxgiR32F:
		return ddsLayout{format: device.FormatR32F}
	case dxgiRG16F:
		return ddsLayout{format: device.FormatRG16F}
	case dxgiRG32F:
		return ddsLayout{format: device.FormatRG32F}
	case dxgiBC1:
		return ddsLayout{format: device.FormatBC1}
	case dxgiBC1SRGB:
		return ddsLayout{format: device.FormatBC1, srgb: true}
	case dxgiBC2:
		return ddsLayout{format: device.FormatBC2}
	case dxgiBC2SRGB:
		return ddsLayout{format: device.FormatBC2, srgb: true}
	case dxgiBC3:
		return ddsLayout{format: device.FormatBC3}
	case dxgiBC3SRGB:
		return ddsLayout{format: device.FormatBC3, srgb: true}
	case dxgiBC4:
		return ddsLayout{format: device.FormatBC4}
	case dxgiBC5:
		return ddsLayout{format: device.FormatBC5}
	case dxgiBC6HUF16:
		return ddsLayout{format: device.FormatBC6UF16}
	case dxgiBC6HSF16:
		return ddsLayout{format: device.FormatBC6SF16}
	case dxgiBC7:
		return ddsLayout{format: device.FormatBC7}
	case dxgiBC7SRGB:
		return ddsLayout{format: device.FormatBC7, srgb: true}
	default:
		return ddsLayout{format: device.FormatUnknown}
	}
}

// swizzleRGBA copies 32-bit pixels, optionally swapping red and blue and
// forcing alpha to opaque.
func swizzleRGBA(src []byte, swap, opaque bool) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	for i := 0; i+3 < len(dst); i += 4 {
		if swap {
			dst[i], dst[i+2] = dst[i+2], dst[i]
		}
		if opaque {
			dst[i+3] = 0xFF
		}
	}
	return dst
}

// WriteDDS encodes info as a DDS file. Surfaces must be complete and
// ordered slice-major, mip-minor. Formats with a legacy DDS encoding are
// written without the DX10 header.
func WriteDDS(w io.Writer, info *Info) error {
	if err := info.validate(); err != nil {
		return err
	}
	if want := info.Slices() * info.MipCount; len(info.Surfaces) != want {
		return fmt.Errorf("%w: have %d surfaces, want %d", ErrCorrupt, len(info.Surfaces), want)
	}

	var pf ddsPixelFormat
	var dxgi uint32
	switch {
	case info.Format == device.FormatRGBA8 && !info.SRGB:
		pf = ddsPixelFormat{flags: ddpfRGB | ddpfAlphaPixels, bitCount: 32,
			rMask: 0x000000FF, gMask: 0x0000FF00, bMask: 0x00FF0000, aMask: 0xFF000000}
	case info.Format == device.FormatR8:
		pf = ddsPixelFormat{flags: ddpfLuminance, bitCount: 8, rMask: 0xFF}
	default:
		if cc, ok := legacyFourCC(info.Format, info.SRGB); ok {
			pf = ddsPixelFormat{flags: ddpfFourCC, fourCC: cc}
			break
		}
		code, ok := dxgiCode(info.Format, info.SRGB)
		if !ok {
			return fmt.Errorf("%w: %v cannot be stored in DDS", device.ErrUnsupportedFormat, info.Format)
		}
		pf = ddsPixelFormat{flags: ddpfFourCC, fourCC: fccDX10}
		dxgi = code
	}

	le := binary.LittleEndian
	h := make([]byte, 4+ddsHeaderSize)
	copy(h, ddsMagic)
	hdr := h[4:]

	flags := uint32(ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat)
	if info.Format.IsCompressed() {
		flags |= ddsdLinearSize
	} else {
		flags |= ddsdPitch
	}
	caps := uint32(ddsCapsTexture)
	var caps2 uint32
	if info.MipCount > 1 {
		flags |= ddsdMipMapCount
		caps |= ddsCapsComplex | ddsCapsMipMap
	}
	switch info.Type {
	case device.TexCube:
		caps |= ddsCapsComplex
		caps2 |= ddsCaps2Cubemap | ddsCaps2AllFaces
	case device.Tex3D:
		flags |= ddsdDepth
		caps |= ddsCapsComplex
		caps2 |= ddsCaps2Volume
	}

	pitch := device.SurfaceSize(info.Format, info.Width, 1, 1)
	if info.Format.IsCompressed() {
		pitch = device.SurfaceSize(info.Format, info.Width, info.Height, 1)
	}

	le.PutUint32(hdr[0:], ddsHeaderSize)
	le.PutUint32(hdr[ddsOffFlags:], flags)
	le.PutUint32(hdr[ddsOffHeight:], uint32(info.Height)) //nolint:gosec // validated
	le.PutUint32(hdr[ddsOffWidth:], uint32(info.Width))   //nolint:gosec // validated
	le.PutUint32(hdr[ddsOffPitch:], uint32(pitch))        //nolint:gosec // validated
	le.PutUint32(hdr[ddsOffDepth:], uint32(info.Depth))   //nolint:gosec // validated
	le.PutUint32(hdr[ddsOffMipCount:], uint32(info.MipCount))
	le.PutUint32(hdr[ddsOffPixelFormat:], ddsPixelFmtSize)
	le.PutUint32(hdr[ddsOffPixelFormat+4:], pf.flags)
	le.PutUint32(hdr[ddsOffPixelFormat+8:], pf.fourCC)
	le.PutUint32(hdr[ddsOffPixelFormat+12:], pf.bitCount)
	le.PutUint32(hdr[ddsOffPixelFormat+16:], pf.rMask)
	le.PutUint32(hdr[ddsOffPixelFormat+20:], pf.gMask)
	le.PutUint32(hdr[ddsOffPixelFormat+24:], pf.bMask)
	le.PutUint32(hdr[ddsOffPixelFormat+28:], pf.aMask)
	le.PutUint32(hdr[ddsOffCaps:], caps)
	le.PutUint32(hdr[ddsOffCaps2:], caps2)

	if pf.fourCC == fccDX10 {
		x := make([]byte, ddsDX10HeaderSize)
		le.PutUint32(x[0:], dxgi)
		dim := uint32(dx10DimTexture2D)
		var misc uint32
		switch info.Type {
		case device.Tex3D:
			dim = dx10DimTexture3D
		case device.TexCube:
			misc = dx10MiscCube
		}
		le.PutUint32(x[4:], dim)
		le.PutUint32(x[8:], misc)
		le.PutUint32(x[12:], dx10ArraySizeOne)
		h = append(h, x...)
	}

	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("write DDS header: %w", err)
	}
	for i, s := range info.Surfaces {
		slice, mip := i/info.MipCount, i%info.MipCount
		if s.Slice != slice || s.Mip != mip {
			return fmt.Errorf("%w: surface %d is (%d, %d), want (%d, %d)", ErrCorrupt, i, s.Slice, s.Mip, slice, mip)
		}
		if size := info.surfaceSize(mip); len(s.Data) != size {
			return fmt.Errorf("%w: surface (%d, %d) has %d bytes, want %d", ErrCorrupt, slice, mip, len(s.Data), size)
		}
		if _, err := w.Write(s.Data); err != nil {
			return fmt.Errorf("write DDS surface: %w", err)
		}
	}
	return nil
}

func legacyFourCC(f device.Format, srgb bool) (uint32, bool) {
	if srgb {
		return 0, false
	}
	switch f {
	case device.FormatBC1:
		return fccDXT1, true
	case device.FormatBC2:
		return fccDXT3, true
	case device.FormatBC3:
		return fccDXT5, true
	case device.FormatBC4:
		return fccATI1, true
	case device.FormatBC5:
		return fccATI2, true
	case device.FormatRGBA16F:
		return d3dfmtRGBA16F, true
	case device.FormatRGBA32F:
		return d3dfmtRGBA32F, true
	case device.FormatR16F:
		return d3dfmtR16F, true
	case device.FormatR32F:
		return d3dfmtR32F, true
	case device.FormatRG16F:
		return d3dfmtRG16F, true
	case device.FormatRG32F:
		return d3dfmtRG32F, true
	default:
		return 0, false
	}
}

func dxgiCode(f device.Format, srgb bool) (uint32, bool) {
	switch f {
	case device.FormatRGBA8:
		if srgb {
			return dxgiRGBA8SRGB, true
		}
		return dxgiRGBA8, true
	case device.FormatRG8:
		return dxgiRG8, true
	case device.FormatBC1:
		return dxgiBC1SRGB, srgb
	case device.FormatBC2:
		return dxgiBC2SRGB, srgb
	case device.FormatBC3:
		return dxgiBC3SRGB, srgb
	case device.FormatBC6UF16:
		return dxgiBC6HUF16, true
	case device.FormatBC6SF16:
		return dxgiBC6HSF16, true
	case device.FormatBC7:
		if srgb {
			return dxgiBC7SRGB, true
		}
		return dxgiBC7, true
	default:
		return 0, false
	}
}
