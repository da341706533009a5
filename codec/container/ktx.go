// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/texture/device"
)

const (
	ktxHeaderSize  = 64
	ktxEndianness  = 0x04030201
	ktxEndianSwap  = 0x01020304
	glUnsignedByte = 0x1401
	glRGBA         = 0x1908
)

// GL internal formats.
const (
	glRGBA8              = 0x8058
	glSRGB8Alpha8        = 0x8C43
	glRGBA16F            = 0x881A
	glRGBA32F            = 0x8814
	glR8                 = 0x8229
	glRG8                = 0x822B
	glR16F               = 0x822D
	glR32F               = 0x822E
	glRG16F              = 0x822F
	glRG32F              = 0x8230
	glRGBS3TCDXT1        = 0x83F0
	glRGBAS3TCDXT1       = 0x83F1
	glRGBAS3TCDXT3       = 0x83F2
	glRGBAS3TCDXT5       = 0x83F3
	glSRGBS3TCDXT1       = 0x8C4C
	glSRGBAlphaS3TCDXT1  = 0x8C4D
	glSRGBAlphaS3TCDXT3  = 0x8C4E
	glSRGBAlphaS3TCDXT5  = 0x8C4F
	glRedRGTC1           = 0x8DBB
	glRGRGTC2            = 0x8DBD
	glETC1RGB8           = 0x8D64
	glRGB8ETC2           = 0x9274
	glSRGB8ETC2          = 0x9275
	glRGBA8ETC2EAC       = 0x9278
	glSRGB8Alpha8ETC2EAC = 0x9279
	glRGBABPTCUnorm      = 0x8E8C
	glSRGBAlphaBPTCUnorm = 0x8E8D
	glRGBBPTCSignedF     = 0x8E8E
	glRGBBPTCUnsignedF   = 0x8E8F
)

type ktxHeader struct {
	glType, glTypeSize, glFormat   uint32
	glInternalFormat               uint32
	width, height, depth           uint32
	arrayElements, faces, mipCount uint32
	keyValueBytes                  uint32
}

// decodeKTX parses a KTX 1.1 file. Levels are stored mip-major in the
// file and reordered slice-major on output.
func decodeKTX(data []byte) (*Info, error) {
	if len(data) < ktxHeaderSize {
		return nil, fmt.Errorf("%w: KTX header truncated (%d bytes)", ErrCorrupt, len(data))
	}

	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(data[12:]) {
	case ktxEndianness:
		order = binary.LittleEndian
	case ktxEndianSwap:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad KTX endianness marker", ErrCorrupt)
	}
	swapped := order == binary.ByteOrder(binary.BigEndian)

	u := func(off int) uint32 { return order.Uint32(data[off:]) }
	hdr := ktxHeader{
		glType:           u(16),
		glTypeSize:       u(20),
		glFormat:         u(24),
		glInternalFormat: u(28),
		width:            u(36),
		height:           u(40),
		depth:            u(44),
		arrayElements:    u(48),
		faces:            u(52),
		mipCount:         u(56),
		keyValueBytes:    u(60),
	}

	info := &Info{
		Container: KTX,
		Width:     int(hdr.width),
		Height:    max(int(hdr.height), 1),
		Depth:     max(int(hdr.depth), 1),
		MipCount:  max(int(hdr.mipCount), 1),
		Type:      device.Tex2D,
	}
	switch hdr.faces {
	case 1:
	case 6:
		info.Type = device.TexCube
	default:
		return nil, fmt.Errorf("%w: KTX face count %d", ErrCorrupt, hdr.faces)
	}
	if info.Depth > 1 {
		info.Type = device.Tex3D
	}
	if hdr.arrayElements > 1 {
		return nil, fmt.Errorf("%w: KTX array textures are not supported", ErrCorrupt)
	}
	info.Format, info.SRGB = glFormat(hdr)

	if err := info.validate(); err != nil {
		return nil, err
	}
	if info.Format == device.FormatUnknown {
		return info, nil
	}

	offset := ktxHeaderSize + int(hdr.keyValueBytes)
	if offset > len(data) {
		return nil, fmt.Errorf("%w: KTX key/value data truncated", ErrCorrupt)
	}

	faces := int(hdr.faces)
	levels := make([][]Surface, faces)
	for mip := 0; mip < info.MipCount; mip++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("%w: KTX level %d truncated", ErrCorrupt, mip)
		}
		imageSize := int(order.Uint32(data[offset:]))
		offset += 4

		size := info.surfaceSize(mip)
		if imageSize < size {
			return nil, fmt.Errorf("%w: KTX level %d size %d, want %d", ErrCorrupt, mip, imageSize, size)
		}
		for face := 0; face < faces; face++ {
			if size > len(data)-offset {
				return nil, fmt.Errorf("%w: KTX surface %d/%d truncated", ErrCorrupt, face, mip)
			}
			pix := data[offset : offset+size : offset+size]
			if swapped && hdr.glTypeSize > 1 {
				pix = swapWords(pix, int(hdr.glTypeSize))
			}
			// A conflicting cube flag on a volume keeps face 0 only.
			if face < info.Slices() {
				levels[face] = append(levels[face], Surface{Mip: mip, Slice: face, Data: pix})
			}
			offset += align4(size)
		}
		if faces == 1 {
			offset += align4(imageSize) - align4(size)
		}
	}

	info.Surfaces = make([]Surface, 0, info.Slices()*info.MipCount)
	for _, face := range levels[:info.Slices()] {
		info.Surfaces = append(info.Surfaces, face...)
	}
	return info, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// swapWords reverses the byte order of each size-byte word.
func swapWords(src []byte, size int) []byte {
	dst := make([]byte, len(src))
	for i := 0; i+size <= len(src); i += size {
		for j := 0; j < size; j++ {
			dst[i+j] = src[i+size-1-j]
		}
	}
	return dst
}

func glFormat(h ktxHeader) (device.Format, bool) {
	switch h.glInternalFormat {
	case glRGBA8:
		return device.FormatRGBA8, false
	case glRGBA:
		if h.glType == glUnsignedByte && h.glFormat == glRGBA {
			return device.FormatRGBA8, false
		}
	case glSRGB8Alpha8:
		return device.FormatRGBA8, true
	case glRGBA16F:
		return device.FormatRGBA16F, false
	case glRGBA32F:
		return device.FormatRGBA32F, false
	case glR8:
		return device.FormatR8, false
	case glRG8:
		return device.FormatRG8, false
	case glR16F:
		return device.FormatR16F, false
	case glR32F:
		return device.FormatR32F, false
	case glRG16F:
		return device.FormatRG16F, false
	case glRG32F:
		return device.FormatRG32F, false
	case glRGBS3TCDXT1, glRGBAS3TCDXT1:
		return device.FormatBC1, false
	case glSRGBS3TCDXT1, glSRGBAlphaS3TCDXT1:
		return device.FormatBC1, true
	case glRGBAS3TCDXT3:
		return device.FormatBC2, false
	case glSRGBAlphaS3TCDXT3:
		return device.FormatBC2, true
	case glRGBAS3TCDXT5:
		return device.FormatBC3, false
	case glSRGBAlphaS3TCDXT5:
		return device.FormatBC3, true
	case glRedRGTC1:
		return device.FormatBC4, false
	case glRGRGTC2:
		return device.FormatBC5, false
	case glETC1RGB8:
		return device.FormatETC1, false
	case glRGB8ETC2:
		return device.FormatETC2RGB8, false
	case glSRGB8ETC2:
		return device.FormatETC2RGB8, true
	case glRGBA8ETC2EAC:
		return device.FormatETC2RGBA8, false
	case glSRGB8Alpha8ETC2EAC:
		return device.FormatETC2RGBA8, true
	case glRGBABPTCUnorm:
		return device.FormatBC7, false
	case glSRGBAlphaBPTCUnorm:
		return device.FormatBC7, true
	case glRGBBPTCSignedF:
		return device.FormatBC6SF16, false
	case glRGBBPTCUnsignedF:
		return device.FormatBC6UF16, false
	}
	return device.FormatUnknown, false
}
