// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imagecodec

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/chewxy/math32"
	"github.com/x448/float16"

	"github.com/gogpu/texture/device"
)

// ToNRGBA converts a tightly packed surface to an 8-bit image.
// Float channels are clamped to [0, 1]; missing channels read as 0 and
// missing alpha as opaque. Block-compressed formats are not supported.
func ToNRGBA(format device.Format, width, height int, pix []byte) (*image.NRGBA, error) {
	info := format.Info()
	if !format.IsValid() || format.IsCompressed() || format == device.FormatDepth {
		return nil, fmt.Errorf("%w: cannot convert %v", device.ErrUnsupportedFormat, format)
	}
	if need := device.SurfaceSize(format, width, height, 1); len(pix) < need || need == 0 {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", device.ErrBufferSize, len(pix), need)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if format == device.FormatRGBA8 {
		copy(dst.Pix, pix)
		return dst, nil
	}

	bpp := info.BytesPerPixel
	size := bpp / info.Channels
	for i := 0; i < width*height; i++ {
		src := pix[i*bpp : (i+1)*bpp]
		out := dst.Pix[i*4 : i*4+4]
		out[3] = 0xFF
		for c := 0; c < info.Channels; c++ {
			out[c] = channel(src[c*size:(c+1)*size], info.IsFloat)
		}
	}
	return dst, nil
}

func channel(b []byte, isFloat bool) byte {
	if !isFloat {
		return b[0]
	}
	var v float32
	switch len(b) {
	case 2:
		v = float16.Frombits(binary.LittleEndian.Uint16(b)).Float32()
	case 4:
		v = math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	if math32.IsNaN(v) {
		return 0
	}
	return byte(min(max(v, 0), 1)*255 + 0.5)
}
