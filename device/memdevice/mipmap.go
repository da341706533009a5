// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package memdevice

import "github.com/gogpu/texture/device"

// generateMipmaps rebuilds levels 1..n of a slice from level 0.
//
// Uses a box filter (2x2 average) for formats with one byte per channel.
// Other formats, and volume textures, keep whatever was uploaded to their
// lower levels.
func (t *texture) generateMipmaps(slice int) {
	info := t.desc.Format.Info()
	if info.BlockBytes > 0 || info.IsFloat || info.BytesPerPixel != info.Channels {
		return
	}
	if t.desc.Type == device.Tex3D {
		return
	}

	for m := 1; m < t.levels; m++ {
		src := t.surfaces[slice*t.levels+m-1]
		dst := t.surfaces[slice*t.levels+m]
		downsample(src, device.MipExtent(t.desc.Width, m-1), device.MipExtent(t.desc.Height, m-1),
			dst, info.Channels)
	}
}

// downsample writes a half-size version of src into dst using a box filter.
// Odd source dimensions clamp the 2x2 footprint to the last row or column.
func downsample(src []byte, srcW, srcH int, dst []byte, channels int) {
	dstW := max(1, srcW/2)
	dstH := max(1, srcH/2)

	at := func(x, y, c int) uint16 {
		return uint16(src[(y*srcW+x)*channels+c])
	}

	for dy := 0; dy < dstH; dy++ {
		for dx := 0; dx < dstW; dx++ {
			sx := dx * 2
			sy := dy * 2
			sx1 := min(sx+1, srcW-1)
			sy1 := min(sy+1, srcH-1)

			for c := 0; c < channels; c++ {
				sum := at(sx, sy, c) + at(sx1, sy, c) + at(sx, sy1, c) + at(sx1, sy1, c)
				dst[(dy*dstW+dx)*channels+c] = byte(sum / 4)
			}
		}
	}
}
