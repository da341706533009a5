// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package haldevice

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/texture/device"
)

// convertFormat maps a device.Format to the WebGPU format.
// Formats without a mapping (block-compressed ones included) return
// TextureFormatUndefined, which CreateTexture reports as unsupported.
func convertFormat(f device.Format, srgb bool) gputypes.TextureFormat {
	switch f {
	case device.FormatRGBA8:
		if srgb {
			return gputypes.TextureFormatRGBA8UnormSrgb
		}
		return gputypes.TextureFormatRGBA8Unorm
	case device.FormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float
	case device.FormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float
	case device.FormatR8:
		return gputypes.TextureFormatR8Unorm
	case device.FormatR16F:
		return gputypes.TextureFormatR16Float
	case device.FormatR32F:
		return gputypes.TextureFormatR32Float
	case device.FormatRG8:
		return gputypes.TextureFormatRG8Unorm
	case device.FormatRG16F:
		return gputypes.TextureFormatRG16Float
	case device.FormatRG32F:
		return gputypes.TextureFormatRG32Float
	case device.FormatDepth:
		return gputypes.TextureFormatDepth32Float
	default:
		return gputypes.TextureFormatUndefined
	}
}
