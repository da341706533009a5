// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package imagecodec decodes flat single-surface images into RGBA pixel
// buffers ready for texture upload.
//
// Low dynamic range images (PNG, JPEG, GIF, BMP, TIFF, WebP, TGA) decode
// to 8-bit non-premultiplied RGBA. Radiance HDR images decode to RGBA
// half floats. Both paths always produce 4 channels.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/gogpu/texture/device"
)

var (
	// ErrEmptyData is returned when Decode receives no bytes.
	ErrEmptyData = errors.New("imagecodec: empty data")

	// ErrUnknownFormat is returned when no codec accepts the payload.
	ErrUnknownFormat = errors.New("imagecodec: unknown image format")
)

// Image is a decoded image with tightly packed rows.
type Image struct {
	Width  int
	Height int

	// HDR is set for half float pixels (8 bytes per pixel); otherwise
	// pixels are RGBA8 (4 bytes per pixel).
	HDR bool

	Pix []byte
}

// Format returns the device format of the pixel buffer.
func (img *Image) Format() device.Format {
	if img.HDR {
		return device.FormatRGBA16F
	}
	return device.FormatRGBA8
}

type decodeFunc func(io.Reader) (image.Image, error)

// codecs maps filetype matchers to decoders. TGA has no signature and is
// tried last.
var codecs = []struct {
	name   string
	match  func([]byte) bool
	decode decodeFunc
}{
	{"png", matchers.Png, png.Decode},
	{"jpeg", matchers.Jpeg, jpeg.Decode},
	{"gif", matchers.Gif, gif.Decode},
	{"bmp", matchers.Bmp, bmp.Decode},
	{"tiff", matchers.Tiff, tiff.Decode},
	{"webp", matchers.Webp, webp.Decode},
}

// Decode decodes data. The error carries the codec's diagnostic.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if IsHDR(data) {
		return decodeRadiance(data)
	}

	for _, c := range codecs {
		if !c.match(data) {
			continue
		}
		src, err := c.decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		return fromImage(src), nil
	}

	src, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w (%s): %v", ErrUnknownFormat, kind.Extension, err)
	}
	return fromImage(src), nil
}

// fromImage converts src to tightly packed non-premultiplied RGBA8.
func fromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if n, ok := src.(*image.NRGBA); ok && n.Stride == 4*w {
		off := n.PixOffset(b.Min.X, b.Min.Y)
		return &Image{Width: w, Height: h, Pix: n.Pix[off : off+4*w*h]}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Image{Width: w, Height: h, Pix: dst.Pix}
}
