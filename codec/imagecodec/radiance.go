// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imagecodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/x448/float16"
)

// ErrRadiance is returned for malformed Radiance HDR data.
var ErrRadiance = errors.New("imagecodec: invalid radiance data")

const (
	radianceMagic = "#?RADIANCE"
	rgbeMagic     = "#?RGBE"

	// MaxRadianceExtent bounds the width and height of a Radiance image.
	MaxRadianceExtent = 1 << 15

	// MaxRadiancePixels bounds width*height of a Radiance image.
	MaxRadiancePixels = 1 << 24

	// New-style RLE scanlines are only used for widths in this range.
	rleMinWidth = 8
	rleMaxWidth = 0x7FFF
)

// IsHDR reports whether data is a Radiance RGBE image.
func IsHDR(data []byte) bool {
	return bytes.HasPrefix(data, []byte(radianceMagic)) || bytes.HasPrefix(data, []byte(rgbeMagic))
}

// decodeRadiance decodes a Radiance image to RGBA half floats with
// alpha 1.
//
// The header is validated here and rewritten in the canonical -Y +X form
// before the pixel data is handed to the rgbe codec. +Y images are flipped
// afterwards.
func decodeRadiance(data []byte) (*Image, error) {
	br := bytes.NewReader(data)
	r := bufio.NewReader(br)

	if err := readRadianceHeader(r); err != nil {
		return nil, err
	}
	w, h, flipY, err := readRadianceResolution(r)
	if err != nil {
		return nil, err
	}
	if need := h * minScanlineSize(w); br.Len()+r.Buffered() < need {
		return nil, fmt.Errorf("%w: %d scanlines of width %d need at least %d bytes", ErrRadiance, h, w, need)
	}

	header := fmt.Sprintf("%s\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", radianceMagic, h, w)
	src, err := rgbe.Decode(io.MultiReader(strings.NewReader(header), r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRadiance, err)
	}
	m, ok := src.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected image type %T", ErrRadiance, src)
	}
	b := m.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("%w: decoded %dx%d, header says %dx%d", ErrRadiance, b.Dx(), b.Dy(), w, h)
	}

	img := &Image{Width: w, Height: h, HDR: true, Pix: make([]byte, w*h*8)}
	one := float16.Fromfloat32(1).Bits()

	for y := 0; y < h; y++ {
		row := y
		if flipY {
			row = h - 1 - y
		}
		out := img.Pix[row*w*8 : (row+1)*w*8]
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := m.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
			p := out[x*8 : x*8+8]
			binary.LittleEndian.PutUint16(p[0:], float16.Fromfloat32(float32(cr)).Bits())
			binary.LittleEndian.PutUint16(p[2:], float16.Fromfloat32(float32(cg)).Bits())
			binary.LittleEndian.PutUint16(p[4:], float16.Fromfloat32(float32(cb)).Bits())
			binary.LittleEndian.PutUint16(p[6:], one)
		}
	}
	return img, nil
}

func readRadianceHeader(r *bufio.Reader) error {
	first := true
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("%w: header: %v", ErrRadiance, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if first {
			if !strings.HasPrefix(line, radianceMagic) && !strings.HasPrefix(line, rgbeMagic) {
				return fmt.Errorf("%w: missing signature", ErrRadiance)
			}
			first = false
			continue
		}
		if line == "" {
			return nil
		}
		if format, ok := strings.CutPrefix(line, "FORMAT="); ok && format != "32-bit_rle_rgbe" {
			return fmt.Errorf("%w: unsupported format %q", ErrRadiance, format)
		}
	}
}

// readRadianceResolution parses "-Y h +X w" or "+Y h +X w".
func readRadianceResolution(r *bufio.Reader) (w, h int, flipY bool, err error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: resolution: %v", ErrRadiance, err)
	}
	line = strings.TrimSpace(line)

	var ySign, xSign string
	if _, err := fmt.Sscanf(line, "%2s %d %2s %d", &ySign, &h, &xSign, &w); err != nil {
		return 0, 0, false, fmt.Errorf("%w: resolution %q: %v", ErrRadiance, line, err)
	}
	if (ySign != "-Y" && ySign != "+Y") || xSign != "+X" || w <= 0 || h <= 0 {
		return 0, 0, false, fmt.Errorf("%w: unsupported orientation %q", ErrRadiance, line)
	}
	if w > MaxRadianceExtent || h > MaxRadianceExtent || w*h > MaxRadiancePixels {
		return 0, 0, false, fmt.Errorf("%w: resolution %dx%d too large", ErrRadiance, w, h)
	}
	return w, h, ySign == "+Y", nil
}

// minScanlineSize returns the fewest bytes a scanline of width w can be
// stored in.
func minScanlineSize(w int) int {
	if w < rleMinWidth || w > rleMaxWidth {
		return w * 4
	}
	// Four channels of runs of up to 127 pixels, two bytes each.
	return 4 + 4*2*((w+126)/127)
}
