package texture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"testing"

	"github.com/gogpu/texture/codec/container"
	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/device/memdevice"
)

// newTestSystem creates a System on a fresh memdevice.
func newTestSystem(t *testing.T, devOpts []memdevice.Option, opts ...Option) (*System, *memdevice.Device) {
	t.Helper()
	dev := memdevice.New(devOpts...)
	sys, err := NewSystem(dev, opts...)
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	t.Cleanup(sys.Close)
	return sys, dev
}

// captureLogger returns a System option logging into buf.
func captureLogger(buf *bytes.Buffer) Option {
	return WithLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// pngImage returns a w x h opaque image where pixel (x, y) is
// {x*10, y*10, 200, 255}.
func pngImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

// containerInfo builds container info where every byte of surface
// (slice, mip) equals slice*16 + mip + 1.
func containerInfo(typ device.TextureType, format device.Format, w, h, d, mips int) *container.Info {
	info := &container.Info{Width: w, Height: h, Depth: d, Format: format, MipCount: mips, Type: typ}
	for slice := 0; slice < typ.Slices(); slice++ {
		for mip := 0; mip < mips; mip++ {
			depth := 1
			if typ == device.Tex3D {
				depth = device.MipExtent(d, mip)
			}
			size := device.SurfaceSize(format, device.MipExtent(w, mip), device.MipExtent(h, mip), depth)
			info.Surfaces = append(info.Surfaces, container.Surface{
				Mip:   mip,
				Slice: slice,
				Data:  bytes.Repeat([]byte{byte(slice*16 + mip + 1)}, size),
			})
		}
	}
	return info
}

func ddsBytes(t *testing.T, info *container.Info) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := container.WriteDDS(&buf, info); err != nil {
		t.Fatalf("WriteDDS failed: %v", err)
	}
	return buf.Bytes()
}

// unknownFormatDDS returns a DDS whose FourCC is D3DFMT_A16B16G16R16,
// which has no device format.
func unknownFormatDDS(t *testing.T) []byte {
	t.Helper()
	data := ddsBytes(t, containerInfo(device.Tex2D, device.FormatRGBA16F, 4, 4, 1, 1))
	const fourCCOffset = 4 + 72 + 8
	binary.LittleEndian.PutUint32(data[fourCCOffset:], 36)
	return data
}

// readSurface downloads a surface from the device.
func readSurface(t *testing.T, dev *memdevice.Device, tex device.Texture, slice, mip, size int) []byte {
	t.Helper()
	out := make([]byte, size)
	if err := dev.TextureData(tex, slice, mip, out); err != nil {
		t.Fatalf("TextureData(%d, %d, %d) failed: %v", tex, slice, mip, err)
	}
	return out
}
