// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package memdevice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/texture/device"
)

func rgba(w, h int, r, g, b, a byte) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, a
	}
	return buf
}

func TestCreateTexture(t *testing.T) {
	d := New()

	tests := []struct {
		name    string
		desc    device.TextureDesc
		wantErr error
		levels  int
	}{
		{
			name:   "2d with mips",
			desc:   device.TextureDesc{Type: device.Tex2D, Width: 256, Height: 128, Depth: 1, Format: device.FormatRGBA8, Mipmaps: true},
			levels: 9,
		},
		{
			name:   "2d without mips",
			desc:   device.TextureDesc{Type: device.Tex2D, Width: 64, Height: 64, Depth: 1, Format: device.FormatRGBA8},
			levels: 1,
		},
		{
			name:   "tall volume",
			desc:   device.TextureDesc{Type: device.Tex3D, Width: 4, Height: 4, Depth: 16, Format: device.FormatRGBA8, Mipmaps: true},
			levels: 5,
		},
		{
			name:    "unknown format",
			desc:    device.TextureDesc{Type: device.Tex2D, Width: 4, Height: 4, Depth: 1, Format: device.FormatUnknown},
			wantErr: device.ErrUnsupportedFormat,
		},
		{
			name:    "zero size",
			desc:    device.TextureDesc{Type: device.Tex2D, Width: 0, Height: 4, Depth: 1, Format: device.FormatRGBA8},
			wantErr: device.ErrInvalidDimensions,
		},
		{
			name:    "non-square cube",
			desc:    device.TextureDesc{Type: device.TexCube, Width: 8, Height: 4, Depth: 1, Format: device.FormatRGBA8},
			wantErr: device.ErrInvalidDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.CreateTexture(tt.desc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if tex != 0 {
					t.Errorf("handle = %d, want 0", tex)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTexture: %v", err)
			}
			if tex == 0 {
				t.Fatal("handle is zero")
			}
			if got := d.Levels(tex); got != tt.levels {
				t.Errorf("Levels = %d, want %d", got, tt.levels)
			}
		})
	}
}

func TestRejectedFormatsAndCaps(t *testing.T) {
	d := New(
		WithRejectedFormats(device.FormatBC7),
		WithCaps(device.Caps{Tex3D: false, TexCompressed: true}),
	)

	if _, err := d.CreateTexture(device.TextureDesc{Width: 4, Height: 4, Depth: 1, Format: device.FormatBC7}); !errors.Is(err, device.ErrUnsupportedFormat) {
		t.Errorf("BC7 err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := d.CreateTexture(device.TextureDesc{Type: device.Tex3D, Width: 4, Height: 4, Depth: 4, Format: device.FormatRGBA8}); !errors.Is(err, device.ErrUnsupportedType) {
		t.Errorf("3D err = %v, want ErrUnsupportedType", err)
	}
	if d.Caps().MaxTextureSize != defaultMaxTextureSize {
		t.Errorf("MaxTextureSize = %d, want default", d.Caps().MaxTextureSize)
	}
}

func TestUploadReadBack(t *testing.T) {
	d := New()
	tex, err := d.CreateTexture(device.TextureDesc{Type: device.TexCube, Width: 4, Height: 4, Depth: 1, Format: device.FormatRGBA8})
	if err != nil {
		t.Fatal(err)
	}

	face := rgba(4, 4, 10, 20, 30, 40)
	if err := d.UploadTextureData(tex, 5, 0, face); err != nil {
		t.Fatalf("upload: %v", err)
	}

	got := make([]byte, 64)
	if err := d.TextureData(tex, 5, 0, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, face) {
		t.Error("read back differs from upload")
	}

	if err := d.TextureData(tex, 6, 0, got); !errors.Is(err, device.ErrSurfaceOutOfRange) {
		t.Errorf("slice 6 err = %v, want ErrSurfaceOutOfRange", err)
	}
	if err := d.UploadTextureData(tex, 0, 0, face[:10]); !errors.Is(err, device.ErrBufferSize) {
		t.Errorf("short upload err = %v, want ErrBufferSize", err)
	}
	if err := d.UploadTextureData(999, 0, 0, face); !errors.Is(err, device.ErrInvalidHandle) {
		t.Errorf("bad handle err = %v, want ErrInvalidHandle", err)
	}
}

func TestGenMipmaps(t *testing.T) {
	d := New()
	tex, err := d.CreateTexture(device.TextureDesc{
		Type: device.Tex2D, Width: 4, Height: 2, Depth: 1,
		Format: device.FormatRGBA8, Mipmaps: true, GenMipmaps: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Left half 200, right half 100.
	base := make([]byte, 4*2*4)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := byte(200)
			if x >= 2 {
				v = 100
			}
			i := (y*4 + x) * 4
			base[i], base[i+1], base[i+2], base[i+3] = v, v, v, 255
		}
	}
	if err := d.UploadTextureData(tex, 0, 0, base); err != nil {
		t.Fatal(err)
	}

	mip1 := make([]byte, 2*1*4)
	if err := d.TextureData(tex, 0, 1, mip1); err != nil {
		t.Fatal(err)
	}
	want := []byte{200, 200, 200, 255, 100, 100, 100, 255}
	if !bytes.Equal(mip1, want) {
		t.Errorf("mip1 = %v, want %v", mip1, want)
	}

	mip2 := make([]byte, 4)
	if err := d.TextureData(tex, 0, 2, mip2); err != nil {
		t.Fatal(err)
	}
	if mip2[0] != 150 || mip2[3] != 255 {
		t.Errorf("mip2 = %v, want [150 150 150 255]", mip2)
	}
}

func TestRenderBuffer(t *testing.T) {
	d := New()
	rb, err := d.CreateRenderBuffer(device.RenderBufferDesc{Width: 32, Height: 16, Format: device.FormatRGBA8, Depth: true})
	if err != nil {
		t.Fatal(err)
	}
	tex := d.RenderBufferTexture(rb, 0)
	if tex == 0 {
		t.Fatal("color attachment is zero")
	}
	if d.RenderBufferTexture(rb, 1) != 0 {
		t.Error("attachment 1 should not exist")
	}

	// Attachments are owned by the render buffer.
	d.DestroyTexture(tex)
	if !d.IsLive(tex) {
		t.Error("DestroyTexture released a render buffer attachment")
	}

	d.DestroyRenderBuffer(rb)
	if d.IsLive(tex) || d.IsRenderBufferLive(rb) {
		t.Error("render buffer not released")
	}
	if d.LiveTextures() != 0 {
		t.Errorf("LiveTextures = %d, want 0", d.LiveTextures())
	}
	if _, err := d.CreateRenderBuffer(device.RenderBufferDesc{Width: 4, Height: 4, Format: device.FormatBC1}); err == nil {
		t.Error("compressed render buffer accepted")
	}
}

func TestDestroyAccounting(t *testing.T) {
	d := New()
	tex, _ := d.CreateTexture(device.TextureDesc{Width: 2, Height: 2, Depth: 1, Format: device.FormatR8})
	d.DestroyTexture(tex)
	d.DestroyTexture(tex)

	if got := d.DestroyCalls(tex); got != 2 {
		t.Errorf("DestroyCalls = %d, want 2", got)
	}
	if got := d.Stats().TexturesDestroyed; got != 1 {
		t.Errorf("TexturesDestroyed = %d, want 1", got)
	}
}
