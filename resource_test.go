package texture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/device/memdevice"
	"github.com/gogpu/texture/resource"
)

// assertFallback checks that r aliases the placeholder for shape with
// empty geometry and that err is a *LoadError wrapping want.
func assertFallback(t *testing.T, r *Resource, shape Shape, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Name != r.Name() {
		t.Errorf("LoadError.Name = %q, want %q", le.Name, r.Name())
	}
	if r.Shape() != shape {
		t.Errorf("Shape() = %v, want %v", r.Shape(), shape)
	}
	if got, want := r.Handle(), r.sys.Defaults().For(shape); got != want || got == 0 {
		t.Errorf("Handle() = %d, want placeholder %d", got, want)
	}
	if r.Width() != 0 || r.Height() != 0 || r.Depth() != 0 {
		t.Errorf("geometry = %dx%dx%d, want 0x0x0", r.Width(), r.Height(), r.Depth())
	}
	if r.Format() != device.FormatRGBA8 || r.SRGB() || !r.HasMipMaps() {
		t.Errorf("metadata = %v srgb=%v mips=%v, want RGBA8 srgb=false mips=true",
			r.Format(), r.SRGB(), r.HasMipMaps())
	}
	if r.State() != StateFallback {
		t.Errorf("State() = %v, want Fallback", r.State())
	}
}

func TestNewResource(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	live := dev.LiveTextures()

	tests := []struct {
		name  string
		res   *Resource
		shape Shape
	}{
		{"2d", NewResource(sys, "a", 0), Shape2D},
		{"cube", NewResource(sys, "b", FlagCubemap), ShapeCube},
		{"empty 2d", NewEmpty(sys, "c", Shape2D), Shape2D},
		{"empty cube", NewEmpty(sys, "d", ShapeCube), ShapeCube},
		{"empty 3d", NewEmpty(sys, "e", Shape3D), Shape3D},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.res
			if r.Handle() == 0 || r.Handle() != sys.Defaults().For(tt.shape) {
				t.Errorf("Handle() = %d, want placeholder for %v", r.Handle(), tt.shape)
			}
			if r.Shape() != tt.shape {
				t.Errorf("Shape() = %v, want %v", r.Shape(), tt.shape)
			}
			if r.State() != StateEmpty || r.Loaded() {
				t.Errorf("State() = %v Loaded() = %v, want Empty and not loaded", r.State(), r.Loaded())
			}
			if r.Type() != resource.TypeTexture {
				t.Errorf("Type() = %v", r.Type())
			}
			if r.Width() != 0 || r.Format() != device.FormatRGBA8 {
				t.Errorf("metadata = %dw %v", r.Width(), r.Format())
			}
		})
	}
	if got := dev.LiveTextures(); got != live {
		t.Errorf("LiveTextures = %d, want %d (empty resources allocate nothing)", got, live)
	}
}

func TestLoadPNG(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	img := pngImage(8, 4)

	r := NewResource(sys, "tile.png", FlagSRGB)
	if err := r.Load(pngBytes(t, img)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if r.Handle() == 0 || sys.Defaults().Is(r.Handle()) {
		t.Fatalf("Handle() = %d, want an owned texture", r.Handle())
	}
	if r.Shape() != Shape2D || r.Width() != 8 || r.Height() != 4 || r.Depth() != 1 {
		t.Errorf("geometry = %v %dx%dx%d", r.Shape(), r.Width(), r.Height(), r.Depth())
	}
	if r.Format() != device.FormatRGBA8 || !r.SRGB() || !r.HasMipMaps() {
		t.Errorf("metadata = %v srgb=%v mips=%v", r.Format(), r.SRGB(), r.HasMipMaps())
	}
	if r.State() != StateLoaded || !r.Loaded() {
		t.Errorf("State() = %v", r.State())
	}
	if got := r.MipCount(); got != 3 {
		t.Errorf("MipCount() = %d, want 3", got)
	}

	desc, _ := dev.Describe(r.Handle())
	if !desc.SRGB || !desc.GenMipmaps || dev.Levels(r.Handle()) != 4 {
		t.Errorf("device desc = %+v levels=%d", desc, dev.Levels(r.Handle()))
	}
	if got := readSurface(t, dev, r.Handle(), 0, 0, len(img.Pix)); !bytes.Equal(got, img.Pix) {
		t.Error("mip 0 does not match the decoded image")
	}
	// Generated mip levels are non-zero.
	if got := readSurface(t, dev, r.Handle(), 0, 3, 4); got[3] != 255 {
		t.Errorf("mip 3 = %v, want generated opaque pixel", got)
	}
}

func TestLoadPNGNoMipmaps(t *testing.T) {
	sys, dev := newTestSystem(t, nil)

	r := NewResource(sys, "ui.png", FlagNoMipmaps)
	if err := r.Load(pngBytes(t, pngImage(8, 8))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.HasMipMaps() || r.MipCount() != 0 || r.SRGB() {
		t.Errorf("mips=%v MipCount=%d srgb=%v", r.HasMipMaps(), r.MipCount(), r.SRGB())
	}
	if levels := dev.Levels(r.Handle()); levels != 1 {
		t.Errorf("device levels = %d, want 1", levels)
	}
	if n := r.ElemCount(ElemImage); n != 1 {
		t.Errorf("ElemCount(ElemImage) = %d, want 1", n)
	}
}

func TestLoadRadiance(t *testing.T) {
	sys, _ := newTestSystem(t, nil)

	// 2x1 flat scanline, both pixels (1, 1, 1).
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 2\n")
	data = append(data, 128, 128, 128, 129, 128, 128, 128, 129)

	r := NewResource(sys, "sky.hdr", FlagSRGB)
	if err := r.Load(data); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Format() != device.FormatRGBA16F || r.Width() != 2 || r.Height() != 1 {
		t.Errorf("got %v %dx%d, want RGBA16F 2x1", r.Format(), r.Width(), r.Height())
	}
}

func TestLoadDDSCube(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	info := containerInfo(device.TexCube, device.FormatRGBA8, 8, 8, 1, 4)

	r := NewResource(sys, "env.dds", 0)
	if err := r.Load(ddsBytes(t, info)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if r.Shape() != ShapeCube {
		t.Errorf("Shape() = %v, want Cube (taken from the container)", r.Shape())
	}
	if !r.HasMipMaps() || r.MipCount() != 3 {
		t.Errorf("mips=%v MipCount=%d, want true 3", r.HasMipMaps(), r.MipCount())
	}
	desc, _ := dev.Describe(r.Handle())
	if desc.GenMipmaps {
		t.Error("container textures must not generate mips")
	}
	for _, s := range info.Surfaces {
		got := readSurface(t, dev, r.Handle(), s.Slice, s.Mip, len(s.Data))
		if !bytes.Equal(got, s.Data) {
			t.Errorf("surface (%d, %d) = %d..., want %d...", s.Slice, s.Mip, got[0], s.Data[0])
		}
	}
}

func TestLoadDDSVolume(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	info := containerInfo(device.Tex3D, device.FormatR8, 4, 4, 4, 1)

	r := NewResource(sys, "noise.dds", FlagCubemap)
	if err := r.Load(ddsBytes(t, info)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Shape() != Shape3D || r.Depth() != 4 || r.HasMipMaps() {
		t.Errorf("Shape() = %v Depth() = %d mips=%v", r.Shape(), r.Depth(), r.HasMipMaps())
	}
	if got := readSurface(t, dev, r.Handle(), 0, 0, 64); !bytes.Equal(got, info.Surfaces[0].Data) {
		t.Error("volume data mismatch")
	}
}

func TestLoadDDSTallVolume(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	info := containerInfo(device.Tex3D, device.FormatRGBA8, 4, 4, 16, 5)

	r := NewResource(sys, "fog.dds", 0)
	if err := r.Load(ddsBytes(t, info)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.State() != StateLoaded || dev.Levels(r.Handle()) != 5 {
		t.Fatalf("State() = %v, device levels = %d, want Loaded with 5", r.State(), dev.Levels(r.Handle()))
	}
	last := info.Surfaces[len(info.Surfaces)-1]
	if got := readSurface(t, dev, r.Handle(), 0, 4, len(last.Data)); !bytes.Equal(got, last.Data) {
		t.Errorf("mip 4 = %v, want %v", got, last.Data)
	}
}

func TestLoadDDSBlockCompressed(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	info := containerInfo(device.Tex2D, device.FormatBC1, 16, 16, 1, 5)

	r := NewResource(sys, "albedo.dds", 0)
	if err := r.Load(ddsBytes(t, info)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Format() != device.FormatBC1 || r.MipCount() != 4 {
		t.Errorf("Format() = %v MipCount() = %d", r.Format(), r.MipCount())
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name    string
		devOpts []memdevice.Option
		flags   Flags
		data    func(t *testing.T) []byte
		shape   Shape
		want    error
		log     string
	}{
		{
			name:  "corrupt dds",
			data:  func(*testing.T) []byte { return append([]byte("DDS "), make([]byte, 40)...) },
			shape: Shape2D,
			want:  ErrUnsupportedContainer,
			log:   "corrupt DDS/KTX container",
		},
		{
			name:  "corrupt cube dds keeps cube shape",
			flags: FlagCubemap,
			data:  func(*testing.T) []byte { return []byte("DDS |") },
			shape: ShapeCube,
			want:  ErrUnsupportedContainer,
			log:   "corrupt DDS/KTX container",
		},
		{
			name:  "unknown container format",
			data:  unknownFormatDDS,
			shape: Shape2D,
			want:  ErrUnsupportedPixelFormat,
			log:   "unsupported container pixel format",
		},
		{
			name: "unknown cube container format",
			data: func(t *testing.T) []byte {
				data := ddsBytes(t, containerInfo(device.TexCube, device.FormatRGBA16F, 4, 4, 1, 1))
				copy(data[4+72+8:], []byte{36, 0, 0, 0})
				return data
			},
			shape: ShapeCube,
			want:  ErrUnsupportedPixelFormat,
			log:   "unsupported container pixel format",
		},
		{
			name: "dds with huge extents",
			data: func(t *testing.T) []byte {
				data := ddsBytes(t, containerInfo(device.Tex2D, device.FormatR8, 4, 4, 1, 1))
				binary.LittleEndian.PutUint32(data[4+8:], 0xC0000000)
				binary.LittleEndian.PutUint32(data[4+12:], 0xC0000000)
				return data
			},
			shape: Shape2D,
			want:  ErrUnsupportedContainer,
			log:   "corrupt DDS/KTX container",
		},
		{
			name: "radiance with huge resolution",
			data: func(*testing.T) []byte {
				return []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1000000000 +X 1000000000\n")
			},
			shape: Shape2D,
			want:  ErrInvalidImageFormat,
			log:   "invalid image format (",
		},
		{
			name:  "garbage image",
			data:  func(*testing.T) []byte { return []byte("definitely not a picture") },
			shape: Shape2D,
			want:  ErrInvalidImageFormat,
			log:   "invalid image format (",
		},
		{
			name:  "truncated png",
			data:  func(t *testing.T) []byte { return pngBytes(t, pngImage(4, 4))[:40] },
			shape: Shape2D,
			want:  ErrInvalidImageFormat,
			log:   "invalid image format (png:",
		},
		{
			name:    "device rejects container format",
			devOpts: []memdevice.Option{memdevice.WithRejectedFormats(device.FormatBC1)},
			data: func(t *testing.T) []byte {
				return ddsBytes(t, containerInfo(device.Tex2D, device.FormatBC1, 8, 8, 1, 1))
			},
			shape: Shape2D,
			want:  ErrUnsupportedPixelFormat,
			log:   "unsupported container pixel format",
		},
		{
			name:    "device without 3D",
			devOpts: []memdevice.Option{memdevice.WithCaps(device.Caps{TexCompressed: true})},
			data: func(t *testing.T) []byte {
				return ddsBytes(t, containerInfo(device.Tex3D, device.FormatRGBA8, 2, 2, 2, 1))
			},
			shape: Shape3D,
			want:  ErrUnsupportedPixelFormat,
			log:   "unsupported container pixel format",
		},
		{
			name:    "device rejects image format",
			devOpts: []memdevice.Option{memdevice.WithRejectedFormats(device.FormatRGBA16F)},
			data: func(*testing.T) []byte {
				return append([]byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 1\n"), 128, 128, 128, 129)
			},
			shape: Shape2D,
			want:  ErrUnsupportedPixelFormat,
			log:   "failed to create texture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			sys, dev := newTestSystem(t, tt.devOpts, captureLogger(&logs))
			live := dev.LiveTextures()

			r := NewResource(sys, "bad", tt.flags)
			err := r.Load(tt.data(t))
			assertFallback(t, r, tt.shape, err, tt.want)

			if got := dev.LiveTextures(); got != live {
				t.Errorf("LiveTextures = %d, want %d", got, live)
			}
			if want := "Texture resource 'bad': " + tt.log; !strings.Contains(logs.String(), want) {
				t.Errorf("log missing %q, got: %s", want, logs.String())
			}
			if !r.Loaded() {
				t.Error("a failed load still counts as loaded until Unload")
			}
		})
	}
}

func TestLoadRejections(t *testing.T) {
	sys, dev := newTestSystem(t, nil)

	r := NewResource(sys, "r", 0)
	if err := r.Load(nil); !errors.Is(err, resource.ErrNoData) {
		t.Errorf("Load(nil) = %v, want ErrNoData", err)
	}
	if r.State() != StateEmpty || r.Handle() != sys.Defaults().Tex2D {
		t.Errorf("empty payload changed state to %v", r.State())
	}

	data := pngBytes(t, pngImage(2, 2))
	if err := r.Load(data); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tex := r.Handle()
	err := r.Load(data)
	if !errors.Is(err, resource.ErrAlreadyLoaded) {
		t.Errorf("second Load = %v, want ErrAlreadyLoaded", err)
	}
	var le *LoadError
	if errors.As(err, &le) {
		t.Error("rejections must not be LoadErrors")
	}
	if r.Handle() != tex || !dev.IsLive(tex) {
		t.Error("rejected Load touched the texture")
	}
}

func TestUnloadReload(t *testing.T) {
	sys, dev := newTestSystem(t, nil)

	r := NewResource(sys, "r", 0)
	if err := r.Load(pngBytes(t, pngImage(4, 4))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	first := r.Handle()

	r.Unload()
	if dev.IsLive(first) {
		t.Error("Unload did not destroy the texture")
	}
	if r.State() != StateEmpty || r.Loaded() || r.Handle() != sys.Defaults().Tex2D || r.Width() != 0 {
		t.Errorf("after Unload: %v", r)
	}

	if err := r.Load(pngBytes(t, pngImage(2, 2))); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if r.Width() != 2 || r.State() != StateLoaded {
		t.Errorf("after reload: %v", r)
	}
}

func TestUnloadAfterFallback(t *testing.T) {
	sys, _ := newTestSystem(t, nil)

	r := NewResource(sys, "r", 0)
	if err := r.Load([]byte("garbage")); err == nil {
		t.Fatal("expected error")
	}
	r.Unload()
	if err := r.Load(pngBytes(t, pngImage(2, 2))); err != nil {
		t.Fatalf("Load after Unload failed: %v", err)
	}
	if r.State() != StateLoaded {
		t.Errorf("State() = %v", r.State())
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name          string
		w, h, d       int
		format        device.Format
		flags         Flags
		shape         Shape
		mipCount      int
		elems         int
		srgb          bool
		wantDepth     int
		devSlices     int
		devLevels     int
		devType       device.TextureType
		devGenMipmaps bool
	}{
		{"2d mips", 256, 128, 1, device.FormatRGBA8, 0, Shape2D, 8, 9, false, 1, 1, 9, device.Tex2D, true},
		{"2d no mips", 256, 128, 1, device.FormatRGBA8, FlagNoMipmaps, Shape2D, 0, 1, false, 1, 1, 1, device.Tex2D, false},
		{"cube", 256, 256, 1, device.FormatRGBA16F, FlagCubemap | FlagSRGB, ShapeCube, 8, 54, true, 1, 6, 9, device.TexCube, true},
		{"volume wins over cube", 8, 8, 4, device.FormatR8, FlagCubemap | FlagNoMipmaps, Shape3D, 0, 1, false, 4, 1, 1, device.Tex3D, false},
		{"zero depth", 4, 4, 0, device.FormatRG8, FlagNoMipmaps, Shape2D, 0, 1, false, 1, 1, 1, device.Tex2D, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, dev := newTestSystem(t, nil)

			r, err := Create(sys, "tex", tt.w, tt.h, tt.d, tt.format, tt.flags)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if r.Handle() == 0 || sys.Defaults().Is(r.Handle()) {
				t.Fatalf("Handle() = %d, want owned texture", r.Handle())
			}
			if r.Shape() != tt.shape || r.Depth() != tt.wantDepth {
				t.Errorf("Shape() = %v Depth() = %d, want %v %d", r.Shape(), r.Depth(), tt.shape, tt.wantDepth)
			}
			if got := r.MipCount(); got != tt.mipCount {
				t.Errorf("MipCount() = %d, want %d", got, tt.mipCount)
			}
			if got := r.ElemCount(ElemImage); got != tt.elems {
				t.Errorf("ElemCount(ElemImage) = %d, want %d", got, tt.elems)
			}
			if r.SRGB() != tt.srgb || r.State() != StateLoaded || !r.Loaded() || r.IsRenderTarget() {
				t.Errorf("srgb=%v state=%v loaded=%v rt=%v", r.SRGB(), r.State(), r.Loaded(), r.IsRenderTarget())
			}

			desc, _ := dev.Describe(r.Handle())
			if desc.Type != tt.devType || desc.Type.Slices() != tt.devSlices || desc.GenMipmaps != tt.devGenMipmaps {
				t.Errorf("device desc = %+v", desc)
			}
			if got := dev.Levels(r.Handle()); got != tt.devLevels {
				t.Errorf("device levels = %d, want %d", got, tt.devLevels)
			}
			size := dev.CalcTextureSize(tt.format, tt.w, tt.h, tt.wantDepth)
			if got := readSurface(t, dev, r.Handle(), 0, 0, size); !bytes.Equal(got, make([]byte, size)) {
				t.Error("created texture is not zero filled")
			}
		})
	}
}

func TestCreateFailure(t *testing.T) {
	tests := []struct {
		name    string
		devOpts []memdevice.Option
		w, h, d int
		format  device.Format
		flags   Flags
		shape   Shape
	}{
		{"rejected format", []memdevice.Option{memdevice.WithRejectedFormats(device.FormatRGBA32F)},
			4, 4, 1, device.FormatRGBA32F, 0, Shape2D},
		{"non-square cube", nil, 8, 4, 1, device.FormatRGBA8, FlagCubemap, ShapeCube},
		{"no 3D support", []memdevice.Option{memdevice.WithCaps(device.Caps{})}, 4, 4, 4, device.FormatRGBA8, 0, Shape3D},
		{"zero size", nil, 0, 0, 1, device.FormatRGBA8, 0, Shape2D},
		{"compressed render target", nil, 16, 16, 1, device.FormatBC3, FlagRenderTarget, Shape2D},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, dev := newTestSystem(t, tt.devOpts)
			live := dev.LiveTextures()

			r, err := Create(sys, "rt", tt.w, tt.h, tt.d, tt.format, tt.flags)
			if r == nil {
				t.Fatal("Create returned a nil resource")
			}
			assertFallback(t, r, tt.shape, err, ErrUnsupportedPixelFormat)
			if !errors.Is(err, device.ErrUnsupportedFormat) && !errors.Is(err, device.ErrInvalidDimensions) &&
				!errors.Is(err, device.ErrUnsupportedType) {
				t.Errorf("err = %v, want the device cause wrapped", err)
			}
			if got := dev.LiveTextures(); got != live {
				t.Errorf("LiveTextures = %d, want %d", got, live)
			}
		})
	}
}

func TestCreateRenderTarget(t *testing.T) {
	sys, dev := newTestSystem(t, nil)

	r, err := Create(sys, "gbuffer", 512, 512, 1, device.FormatRGBA8, FlagRenderTarget|FlagCubemap|FlagSRGB)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !r.IsRenderTarget() || r.RenderBuffer() == 0 {
		t.Fatal("expected a render buffer backed texture")
	}
	if r.HasMipMaps() || r.SRGB() || r.Shape() != Shape2D || r.Depth() != 1 {
		t.Errorf("mips=%v srgb=%v shape=%v depth=%d", r.HasMipMaps(), r.SRGB(), r.Shape(), r.Depth())
	}
	if !r.Flags().Has(FlagNoMipmaps) || r.Flags().Has(FlagCubemap) || r.Flags().Has(FlagSRGB) {
		t.Errorf("Flags() = %b", r.Flags())
	}
	if r.Handle() != dev.RenderBufferTexture(r.RenderBuffer(), 0) {
		t.Error("Handle() is not the color attachment")
	}
	if r.MipCount() != 0 || r.ElemCount(ElemImage) != 1 {
		t.Errorf("MipCount() = %d ElemCount = %d", r.MipCount(), r.ElemCount(ElemImage))
	}

	rb, tex := r.RenderBuffer(), r.Handle()
	r.Release()
	if dev.IsRenderBufferLive(rb) || dev.IsLive(tex) {
		t.Error("Release left the render buffer alive")
	}
	if dev.DestroyCalls(tex) != 0 {
		t.Error("attachment destroyed directly instead of through its render buffer")
	}
	if r.Handle() != 0 || r.RenderBuffer() != 0 {
		t.Errorf("handles after Release = %d, %d", r.Handle(), r.RenderBuffer())
	}
}

func TestElemQueries(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	r, err := Create(sys, "cube", 256, 256, 1, device.FormatRGBA16F, FlagCubemap)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name  string
		elem  resource.Elem
		idx   int
		param resource.Param
		want  int
	}{
		{"format", ElemTexture, 0, ParamFormat, int(device.FormatRGBA16F)},
		{"slices", ElemTexture, 0, ParamSliceCount, 6},
		{"face 0 mip 0 width", ElemImage, 0, ParamWidth, 256},
		{"face 0 mip 8 height", ElemImage, 8, ParamHeight, 1},
		{"face 1 mip 1 width", ElemImage, 10, ParamWidth, 128},
		{"face 5 mip 3 height", ElemImage, 5*9 + 3, ParamHeight, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ElemParamI(tt.elem, tt.idx, tt.param)
			if err != nil {
				t.Fatalf("ElemParamI failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ElemParamI(%d, %d, %d) = %d, want %d", tt.elem, tt.idx, tt.param, got, tt.want)
			}
		})
	}

	if n := r.ElemCount(ElemTexture); n != 1 {
		t.Errorf("ElemCount(ElemTexture) = %d, want 1", n)
	}
	if n := r.ElemCount(999); n != 0 {
		t.Errorf("ElemCount(999) = %d, want 0", n)
	}

	bad := []struct {
		elem  resource.Elem
		idx   int
		param resource.Param
	}{
		{ElemImage, 54, ParamWidth},
		{ElemImage, -1, ParamWidth},
		{ElemImage, 0, ParamFormat},
		{ElemTexture, 0, ParamWidth},
		{999, 0, ParamFormat},
	}
	for _, b := range bad {
		if _, err := r.ElemParamI(b.elem, b.idx, b.param); !errors.Is(err, resource.ErrUnknownElement) {
			t.Errorf("ElemParamI(%d, %d, %d) = %v, want ErrUnknownElement", b.elem, b.idx, b.param, err)
		}
	}
}

func TestReleaseNeverDestroysPlaceholders(t *testing.T) {
	sys, dev := newTestSystem(t, nil)
	d := sys.Defaults()

	empty2D := NewResource(sys, "a", 0)
	emptyCube := NewResource(sys, "b", FlagCubemap)
	empty3D := NewEmpty(sys, "c", Shape3D)
	failed := NewResource(sys, "d", 0)
	_ = failed.Load([]byte("garbage"))

	for _, r := range []*Resource{empty2D, emptyCube, empty3D, failed} {
		r.Unload()
		r.Release()
		r.Release()
		if r.Handle() != 0 || r.State() != StateUninitialized {
			t.Errorf("%s: Handle() = %d State() = %v", r.Name(), r.Handle(), r.State())
		}
	}
	for _, tex := range []device.Texture{d.Tex2D, d.Cube, d.Tex3D} {
		if n := dev.DestroyCalls(tex); n != 0 {
			t.Errorf("placeholder %d destroyed %d times", tex, n)
		}
	}
}

func TestReleaseOwnedTexture(t *testing.T) {
	sys, dev := newTestSystem(t, nil)

	r := NewResource(sys, "r", 0)
	if err := r.Load(pngBytes(t, pngImage(2, 2))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tex := r.Handle()
	r.Release()
	r.Release()

	if n := dev.DestroyCalls(tex); n != 1 {
		t.Errorf("DestroyCalls = %d, want 1", n)
	}
	if r.Handle() != 0 || r.Loaded() {
		t.Error("Release did not clear the resource")
	}
}

func TestResourceString(t *testing.T) {
	sys, _ := newTestSystem(t, nil)
	r, _ := Create(sys, "hud", 8, 4, 1, device.FormatRGBA8, 0)
	if got := r.String(); !strings.Contains(got, "hud") || !strings.Contains(got, "8x4x1") ||
		!strings.Contains(got, "Loaded") {
		t.Errorf("String() = %q", got)
	}
}

func TestShapeAndStateString(t *testing.T) {
	shapes := map[Shape]string{Shape2D: "2D", ShapeCube: "Cube", Shape3D: "3D", Shape(9): "Shape(9)"}
	for s, want := range shapes {
		if got := s.String(); got != want {
			t.Errorf("Shape(%d).String() = %q, want %q", s, got, want)
		}
	}
	states := map[State]string{
		StateUninitialized: "Uninitialized", StateEmpty: "Empty",
		StateLoaded: "Loaded", StateFallback: "Fallback", State(9): "State(9)",
	}
	for s, want := range states {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
