package texture

import (
	"fmt"

	"github.com/gogpu/texture/codec"
	"github.com/gogpu/texture/codec/container"
	"github.com/gogpu/texture/codec/imagecodec"
	"github.com/gogpu/texture/device"
)

// Load decodes data and uploads it to a new device texture.
//
// Containers (DDS, KTX) are uploaded surface by surface with their stored
// mip chain. Flat images are uploaded as mip 0 and get a generated mip
// chain unless the resource has FlagNoMipmaps; FlagSRGB marks them sRGB.
//
// Empty payloads and resources that are already loaded are rejected
// without touching the texture. Any other failure leaves the resource
// aliasing its placeholder and returns a *LoadError.
func (r *Resource) Load(data []byte) error {
	if err := r.Base.Load(data); err != nil {
		return err
	}

	switch codec.Detect(data) {
	case codec.KindContainer:
		return r.loadContainer(data)
	case codec.KindGeneric:
		return r.loadImage(data)
	}
	return r.fail(ErrInvalidImageFormat, "unknown payload kind", nil)
}

func (r *Resource) loadContainer(data []byte) error {
	info, err := container.Decode(data)
	if err != nil {
		return r.fail(ErrUnsupportedContainer, "corrupt DDS/KTX container", err)
	}

	r.shape = shapeOf(info.Type)
	if info.Depth > 1 {
		r.shape = Shape3D
	}
	if info.Format == device.FormatUnknown {
		return r.fail(ErrUnsupportedPixelFormat, "unsupported container pixel format", nil)
	}

	r.width, r.height, r.depth = info.Width, info.Height, info.Depth
	r.format = info.Format
	r.hasMipMaps = info.MipCount > 1
	r.srgb = r.Flags().Has(FlagSRGB) || info.SRGB

	dev := r.sys.dev
	tex, err := dev.CreateTexture(r.textureDesc(r.hasMipMaps, false))
	if err != nil || tex == 0 {
		return r.fail(ErrUnsupportedPixelFormat, "unsupported container pixel format", err)
	}
	r.tex = tex

	for _, s := range info.Surfaces {
		if err := dev.UploadTextureData(tex, s.Slice, s.Mip, s.Data); err != nil {
			return r.fail(ErrUnsupportedPixelFormat,
				fmt.Sprintf("failed to upload surface (slice %d, mip %d)", s.Slice, s.Mip), err)
		}
	}

	r.state = StateLoaded
	r.sys.log().Debug("texture: container uploaded",
		"resource", r.Name(), "container", info.Container, "shape", r.shape,
		"size", fmt.Sprintf("%dx%dx%d", r.width, r.height, r.depth),
		"format", r.format, "mips", info.MipCount, "surfaces", len(info.Surfaces))
	return nil
}

func (r *Resource) loadImage(data []byte) error {
	img, err := imagecodec.Decode(data)
	if err != nil {
		return r.fail(ErrInvalidImageFormat, fmt.Sprintf("invalid image format (%v)", err), err)
	}

	r.shape = Shape2D
	r.width, r.height, r.depth = img.Width, img.Height, 1
	r.format = img.Format()
	r.hasMipMaps = !r.Flags().Has(FlagNoMipmaps)
	r.srgb = r.Flags().Has(FlagSRGB)

	dev := r.sys.dev
	tex, err := dev.CreateTexture(r.textureDesc(r.hasMipMaps, r.hasMipMaps))
	if err != nil || tex == 0 {
		return r.fail(ErrUnsupportedPixelFormat, "failed to create texture", err)
	}
	r.tex = tex

	if err := dev.UploadTextureData(tex, 0, 0, img.Pix); err != nil {
		return r.fail(ErrUnsupportedPixelFormat, "failed to upload image", err)
	}

	r.state = StateLoaded
	r.sys.log().Debug("texture: image uploaded",
		"resource", r.Name(), "size", fmt.Sprintf("%dx%d", r.width, r.height),
		"format", r.format, "hdr", img.HDR, "mips", r.MipCount())
	return nil
}
