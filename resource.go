package texture

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/resource"
)

// Resource is a texture resource.
//
// At any time a Resource either owns a device texture, owns a render
// buffer whose color attachment is its texture, or aliases a placeholder
// of its System. Handle is nonzero from construction until Release.
type Resource struct {
	resource.Base

	sys *System

	shape  Shape
	width  int
	height int
	depth  int
	format device.Format

	hasMipMaps bool
	srgb       bool

	tex device.Texture
	rb  device.RenderBuffer

	// stream is the open mapping of this resource, if any.
	stream *Stream

	state State
}

// NewResource creates an empty resource aliasing the 2D placeholder, or
// the cube placeholder if flags has FlagCubemap. No device memory is
// allocated until Load.
func NewResource(sys *System, name string, flags Flags) *Resource {
	shape := Shape2D
	if flags.Has(FlagCubemap) {
		shape = ShapeCube
	}
	return newResource(sys, name, flags, shape)
}

// NewEmpty creates an empty resource of the given shape.
func NewEmpty(sys *System, name string, shape Shape) *Resource {
	return newResource(sys, name, 0, shape)
}

func newResource(sys *System, name string, flags Flags, shape Shape) *Resource {
	r := &Resource{
		Base:  resource.NewBase(resource.TypeTexture, name, flags, sys.log),
		sys:   sys,
		shape: shape,
	}
	r.initDefault()
	r.state = StateEmpty
	return r
}

// Create creates a resource backed by a new device texture of the given
// size, zero filled. depth > 1 creates a volume; otherwise FlagCubemap
// creates a cube map.
//
// With FlagRenderTarget the texture is the color attachment of a new
// render buffer: cube map, sRGB and mip flags are dropped and the shape
// is 2D.
//
// On device failure the returned resource aliases its placeholder and the
// error is a *LoadError wrapping ErrUnsupportedPixelFormat.
func Create(sys *System, name string, width, height, depth int, format device.Format, flags Flags) (*Resource, error) {
	if flags.Has(FlagRenderTarget) {
		flags &^= FlagCubemap | FlagSRGB
		flags |= FlagNoMipmaps
	}
	r := NewResource(sys, name, flags)
	r.MarkLoaded()

	r.width, r.height, r.depth = width, height, max(depth, 1)
	r.format = format
	r.hasMipMaps = !flags.Has(FlagNoMipmaps)
	r.srgb = flags.Has(FlagSRGB)
	if r.depth > 1 {
		r.shape = Shape3D
	}

	if flags.Has(FlagRenderTarget) {
		return r, r.createRenderTarget()
	}
	return r, r.createZeroed()
}

func (r *Resource) createRenderTarget() error {
	r.shape, r.depth = Shape2D, 1
	r.hasMipMaps, r.srgb = false, false

	dev := r.sys.dev
	rb, err := dev.CreateRenderBuffer(device.RenderBufferDesc{
		Label:      r.Name(),
		Width:      r.width,
		Height:     r.height,
		Format:     r.format,
		Samples:    0,
		ColorCount: 1,
	})
	if err != nil {
		return r.fail(ErrUnsupportedPixelFormat, "failed to create render buffer", err)
	}
	tex := dev.RenderBufferTexture(rb, 0)
	if tex == 0 {
		dev.DestroyRenderBuffer(rb)
		return r.fail(ErrUnsupportedPixelFormat, "render buffer has no color attachment", nil)
	}
	r.rb, r.tex = rb, tex
	r.state = StateLoaded
	return nil
}

func (r *Resource) createZeroed() error {
	dev := r.sys.dev
	tex, err := dev.CreateTexture(r.textureDesc(r.hasMipMaps, r.hasMipMaps))
	if err != nil || tex == 0 {
		return r.fail(ErrUnsupportedPixelFormat, "failed to create texture", err)
	}
	r.tex = tex

	size := dev.CalcTextureSize(r.format, r.width, r.height, r.depth)
	if err := dev.UploadTextureData(tex, 0, 0, make([]byte, size)); err != nil {
		return r.fail(ErrUnsupportedPixelFormat, "failed to initialize texture", err)
	}
	r.state = StateLoaded
	return nil
}

func (r *Resource) textureDesc(mipmaps, genMipmaps bool) device.TextureDesc {
	return device.TextureDesc{
		Label:      r.Name(),
		Type:       r.shape.deviceType(),
		Width:      r.width,
		Height:     r.height,
		Depth:      r.depth,
		Format:     r.format,
		Mipmaps:    mipmaps,
		GenMipmaps: genMipmaps,
		SRGB:       r.srgb,
	}
}

// initDefault resets the metadata to an empty RGBA8 texture and aliases
// the shape-matched placeholder. The shape is kept.
func (r *Resource) initDefault() {
	r.format = device.FormatRGBA8
	r.width, r.height, r.depth = 0, 0, 0
	r.srgb = false
	r.hasMipMaps = true
	r.rb = 0
	r.tex = r.sys.defaults.For(r.shape)
}

// release closes an open stream without writing it back and destroys
// whatever device resource the texture owns. Placeholder and zero handles
// are never destroyed.
func (r *Resource) release() {
	r.dropStream()
	dev := r.sys.dev
	switch {
	case r.rb != 0:
		dev.DestroyRenderBuffer(r.rb)
		r.rb = 0
	case r.tex != 0 && !r.sys.defaults.Is(r.tex):
		dev.DestroyTexture(r.tex)
	}
	r.tex = 0
}

// fail releases partial device state, aliases the placeholder, reports
// msg and returns a *LoadError wrapping kind and cause.
func (r *Resource) fail(kind error, msg string, cause error) error {
	r.release()
	r.initDefault()
	r.state = StateFallback

	r.ReportError(msg)
	r.sys.log().Warn("texture: using placeholder", "resource", r.Name(), "shape", r.shape)

	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &LoadError{Name: r.Name(), Err: err}
}

// Unload releases the device texture and returns the resource to the
// empty state; it can be loaded again.
func (r *Resource) Unload() {
	r.release()
	r.initDefault()
	r.Base.Unload()
	r.state = StateEmpty
}

// Release destroys the owned device resource. The handle becomes zero and
// the resource must not be used afterwards.
func (r *Resource) Release() {
	r.release()
	r.Base.Unload()
	r.state = StateUninitialized
}

// Shape returns the texture shape.
func (r *Resource) Shape() Shape { return r.shape }

// Width returns the base width; 0 for empty and fallback resources.
func (r *Resource) Width() int { return r.width }

// Height returns the base height.
func (r *Resource) Height() int { return r.height }

// Depth returns the base depth: 1 for 2D and cube textures, 0 when empty.
func (r *Resource) Depth() int { return r.depth }

// Format returns the pixel format.
func (r *Resource) Format() device.Format { return r.format }

// HasMipMaps reports whether the texture has a mip chain.
func (r *Resource) HasMipMaps() bool { return r.hasMipMaps }

// SRGB reports whether the texture holds sRGB-encoded data.
func (r *Resource) SRGB() bool { return r.srgb }

// Handle returns the device texture to bind.
func (r *Resource) Handle() device.Texture { return r.tex }

// RenderBuffer returns the owned render buffer, or zero.
func (r *Resource) RenderBuffer() device.RenderBuffer { return r.rb }

// IsRenderTarget reports whether the texture is a render buffer attachment.
func (r *Resource) IsRenderTarget() bool { return r.rb != 0 }

// State returns the lifecycle state.
func (r *Resource) State() State { return r.state }

// MipCount returns the number of mip levels below the base level:
// floor(log2(max(width, height))) with mipmaps, otherwise 0.
func (r *Resource) MipCount() int {
	if !r.hasMipMaps {
		return 0
	}
	size := max(r.width, r.height)
	if size <= 0 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

// ElemCount returns the number of elements of the given kind.
func (r *Resource) ElemCount(elem resource.Elem) int {
	switch elem {
	case ElemTexture:
		return 1
	case ElemImage:
		return (r.MipCount() + 1) * r.shape.Slices()
	default:
		return r.Base.ElemCount(elem)
	}
}

// ElemParamI returns an integer parameter of an element.
func (r *Resource) ElemParamI(elem resource.Elem, idx int, param resource.Param) (int, error) {
	switch elem {
	case ElemTexture:
		switch param {
		case ParamFormat:
			return int(r.format), nil
		case ParamSliceCount:
			return r.shape.Slices(), nil
		}
	case ElemImage:
		if idx < 0 || idx >= r.ElemCount(ElemImage) {
			break
		}
		mip := idx % (r.MipCount() + 1)
		switch param {
		case ParamWidth:
			return device.MipExtent(r.width, mip), nil
		case ParamHeight:
			return device.MipExtent(r.height, mip), nil
		}
	}
	return r.Base.ElemParamI(elem, idx, param)
}

// String implements fmt.Stringer.
func (r *Resource) String() string {
	return fmt.Sprintf("Texture(%s %s %dx%dx%d %v %s)",
		r.Name(), r.shape, r.width, r.height, r.depth, r.format, r.state)
}
