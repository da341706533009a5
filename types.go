package texture

import (
	"fmt"

	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/resource"
)

// Flags are resource construction flags.
type Flags = resource.Flags

// Construction flags understood by texture resources.
const (
	FlagNoMipmaps    = resource.FlagNoMipmaps
	FlagCubemap      = resource.FlagCubemap
	FlagRenderTarget = resource.FlagRenderTarget
	FlagSRGB         = resource.FlagSRGB
)

// Shape is the dimensionality of a texture.
type Shape uint8

const (
	// Shape2D is a single 2D image with optional mips.
	Shape2D Shape = iota

	// ShapeCube is six square 2D faces.
	ShapeCube

	// Shape3D is a volume.
	Shape3D
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case Shape2D:
		return "2D"
	case ShapeCube:
		return "Cube"
	case Shape3D:
		return "3D"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// Slices returns the number of slices: 6 for cube maps, otherwise 1.
func (s Shape) Slices() int {
	if s == ShapeCube {
		return 6
	}
	return 1
}

func (s Shape) deviceType() device.TextureType {
	switch s {
	case ShapeCube:
		return device.TexCube
	case Shape3D:
		return device.Tex3D
	default:
		return device.Tex2D
	}
}

func shapeOf(t device.TextureType) Shape {
	switch t {
	case device.TexCube:
		return ShapeCube
	case device.Tex3D:
		return Shape3D
	default:
		return Shape2D
	}
}

// State is the lifecycle state of a Resource.
type State uint8

const (
	// StateUninitialized is a released resource.
	StateUninitialized State = iota

	// StateEmpty holds no data and aliases a placeholder.
	StateEmpty

	// StateLoaded owns a device texture or render buffer.
	StateLoaded

	// StateFallback failed to load and aliases a placeholder.
	StateFallback
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateEmpty:
		return "Empty"
	case StateLoaded:
		return "Loaded"
	case StateFallback:
		return "Fallback"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Elements, parameters and streams of a texture resource.
const (
	// ElemTexture is the whole texture (count 1).
	ElemTexture resource.Elem = 700

	// ElemImage is one (slice, mip) surface, indexed
	// slice*(MipCount()+1) + mip.
	ElemImage resource.Elem = 701
)

const (
	// ParamFormat is the device.Format of ElemTexture.
	ParamFormat resource.Param = iota + 1

	// ParamSliceCount is 6 for cube maps, otherwise 1 (ElemTexture).
	ParamSliceCount

	// ParamWidth is the width of an ElemImage.
	ParamWidth

	// ParamHeight is the height of an ElemImage.
	ParamHeight
)

// StreamPixels maps the raw pixels of an ElemImage.
const StreamPixels resource.Stream = 1
