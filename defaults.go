package texture

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/gogpu/texture/device"
)

// Defaults are the placeholder textures a System lends to empty and
// failed resources, one per shape. They are created once and destroyed by
// System.Close only.
type Defaults struct {
	Tex2D device.Texture
	Cube  device.Texture

	// Tex3D is zero when the device has no 3D support or the placeholder
	// was disabled.
	Tex3D device.Texture
}

func newDefaults(dev device.Device, o systemOptions, log *slog.Logger) (*Defaults, error) {
	size := o.defaultSize
	c := o.defaultColor
	pixel := []byte{c.R, c.G, c.B, c.A}

	desc := device.TextureDesc{
		Label:      "default_2d",
		Type:       device.Tex2D,
		Width:      size,
		Height:     size,
		Depth:      1,
		Format:     device.FormatRGBA8,
		Mipmaps:    true,
		GenMipmaps: true,
	}
	face := bytes.Repeat(pixel, size*size)

	d := &Defaults{}
	var err error
	if d.Tex2D, err = createDefault(dev, desc, face, 1); err != nil {
		return nil, err
	}

	desc.Label, desc.Type = "default_cube", device.TexCube
	if d.Cube, err = createDefault(dev, desc, face, 6); err != nil {
		d.destroy(dev)
		return nil, err
	}

	if dev.Caps().Tex3D && !o.without3D {
		desc.Label, desc.Type, desc.Depth = "default_3d", device.Tex3D, size
		if d.Tex3D, err = createDefault(dev, desc, bytes.Repeat(face, size), 1); err != nil {
			d.destroy(dev)
			return nil, err
		}
	}

	log.Info("texture: placeholders created",
		"size", size, "color", fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A),
		"tex3d", d.Tex3D != 0)
	return d, nil
}

func createDefault(dev device.Device, desc device.TextureDesc, pixels []byte, slices int) (device.Texture, error) {
	tex, err := dev.CreateTexture(desc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", desc.Label, err)
	}
	for slice := 0; slice < slices; slice++ {
		if err := dev.UploadTextureData(tex, slice, 0, pixels); err != nil {
			dev.DestroyTexture(tex)
			return 0, fmt.Errorf("%s slice %d: %w", desc.Label, slice, err)
		}
	}
	return tex, nil
}

// For returns the placeholder for shape. 3D falls back to the 2D
// placeholder when no 3D placeholder exists.
func (d *Defaults) For(shape Shape) device.Texture {
	switch shape {
	case ShapeCube:
		return d.Cube
	case Shape3D:
		if d.Tex3D != 0 {
			return d.Tex3D
		}
	}
	return d.Tex2D
}

// Is reports whether tex is one of the placeholders.
func (d *Defaults) Is(tex device.Texture) bool {
	return tex != 0 && (tex == d.Tex2D || tex == d.Cube || tex == d.Tex3D)
}

func (d *Defaults) destroy(dev device.Device) {
	for _, tex := range []*device.Texture{&d.Tex2D, &d.Cube, &d.Tex3D} {
		if *tex != 0 {
			dev.DestroyTexture(*tex)
			*tex = 0
		}
	}
}
