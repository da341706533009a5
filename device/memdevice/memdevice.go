// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package memdevice provides an in-memory software implementation of
// device.Device.
//
// Every (slice, mip) surface is stored as a byte slice, so uploads can be
// read back exactly. This makes the device suitable for headless tools and
// for tests that need to observe what a texture resource sent to the GPU.
//
// Thread safety: Device is safe for concurrent use. All resource maps are
// protected by a mutex.
package memdevice

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/texture/device"
)

// defaultMaxTextureSize matches the common desktop limit.
const defaultMaxTextureSize = 16384

// Option configures a Device during creation.
type Option func(*options)

type options struct {
	caps     device.Caps
	rejected []device.Format
}

// WithCaps overrides the reported capabilities.
// Texture types and formats the caps rule out are rejected at creation.
func WithCaps(caps device.Caps) Option {
	return func(o *options) {
		o.caps = caps
	}
}

// WithRejectedFormats makes CreateTexture and CreateRenderBuffer fail for
// the given formats, mimicking a driver without support for them.
func WithRejectedFormats(formats ...device.Format) Option {
	return func(o *options) {
		o.rejected = append(o.rejected, formats...)
	}
}

// Stats counts calls made against a Device.
type Stats struct {
	TexturesCreated      int
	TexturesDestroyed    int
	RenderBuffersCreated int
	RenderBuffersFreed   int
	Uploads              int
	Updates              int
	Reads                int
}

// Device is an in-memory device.Device.
type Device struct {
	mu sync.RWMutex

	caps     device.Caps
	rejected map[device.Format]bool

	// ID generation, shared by textures and render buffers. 0 is invalid.
	nextID atomic.Uint32

	textures      map[device.Texture]*texture
	renderBuffers map[device.RenderBuffer]*renderBuffer

	// destroyCalls records every DestroyTexture call per handle,
	// including calls for handles that were not live.
	destroyCalls map[device.Texture]int
	stats        Stats
}

type texture struct {
	desc   device.TextureDesc
	levels int
	slices int

	// surfaces is indexed by slice*levels + mip.
	surfaces [][]byte

	// owner is set for render buffer attachments.
	owner device.RenderBuffer
}

type renderBuffer struct {
	desc  device.RenderBufferDesc
	color []device.Texture
	depth device.Texture
}

// New creates a new in-memory device.
// By default it supports 3D and compressed textures up to 16384 pixels.
func New(opts ...Option) *Device {
	o := options{
		caps: device.Caps{
			Tex3D:          true,
			TexCompressed:  true,
			MaxTextureSize: defaultMaxTextureSize,
			Name:           "memdevice",
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.caps.MaxTextureSize <= 0 {
		o.caps.MaxTextureSize = defaultMaxTextureSize
	}

	d := &Device{
		caps:          o.caps,
		rejected:      make(map[device.Format]bool, len(o.rejected)),
		textures:      make(map[device.Texture]*texture),
		renderBuffers: make(map[device.RenderBuffer]*renderBuffer),
		destroyCalls:  make(map[device.Texture]int),
	}
	for _, f := range o.rejected {
		d.rejected[f] = true
	}
	d.nextID.Store(1)
	return d
}

// newID generates a unique resource ID.
func (d *Device) newID() uint32 {
	return d.nextID.Add(1) - 1
}

// Caps returns the device capabilities.
func (d *Device) Caps() device.Caps {
	return d.caps
}

// CalcTextureSize returns the byte size of a surface.
func (d *Device) CalcTextureSize(format device.Format, width, height, depth int) int {
	return device.SurfaceSize(format, width, height, depth)
}

func (d *Device) checkFormat(f device.Format) error {
	if !f.IsValid() || d.rejected[f] {
		return fmt.Errorf("%w: %v", device.ErrUnsupportedFormat, f)
	}
	if f.IsCompressed() && !d.caps.TexCompressed {
		return fmt.Errorf("%w: %v (compression disabled)", device.ErrUnsupportedFormat, f)
	}
	return nil
}

// CreateTexture allocates a zero-filled texture.
func (d *Device) CreateTexture(desc device.TextureDesc) (device.Texture, error) {
	if err := d.checkFormat(desc.Format); err != nil {
		return 0, err
	}
	if desc.Type == device.Tex3D && !d.caps.Tex3D {
		return 0, fmt.Errorf("%w: %v", device.ErrUnsupportedType, desc.Type)
	}
	if desc.Depth <= 0 {
		desc.Depth = 1
	}
	if desc.Type != device.Tex3D {
		desc.Depth = 1
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize ||
		desc.Depth > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("%w: %dx%dx%d", device.ErrInvalidDimensions, desc.Width, desc.Height, desc.Depth)
	}
	if desc.Type == device.TexCube && desc.Width != desc.Height {
		return 0, fmt.Errorf("%w: cube faces must be square, got %dx%d",
			device.ErrInvalidDimensions, desc.Width, desc.Height)
	}

	tex := newTexture(desc)
	id := device.Texture(d.newID())

	d.mu.Lock()
	d.textures[id] = tex
	d.stats.TexturesCreated++
	d.mu.Unlock()

	return id, nil
}

func newTexture(desc device.TextureDesc) *texture {
	levels := desc.Levels()
	slices := desc.Type.Slices()

	t := &texture{
		desc:     desc,
		levels:   levels,
		slices:   slices,
		surfaces: make([][]byte, slices*levels),
	}
	for s := 0; s < slices; s++ {
		for m := 0; m < levels; m++ {
			t.surfaces[s*levels+m] = make([]byte, t.surfaceSize(m))
		}
	}
	return t
}

func (t *texture) surfaceSize(mip int) int {
	depth := 1
	if t.desc.Type == device.Tex3D {
		depth = device.MipExtent(t.desc.Depth, mip)
	}
	return device.SurfaceSize(t.desc.Format,
		device.MipExtent(t.desc.Width, mip), device.MipExtent(t.desc.Height, mip), depth)
}

func (t *texture) surface(slice, mip int) ([]byte, error) {
	if slice < 0 || slice >= t.slices || mip < 0 || mip >= t.levels {
		return nil, fmt.Errorf("%w: slice %d mip %d (have %d slices, %d levels)",
			device.ErrSurfaceOutOfRange, slice, mip, t.slices, t.levels)
	}
	return t.surfaces[slice*t.levels+mip], nil
}

// UploadTextureData writes a whole surface and regenerates lower mip
// levels when the texture was created with GenMipmaps.
func (d *Device) UploadTextureData(tex device.Texture, slice, mip int, pixels []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(tex, slice, mip, pixels); err != nil {
		return err
	}
	d.stats.Uploads++
	return nil
}

// UpdateTextureData rewrites a surface. It behaves like UploadTextureData.
func (d *Device) UpdateTextureData(tex device.Texture, slice, mip int, pixels []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(tex, slice, mip, pixels); err != nil {
		return err
	}
	d.stats.Updates++
	return nil
}

// write must be called with d.mu held.
func (d *Device) write(tex device.Texture, slice, mip int, pixels []byte) error {
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("%w: texture %d", device.ErrInvalidHandle, tex)
	}
	dst, err := t.surface(slice, mip)
	if err != nil {
		return err
	}
	if len(pixels) < len(dst) {
		return fmt.Errorf("%w: got %d bytes, need %d", device.ErrBufferSize, len(pixels), len(dst))
	}
	copy(dst, pixels)

	if mip == 0 && t.desc.GenMipmaps && t.levels > 1 {
		t.generateMipmaps(slice)
	}
	return nil
}

// TextureData copies a surface into dst.
func (d *Device) TextureData(tex device.Texture, slice, mip int, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("%w: texture %d", device.ErrInvalidHandle, tex)
	}
	src, err := t.surface(slice, mip)
	if err != nil {
		return err
	}
	if len(dst) < len(src) {
		return fmt.Errorf("%w: got %d bytes, need %d", device.ErrBufferSize, len(dst), len(src))
	}
	copy(dst, src)
	d.stats.Reads++
	return nil
}

// DestroyTexture releases a texture. Render buffer attachments are only
// released through DestroyRenderBuffer; destroying them here is ignored.
func (d *Device) DestroyTexture(tex device.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroyCalls[tex]++
	t, ok := d.textures[tex]
	if !ok || t.owner != 0 {
		return
	}
	delete(d.textures, tex)
	d.stats.TexturesDestroyed++
}

// CreateRenderBuffer allocates color (and optionally depth) attachments.
func (d *Device) CreateRenderBuffer(desc device.RenderBufferDesc) (device.RenderBuffer, error) {
	if err := d.checkFormat(desc.Format); err != nil {
		return 0, err
	}
	if desc.Format.IsCompressed() {
		return 0, fmt.Errorf("%w: %v is not renderable", device.ErrUnsupportedFormat, desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("%w: %dx%d", device.ErrInvalidDimensions, desc.Width, desc.Height)
	}
	colorCount := max(desc.ColorCount, 1)

	id := device.RenderBuffer(d.newID())
	rb := &renderBuffer{desc: desc}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < colorCount; i++ {
		t := newTexture(device.TextureDesc{
			Label:  fmt.Sprintf("%s_color%d", desc.Label, i),
			Type:   device.Tex2D,
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
			Format: desc.Format,
		})
		t.owner = id
		texID := device.Texture(d.newID())
		d.textures[texID] = t
		rb.color = append(rb.color, texID)
	}
	if desc.Depth {
		t := newTexture(device.TextureDesc{
			Label:  desc.Label + "_depth",
			Type:   device.Tex2D,
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
			Format: device.FormatDepth,
		})
		t.owner = id
		rb.depth = device.Texture(d.newID())
		d.textures[rb.depth] = t
	}

	d.renderBuffers[id] = rb
	d.stats.RenderBuffersCreated++
	return id, nil
}

// RenderBufferTexture returns the texture of a color attachment, or zero.
func (d *Device) RenderBufferTexture(rb device.RenderBuffer, attachment int) device.Texture {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.renderBuffers[rb]
	if !ok || attachment < 0 || attachment >= len(b.color) {
		return 0
	}
	return b.color[attachment]
}

// DestroyRenderBuffer releases a render buffer and its attachments.
func (d *Device) DestroyRenderBuffer(rb device.RenderBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.renderBuffers[rb]
	if !ok {
		return
	}
	for _, tex := range b.color {
		delete(d.textures, tex)
	}
	if b.depth != 0 {
		delete(d.textures, b.depth)
	}
	delete(d.renderBuffers, rb)
	d.stats.RenderBuffersFreed++
}

// Describe returns the creation descriptor of a live texture.
func (d *Device) Describe(tex device.Texture) (device.TextureDesc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.textures[tex]
	if !ok {
		return device.TextureDesc{}, false
	}
	return t.desc, true
}

// Levels returns the number of allocated mip levels of a live texture.
func (d *Device) Levels(tex device.Texture) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if t, ok := d.textures[tex]; ok {
		return t.levels
	}
	return 0
}

// IsLive reports whether tex names a live texture.
func (d *Device) IsLive(tex device.Texture) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.textures[tex]
	return ok
}

// IsRenderBufferLive reports whether rb names a live render buffer.
func (d *Device) IsRenderBufferLive(rb device.RenderBuffer) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.renderBuffers[rb]
	return ok
}

// DestroyCalls returns how many times DestroyTexture was called for tex.
func (d *Device) DestroyCalls(tex device.Texture) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.destroyCalls[tex]
}

// LiveTextures returns the number of live textures, attachments included.
func (d *Device) LiveTextures() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.textures)
}

// Stats returns a snapshot of the call counters.
func (d *Device) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Ensure Device implements device.Device.
var _ device.Device = (*Device)(nil)
