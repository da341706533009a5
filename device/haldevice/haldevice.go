// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package haldevice implements device.Device on top of gogpu/wgpu/hal.
//
// The device does not create a GPU instance of its own: it RECEIVES a
// hal.Device and hal.Queue from the host, either directly via New or from
// a gpucontext provider via NewFromProvider.
//
// Thread safety: Device is safe for concurrent use. Handle maps are
// protected by a mutex; hal calls happen outside of it.
package haldevice

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texture/device"
)

// copyPitchAlignment is the WebGPU bytes-per-row alignment for
// texture/buffer copies.
const copyPitchAlignment = 256

// readbackTimeout bounds the fence wait of a surface readback.
const readbackTimeout = 5 * time.Second

// ErrNoHAL is returned by NewFromProvider when the provider does not
// expose HAL types.
var ErrNoHAL = errors.New("haldevice: provider does not expose HAL device and queue")

// Device is a device.Device backed by a hal.Device.
type Device struct {
	mu    sync.RWMutex
	dev   hal.Device
	queue hal.Queue
	caps  device.Caps

	// ID generation, shared by textures and render buffers. 0 is invalid.
	nextID atomic.Uint32

	textures      map[device.Texture]*texture
	renderBuffers map[device.RenderBuffer]*renderBuffer
}

type texture struct {
	desc   device.TextureDesc
	levels int
	tex    hal.Texture
	view   hal.TextureView
	owner  device.RenderBuffer
}

type renderBuffer struct {
	color []device.Texture
	depth device.Texture
}

// New wraps a hal device and queue. If limits is nil, default limits are
// used to derive the capabilities.
func New(dev hal.Device, queue hal.Queue, limits *gputypes.Limits) *Device {
	var lim gputypes.Limits
	if limits != nil {
		lim = *limits
	} else {
		lim = gputypes.DefaultLimits()
	}

	d := &Device{
		dev:   dev,
		queue: queue,
		caps: device.Caps{
			Tex3D:          lim.MaxTextureDimension3D > 0,
			TexCompressed:  false,
			MaxTextureSize: int(lim.MaxTextureDimension2D),
			Name:           "wgpu-hal",
		},
		textures:      make(map[device.Texture]*texture),
		renderBuffers: make(map[device.RenderBuffer]*renderBuffer),
	}
	d.nextID.Store(1)
	return d
}

// NewFromProvider uses the shared device of a host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(dev, queue, nil), nil
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

// CreateTexture creates a sampled texture with a default view.
func (d *Device) CreateTexture(desc device.TextureDesc) (device.Texture, error) {
	format := convertFormat(desc.Format, desc.SRGB)
	if format == gputypes.TextureFormatUndefined {
		return 0, fmt.Errorf("%w: %v", device.ErrUnsupportedFormat, desc.Format)
	}
	if desc.Type == device.Tex3D && !d.caps.Tex3D {
		return 0, fmt.Errorf("%w: %v", device.ErrUnsupportedType, desc.Type)
	}
	if desc.Type != device.Tex3D || desc.Depth <= 0 {
		desc.Depth = 1
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("%w: %dx%dx%d", device.ErrInvalidDimensions, desc.Width, desc.Height, desc.Depth)
	}

	levels := desc.Levels()

	dimension := gputypes.TextureDimension2D
	viewDimension := gputypes.TextureViewDimension2D
	layers := 1
	switch desc.Type {
	case device.TexCube:
		viewDimension = gputypes.TextureViewDimensionCube
		layers = 6
	case device.Tex3D:
		dimension = gputypes.TextureDimension3D
		viewDimension = gputypes.TextureViewDimension3D
		layers = desc.Depth
	}

	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),  //nolint:gosec // validated above
			Height:             uint32(desc.Height), //nolint:gosec // validated above
			DepthOrArrayLayers: uint32(layers),      //nolint:gosec // validated above
		},
		MipLevelCount: uint32(levels), //nolint:gosec // at most 32
		SampleCount:   1,
		Dimension:     dimension,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return 0, fmt.Errorf("create texture: %w", err)
	}

	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     viewDimension,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: uint32(levels), //nolint:gosec // at most 32
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return 0, fmt.Errorf("create texture view: %w", err)
	}

	id := device.Texture(d.newID())

	d.mu.Lock()
	d.textures[id] = &texture{desc: desc, levels: levels, tex: tex, view: view}
	d.mu.Unlock()

	return id, nil
}

func (d *Device) lookup(id device.Texture) (*texture, error) {
	d.mu.RLock()
	t, ok := d.textures[id]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: texture %d", device.ErrInvalidHandle, id)
	}
	return t, nil
}

// surfaceExtent validates a (slice, mip) pair and returns its extents.
func (t *texture) surfaceExtent(slice, mip int) (w, h, depth int, err error) {
	if slice < 0 || slice >= t.desc.Type.Slices() || mip < 0 || mip >= t.levels {
		return 0, 0, 0, fmt.Errorf("%w: slice %d mip %d", device.ErrSurfaceOutOfRange, slice, mip)
	}
	depth = 1
	if t.desc.Type == device.Tex3D {
		depth = device.MipExtent(t.desc.Depth, mip)
	}
	return device.MipExtent(t.desc.Width, mip), device.MipExtent(t.desc.Height, mip), depth, nil
}

// UploadTextureData writes a surface through the queue.
// Mip generation is not performed by this backend: callers that ask for
// GenMipmaps get the base level only until they upload lower levels.
func (d *Device) UploadTextureData(id device.Texture, slice, mip int, pixels []byte) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	w, h, depth, err := t.surfaceExtent(slice, mip)
	if err != nil {
		return err
	}
	size := device.SurfaceSize(t.desc.Format, w, h, depth)
	if len(pixels) < size {
		return fmt.Errorf("%w: got %d bytes, need %d", device.ErrBufferSize, len(pixels), size)
	}

	rowBytes := uint32(device.SurfaceSize(t.desc.Format, w, 1, 1)) //nolint:gosec // bounded by texture limits
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(mip),                       //nolint:gosec // validated
			Origin:   hal.Origin3D{Z: uint32(slice)}, //nolint:gosec // validated
		},
		pixels[:size],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  rowBytes,
			RowsPerImage: uint32(h), //nolint:gosec // validated
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(depth)}, //nolint:gosec // validated
	)
	return nil
}

// UpdateTextureData rewrites a surface. The queue path is the same as upload.
func (d *Device) UpdateTextureData(id device.Texture, slice, mip int, pixels []byte) error {
	return d.UploadTextureData(id, slice, mip, pixels)
}

// TextureData copies a surface to a staging buffer, waits for the GPU and
// strips the row padding into dst.
func (d *Device) TextureData(id device.Texture, slice, mip int, dst []byte) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	if t.desc.Format.IsCompressed() {
		return fmt.Errorf("%w: readback of %v", device.ErrUnsupportedFormat, t.desc.Format)
	}
	w, h, depth, err := t.surfaceExtent(slice, mip)
	if err != nil {
		return err
	}
	size := device.SurfaceSize(t.desc.Format, w, h, depth)
	if len(dst) < size {
		return fmt.Errorf("%w: got %d bytes, need %d", device.ErrBufferSize, len(dst), size)
	}

	// WebGPU requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := uint32(device.SurfaceSize(t.desc.Format, w, 1, 1)) //nolint:gosec // bounded by texture limits
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	rows := uint32(h * depth) //nolint:gosec // bounded by texture limits
	stagingSize := uint64(alignedBytesPerRow) * uint64(rows)

	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "texture_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texture_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texture_readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: uint32(h)}, //nolint:gosec // validated
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(mip),                       //nolint:gosec // validated
			Origin:   hal.Origin3D{Z: uint32(slice)}, //nolint:gosec // validated
		},
		Size: hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(depth)}, //nolint:gosec // validated
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	fence, err := d.dev.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.dev.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.dev.Wait(fence, 1, readbackTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		copy(dst, readback[:size])
		return nil
	}
	for row := uint32(0); row < rows; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(dst[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
	}
	return nil
}

// DestroyTexture releases a texture and its view. Render buffer
// attachments are only released through DestroyRenderBuffer.
func (d *Device) DestroyTexture(id device.Texture) {
	d.mu.Lock()
	t, ok := d.textures[id]
	if ok && t.owner == 0 {
		delete(d.textures, id)
	}
	d.mu.Unlock()

	if ok && t.owner == 0 {
		d.destroy(t)
	}
}

func (d *Device) destroy(t *texture) {
	if t.view != nil {
		d.dev.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.dev.DestroyTexture(t.tex)
	}
}

// CreateRenderBuffer creates color attachments usable both as render
// targets and as sampled textures, plus an optional depth attachment.
func (d *Device) CreateRenderBuffer(desc device.RenderBufferDesc) (device.RenderBuffer, error) {
	format := convertFormat(desc.Format, false)
	if format == gputypes.TextureFormatUndefined || desc.Format.IsCompressed() {
		return 0, fmt.Errorf("%w: %v is not renderable", device.ErrUnsupportedFormat, desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("%w: %dx%d", device.ErrInvalidDimensions, desc.Width, desc.Height)
	}
	samples := uint32(1)
	if desc.Samples > 1 {
		samples = uint32(desc.Samples) //nolint:gosec // small positive count
	}

	rbID := device.RenderBuffer(d.newID())
	rb := &renderBuffer{}
	created := make([]*texture, 0, 2)
	fail := func(err error) (device.RenderBuffer, error) {
		for _, t := range created {
			d.destroy(t)
		}
		return 0, err
	}

	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1} //nolint:gosec // validated

	for i := 0; i < max(desc.ColorCount, 1); i++ {
		label := fmt.Sprintf("%s_color%d", desc.Label, i)
		tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
			Label:         label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
				gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return fail(fmt.Errorf("create color attachment: %w", err))
		}
		view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:         label + "_view",
			Format:        format,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			d.dev.DestroyTexture(tex)
			return fail(fmt.Errorf("create color view: %w", err))
		}
		created = append(created, &texture{
			desc: device.TextureDesc{
				Label: label, Type: device.Tex2D, Width: desc.Width, Height: desc.Height, Depth: 1, Format: desc.Format,
			},
			levels: 1, tex: tex, view: view, owner: rbID,
		})
	}

	if desc.Depth {
		tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
			Label:         desc.Label + "_depth",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatDepth24PlusStencil8,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fail(fmt.Errorf("create depth attachment: %w", err))
		}
		created = append(created, &texture{
			desc: device.TextureDesc{
				Label: desc.Label + "_depth", Type: device.Tex2D, Width: desc.Width, Height: desc.Height, Depth: 1, Format: device.FormatDepth,
			},
			levels: 1, tex: tex, owner: rbID,
		})
	}

	d.mu.Lock()
	for i, t := range created {
		id := device.Texture(d.newID())
		d.textures[id] = t
		if desc.Depth && i == len(created)-1 {
			rb.depth = id
		} else {
			rb.color = append(rb.color, id)
		}
	}
	d.renderBuffers[rbID] = rb
	d.mu.Unlock()

	return rbID, nil
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

// DestroyRenderBuffer releases a render buffer and all its attachments.
func (d *Device) DestroyRenderBuffer(rb device.RenderBuffer) {
	d.mu.Lock()
	b, ok := d.renderBuffers[rb]
	var owned []*texture
	if ok {
		ids := append([]device.Texture(nil), b.color...)
		if b.depth != 0 {
			ids = append(ids, b.depth)
		}
		for _, id := range ids {
			if t, live := d.textures[id]; live {
				owned = append(owned, t)
				delete(d.textures, id)
			}
		}
		delete(d.renderBuffers, rb)
	}
	d.mu.Unlock()

	for _, t := range owned {
		d.destroy(t)
	}
}

// TextureView returns the default view of a live texture, or nil.
// Views are what shaders bind; they stay owned by the device.
func (d *Device) TextureView(id device.Texture) hal.TextureView {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if t, ok := d.textures[id]; ok {
		return t.view
	}
	return nil
}

// Close releases every texture and render buffer still alive.
// The hal device and queue belong to the host and are not destroyed.
func (d *Device) Close() {
	d.mu.Lock()
	textures := d.textures
	d.textures = make(map[device.Texture]*texture)
	d.renderBuffers = make(map[device.RenderBuffer]*renderBuffer)
	d.mu.Unlock()

	for _, t := range textures {
		d.destroy(t)
	}
}

// Ensure Device implements device.Device.
var _ device.Device = (*Device)(nil)
