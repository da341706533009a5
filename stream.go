package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/resource"
)

// Stream is an open mapping of one image element. At most one Stream per
// System is open at a time; Close releases it.
type Stream struct {
	res   *Resource
	data  []byte
	elem  int
	slice int
	mip   int

	// writeElem is the element written back on Close, or -1.
	writeElem int
	closed    bool
}

// MapStream maps the pixels of image element idx. With read the current
// surface contents are downloaded; with write the buffer is uploaded back
// on Close.
//
// Only ElemImage with StreamPixels can be mapped, and only on a resource
// that owns its texture. Other requests are passed to the generic resource
// fallback, which fails with resource.ErrStreamUnavailable. While another
// Stream is open the error also matches ErrMappingActive; no scratch
// memory is acquired in that case.
func (r *Resource) MapStream(elem resource.Elem, idx int, stream resource.Stream, read, write bool) (*Stream, error) {
	if !(read || write) || elem != ElemImage || stream != StreamPixels ||
		idx < 0 || idx >= r.ElemCount(ElemImage) || !r.ownsTexture() {
		return nil, r.Base.MapStream(elem, idx, stream, read, write)
	}
	sys := r.sys
	if !sys.slot.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %w", ErrMappingActive, r.Base.MapStream(elem, idx, stream, read, write))
	}

	mips := r.MipCount() + 1
	slice, mip := idx/mips, idx%mips

	buf := sys.scratch.Acquire(sys.dev.CalcTextureSize(r.format, r.width, r.height, r.depth))
	depth := 1
	if r.shape == Shape3D {
		depth = device.MipExtent(r.depth, mip)
	}
	data := buf[:sys.dev.CalcTextureSize(r.format,
		device.MipExtent(r.width, mip), device.MipExtent(r.height, mip), depth)]

	if read {
		if err := sys.dev.TextureData(r.tex, slice, mip, data); err != nil {
			sys.slot.Store(false)
			return nil, fmt.Errorf("texture: read %q element %d: %w", r.Name(), idx, err)
		}
	}

	s := &Stream{res: r, data: data, elem: idx, slice: slice, mip: mip, writeElem: -1}
	if write {
		s.writeElem = idx
	}
	r.stream = s
	sys.log().Debug("texture: stream mapped",
		"resource", r.Name(), "elem", idx, "slice", slice, "mip", mip, "read", read, "write", write)
	return s, nil
}

// ownsTexture reports whether the resource has a texture of its own.
func (r *Resource) ownsTexture() bool {
	return r.tex != 0 && !r.sys.defaults.Is(r.tex)
}

// dropStream closes the open stream of r without writing it back.
func (r *Resource) dropStream() {
	s := r.stream
	if s == nil {
		return
	}
	r.stream = nil
	s.closed = true
	s.data = nil
	r.sys.slot.Store(false)
	r.sys.log().Debug("texture: stream dropped", "resource", r.Name(), "elem", s.elem)
}

// Data returns the mapped pixels of the element's surface. The slice is
// only valid until Close.
func (s *Stream) Data() []byte {
	return s.data
}

// Elem returns the mapped element index.
func (s *Stream) Elem() int {
	return s.elem
}

// Writable reports whether Close writes the data back.
func (s *Stream) Writable() bool {
	return s.writeElem >= 0
}

// Close uploads the data if the stream was opened for write and frees the
// stream slot, whether or not the upload succeeded. Closing an already
// closed Stream does nothing, as does closing a Stream whose resource was
// unloaded or released while it was open.
func (s *Stream) Close() error {
	r := s.res
	if s.closed {
		r.Base.UnmapStream()
		return nil
	}
	s.closed = true
	r.stream = nil
	defer r.sys.slot.Store(false)

	data := s.data
	s.data = nil
	if s.writeElem < 0 {
		return nil
	}
	if err := r.sys.dev.UpdateTextureData(r.tex, s.slice, s.mip, data); err != nil {
		return fmt.Errorf("texture: write %q element %d: %w", r.Name(), s.writeElem, err)
	}
	r.sys.log().Debug("texture: stream written back", "resource", r.Name(), "elem", s.writeElem)
	return nil
}

// WithStream maps an element, calls fn with its pixels and closes the
// stream, also when fn fails.
func (r *Resource) WithStream(elem resource.Elem, idx int, stream resource.Stream, read, write bool,
	fn func(pix []byte) error) error {
	s, err := r.MapStream(elem, idx, stream, read, write)
	if err != nil {
		return err
	}
	return errors.Join(fn(s.Data()), s.Close())
}
