// Package texture manages the lifecycle of GPU texture resources.
//
// # Overview
//
// A Resource turns an encoded payload into a device texture. Payloads are
// either multi-surface containers (DDS, KTX) carrying explicit mips and
// slices, or flat images (PNG, JPEG, GIF, BMP, TIFF, WebP, TGA, Radiance
// HDR) decoded to a single RGBA surface. Resources can also be created
// directly, as zero-filled textures or as render targets.
//
// A Resource never holds a dangling handle. Empty resources and resources
// whose load failed borrow the shape-matched placeholder texture owned by
// the System; placeholders are never destroyed by a Resource.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/texture"
//	    "github.com/gogpu/texture/device/memdevice"
//	)
//
//	sys, err := texture.NewSystem(memdevice.New())
//	if err != nil {
//	    return err
//	}
//	defer sys.Close()
//
//	tex := texture.NewResource(sys, "albedo.png", 0)
//	if err := tex.Load(data); err != nil {
//	    // tex still renders with the placeholder
//	    log.Print(err)
//	}
//
// # Streaming
//
// One image element (a slice and mip pair) at a time may be mapped for CPU
// access across the whole System:
//
//	err := tex.WithStream(texture.ElemImage, 0, texture.StreamPixels, true, true,
//	    func(pix []byte) error {
//	        pix[0] = 255
//	        return nil
//	    })
//
// # Devices
//
// The GPU is reached through device.Device. Package device/haldevice
// implements it on gogpu/wgpu HAL; device/memdevice is an in-memory
// implementation for tools and tests.
//
// # Thread Safety
//
// A Resource is not safe for concurrent use. The stream slot of a System
// rejects concurrent mappings instead of serializing them.
package texture
