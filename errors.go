package texture

import (
	"errors"
	"fmt"
)

// Load failure causes. A failed load returns a *LoadError wrapping one of
// them; the resource then aliases its placeholder.
var (
	// ErrUnsupportedContainer reports a container that could not be parsed.
	ErrUnsupportedContainer = errors.New("texture: corrupt DDS/KTX container")

	// ErrUnsupportedPixelFormat reports a pixel format without device
	// mapping, or a device that rejected texture creation.
	ErrUnsupportedPixelFormat = errors.New("texture: unsupported pixel format")

	// ErrInvalidImageFormat reports a payload no image codec accepted.
	ErrInvalidImageFormat = errors.New("texture: invalid image format")
)

// ErrMappingActive is returned by MapStream while another Stream of the
// same System is open.
var ErrMappingActive = errors.New("texture: a stream is already mapped")

// LoadError describes why a resource fell back to its placeholder.
type LoadError struct {
	// Name is the resource name.
	Name string

	// Err wraps one of the load failure causes.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("texture resource %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
