package texture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/texture/device"
	"github.com/gogpu/texture/internal/scratch"
)

// ErrNilDevice is returned by NewSystem when no device is given.
var ErrNilDevice = errors.New("texture: nil device")

// System owns the state shared by all texture resources of one device:
// the placeholder textures, the stream scratch buffer and the stream slot.
//
// Create one System per device and pass it to every Resource constructor.
// Close it after all resources are released.
type System struct {
	dev      device.Device
	defaults *Defaults
	scratch  *scratch.Buffer
	logger   *slog.Logger

	// slot is held while a Stream is open.
	slot atomic.Bool
}

// NewSystem creates the placeholder textures on dev.
func NewSystem(dev device.Device, opts ...Option) (*System, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &System{
		dev:     dev,
		scratch: scratch.New(o.scratchCapacity),
		logger:  o.logger,
	}

	defaults, err := newDefaults(dev, o, s.log())
	if err != nil {
		return nil, fmt.Errorf("texture: create placeholders: %w", err)
	}
	s.defaults = defaults
	return s, nil
}

// Device returns the device textures are created on.
func (s *System) Device() device.Device {
	return s.dev
}

// Defaults returns the placeholder textures.
func (s *System) Defaults() *Defaults {
	return s.defaults
}

// Mapped reports whether a Stream is open.
func (s *System) Mapped() bool {
	return s.slot.Load()
}

// Close destroys the placeholder textures. Resources still aliasing them
// are left with invalid handles.
func (s *System) Close() {
	if s.defaults != nil {
		s.defaults.destroy(s.dev)
		s.log().Info("texture: placeholders destroyed")
	}
	s.scratch.Reset()
}

// log returns the System logger, or the package logger.
func (s *System) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return Logger()
}
