package texture

import (
	"image/color"
	"log/slog"
)

// DefaultColor is the color of placeholder textures.
var DefaultColor = color.NRGBA{R: 128, G: 192, B: 255, A: 255}

// DefaultSize is the edge length of placeholder textures.
const DefaultSize = 4

// Option configures a System during creation.
//
// Example:
//
//	sys, err := texture.NewSystem(dev,
//	    texture.WithLogger(logger),
//	    texture.WithDefaultColor(color.NRGBA{R: 255, B: 255, A: 255}),
//	)
type Option func(*systemOptions)

// systemOptions holds optional configuration for System creation.
type systemOptions struct {
	logger          *slog.Logger
	defaultColor    color.NRGBA
	defaultSize     int
	without3D       bool
	scratchCapacity int
}

// defaultOptions returns the default system options.
func defaultOptions() systemOptions {
	return systemOptions{
		defaultColor: DefaultColor,
		defaultSize:  DefaultSize,
	}
}

// WithLogger sets a logger for this System, overriding the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *systemOptions) {
		o.logger = l
	}
}

// WithDefaultColor sets the placeholder texture color.
func WithDefaultColor(c color.NRGBA) Option {
	return func(o *systemOptions) {
		o.defaultColor = c
	}
}

// WithDefaultSize sets the placeholder texture edge length.
// Non-positive sizes are ignored.
func WithDefaultSize(size int) Option {
	return func(o *systemOptions) {
		if size > 0 {
			o.defaultSize = size
		}
	}
}

// WithoutDefault3D skips creation of the 3D placeholder even when the
// device supports 3D textures. 3D resources then fall back to the 2D
// placeholder.
func WithoutDefault3D() Option {
	return func(o *systemOptions) {
		o.without3D = true
	}
}

// WithScratchCapacity preallocates the stream scratch buffer.
func WithScratchCapacity(n int) Option {
	return func(o *systemOptions) {
		o.scratchCapacity = n
	}
}
