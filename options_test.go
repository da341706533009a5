package texture

import (
	"image/color"
	"log/slog"
	"testing"
)

// TestDefaultOptions tests the option values used without any Option.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.defaultColor != DefaultColor {
		t.Errorf("defaultColor = %v, want %v", o.defaultColor, DefaultColor)
	}
	if o.defaultSize != DefaultSize {
		t.Errorf("defaultSize = %d, want %d", o.defaultSize, DefaultSize)
	}
	if o.without3D {
		t.Error("without3D should be false by default")
	}
	if o.logger != nil {
		t.Error("logger should be nil by default")
	}
}

func TestOptions(t *testing.T) {
	logger := slog.New(silentHandler{})
	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}

	tests := []struct {
		name  string
		opt   Option
		check func(t *testing.T, o systemOptions)
	}{
		{"WithLogger", WithLogger(logger), func(t *testing.T, o systemOptions) {
			if o.logger != logger {
				t.Error("logger not applied")
			}
		}},
		{"WithDefaultColor", WithDefaultColor(c), func(t *testing.T, o systemOptions) {
			if o.defaultColor != c {
				t.Errorf("defaultColor = %v, want %v", o.defaultColor, c)
			}
		}},
		{"WithDefaultSize", WithDefaultSize(16), func(t *testing.T, o systemOptions) {
			if o.defaultSize != 16 {
				t.Errorf("defaultSize = %d, want 16", o.defaultSize)
			}
		}},
		{"WithDefaultSize ignores zero", WithDefaultSize(0), func(t *testing.T, o systemOptions) {
			if o.defaultSize != DefaultSize {
				t.Errorf("defaultSize = %d, want %d", o.defaultSize, DefaultSize)
			}
		}},
		{"WithoutDefault3D", WithoutDefault3D(), func(t *testing.T, o systemOptions) {
			if !o.without3D {
				t.Error("without3D not applied")
			}
		}},
		{"WithScratchCapacity", WithScratchCapacity(1 << 20), func(t *testing.T, o systemOptions) {
			if o.scratchCapacity != 1<<20 {
				t.Errorf("scratchCapacity = %d, want %d", o.scratchCapacity, 1<<20)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			tt.check(t, o)
		})
	}
}
