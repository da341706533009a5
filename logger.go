package texture

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record and reports every level as disabled.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h silentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silentHandler) WithGroup(string) slog.Handler           { return h }

var silent = slog.New(silentHandler{})

// pkgLogger is the logger of Systems created without WithLogger and of
// the library and texinspect packages.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(silent)
}

// SetLogger replaces the package logger. Texture loading is silent until
// it is called; nil silences it again. It may be called at any time,
// including while resources are loading on another goroutine.
//
// Records are emitted at these levels:
//   - [slog.LevelDebug]: surface uploads and stream mappings
//   - [slog.LevelInfo]: placeholder creation and library reloads
//   - [slog.LevelWarn]: a resource switched to its placeholder
//   - [slog.LevelError]: the load failure itself, "Texture resource '<name>': <cause>"
//
// To see every upload on stderr:
//
//	texture.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//		&slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	pkgLogger.Store(l)
}

// Logger returns the package logger set by SetLogger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
