// Package config loads texture subsystem settings from a file and the
// environment and turns them into texture.Option values.
//
// Settings are read from texture.{yaml,toml,json} in the working
// directory (or an explicit file) and GGTEX_* environment variables, e.g.
// GGTEX_DEFAULTS_SIZE=8 or GGTEX_LOGGING_LEVEL=debug.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/gogpu/texture"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "GGTEX"

// Config represents the texture subsystem configuration.
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Library  LibraryConfig  `mapstructure:"library"`
}

// DefaultsConfig configures the placeholder textures.
type DefaultsConfig struct {
	// Color is "#rrggbb" or "#rrggbbaa".
	Color     string `mapstructure:"color"`
	Size      int    `mapstructure:"size"`
	Disable3D bool   `mapstructure:"disable_3d"`
}

type StreamConfig struct {
	ScratchCapacity int `mapstructure:"scratch_capacity"`
}

type LoggingConfig struct {
	// Level is one of off, debug, info, warn, error.
	Level string `mapstructure:"level"`
}

type LibraryConfig struct {
	Root  string `mapstructure:"root"`
	Watch bool   `mapstructure:"watch"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	c := texture.DefaultColor
	return &Config{
		Defaults: DefaultsConfig{
			Color: fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A),
			Size:  texture.DefaultSize,
		},
		Logging: LoggingConfig{Level: "off"},
		Library: LibraryConfig{Root: "."},
	}
}

// Load loads configuration from cfgFile (or texture.* in the working
// directory if empty), the environment and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("texture")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("defaults.color", cfg.Defaults.Color)
	v.SetDefault("defaults.size", cfg.Defaults.Size)
	v.SetDefault("defaults.disable_3d", cfg.Defaults.Disable3D)

	v.SetDefault("stream.scratch_capacity", cfg.Stream.ScratchCapacity)

	v.SetDefault("logging.level", cfg.Logging.Level)

	v.SetDefault("library.root", cfg.Library.Root)
	v.SetDefault("library.watch", cfg.Library.Watch)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseColor(c.Defaults.Color); err != nil {
		return fmt.Errorf("defaults.color: %w", err)
	}
	if c.Defaults.Size <= 0 {
		return errors.New("defaults.size must be positive")
	}
	if c.Stream.ScratchCapacity < 0 {
		return errors.New("stream.scratch_capacity must not be negative")
	}
	if _, ok := levels[strings.ToLower(c.Logging.Level)]; !ok {
		return errors.New("logging.level must be one of: off, debug, info, warn, error")
	}
	return nil
}

// Options returns the System options for c. c must be valid.
func (c *Config) Options() []texture.Option {
	col, _ := ParseColor(c.Defaults.Color)
	opts := []texture.Option{
		texture.WithDefaultColor(col),
		texture.WithDefaultSize(c.Defaults.Size),
		texture.WithScratchCapacity(c.Stream.ScratchCapacity),
	}
	if c.Defaults.Disable3D {
		opts = append(opts, texture.WithoutDefault3D())
	}
	return opts
}

// levels maps level names to slog levels; nil means logging is off.
var levels = map[string]*slog.Level{
	"off":   nil,
	"debug": ptr(slog.LevelDebug),
	"info":  ptr(slog.LevelInfo),
	"warn":  ptr(slog.LevelWarn),
	"error": ptr(slog.LevelError),
}

func ptr(l slog.Level) *slog.Level { return &l }

// Logger returns a text logger writing to w at the configured level, or
// nil when logging is off. Pass the result to texture.SetLogger.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := levels[strings.ToLower(c.Logging.Level)]
	if level == nil {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: *level}))
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
