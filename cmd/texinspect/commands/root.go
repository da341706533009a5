// Package commands implements the texinspect command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/texture"
	"github.com/gogpu/texture/config"
	"github.com/gogpu/texture/device/memdevice"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "texinspect",
	Short: "Inspect texture files",
	Long: `texinspect decodes DDS, KTX, Radiance HDR and common image files
through the texture loader and reports what a renderer would get.

Textures are loaded into an in-memory device, so no GPU is required.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./texture.{yaml,toml,json})")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log loader activity to stderr")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	texture.SetLogger(c.Logger(cmd.ErrOrStderr()))
	cfg = c
	return nil
}

// newSystem creates a texture system on a fresh in-memory device.
func newSystem() (*texture.System, *memdevice.Device, error) {
	dev := memdevice.New()
	sys, err := texture.NewSystem(dev, cfg.Options()...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating texture system: %w", err)
	}
	return sys, dev, nil
}

// loadFlags are the resource flags shared by commands that load a file.
type loadFlags struct {
	cubemap   bool
	srgb      bool
	noMipmaps bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.cubemap, "cubemap", false, "treat the texture as a cube map")
	cmd.Flags().BoolVar(&f.srgb, "srgb", false, "mark the texture as sRGB")
	cmd.Flags().BoolVar(&f.noMipmaps, "no-mipmaps", false, "do not generate mip levels for flat images")
}

func (f *loadFlags) flags() texture.Flags {
	var flags texture.Flags
	if f.cubemap {
		flags |= texture.FlagCubemap
	}
	if f.srgb {
		flags |= texture.FlagSRGB
	}
	if f.noMipmaps {
		flags |= texture.FlagNoMipmaps
	}
	return flags
}
