package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/texture"
	"github.com/gogpu/texture/codec"
	"github.com/gogpu/texture/codec/container"
	"github.com/gogpu/texture/device"
)

var convertMips bool

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out.dds>",
	Short: "Rewrite a texture as DDS",
	Long: `Convert a KTX, DDS or flat image file to DDS. Containers keep
their surfaces as stored. Flat images are loaded through the texture
device; with --mips the generated mip chain is written as well.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertMips, "mips", false, "generate mip levels for flat images")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var info *container.Info
	if codec.Detect(data) == codec.KindContainer {
		info, err = container.Decode(data)
		if err != nil {
			return err
		}
		if info.Format == device.FormatUnknown {
			return fmt.Errorf("%s: %w", args[0], texture.ErrUnsupportedPixelFormat)
		}
	} else if info, err = readBack(filepath.Base(args[0]), data); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := container.WriteDDS(&buf, info); err != nil {
		return err
	}
	if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil { //nolint:gosec // output is user-provided intentionally
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%v %dx%d, %d mips)\n",
		args[1], info.Format, info.Width, info.Height, info.MipCount)
	return nil
}

// readBack loads a flat image into a texture and reads every mip level
// back as DDS surfaces.
func readBack(name string, data []byte) (*container.Info, error) {
	sys, _, err := newSystem()
	if err != nil {
		return nil, err
	}
	defer sys.Close()

	flags := texture.FlagNoMipmaps
	if convertMips {
		flags = 0
	}
	r := texture.NewResource(sys, name, flags)
	defer r.Release()
	if err := r.Load(data); err != nil {
		return nil, err
	}

	info := &container.Info{
		Container: container.DDS,
		Width:     r.Width(),
		Height:    r.Height(),
		Depth:     1,
		Format:    r.Format(),
		MipCount:  r.MipCount() + 1,
		Type:      device.Tex2D,
	}
	for mip := 0; mip < info.MipCount; mip++ {
		err := r.WithStream(texture.ElemImage, mip, texture.StreamPixels, true, false, func(pix []byte) error {
			info.Surfaces = append(info.Surfaces, container.Surface{Mip: mip, Data: bytes.Clone(pix)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}
