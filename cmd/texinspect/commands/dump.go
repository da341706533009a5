package commands

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/spf13/cobra"

	"github.com/gogpu/texture"
	"github.com/gogpu/texture/codec/imagecodec"
)

var (
	dumpFlags loadFlags
	dumpElem  int
	dumpOut   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Write one image element as PNG or WebP",
	Long: `Load a texture, map one image element for reading and write it as
an 8-bit image. The output format follows the --out extension (.png or
.webp). Volume slices are stacked vertically; float formats are clamped.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpFlags.register(dumpCmd)
	dumpCmd.Flags().IntVarP(&dumpElem, "elem", "e", 0, "image element index (slice*(mips+1) + mip)")
	dumpCmd.Flags().StringVarP(&dumpOut, "out", "o", "", "output file (.png or .webp)")
	_ = dumpCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	encode, err := encoderFor(dumpOut)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	sys, dev, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Close()

	r := texture.NewResource(sys, filepath.Base(args[0]), dumpFlags.flags())
	defer r.Release()
	if err := r.Load(data); err != nil {
		return err
	}

	width, err := r.ElemParamI(texture.ElemImage, dumpElem, texture.ParamWidth)
	if err != nil {
		return fmt.Errorf("element %d: %w", dumpElem, err)
	}

	var img *image.NRGBA
	err = r.WithStream(texture.ElemImage, dumpElem, texture.StreamPixels, true, false, func(pix []byte) error {
		row := dev.CalcTextureSize(r.Format(), width, 1, 1)
		var err error
		img, err = imagecodec.ToNRGBA(r.Format(), width, len(pix)/row, pix)
		return err
	})
	if err != nil {
		return err
	}

	f, err := os.Create(dumpOut)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", dumpOut, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, element %d of %v)\n",
		dumpOut, img.Bounds().Dx(), img.Bounds().Dy(), dumpElem, r)
	return nil
}

func encoderFor(path string) (func(*os.File, image.Image) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".webp":
		return func(f *os.File, img image.Image) error { return nativewebp.Encode(f, img, nil) }, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want .png or .webp)", filepath.Ext(path))
	}
}
