package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/texture"
	"github.com/gogpu/texture/codec"
	"github.com/gogpu/texture/codec/container"
	"github.com/gogpu/texture/codec/imagecodec"
	"github.com/gogpu/texture/device"
)

var infoFlags loadFlags

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Describe a texture file",
	Long: `Detect the file type, decode the file and load it as a texture
resource. Prints the container or image header, the resulting resource
and one row per image element (slice, mip).

Files that fail to load are reported with the placeholder they fall
back to.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoFlags.register(infoCmd)
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	desc := codec.Describe(data)
	fmt.Fprintf(out, "File:      %s (%d bytes)\n", args[0], len(data))
	fmt.Fprintf(out, "Kind:      %s\n", desc.Kind)
	fmt.Fprintf(out, "Type:      %s %s\n", desc.Extension, desc.MIME)

	switch desc.Kind {
	case codec.KindContainer:
		printContainer(out, data)
	default:
		printImage(out, data)
	}

	sys, dev, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Close()

	r := texture.NewResource(sys, filepath.Base(args[0]), infoFlags.flags())
	defer r.Release()
	loadErr := r.Load(data)

	fmt.Fprintf(out, "\nResource:  %v\n", r)
	fmt.Fprintf(out, "sRGB:      %v\n", r.SRGB())
	fmt.Fprintf(out, "Mip count: %d\n", r.MipCount())
	if loadErr != nil {
		fmt.Fprintf(out, "Fallback:  %v\n", loadErr)
		return nil
	}

	fmt.Fprintln(out)
	printElements(out, r, dev)
	return nil
}

func printContainer(out io.Writer, data []byte) {
	info, err := container.Decode(data)
	if err != nil {
		fmt.Fprintf(out, "Container: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Container: %s %s %dx%dx%d\n", info.Container, info.Type, info.Width, info.Height, info.Depth)
	fmt.Fprintf(out, "Format:    %v (sRGB %v)\n", info.Format, info.SRGB)
	fmt.Fprintf(out, "Mips:      %d\n", info.MipCount)
	fmt.Fprintf(out, "Surfaces:  %d\n", len(info.Surfaces))
}

func printImage(out io.Writer, data []byte) {
	img, err := imagecodec.Decode(data)
	if err != nil {
		fmt.Fprintf(out, "Image:     %v\n", err)
		return
	}
	fmt.Fprintf(out, "Image:     %dx%d %v (HDR %v)\n", img.Width, img.Height, img.Format(), img.HDR)
}

func printElements(out io.Writer, r *texture.Resource, dev device.Device) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ELEM\tSLICE\tMIP\tWIDTH\tHEIGHT\tDEPTH\tBYTES\t")

	mips := r.MipCount() + 1
	for idx := 0; idx < r.ElemCount(texture.ElemImage); idx++ {
		w, _ := r.ElemParamI(texture.ElemImage, idx, texture.ParamWidth)
		h, _ := r.ElemParamI(texture.ElemImage, idx, texture.ParamHeight)
		slice, mip := idx/mips, idx%mips
		depth := 1
		if r.Shape() == texture.Shape3D {
			depth = device.MipExtent(r.Depth(), mip)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			idx, slice, mip, w, h, depth, dev.CalcTextureSize(r.Format(), w, h, depth))
	}
	_ = tw.Flush()
}
