package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/davesmith10/linresize/internal/icons"
)

var iconsCmd = &cobra.Command{
	Use:   "icons [file]",
	Short: "Generate Android launcher icons for every screen density",
	Args:  cobra.ExactArgs(1),
	RunE:  runIcons,
}

func init() {
	iconsCmd.Flags().StringP("output", "o", ".", "Output directory")
	iconsCmd.Flags().String("res-dir", "res", "Resource directory under the output directory")
	iconsCmd.Flags().String("icon-dir", "mipmap", "Icon directory prefix (mipmap, drawable)")
	iconsCmd.Flags().String("name", "ic_launcher", "Icon file name without extension")
	addFilterFlags(iconsCmd)
	addEncodeFlags(iconsCmd)
	rootCmd.AddCommand(iconsCmd)
}

func runIcons(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	resDir, _ := cmd.Flags().GetString("res-dir")
	iconDir, _ := cmd.Flags().GetString("icon-dir")
	name, _ := cmd.Flags().GetString("name")

	kernel, workers, err := filterFlags(cmd)
	if err != nil {
		return err
	}
	enc, err := encodeOptions(cmd)
	if err != nil {
		return err
	}

	outputs, err := icons.Generate(args[0], icons.Options{
		OutputDir: outputDir,
		ResDir:    resDir,
		IconDir:   iconDir,
		Name:      name,
		Kernel:    kernel,
		Workers:   workers,
		Encode:    enc,
	})

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()
	var total int64
	for _, o := range outputs {
		var size int64
		if fi, err := os.Stat(o.Path); err == nil {
			size = fi.Size()
		}
		total += size
		p.Fprintf(out, "%-8s %3d px  %s (%d bytes)\n", o.Density, o.Size, o.Path, size)
	}
	if err != nil {
		return fmt.Errorf("icons: %w", err)
	}
	p.Fprintf(out, "Generated %d icons, %d bytes total\n", len(outputs), total)
	return nil
}
