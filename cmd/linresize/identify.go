package main

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/jpeg"
	"github.com/davesmith10/linresize/internal/png"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect image and ICC profile info",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()
	p.Fprintf(out, "File:        %s\n", path)
	p.Fprintf(out, "Format:      %s\n", format)
	p.Fprintf(out, "Dimensions:  %d x %d\n", cfg.Width, cfg.Height)
	p.Fprintf(out, "File size:   %d bytes (%.1f MB)\n", len(data), float64(len(data))/(1024*1024))

	var icc []byte
	switch format {
	case "jpeg":
		info, err := jpeg.GetInfo(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		p.Fprintf(out, "Components:  %d\n", info.NumComponents)
		p.Fprintf(out, "Color space: %s\n", info.ColorSpace)
		p.Fprintf(out, "Progressive: %v\n", info.Progressive)
		icc = info.ICC
	case "png":
		profile, name, err := png.ReadICC(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if profile != nil {
			p.Fprintf(out, "iCCP name:   %s\n", name)
		}
		icc = profile
	}

	if icc == nil {
		p.Fprintln(out, "ICC profile: none")
		return nil
	}
	pi, err := color.ParseProfileInfo(icc)
	if err != nil {
		p.Fprintf(out, "ICC profile: present (%d bytes) but invalid: %v\n", len(icc), err)
		return nil
	}
	p.Fprintf(out, "ICC profile: %d bytes\n", len(icc))
	p.Fprintf(out, "  Description: %s\n", pi.Description)
	p.Fprintf(out, "  Version:     %s\n", pi.Version)
	p.Fprintf(out, "  Color space: %s\n", color.ColorSpaceName(pi.ColorSpace))
	p.Fprintf(out, "  PCS:         %s\n", color.ColorSpaceName(pi.PCS))
	p.Fprintf(out, "  Class:       %s\n", color.ProfileClassName(pi.Class))
	if !pi.LooksLikeSRGB() {
		p.Fprintln(out, "  Note:        pixels are resized as sRGB regardless of this profile")
	}
	return nil
}
