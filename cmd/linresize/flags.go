package main

import (
	"github.com/spf13/cobra"

	"github.com/davesmith10/linresize/internal/codec"
	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/resample"
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("kernel", "k", "lanczos3", "Resampling kernel (triangle, catmullrom, mitchell, lanczos3 or 0-3)")
	cmd.Flags().Int("workers", 1, "Goroutines per resampling pass")
}

func filterFlags(cmd *cobra.Command) (resample.Kernel, int, error) {
	kernelStr, _ := cmd.Flags().GetString("kernel")
	workers, _ := cmd.Flags().GetInt("workers")

	k, err := resample.ParseKernel(kernelStr)
	if err != nil {
		return 0, 0, err
	}
	return k, workers, nil
}

func addEncodeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("quality", codec.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().String("compression", "default", "PNG compression (default, none, fast, best)")
	cmd.Flags().String("color-tag", "none", "Output color metadata (none, srgb, icc)")
	cmd.Flags().String("intent", "perceptual", "Rendering intent for the sRGB tag (perceptual, relative, saturation, absolute)")
}

func encodeOptions(cmd *cobra.Command) (codec.EncodeOptions, error) {
	quality, _ := cmd.Flags().GetInt("quality")
	compressionStr, _ := cmd.Flags().GetString("compression")
	tagStr, _ := cmd.Flags().GetString("color-tag")
	intentStr, _ := cmd.Flags().GetString("intent")

	compression, err := codec.ParseCompression(compressionStr)
	if err != nil {
		return codec.EncodeOptions{}, err
	}
	tag, err := codec.ParseColorTag(tagStr)
	if err != nil {
		return codec.EncodeOptions{}, err
	}
	intent, err := color.ParseIntent(intentStr)
	if err != nil {
		return codec.EncodeOptions{}, err
	}
	return codec.EncodeOptions{
		Compression: compression,
		Quality:     quality,
		ColorTag:    tag,
		Intent:      intent,
	}, nil
}
