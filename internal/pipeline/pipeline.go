// Package pipeline resizes images in linear light with premultiplied
// alpha: decode, linearize, resample, encode.
package pipeline

import (
	"fmt"
	"math"

	"github.com/davesmith10/linresize/internal/codec"
	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/logging"
	"github.com/davesmith10/linresize/internal/resample"
)

// Size limits for the output and for the intermediate buffer of the
// horizontal pass (output width by source height).
const (
	MaxDimension = 1 << 20
	MaxPixels    = 1 << 28
)

// Decoder reads an image file into straight-alpha RGBA8.
type Decoder interface {
	Decode(path string) (*ir.RGBAImage, error)
}

// Encoder writes straight-alpha RGBA8 to a file.
type Encoder interface {
	Encode(img *ir.RGBAImage, path string) error
}

// Options controls a resize.
//
// The target size is given either as dimensions or as a scale factor. With
// only one of Width and Height set the other follows the source aspect
// ratio.
type Options struct {
	Width    int
	Height   int
	Scale    float64
	Kernel   resample.Kernel
	Transfer color.Transfer
	Alpha    color.AlphaMode
	Workers  int // resampler goroutines; 0 or 1 runs on the calling goroutine

	// Encode is used by Run to configure the file encoder. Converter
	// ignores it.
	Encode codec.EncodeOptions
}

// Result describes a completed run.
type Result struct {
	SrcWidth    int
	SrcHeight   int
	DstWidth    int
	DstHeight   int
	PassThrough bool   // source was written unchanged
	Format      string // source format reported by the decoder
}

// Converter runs the pipeline with injected collaborators.
type Converter struct {
	Decoder Decoder
	Encoder Encoder
}

// Run resizes the file at inputPath into outputPath using the file codecs.
func Run(inputPath, outputPath string, opts Options) (*Result, error) {
	c := &Converter{
		Decoder: codec.FileDecoder{},
		Encoder: codec.FileEncoder{Options: opts.Encode},
	}
	return c.Run(inputPath, outputPath, opts)
}

// ResampleImage resizes inputPath to exactly width x height with kernel k,
// in linear sRGB with premultiplied alpha.
func ResampleImage(inputPath, outputPath string, width, height int, k resample.Kernel) error {
	if width <= 0 || height <= 0 {
		return preconditionError("options", "output dimensions must be positive, got %dx%d", width, height)
	}
	_, err := Run(inputPath, outputPath, Options{Width: width, Height: height, Kernel: k})
	return err
}

// Run executes the pipeline. Stages run strictly in order and each one
// finishes before the next starts.
func (c *Converter) Run(inputPath, outputPath string, opts Options) (*Result, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	log := logging.Logger()

	// 1. Decode
	src, err := c.Decoder.Decode(inputPath)
	if err != nil {
		return nil, inputError("decode", err)
	}
	if !src.Valid() {
		return nil, inputError("decode", fmt.Errorf("decoder returned invalid %dx%d image", src.Width, src.Height))
	}

	dstW, dstH, err := targetSize(src.Width, src.Height, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{
		SrcWidth:  src.Width,
		SrcHeight: src.Height,
		DstWidth:  dstW,
		DstHeight: dstH,
		Format:    src.Format,
	}

	// 2. Pass-through: identical dimensions skip the numeric stages so the
	// bytes are preserved exactly.
	if dstW == src.Width && dstH == src.Height {
		log.Debug("pass-through", "width", dstW, "height", dstH)
		if err := c.Encoder.Encode(src, outputPath); err != nil {
			return nil, resourceError("encode", err)
		}
		res.PassThrough = true
		return res, nil
	}

	// 3. Linearize and couple alpha
	lin := ToLinear(src, opts.Transfer, opts.Alpha)
	log.Debug("linearized",
		"transfer", opts.Transfer.String(),
		"alpha", opts.Alpha.String())

	// 4. Resample
	out, err := resample.Resample(lin, dstW, dstH, opts.Kernel, resample.WithWorkers(opts.Workers))
	if err != nil {
		return nil, preconditionError("resample", "%w", err)
	}

	// 5. Decouple alpha and re-encode transfer
	dst := FromLinear(out, opts.Transfer, opts.Alpha)
	dst.Format = src.Format
	dst.ICC = src.ICC

	// 6. Encode
	if err := c.Encoder.Encode(dst, outputPath); err != nil {
		return nil, resourceError("encode", err)
	}
	log.Debug("resized",
		"src", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"dst", fmt.Sprintf("%dx%d", dstW, dstH),
		"kernel", opts.Kernel.String())
	return res, nil
}

// validate checks everything that can be checked without the source image.
func validate(opts Options) error {
	if opts.Width < 0 || opts.Height < 0 {
		return preconditionError("options", "output dimensions must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if math.IsNaN(opts.Scale) || math.IsInf(opts.Scale, 0) || opts.Scale < 0 {
		return preconditionError("options", "invalid scale %v", opts.Scale)
	}
	hasDims := opts.Width > 0 || opts.Height > 0
	switch {
	case hasDims && opts.Scale > 0:
		return preconditionError("options", "give either output dimensions or a scale, not both")
	case !hasDims && opts.Scale == 0:
		return preconditionError("options", "output dimensions must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if !opts.Kernel.IsValid() {
		return preconditionError("options", "%w: %d", resample.ErrUnknownKernel, uint8(opts.Kernel))
	}
	return nil
}

// targetSize resolves the output dimensions for a srcW x srcH source.
func targetSize(srcW, srcH int, opts Options) (int, int, error) {
	var w, h float64
	switch {
	case opts.Width > 0 && opts.Height > 0:
		w, h = float64(opts.Width), float64(opts.Height)
	case opts.Width > 0:
		w = float64(opts.Width)
		h = float64(srcH) * w / float64(srcW)
	case opts.Height > 0:
		h = float64(opts.Height)
		w = float64(srcW) * h / float64(srcH)
	default:
		w, h = float64(srcW)*opts.Scale, float64(srcH)*opts.Scale
	}
	w, h = max(1, math.Round(w)), max(1, math.Round(h))
	if w > MaxDimension || h > MaxDimension {
		return 0, 0, preconditionError("options", "output size %.0fx%.0f exceeds %d pixels per axis", w, h, MaxDimension)
	}
	if w*h > MaxPixels || w*float64(srcH) > MaxPixels {
		return 0, 0, preconditionError("options", "output size %.0fx%.0f from a %dx%d source exceeds %d pixels", w, h, srcW, srcH, MaxPixels)
	}
	return int(w), int(h), nil
}
