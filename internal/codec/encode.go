package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stdjpeg "image/jpeg"
	stdpng "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/jpeg"
	"github.com/davesmith10/linresize/internal/logging"
	"github.com/davesmith10/linresize/internal/png"
)

// DefaultQuality is the JPEG quality used when EncodeOptions.Quality is 0.
const DefaultQuality = 85

// srgbProfileName is the iCCP profile name written with the embedded
// sRGB profile.
const srgbProfileName = "sRGB"

// ErrInvalidImage is returned when the image handed to the encoder has
// inconsistent dimensions.
var ErrInvalidImage = errors.New("codec: invalid image")

// Compression selects the PNG deflate level.
type Compression int

const (
	CompressionDefault Compression = iota
	CompressionNone
	CompressionFast
	CompressionBest
)

// ParseCompression converts a name (default, none, fast, best) to a
// Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "default", "":
		return CompressionDefault, nil
	case "none":
		return CompressionNone, nil
	case "fast":
		return CompressionFast, nil
	case "best":
		return CompressionBest, nil
	default:
		return 0, fmt.Errorf("unknown compression level: %q", s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionDefault:
		return "default"
	case CompressionNone:
		return "none"
	case CompressionFast:
		return "fast"
	case CompressionBest:
		return "best"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

func (c Compression) level() stdpng.CompressionLevel {
	switch c {
	case CompressionNone:
		return stdpng.NoCompression
	case CompressionFast:
		return stdpng.BestSpeed
	case CompressionBest:
		return stdpng.BestCompression
	default:
		return stdpng.DefaultCompression
	}
}

// ColorTag selects how the output declares its color space.
type ColorTag int

const (
	// TagNone writes no color metadata.
	TagNone ColorTag = iota
	// TagSRGB writes PNG sRGB and gAMA chunks. JPEG output carries no
	// marker for it and is left untagged.
	TagSRGB
	// TagICC embeds an sRGB ICC profile (PNG iCCP or JPEG APP2).
	TagICC
)

// ParseColorTag converts a name (none, srgb, icc) to a ColorTag.
func ParseColorTag(s string) (ColorTag, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return TagNone, nil
	case "srgb":
		return TagSRGB, nil
	case "icc":
		return TagICC, nil
	default:
		return 0, fmt.Errorf("unknown color tag: %q", s)
	}
}

func (t ColorTag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagSRGB:
		return "srgb"
	case TagICC:
		return "icc"
	default:
		return fmt.Sprintf("ColorTag(%d)", int(t))
	}
}

// EncodeOptions controls output encoding. The zero value writes a default
// compression PNG or a quality 85 JPEG without color metadata.
type EncodeOptions struct {
	Compression Compression // PNG only
	Quality     int         // JPEG only, 1-100; 0 means DefaultQuality
	ColorTag    ColorTag
	Intent      int // rendering intent for the sRGB chunk
}

func (o EncodeOptions) quality() (int, error) {
	switch {
	case o.Quality == 0:
		return DefaultQuality, nil
	case o.Quality < 1 || o.Quality > 100:
		return 0, fmt.Errorf("JPEG quality %d out of range 1-100", o.Quality)
	default:
		return o.Quality, nil
	}
}

// FormatForPath picks the output container from the file extension:
// "jpeg" for .jpg and .jpeg, "png" for everything else.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return "png"
	}
}

// FileEncoder writes images to disk, choosing the container from the
// destination's extension.
type FileEncoder struct {
	Options EncodeOptions
}

// Encode writes img to path. The file appears atomically: on error no
// destination file is created or modified.
func (e FileEncoder) Encode(img *ir.RGBAImage, path string) error {
	data, err := EncodeBytes(img, FormatForPath(path), e.Options)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log := logging.Logger()
	if e.Options.ColorTag == TagSRGB {
		log = log.With("intent", color.IntentName(e.Options.Intent))
	}
	log.Debug("encoded",
		"path", path,
		"bytes", len(data),
		"color_tag", e.Options.ColorTag.String())
	return nil
}

// EncodeBytes encodes img as "png" or "jpeg".
func EncodeBytes(img *ir.RGBAImage, format string, opts EncodeOptions) ([]byte, error) {
	if !img.Valid() {
		return nil, ErrInvalidImage
	}
	switch format {
	case "png":
		return encodePNG(img, opts)
	case "jpeg":
		return encodeJPEG(img, opts)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func nrgbaView(img *ir.RGBAImage) *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pixels,
		Stride: img.Width * ir.Channels,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

func encodePNG(img *ir.RGBAImage, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := stdpng.Encoder{CompressionLevel: opts.Compression.level()}
	if err := enc.Encode(&buf, nrgbaView(img)); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}

	switch opts.ColorTag {
	case TagSRGB:
		if opts.Intent < 0 || opts.Intent > color.IntentAbsoluteColorimetric {
			return nil, fmt.Errorf("invalid rendering intent %d", opts.Intent)
		}
		return png.TagSRGB(buf.Bytes(), uint8(opts.Intent))
	case TagICC:
		return png.TagICC(buf.Bytes(), srgbProfileName, color.SRGBProfile)
	default:
		return buf.Bytes(), nil
	}
}

func encodeJPEG(img *ir.RGBAImage, opts EncodeOptions) ([]byte, error) {
	q, err := opts.quality()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := stdjpeg.Encode(&buf, Flatten(img), &stdjpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	switch opts.ColorTag {
	case TagICC:
		return jpeg.EmbedICC(buf.Bytes(), color.SRGBProfile)
	case TagSRGB:
		logging.Logger().Debug("jpeg has no sRGB marker; writing untagged")
	}
	return buf.Bytes(), nil
}

// Flatten composites img over opaque white for formats without an alpha
// channel. Blending happens in linear light, like the resampler.
func Flatten(img *ir.RGBAImage) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < len(img.Pixels); i += ir.Channels {
		px := img.Pixels[i : i+ir.Channels]
		out := dst.Pix[i : i+ir.Channels]
		out[3] = 0xff
		switch px[3] {
		case 0xff:
			copy(out[:3], px[:3])
			continue
		case 0:
			out[0], out[1], out[2] = 0xff, 0xff, 0xff
			continue
		}
		a := float32(px[3]) / 255
		for c := range 3 {
			lin := color.DecodeSRGB(px[c])*a + (1 - a)
			out[c] = color.EncodeSRGB(lin)
		}
	}
	return dst
}

// WriteFileAtomic writes data to a temporary file next to path, syncs it
// and renames it into place. Missing parent directories are created.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
