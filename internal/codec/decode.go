// Package codec converts between image files and the RGBA8 representation
// used by the resampling pipeline.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/jpeg"
	"github.com/davesmith10/linresize/internal/logging"
	"github.com/davesmith10/linresize/internal/png"
)

// ErrEmptyImage is returned for images with a zero-sized bounds rectangle.
var ErrEmptyImage = errors.New("codec: image has no pixels")

// FileDecoder reads image files in any registered format: PNG, JPEG, GIF,
// BMP, TIFF and WebP.
type FileDecoder struct{}

// Decode reads and decodes the file at path.
func (FileDecoder) Decode(path string) (*ir.RGBAImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeBytes decodes an encoded image held in memory. Whatever the source
// layout, the result has four channels with straight alpha; no transfer
// function is applied.
func DecodeBytes(data []byte) (*ir.RGBAImage, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	out := &ir.RGBAImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: ToNRGBA(src).Pix,
		Format: format,
		ICC:    embeddedProfile(data, format),
	}
	logging.Logger().Debug("decoded",
		"format", format,
		"width", out.Width,
		"height", out.Height,
		"source_type", fmt.Sprintf("%T", src),
		"icc_bytes", len(out.ICC))
	return out, nil
}

// ToNRGBA returns src as a tightly packed *image.NRGBA with its origin at
// (0, 0). A matching NRGBA is copied byte for byte so fully transparent
// pixels keep their color; other layouts are converted with draw.Src.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if n, ok := src.(*image.NRGBA); ok {
		rowBytes := b.Dx() * ir.Channels
		for y := 0; y < b.Dy(); y++ {
			off := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], n.Pix[off:off+rowBytes])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// embeddedProfile returns the ICC profile stored in a PNG or JPEG stream
// when it describes an RGB space. Pixels are always treated as sRGB; a
// profile that says otherwise is kept for the record and reported.
func embeddedProfile(data []byte, format string) []byte {
	var (
		profile []byte
		err     error
	)
	switch format {
	case "png":
		profile, _, err = png.ReadICC(data)
	case "jpeg":
		var segs []jpeg.Segment
		if segs, err = jpeg.ReadSegments(data); err == nil {
			profile, err = jpeg.ExtractICC(jpeg.APP2Payloads(segs))
		}
	default:
		return nil
	}
	log := logging.Logger()
	if err != nil {
		log.Warn("ignoring unreadable embedded ICC profile", "format", format, "err", err)
		return nil
	}
	if profile == nil {
		return nil
	}

	info, err := color.ParseProfileInfo(profile)
	if err != nil {
		log.Warn("ignoring invalid embedded ICC profile", "format", format, "err", err)
		return nil
	}
	if !info.IsRGB() {
		log.Info("discarding non-RGB ICC profile",
			"color_space", color.ColorSpaceName(info.ColorSpace))
		return nil
	}
	if !info.LooksLikeSRGB() {
		log.Warn("embedded ICC profile is not sRGB; pixels are treated as sRGB",
			"description", info.Description)
	}
	return profile
}
