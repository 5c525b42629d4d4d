// Package icons renders an Android launcher icon set from one source
// image, one square icon per screen density.
package icons

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/davesmith10/linresize/internal/codec"
	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/logging"
	"github.com/davesmith10/linresize/internal/pipeline"
	"github.com/davesmith10/linresize/internal/resample"
)

// Density is an Android screen density bucket and its launcher icon edge
// length in pixels.
type Density struct {
	Name string
	Size int
}

// Densities lists the buckets in generation order.
var Densities = []Density{
	{"mdpi", 48},
	{"hdpi", 72},
	{"xhdpi", 96},
	{"xxhdpi", 144},
	{"xxxhdpi", 192},
}

// Options controls Generate. Empty strings select the defaults.
type Options struct {
	OutputDir string
	ResDir    string // default "res"
	IconDir   string // default "mipmap"
	Name      string // default "ic_launcher"
	Kernel    resample.Kernel
	Workers   int
	Encode    codec.EncodeOptions
}

func (o *Options) setDefaults() {
	if o.ResDir == "" {
		o.ResDir = "res"
	}
	if o.IconDir == "" {
		o.IconDir = "mipmap"
	}
	if o.Name == "" {
		o.Name = "ic_launcher"
	}
}

// Output is one generated icon.
type Output struct {
	Density string
	Size    int
	Path    string
}

// Path returns where the icon for density d is written.
func Path(opts Options, d Density, ext string) string {
	opts.setDefaults()
	return filepath.Join(opts.OutputDir, opts.ResDir, opts.IconDir+"-"+d.Name, opts.Name+ext)
}

// supportedExt returns the lower-cased extension of input if icons can be
// written in that format.
func supportedExt(input string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(input))
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return ext, true
	}
	return "", false
}

// onceDecoder decodes its file on first use and hands out the same image
// afterwards.
type onceDecoder struct {
	dec pipeline.Decoder
	img *ir.RGBAImage
}

func (d *onceDecoder) Decode(path string) (*ir.RGBAImage, error) {
	if d.img != nil {
		return d.img, nil
	}
	img, err := d.dec.Decode(path)
	if err != nil {
		return nil, err
	}
	d.img = img
	return img, nil
}

// Generate writes one icon per density. Icons keep the input's format.
// Generation stops at the first failure; the icons written before it are
// returned along with the error.
func Generate(input string, opts Options) ([]Output, error) {
	opts.setDefaults()
	ext, ok := supportedExt(input)
	if !ok {
		return nil, &pipeline.Error{
			Kind: pipeline.KindPrecondition,
			Op:   "icons",
			Err:  fmt.Errorf("unsupported icon source %q: want .png, .jpg or .jpeg", filepath.Base(input)),
		}
	}
	for _, s := range []string{opts.ResDir, opts.IconDir, opts.Name} {
		if strings.ContainsRune(s, filepath.Separator) || strings.ContainsRune(s, '/') {
			return nil, &pipeline.Error{
				Kind: pipeline.KindPrecondition,
				Op:   "icons",
				Err:  errors.New("resource, icon directory and icon names must not contain path separators"),
			}
		}
	}

	c := &pipeline.Converter{
		Decoder: &onceDecoder{dec: codec.FileDecoder{}},
		Encoder: codec.FileEncoder{Options: opts.Encode},
	}
	log := logging.Logger()
	var outputs []Output
	for _, d := range Densities {
		path := Path(opts, d, ext)
		_, err := c.Run(input, path, pipeline.Options{
			Width:   d.Size,
			Height:  d.Size,
			Kernel:  opts.Kernel,
			Workers: opts.Workers,
		})
		if err != nil {
			return outputs, fmt.Errorf("%s: %w", d.Name, err)
		}
		log.Info("icon written", "density", d.Name, "size", d.Size, "path", path)
		outputs = append(outputs, Output{Density: d.Name, Size: d.Size, Path: path})
	}
	return outputs, nil
}
