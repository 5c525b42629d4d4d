package resample

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/logging"
)

// Resample errors. Both are precondition failures detected before any
// arithmetic is done.
var (
	// ErrInvalidDimensions is returned when a width or height is not
	// positive or the sample slice does not match the dimensions.
	ErrInvalidDimensions = errors.New("resample: invalid dimensions")

	// ErrUnknownKernel is returned for a kernel value outside the enum.
	ErrUnknownKernel = errors.New("resample: unknown kernel")
)

type config struct {
	workers int
}

// Option configures Resample.
type Option func(*config)

// WithWorkers splits each pass across n goroutines by output row. Values
// below 2 keep the default single-threaded execution. Every output sample
// is still summed by one goroutine in source order, so the result is
// bit-identical for any n.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Resample returns a new buffer of dstW x dstH pixels computed from src
// with kernel k. src is not modified. Color and alpha samples go through
// the same filter; callers that want correct edge blending premultiply
// before calling.
func Resample(src *ir.PixelBuffer, dstW, dstH int, k Kernel, opts ...Option) (*ir.PixelBuffer, error) {
	if !src.Valid() || dstW <= 0 || dstH <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKernel, uint8(k))
	}
	cfg := config{workers: 1}
	for _, o := range opts {
		o(&cfg)
	}

	horiz := newWeightTable(src.Width, dstW, k)
	vert := newWeightTable(src.Height, dstH, k)
	logging.Logger().Debug("resample",
		"kernel", k.String(),
		"src", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"dst", fmt.Sprintf("%dx%d", dstW, dstH),
		"hcontribs", len(horiz.contribs),
		"vcontribs", len(vert.contribs),
		"workers", cfg.workers)

	tmp := ir.NewPixelBuffer(dstW, src.Height)
	forEachBand(src.Height, cfg.workers, func(lo, hi int) {
		resampleRows(src, tmp, horiz, lo, hi)
	})

	dst := ir.NewPixelBuffer(dstW, dstH)
	forEachBand(dstH, cfg.workers, func(lo, hi int) {
		resampleColumns(tmp, dst, vert, lo, hi)
	})
	return dst, nil
}

// resampleRows filters rows [lo,hi) of src horizontally into dst, which has
// the same height as src.
func resampleRows(src, dst *ir.PixelBuffer, t *weightTable, lo, hi int) {
	const c = ir.Channels
	for y := lo; y < hi; y++ {
		srow := src.Samples[y*src.Width*c : (y+1)*src.Width*c]
		drow := dst.Samples[y*dst.Width*c : (y+1)*dst.Width*c]
		for x, sp := range t.spans {
			var r, g, b, a float32
			for _, ct := range t.contribs[sp.start:sp.end] {
				p := srow[ct.index*c : ct.index*c+c]
				r += p[0] * ct.weight
				g += p[1] * ct.weight
				b += p[2] * ct.weight
				a += p[3] * ct.weight
			}
			o := drow[x*c : x*c+c]
			o[0], o[1], o[2], o[3] = r, g, b, a
		}
	}
}

// resampleColumns filters src vertically into output rows [lo,hi) of dst,
// which has the same width as src.
func resampleColumns(src, dst *ir.PixelBuffer, t *weightTable, lo, hi int) {
	const c = ir.Channels
	stride := src.Width * c
	for y := lo; y < hi; y++ {
		sp := t.spans[y]
		drow := dst.Samples[y*stride : (y+1)*stride]
		for i := range drow {
			var v float32
			for _, ct := range t.contribs[sp.start:sp.end] {
				v += src.Samples[ct.index*stride+i] * ct.weight
			}
			drow[i] = v
		}
	}
}

// forEachBand calls fn over [0,n) split into at most workers contiguous
// bands, running bands concurrently when workers > 1.
func forEachBand(n, workers int, fn func(lo, hi int)) {
	if workers < 2 || n < 2 {
		fn(0, n)
		return
	}
	band := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += band {
		hi := min(lo+band, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
