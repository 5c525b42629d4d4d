// Package color holds the per-sample color arithmetic used around the
// resampler: the sRGB transfer function, alpha premultiplication, and ICC
// profile inspection for decoded images.
package color

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

var (
	srgbLUTOnce sync.Once
	srgbLUT     [256]float32
)

// decodeTable returns the sRGB -> linear table, building it on first use.
// The table is never written after construction.
func decodeTable() *[256]float32 {
	srgbLUTOnce.Do(func() {
		for i := range srgbLUT {
			srgbLUT[i] = float32(srgbToLinear(float64(i) / 255))
		}
	})
	return &srgbLUT
}

// srgbToLinear is the sRGB EOTF for s in [0,1].
func srgbToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// linearToSRGB is the inverse of srgbToLinear for l in [0,1].
func linearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}

// DecodeSRGB converts a gamma-encoded 8-bit sample to linear light in [0,1].
//
//	DecodeSRGB(128) // ~0.2159, not 0.5
func DecodeSRGB(v uint8) float32 {
	return decodeTable()[v]
}

// EncodeSRGB converts a linear-light value back to an 8-bit gamma-encoded
// sample. It is computed analytically; out of range input (including
// overshoot from negative kernel lobes) is clamped and NaN maps to 0.
func EncodeSRGB(l float32) uint8 {
	lf := float64(l)
	if !(lf > 0) {
		return 0
	}
	if lf >= 1 {
		return 255
	}
	return quantize(linearToSRGB(lf))
}

// quantize maps [0,1] to [0,255] with round-to-nearest and clamping.
// No dithering is applied.
func quantize(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	n := math.Round(v * 255)
	if n >= 255 {
		return 255
	}
	return uint8(n)
}

// UnitToByte maps a [0,1] fraction to [0,255] with rounding and clamping.
// It is used for alpha, which is never gamma encoded.
func UnitToByte(v float32) uint8 {
	return quantize(float64(v))
}

// Transfer selects how 8-bit color samples map to the values the
// resampler filters.
type Transfer uint8

const (
	// TransferSRGB linearizes with the sRGB transfer function. This is the
	// default and the only choice that gives physically correct averages.
	TransferSRGB Transfer = iota

	// TransferLinear treats samples as already linear (v/255), i.e. filters
	// directly in gamma-encoded space.
	TransferLinear
)

// Decode converts an 8-bit color sample to the filtering domain.
func (t Transfer) Decode(v uint8) float32 {
	if t == TransferLinear {
		return float32(v) / 255
	}
	return DecodeSRGB(v)
}

// Encode converts a filtered value back to an 8-bit color sample.
func (t Transfer) Encode(l float32) uint8 {
	if t == TransferLinear {
		return UnitToByte(l)
	}
	return EncodeSRGB(l)
}

func (t Transfer) String() string {
	switch t {
	case TransferSRGB:
		return "srgb"
	case TransferLinear:
		return "linear"
	default:
		return fmt.Sprintf("Transfer(%d)", uint8(t))
	}
}

// ParseTransfer converts a name to a Transfer.
func ParseTransfer(s string) (Transfer, error) {
	switch strings.ToLower(s) {
	case "srgb", "":
		return TransferSRGB, nil
	case "linear", "none":
		return TransferLinear, nil
	default:
		return 0, fmt.Errorf("unknown transfer function: %q", s)
	}
}
