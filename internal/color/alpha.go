package color

import (
	"fmt"
	"strings"
)

// Premultiply scales a linear color channel by its alpha fraction.
func Premultiply(c, a float32) float32 {
	return c * a
}

// Demultiply undoes Premultiply. A zero (or negative) alpha carries no
// color information; the value is returned unchanged so that no Inf or NaN
// reaches the encoder.
func Demultiply(p, a float32) float32 {
	if a > 0 {
		return p / a
	}
	return p
}

// AlphaMode selects whether color is coupled to alpha while filtering.
type AlphaMode uint8

const (
	// AlphaPremultiplied filters premultiplied color. Transparent
	// neighbors then contribute nothing to the color of an edge pixel.
	AlphaPremultiplied AlphaMode = iota

	// AlphaStraight filters color and alpha independently. Transparent
	// pixels bleed their (usually black) color into edges.
	AlphaStraight
)

// Couple prepares a color channel for filtering.
func (m AlphaMode) Couple(c, a float32) float32 {
	if m == AlphaStraight {
		return c
	}
	return Premultiply(c, a)
}

// Decouple recovers a color channel after filtering.
func (m AlphaMode) Decouple(p, a float32) float32 {
	if m == AlphaStraight {
		return p
	}
	return Demultiply(p, a)
}

func (m AlphaMode) String() string {
	switch m {
	case AlphaPremultiplied:
		return "premultiplied"
	case AlphaStraight:
		return "straight"
	default:
		return fmt.Sprintf("AlphaMode(%d)", uint8(m))
	}
}

// ParseAlphaMode converts a name to an AlphaMode.
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch strings.ToLower(s) {
	case "premultiplied", "premul", "":
		return AlphaPremultiplied, nil
	case "straight", "none":
		return AlphaStraight, nil
	default:
		return 0, fmt.Errorf("unknown alpha mode: %q", s)
	}
}
