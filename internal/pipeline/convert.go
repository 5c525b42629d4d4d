package pipeline

import (
	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/ir"
)

// ToLinear converts 8-bit straight-alpha pixels to the filtering domain:
// color decoded by t and coupled to alpha by m, alpha scaled to [0,1].
func ToLinear(img *ir.RGBAImage, t color.Transfer, m color.AlphaMode) *ir.PixelBuffer {
	buf := ir.NewPixelBuffer(img.Width, img.Height)
	s := buf.Samples
	for i := 0; i < len(img.Pixels); i += ir.Channels {
		px := img.Pixels[i : i+ir.Channels : i+ir.Channels]
		a := float32(px[3]) / 255
		s[i+0] = m.Couple(t.Decode(px[0]), a)
		s[i+1] = m.Couple(t.Decode(px[1]), a)
		s[i+2] = m.Couple(t.Decode(px[2]), a)
		s[i+3] = a
	}
	return buf
}

// FromLinear is the inverse of ToLinear. Out-of-range values left by
// negative kernel lobes are clamped when quantized.
func FromLinear(buf *ir.PixelBuffer, t color.Transfer, m color.AlphaMode) *ir.RGBAImage {
	img := &ir.RGBAImage{
		Width:  buf.Width,
		Height: buf.Height,
		Pixels: make([]byte, len(buf.Samples)),
	}
	p := img.Pixels
	for i := 0; i < len(buf.Samples); i += ir.Channels {
		s := buf.Samples[i : i+ir.Channels : i+ir.Channels]
		a := s[3]
		p[i+0] = t.Encode(m.Decouple(s[0], a))
		p[i+1] = t.Encode(m.Decouple(s[1], a))
		p[i+2] = t.Encode(m.Decouple(s[2], a))
		p[i+3] = color.UnitToByte(a)
	}
	return img
}
