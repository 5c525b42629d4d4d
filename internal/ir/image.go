package ir

// Channels is the number of interleaved samples per pixel in both
// representations below (R, G, B, A).
const Channels = 4

// RGBAImage is the 8-bit representation exchanged with the decode and
// encode collaborators. Pixels are interleaved R,G,B,A bytes with straight
// (non-premultiplied) alpha, row-major.
type RGBAImage struct {
	Width  int
	Height int
	Pixels []byte // len = Width * Height * 4
	Format string // decoder name ("png", "jpeg", ...), empty if unknown
	ICC    []byte // embedded ICC profile, nil if absent
}

// PixelBuffer is the floating point representation the resampler works on.
// Samples are indexed (row, column, channel), row-major, channel-minor.
type PixelBuffer struct {
	Width   int
	Height  int
	Samples []float32 // len = Width * Height * 4
}

// NewPixelBuffer allocates a zeroed buffer for w x h pixels.
func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{
		Width:   w,
		Height:  h,
		Samples: make([]float32, w*h*Channels),
	}
}

// Valid reports whether the dimensions are positive and the sample slice
// has the matching length.
func (b *PixelBuffer) Valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Samples) == b.Width*b.Height*Channels
}

// Valid reports whether the dimensions are positive and the pixel slice
// has the matching length.
func (m *RGBAImage) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0 && len(m.Pixels) == m.Width*m.Height*Channels
}
