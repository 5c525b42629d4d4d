// Package jpeg reads and rewrites JPEG header segments without decoding
// image data: dimensions, component layout, and ICC profiles carried in
// APP2 markers.
package jpeg

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Marker codes used here.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP2 = 0xE2
	markerAPPE = 0xEE
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

var (
	// ErrNotJPEG is returned when data does not start with an SOI marker.
	ErrNotJPEG = errors.New("jpeg: missing SOI marker")

	// ErrTruncated is returned when a segment runs past the end of data.
	ErrTruncated = errors.New("jpeg: truncated segment")
)

// Segment is one header marker segment. Payload excludes the marker and
// the two length bytes.
type Segment struct {
	Marker  byte
	Offset  int // offset of the first 0xFF byte
	End     int // offset just past the segment
	Payload []byte
}

// ReadSegments returns the header segments between SOI and the first SOS
// (inclusive), which is everything that describes the image without
// touching entropy-coded data.
func ReadSegments(data []byte) ([]Segment, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, ErrNotJPEG
	}
	var segs []Segment
	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("jpeg: expected marker at offset %d, found 0x%02x", pos, data[pos])
		}
		start := pos
		// Any number of 0xFF fill bytes may precede a marker.
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return nil, ErrTruncated
		}
		m := data[pos]
		pos++
		if m == markerEOI {
			return segs, nil
		}
		if m == markerTEM || (m >= markerRST0 && m <= markerRST7) {
			segs = append(segs, Segment{Marker: m, Offset: start, End: pos})
			continue
		}
		if pos+2 > len(data) {
			return nil, ErrTruncated
		}
		n := int(binary.BigEndian.Uint16(data[pos:]))
		if n < 2 || pos+n > len(data) {
			return nil, ErrTruncated
		}
		segs = append(segs, Segment{Marker: m, Offset: start, End: pos + n, Payload: data[pos+2 : pos+n]})
		pos += n
		if m == markerSOS {
			return segs, nil
		}
	}
	return nil, ErrTruncated
}

// APP2Payloads collects the payloads of all APP2 segments.
func APP2Payloads(segs []Segment) [][]byte {
	var out [][]byte
	for _, s := range segs {
		if s.Marker == markerAPP2 {
			out = append(out, s.Payload)
		}
	}
	return out
}
