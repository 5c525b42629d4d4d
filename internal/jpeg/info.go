package jpeg

import (
	"encoding/binary"
	"fmt"
)

// ImageInfo contains metadata about a JPEG file.
type ImageInfo struct {
	Width         int
	Height        int
	Precision     int
	NumComponents int
	ColorSpace    string
	Progressive   bool
	ICC           []byte // extracted ICC profile, nil if absent
}

// isSOF reports whether m starts a frame. C4 (DHT), C8 (JPG) and CC (DAC)
// share the range but are not frame headers.
func isSOF(m byte) bool {
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}

func isProgressive(m byte) bool {
	return m == 0xC2 || m == 0xC6 || m == 0xCA || m == 0xCE
}

// GetInfo reads JPEG metadata and extracts any ICC profile without decoding
// the image.
func GetInfo(data []byte) (*ImageInfo, error) {
	segs, err := ReadSegments(data)
	if err != nil {
		return nil, err
	}

	info := &ImageInfo{}
	var sawFrame, sawJFIF bool
	var componentIDs []byte
	adobe := -1 // Adobe APP14 transform flag, -1 if absent
	for _, s := range segs {
		switch {
		case s.Marker == markerAPP0 && len(s.Payload) >= 5 && string(s.Payload[:5]) == "JFIF\x00":
			sawJFIF = true
		case s.Marker == markerAPPE && len(s.Payload) >= 12 && string(s.Payload[:5]) == "Adobe":
			adobe = int(s.Payload[11])
		case isSOF(s.Marker) && !sawFrame:
			p := s.Payload
			if len(p) < 6 {
				return nil, fmt.Errorf("jpeg: short SOF segment (%d bytes)", len(p))
			}
			sawFrame = true
			info.Precision = int(p[0])
			info.Height = int(binary.BigEndian.Uint16(p[1:3]))
			info.Width = int(binary.BigEndian.Uint16(p[3:5]))
			info.NumComponents = int(p[5])
			info.Progressive = isProgressive(s.Marker)
			for i := 0; i < info.NumComponents && 6+i*3 < len(p); i++ {
				componentIDs = append(componentIDs, p[6+i*3])
			}
		}
	}
	if !sawFrame {
		return nil, fmt.Errorf("jpeg: no frame header before scan data")
	}
	info.ColorSpace = colorSpaceName(info.NumComponents, adobe, sawJFIF, componentIDs)

	icc, err := ExtractICC(APP2Payloads(segs))
	if err != nil {
		return nil, fmt.Errorf("extracting ICC: %w", err)
	}
	info.ICC = icc
	return info, nil
}

// colorSpaceName guesses the color space the way libjpeg does: from the
// component count, the Adobe transform flag, JFIF presence and component ids.
func colorSpaceName(n, adobe int, jfif bool, ids []byte) string {
	switch n {
	case 1:
		return "Grayscale"
	case 3:
		if jfif {
			return "YCbCr"
		}
		if adobe >= 0 {
			if adobe == 0 {
				return "RGB"
			}
			return "YCbCr"
		}
		if len(ids) == 3 && ids[0] == 'R' && ids[1] == 'G' && ids[2] == 'B' {
			return "RGB"
		}
		return "YCbCr"
	case 4:
		if adobe == 2 {
			return "YCCK"
		}
		return "CMYK"
	default:
		return fmt.Sprintf("Unknown(%d components)", n)
	}
}
