package color

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"seehuhn.de/go/icc"
)

// SRGBProfile is the ICC v4 sRGB profile embedded into output when the
// caller asks for an ICC color tag.
var SRGBProfile = icc.SRGBv4Profile

const (
	maxProfileSize = 4 * 1024 * 1024 // 4 MB
	acspMagic      = 0x61637370      // 'acsp'
	headerSize     = 128
)

// ProfileInfo contains metadata parsed from an ICC profile header.
type ProfileInfo struct {
	Size        uint32
	Version     string
	ColorSpace  string // "RGB ", "GRAY", "CMYK", ...
	PCS         string // "XYZ ", "Lab "
	Class       string // "mntr", "prtr", "scnr", ...
	Description string // from the 'desc' tag, empty if absent
	Components  int    // from the decoded profile, 0 if it did not decode
}

// ParseProfileInfo reads ICC header metadata from raw profile bytes.
func ParseProfileInfo(data []byte) (*ProfileInfo, error) {
	if len(data) < headerSize {
		return nil, errors.New("ICC profile too short (< 128 bytes)")
	}
	if uint32(len(data)) > maxProfileSize {
		return nil, fmt.Errorf("ICC profile too large (%d bytes, max %d)", len(data), maxProfileSize)
	}
	sig := binary.BigEndian.Uint32(data[36:40])
	if sig != acspMagic {
		return nil, fmt.Errorf("invalid ICC signature: 0x%08x (expected 0x%08x)", sig, acspMagic)
	}
	major := data[8]
	minor := data[9] >> 4
	bugfix := data[9] & 0x0f

	info := &ProfileInfo{
		Size:        binary.BigEndian.Uint32(data[0:4]),
		Version:     fmt.Sprintf("%d.%d.%d", major, minor, bugfix),
		ColorSpace:  string(data[16:20]),
		PCS:         string(data[20:24]),
		Class:       string(data[12:16]),
		Description: profileDescription(data),
	}
	if p, err := icc.Decode(data); err == nil {
		info.Components = p.ColorSpace.NumComponents()
	}
	return info, nil
}

// IsRGB reports whether the profile describes an RGB color space.
func (pi *ProfileInfo) IsRGB() bool {
	return pi.ColorSpace == "RGB "
}

// LooksLikeSRGB reports whether the profile is an RGB profile whose
// description names sRGB. Pixels of such images need no conversion before
// they are treated as sRGB.
func (pi *ProfileInfo) LooksLikeSRGB() bool {
	return pi.IsRGB() && strings.Contains(strings.ToLower(pi.Description), "srgb")
}

// profileDescription extracts the 'desc' tag text. It understands the v2
// textDescriptionType and the v4 multiLocalizedUnicodeType (first record).
func profileDescription(data []byte) string {
	if len(data) < headerSize+4 {
		return ""
	}
	count := int(binary.BigEndian.Uint32(data[headerSize:]))
	for i := 0; i < count; i++ {
		entry := headerSize + 4 + i*12
		if entry+12 > len(data) {
			return ""
		}
		if string(data[entry:entry+4]) != "desc" {
			continue
		}
		off := int(binary.BigEndian.Uint32(data[entry+4:]))
		size := int(binary.BigEndian.Uint32(data[entry+8:]))
		if off < 0 || size < 12 || off+size > len(data) {
			return ""
		}
		return decodeTextTag(data[off : off+size])
	}
	return ""
}

func decodeTextTag(tag []byte) string {
	switch string(tag[:4]) {
	case "desc":
		n := int(binary.BigEndian.Uint32(tag[8:12]))
		if n <= 0 || 12+n > len(tag) {
			return ""
		}
		return string(bytes.TrimRight(tag[12:12+n], "\x00"))
	case "mluc":
		if len(tag) < 28 {
			return ""
		}
		n := int(binary.BigEndian.Uint32(tag[20:24]))
		off := int(binary.BigEndian.Uint32(tag[24:28]))
		if off+n > len(tag) || n%2 != 0 {
			return ""
		}
		units := make([]uint16, n/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(tag[off+2*i:])
		}
		return strings.TrimRight(string(utf16.Decode(units)), "\x00")
	default:
		return ""
	}
}

// ColorSpaceName returns a human-readable name for an ICC color space signature.
func ColorSpaceName(sig string) string {
	switch sig {
	case "RGB ":
		return "RGB"
	case "CMYK":
		return "CMYK"
	case "GRAY":
		return "Grayscale"
	case "Lab ":
		return "CIELAB"
	case "XYZ ":
		return "CIEXYZ"
	default:
		return sig
	}
}

// ProfileClassName returns a human-readable name for an ICC profile class.
func ProfileClassName(sig string) string {
	switch sig {
	case "mntr":
		return "Display"
	case "prtr":
		return "Output"
	case "scnr":
		return "Input"
	case "link":
		return "DeviceLink"
	case "spac":
		return "ColorSpace"
	case "abst":
		return "Abstract"
	case "nmcl":
		return "NamedColor"
	default:
		return sig
	}
}
