// Package png reads and rewrites PNG ancillary colour chunks (sRGB, gAMA,
// iCCP) without touching image data.
package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const signature = "\x89PNG\r\n\x1a\n"

// MaxICCSize bounds the decompressed iCCP profile.
const MaxICCSize = 4 << 20

// SRGBGamma is the gAMA value that accompanies an sRGB chunk (1/2.2 scaled
// by 100000).
const SRGBGamma = 45455

var (
	// ErrNotPNG is returned when data lacks the PNG signature.
	ErrNotPNG = errors.New("png: missing signature")

	// ErrTruncated is returned when a chunk runs past the end of data.
	ErrTruncated = errors.New("png: truncated chunk")
)

// Chunk is a single PNG chunk. Offset and End bound the whole chunk
// including length, type and CRC.
type Chunk struct {
	Type   string
	Data   []byte
	Offset int
	End    int
}

// ReadChunks parses every chunk up to and including IEND. CRCs are not
// verified; the image decoder does that.
func ReadChunks(data []byte) ([]Chunk, error) {
	if len(data) < len(signature) || string(data[:len(signature)]) != signature {
		return nil, ErrNotPNG
	}
	var chunks []Chunk
	pos := len(signature)
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, ErrTruncated
		}
		n := int(binary.BigEndian.Uint32(data[pos:]))
		typ := string(data[pos+4 : pos+8])
		end := pos + 12 + n
		if n < 0 || end > len(data) || end < pos {
			return nil, ErrTruncated
		}
		chunks = append(chunks, Chunk{Type: typ, Data: data[pos+8 : pos+8+n], Offset: pos, End: end})
		pos = end
		if typ == "IEND" {
			return chunks, nil
		}
	}
	return nil, ErrTruncated
}

// ReadICC returns the decompressed profile and its name from an iCCP chunk.
// It returns nil profile and no error when the file has none.
func ReadICC(data []byte) (profile []byte, name string, err error) {
	chunks, err := ReadChunks(data)
	if err != nil {
		return nil, "", err
	}
	for _, c := range chunks {
		if c.Type == "IDAT" {
			break
		}
		if c.Type != "iCCP" {
			continue
		}
		i := bytes.IndexByte(c.Data, 0)
		if i < 1 || i > 79 || i+2 > len(c.Data) {
			return nil, "", fmt.Errorf("png: malformed iCCP chunk")
		}
		if method := c.Data[i+1]; method != 0 {
			return nil, "", fmt.Errorf("png: unknown iCCP compression method %d", method)
		}
		zr, err := zlib.NewReader(bytes.NewReader(c.Data[i+2:]))
		if err != nil {
			return nil, "", fmt.Errorf("png: iCCP: %w", err)
		}
		defer zr.Close()
		p, err := io.ReadAll(io.LimitReader(zr, MaxICCSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("png: iCCP: %w", err)
		}
		if len(p) > MaxICCSize {
			return nil, "", fmt.Errorf("png: iCCP profile exceeds %d bytes", MaxICCSize)
		}
		return p, string(c.Data[:i]), nil
	}
	return nil, "", nil
}

// TagSRGB returns a copy of data carrying sRGB and gAMA chunks with the
// given rendering intent. Existing colour chunks are replaced.
func TagSRGB(data []byte, intent uint8) ([]byte, error) {
	if intent > 3 {
		return nil, fmt.Errorf("png: invalid rendering intent %d", intent)
	}
	gama := make([]byte, 4)
	binary.BigEndian.PutUint32(gama, SRGBGamma)
	return replaceColorChunks(data,
		Chunk{Type: "sRGB", Data: []byte{intent}},
		Chunk{Type: "gAMA", Data: gama},
	)
}

// TagICC returns a copy of data carrying the profile in an iCCP chunk.
// Existing colour chunks are replaced.
func TagICC(data []byte, name string, profile []byte) ([]byte, error) {
	if len(profile) == 0 {
		return nil, errors.New("png: empty ICC profile")
	}
	if name == "" || len(name) > 79 || bytes.IndexByte([]byte(name), 0) >= 0 {
		return nil, fmt.Errorf("png: invalid iCCP profile name %q", name)
	}

	var body bytes.Buffer
	body.WriteString(name)
	body.Write([]byte{0, 0}) // terminator, compression method 0
	zw, err := zlib.NewWriterLevel(&body, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(profile); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return replaceColorChunks(data, Chunk{Type: "iCCP", Data: body.Bytes()})
}

// colorChunks are mutually exclusive with a freshly written tag.
var colorChunks = map[string]bool{"sRGB": true, "gAMA": true, "iCCP": true, "cHRM": true}

// replaceColorChunks writes add immediately after IHDR and drops existing
// colour chunks.
func replaceColorChunks(data []byte, add ...Chunk) ([]byte, error) {
	chunks, err := ReadChunks(data)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return nil, errors.New("png: first chunk is not IHDR")
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 64)
	buf.WriteString(signature)
	buf.Write(data[chunks[0].Offset:chunks[0].End])
	for _, c := range add {
		writeChunk(&buf, c.Type, c.Data)
	}
	for _, c := range chunks[1:] {
		if colorChunks[c.Type] {
			continue
		}
		buf.Write(data[c.Offset:c.End])
	}
	return buf.Bytes(), nil
}

func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	w.Write(hdr[:])
	w.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.Write(sum[:])
}
