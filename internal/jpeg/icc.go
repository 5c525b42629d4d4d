package jpeg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

const (
	iccMarkerTag    = "ICC_PROFILE\x00"
	iccHeaderSize   = len(iccMarkerTag) + 2     // tag + seq + count
	maxICCChunkData = 65535 - 2 - iccHeaderSize // segment length field counts itself
)

// ExtractICC reassembles an ICC profile from APP2 payloads. Payloads that
// are not ICC chunks are ignored. It returns nil, nil when no profile is
// present.
func ExtractICC(payloads [][]byte) ([]byte, error) {
	type chunk struct {
		seq  int
		data []byte
	}
	var chunks []chunk
	count := 0
	seen := make(map[int]bool)

	for _, p := range payloads {
		if len(p) < iccHeaderSize || string(p[:len(iccMarkerTag)]) != iccMarkerTag {
			continue
		}
		seq, n := int(p[12]), int(p[13])
		if seq == 0 || seq > n {
			return nil, fmt.Errorf("invalid ICC chunk sequence %d/%d", seq, n)
		}
		switch {
		case count == 0:
			count = n
		case n != count:
			return nil, fmt.Errorf("inconsistent ICC chunk count: %d vs %d", n, count)
		}
		if seen[seq] {
			return nil, fmt.Errorf("duplicate ICC chunk %d", seq)
		}
		seen[seq] = true
		chunks = append(chunks, chunk{seq: seq, data: p[iccHeaderSize:]})
	}

	if len(chunks) == 0 {
		return nil, nil
	}
	if len(chunks) != count {
		return nil, fmt.Errorf("expected %d ICC chunks, found %d", count, len(chunks))
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].seq < chunks[j].seq })

	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(c.data)
	}
	return buf.Bytes(), nil
}

// ChunkICC splits an ICC profile into APP2 payloads (tag, 1-based sequence
// number, chunk count, profile bytes).
func ChunkICC(profile []byte) ([][]byte, error) {
	if len(profile) == 0 {
		return nil, errors.New("empty ICC profile")
	}

	n := (len(profile) + maxICCChunkData - 1) / maxICCChunkData
	if n > 255 {
		return nil, fmt.Errorf("ICC profile too large: needs %d chunks (max 255)", n)
	}

	chunks := make([][]byte, 0, n)
	for i := range n {
		start := i * maxICCChunkData
		end := min(start+maxICCChunkData, len(profile))

		c := make([]byte, 0, iccHeaderSize+end-start)
		c = append(c, iccMarkerTag...)
		c = append(c, byte(i+1), byte(n))
		c = append(c, profile[start:end]...)
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// EmbedICC returns a copy of a JPEG stream with the profile written as APP2
// segments. Any existing ICC chunks are dropped. The new segments go after
// a leading JFIF/Exif APP0/APP1 run so those stay first.
func EmbedICC(data, profile []byte) ([]byte, error) {
	segs, err := ReadSegments(data)
	if err != nil {
		return nil, err
	}
	chunks, err := ChunkICC(profile)
	if err != nil {
		return nil, err
	}

	insertAt := 2
	for _, s := range segs {
		if s.Marker != markerAPP0 && s.Marker != markerAPP0+1 {
			break
		}
		insertAt = s.End
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(profile) + len(chunks)*(4+iccHeaderSize))
	buf.Write(data[:insertAt])
	for _, c := range chunks {
		var hdr [4]byte
		hdr[0], hdr[1] = 0xFF, markerAPP2
		binary.BigEndian.PutUint16(hdr[2:], uint16(len(c)+2))
		buf.Write(hdr[:])
		buf.Write(c)
	}

	// Copy the remaining header, skipping stale ICC segments.
	pos := insertAt
	for _, s := range segs {
		if s.Offset < insertAt {
			continue
		}
		if s.Marker == markerAPP2 && bytes.HasPrefix(s.Payload, []byte(iccMarkerTag)) {
			buf.Write(data[pos:s.Offset])
			pos = s.End
		}
	}
	buf.Write(data[pos:])
	return buf.Bytes(), nil
}
