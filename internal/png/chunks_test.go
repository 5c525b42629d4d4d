package png

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 13)
	}
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 128})
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func chunkTypes(t *testing.T, data []byte) []string {
	t.Helper()
	chunks, err := ReadChunks(data)
	if err != nil {
		t.Fatalf("ReadChunks: %v", err)
	}
	types := make([]string, len(chunks))
	for i, c := range chunks {
		types[i] = c.Type
	}
	return types
}

func mustDecode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := stdpng.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func TestReadChunks(t *testing.T) {
	types := chunkTypes(t, encodePNG(t))
	if types[0] != "IHDR" || types[len(types)-1] != "IEND" {
		t.Errorf("chunk order = %v", types)
	}

	if _, err := ReadChunks([]byte("GIF89a")); !errors.Is(err, ErrNotPNG) {
		t.Errorf("err = %v, want ErrNotPNG", err)
	}
	data := encodePNG(t)
	if _, err := ReadChunks(data[:len(data)-4]); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestTagSRGB(t *testing.T) {
	orig := encodePNG(t)
	data, err := TagSRGB(orig, 1)
	if err != nil {
		t.Fatalf("TagSRGB: %v", err)
	}

	types := chunkTypes(t, data)
	if len(types) < 3 || types[1] != "sRGB" || types[2] != "gAMA" {
		t.Fatalf("chunk order = %v, want sRGB and gAMA after IHDR", types)
	}
	chunks, _ := ReadChunks(data)
	if got := chunks[1].Data; len(got) != 1 || got[0] != 1 {
		t.Errorf("sRGB payload = %v, want [1]", got)
	}
	if got := chunks[2].Data; !bytes.Equal(got, []byte{0, 0, 0xB1, 0x8F}) {
		t.Errorf("gAMA payload = %v, want 45455", got)
	}

	// Pixels must be untouched and the CRCs valid.
	a, b := mustDecode(t, orig), mustDecode(t, data)
	if !bytes.Equal(a.(*image.NRGBA).Pix, b.(*image.NRGBA).Pix) {
		t.Error("pixel data changed")
	}

	if _, err := TagSRGB(orig, 4); err == nil {
		t.Error("expected error for intent 4")
	}
}

func TestTagICCRoundTrip(t *testing.T) {
	profile := bytes.Repeat([]byte("profile-bytes-"), 200)
	data, err := TagICC(encodePNG(t), "sRGB IEC61966-2.1", profile)
	if err != nil {
		t.Fatalf("TagICC: %v", err)
	}
	mustDecode(t, data)

	got, name, err := ReadICC(data)
	if err != nil {
		t.Fatalf("ReadICC: %v", err)
	}
	if name != "sRGB IEC61966-2.1" {
		t.Errorf("name = %q", name)
	}
	if !bytes.Equal(got, profile) {
		t.Error("profile differs after round trip")
	}
}

func TestTagReplacesColorChunks(t *testing.T) {
	data, err := TagICC(encodePNG(t), "x", []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	data, err = TagSRGB(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range chunkTypes(t, data) {
		if typ == "iCCP" {
			t.Fatal("iCCP survived an sRGB retag")
		}
	}
	profile, _, err := ReadICC(data)
	if err != nil || profile != nil {
		t.Errorf("ReadICC = %v, %v; want nil, nil", profile, err)
	}
}

func TestTagICCInvalid(t *testing.T) {
	data := encodePNG(t)
	if _, err := TagICC(data, "name", nil); err == nil {
		t.Error("expected error for empty profile")
	}
	if _, err := TagICC(data, "", []byte{1}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := TagICC(data, string(make([]byte, 80)), []byte{1}); err == nil {
		t.Error("expected error for long name")
	}
}

func TestReadICCNone(t *testing.T) {
	profile, name, err := ReadICC(encodePNG(t))
	if err != nil || profile != nil || name != "" {
		t.Errorf("ReadICC = %v, %q, %v; want nothing", profile, name, err)
	}
}

func TestReadICCSizeLimit(t *testing.T) {
	// Zeros compress to a few kilobytes but expand past the limit.
	data, err := TagICC(encodePNG(t), "big", make([]byte, MaxICCSize+1))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadICC(data); err == nil {
		t.Error("expected error for an oversize profile")
	}

	data, err = TagICC(encodePNG(t), "max", make([]byte, MaxICCSize))
	if err != nil {
		t.Fatal(err)
	}
	profile, _, err := ReadICC(data)
	if err != nil || len(profile) != MaxICCSize {
		t.Errorf("ReadICC = %d bytes, %v; want %d bytes", len(profile), err, MaxICCSize)
	}
}
