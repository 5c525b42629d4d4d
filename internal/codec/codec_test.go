package codec

import (
	"bytes"
	"encoding/json"
	"image"
	stdcolor "image/color"
	"image/gif"
	stdjpeg "image/jpeg"
	stdpng "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/davesmith10/linresize/internal/color"
	"github.com/davesmith10/linresize/internal/ir"
	"github.com/davesmith10/linresize/internal/jpeg"
	"github.com/davesmith10/linresize/internal/logging"
	"github.com/davesmith10/linresize/internal/png"
)

// testNRGBA returns a small image with varied colors, including a fully
// transparent pixel whose color must survive decoding.
func testNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := range 4 {
		for x := range 6 {
			img.SetNRGBA(x, y, stdcolor.NRGBA{uint8(40 * x), uint8(60 * y), 200, 255})
		}
	}
	img.SetNRGBA(1, 1, stdcolor.NRGBA{10, 20, 30, 0})
	img.SetNRGBA(2, 1, stdcolor.NRGBA{250, 120, 0, 77})
	return img
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func encodeWith(t *testing.T, fn func(*bytes.Buffer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNGPreservesBytes(t *testing.T) {
	src := testNRGBA()
	data := encodeWith(t, func(w *bytes.Buffer) error { return stdpng.Encode(w, src) })

	img, err := FileDecoder{}.Decode(writeFile(t, "in.png", data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 6 || img.Height != 4 || img.Format != "png" {
		t.Errorf("got %dx%d %q, want 6x4 png", img.Width, img.Height, img.Format)
	}
	if diff := cmp.Diff(src.Pix, img.Pixels); diff != "" {
		t.Errorf("pixels differ (-want +got):\n%s", diff)
	}
	if img.ICC != nil {
		t.Errorf("unexpected ICC profile")
	}
}

func TestDecodeFormats(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(50 * i)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range rgba.Pix {
		rgba.Pix[i] = 0xff
	}
	pal := image.NewPaletted(image.Rect(0, 0, 3, 2), stdcolor.Palette{
		stdcolor.RGBA{0, 0, 0, 255}, stdcolor.RGBA{255, 255, 255, 255},
	})

	tests := []struct {
		name   string
		format string
		data   func(*bytes.Buffer) error
	}{
		{"gray png", "png", func(w *bytes.Buffer) error { return stdpng.Encode(w, gray) }},
		{"jpeg", "jpeg", func(w *bytes.Buffer) error { return stdjpeg.Encode(w, rgba, nil) }},
		{"gif", "gif", func(w *bytes.Buffer) error { return gif.Encode(w, pal, nil) }},
		{"bmp", "bmp", func(w *bytes.Buffer) error { return bmp.Encode(w, rgba) }},
		{"tiff", "tiff", func(w *bytes.Buffer) error { return tiff.Encode(w, gray, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBytes(encodeWith(t, tt.data))
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if img.Format != tt.format {
				t.Errorf("format = %q, want %q", img.Format, tt.format)
			}
			if !img.Valid() || img.Width != 3 || img.Height != 2 {
				t.Fatalf("got %dx%d with %d bytes", img.Width, img.Height, len(img.Pixels))
			}
			for i := 3; i < len(img.Pixels); i += ir.Channels {
				if img.Pixels[i] != 0xff {
					t.Fatalf("alpha at byte %d = %d, want 255", i, img.Pixels[i])
				}
			}
		})
	}
}

func TestDecodeGrayExpands(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0], gray.Pix[1] = 17, 230
	img, err := DecodeBytes(encodeWith(t, func(w *bytes.Buffer) error { return stdpng.Encode(w, gray) }))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{17, 17, 17, 255, 230, 230, 230, 255}
	if diff := cmp.Diff(want, img.Pixels); diff != "" {
		t.Errorf("pixels (-want +got):\n%s", diff)
	}
}

func TestToNRGBASubImage(t *testing.T) {
	src := testNRGBA()
	sub := src.SubImage(image.Rect(2, 1, 5, 3)).(*image.NRGBA)
	got := ToNRGBA(sub)
	if got.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("rect = %v", got.Rect)
	}
	for y := range 2 {
		for x := range 3 {
			if a, b := got.NRGBAAt(x, y), src.NRGBAAt(x+2, y+1); a != b {
				t.Errorf("(%d,%d) = %v, want %v", x, y, a, b)
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := (FileDecoder{}).Decode(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := DecodeBytes([]byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestDecodeKeepsSRGBProfile(t *testing.T) {
	plain := encodeWith(t, func(w *bytes.Buffer) error { return stdpng.Encode(w, testNRGBA()) })
	tagged, err := png.TagICC(plain, "sRGB", color.SRGBProfile)
	if err != nil {
		t.Fatal(err)
	}
	img, err := DecodeBytes(tagged)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.ICC, color.SRGBProfile) {
		t.Errorf("ICC = %d bytes, want the embedded sRGB profile", len(img.ICC))
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	plainJPEG := encodeWith(t, func(w *bytes.Buffer) error { return stdjpeg.Encode(w, rgba, nil) })
	taggedJPEG, err := jpeg.EmbedICC(plainJPEG, color.SRGBProfile)
	if err != nil {
		t.Fatal(err)
	}
	img, err = DecodeBytes(taggedJPEG)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.ICC, color.SRGBProfile) {
		t.Errorf("jpeg ICC = %d bytes, want the embedded sRGB profile", len(img.ICC))
	}
}

func TestDecodeDropsInvalidProfile(t *testing.T) {
	plain := encodeWith(t, func(w *bytes.Buffer) error { return stdpng.Encode(w, testNRGBA()) })
	tagged, err := png.TagICC(plain, "junk", bytes.Repeat([]byte{7}, 200))
	if err != nil {
		t.Fatal(err)
	}
	img, err := DecodeBytes(tagged)
	if err != nil {
		t.Fatal(err)
	}
	if img.ICC != nil {
		t.Error("invalid profile was kept")
	}
}

func testImage() *ir.RGBAImage {
	src := testNRGBA()
	return &ir.RGBAImage{Width: 6, Height: 4, Pixels: src.Pix}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionDefault, CompressionNone, CompressionFast, CompressionBest} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.png")
			in := testImage()
			if err := (FileEncoder{Options: EncodeOptions{Compression: c}}).Encode(in, path); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			out, err := FileDecoder{}.Decode(path)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(in.Pixels, out.Pixels); diff != "" {
				t.Errorf("pixels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeColorTags(t *testing.T) {
	img := testImage()

	data, err := EncodeBytes(img, "png", EncodeOptions{ColorTag: TagSRGB, Intent: color.IntentSaturation})
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := png.ReadChunks(data)
	if err != nil {
		t.Fatal(err)
	}
	if chunks[1].Type != "sRGB" || chunks[1].Data[0] != color.IntentSaturation {
		t.Errorf("second chunk = %s %v, want sRGB with intent 2", chunks[1].Type, chunks[1].Data)
	}

	data, err = EncodeBytes(img, "png", EncodeOptions{ColorTag: TagICC})
	if err != nil {
		t.Fatal(err)
	}
	profile, name, err := png.ReadICC(data)
	if err != nil {
		t.Fatal(err)
	}
	if name != srgbProfileName || !bytes.Equal(profile, color.SRGBProfile) {
		t.Errorf("iCCP = %q with %d bytes", name, len(profile))
	}

	data, err = EncodeBytes(img, "jpeg", EncodeOptions{ColorTag: TagICC})
	if err != nil {
		t.Fatal(err)
	}
	info, err := jpeg.GetInfo(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(info.ICC, color.SRGBProfile) {
		t.Errorf("jpeg ICC = %d bytes", len(info.ICC))
	}

	if _, err := EncodeBytes(img, "png", EncodeOptions{ColorTag: TagSRGB, Intent: 9}); err == nil {
		t.Error("expected error for intent 9")
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := &ir.RGBAImage{Width: 16, Height: 16, Pixels: make([]byte, 16*16*4)}
	// Left half opaque mid gray, right half fully transparent.
	for y := range 16 {
		for x := range 8 {
			i := (y*16 + x) * 4
			img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2], img.Pixels[i+3] = 128, 128, 128, 255
		}
	}
	path := filepath.Join(t.TempDir(), "out.JPG")
	if err := (FileEncoder{Options: EncodeOptions{Quality: 95}}).Encode(img, path); err != nil {
		t.Fatal(err)
	}
	out, err := FileDecoder{}.Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Format != "jpeg" {
		t.Fatalf("format = %q", out.Format)
	}
	near := func(got byte, want int) bool { return int(got) >= want-6 && int(got) <= want+6 }
	left := out.Pixels[(8*16+2)*4:]
	right := out.Pixels[(8*16+13)*4:]
	if !near(left[0], 128) || left[3] != 255 {
		t.Errorf("left pixel = %v, want ~128 opaque", left[:4])
	}
	if !near(right[0], 255) {
		t.Errorf("right pixel = %v, want ~white", right[:4])
	}

	if _, err := EncodeBytes(img, "jpeg", EncodeOptions{Quality: 101}); err == nil {
		t.Error("expected error for quality 101")
	}
}

func TestFlatten(t *testing.T) {
	img := &ir.RGBAImage{Width: 3, Height: 1, Pixels: []byte{
		10, 20, 30, 255,
		10, 20, 30, 0,
		0, 0, 0, 128,
	}}
	got := Flatten(img).Pix
	want := []byte{
		10, 20, 30, 255,
		255, 255, 255, 255,
		// Half-covered black over white is half of the linear intensity.
		color.EncodeSRGB(1 - 128.0/255), color.EncodeSRGB(1 - 128.0/255), color.EncodeSRGB(1 - 128.0/255), 255,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten (-want +got):\n%s", diff)
	}
}

func TestEncodeInvalidImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	bad := &ir.RGBAImage{Width: 0, Height: 3}
	if err := (FileEncoder{}).Encode(bad, path); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output exists after failed encode: %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.bin")
	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output", len(entries))
	}
}

func TestWriteFileAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	// A directory in the way makes the final rename fail.
	target := filepath.Join(dir, "out.png")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(target, []byte("data")); err == nil {
		t.Fatal("expected rename error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("leftover entries: %v", names)
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"default", "none", "fast", "best"} {
		c, err := ParseCompression(name)
		if err != nil {
			t.Errorf("ParseCompression(%q): %v", name, err)
			continue
		}
		if c.String() != name {
			t.Errorf("round trip %q -> %q", name, c.String())
		}
	}
	if _, err := ParseCompression("max"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestParseColorTag(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorTag
		wantErr bool
	}{
		{"", TagNone, false},
		{"none", TagNone, false},
		{"sRGB", TagSRGB, false},
		{"icc", TagICC, false},
		{"cmyk", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColorTag(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColorTag(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"a.png":      "png",
		"a.PNG":      "png",
		"a.jpg":      "jpeg",
		"dir/b.JPEG": "jpeg",
		"noext":      "png",
		"c.webp":     "png",
	}
	for in, want := range tests {
		if got := FormatForPath(in); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEncodeLogsIntent(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { logging.SetLogger(nil) })

	path := filepath.Join(t.TempDir(), "out.png")
	enc := FileEncoder{Options: EncodeOptions{ColorTag: TagSRGB, Intent: color.IntentSaturation}}
	if err := enc.Encode(testImage(), path); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if rec["msg"] == "encoded" {
			found = true
			if rec["intent"] != "saturation" || rec["color_tag"] != "srgb" {
				t.Errorf("encoded record = %v", rec)
			}
		}
	}
	if !found {
		t.Errorf("no encoded record in %q", buf.String())
	}
}
