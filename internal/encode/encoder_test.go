package encode

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// testImage creates a size x size RGBA image with a gradient pattern.
func testImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext          string
		wantFmt      string
		wantExt      string
		wantLossless bool
		wantErr      bool
	}{
		{"png", "png", "png", true, false},
		{".PNG", "png", "png", true, false},
		{"jpg", "jpeg", "jpg", false, false},
		{"jpeg", "jpeg", "jpg", false, false},
		{"webp", "webp", "webp", false, false},
		{"tif", "", "", false, true},
		{"", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			c, err := ForExtension(tt.ext, Options{})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Format() != tt.wantFmt {
				t.Errorf("Format() = %q, want %q", c.Format(), tt.wantFmt)
			}
			if c.Extension() != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", c.Extension(), tt.wantExt)
			}
			if c.Lossless() != tt.wantLossless {
				t.Errorf("Lossless() = %v, want %v", c.Lossless(), tt.wantLossless)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{"png", "jpg", "webp", ".png"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{"jpeg", "tif", "pgw", ""} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true, want false", ext)
		}
	}
}

func TestPNGCodec_RoundTrip(t *testing.T) {
	c := &PNGCodec{}
	img := testImage(256)

	var buf bytes.Buffer
	if err := c.Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("Encode produced empty data")
	}

	decoded, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// PNG is lossless, pixels should be identical.
	bounds := decoded.Bounds()
	if bounds.Dx() != 256 || bounds.Dy() != 256 {
		t.Errorf("decoded size = %dx%d, want 256x256", bounds.Dx(), bounds.Dy())
	}

	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			or, og, ob, oa := img.At(x, y).RGBA()
			dr, dg, db, da := decoded.At(x, y).RGBA()
			if or != dr || og != dg || ob != db || oa != da {
				t.Fatalf("pixel mismatch at (%d,%d): orig=(%d,%d,%d,%d) decoded=(%d,%d,%d,%d)",
					x, y, or>>8, og>>8, ob>>8, oa>>8, dr>>8, dg>>8, db>>8, da>>8)
			}
		}
	}
}

func TestPNGCodec_Gray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 8, 8))
	img.SetGray16(3, 4, color.Gray16{Y: 54321})

	c := &PNGCodec{}
	var buf bytes.Buffer
	if err := c.Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g, ok := decoded.(*image.Gray16)
	if !ok {
		t.Fatalf("decoded type = %T, want *image.Gray16", decoded)
	}
	if v := g.Gray16At(3, 4).Y; v != 54321 {
		t.Errorf("pixel = %d, want 54321", v)
	}
}

func TestJPEGCodec_Encode(t *testing.T) {
	c := &JPEGCodec{Quality: 85}
	img := testImage(256)

	var buf bytes.Buffer
	if err := c.Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 256 || bounds.Dy() != 256 {
		t.Errorf("decoded size = %dx%d, want 256x256", bounds.Dx(), bounds.Dy())
	}

	// JPEG is lossy: check that pixels are close but not necessarily identical.
	maxDiff := 0
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			or, _, _, _ := img.At(x, y).RGBA()
			dr, _, _, _ := decoded.At(x, y).RGBA()
			diff := int(or>>8) - int(dr>>8)
			if diff < 0 {
				diff = -diff
			}
			if diff > maxDiff {
				maxDiff = diff
			}
		}
	}
	// At quality 85, max diff should be small (JPEG compression artifacts).
	if maxDiff > 30 {
		t.Errorf("JPEG max pixel diff = %d, want <= 30 for quality 85", maxDiff)
	}
}

func TestJPEGCodec_DefaultQualityDeterministic(t *testing.T) {
	c := &JPEGCodec{}
	img := testImage(64)

	var a, b bytes.Buffer
	if err := c.Encode(&a, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := c.Encode(&b, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("encoding the same image twice produced different bytes")
	}
}

func TestPNGCodec_TransparentImage(t *testing.T) {
	// Ensure PNG preserves transparency.
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x < 32 {
				img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0}) // transparent
			}
		}
	}

	c := &PNGCodec{}
	var buf bytes.Buffer
	if err := c.Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	r, g, b, a := decoded.At(10, 10).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 || a>>8 != 255 {
		t.Errorf("opaque pixel = (%d,%d,%d,%d), want (255,0,0,255)", r>>8, g>>8, b>>8, a>>8)
	}

	_, _, _, a = decoded.At(50, 10).RGBA()
	if a>>8 != 0 {
		t.Errorf("transparent pixel alpha = %d, want 0", a>>8)
	}
}
