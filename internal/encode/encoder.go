// Package encode maps tile file extensions to image codecs.
package encode

import (
	"image"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Codec reads and writes one tile image format.
type Codec interface {
	// Decode reads a tile image.
	Decode(r io.Reader) (image.Image, error)

	// Encode writes img in the tile format.
	Encode(w io.Writer, img image.Image) error

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// Extension returns the file extension without the dot.
	Extension() string

	// Lossless reports whether Encode preserves samples exactly.
	Lossless() bool
}

// Options carries per-format encoder settings.
type Options struct {
	JPEGQuality int // 1-100, default 75
	WebPQuality int // 1-100, default 85
}

// Extensions lists the tile file extensions with a codec.
var Extensions = []string{"png", "jpg", "webp"}

// ForExtension returns the codec for a tile file extension ("png", ".JPG", …).
func ForExtension(ext string, opts Options) (Codec, error) {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "png":
		return &PNGCodec{}, nil
	case "jpg", "jpeg":
		return &JPEGCodec{Quality: opts.JPEGQuality}, nil
	case "webp":
		return &WebPCodec{Quality: opts.WebPQuality}, nil
	default:
		return nil, errors.Errorf("unsupported tile format: %q (supported: %s)", ext, strings.Join(Extensions, ", "))
	}
}

// Supported reports whether ext names a tile format with a codec.
func Supported(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
