package encode

import (
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// DefaultWebPQuality is used when no quality is configured.
const DefaultWebPQuality = 85

// WebPCodec reads and writes lossy WebP tiles using a pure-Go (WASM-based)
// codec. No CGo or system libraries required; a system libwebp is used via
// purego when available.
type WebPCodec struct {
	Quality int
}

func (c *WebPCodec) Decode(r io.Reader) (image.Image, error) {
	return webp.Decode(r)
}

func (c *WebPCodec) Encode(w io.Writer, img image.Image) error {
	quality := c.Quality
	if quality <= 0 {
		quality = DefaultWebPQuality
	}
	return webp.Encode(w, img, webp.Options{
		Lossless: false,
		Quality:  quality,
	})
}

func (c *WebPCodec) Format() string    { return "webp" }
func (c *WebPCodec) Extension() string { return "webp" }
func (c *WebPCodec) Lossless() bool    { return false }
