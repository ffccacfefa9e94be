package encode

import (
	"image"
	"image/jpeg"
	"io"
)

// DefaultJPEGQuality matches GDAL's JPEG driver default.
const DefaultJPEGQuality = 75

// JPEGCodec reads and writes lossy JPEG tiles.
type JPEGCodec struct {
	Quality int // 1-100, default 75
}

func (c *JPEGCodec) Decode(r io.Reader) (image.Image, error) {
	return jpeg.Decode(r)
}

func (c *JPEGCodec) Encode(w io.Writer, img image.Image) error {
	quality := c.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

func (c *JPEGCodec) Format() string    { return "jpeg" }
func (c *JPEGCodec) Extension() string { return "jpg" }
func (c *JPEGCodec) Lossless() bool    { return false }
