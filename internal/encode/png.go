package encode

import (
	"image"
	"image/png"
	"io"
)

// PNGCodec reads and writes lossless PNG tiles.
type PNGCodec struct{}

func (c *PNGCodec) Decode(r io.Reader) (image.Image, error) {
	return png.Decode(r)
}

func (c *PNGCodec) Encode(w io.Writer, img image.Image) error {
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

func (c *PNGCodec) Format() string    { return "png" }
func (c *PNGCodec) Extension() string { return "png" }
func (c *PNGCodec) Lossless() bool    { return true }
