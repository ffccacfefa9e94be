package raster

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// FromImage copies a decoded image into a raster with the given grid
// georeferencing. The band layout follows the image model:
//
//	Gray    -> 1 x uint8       Gray16            -> 1 x uint16
//	RGBA    -> 3 x uint8 when fully opaque, else 4 x uint8
//	NRGBA   -> 4 x uint8       NRGBA64 / RGBA64  -> 4 x uint16
//	YCbCr   -> 3 x uint8       anything else     -> 4 x uint8
func FromImage(img image.Image, transform Affine, epsg int) (*Raster, error) {
	b := img.Bounds()
	g := Grid{Width: b.Dx(), Height: b.Dy(), Transform: transform, EPSG: epsg}

	switch src := img.(type) {
	case *image.Gray:
		r, err := New(g, 1, Uint8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+g.Width]
			for x, v := range row {
				r.Set(0, x, y, float64(v))
			}
		}
		return r, nil

	case *image.Gray16:
		r, err := New(g, 1, Uint16)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				r.Set(0, x, y, float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return r, nil

	case *image.RGBA:
		bands := 3
		if !src.Opaque() {
			bands = 4
		}
		r, err := New(g, bands, Uint8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := color.NRGBAModel.Convert(src.RGBAAt(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				setRGBA8(r, x, y, c.R, c.G, c.B, c.A)
			}
		}
		return r, nil

	case *image.NRGBA64, *image.RGBA64:
		r, err := New(g, 4, Uint16)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				r.Set(0, x, y, float64(c.R))
				r.Set(1, x, y, float64(c.G))
				r.Set(2, x, y, float64(c.B))
				r.Set(3, x, y, float64(c.A))
			}
		}
		return r, nil

	case *image.YCbCr:
		r, err := New(g, 3, Uint8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := src.YCbCrAt(b.Min.X+x, b.Min.Y+y)
				cr, cg, cb := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				setRGBA8(r, x, y, cr, cg, cb, 255)
			}
		}
		return r, nil

	default:
		r, err := New(g, 4, Uint8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				setRGBA8(r, x, y, c.R, c.G, c.B, c.A)
			}
		}
		return r, nil
	}
}

func setRGBA8(r *Raster, x, y int, cr, cg, cb, ca uint8) {
	r.Set(0, x, y, float64(cr))
	r.Set(1, x, y, float64(cg))
	r.Set(2, x, y, float64(cb))
	if r.Bands == 4 {
		r.Set(3, x, y, float64(ca))
	}
}

// ToImage converts a raster back to the image model FromImage would have
// read it from. Samples are clamped to the raster's dtype.
func ToImage(r *Raster) (image.Image, error) {
	rect := image.Rect(0, 0, r.Width, r.Height)
	px := func(b, x, y int) float64 { return r.DType.Clamp(r.At(b, x, y)) }

	switch {
	case r.Bands == 1 && r.DType == Uint8:
		img := image.NewGray(rect)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				img.Pix[y*img.Stride+x] = uint8(px(0, x, y))
			}
		}
		return img, nil

	case r.Bands == 1 && r.DType == Uint16:
		img := image.NewGray16(rect)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(px(0, x, y))})
			}
		}
		return img, nil

	case (r.Bands == 3 || r.Bands == 4) && r.DType == Uint8:
		img := image.NewNRGBA(rect)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				a := uint8(255)
				if r.Bands == 4 {
					a = uint8(px(3, x, y))
				}
				off := y*img.Stride + x*4
				img.Pix[off+0] = uint8(px(0, x, y))
				img.Pix[off+1] = uint8(px(1, x, y))
				img.Pix[off+2] = uint8(px(2, x, y))
				img.Pix[off+3] = a
			}
		}
		if r.Bands == 3 {
			// Opaque RGBA keeps the 3-band layout when re-encoded as PNG.
			return nrgbaToRGBA(img), nil
		}
		return img, nil

	case (r.Bands == 3 || r.Bands == 4) && r.DType == Uint16:
		img := image.NewNRGBA64(rect)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				a := uint16(0xffff)
				if r.Bands == 4 {
					a = uint16(px(3, x, y))
				}
				img.SetNRGBA64(x, y, color.NRGBA64{
					R: uint16(px(0, x, y)),
					G: uint16(px(1, x, y)),
					B: uint16(px(2, x, y)),
					A: a,
				})
			}
		}
		return img, nil

	default:
		return nil, errors.Wrapf(ErrInvalidGrid, "no image model for %d x %s bands", r.Bands, r.DType)
	}
}

func nrgbaToRGBA(src *image.NRGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
