package raster

import (
	"math"

	"github.com/pkg/errors"
)

// Affine maps pixel (col, row) to CRS coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// (col, row) = (0, 0) is the outer top-left corner of the top-left pixel.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// NorthUp returns the transform of an unrotated grid whose top-left corner
// is (originX, originY) with square pixels of the given size.
func NorthUp(originX, originY, pixelSize float64) Affine {
	return Affine{A: pixelSize, C: originX, E: -pixelSize, F: originY}
}

// Apply maps a (fractional) pixel position to CRS coordinates.
func (t Affine) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Det returns the determinant of the linear part.
func (t Affine) Det() float64 {
	return t.A*t.E - t.B*t.D
}

// Invert returns the transform mapping CRS coordinates back to pixels.
func (t Affine) Invert() (Affine, error) {
	det := t.Det()
	scale := math.Max(math.Abs(t.A)+math.Abs(t.B), math.Abs(t.D)+math.Abs(t.E))
	if det == 0 || math.IsNaN(det) || math.Abs(det) < 1e-15*scale*scale {
		return Affine{}, errors.Wrapf(ErrInvalidGrid, "affine transform %v is not invertible", t)
	}
	inv := Affine{
		A: t.E / det,
		B: -t.B / det,
		D: -t.D / det,
		E: t.A / det,
	}
	inv.C = -(inv.A*t.C + inv.B*t.F)
	inv.F = -(inv.D*t.C + inv.E*t.F)
	return inv, nil
}

// PixelSize returns the ground size of one pixel edge along columns and rows.
func (t Affine) PixelSize() (sx, sy float64) {
	return math.Hypot(t.A, t.D), math.Hypot(t.B, t.E)
}
