// Package raster holds the in-memory pixel grid shared by the reprojection
// stages, plus the bridges to image.Image and to world-file georeferencing.
package raster

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidGrid reports a malformed or degenerate raster grid.
var ErrInvalidGrid = errors.New("invalid raster grid")

// DType is the sample type of a raster band.
type DType int

const (
	Uint8 DType = iota
	Uint16
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Max returns the largest representable sample value.
func (d DType) Max() float64 {
	if d == Uint16 {
		return math.MaxUint16
	}
	return math.MaxUint8
}

// Clamp rounds v to the nearest integer inside the type's range.
func (d DType) Clamp(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if hi := d.Max(); v >= hi {
		return hi
	}
	return math.Floor(v + 0.5)
}

// NoData is the fill value for pixels without source coverage.
const NoData = 0

// Grid is the georeferenced shape of a raster.
type Grid struct {
	Width     int
	Height    int
	Transform Affine
	EPSG      int
}

// Validate fails with ErrInvalidGrid when the grid cannot be resampled.
func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Wrapf(ErrInvalidGrid, "size %dx%d", g.Width, g.Height)
	}
	if _, err := g.Transform.Invert(); err != nil {
		return err
	}
	return nil
}

// Raster is a Grid with band-major pixel data: sample (b, col, row) is at
// Data[b*Width*Height + row*Width + col].
type Raster struct {
	Grid
	Bands int
	DType DType
	Data  []float64
}

// New allocates a zero (no-data) filled raster.
func New(g Grid, bands int, dtype DType) (*Raster, error) {
	if bands <= 0 {
		return nil, errors.Wrapf(ErrInvalidGrid, "band count %d", bands)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidGrid, "size %dx%d", g.Width, g.Height)
	}
	return &Raster{
		Grid:  g,
		Bands: bands,
		DType: dtype,
		Data:  make([]float64, bands*g.Width*g.Height),
	}, nil
}

// Validate checks the grid and that Data matches the declared dimensions.
func (r *Raster) Validate() error {
	if r.Bands <= 0 {
		return errors.Wrapf(ErrInvalidGrid, "band count %d", r.Bands)
	}
	if err := r.Grid.Validate(); err != nil {
		return err
	}
	if want := r.Bands * r.Width * r.Height; len(r.Data) != want {
		return errors.Wrapf(ErrInvalidGrid, "pixel buffer holds %d samples, want %d", len(r.Data), want)
	}
	return nil
}

// Band returns the samples of band b.
func (r *Raster) Band(b int) []float64 {
	n := r.Width * r.Height
	return r.Data[b*n : (b+1)*n]
}

// At returns sample (b, col, row).
func (r *Raster) At(b, col, row int) float64 {
	return r.Data[(b*r.Height+row)*r.Width+col]
}

// Set stores sample (b, col, row).
func (r *Raster) Set(b, col, row int, v float64) {
	r.Data[(b*r.Height+row)*r.Width+col] = v
}
