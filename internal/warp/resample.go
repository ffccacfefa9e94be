package warp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/coord"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// Stats counts what happened to the destination pixels of one resample.
type Stats struct {
	Pixels      int // destination pixels visited
	NoData      int // pixels left at raster.NoData
	OutOfDomain int // subset of NoData whose back-projection failed
}

// Resample fills dst with src values by inverse mapping: each destination
// pixel centre is transformed back into the source CRS and sampled there
// with bilinear interpolation. Pixels whose centre falls outside the source
// raster, or cannot be back-projected, are set to raster.NoData in every
// band. The result has the source band count and dtype.
func Resample(src *raster.Raster, dst raster.Grid, eng coord.Engine) (*raster.Raster, Stats, error) {
	var stats Stats
	if err := src.Validate(); err != nil {
		return nil, stats, err
	}
	if err := dst.Validate(); err != nil {
		return nil, stats, err
	}
	inv, err := src.Transform.Invert()
	if err != nil {
		return nil, stats, err
	}
	back, err := eng.Transformer(dst.EPSG, src.EPSG)
	if err != nil {
		return nil, stats, err
	}
	out, err := raster.New(dst, src.Bands, src.DType)
	if err != nil {
		return nil, stats, err
	}

	sw, sh := float64(src.Width), float64(src.Height)
	for row := 0; row < dst.Height; row++ {
		for col := 0; col < dst.Width; col++ {
			stats.Pixels++
			x, y := dst.Transform.Apply(float64(col)+0.5, float64(row)+0.5)
			sx, sy, err := back(x, y)
			if err != nil {
				if !errors.Is(err, coord.ErrOutOfDomain) {
					return nil, stats, err
				}
				stats.OutOfDomain++
				stats.NoData++
				continue
			}
			u, v := inv.Apply(sx, sy)
			if !(u >= 0 && u < sw && v >= 0 && v < sh) {
				stats.NoData++
				continue
			}
			for b := 0; b < src.Bands; b++ {
				out.Set(b, col, row, src.DType.Clamp(bilinear(src, b, u, v)))
			}
		}
	}
	return out, stats, nil
}

// bilinear samples band b at continuous pixel coordinates (u, v), where
// pixel (i, j) covers [i, i+1) x [j, j+1). Neighbours past the edge are
// clamped to the nearest valid pixel.
func bilinear(src *raster.Raster, b int, u, v float64) float64 {
	fx, fy := u-0.5, v-0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	wx, wy := fx-x0, fy-y0

	c0 := clampIndex(int(x0), src.Width)
	c1 := clampIndex(int(x0)+1, src.Width)
	r0 := clampIndex(int(y0), src.Height)
	r1 := clampIndex(int(y0)+1, src.Height)

	top := src.At(b, c0, r0)*(1-wx) + src.At(b, c1, r0)*wx
	bot := src.At(b, c0, r1)*(1-wx) + src.At(b, c1, r1)*wx
	return top*(1-wy) + bot*wy
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
