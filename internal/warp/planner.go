// Package warp plans destination grids and resamples rasters between
// coordinate reference systems.
package warp

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/pspoerri/tilewarp/internal/coord"
	"github.com/pspoerri/tilewarp/internal/raster"
)

// edgeSamples is the number of points projected along each grid edge when
// computing the destination bounding box, corners included.
const edgeSamples = 21

// Plan computes the north-up destination grid in dstEPSG covering src.
//
// The bounding box is the extent of the projected grid outline. The pixel
// size is the ground sample distance at the grid centre after projection:
// the square root of the area of the projected centre pixel. Degenerate
// grids fail with raster.ErrInvalidGrid before the engine is consulted;
// an outline point outside either CRS fails with coord.ErrOutOfDomain.
func Plan(src raster.Grid, dstEPSG int, eng coord.Engine) (raster.Grid, error) {
	if err := src.Validate(); err != nil {
		return raster.Grid{}, err
	}
	fwd, err := eng.Transformer(src.EPSG, dstEPSG)
	if err != nil {
		return raster.Grid{}, err
	}

	project := func(col, row float64) (orb.Point, error) {
		x, y := src.Transform.Apply(col, row)
		px, py, err := fwd(x, y)
		if err != nil {
			return orb.Point{}, errors.Wrapf(err, "grid point (%g, %g)", col, row)
		}
		return orb.Point{px, py}, nil
	}

	w, h := float64(src.Width), float64(src.Height)
	var bound orb.Bound
	first := true
	for i := 0; i < edgeSamples; i++ {
		f := float64(i) / float64(edgeSamples-1)
		for _, p := range [4][2]float64{{f * w, 0}, {f * w, h}, {0, f * h}, {w, f * h}} {
			pt, err := project(p[0], p[1])
			if err != nil {
				return raster.Grid{}, err
			}
			if first {
				bound, first = pt.Bound(), false
			} else {
				bound = bound.Extend(pt)
			}
		}
	}

	res, err := centreResolution(w/2, h/2, project)
	if err != nil {
		return raster.Grid{}, err
	}

	width := int(math.Round((bound.Max[0] - bound.Min[0]) / res))
	height := int(math.Round((bound.Max[1] - bound.Min[1]) / res))
	dst := raster.Grid{
		Width:     max(width, 1),
		Height:    max(height, 1),
		Transform: raster.NorthUp(bound.Min[0], bound.Max[1], res),
		EPSG:      dstEPSG,
	}
	return dst, nil
}

// centreResolution projects the pixel at (cx, cy) and returns the square
// root of its projected area.
func centreResolution(cx, cy float64, project func(col, row float64) (orb.Point, error)) (float64, error) {
	p0, err := project(cx, cy)
	if err != nil {
		return 0, err
	}
	p1, err := project(cx+1, cy)
	if err != nil {
		return 0, err
	}
	p2, err := project(cx, cy+1)
	if err != nil {
		return 0, err
	}
	ux, uy := p1[0]-p0[0], p1[1]-p0[1]
	vx, vy := p2[0]-p0[0], p2[1]-p0[1]
	res := math.Sqrt(math.Abs(ux*vy - uy*vx))
	if res == 0 || math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, errors.Wrapf(raster.ErrInvalidGrid, "projected pixel at (%g, %g) has no area", cx, cy)
	}
	return res, nil
}
