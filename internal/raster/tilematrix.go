package raster

import "math"

// TileMatrix georeferences tiles of a regular quad-tree pyramid from their
// address alone. Level z has pixels of Resolution/2^z ground units and tile
// (x, y) starts x*width pixels east and y*height pixels south of the origin.
type TileMatrix struct {
	OriginX    float64 `yaml:"origin_x" json:"origin_x"`
	OriginY    float64 `yaml:"origin_y" json:"origin_y"`
	Resolution float64 `yaml:"resolution" json:"resolution"`
}

// IsZero reports whether no tile matrix is configured.
func (tm TileMatrix) IsZero() bool {
	return tm.Resolution == 0
}

// TileTransform returns the transform of tile (z, x, y) measuring width x height pixels.
func (tm TileMatrix) TileTransform(z, x, y, width, height int) Affine {
	res := tm.Resolution / math.Pow(2, float64(z))
	return NorthUp(
		tm.OriginX+float64(x*width)*res,
		tm.OriginY-float64(y*height)*res,
		res,
	)
}
