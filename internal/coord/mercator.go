package coord

import "math"

const (
	// EarthCircumference is the equatorial circumference in meters at zoom 0.
	EarthCircumference = 40075016.685578488
	// OriginShift is half the earth's circumference.
	OriginShift = EarthCircumference / 2.0
	// MaxMercatorLat is the latitude where the square Web Mercator world ends.
	MaxMercatorLat = 85.0511287798066
)

// WebMercatorProj implements the Projection interface for EPSG:3857.
type WebMercatorProj struct {
	code int
}

func (w *WebMercatorProj) EPSG() int {
	if w.code == 0 {
		return 3857
	}
	return w.code
}

func (w *WebMercatorProj) ToWGS84(x, y float64) (lon, lat float64) {
	lon = (x / OriginShift) * 180.0
	lat = (y / OriginShift) * 180.0
	lat = 180.0 / math.Pi * (2.0*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return
}

func (w *WebMercatorProj) FromWGS84(lon, lat float64) (x, y float64) {
	x = lon * OriginShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * OriginShift / 180.0
	return
}

// Contains rejects the polar caps, where y diverges to infinity.
func (w *WebMercatorProj) Contains(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && math.Abs(lat) <= MaxMercatorLat
}

// ScaleFactor returns the Web Mercator point scale at the given latitude.
func ScaleFactor(lat float64) float64 {
	return 1 / math.Cos(lat*math.Pi/180.0)
}
