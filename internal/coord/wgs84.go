package coord

import (
	"github.com/pkg/errors"
	"github.com/wroge/wgs84"
)

type spheroid struct {
	a, fi float64
}

func (s spheroid) A() float64  { return s.a }
func (s spheroid) Fi() float64 { return s.fi }

// pointFunc is the shape of the functions returned by wgs84.Transform.
type pointFunc func(a, b, c float64) (a2, b2, c2 float64)

type wgs84Pair struct {
	toLonLat   pointFunc
	fromLonLat pointFunc
}

// WGS84Engine performs the point math with github.com/wroge/wgs84 and uses
// the domains of the native projections to reject unprojectable points.
//
// The library's transverse Mercator inverse drifts away from the central
// meridian: UTM to lon/lat latitudes are off by up to about 10 m near the
// zone edges. Use it for cross-checks, not for sub-pixel georeferencing.
type WGS84Engine struct {
	crs map[int]wgs84Pair
}

// NewWGS84Engine registers EPSG:4326, EPSG:3857 and all WGS84 UTM zones.
func NewWGS84Engine() *WGS84Engine {
	epsg := wgs84.EPSG()
	datum := wgs84.Datum{
		Spheroid: spheroid{a: wgs84A, fi: 1 / wgs84F},
	}
	lonLat := wgs84.WGS84().LonLat()

	e := &WGS84Engine{crs: make(map[int]wgs84Pair)}
	register := func(code int) {
		e.crs[code] = wgs84Pair{
			toLonLat:   pointFunc(wgs84.Transform(epsg.Code(code), lonLat)),
			fromLonLat: pointFunc(wgs84.Transform(lonLat, epsg.Code(code))),
		}
	}

	epsg.Add(3857, wgs84.WebMercator())
	epsg.Add(900913, wgs84.WebMercator())
	register(3857)
	register(900913)
	for zone := 1; zone <= 60; zone++ {
		lon0 := float64(zone)*6 - 183
		epsg.Add(32600+zone, datum.TransverseMercator(lon0, 0, utmK0, utmFalseEasting, 0))
		epsg.Add(32700+zone, datum.TransverseMercator(lon0, 0, utmK0, utmFalseEasting, utmFalseNorthing))
		register(32600 + zone)
		register(32700 + zone)
	}
	return e
}

func (e *WGS84Engine) Transformer(from, to int) (TransformFunc, error) {
	src, dst, err := lookupPair(from, to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return identity, nil
	}
	toLonLat := e.lonLatFunc(from, true)
	fromLonLat := e.lonLatFunc(to, false)

	return func(x, y float64) (float64, float64, error) {
		lon, lat := toLonLat(x, y)
		if !finite(lon, lat) || !src.Contains(lon, lat) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "(%.3f, %.3f) in EPSG:%d", x, y, from)
		}
		if !dst.Contains(lon, lat) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "lon/lat (%.6f, %.6f) for EPSG:%d", lon, lat, to)
		}
		ox, oy := fromLonLat(lon, lat)
		if !finite(ox, oy) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "lon/lat (%.6f, %.6f) for EPSG:%d", lon, lat, to)
		}
		return ox, oy, nil
	}, nil
}

// lonLatFunc returns the 2D conversion between code and lon/lat. EPSG:4326
// is the pivot itself and needs no conversion.
func (e *WGS84Engine) lonLatFunc(code int, toLonLat bool) func(x, y float64) (float64, float64) {
	pair, ok := e.crs[code]
	if !ok {
		return func(x, y float64) (float64, float64) { return x, y }
	}
	f := pair.fromLonLat
	if toLonLat {
		f = pair.toLonLat
	}
	return func(x, y float64) (float64, float64) {
		a, b, _ := f(x, y, 0)
		return a, b
	}
}
