package coord

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfDomain reports a coordinate outside the valid domain of a CRS.
	ErrOutOfDomain = errors.New("coordinate outside projection domain")
	// ErrUnsupportedCRS reports an EPSG code no engine knows about.
	ErrUnsupportedCRS = errors.New("unsupported CRS")
)

// Projection defines the interface for converting between a CRS and WGS84.
type Projection interface {
	// ToWGS84 converts CRS coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// Contains reports whether lon/lat lies inside the domain where the
	// projection is defined and accurate.
	Contains(lon, lat float64) bool

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

// ForEPSG returns a Projection for the given EPSG code.
// Returns nil if the EPSG code is not supported.
func ForEPSG(epsg int) Projection {
	switch {
	case epsg == 4326:
		return &WGS84Identity{}
	case epsg == 3857 || epsg == 900913:
		return &WebMercatorProj{code: epsg}
	case epsg > 32600 && epsg <= 32660:
		return NewUTM(epsg-32600, true)
	case epsg > 32700 && epsg <= 32760:
		return NewUTM(epsg-32700, false)
	default:
		return nil
	}
}

// ParseEPSG accepts "EPSG:32632", "epsg:32632" or a bare "32632".
func ParseEPSG(s string) (int, error) {
	v := strings.TrimSpace(s)
	if i := strings.IndexByte(v, ':'); i >= 0 {
		if !strings.EqualFold(v[:i], "epsg") {
			return 0, errors.Wrapf(ErrUnsupportedCRS, "%q: only EPSG authority codes are supported", s)
		}
		v = v[i+1:]
	}
	code, err := strconv.Atoi(v)
	if err != nil || code <= 0 {
		return 0, errors.Wrapf(ErrUnsupportedCRS, "%q is not an EPSG code", s)
	}
	if ForEPSG(code) == nil {
		return 0, errors.Wrapf(ErrUnsupportedCRS, "EPSG:%d", code)
	}
	return code, nil
}

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64) { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) EPSG() int { return 4326 }

func (w *WGS84Identity) Contains(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
