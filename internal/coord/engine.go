package coord

import (
	"github.com/pkg/errors"
)

// TransformFunc converts one coordinate pair between two CRSs. It fails
// with ErrOutOfDomain when the point lies outside either CRS's domain.
type TransformFunc func(x, y float64) (float64, float64, error)

// Engine builds point transforms between EPSG coded reference systems.
type Engine interface {
	Transformer(from, to int) (TransformFunc, error)
}

// Engine names accepted by NewEngine.
const (
	EngineWGS84  = "wgs84"
	EngineNative = "native"
)

// NewEngine returns the engine registered under name. The empty name
// selects the native engine.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineNative:
		return NativeEngine{}, nil
	case EngineWGS84:
		return NewWGS84Engine(), nil
	default:
		return nil, errors.Errorf("unknown projection engine %q (supported: %s, %s)", name, EngineNative, EngineWGS84)
	}
}

// NativeEngine chains the hand-written projections through WGS84 lon/lat.
// The UTM series stays within a millimetre of the exact transverse Mercator
// across a zone.
type NativeEngine struct{}

func (NativeEngine) Transformer(from, to int) (TransformFunc, error) {
	src, dst, err := lookupPair(from, to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return identity, nil
	}
	return func(x, y float64) (float64, float64, error) {
		lon, lat := src.ToWGS84(x, y)
		if !finite(lon, lat) || !src.Contains(lon, lat) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "(%.3f, %.3f) in EPSG:%d", x, y, from)
		}
		if !dst.Contains(lon, lat) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "lon/lat (%.6f, %.6f) for EPSG:%d", lon, lat, to)
		}
		ox, oy := dst.FromWGS84(lon, lat)
		if !finite(ox, oy) {
			return 0, 0, errors.Wrapf(ErrOutOfDomain, "lon/lat (%.6f, %.6f) for EPSG:%d", lon, lat, to)
		}
		return ox, oy, nil
	}, nil
}

func lookupPair(from, to int) (Projection, Projection, error) {
	src := ForEPSG(from)
	if src == nil {
		return nil, nil, errors.Wrapf(ErrUnsupportedCRS, "EPSG:%d", from)
	}
	dst := ForEPSG(to)
	if dst == nil {
		return nil, nil, errors.Wrapf(ErrUnsupportedCRS, "EPSG:%d", to)
	}
	return src, dst, nil
}

func identity(x, y float64) (float64, float64, error) { return x, y, nil }
