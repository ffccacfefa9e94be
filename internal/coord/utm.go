package coord

import "math"

// WGS84 ellipsoid.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)

	utmK0            = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0

	// utmMaxLonOffset bounds how far from the central meridian the series
	// expansion is trusted (one and a half zones on either side).
	utmMaxLonOffset = 9.0
)

// UTM implements the Projection interface for the WGS84 UTM zones
// (EPSG:326zz north, EPSG:327zz south) using the Snyder transverse
// Mercator series. Accuracy is well below a meter inside the zone.
type UTM struct {
	Zone     int
	Northern bool
}

// NewUTM returns the projection for a zone in 1..60.
func NewUTM(zone int, northern bool) *UTM {
	return &UTM{Zone: zone, Northern: northern}
}

func (u *UTM) EPSG() int {
	if u.Northern {
		return 32600 + u.Zone
	}
	return 32700 + u.Zone
}

// CentralMeridian returns the zone's central meridian in degrees.
func (u *UTM) CentralMeridian() float64 {
	return float64(u.Zone)*6 - 183
}

func (u *UTM) Contains(lon, lat float64) bool {
	if lat < -80 || lat > 84 {
		return false
	}
	d := math.Abs(normalizeLon(lon - u.CentralMeridian()))
	return d <= utmMaxLonOffset
}

func (u *UTM) FromWGS84(lon, lat float64) (x, y float64) {
	const ep2 = wgs84E2 / (1 - wgs84E2)

	phi := lat * math.Pi / 180
	dLam := normalizeLon(lon-u.CentralMeridian()) * math.Pi / 180

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	tanPhi := math.Tan(phi)

	n := wgs84A / math.Sqrt(1-wgs84E2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := dLam * cosPhi
	m := meridianArc(phi)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x = utmK0 * n * (a + (1-t+c)*a3/6 + (5-18*t+t*t+72*c-58*ep2)*a5/120)
	y = utmK0 * (m + n*tanPhi*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+600*c-330*ep2)*a6/720))

	x += utmFalseEasting
	if !u.Northern {
		y += utmFalseNorthing
	}
	return
}

func (u *UTM) ToWGS84(x, y float64) (lon, lat float64) {
	const ep2 = wgs84E2 / (1 - wgs84E2)

	x -= utmFalseEasting
	if !u.Northern {
		y -= utmFalseNorthing
	}

	e2 := wgs84E2
	e4 := e2 * e2
	e6 := e4 * e2
	sq := math.Sqrt(1 - e2)
	e1 := (1 - sq) / (1 + sq)

	m := y / utmK0
	mu := m / (wgs84A * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	w := 1 - e2*sinPhi1*sinPhi1
	n1 := wgs84A / math.Sqrt(w)
	r1 := wgs84A * (1 - e2) / (w * math.Sqrt(w))
	d := x / (n1 * utmK0)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	phi := phi1 - (n1*tanPhi1/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d6/720)
	lam := (d - (1+2*t1+c1)*d3/6 + (5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d5/120) / cosPhi1

	lat = phi * 180 / math.Pi
	lon = normalizeLon(u.CentralMeridian() + lam*180/math.Pi)
	return
}

// meridianArc returns the distance along the meridian from the equator to phi (radians).
func meridianArc(phi float64) float64 {
	e2 := wgs84E2
	e4 := e2 * e2
	e6 := e4 * e2
	return wgs84A * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// normalizeLon wraps a longitude difference into [-180, 180).
func normalizeLon(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	return math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
}
