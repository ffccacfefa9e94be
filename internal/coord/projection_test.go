package coord

import (
	"errors"
	"math"
	"testing"
)

func TestForEPSG(t *testing.T) {
	tests := []struct {
		epsg     int
		wantNil  bool
		wantEPSG int
	}{
		{4326, false, 4326},
		{3857, false, 3857},
		{900913, false, 900913},
		{32632, false, 32632},
		{32601, false, 32601},
		{32760, false, 32760},
		{32600, true, 0},
		{32661, true, 0},
		{2056, true, 0}, // Swiss LV95, unsupported
		{0, true, 0},
	}
	for _, tt := range tests {
		p := ForEPSG(tt.epsg)
		if tt.wantNil {
			if p != nil {
				t.Errorf("ForEPSG(%d) = %v, want nil", tt.epsg, p)
			}
			continue
		}
		if p == nil {
			t.Fatalf("ForEPSG(%d) = nil, want non-nil", tt.epsg)
		}
		if got := p.EPSG(); got != tt.wantEPSG {
			t.Errorf("ForEPSG(%d).EPSG() = %d, want %d", tt.epsg, got, tt.wantEPSG)
		}
	}
}

func TestParseEPSG(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"EPSG:32632", 32632, false},
		{"epsg:3857", 3857, false},
		{" 4326 ", 4326, false},
		{"EPSG:2056", 0, true},
		{"ESRI:102100", 0, true},
		{"utm32", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEPSG(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedCRS) {
				t.Errorf("ParseEPSG(%q) error = %v, want ErrUnsupportedCRS", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEPSG(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEPSG(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWGS84Identity(t *testing.T) {
	w := &WGS84Identity{}

	if w.EPSG() != 4326 {
		t.Errorf("WGS84Identity.EPSG() = %d, want 4326", w.EPSG())
	}

	lon, lat := 8.5417, 47.3769 // Zurich
	gotLon, gotLat := w.ToWGS84(lon, lat)
	if gotLon != lon || gotLat != lat {
		t.Errorf("ToWGS84(%v, %v) = (%v, %v), want (%v, %v)", lon, lat, gotLon, gotLat, lon, lat)
	}

	gotLon, gotLat = w.FromWGS84(lon, lat)
	if gotLon != lon || gotLat != lat {
		t.Errorf("FromWGS84(%v, %v) = (%v, %v), want (%v, %v)", lon, lat, gotLon, gotLat, lon, lat)
	}
}

// TestProjectionRoundTrip verifies that ToWGS84(FromWGS84(lon, lat)) ≈ (lon, lat) for all projections.
func TestProjectionRoundTrip(t *testing.T) {
	// Points inside UTM zone 32 and valid for the other projections too.
	points := [][2]float64{
		{8.5417, 47.3769},  // Zurich
		{11.5761, 48.1374}, // Munich
		{9.1900, 45.4642},  // Milan
		{10.7522, 59.9139}, // Oslo
		{6.9603, 50.9375},  // Cologne
	}

	projections := []Projection{
		&WGS84Identity{},
		&WebMercatorProj{},
		NewUTM(32, true),
	}

	for _, proj := range projections {
		for _, pt := range points {
			lon, lat := pt[0], pt[1]

			x, y := proj.FromWGS84(lon, lat)
			gotLon, gotLat := proj.ToWGS84(x, y)

			tol := 1e-7
			if dLon := math.Abs(gotLon - lon); dLon > tol {
				t.Errorf("EPSG:%d roundtrip lon for (%.4f, %.4f): got %.9f, want %.9f (delta=%.2e)",
					proj.EPSG(), lon, lat, gotLon, lon, dLon)
			}
			if dLat := math.Abs(gotLat - lat); dLat > tol {
				t.Errorf("EPSG:%d roundtrip lat for (%.4f, %.4f): got %.9f, want %.9f (delta=%.2e)",
					proj.EPSG(), lon, lat, gotLat, lat, dLat)
			}
		}
	}
}

// TestWebMercatorProj_KnownValues checks against well-known Web Mercator values.
func TestWebMercatorProj_KnownValues(t *testing.T) {
	wm := &WebMercatorProj{}

	lon, lat := wm.ToWGS84(0, 0)
	if math.Abs(lon) > 1e-10 || math.Abs(lat) > 1e-10 {
		t.Errorf("ToWGS84(0, 0) = (%v, %v), want (0, 0)", lon, lat)
	}

	x, y := wm.FromWGS84(0, 0)
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("FromWGS84(0, 0) = (%v, %v), want (0, ~0)", x, y)
	}

	// lon=180 should map to x = OriginShift (~20037508.34)
	x, _ = wm.FromWGS84(180, 0)
	if math.Abs(x-OriginShift) > 1 {
		t.Errorf("FromWGS84(180, 0).x = %v, want ~%v", x, OriginShift)
	}

	// The square world ends at y = OriginShift.
	_, y = wm.FromWGS84(0, MaxMercatorLat)
	if math.Abs(y-OriginShift) > 1 {
		t.Errorf("FromWGS84(0, %v).y = %v, want ~%v", MaxMercatorLat, y, OriginShift)
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		proj     Projection
		lon, lat float64
		want     bool
	}{
		{"mercator equator", &WebMercatorProj{}, 0, 0, true},
		{"mercator north cap", &WebMercatorProj{}, 0, 86, false},
		{"mercator south cap", &WebMercatorProj{}, 0, -89, false},
		{"utm32 zurich", NewUTM(32, true), 8.54, 47.38, true},
		{"utm32 far east", NewUTM(32, true), 20, 47, false},
		{"utm32 across antimeridian", NewUTM(1, true), 179, 10, true},
		{"utm32 arctic", NewUTM(32, true), 9, 85, false},
		{"wgs84 pole", &WGS84Identity{}, 0, 90, true},
		{"wgs84 beyond", &WGS84Identity{}, 181, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.proj.Contains(tt.lon, tt.lat); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}
