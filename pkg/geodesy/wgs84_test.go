package geodesy

import (
	"math"
	"testing"
)

func TestDistanceGeoKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lon1, lat1, lon2, lat2 float64
		wantMeters             float64
		tolMeters              float64
	}{
		// Equator, 1 degree of longitude apart: ~111.32 km.
		{"equator-1deg", 0, 0, 1, 0, 111319.49, 50},
		// Coincident point.
		{"coincident", 12.5, 45.0, 12.5, 45.0, 0, 1e-6},
		// Quarter meridian, equator to north pole: ~10001.97 km.
		{"equator-to-pole", 0, 0, 0, 90, 10001965.73, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceGeo(tt.lon1, tt.lat1, tt.lon2, tt.lat2)
			if math.Abs(got-tt.wantMeters) > tt.tolMeters {
				t.Errorf("DistanceGeo(%v,%v,%v,%v) = %v, want %v +/- %v",
					tt.lon1, tt.lat1, tt.lon2, tt.lat2, got, tt.wantMeters, tt.tolMeters)
			}
		})
	}
}

func TestDistanceGeoAntipodalDoesNotNaN(t *testing.T) {
	got := DistanceGeo(0, 0, 180, 0)
	if math.IsNaN(got) {
		t.Fatalf("antipodal distance must be finite, got NaN")
	}
	want := math.Pi * authalicRadius // roughly half the equatorial circumference
	if math.Abs(got-want) > want*0.01 {
		t.Errorf("antipodal distance = %v, want close to %v", got, want)
	}
}

func TestDistanceGeoPolesAreFinite(t *testing.T) {
	got := DistanceGeo(0, 90, 45, 90)
	if math.IsNaN(got) || got < 0 {
		t.Errorf("distance between coincident-at-pole points = %v, want a finite non-negative value", got)
	}
}

func TestDirectGeoRoundTrip(t *testing.T) {
	lon2, lat2, backAz := DirectGeo(-71.0, 42.0, 45.0, 100000)
	d := DistanceGeo(-71.0, 42.0, lon2, lat2)
	if math.Abs(d-100000) > 1 {
		t.Errorf("round-trip distance = %v, want ~100000", d)
	}
	if backAz < 0 || backAz >= 360 {
		t.Errorf("back azimuth %v out of [0,360)", backAz)
	}
}

func TestDistancePlane(t *testing.T) {
	got := DistancePlane(0, 0, 3, 4)
	if got != 5 {
		t.Errorf("DistancePlane(0,0,3,4) = %v, want 5", got)
	}
}

func TestPolygonAreaGeoSquareDegree(t *testing.T) {
	// A small square near the equator should be close to (111.32km)^2.
	lons := []float64{0, 1, 1, 0}
	lats := []float64{0, 0, 1, 1}
	area := math.Abs(PolygonAreaGeo(lons, lats))
	want := 111319.49 * 111319.49
	if math.Abs(area-want)/want > 0.02 {
		t.Errorf("PolygonAreaGeo = %v, want close to %v", area, want)
	}
}
