package geodesy

import "math"

// authalicRadius is the radius of the sphere with the same surface area as
// the WGS-84 ellipsoid, used for the spherical-excess polygon area
// approximation below.
const authalicRadius = 6371007.1809

// PolygonAreaGeo returns the signed area in square meters of the polygon
// ring described by parallel lon/lat slices (decimal degrees), closed or
// not (the first vertex is implicitly repeated if the ring isn't already
// closed). The sign reflects traversal direction (negative for
// counterclockwise and positive for clockwise, as seen from outside the
// sphere); callers take the
// absolute value for an outer ring and subtract the absolute value of any
// hole ring, per spec.
//
// This uses the standard spherical-excess line-integral formula on the
// authalic sphere (sum of (lon_i+1 - lon_i) * (2 + sin(lat_i) + sin(lat_i+1))),
// which is accurate to a fraction of a percent for the ellipsoid and avoids
// the cost of a full geodesic-polygon algorithm; callers needing
// millimeter-exact cadastral area should not rely on this helper.
func PolygonAreaGeo(lons, lats []float64) float64 {
	n := len(lons)
	if n < 3 || len(lats) != n {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		lon1 := lons[i] * math.Pi / 180
		lon2 := lons[j] * math.Pi / 180
		lat1 := lats[i] * math.Pi / 180
		lat2 := lats[j] * math.Pi / 180
		sum += (lon2 - lon1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}
	return sum * authalicRadius * authalicRadius / 2
}
