package sweep

import (
	"math"

	"github.com/geostream/rasterfield/pkg/geodesy"
)

// stepAtGeo returns the rook (dx, dy) and bishop (dxy) neighbor step
// weights for a geographic grid, for the row that lies row rows away from
// the block's reference row at center latitude lat, in direction latdir
// (+1 or -1, matching the direction the sweep is walking). dy and dxy are
// +Inf rather than NaN at a polar singularity.
//
// cost halves every step, because cost distance's edge weight is
// (step/2)*(friction_a+friction_b) on each side of the boundary between a
// and b (see edgeWeight).
func stepAtGeo(lat float64, row int, xres, yres float64, latdir int, cost bool) (dx, dy, dxy float64) {
	rlat := lat + float64(row)*yres*float64(latdir)
	dx = geodesy.DistanceGeo(0, rlat, xres, rlat)
	yr := yres * float64(-latdir)
	dy = geodesy.DistanceGeo(0, rlat, 0, rlat+yr)
	dxy = geodesy.DistanceGeo(0, rlat, xres, rlat+yr)
	if math.IsNaN(dy) {
		dy = math.Inf(1)
	}
	if math.IsNaN(dxy) {
		dxy = math.Inf(1)
	}
	if cost {
		dx /= 2
		dy /= 2
		dxy /= 2
	}
	return dx, dy, dxy
}

// stepAtPlanar returns the constant step weights for a planar grid scaled
// to meters by lindist (the CRS's meters-per-unit, 1 if unknown).
func stepAtPlanar(xres, yres, lindist float64, cost bool) (dx, dy, dxy float64) {
	dx = xres * lindist
	dy = yres * lindist
	if cost {
		dx /= 2
		dy /= 2
	}
	dxy = math.Sqrt(dx*dx + dy*dy)
	return dx, dy, dxy
}
