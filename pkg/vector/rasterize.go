package vector

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/geostream/rasterfield/pkg/raster"
)

// CellsFromFeatures rasterizes point and polygon features onto grid: a
// cell is 1 if it contains a point, or (for polygons) if its center lies
// inside a ring; every other cell is NaN. This is the feeder step the
// original engine's disdir_vector_rasterize takes before handing a
// polygon raster to edges.Extract (inner edges only) and then pulling
// cell centers back out as the point set a distance/direction query
// shortlists against.
func CellsFromFeatures(grid raster.Grid, points []orb.Point, polygons []orb.Polygon) []float64 {
	data := make([]float64, grid.NRow*grid.NCol)
	for i := range data {
		data[i] = math.NaN()
	}

	for _, p := range points {
		row, col, ok := cellFromXY(grid, p[0], p[1])
		if ok {
			data[row*grid.NCol+col] = 1
		}
	}

	if len(polygons) == 0 {
		return data
	}
	for row := 0; row < grid.NRow; row++ {
		for col := 0; col < grid.NCol; col++ {
			x, y := cellCenter(grid, row, col)
			for _, poly := range polygons {
				if polygonContains(poly, x, y) {
					data[row*grid.NCol+col] = 1
					break
				}
			}
		}
	}
	return data
}

// PointsFromCells is as_points' counterpart: it turns every non-NaN cell
// of data back into a point at its cell center, the way the original
// engine rebuilds a SpatVector of points from a rasterized-and-edged
// raster before the final nearest-feature query.
func PointsFromCells(grid raster.Grid, data []float64) []orb.Point {
	var pts []orb.Point
	for row := 0; row < grid.NRow; row++ {
		for col := 0; col < grid.NCol; col++ {
			v := data[row*grid.NCol+col]
			if math.IsNaN(v) {
				continue
			}
			x, y := cellCenter(grid, row, col)
			pts = append(pts, orb.Point{x, y})
		}
	}
	return pts
}

func cellFromXY(grid raster.Grid, x, y float64) (row, col int, ok bool) {
	if x < grid.Extent.XMin || x >= grid.Extent.XMax || y < grid.Extent.YMin || y >= grid.Extent.YMax {
		return 0, 0, false
	}
	col = int((x - grid.Extent.XMin) / grid.XRes())
	row = int((grid.Extent.YMax - y) / grid.YRes())
	if row < 0 {
		row = 0
	}
	if row >= grid.NRow {
		row = grid.NRow - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= grid.NCol {
		col = grid.NCol - 1
	}
	return row, col, true
}

// polygonContains is a standard even-odd ray cast against the polygon's
// outer ring, subtracting any point found inside a hole.
func polygonContains(poly orb.Polygon, x, y float64) bool {
	if len(poly) == 0 {
		return false
	}
	if !ringContains(poly[0], x, y) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, x, y) {
			return false
		}
	}
	return true
}

func ringContains(ring orb.Ring, x, y float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) {
			xCross := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
