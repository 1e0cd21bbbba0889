package vector

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/geostream/rasterfield/pkg/raster"
)

func testGrid(t *testing.T, nrow, ncol int, lonlat bool) raster.Grid {
	t.Helper()
	kind := raster.CRSPlanar
	mpu := 1.0
	if lonlat {
		kind = raster.CRSGeographic
	}
	g, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, kind, mpu)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestDistanceToFeaturesZeroAtFeatureCell(t *testing.T) {
	grid := testGrid(t, 5, 5, false)
	idx := NewIndex([]orb.Point{{2.5, 2.5}})
	out := DistanceToFeatures(grid, idx, 1)
	center := 2*grid.NCol + 2
	if out.Data[center] > 1e-9 {
		t.Errorf("distance at feature cell = %v, want ~0", out.Data[center])
	}
	for _, d := range out.Data {
		if d < 0 {
			t.Fatalf("negative distance: %v", d)
		}
	}
}

func TestDistanceToFeaturesMonotoneAwayFromSource(t *testing.T) {
	grid := testGrid(t, 1, 10, false)
	idx := NewIndex([]orb.Point{{0.5, 0.5}})
	out := DistanceToFeatures(grid, idx, 1)
	for i := 1; i < len(out.Data); i++ {
		if out.Data[i] < out.Data[i-1] {
			t.Errorf("distance not monotone at %d: %v < %v", i, out.Data[i], out.Data[i-1])
		}
	}
}

func TestCellsFromFeaturesAndPointsFromCellsRoundTrip(t *testing.T) {
	grid := testGrid(t, 4, 4, false)
	points := []orb.Point{{0.5, 0.5}, {3.5, 3.5}}
	data := CellsFromFeatures(grid, points, nil)
	nonNaN := 0
	for _, v := range data {
		if !math.IsNaN(v) {
			nonNaN++
		}
	}
	if nonNaN != 2 {
		t.Fatalf("expected 2 rasterized cells, got %d", nonNaN)
	}
	back := PointsFromCells(grid, data)
	if len(back) != 2 {
		t.Fatalf("expected 2 points back, got %d", len(back))
	}
}

func TestPolygonContainsSquare(t *testing.T) {
	square := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	if !polygonContains(square, 5, 5) {
		t.Error("center of square should be contained")
	}
	if polygonContains(square, 15, 15) {
		t.Error("point outside square should not be contained")
	}
}
