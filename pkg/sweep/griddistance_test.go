package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/geostream/rasterfield/pkg/raster"
)

func nan() float64 { return math.NaN() }

func mustSource(t *testing.T, nrow, ncol int, values []float64, crs raster.CRSInfo) raster.Source {
	t.Helper()
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, raster.CRSPlanar, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if crs.LonLat {
		grid.CRSKind = raster.CRSGeographic
	}
	src, err := raster.NewInMemorySource(grid, values, crs)
	if err != nil {
		t.Fatalf("NewInMemorySource: %v", err)
	}
	return src
}

func TestGridDistanceSingleSourcePlanar(t *testing.T) {
	nrow, ncol := 5, 5
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[2*ncol+2] = 1 // center cell is the single source
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)

	out, err := GridDistance(context.Background(), src, NewMemoryScratch(crs), raster.DefaultBudgetOptions())
	if err != nil {
		t.Fatalf("GridDistance: %v", err)
	}
	if !out.Ok() {
		t.Fatalf("output has error: %v", out.Err)
	}
	if out.Data[2*ncol+2] != 0 {
		t.Errorf("source cell distance = %v, want 0", out.Data[2*ncol+2])
	}
	for _, d := range out.Data {
		if d < 0 {
			t.Fatalf("negative distance %v", d)
		}
	}
	// corner is 2 diagonal steps away: distance should equal 2*sqrt(2)
	got := out.Data[0]
	want := 2 * math.Sqrt2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("corner distance = %v, want %v", got, want)
	}
}

func TestGridDistanceTwoSourcesPlanar(t *testing.T) {
	nrow, ncol := 3, 3
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[0] = 1
	v[(nrow-1)*ncol+(ncol-1)] = 1
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)

	out, err := GridDistance(context.Background(), src, NewMemoryScratch(crs), raster.DefaultBudgetOptions())
	if err != nil {
		t.Fatalf("GridDistance: %v", err)
	}
	if out.Data[0] != 0 || out.Data[(nrow-1)*ncol+(ncol-1)] != 0 {
		t.Fatalf("source cells not zero: %v", out.Data)
	}
	center := out.Data[1*ncol+1]
	if math.Abs(center-math.Sqrt2) > 1e-9 {
		t.Errorf("center distance = %v, want %v", center, math.Sqrt2)
	}
}

func TestGridDistanceGlobalLonLatWrap(t *testing.T) {
	nrow, ncol := 1, 360
	v := make([]float64, ncol)
	for i := range v {
		v[i] = nan()
	}
	v[0] = 1
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: -180, XMax: 180, YMin: -0.5, YMax: 0.5}, raster.CRSGeographic, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	crs := raster.NewCRSInfo(1, true, "EPSG:4326")
	src, err := raster.NewInMemorySource(grid, v, crs)
	if err != nil {
		t.Fatalf("NewInMemorySource: %v", err)
	}

	out, err := GridDistance(context.Background(), src, NewMemoryScratch(crs), raster.DefaultBudgetOptions())
	if err != nil {
		t.Fatalf("GridDistance: %v", err)
	}
	// the cell at column 359 is adjacent to column 0 across the antimeridian
	// seam, so it must be much closer than the cell at column 180 (half way
	// around without wrap).
	if out.Data[359] >= out.Data[180] {
		t.Errorf("wrap cell (%v) should be closer than antipodal cell (%v)", out.Data[359], out.Data[180])
	}
}

func TestGridDistanceSymmetryUnderReflection(t *testing.T) {
	nrow, ncol := 5, 5
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[0] = 1
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)
	out, err := GridDistance(context.Background(), src, NewMemoryScratch(crs), raster.DefaultBudgetOptions())
	if err != nil {
		t.Fatalf("GridDistance: %v", err)
	}
	// distance should be monotone non-decreasing moving away from the
	// source along the top row.
	for i := 1; i < ncol; i++ {
		if out.Data[i] < out.Data[i-1] {
			t.Errorf("distance not monotone at col %d: %v < %v", i, out.Data[i], out.Data[i-1])
		}
	}
}
