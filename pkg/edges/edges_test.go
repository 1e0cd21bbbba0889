package edges

import (
	"context"
	"math"
	"testing"

	"github.com/geostream/rasterfield/pkg/raster"
)

func source(t *testing.T, nrow, ncol int, v []float64) raster.Source {
	t.Helper()
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, raster.CRSPlanar, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	src, err := raster.NewInMemorySource(grid, v, raster.NewCRSInfo(1, false, "planar"))
	if err != nil {
		t.Fatalf("NewInMemorySource: %v", err)
	}
	return src
}

func TestExtractInnerOuterDuality(t *testing.T) {
	nan := math.NaN()
	nrow, ncol := 5, 5
	v := []float64{
		nan, nan, nan, nan, nan,
		nan, 1, 1, 1, nan,
		nan, 1, 1, 1, nan,
		nan, 1, 1, 1, nan,
		nan, nan, nan, nan, nan,
	}
	src := source(t, nrow, ncol, v)

	innerOpts := DefaultOptions()
	innerOut, err := Extract(context.Background(), src, innerOpts)
	if err != nil {
		t.Fatalf("Extract inner: %v", err)
	}

	outerOpts := DefaultOptions()
	outerOpts.Mode = Outer
	outerOut, err := Extract(context.Background(), src, outerOpts)
	if err != nil {
		t.Fatalf("Extract outer: %v", err)
	}

	// center cell has no missing neighbors: not an inner edge.
	center := 2*ncol + 2
	if innerOut.Data[center] != 0 {
		t.Errorf("center should not be an inner edge, got %v", innerOut.Data[center])
	}
	// the valid ring cells adjacent to the border of NaNs are inner edges.
	ringCell := 1*ncol + 1
	if innerOut.Data[ringCell] != 1 {
		t.Errorf("ring cell should be an inner edge, got %v", innerOut.Data[ringCell])
	}
	// a NaN cell adjacent to the valid block is an outer edge.
	outerRingCell := 1*ncol + 0
	if outerOut.Data[outerRingCell] != 1 {
		t.Errorf("NaN cell %d next to the valid block should be an outer edge, got %v", outerRingCell, outerOut.Data[outerRingCell])
	}
}

func TestExtractClassesDetectsValueChange(t *testing.T) {
	nrow, ncol := 3, 3
	v := []float64{
		1, 1, 2,
		1, 1, 2,
		1, 1, 2,
	}
	src := source(t, nrow, ncol, v)
	opts := DefaultOptions()
	opts.Mode = Classes
	out, err := Extract(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Extract classes: %v", err)
	}
	center := ncol + 1
	if out.Data[center] != 1 {
		t.Errorf("center straddles a class boundary, want 1, got %v", out.Data[center])
	}
}

func TestExtractRejectsBadDirections(t *testing.T) {
	src := source(t, 3, 3, make([]float64, 9))
	opts := DefaultOptions()
	opts.Directions = 5
	_, err := Extract(context.Background(), src, opts)
	if err == nil {
		t.Fatal("expected error for invalid directions")
	}
}
