package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/geostream/rasterfield/pkg/raster"
)

func TestCostDistanceUniformFriction(t *testing.T) {
	nrow, ncol := 3, 3
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[0] = 1
	fr := make([]float64, nrow*ncol)
	for i := range fr {
		fr[i] = 2
	}
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)
	frSrc := mustSource(t, nrow, ncol, fr, crs)

	opts := DefaultCostDistanceOptions()
	out, err := CostDistance(context.Background(), src, frSrc, NewMemoryScratch(crs), opts)
	if err != nil {
		t.Fatalf("CostDistance: %v", err)
	}
	if out.Data[0] != 0 {
		t.Errorf("source cell cost = %v, want 0", out.Data[0])
	}
	for i, d := range out.Data {
		if !math.IsNaN(d) && d < 0 {
			t.Fatalf("negative cost at %d: %v", i, d)
		}
	}
	// rook-adjacent cell at (0,1): weight = step*(f_a+f_b)/2 = 1*(2+2)/2 = 2
	if math.Abs(out.Data[1]-2) > 1e-9 {
		t.Errorf("neighbor cost = %v, want 2", out.Data[1])
	}
}

func TestCostDistanceNegativeFrictionRejected(t *testing.T) {
	nrow, ncol := 2, 2
	v := []float64{1, nan(), nan(), nan()}
	fr := []float64{1, 1, -1, 1}
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)
	frSrc := mustSource(t, nrow, ncol, fr, crs)

	_, err := CostDistance(context.Background(), src, frSrc, NewMemoryScratch(crs), DefaultCostDistanceOptions())
	if err == nil {
		t.Fatal("expected error for negative friction, got nil")
	}
	if _, ok := err.(*raster.ErrInvalidInput); !ok {
		t.Errorf("expected *raster.ErrInvalidInput, got %T", err)
	}
}

func TestCostDistanceGridModeMatchesGridDistance(t *testing.T) {
	nrow, ncol := 4, 4
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[0] = 1
	fr := make([]float64, nrow*ncol) // friction ignored in grid mode
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)
	frSrc := mustSource(t, nrow, ncol, fr, crs)

	gridOut, err := GridDistance(context.Background(), src, NewMemoryScratch(crs), raster.DefaultBudgetOptions())
	if err != nil {
		t.Fatalf("GridDistance: %v", err)
	}

	opts := DefaultCostDistanceOptions()
	opts.Grid = true
	costOut, err := CostDistance(context.Background(), src, frSrc, NewMemoryScratch(crs), opts)
	if err != nil {
		t.Fatalf("CostDistance: %v", err)
	}

	for i := range gridOut.Data {
		if math.Abs(gridOut.Data[i]-costOut.Data[i]) > 1e-6 {
			t.Errorf("cell %d: grid distance %v != cost-distance grid mode %v", i, gridOut.Data[i], costOut.Data[i])
		}
	}
}

func TestCostDistanceIdempotentAfterConvergence(t *testing.T) {
	nrow, ncol := 3, 3
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = nan()
	}
	v[4] = 1
	fr := make([]float64, nrow*ncol)
	for i := range fr {
		fr[i] = 1
	}
	crs := raster.NewCRSInfo(1, false, "planar")
	src := mustSource(t, nrow, ncol, v, crs)
	frSrc := mustSource(t, nrow, ncol, fr, crs)

	out1, err := CostDistance(context.Background(), src, frSrc, NewMemoryScratch(crs), DefaultCostDistanceOptions())
	if err != nil {
		t.Fatalf("CostDistance: %v", err)
	}
	for _, w := range out1.Warnings {
		t.Errorf("unexpected warning: %s", w)
	}
	// Re-running on the same source and unchanged friction should reach
	// the same fixed point.
	out2, err := CostDistance(context.Background(), src, frSrc, NewMemoryScratch(crs), DefaultCostDistanceOptions())
	if err != nil {
		t.Fatalf("CostDistance: %v", err)
	}
	for i := range out1.Data {
		if out1.Data[i] != out2.Data[i] {
			t.Errorf("cell %d not idempotent: %v vs %v", i, out1.Data[i], out2.Data[i])
		}
	}
}
