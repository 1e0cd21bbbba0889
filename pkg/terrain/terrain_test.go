package terrain

import (
	"context"
	"math"
	"testing"

	"github.com/geostream/rasterfield/pkg/raster"
)

func flatSource(t *testing.T, nrow, ncol int, value float64) raster.Source {
	t.Helper()
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = value
	}
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

func TestSlopeOfConstantRasterIsZero(t *testing.T) {
	src := flatSource(t, 5, 5, 10)
	opts := DefaultOptions()
	opts.Variables = []Variable{Slope}
	out, err := Compute(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	slope := out[Slope]
	if !slope.Ok() {
		t.Fatalf("slope output has error: %v", slope.Err)
	}
	for row := 1; row < 4; row++ {
		for col := 1; col < 4; col++ {
			v := slope.Data[row*5+col]
			if math.Abs(v) > 1e-9 {
				t.Errorf("interior slope at (%d,%d) = %v, want 0", row, col, v)
			}
		}
	}
}

func TestTerrainBorderIsAlwaysNaN(t *testing.T) {
	src := flatSource(t, 4, 4, 1)
	opts := DefaultOptions()
	opts.Variables = []Variable{Slope, TRI, TPI, Roughness}
	out, err := Compute(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, v := range opts.Variables {
		data := out[v].Data
		for col := 0; col < 4; col++ {
			if !math.IsNaN(data[col]) {
				t.Errorf("%s: top row should be NaN at col %d, got %v", v, col, data[col])
			}
			if !math.IsNaN(data[3*4+col]) {
				t.Errorf("%s: bottom row should be NaN at col %d, got %v", v, col, data[3*4+col])
			}
		}
		for row := 0; row < 4; row++ {
			if !math.IsNaN(data[row*4]) {
				t.Errorf("%s: left col should be NaN at row %d, got %v", v, row, data[row*4])
			}
			if !math.IsNaN(data[row*4+3]) {
				t.Errorf("%s: right col should be NaN at row %d, got %v", v, row, data[row*4+3])
			}
		}
	}
}

func TestFlowDirectionEncodingIsPowerOfTwo(t *testing.T) {
	nrow, ncol := 5, 5
	v := make([]float64, nrow*ncol)
	for i := range v {
		v[i] = float64((nrow*ncol - i)) // monotone decreasing so flow is well-defined
	}
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, raster.CRSPlanar, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	src, err := raster.NewInMemorySource(grid, v, raster.NewCRSInfo(1, false, "planar"))
	if err != nil {
		t.Fatalf("NewInMemorySource: %v", err)
	}

	opts := DefaultOptions()
	opts.Variables = []Variable{FlowDir}
	opts.Seed = 7
	out, err := Compute(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	valid := map[float64]bool{1: true, 2: true, 4: true, 8: true, 16: true, 32: true, 64: true, 128: true}
	for row := 1; row < nrow-1; row++ {
		for col := 1; col < ncol-1; col++ {
			d := out[FlowDir].Data[row*ncol+col]
			if !valid[d] {
				t.Errorf("flow direction at (%d,%d) = %v, not a valid power-of-two code", row, col, d)
			}
		}
	}
}

func TestComputeRejectsBadNeighbors(t *testing.T) {
	src := flatSource(t, 4, 4, 1)
	opts := DefaultOptions()
	opts.Variables = []Variable{Slope}
	opts.Neighbors = 6
	_, err := Compute(context.Background(), src, opts)
	if err == nil {
		t.Fatal("expected error for invalid neighbors")
	}
}
