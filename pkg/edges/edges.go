package edges

import (
	"context"
	"math"

	"github.com/geostream/rasterfield/pkg/raster"
)

// Mode selects the edge test applied to each interior cell.
type Mode int

const (
	// Inner marks valid cells that have at least one missing neighbor.
	Inner Mode = iota
	// Outer marks missing cells that have at least one valid neighbor.
	Outer
	// Classes marks cells whose value differs from at least one
	// neighbor's, where "differs" treats NaN as distinct from any
	// finite value and equal to any other NaN.
	Classes
)

// neighborOffsets are the 8 row/col deltas in the order the original
// engine tests them: N, W, E, S, NW, NE, SW, SE. The first 4 are used
// when Directions is 4.
var neighborRowOff = [8]int{-1, 0, 0, 1, -1, -1, 1, 1}
var neighborColOff = [8]int{0, -1, 1, 0, -1, 1, -1, 1}

// Options configures Extract.
type Options struct {
	raster.BudgetOptions
	Mode       Mode
	Directions int // 4 or 8
	FalseValue float64
}

// DefaultOptions returns 8-connected inner edges with a false-value of 0,
// matching the original engine's default.
func DefaultOptions() Options {
	o := Options{BudgetOptions: raster.DefaultBudgetOptions(), Mode: Inner, Directions: 8, FalseValue: 0}
	o.MinRows = 2
	return o
}

// Extract computes the edge raster described by opts.
func Extract(ctx context.Context, src raster.Source, opts Options) (raster.Output, error) {
	nrow, ncol, nlyr := src.Dimensions()
	out := raster.Output{}
	if nlyr > 1 {
		out.AddWarning("boundary detection is only done for the first layer")
	}
	if opts.Directions != 4 && opts.Directions != 8 {
		e := &raster.ErrInvalidInput{Reason: "directions must be 4 or 8"}
		out.Err = e
		return out, e
	}

	crs := src.CRS()
	kind := raster.CRSPlanar
	mpu := crs.MetersPerUnit
	if crs.LonLat {
		kind = raster.CRSGeographic
		mpu = 1
	} else if math.IsNaN(mpu) || mpu <= 0 {
		mpu = 1
	}
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, kind, mpu)
	if err != nil {
		out.Err = err
		return out, err
	}

	minrows := opts.MinRows
	if minrows < 2 {
		minrows = 2
	}
	plan, err := raster.PlanBlocks(nrow, int64(ncol)*8, opts.MemoryBytes, minrows)
	if err != nil {
		out.Err = err
		return out, err
	}

	data := make([]float64, nrow*ncol)
	for bi, b := range plan.Blocks {
		if opts.Cancel != nil && opts.Cancel() {
			break
		}
		padded, paddedCols := readPadded(ctx, src, b.RowStart, b.NRows, ncol)
		result := doEdge(padded, b.NRows+2, paddedCols, opts.Mode, opts.Directions, opts.FalseValue)
		for r := 0; r < b.NRows; r++ {
			srcOff := (r+1)*paddedCols + 1
			dstOff := (b.RowStart + r) * ncol
			copy(data[dstOff:dstOff+ncol], result[srcOff:srcOff+ncol])
		}
		reportProgress(opts.BudgetOptions, bi, len(plan.Blocks))
	}

	out.Grid = grid
	out.Data = data
	return out, nil
}

// readPadded reads rows [rowStart-1, rowStart+nRows+1) and pads a column
// on each side, replicating the raster's own boundary row/column where
// there is no real neighbor, the Go equivalent of the original's
// addrowcol.
func readPadded(ctx context.Context, src raster.Source, rowStart, nRows, ncol int) ([]float64, int) {
	nrowTotal, _, _ := src.Dimensions()
	paddedCols := ncol + 2
	paddedRows := nRows + 2
	out := make([]float64, paddedRows*paddedCols)

	for r := 0; r < paddedRows; r++ {
		srcRow := rowStart + r - 1
		if srcRow < 0 {
			srcRow = 0
		}
		if srcRow > nrowTotal-1 {
			srcRow = nrowTotal - 1
		}
		row, err := src.ReadBlock(ctx, srcRow, 1, 0, ncol)
		if err != nil {
			continue
		}
		copy(out[r*paddedCols+1:r*paddedCols+1+ncol], row)
		out[r*paddedCols] = row[0]
		out[r*paddedCols+paddedCols-1] = row[ncol-1]
	}
	return out, paddedCols
}

// doEdge mirrors do_edge: val starts at falseval, interior cells
// [1, nrow-1) x [1, ncol-1) are tested against their neighbors, border
// cells of the padded buffer stay at falseval (they are stripped by the
// caller before being copied into the real output anyway).
func doEdge(d []float64, nrow, ncol int, mode Mode, dirs int, falseval float64) []float64 {
	val := make([]float64, len(d))
	for i := range val {
		val[i] = falseval
	}

	switch mode {
	case Inner:
		for i := 1; i < nrow-1; i++ {
			for j := 1; j < ncol-1; j++ {
				cell := i*ncol + j
				if math.IsNaN(d[cell]) {
					val[cell] = math.NaN()
					continue
				}
				val[cell] = falseval
				for k := 0; k < dirs; k++ {
					if math.IsNaN(d[cell+neighborRowOff[k]*ncol+neighborColOff[k]]) {
						val[cell] = 1
						break
					}
				}
			}
		}
	case Outer:
		for i := 1; i < nrow-1; i++ {
			for j := 1; j < ncol-1; j++ {
				cell := i*ncol + j
				val[cell] = falseval
				if !math.IsNaN(d[cell]) {
					continue
				}
				val[cell] = math.NaN()
				for k := 0; k < dirs; k++ {
					if !math.IsNaN(d[cell+neighborRowOff[k]*ncol+neighborColOff[k]]) {
						val[cell] = 1
						break
					}
				}
			}
		}
	case Classes:
		for i := 1; i < nrow-1; i++ {
			for j := 1; j < ncol-1; j++ {
				cell := i*ncol + j
				test := d[cell]
				if math.IsNaN(test) {
					val[cell] = math.NaN()
				} else {
					val[cell] = falseval
				}
				for k := 0; k < dirs; k++ {
					v := d[cell+neighborRowOff[k]*ncol+neighborColOff[k]]
					if math.IsNaN(test) {
						if !math.IsNaN(v) {
							val[cell] = 1
							break
						}
					} else if test != v {
						val[cell] = 1
						break
					}
				}
			}
		}
	}
	return val
}

func reportProgress(opts raster.BudgetOptions, i, n int) {
	if opts.Progress != nil {
		opts.Progress(i, n)
	}
}
