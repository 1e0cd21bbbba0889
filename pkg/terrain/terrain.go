package terrain

import (
	"context"
	"math"
	"math/rand"

	"github.com/geostream/rasterfield/pkg/geodesy"
	"github.com/geostream/rasterfield/pkg/raster"
)

// Variable names one of the derivatives Compute can produce.
type Variable string

const (
	Slope     Variable = "slope"
	Aspect    Variable = "aspect"
	FlowDir   Variable = "flowdir"
	TPI       Variable = "TPI"
	TRI       Variable = "TRI"
	Roughness Variable = "roughness"
)

// Options configures Compute.
type Options struct {
	raster.BudgetOptions
	Variables []Variable
	Neighbors int // 4 or 8; only meaningful for Slope and Aspect
	Degrees   bool
	Seed      uint64 // flow direction tie-break RNG seed
}

// DefaultOptions returns 8-neighbor, radians output, with no variable
// selected; callers set Variables before calling Compute.
func DefaultOptions() Options {
	o := Options{BudgetOptions: raster.DefaultBudgetOptions(), Neighbors: 8}
	o.MinRows = 3
	return o
}

// Compute runs every requested variable over src's first layer in a
// single pass over the blocks, returning one Output per variable. All
// variables leave row 0, row nrow-1, column 0 and column ncol-1 (and any
// cell whose kernel reads a NaN neighbor) as NaN. The 4-neighbor slope
// and aspect kernels read only the rook neighbors, so a NaN diagonal
// neighbor does not blank them.
func Compute(ctx context.Context, src raster.Source, opts Options) (map[Variable]raster.Output, error) {
	if len(opts.Variables) == 0 {
		return nil, &raster.ErrInvalidInput{Reason: "at least one terrain variable must be requested"}
	}
	if opts.Neighbors != 4 && opts.Neighbors != 8 {
		return nil, &raster.ErrInvalidInput{Reason: "neighbors must be 4 or 8"}
	}
	nrow, ncol, nlyr := src.Dimensions()
	warn := ""
	if nlyr > 1 {
		warn = "terrain needs a single layer object; only the first layer was used"
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
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol) * mpu, YMin: 0, YMax: float64(nrow) * mpu}, kind, mpu)
	if err != nil {
		return nil, err
	}
	xres, yres := grid.XRes()/mpu, grid.YRes()/mpu
	dx, dy := xres*mpu, yres*mpu

	results := make(map[Variable][]float64, len(opts.Variables))
	for _, v := range opts.Variables {
		results[v] = make([]float64, nrow*ncol)
		for i := range results[v] {
			results[v][i] = math.NaN()
		}
	}

	minrows := opts.MinRows
	if minrows < 3 {
		minrows = 3
	}
	plan, err := raster.PlanBlocks(nrow, int64(ncol)*8, opts.MemoryBytes, minrows)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(int64(opts.Seed)))

	for bi, b := range plan.Blocks {
		if opts.Cancel != nil && opts.Cancel() {
			break
		}
		padded, paddedCols := readPadded(ctx, src, b.RowStart, b.NRows, ncol)
		lats := make([]float64, b.NRows+2)
		for r := range lats {
			lats[r] = grid.YFromRow(b.RowStart + r - 1)
		}

		for _, v := range opts.Variables {
			var block []float64
			switch v {
			case Slope:
				block = computeSlope(padded, b.NRows+2, paddedCols, opts.Neighbors, dx, dy, crs.LonLat, lats, opts.Degrees)
			case Aspect:
				block = computeAspect(padded, b.NRows+2, paddedCols, opts.Neighbors, dx, dy, crs.LonLat, lats, opts.Degrees)
			case FlowDir:
				block = computeFlowDir(padded, b.NRows+2, paddedCols, dx, dy, rng)
			case TPI:
				block = computeTPI(padded, b.NRows+2, paddedCols)
			case TRI:
				block = computeTRI(padded, b.NRows+2, paddedCols)
			case Roughness:
				block = computeRoughness(padded, b.NRows+2, paddedCols)
			default:
				return nil, &raster.ErrInvalidInput{Reason: "unknown terrain variable: " + string(v)}
			}
			for r := 0; r < b.NRows; r++ {
				srcOff := (r+1)*paddedCols + 1
				dstOff := (b.RowStart + r) * ncol
				copy(results[v][dstOff:dstOff+ncol], block[srcOff:srcOff+ncol])
			}
		}
		if opts.Progress != nil {
			opts.Progress(bi, len(plan.Blocks))
		}
	}

	out := make(map[Variable]raster.Output, len(opts.Variables))
	for _, v := range opts.Variables {
		o := raster.Output{Grid: grid, Data: results[v]}
		if warn != "" {
			o.AddWarning(warn)
		}
		out[v] = o
	}
	return out, nil
}

// readPadded is terrain's variant of edges' halo reader: a 1-cell border
// that is NaN wherever no real neighbor exists, so every kernel leaves the
// raster's own boundary cells NaN.
func readPadded(ctx context.Context, src raster.Source, rowStart, nRows, ncol int) ([]float64, int) {
	nrowTotal, _, _ := src.Dimensions()
	paddedCols := ncol + 2
	paddedRows := nRows + 2
	out := make([]float64, paddedRows*paddedCols)
	for i := range out {
		out[i] = math.NaN()
	}

	for r := 0; r < paddedRows; r++ {
		srcRow := rowStart + r - 1
		if srcRow < 0 || srcRow > nrowTotal-1 {
			continue
		}
		row, err := src.ReadBlock(ctx, srcRow, 1, 0, ncol)
		if err != nil {
			continue
		}
		copy(out[r*paddedCols+1:r*paddedCols+1+ncol], row)
	}
	return out, paddedCols
}

func computeTRI(d []float64, nrow, ncol int) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	for row := 1; row < nrow-1; row++ {
		for col := 1; col < ncol-1; col++ {
			i := row*ncol + col
			sum := math.Abs(d[i-1-ncol]-d[i]) + math.Abs(d[i-1]-d[i]) + math.Abs(d[i-1+ncol]-d[i]) +
				math.Abs(d[i-ncol]-d[i]) + math.Abs(d[i+ncol]-d[i]) + math.Abs(d[i+1-ncol]-d[i]) +
				math.Abs(d[i+1]-d[i]) + math.Abs(d[i+1+ncol]-d[i])
			val[i] = sum / 8
		}
	}
	return val
}

func computeTPI(d []float64, nrow, ncol int) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	for row := 1; row < nrow-1; row++ {
		for col := 1; col < ncol-1; col++ {
			i := row*ncol + col
			mean := (d[i-1-ncol] + d[i-1] + d[i-1+ncol] + d[i-ncol] +
				d[i+ncol] + d[i+1-ncol] + d[i+1] + d[i+1+ncol]) / 8
			val[i] = d[i] - mean
		}
	}
	return val
}

func computeRoughness(d []float64, nrow, ncol int) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	offsets := [9]int{-1 - ncol, -1, -1 + ncol, -ncol, 0, ncol, 1 - ncol, 1, 1 + ncol}
	for row := 1; row < nrow-1; row++ {
		for col := 1; col < ncol-1; col++ {
			i := row*ncol + col
			min, max := d[i+offsets[0]], d[i+offsets[0]]
			missing := math.IsNaN(min)
			for _, off := range offsets[1:] {
				v := d[i+off]
				if math.IsNaN(v) {
					missing = true
					break
				}
				if v > max {
					max = v
				} else if v < min {
					min = v
				}
			}
			if missing {
				continue
			}
			val[i] = max - min
		}
	}
	return val
}

func computeFlowDir(d []float64, nrow, ncol int, dx, dy float64, rng *rand.Rand) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	dxy := math.Sqrt(dx*dx + dy*dy)
	powers := [8]float64{1, 2, 4, 8, 16, 32, 64, 128}

	for row := 1; row < nrow-1; row++ {
		for col := 1; col < ncol-1; col++ {
			i := row*ncol + col
			if math.IsNaN(d[i]) {
				continue
			}
			r := [8]float64{
				(d[i] - d[i+1]) / dx,
				(d[i] - d[i+1+ncol]) / dxy,
				(d[i] - d[i+ncol]) / dy,
				(d[i] - d[i-1+ncol]) / dxy,
				(d[i] - d[i-1]) / dx,
				(d[i] - d[i-1-ncol]) / dxy,
				(d[i] - d[i-ncol]) / dy,
				(d[i] - d[i+1-ncol]) / dxy,
			}
			complete := true
			for _, x := range r {
				if math.IsNaN(x) {
					complete = false
				}
			}
			if !complete {
				continue
			}
			dmin := r[0]
			k := 0
			for j := 1; j < 8; j++ {
				if r[j] > dmin {
					dmin = r[j]
					k = j
				} else if r[j] == dmin {
					if rng.Intn(2) == 1 {
						dmin = r[j]
						k = j
					}
				}
			}
			val[i] = powers[k]
		}
	}
	return val
}

// haversineHalfStep mirrors distHaversine(-dx, lat, dx, lat)/2 from the
// original: half the ground distance across 2*dx, i.e. the east-west
// ground distance for one cell width dx at lat.
func haversineHalfStep(dx, lat float64) float64 {
	return geodesy.DistHaversine(-dx, lat, dx, lat) / 2
}

func computeSlope(d []float64, nrow, ncol, ngb int, dx, dy float64, geo bool, lats []float64, degrees bool) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	if ngb == 4 {
		for row := 1; row < nrow-1; row++ {
			xw := [2]float64{-1, 1}
			yw := [2]float64{-1.0 / (2 * dy), 1.0 / (2 * dy)}
			if geo {
				ddx := haversineHalfStep(dx, lats[row])
				xw[0] = xw[0] / (-2 * ddx)
				xw[1] = xw[1] / (-2 * ddx)
			} else {
				xw[0] = xw[0] / (-2 * dx)
				xw[1] = xw[1] / (-2 * dx)
			}
			for col := 1; col < ncol-1; col++ {
				i := row*ncol + col
				zx := d[i-1]*xw[0] + d[i+1]*xw[1]
				zy := d[i-ncol]*yw[0] + d[i+ncol]*yw[1]
				val[i] = math.Atan(math.Sqrt(zy*zy + zx*zx))
			}
		}
	} else {
		xwi := [6]float64{-1, -2, -1, 1, 2, 1}
		ywi := [6]float64{-1, 1, -2, 2, -1, 1}
		for row := 1; row < nrow-1; row++ {
			var xw, yw [6]float64
			for k := 0; k < 6; k++ {
				yw[k] = ywi[k] / (8 * dy)
			}
			if geo {
				ddx := haversineHalfStep(dx, lats[row])
				for k := 0; k < 6; k++ {
					xw[k] = xwi[k] / (8 * ddx)
				}
			} else {
				for k := 0; k < 6; k++ {
					xw[k] = xwi[k] / (-8 * dx)
				}
			}
			for col := 1; col < ncol-1; col++ {
				i := row*ncol + col
				zx := d[i-1-ncol]*xw[0] + d[i-1]*xw[1] + d[i-1+ncol]*xw[2] +
					d[i+1-ncol]*xw[3] + d[i+1]*xw[4] + d[i+1+ncol]*xw[5]
				zy := d[i-1-ncol]*yw[0] + d[i-1+ncol]*yw[1] + d[i-ncol]*yw[2] +
					d[i+ncol]*yw[3] + d[i+1-ncol]*yw[4] + d[i+1+ncol]*yw[5]
				val[i] = math.Atan(math.Sqrt(zy*zy + zx*zx))
			}
		}
	}
	if degrees {
		toDegrees(val)
	}
	return val
}

func computeAspect(d []float64, nrow, ncol, ngb int, dx, dy float64, geo bool, lats []float64, degrees bool) []float64 {
	val := make([]float64, nrow*ncol)
	for i := range val {
		val[i] = math.NaN()
	}
	const halfPI = math.Pi / 2
	const twoPI = 2 * math.Pi

	if ngb == 4 {
		for row := 1; row < nrow-1; row++ {
			xw := [2]float64{-1, 1}
			yw := [2]float64{-1.0 / (2 * dy), 1.0 / (2 * dy)}
			if geo {
				ddx := haversineHalfStep(dx, lats[row])
				xw[0] = xw[0] / (-2 * ddx)
				xw[1] = xw[1] / (-2 * ddx)
			} else {
				xw[0] = xw[0] / (-2 * dx)
				xw[1] = xw[1] / (-2 * dx)
			}
			for col := 1; col < ncol-1; col++ {
				i := row*ncol + col
				zx := d[i-1]*xw[0] + d[i+1]*xw[1]
				zy := d[i-ncol]*yw[0] + d[i+ncol]*yw[1]
				a := math.Atan2(zy, zx)
				val[i] = dmod(halfPI-a, twoPI)
			}
		}
	} else {
		xwi := [6]float64{-1, -2, -1, 1, 2, 1}
		ywi := [6]float64{-1, 1, -2, 2, -1, 1}
		for row := 1; row < nrow-1; row++ {
			var xw, yw [6]float64
			for k := 0; k < 6; k++ {
				yw[k] = ywi[k] / (8 * dy)
			}
			if geo {
				ddx := haversineHalfStep(dx, lats[row])
				for k := 0; k < 6; k++ {
					xw[k] = xwi[k] / (-8 * ddx)
				}
			} else {
				for k := 0; k < 6; k++ {
					xw[k] = xwi[k] / (-8 * dx)
				}
			}
			for col := 1; col < ncol-1; col++ {
				i := row*ncol + col
				zx := d[i-1-ncol]*xw[0] + d[i-1]*xw[1] + d[i-1+ncol]*xw[2] +
					d[i+1-ncol]*xw[3] + d[i+1]*xw[4] + d[i+1+ncol]*xw[5]
				zy := d[i-1-ncol]*yw[0] + d[i-1+ncol]*yw[1] + d[i-ncol]*yw[2] +
					d[i+ncol]*yw[3] + d[i+1-ncol]*yw[4] + d[i+1+ncol]*yw[5]
				a := math.Atan2(zy, zx)
				val[i] = dmod(halfPI-a, twoPI)
			}
		}
	}
	if degrees {
		toDegrees(val)
	}
	return val
}

func dmod(x, n float64) float64 {
	return x - n*math.Floor(x/n)
}

func toDegrees(x []float64) {
	const adj = 180 / math.Pi
	for i, v := range x {
		if !math.IsNaN(v) {
			x[i] = v * adj
		}
	}
}
