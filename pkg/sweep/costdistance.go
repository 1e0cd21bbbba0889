package sweep

import (
	"context"
	"math"

	"github.com/geostream/rasterfield/pkg/raster"
)

// CostDistanceOptions configures CostDistance beyond the shared memory
// budget: MaxIter bounds the number of forward+backward sweep rounds
// (spec §4.5's fixed-point iteration), and Grid, when true, switches the
// kernel to grid_dist's unweighted edges so CostDistance can serve as
// gridDistance's NaN-sentinel-and-friction-aware sibling without
// duplicating the fixed-point driver loop.
type CostDistanceOptions struct {
	raster.BudgetOptions
	MaxIter int
	Grid    bool
}

// DefaultCostDistanceOptions returns the defaults used when a caller
// hasn't set MaxIter: 50 rounds, mirroring the original engine's bound.
func DefaultCostDistanceOptions() CostDistanceOptions {
	return CostDistanceOptions{BudgetOptions: raster.DefaultBudgetOptions(), MaxIter: 50}
}

// CostDistance computes the least-cost path distance from source cells
// (non-NaN src values) to every other cell, where the cost of
// crossing from cell a to cell b is the step length times the average of
// a's and b's friction (frictionSrc), per spec §4.5. It repeats
// forward+backward sweeps until no cell's distance changes or MaxIter is
// reached, surfacing a warning (not an error) and a partial result if it
// never converges.
func CostDistance(ctx context.Context, src, frictionSrc raster.Source, scratch ScratchFactory, opts CostDistanceOptions) (raster.Output, error) {
	nrow, ncol, nlyr := src.Dimensions()
	out := raster.Output{}
	if nlyr > 1 {
		out.AddWarning("cost distance computations are only done for the first input layer")
	}

	crs := src.CRS()
	kind := raster.CRSPlanar
	if crs.LonLat {
		kind = raster.CRSGeographic
	}
	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, kind, metersPerUnitOf(src))
	if err != nil {
		out.Err = err
		return out, err
	}

	maxiter := opts.MaxIter
	if maxiter <= 0 {
		maxiter = DefaultCostDistanceOptions().MaxIter
	}

	dist := make([]float64, nrow*ncol)
	friction := make([]float64, nrow*ncol)

	v, err := src.ReadBlock(ctx, 0, nrow, 0, ncol)
	if err != nil {
		e := &raster.ErrIoFailure{Op: "read source", Err: err}
		out.Err = e
		return out, e
	}
	fr, err := frictionSrc.ReadBlock(ctx, 0, nrow, 0, ncol)
	if err != nil {
		e := &raster.ErrIoFailure{Op: "read friction", Err: err}
		out.Err = e
		return out, e
	}
	for i, f := range fr {
		if !math.IsNaN(f) && f < 0 {
			e := &raster.ErrInvalidInput{Reason: "friction surface must be non-negative"}
			out.Err = e
			return out, e
		}
		friction[i] = f
	}
	for i, x := range v {
		if math.IsNaN(x) {
			dist[i] = math.NaN()
		} else {
			dist[i] = 0
		}
	}

	xres, yres := grid.XRes(), grid.YRes()
	global := grid.IsGlobalLonLat()
	polar := grid.NSPolar()
	npole := polar == 1 || polar == 2
	spole := polar == -1 || polar == 2

	converged := false
	iter := 0
	for iter = 0; iter < maxiter; iter++ {
		if cancelled(opts.BudgetOptions) {
			break
		}
		before := append([]float64(nil), dist...)

		above := infOrNaNRow(ncol, true)
		frabove := make([]float64, ncol)
		if crs.LonLat {
			lat := grid.YFromRow(0)
			if global {
				costBlockGeoWrap(dist, friction, above, frabove, nrow, ncol, lat, xres, yres, -1, npole, spole, opts.Grid)
			} else {
				costBlockGeo(dist, friction, above, frabove, nrow, ncol, lat, xres, yres, -1, npole, spole, opts.Grid)
			}
		} else {
			dx, dy, dxy := stepAtPlanar(xres, yres, metersPerUnitOf(src), true)
			costBlockPlanar(dist, friction, above, frabove, nrow, ncol, dx, dy, dxy, opts.Grid)
		}

		reportProgress(opts.BudgetOptions, iter, maxiter)
		if floatsEqual(before, dist) {
			converged = true
			iter++
			break
		}
	}

	if !converged {
		out.AddWarning((&raster.ErrNotConverged{Iterations: iter}).Error())
	}

	out.Grid = grid
	out.Data = dist
	return out, nil
}

// costBlockGeoWrap is costBlockGeo plus antimeridian wrap, following the
// same pattern broomDistGeoGlobal applies to broomDistGeo.
func costBlockGeoWrap(dist, friction, above, frabove []float64, nr, nc int, lat, xres, yres float64, latdir int, npole, spole, grid bool) {
	w := func(step, fa, fb float64) float64 { return edgeWeight(step, fa, fb, grid) }
	stopnc := nc - 1
	dx, dy, dxy := stepAtGeo(lat, 0, xres, yres, latdir, true)

	dist[0] = minIgnoreNaN(dist[0], above[0]+w(dy, friction[0], frabove[0]))
	dist[0] = minIgnoreNaN(dist[0], above[stopnc]+w(dxy, friction[0], frabove[stopnc]))
	dist[0] = minIgnoreNaN(dist[0], dist[stopnc]+w(dx, friction[0], friction[stopnc]))
	for i := 1; i < nc; i++ {
		dist[i] = minIgnoreNaN(dist[i], above[i]+w(dy, friction[i], frabove[i]))
		dist[i] = minIgnoreNaN(dist[i], above[i-1]+w(dxy, friction[i], frabove[i-1]))
		dist[i] = minIgnoreNaN(dist[i], dist[i-1]+w(dx, friction[i], friction[i-1]))
	}
	if npole {
		relaxAcrossPoleCost(dist[:nc], friction[:nc], dy, grid)
	}

	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, true)
		start := r * nc
		dist[start] = minIgnoreNaN(dist[start], dist[start-nc]+w(dy, friction[start], friction[start-nc]))
		dist[start] = minIgnoreNaN(dist[start], dist[start-1]+w(dxy, friction[start], friction[start-1]))
		dist[start] = minIgnoreNaN(dist[start], dist[start+stopnc]+w(dx, friction[start], friction[start+stopnc]))
		end := start + nc
		for i := start + 1; i < end; i++ {
			dist[i] = minIgnoreNaN(dist[i], dist[i-1]+w(dx, friction[i], friction[i-1]))
			dist[i] = minIgnoreNaN(dist[i], dist[i-nc]+w(dy, friction[i], friction[i-nc]))
			dist[i] = minIgnoreNaN(dist[i], dist[i-nc-1]+w(dxy, friction[i], friction[i-nc-1]))
		}
	}
	if spole {
		relaxAcrossPoleCost(dist[(nr-1)*nc:], friction[(nr-1)*nc:], dy, grid)
	}

	dx, dy, dxy = stepAtGeo(lat, 0, xres, yres, latdir, true)
	dist[stopnc] = minIgnoreNaN(dist[stopnc], above[stopnc]+w(dy, friction[stopnc], frabove[stopnc]))
	dist[stopnc] = minIgnoreNaN(dist[stopnc], above[0]+w(dxy, friction[stopnc], frabove[0]))
	dist[stopnc] = minIgnoreNaN(dist[stopnc], dist[0]+w(dx, friction[stopnc], friction[0]))
	for i := nc - 2; i >= 0; i-- {
		dist[i] = minIgnoreNaN(dist[i], dist[i+1]+w(dx, friction[i], friction[i+1]))
		dist[i] = minIgnoreNaN(dist[i], above[i+1]+w(dxy, friction[i], frabove[i+1]))
		dist[i] = minIgnoreNaN(dist[i], above[i]+w(dy, friction[i], frabove[i]))
	}
	if npole {
		relaxAcrossPoleCost(dist[:nc], friction[:nc], dy, grid)
	}
	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, true)
		start := (r+1)*nc - 1
		dist[start] = minIgnoreNaN(dist[start], dist[start-nc]+w(dy, friction[start], friction[start-nc]))
		dist[start] = minIgnoreNaN(dist[start], dist[start-nc-stopnc]+w(dxy, friction[start], friction[start-nc-stopnc]))
		dist[start] = minIgnoreNaN(dist[start], dist[start-stopnc]+w(dx, friction[start], friction[start-stopnc]))
		end := r * nc
		for i := start - 1; i >= end; i-- {
			dist[i] = minIgnoreNaN(dist[i], dist[i+1]+w(dx, friction[i], friction[i+1]))
			dist[i] = minIgnoreNaN(dist[i], dist[i-nc]+w(dy, friction[i], friction[i-nc]))
			dist[i] = minIgnoreNaN(dist[i], dist[i-nc+1]+w(dxy, friction[i], friction[i-nc+1]))
		}
	}
	if spole {
		relaxAcrossPoleCost(dist[(nr-1)*nc:], friction[(nr-1)*nc:], dy, grid)
	}

	copy(above, dist[(nr-1)*nc:])
	copy(frabove, friction[(nr-1)*nc:])
}

func infOrNaNRow(n int, useNaN bool) []float64 {
	r := make([]float64, n)
	for i := range r {
		if useNaN {
			r[i] = math.NaN()
		} else {
			r[i] = math.Inf(1)
		}
	}
	return r
}

func floatsEqual(a, b []float64) bool {
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
