package sweep

import (
	"context"
	"math"

	"github.com/geostream/rasterfield/pkg/raster"
)

// GridDistance computes the Euclidean distance transform described in
// spec §4.4: for every cell, the least-cost 8-connected path distance to
// the nearest non-NaN ("source") cell, using rook/bishop step weights that
// are constant for a planar grid and vary by latitude for a geographic
// one. A planar grid converges in two full raster passes (top-down, then
// bottom-up taking a pointwise minimum against the first pass); a
// geographic grid always runs a third top-down pass to flush any distance
// that short-circuited through a pole or the antimeridian wrap.
func GridDistance(ctx context.Context, src raster.Source, scratch ScratchFactory, opts raster.BudgetOptions) (raster.Output, error) {
	nrow, ncol, nlyr := src.Dimensions()
	out := raster.Output{}
	if nlyr > 1 {
		out.AddWarning("grid distance computations are only done for the first input layer")
	}

	grid, err := raster.NewGrid(nrow, ncol, 1, raster.Extent{XMin: 0, XMax: float64(ncol), YMin: 0, YMax: float64(nrow)}, crsKindOf(src), metersPerUnitOf(src))
	if err != nil {
		out.Err = err
		return out, err
	}
	crs := src.CRS()
	if crs.LonLat {
		grid.CRSKind = raster.CRSGeographic
	}

	plan, err := raster.PlanBlocks(nrow, int64(ncol)*8*3, opts.MemoryBytes, max(opts.MinRows, 1))
	if err != nil {
		out.Err = err
		return out, err
	}

	var result raster.Output
	if crs.LonLat {
		result, err = gridDistanceGeo(ctx, src, grid, plan, scratch, opts, crs)
	} else {
		result, err = gridDistancePlanar(ctx, src, grid, plan, scratch, opts, crs)
	}
	result.Warnings = append(out.Warnings, result.Warnings...)
	return result, err
}

func crsKindOf(src raster.Source) raster.CRSKind {
	if src.CRS().LonLat {
		return raster.CRSGeographic
	}
	return raster.CRSPlanar
}

func metersPerUnitOf(src raster.Source) float64 {
	m := src.CRS().MetersPerUnit
	if math.IsNaN(m) || m <= 0 {
		return 1
	}
	return m
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// reversedPlan returns plan with its blocks in reverse row order, so a
// Prefetcher driven off it reads src bottom-to-top for a backward sweep
// pass.
func reversedPlan(plan raster.BlockPlan) raster.BlockPlan {
	rev := make([]raster.Block, len(plan.Blocks))
	for i, b := range plan.Blocks {
		rev[len(plan.Blocks)-1-i] = b
	}
	return raster.BlockPlan{Blocks: rev}
}

func gridDistancePlanar(ctx context.Context, src raster.Source, grid raster.Grid, plan raster.BlockPlan, scratch ScratchFactory, opts raster.BudgetOptions, crs raster.CRSInfo) (raster.Output, error) {
	nc := grid.NCol
	lindist := metersPerUnitOf(src)
	xres, yres := grid.XRes(), grid.YRes()
	dx, dy, dxy := stepAtPlanar(xres, yres, lindist, false)

	first, err := scratch(grid)
	if err != nil {
		return raster.Output{Err: err}, err
	}
	above := infRow(nc)
	forward := NewPrefetcher(ctx, src, plan, nc)
	for i := 0; i < len(plan.Blocks); i++ {
		if cancelled(opts) {
			break
		}
		b, v, _, err := forward.Next(ctx)
		if err != nil {
			return raster.Output{Err: err}, err
		}
		d := make([]float64, len(v))
		for j := range v {
			if math.IsNaN(v[j]) {
				d[j] = math.Inf(1)
			}
		}
		broomDistPlanar(d, v, above, b.NRows, nc, dx, dy, dxy)
		if err := first.WriteBlock(ctx, b.RowStart, b.NRows, d); err != nil {
			e := &raster.ErrIoFailure{Op: "write block", Err: err}
			return raster.Output{Err: e}, e
		}
		reportProgress(opts, i, len(plan.Blocks))
	}
	if err := forward.Close(); err != nil {
		e := &raster.ErrIoFailure{Op: "prefetch close", Err: err}
		return raster.Output{Err: e}, e
	}
	if err := first.Finalize(ctx); err != nil {
		e := &raster.ErrIoFailure{Op: "finalize scratch", Err: err}
		return raster.Output{Err: e}, e
	}
	firstSrc, err := first.Open()
	if err != nil {
		return raster.Output{Err: err}, err
	}

	data := make([]float64, grid.NRow*nc)
	above = infRow(nc)
	backward := NewPrefetcher(ctx, src, reversedPlan(plan), nc)
	for i := len(plan.Blocks); i > 0; i-- {
		if cancelled(opts) {
			break
		}
		b, v, _, err := backward.Next(ctx)
		if err != nil {
			return raster.Output{Err: err}, err
		}
		prev, err := firstSrc.ReadBlock(ctx, b.RowStart, b.NRows, 0, nc)
		if err != nil {
			e := &raster.ErrIoFailure{Op: "read scratch block", Err: err}
			return raster.Output{Err: e}, e
		}
		reverseFloats(v)
		d := make([]float64, len(v))
		for j := range v {
			if math.IsNaN(v[j]) {
				d[j] = math.Inf(1)
			}
		}
		broomDistPlanar(d, v, above, b.NRows, nc, dx, dy, dxy)
		reverseFloats(d)
		for j := range d {
			if prev[j] < d[j] {
				d[j] = prev[j]
			}
		}
		copy(data[b.RowStart*nc:(b.RowStart+b.NRows)*nc], d)
		reportProgress(opts, len(plan.Blocks)-i, len(plan.Blocks))
	}
	if err := backward.Close(); err != nil {
		e := &raster.ErrIoFailure{Op: "prefetch close", Err: err}
		return raster.Output{Err: e}, e
	}

	return raster.Output{Grid: grid, Data: data}, nil
}

func gridDistanceGeo(ctx context.Context, src raster.Source, grid raster.Grid, plan raster.BlockPlan, scratch ScratchFactory, opts raster.BudgetOptions, crs raster.CRSInfo) (raster.Output, error) {
	nc := grid.NCol
	xres, yres := grid.XRes(), grid.YRes()
	global := grid.IsGlobalLonLat()
	polar := grid.NSPolar()
	npole := polar == 1 || polar == 2
	spole := polar == -1 || polar == 2

	relax := broomDistGeo
	if global {
		relax = broomDistGeoGlobal
	}

	// pass 1: top-to-bottom
	first, err := scratch(grid)
	if err != nil {
		return raster.Output{Err: err}, err
	}
	above := infRow(nc)
	pass1 := NewPrefetcher(ctx, src, plan, nc)
	for range plan.Blocks {
		if cancelled(opts) {
			break
		}
		b, v, _, err := pass1.Next(ctx)
		if err != nil {
			return raster.Output{Err: err}, err
		}
		d := initDist(v)
		lat := grid.YFromRow(b.RowStart)
		np, sp := b.RowStart == 0 && npole, (b.RowStart+b.NRows) == grid.NRow && spole
		relax(d, v, above, b.NRows, nc, lat, xres, yres, -1, np, sp)
		if err := first.WriteBlock(ctx, b.RowStart, b.NRows, d); err != nil {
			e := &raster.ErrIoFailure{Op: "write block", Err: err}
			return raster.Output{Err: e}, e
		}
	}
	if err := pass1.Close(); err != nil {
		e := &raster.ErrIoFailure{Op: "prefetch close", Err: err}
		return raster.Output{Err: e}, e
	}
	if err := first.Finalize(ctx); err != nil {
		return raster.Output{Err: err}, err
	}
	firstSrc, err := first.Open()
	if err != nil {
		return raster.Output{Err: err}, err
	}

	// pass 2: bottom-to-top
	second, err := scratch(grid)
	if err != nil {
		return raster.Output{Err: err}, err
	}
	above = infRow(nc)
	pass2 := NewPrefetcher(ctx, src, reversedPlan(plan), nc)
	for i := len(plan.Blocks); i > 0; i-- {
		if cancelled(opts) {
			break
		}
		b, v, _, err := pass2.Next(ctx)
		if err != nil {
			return raster.Output{Err: err}, err
		}
		d, err := firstSrc.ReadBlock(ctx, b.RowStart, b.NRows, 0, nc)
		if err != nil {
			e := &raster.ErrIoFailure{Op: "read scratch block", Err: err}
			return raster.Output{Err: e}, e
		}
		reverseFloats(v)
		reverseFloats(d)
		lat := grid.YFromRow(b.RowStart + b.NRows - 1)
		// the buffers are reversed: their first row is the block's
		// southmost row and their last row its northmost.
		sp := i == 1 && npole
		np := i == len(plan.Blocks) && spole
		relax(d, v, above, b.NRows, nc, lat, xres, yres, 1, np, sp)
		reverseFloats(d)
		if err := second.WriteBlock(ctx, b.RowStart, b.NRows, d); err != nil {
			e := &raster.ErrIoFailure{Op: "write block", Err: err}
			return raster.Output{Err: e}, e
		}
	}
	if err := pass2.Close(); err != nil {
		e := &raster.ErrIoFailure{Op: "prefetch close", Err: err}
		return raster.Output{Err: e}, e
	}
	if err := second.Finalize(ctx); err != nil {
		return raster.Output{Err: err}, err
	}
	secondSrc, err := second.Open()
	if err != nil {
		return raster.Output{Err: err}, err
	}

	// pass 3: top-to-bottom again, flushing anything that short-circuited
	// through a pole or the antimeridian wrap.
	data := make([]float64, grid.NRow*nc)
	above = infRow(nc)
	pass3 := NewPrefetcher(ctx, src, plan, nc)
	for i := range plan.Blocks {
		if cancelled(opts) {
			break
		}
		b, v, _, err := pass3.Next(ctx)
		if err != nil {
			return raster.Output{Err: err}, err
		}
		d, err := secondSrc.ReadBlock(ctx, b.RowStart, b.NRows, 0, nc)
		if err != nil {
			e := &raster.ErrIoFailure{Op: "read scratch block", Err: err}
			return raster.Output{Err: e}, e
		}
		lat := grid.YFromRow(b.RowStart)
		np, sp := i == 0 && npole, i == len(plan.Blocks)-1 && spole
		relax(d, v, above, b.NRows, nc, lat, xres, yres, -1, np, sp)
		copy(data[b.RowStart*nc:(b.RowStart+b.NRows)*nc], d)
	}
	if err := pass3.Close(); err != nil {
		e := &raster.ErrIoFailure{Op: "prefetch close", Err: err}
		return raster.Output{Err: e}, e
	}

	return raster.Output{Grid: grid, Data: data}, nil
}

func infRow(n int) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = math.Inf(1)
	}
	return r
}

func initDist(v []float64) []float64 {
	d := make([]float64, len(v))
	for i, x := range v {
		if math.IsNaN(x) {
			d[i] = math.Inf(1)
		}
	}
	return d
}

func reverseFloats(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
