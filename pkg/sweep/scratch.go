package sweep

import (
	"context"

	"github.com/geostream/rasterfield/pkg/raster"
)

// Scratch is the intermediate-raster collaborator the multi-pass sweeps
// need between directional passes: something written block-by-block in
// one pass and read back block-by-block in the next. It is the same
// Sink/Source split used for real outputs: a Scratch is simply a Sink
// that can hand back a Source once everything has been written, which is
// exactly how the original engine's "first"/"second" temporary rasters
// behave (they are ordinary SpatRaster outputs, just never handed to the
// caller).
type Scratch interface {
	raster.Sink
	// Open returns a Source over everything written so far. Called after
	// Finalize.
	Open() (raster.Source, error)
}

// ScratchFactory constructs a fresh Scratch of the given geometry. The
// driver layer (out of scope here) would normally supply one backed by a
// temp file so a pass's intermediate output never has to fit in RAM;
// NewMemoryScratch below is the default used by tests and by small
// rasters, not a substitute for that streaming guarantee at scale.
type ScratchFactory func(grid raster.Grid) (Scratch, error)

// memoryScratch buffers a whole raster's values in RAM. It is the
// InMemory variant of Scratch, same spirit as raster.InMemorySource.
type memoryScratch struct {
	grid raster.Grid
	crs  raster.CRSInfo
	data []float64
}

// NewMemoryScratch returns a ScratchFactory that buffers pass output in
// memory, for callers not chunking rasters larger than RAM.
func NewMemoryScratch(crs raster.CRSInfo) ScratchFactory {
	return func(grid raster.Grid) (Scratch, error) {
		data := make([]float64, grid.NRow*grid.NCol)
		return &memoryScratch{grid: grid, crs: crs, data: data}, nil
	}
}

func (m *memoryScratch) WriteBlock(_ context.Context, rowStart, nRows int, data []float64) error {
	copy(m.data[rowStart*m.grid.NCol:(rowStart+nRows)*m.grid.NCol], data)
	return nil
}

func (m *memoryScratch) Finalize(_ context.Context) error {
	return nil
}

func (m *memoryScratch) Open() (raster.Source, error) {
	return raster.NewInMemorySource(m.grid, m.data, m.crs)
}
