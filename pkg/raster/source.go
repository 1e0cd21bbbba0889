package raster

import (
	"context"
	"fmt"
)

// CRSInfo is the narrow CRS oracle the core consults: a meters-per-unit
// scalar (NaN for geographic), an equality check against another CRS, and
// a lon/lat test.
type CRSInfo struct {
	MetersPerUnit float64
	LonLat        bool
	id            string
}

// NewCRSInfo constructs a CRSInfo. id is an opaque identity string (e.g. a
// WKT or authority code) used only by IsSame.
func NewCRSInfo(metersPerUnit float64, lonlat bool, id string) CRSInfo {
	return CRSInfo{MetersPerUnit: metersPerUnit, LonLat: lonlat, id: id}
}

// IsSame reports whether two CRSInfo values describe the same reference
// system, per the external CRS oracle contract in spec §6.
func (c CRSInfo) IsSame(other CRSInfo) bool {
	return c.id == other.id
}

// Source is the raster reader collaborator: open/close are modeled by
// construction and a context-scoped ReadBlock, matching spec §6's
// "open/read_block/close" with idiomatic Go resource ownership (the
// concrete Source owns its handle; there is no separate Close on the
// interface because callers share one Source across an entire operator
// invocation and release it themselves when done).
type Source interface {
	// ReadBlock returns row-major float64 values for
	// rows [rowStart, rowStart+nRows) and columns [colStart, colStart+nCols)
	// of layer 0. NaN marks missing data.
	ReadBlock(ctx context.Context, rowStart, nRows, colStart, nCols int) ([]float64, error)
	// Dimensions reports the full raster's shape.
	Dimensions() (nRow, nCol, nLyr int)
	// CRS reports the raster's spatial reference.
	CRS() CRSInfo
}

// Sink is the raster writer collaborator. Writes must be atomic at block
// granularity: a failed WriteBlock must leave every prior block's data
// intact in the output.
type Sink interface {
	WriteBlock(ctx context.Context, rowStart, nRows int, data []float64) error
	Finalize(ctx context.Context) error
}

// InMemorySource is the simplest Source variant: a fully materialized
// row-major buffer. It exists for tests and for rasters small enough that
// the streaming contract is observed only for uniformity, not necessity.
type InMemorySource struct {
	Grid   Grid
	Values []float64 // len == NRow*NCol, row-major
	crs    CRSInfo
}

// NewInMemorySource wraps values as a Source over grid.
func NewInMemorySource(grid Grid, values []float64, crs CRSInfo) (*InMemorySource, error) {
	if len(values) != grid.NRow*grid.NCol {
		return nil, &ErrInvalidInput{Reason: fmt.Sprintf(
			"value buffer length %d does not match grid %dx%d", len(values), grid.NRow, grid.NCol)}
	}
	return &InMemorySource{Grid: grid, Values: values, crs: crs}, nil
}

func (s *InMemorySource) ReadBlock(_ context.Context, rowStart, nRows, colStart, nCols int) ([]float64, error) {
	out := make([]float64, nRows*nCols)
	for r := 0; r < nRows; r++ {
		srcRow := rowStart + r
		copy(out[r*nCols:(r+1)*nCols], s.Values[srcRow*s.Grid.NCol+colStart:srcRow*s.Grid.NCol+colStart+nCols])
	}
	return out, nil
}

func (s *InMemorySource) Dimensions() (int, int, int) {
	return s.Grid.NRow, s.Grid.NCol, s.Grid.NLyr
}

func (s *InMemorySource) CRS() CRSInfo {
	return s.crs
}

// WindowedSource restricts another Source to a sub-rectangle, translating
// row/column coordinates transparently. It is the third tagged variant
// named alongside InMemory and Gdal: a trait-level view that needs no
// format-specific logic of its own.
type WindowedSource struct {
	Inner            Source
	RowOff, ColOff   int
	NRowWin, NColWin int
	nLyr             int
}

// NewWindowedSource returns a view of inner restricted to
// rows [rowOff, rowOff+nRowWin) and columns [colOff, colOff+nColWin).
func NewWindowedSource(inner Source, rowOff, colOff, nRowWin, nColWin int) *WindowedSource {
	_, _, nlyr := inner.Dimensions()
	return &WindowedSource{Inner: inner, RowOff: rowOff, ColOff: colOff, NRowWin: nRowWin, NColWin: nColWin, nLyr: nlyr}
}

func (w *WindowedSource) ReadBlock(ctx context.Context, rowStart, nRows, colStart, nCols int) ([]float64, error) {
	return w.Inner.ReadBlock(ctx, w.RowOff+rowStart, nRows, w.ColOff+colStart, nCols)
}

func (w *WindowedSource) Dimensions() (int, int, int) {
	return w.NRowWin, w.NColWin, w.nLyr
}

func (w *WindowedSource) CRS() CRSInfo {
	return w.Inner.CRS()
}
