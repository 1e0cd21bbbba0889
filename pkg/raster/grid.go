package raster

import "math"

// CRSKind classifies the spatial reference of a Grid well enough for the
// sweep and terrain operators to choose between constant and
// latitude-varying neighbor distances.
type CRSKind int

const (
	CRSUnknown CRSKind = iota
	CRSPlanar
	CRSGeographic
)

// globalLonLatSlack absorbs floating point error in "xmax - xmin == 360".
const globalLonLatSlack = 1e-6

// Extent is an axis-aligned bounding box in the Grid's coordinate system.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Grid is an immutable description of a raster's shape, extent and
// reference system. It never owns cell values.
type Grid struct {
	NRow, NCol, NLyr int
	Extent           Extent
	CRSKind          CRSKind
	// MetersPerUnit converts one planar coordinate unit to meters. Ignored
	// for CRSGeographic. Must be > 0 for CRSPlanar.
	MetersPerUnit float64
}

// NewGrid validates and constructs a Grid. It rejects degenerate extents
// and layer/row/column counts below one.
func NewGrid(nrow, ncol, nlyr int, extent Extent, kind CRSKind, metersPerUnit float64) (Grid, error) {
	if nrow < 1 || ncol < 1 || nlyr < 1 {
		return Grid{}, &ErrInvalidInput{Reason: "nrow, ncol and nlyr must each be at least 1"}
	}
	if !(extent.XMin < extent.XMax) || !(extent.YMin < extent.YMax) {
		return Grid{}, &ErrInvalidInput{Reason: "extent must satisfy xmin < xmax and ymin < ymax"}
	}
	if kind == CRSPlanar && !(metersPerUnit > 0) {
		return Grid{}, &ErrInvalidInput{Reason: "planar grid requires meters_per_unit > 0"}
	}
	return Grid{
		NRow: nrow, NCol: ncol, NLyr: nlyr,
		Extent:        extent,
		CRSKind:       kind,
		MetersPerUnit: metersPerUnit,
	}, nil
}

// XRes is the cell width in the Grid's native coordinate units.
func (g Grid) XRes() float64 {
	return (g.Extent.XMax - g.Extent.XMin) / float64(g.NCol)
}

// YRes is the cell height in the Grid's native coordinate units.
func (g Grid) YRes() float64 {
	return (g.Extent.YMax - g.Extent.YMin) / float64(g.NRow)
}

// YFromRow returns the latitude/y-coordinate of the center of row.
func (g Grid) YFromRow(row int) float64 {
	return g.Extent.YMax - (float64(row)+0.5)*g.YRes()
}

// IsLonLat reports whether the Grid's reference system is geographic.
func (g Grid) IsLonLat() bool {
	return g.CRSKind == CRSGeographic
}

// IsGlobalLonLat reports whether the Grid is geographic and its columns
// span a full 360 degrees of longitude, making column NCol-1 adjacent to
// column 0.
func (g Grid) IsGlobalLonLat() bool {
	if g.CRSKind != CRSGeographic {
		return false
	}
	return g.Extent.XMax-g.Extent.XMin >= 360-globalLonLatSlack
}

// NSPolar reports pole coverage for a geographic Grid: -1 south pole only,
// 0 neither, 1 north pole only, 2 both. Always 0 for a non-geographic Grid.
func (g Grid) NSPolar() int {
	if g.CRSKind != CRSGeographic {
		return 0
	}
	const eps = 1e-8
	north := g.Extent.YMax >= 90-eps
	south := g.Extent.YMin <= -90+eps
	switch {
	case north && south:
		return 2
	case north:
		return 1
	case south:
		return -1
	default:
		return 0
	}
}

// Resolution returns (xres, yres) in the Grid's native units.
func (g Grid) Resolution() (float64, float64) {
	return g.XRes(), g.YRes()
}

// IsMissing is the single predicate the sweep kernels use to decide
// whether a cell value counts as "no data". Centralizing it keeps every
// min-plus relaxation reading NaN as the one sentinel for "unknown".
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
