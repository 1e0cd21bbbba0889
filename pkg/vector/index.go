package vector

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// pointSpatial adapts an orb.Point to rtreego.Spatial so it can be
// inserted into an Rtree, with a degenerate (near-zero-area) bounding
// rect around the point.
type pointSpatial struct {
	pt orb.Point
}

func (p pointSpatial) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(rtreego.Point{p.pt[0], p.pt[1]}, []float64{1e-9, 1e-9})
	return rect
}

// Index answers nearest-feature queries over a fixed point set.
type Index struct {
	tree   *rtreego.Rtree
	points []orb.Point
}

// NewIndex builds an R-tree over points. Points must be non-empty.
func NewIndex(points []orb.Point) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, p := range points {
		tree.Insert(pointSpatial{pt: p})
	}
	return &Index{tree: tree, points: points}
}

// Len reports the number of indexed points.
func (idx *Index) Len() int {
	return len(idx.points)
}

// Nearest returns the indexed point closest to (x, y) by planar (not
// geodesic) distance, which is sufficient to shortlist a small candidate
// set; callers needing exact geographic distance should re-rank the
// k-nearest candidates with geodesy.DistanceGeo themselves (see
// DistanceToFeatures).
func (idx *Index) Nearest(x, y float64) orb.Point {
	q := rtreego.Point{x, y}
	nearest := idx.tree.NearestNeighbor(q)
	return nearest.(pointSpatial).pt
}

// KNearest returns up to k of the indexed points closest to (x, y) by
// planar distance, for callers that need to re-rank by a more expensive
// metric (e.g. geodesic distance) afterward.
func (idx *Index) KNearest(x, y float64, k int) []orb.Point {
	q := rtreego.Point{x, y}
	spatials := idx.tree.NearestNeighbors(k, q)
	out := make([]orb.Point, 0, len(spatials))
	for _, s := range spatials {
		if s == nil {
			continue
		}
		out = append(out, s.(pointSpatial).pt)
	}
	return out
}
