// Package vector computes per-cell distance and bearing to the nearest
// feature in a point set, and rasterizes point/polygon features into a
// grid so they can feed the same edge-extraction and nearest-distance
// pipeline the original engine uses for distance-to-vector and
// direction-to-vector. Point lookups are backed by an R-tree
// (github.com/dhconnelly/rtreego) over github.com/paulmach/orb points so
// a large feature set stays sub-linear per cell.
package vector
