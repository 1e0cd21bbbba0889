// Package sweep implements the stream-blocked, sweep-based raster
// operators that are the hard part of this engine: Euclidean grid
// distance and friction-weighted cost distance, both as two-direction
// min-plus relaxations over row-bands that carry boundary context from
// block to block via an "above" vector, with special-cased handling for
// geographic wrap-around at the antimeridian and propagation across the
// poles.
package sweep
