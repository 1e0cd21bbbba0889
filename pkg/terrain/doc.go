// Package terrain computes 3x3-focal-kernel surface derivatives from an
// elevation raster: slope and aspect (Horn's 8-neighbor or Fleming &
// Hoffer's 4-neighbor weighting, geographic or planar), steepest-descent
// flow direction with random tie-breaking, and the three roughness
// measures (TPI, TRI, roughness). Every variable leaves a NaN border: a
// cell whose kernel would read a missing neighbor (every cell on the
// raster's edge among them) is never computed, rather than approximated
// with a partial kernel.
package terrain
