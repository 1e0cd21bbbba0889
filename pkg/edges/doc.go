// Package edges extracts boundary cells of patches in a raster: inner
// edges (valid cells adjacent to a missing neighbor), outer edges
// (missing cells adjacent to a valid neighbor), or class edges (cells
// whose value differs from a neighbor's, treating NaN as its own class).
// Every block is read with a one-cell halo on every side, replicating the
// raster's own edge row/column where no neighbor block exists, so the
// result is identical to running over the whole raster at once.
package edges
