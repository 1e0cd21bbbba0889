// Package raster describes the geometry of a gridded spatial dataset and
// the block-streaming machinery the distance and terrain operators build
// on: an immutable Grid, a row-band BlockPlan, and the Source/Sink
// interfaces external readers and writers satisfy.
//
// Apart from InMemorySource, nothing in this package materializes a whole
// raster in memory. Grid is a
// value describing shape and reference system; BlockPlan partitions
// [0, NRow) into row-bands sized to a caller-supplied memory budget; Source
// and Sink are the narrow interfaces the sweep and terrain operators use to
// pull in and push out one row-band at a time.
package raster
