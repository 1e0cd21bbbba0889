// Package geodesy implements the WGS-84 ellipsoidal geodesic functions the
// sweep and vector packages need: point-to-point distance and direction,
// the direct geodesic problem, polygon area (on the authalic sphere), and plain planar
// Euclidean distance. Every function here is pure; nothing holds state.
package geodesy
