package sweep

import "math"

// broomDistPlanar relaxes one block's distance buffer in place for a
// planar grid: dist must already hold 0 at source cells and +Inf
// elsewhere; v holds the original (possibly NaN) input values so a cell's
// NaN-ness can be re-tested without re-reading dist. above is the last row
// of the previous block's finished dist buffer (rook+bishop neighbor
// context across the block seam) and is overwritten in place with this
// block's last row on return, ready to seed the next block.
func broomDistPlanar(dist, v, above []float64, nr, nc int, dx, dy, dxy float64) {
	// top-to-bottom, left-to-right
	if math.IsNaN(v[0]) {
		dist[0] = above[0] + dy
	}
	for i := 1; i < nc; i++ {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(above[i]+dy, above[i-1]+dxy), dist[i-1]+dx)
		}
	}
	for r := 1; r < nr; r++ {
		start := r * nc
		if math.IsNaN(v[start]) {
			dist[start] = dist[start-nc] + dy
		}
		end := start + nc
		for i := start + 1; i < end; i++ {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(math.Min(dist[i-1]+dx, dist[i-nc]+dy), dist[i-nc-1]+dxy)
			}
		}
	}

	// bottom-to-top is folded into the same pass by going right-to-left
	// within rows top-to-bottom again, exactly as the original.
	if math.IsNaN(v[nc-1]) {
		dist[nc-1] = math.Min(dist[nc-1], above[nc-1]+dy)
	}
	for i := nc - 2; i >= 0; i-- {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(math.Min(dist[i+1]+dx, above[i+1]+dxy), above[i]+dy), dist[i])
		}
	}
	for r := 1; r < nr; r++ {
		start := (r+1)*nc - 1
		if math.IsNaN(v[start]) {
			dist[start] = math.Min(dist[start], dist[start-nc]+dy)
		}
		for i := start - 1; i >= r*nc; i-- {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(math.Min(math.Min(dist[i], dist[i+1]+dx), dist[i-nc]+dy), dist[i-nc+1]+dxy)
			}
		}
	}

	copy(above, dist[(nr-1)*nc:])
}

// broomDistGeo is broomDistPlanar's geographic counterpart: step weights
// vary by row (latitude) and the block may sit under a pole, in which case
// every column in the polar row is relaxed against the row's own minimum
// plus one meridional step.
func broomDistGeo(dist, v, above []float64, nr, nc int, lat, xres, yres float64, latdir int, npole, spole bool) {
	dx, dy, dxy := stepAtGeo(lat, 0, xres, yres, latdir, false)
	if math.IsNaN(v[0]) {
		dist[0] = math.Min(above[0]+dy, dist[0])
	}
	for i := 1; i < nc; i++ {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(math.Min(above[i]+dy, above[i-1]+dxy), dist[i-1]+dx), dist[i])
		}
	}
	if npole {
		relaxAcrossPole(dist[:nc], dy)
	}

	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, false)
		start := r * nc
		if math.IsNaN(v[start]) {
			dist[start] = math.Min(dist[start], dist[start-nc]+dy)
		}
		end := start + nc
		for i := start + 1; i < end; i++ {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(dist[i], math.Min(math.Min(dist[i-1]+dx, dist[i-nc]+dy), dist[i-nc-1]+dxy))
			}
		}
	}
	if spole {
		relaxAcrossPole(dist[(nr-1)*nc:], dy)
	}

	dx, dy, dxy = stepAtGeo(lat, 0, xres, yres, latdir, false)
	if math.IsNaN(v[nc-1]) {
		dist[nc-1] = math.Min(dist[nc-1], above[nc-1]+dy)
	}
	for i := nc - 2; i >= 0; i-- {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(math.Min(dist[i+1]+dx, above[i+1]+dxy), above[i]+dy), dist[i])
		}
	}
	if npole {
		relaxAcrossPole(dist[:nc], dy)
	}
	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, false)
		start := (r+1)*nc - 1
		if math.IsNaN(v[start]) {
			dist[start] = math.Min(dist[start], dist[start-nc]+dy)
		}
		for i := start - 1; i >= r*nc; i-- {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(math.Min(math.Min(dist[i], dist[i+1]+dx), dist[i-nc]+dy), dist[i-nc+1]+dxy)
			}
		}
	}
	if spole {
		relaxAcrossPole(dist[(nr-1)*nc:], dy)
	}

	copy(above, dist[(nr-1)*nc:])
}

// broomDistGeoGlobal is broomDistGeo plus antimeridian wrap: column 0's
// left neighbor (and its diagonals) is column nc-1 of the same/adjacent
// row, and vice versa.
func broomDistGeoGlobal(dist, v, above []float64, nr, nc int, lat, xres, yres float64, latdir int, npole, spole bool) {
	stopnc := nc - 1
	dx, dy, dxy := stepAtGeo(lat, 0, xres, yres, latdir, false)

	if math.IsNaN(v[0]) {
		dist[0] = math.Min(math.Min(math.Min(above[0]+dy, above[stopnc]+dxy), dist[stopnc]+dx), dist[0])
	}
	for i := 1; i < nc; i++ {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(math.Min(above[i]+dy, above[i-1]+dxy), dist[i-1]+dx), dist[i])
		}
	}
	if npole {
		relaxAcrossPole(dist[:nc], dy)
	}

	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, false)
		start := r * nc
		if math.IsNaN(v[start]) {
			dist[start] = math.Min(math.Min(math.Min(dist[start-nc]+dy, dist[start-1]+dxy), dist[start+stopnc]+dx), dist[start])
		}
		end := start + nc
		for i := start + 1; i < end; i++ {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(math.Min(math.Min(dist[i-1]+dx, dist[i-nc]+dy), dist[i-nc-1]+dxy), dist[i])
			}
		}
	}
	if spole {
		relaxAcrossPole(dist[(nr-1)*nc:], dy)
	}

	dx, dy, dxy = stepAtGeo(lat, 0, xres, yres, latdir, false)
	if math.IsNaN(v[stopnc]) {
		dist[stopnc] = math.Min(math.Min(math.Min(dist[stopnc], above[stopnc]+dy), above[0]+dxy), dist[0]+dx)
	}
	for i := nc - 2; i >= 0; i-- {
		if math.IsNaN(v[i]) {
			dist[i] = math.Min(math.Min(math.Min(dist[i+1]+dx, above[i+1]+dxy), above[i]+dy), dist[i])
		}
	}
	if npole {
		relaxAcrossPole(dist[:nc], dy)
	}
	for r := 1; r < nr; r++ {
		dx, dy, dxy = stepAtGeo(lat, r, xres, yres, latdir, false)
		start := (r+1)*nc - 1
		if math.IsNaN(v[start]) {
			dist[start] = math.Min(math.Min(math.Min(dist[start], dist[start-nc]+dy), dist[start-nc-stopnc]+dxy), dist[start-stopnc]+dx)
		}
		end := r * nc
		for i := start - 1; i >= end; i-- {
			if math.IsNaN(v[i]) {
				dist[i] = math.Min(math.Min(math.Min(dist[i], dist[i+1]+dx), dist[i-nc]+dy), dist[i-nc+1]+dxy)
			}
		}
	}
	if spole {
		relaxAcrossPole(dist[(nr-1)*nc:], dy)
	}

	copy(above, dist[(nr-1)*nc:])
}

// relaxAcrossPole implements the "propagate across the pole" rule: every
// cell on the polar row can also be reached from any other cell on that
// same row via one meridional step over the pole, since at a pole every
// column is the same point.
func relaxAcrossPole(row []float64, dy float64) {
	minp := row[0]
	for _, v := range row[1:] {
		if v < minp {
			minp = v
		}
	}
	minp += dy
	for i := range row {
		if minp < row[i] {
			row[i] = minp
		}
	}
}
