package sweep

import "github.com/geostream/rasterfield/pkg/raster"

// cancelled and reportProgress read raster.BudgetOptions' exported Cancel
// and Progress hooks directly, since BudgetOptions' own helper methods of
// the same purpose are unexported to its own package.
func cancelled(opts raster.BudgetOptions) bool {
	return opts.Cancel != nil && opts.Cancel()
}

func reportProgress(opts raster.BudgetOptions, i, n int) {
	if opts.Progress != nil {
		opts.Progress(i, n)
	}
}
