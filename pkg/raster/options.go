package raster

// BudgetOptions controls how PlanBlocks sizes row-bands for an operator
// invocation: an options struct with a DefaultBudgetOptions constructor.
type BudgetOptions struct {
	// MemoryBytes is the working-memory budget for one block. If 0,
	// DefaultBudgetOptions' value is used.
	MemoryBytes int64

	// MinRows floors every block's height except for a final undersized
	// grid (nrow < MinRows). Operators set this per their own halo
	// requirements: 2 for edges, 3 for terrain, 1 otherwise.
	MinRows int

	// Progress, if non-nil, is invoked as work completes with a 0-based
	// index and a total. edges.Extract, terrain.Compute and planar
	// sweep.GridDistance pass each block's position within the current
	// pass and the plan's block count; GridDistance restarts the index at
	// 0 for its backward pass. sweep.CostDistance passes the iteration
	// index and MaxIter. Geographic GridDistance does not call it.
	Progress func(blockIndex, blockCount int)

	// Cancel, if non-nil, is polled between blocks; when it returns true
	// the operator stops scheduling further blocks and returns whatever
	// output it has already committed.
	Cancel func() bool
}

// DefaultBudgetOptions returns a 64MiB block budget with MinRows=1 and no
// progress or cancellation hooks.
func DefaultBudgetOptions() BudgetOptions {
	return BudgetOptions{
		MemoryBytes: 64 << 20,
		MinRows:     1,
	}
}

func (o BudgetOptions) cancelled() bool {
	return o.Cancel != nil && o.Cancel()
}

func (o BudgetOptions) reportProgress(i, n int) {
	if o.Progress != nil {
		o.Progress(i, n)
	}
}
