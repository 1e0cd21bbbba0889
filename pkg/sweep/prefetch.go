package sweep

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/geostream/rasterfield/pkg/raster"
)

// Prefetcher reads one block ahead of the sweep's current position while
// the current block is being relaxed, without disturbing the strictly
// sequential order spec §5 requires for the relaxation itself: blocks are
// still consumed one at a time, in order, and a read error surfaces at
// the point the block is consumed rather than from a background
// goroutine.
type Prefetcher struct {
	src    raster.Source
	blocks []raster.Block
	ncol   int
	next   int
	grp    *errgroup.Group
	ready  chan fetchResult
}

type fetchResult struct {
	block raster.Block
	data  []float64
	err   error
}

// NewPrefetcher starts reading plan.Blocks[0] immediately and returns a
// Prefetcher ready to serve them in order via Next.
func NewPrefetcher(ctx context.Context, src raster.Source, plan raster.BlockPlan, ncol int) *Prefetcher {
	grp, gctx := errgroup.WithContext(ctx)
	p := &Prefetcher{
		src:    src,
		blocks: plan.Blocks,
		ncol:   ncol,
		grp:    grp,
		ready:  make(chan fetchResult, 1),
	}
	if len(p.blocks) > 0 {
		p.launch(gctx, 0)
	}
	return p
}

func (p *Prefetcher) launch(ctx context.Context, idx int) {
	b := p.blocks[idx]
	p.grp.Go(func() error {
		data, err := p.src.ReadBlock(ctx, b.RowStart, b.NRows, 0, p.ncol)
		p.ready <- fetchResult{block: b, data: data, err: err}
		return nil
	})
}

// Next blocks until the next in-order block's data is available, starts
// prefetching the one after it, and returns the block descriptor and
// data. ok is false once every block has been delivered.
func (p *Prefetcher) Next(ctx context.Context) (raster.Block, []float64, bool, error) {
	if p.next >= len(p.blocks) {
		return raster.Block{}, nil, false, nil
	}
	r := <-p.ready
	p.next++
	if p.next < len(p.blocks) {
		p.launch(ctx, p.next)
	}
	if r.err != nil {
		return r.block, nil, true, &raster.ErrIoFailure{Op: "prefetch block", Err: r.err}
	}
	return r.block, r.data, true, nil
}

// Close waits for any in-flight prefetch goroutine to settle. Safe to
// call even if Next was never fully drained.
func (p *Prefetcher) Close() error {
	return p.grp.Wait()
}
