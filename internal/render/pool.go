package render

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs batches of requests through one coordinator with bounded
// parallelism. Requests never fail the batch: every failure mode is a
// terminal Result, so Run only returns an error when the context is
// cancelled before all requests finish.
type Pool struct {
	coordinator *Coordinator
	workers     int
}

func NewPool(coordinator *Coordinator, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{coordinator: coordinator, workers: workers}
}

// Run processes every request and returns results in request order.
func (p *Pool) Run(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.coordinator.Process(ctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
