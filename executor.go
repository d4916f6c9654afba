package katana

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Executor runs n independent tasks. Task i must only touch state owned by
// index i.
type Executor interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

// Sequential runs tasks in index order on the calling goroutine.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := range n {
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Concurrent runs tasks on at most Workers goroutines. Workers <= 0 means
// GOMAXPROCS. The first failing task cancels the context seen by the rest.
type Concurrent struct {
	Workers int
}

func (c Concurrent) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	return g.Wait()
}
