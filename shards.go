package collide

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// StepShards steps disjoint worlds concurrently, one goroutine per world.
// Worlds must not share objects. It returns the context error if ctx is done
// before every world has been stepped; worlds not yet started are skipped.
func StepShards(ctx context.Context, worlds ...*World) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range worlds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.Step()
			return nil
		})
	}
	return g.Wait()
}
