package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs two lookups concurrently. When one fails the other's context
// is canceled and the first error is returned unwrapped, with zero results,
// so callers can still match domain errors such as *domain.NotFoundError.
func Parallel2[A, B any](
	ctx context.Context,
	fetchA func(context.Context) (A, error),
	fetchB func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = fetchA(gctx)
		return err
	})
	g.Go(func() (err error) {
		b, err = fetchB(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zeroA A
			zeroB B
		)

		return zeroA, zeroB, err
	}

	return a, b, nil
}
