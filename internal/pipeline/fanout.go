package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs fn once per item, concurrently, bounded by limit (0 means
// unbounded). Each task's error is captured against its own index rather
// than returned from the group, so one failing task never cancels its
// siblings — isolated per-chapter failure, per the pipeline's concurrency
// contract. Cancelling ctx, by contrast, cancels every outstanding task and
// is reflected by a non-nil error for every index, including tasks that
// finished successfully before the cancellation.
func fanOut(ctx context.Context, n int, limit int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = fn(gctx, i)
			return nil
		})
	}

	// g.Wait() only ever returns nil here: task errors are captured into
	// errs, never returned from the goroutine, precisely so a sibling
	// failure cannot trip errgroup's cancel-all-on-first-error behavior.
	_ = g.Wait()

	// A context cancellation (not an individual task error) is the one
	// case that fails every task: any index without its own error gets
	// ctx.Err().
	if ctx.Err() != nil {
		for i := range errs {
			if errs[i] == nil {
				errs[i] = ctx.Err()
			}
		}
	}

	return errs
}
