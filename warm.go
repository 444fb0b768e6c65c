package contentcache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Warm prefetches the given locators under one transform, populating the
// disk and memory tiers. It returns once every locator has resolved
// (successfully or not) or ctx is cancelled, in which case outstanding
// requests are detached. A failed resolution is not an error; warming is
// opportunistic.
func (c *Cache[V]) Warm(ctx context.Context, locators []string, t Transform[V]) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, locator := range locators {
		locator := locator
		g.Go(func() error {
			done := make(chan struct{})
			receipt := c.Fetch(locator, t, func(V, bool) { close(done) })
			if receipt.Mode == ModeSync {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				receipt.Cancel()
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}
