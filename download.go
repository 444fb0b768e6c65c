package contentcache

import "context"

// original is the download stage's result: either freshly fetched content,
// already decoded and known good, or the name of a previously persisted
// artifact that still needs a decode. nil means the download failed.
type original[V any] struct {
	fresh   bool
	content V      // set when fresh
	name    string // disk artifact name when previously persisted
}

// startDownload attaches one caller to the coalesced download for a
// locator. Downloads are keyed by locator name alone, so every transform
// of a resource shares a single network fetch.
func (c *Cache[V]) startDownload(locator string, t Transform[V], key string, cn *canceler, onResult func(V, bool)) {
	name := c.originalName(locator)

	ctx, cancelCtx := context.WithCancel(context.Background())
	reqID, created := c.downloads.Add(name,
		func(finish func(*original[V])) {
			finish(c.download(ctx, locator, name))
		},
		cancelCtx,
		nil,
		func(orig *original[V]) {
			c.startFormat(locator, t, key, orig, cn, onResult)
		},
	)
	if !created {
		// Joined an existing task; this caller's context is unused.
		cancelCtx()
	}

	if !cn.set(func() { c.downloads.Cancel(reqID) }) {
		c.downloads.Cancel(reqID)
	}
}

// download produces the original artifact for a locator: from disk when a
// prior fetch persisted it, otherwise over the network. Returns nil on
// failure.
func (c *Cache[V]) download(ctx context.Context, locator, name string) *original[V] {
	if c.store.Exists(name) {
		return &original[V]{name: name}
	}

	data, err := c.fetcher(ctx, locator)
	if err != nil {
		c.log().Debug("download failed", "locator", locator, "error", err)
		return nil
	}
	if len(data) == 0 {
		c.log().Debug("download returned no data", "locator", locator)
		return nil
	}

	v, err := c.codec.Decode(data)
	if err != nil {
		c.log().Debug("downloaded data failed to decode", "locator", locator, "error", err)
		return nil
	}

	// Persisting is best-effort: the decoded content is still valid for
	// this call even if it can't be saved for the next one.
	if err := c.store.Write(name, data); err != nil {
		c.log().Warn("failed to persist original artifact", "name", name, "error", err)
	}
	return &original[V]{fresh: true, content: v}
}
