// Package contentcache provides a two-tier (memory + disk) content cache
// that fetches remote resources, applies deterministic transforms, and
// serves the results to any number of concurrent callers while
// guaranteeing that identical concurrent requests share exactly one
// in-flight download and exactly one in-flight transform.
//
// A [Cache] is generic over the materialized content type. Callers supply
// a [Fetcher] (how bytes are retrieved), a [Codec] (how bytes become
// content and back), and optionally a [TransformFunc] for resized
// transforms.
//
// # Quick Start
//
//	c, err := contentcache.New[[]byte]("/var/cache/images",
//	    contentcache.NewHTTPFetcher(nil),
//	    contentcache.BytesCodec{},
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	receipt := c.Fetch("https://example.com/img", contentcache.Original[[]byte](),
//	    func(data []byte, ok bool) {
//	        // runs once on the cache's callback goroutine
//	    })
//	_ = receipt // receipt.Cancel() detaches this caller
//
// # Lookup order
//
// Fetch consults the memory tier first (synchronous hit), then the disk
// tier, then downloads. Downloads coalesce per locator so that N different
// transforms of one resource share one network fetch; transforms coalesce
// per (locator, transform) key. Cancelling one caller never affects other
// callers waiting on the same work.
//
// # Disk budget
//
// Disk artifacts live in one flat directory and are trimmed
// oldest-modified-first to a configurable byte limit, either explicitly
// via [Cache.SetByteLimit] or opportunistically on the host application's
// backgrounding signal.
package contentcache
