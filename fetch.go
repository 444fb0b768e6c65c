package contentcache

import "sync"

// Mode reports how a fetch delivered, or will deliver, its result.
type Mode int

const (
	// ModeSync means the result came from the memory tier and onResult ran
	// before Fetch returned.
	ModeSync Mode = iota
	// ModeAsync means the result will be delivered later on the cache's
	// callback context.
	ModeAsync
)

// Receipt describes an in-flight or completed fetch.
type Receipt struct {
	// Mode reports whether the result was delivered synchronously.
	Mode Mode

	cancel *canceler
}

// Cancel detaches this caller from whatever resolution stage is currently
// outstanding. Other callers waiting on the same underlying work are
// unaffected; the work itself is cancelled only when its last caller
// detaches. Cancelling a synchronous or already-delivered fetch is a
// no-op.
func (r Receipt) Cancel() {
	if r.cancel != nil {
		r.cancel.fire()
	}
}

// canceler is a fetch's late-bound cancel handle. At Fetch time it is not
// yet known whether the download or the format stage will be outstanding
// when cancellation is requested, so each stage rebinds fn as it begins.
type canceler struct {
	mu        sync.Mutex
	fn        func()
	cancelled bool
	done      bool
}

// set rebinds the cancel action for the stage now outstanding. It reports
// false when the fetch was already cancelled or delivered, in which case
// the caller must not proceed to the next stage.
func (c *canceler) set(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled || c.done {
		return false
	}
	c.fn = fn
	return true
}

// fire runs the currently bound cancel action at most once.
func (c *canceler) fire() {
	c.mu.Lock()
	if c.cancelled || c.done {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	fn := c.fn
	c.fn = nil
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// finish marks the fetch delivered and reports whether delivery should
// proceed (false when the caller cancelled first).
func (c *canceler) finish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return false
	}
	c.done = true
	c.fn = nil
	return true
}

// Fetch resolves the content for locator under the given transform.
//
// A memory hit runs onResult synchronously and returns a ModeSync receipt.
// Otherwise resolution proceeds asynchronously — disk check, then a
// coalesced download keyed by locator, then a coalesced transform keyed by
// the full cache key — and onResult runs exactly once on the cache's
// callback context, receiving either the materialized content or ok=false
// on failure. If the receipt is cancelled before delivery, onResult does
// not run.
func (c *Cache[V]) Fetch(locator string, t Transform[V], onResult func(v V, ok bool)) Receipt {
	key := c.formattedName(locator, t)

	if v, ok := c.mem.get(key); ok {
		onResult(v, true)
		return Receipt{Mode: ModeSync}
	}

	cn := &canceler{}
	go c.resolve(locator, t, key, cn, onResult)
	return Receipt{Mode: ModeAsync, cancel: cn}
}

// resolve drives the disk → download → transform sequence for one caller.
func (c *Cache[V]) resolve(locator string, t Transform[V], key string, cn *canceler, onResult func(V, bool)) {
	// Disk check for the already-formatted artifact. Deliberately not
	// registered as cancellable work: a local read is cheap enough that a
	// late cancellation only wastes the read itself. A Cancel that lands
	// before the queued delivery still suppresses onResult, keeping the
	// rule that a cancelled caller is never delivered to.
	if data, err := c.store.Read(key); err == nil {
		v, err := c.codec.Decode(data)
		if err == nil {
			c.mem.set(key, v)
			c.queue.Async(func() {
				if cn.finish() {
					onResult(v, true)
				}
			})
			return
		}
		// A corrupt formatted artifact is a miss; fall through and rebuild.
		c.log().Warn("formatted artifact failed to decode", "key", key, "error", err)
	}

	c.startDownload(locator, t, key, cn, onResult)
}
