package contentcache

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jaredsinclair/contentcache/disk"
	"github.com/jaredsinclair/contentcache/flight"
	"github.com/jaredsinclair/contentcache/internal/serial"
)

// DefaultByteLimit is the disk budget applied when no WithByteLimit option
// is given.
const DefaultByteLimit int64 = 100 << 20 // 100 MB

// TransformFunc applies a transform descriptor to content. One is supplied
// per deployment (e.g. an image scaler) and must be pure. It is consulted
// for resized transforms; original transforms are the identity and edited
// transforms carry their own function.
type TransformFunc[V any] func(v V, t Transform[V]) V

// Cache is a two-tier (memory + disk) content cache. It fetches remote
// resources, applies transforms, and serves the results while guaranteeing
// that identical concurrent requests share exactly one in-flight download
// and one in-flight transform.
//
// Lookups run memory, then disk, then network. Downloads coalesce per
// locator so different transforms of one resource share a single fetch;
// transforms coalesce per full key.
type Cache[V any] struct {
	mem   *memoryCache[V]
	store *disk.Store

	downloads *flight.Registry[string, *original[V]]
	formats   *flight.Registry[string, *formatted[V]]

	queue *serial.Queue
	trims singleflight.Group

	fetcher   Fetcher
	codec     Codec[V]
	transform TransformFunc[V]
	namer     Namer
	logger    *slog.Logger

	byteLimit       atomic.Int64
	clearMemoryOnBG bool
}

// New creates a Cache storing disk artifacts under dir. fetcher retrieves
// raw bytes for a locator; codec converts between bytes and V.
func New[V any](dir string, fetcher Fetcher, codec Codec[V], opts ...Option[V]) (*Cache[V], error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is nil")
	}
	if codec == nil {
		return nil, errors.New("codec is nil")
	}
	store, err := disk.New(dir)
	if err != nil {
		return nil, err
	}

	c := &Cache[V]{
		mem:     newMemoryCache[V](),
		store:   store,
		queue:   serial.NewQueue(),
		fetcher: fetcher,
		codec:   codec,
		namer:   DigestName,
	}
	c.byteLimit.Store(DefaultByteLimit)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			c.queue.Close()
			return nil, err
		}
	}

	c.downloads = flight.New[string, *original[V]](c.queue.Async)
	c.formats = flight.New[string, *formatted[V]](c.queue.Async)
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Cache[V]) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Close drains pending callback deliveries and releases the callback
// goroutine. In-flight work that finishes after Close is discarded.
func (c *Cache[V]) Close() {
	c.queue.Close()
}

// Seed inserts v into the memory tier under a caller-chosen key, bypassing
// network and disk. Use EntryKey to seed entries that later Fetch calls
// will hit.
func (c *Cache[V]) Seed(key string, v V) {
	c.mem.set(key, v)
}

// FromMemory returns the memory-tier entry for key, if present.
func (c *Cache[V]) FromMemory(key string) (V, bool) {
	return c.mem.get(key)
}

// EntryKey returns the memory-tier key (and formatted-artifact file name)
// for a locator and transform.
func (c *Cache[V]) EntryKey(locator string, t Transform[V]) string {
	return c.formattedName(locator, t)
}

// RemoveAllFromMemory evicts every memory-tier entry.
func (c *Cache[V]) RemoveAllFromMemory() {
	c.mem.removeAll()
}

// RemoveAllFromDisk deletes every disk artifact, leaving an empty
// directory. Safe to call repeatedly.
func (c *Cache[V]) RemoveAllFromDisk() error {
	return c.store.RemoveAll()
}

// ByteLimit returns the disk tier's current byte budget.
func (c *Cache[V]) ByteLimit() int64 {
	return c.byteLimit.Load()
}

// SetByteLimit changes the disk budget and immediately trims to fit it.
func (c *Cache[V]) SetByteLimit(n int64) {
	c.byteLimit.Store(n)
	c.TrimDisk()
}

// DiskSize returns the disk tier's total size in bytes.
func (c *Cache[V]) DiskSize() (int64, error) {
	return c.store.Size()
}

// TrimDisk evicts oldest-modified artifacts until the disk tier fits the
// byte limit. Concurrent triggers coalesce into one walk. Best-effort:
// failures are logged and swallowed.
func (c *Cache[V]) TrimDisk() {
	_, _, _ = c.trims.Do("trim", func() (any, error) {
		freed, err := c.store.Trim(c.byteLimit.Load())
		if err != nil {
			c.log().Warn("disk trim failed", "dir", c.store.Dir(), "error", err)
			return nil, nil
		}
		if freed > 0 {
			c.log().Debug("disk trim", "dir", c.store.Dir(), "freed", freed)
		}
		return nil, nil
	})
}

// OnMemoryPressure handles the host application's memory-pressure signal
// by evicting the memory tier. Fire-and-forget, idempotent.
func (c *Cache[V]) OnMemoryPressure() {
	c.mem.removeAll()
}

// OnEnterBackground handles the host application's backgrounding signal:
// it trims the disk tier and, when WithClearMemoryOnBackground is set,
// also evicts the memory tier. Fire-and-forget, idempotent.
func (c *Cache[V]) OnEnterBackground() {
	if c.clearMemoryOnBG {
		c.mem.removeAll()
	}
	c.TrimDisk()
}

// originalName is the disk name of a locator's unmodified artifact.
func (c *Cache[V]) originalName(locator string) string {
	return c.namer(locator)
}

// formattedName is the disk name of a locator's formatted artifact: the
// locator name plus a transform-derived suffix.
func (c *Cache[V]) formattedName(locator string, t Transform[V]) string {
	return c.namer(locator) + "-" + t.suffix()
}
