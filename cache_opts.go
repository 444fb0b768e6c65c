package contentcache

import (
	"errors"
	"log/slog"
)

// Option configures a Cache.
type Option[V any] func(*Cache[V]) error

// WithLogger sets the logger used for best-effort failure reporting.
// When unset, logs are discarded.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(c *Cache[V]) error {
		c.logger = logger
		return nil
	}
}

// WithByteLimit sets the disk tier's byte budget. Defaults to
// DefaultByteLimit.
func WithByteLimit[V any](n int64) Option[V] {
	return func(c *Cache[V]) error {
		if n < 0 {
			return errors.New("byte limit must be >= 0")
		}
		c.byteLimit.Store(n)
		return nil
	}
}

// WithNamer overrides how locators are turned into artifact file names.
// The default is DigestName. Names must be stable and filename-safe.
func WithNamer[V any](namer Namer) Option[V] {
	return func(c *Cache[V]) error {
		if namer == nil {
			return errors.New("namer is nil")
		}
		c.namer = namer
		return nil
	}
}

// WithTransformFunc supplies the deployment's descriptor-driven transform,
// consulted for resized transforms. Fetches for resized transforms fail
// when no transform func is configured.
func WithTransformFunc[V any](fn TransformFunc[V]) Option[V] {
	return func(c *Cache[V]) error {
		c.transform = fn
		return nil
	}
}

// WithClearMemoryOnBackground controls whether OnEnterBackground also
// evicts the memory tier. Off by default.
func WithClearMemoryOnBackground[V any](clear bool) Option[V] {
	return func(c *Cache[V]) error {
		c.clearMemoryOnBG = clear
		return nil
	}
}
