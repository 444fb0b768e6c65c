package contentcache

// formatted is the transform stage's result. nil means the stage failed.
type formatted[V any] struct {
	value V
}

// startFormat attaches one caller to the coalesced transform for the full
// cache key. It runs on the callback context as the caller's download
// completion, so concurrent requests for the same transform of the same
// resource share one execution even when they arrived mid-download.
func (c *Cache[V]) startFormat(locator string, t Transform[V], key string, orig *original[V], cn *canceler, onResult func(V, bool)) {
	reqID, _ := c.formats.Add(key,
		func(finish func(*formatted[V])) {
			finish(c.format(key, t, orig))
		},
		nil, // transform work is cooperative; an abandoned result is discarded
		func(f *formatted[V]) {
			if f != nil {
				c.mem.set(key, f.value)
			}
		},
		func(f *formatted[V]) {
			if !cn.finish() {
				return
			}
			if f == nil {
				var zero V
				onResult(zero, false)
				return
			}
			onResult(f.value, true)
		},
	)

	if !cn.set(func() { c.formats.Cancel(reqID) }) {
		c.formats.Cancel(reqID)
	}
}

// format materializes the formatted artifact for key: from disk if a
// concurrent fetch already persisted it, otherwise by transforming the
// original artifact and persisting the result. Returns nil on failure.
func (c *Cache[V]) format(key string, t Transform[V], orig *original[V]) *formatted[V] {
	if orig == nil {
		return nil
	}

	// Another key's fetch may have published this artifact since the
	// orchestrator's first disk check.
	if data, err := c.store.Read(key); err == nil {
		if v, err := c.codec.Decode(data); err == nil {
			return &formatted[V]{value: v}
		}
	}

	src := orig.content
	if !orig.fresh {
		data, err := c.store.Read(orig.name)
		if err != nil {
			c.log().Debug("original artifact unreadable", "name", orig.name, "error", err)
			return nil
		}
		v, err := c.codec.Decode(data)
		if err != nil {
			c.log().Debug("original artifact failed to decode", "name", orig.name, "error", err)
			return nil
		}
		src = v
	}

	out, ok := c.apply(src, t)
	if !ok {
		return nil
	}

	data, err := c.codec.Encode(out)
	if err != nil {
		c.log().Warn("formatted artifact failed to encode", "key", key, "error", err)
	} else if err := c.store.Write(key, data); err != nil {
		c.log().Warn("failed to persist formatted artifact", "key", key, "error", err)
	}
	return &formatted[V]{value: out}
}

// apply runs the transform descriptor against decoded content.
func (c *Cache[V]) apply(v V, t Transform[V]) (V, bool) {
	switch t.kind {
	case KindOriginal:
		return v, true
	case KindEdited:
		if t.edit == nil {
			var zero V
			return zero, false
		}
		return t.edit(v), true
	default:
		if c.transform == nil {
			c.log().Warn("no transform func configured", "suffix", t.suffix())
			var zero V
			return zero, false
		}
		return c.transform(v, t), true
	}
}
