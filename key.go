package contentcache

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Namer derives a stable, filename-safe name for a resource locator. All
// of a locator's artifacts (the original plus each formatted variant)
// share the name as a prefix.
type Namer func(locator string) string

// DigestName is the default Namer: the hex-encoded SHA-256 digest of the
// locator string.
func DigestName(locator string) string {
	return digest.FromString(locator).Encoded()
}

// Kind identifies a transform variant.
type Kind int

const (
	// KindOriginal leaves fetched content unmodified.
	KindOriginal Kind = iota
	// KindResized scales content to a target size.
	KindResized
	// KindEdited applies a caller-supplied edit function.
	KindEdited
)

// Transform describes how fetched content is materialized before caching.
//
// Two transforms are equal when their descriptors are equal: kind plus
// numeric parameters for resized transforms, the edit id alone for edited
// transforms. Numeric parameters are truncated to whole units at
// construction, so two transforms differing only below one unit alias to
// the same cache entry; the coarsening keeps equality, memory keying and
// disk naming consistent with each other.
type Transform[V any] struct {
	kind          Kind
	width, height int
	scale         int
	editID        string
	edit          func(V) V
}

// Original leaves fetched content unmodified.
func Original[V any]() Transform[V] {
	return Transform[V]{kind: KindOriginal}
}

// Resized scales content to width x height points at the given display
// scale. Parameters are truncated to whole units; scale values below 1
// are clamped to 1.
func Resized[V any](width, height, scale float64) Transform[V] {
	if scale < 1 {
		scale = 1
	}
	return Transform[V]{
		kind:   KindResized,
		width:  int(width),
		height: int(height),
		scale:  int(scale),
	}
}

// Edited applies fn to the fetched content. Identity is the id alone: two
// Edited transforms sharing an id are the same cache entry even if their
// functions differ, so callers must keep ids unique per distinct behavior.
func Edited[V any](id string, fn func(V) V) Transform[V] {
	return Transform[V]{kind: KindEdited, editID: id, edit: fn}
}

// Kind returns the transform variant.
func (t Transform[V]) Kind() Kind { return t.kind }

// Size returns the target width and height of a resized transform.
func (t Transform[V]) Size() (width, height int) { return t.width, t.height }

// Scale returns the display scale of a resized transform.
func (t Transform[V]) Scale() int { return t.scale }

// EditID returns the identity of an edited transform.
func (t Transform[V]) EditID() string { return t.editID }

// Equal reports whether two transforms describe the same cache entry.
func (t Transform[V]) Equal(other Transform[V]) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindResized:
		return t.width == other.width && t.height == other.height && t.scale == other.scale
	case KindEdited:
		return t.editID == other.editID
	default:
		return true
	}
}

// suffix returns the filename-safe discriminator appended to the locator
// name for this transform's formatted artifact.
func (t Transform[V]) suffix() string {
	switch t.kind {
	case KindResized:
		return fmt.Sprintf("r%dx%d@%dx", t.width, t.height, t.scale)
	case KindEdited:
		return "e" + sanitizeName(t.editID)
	default:
		return "original"
	}
}

// Key is the composite cache identity: a resource locator plus a transform.
type Key[V any] struct {
	Locator   string
	Transform Transform[V]
}

// Equal reports whether two keys identify the same cache entry.
func (k Key[V]) Equal(other Key[V]) bool {
	return k.Locator == other.Locator && k.Transform.Equal(other.Transform)
}

func sanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
