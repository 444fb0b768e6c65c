package contentcache

// Codec converts between a materialized content value and the raw bytes
// persisted on disk. Codecs are supplied per deployment (an image decoder,
// a zstd wrapper, etc.) and must be safe for concurrent use.
type Codec[V any] interface {
	// Decode materializes content from raw artifact bytes.
	Decode(data []byte) (V, error)

	// Encode serializes content for persistence.
	Encode(v V) ([]byte, error)
}

// BytesCodec is the identity codec for raw []byte content.
type BytesCodec struct{}

// Decode returns data unchanged.
func (BytesCodec) Decode(data []byte) ([]byte, error) { return data, nil }

// Encode returns v unchanged.
func (BytesCodec) Encode(v []byte) ([]byte, error) { return v, nil }
