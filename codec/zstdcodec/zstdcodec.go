// Package zstdcodec provides a byte-content codec that stores disk
// artifacts zstd-compressed. It plugs into a contentcache.Cache[[]byte]
// wherever the identity BytesCodec would otherwise be used.
package zstdcodec

import "github.com/klauspost/compress/zstd"

// Codec compresses encoded artifacts with zstd and decompresses them on
// decode. Safe for concurrent use.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Option configures a Codec.
type Option func(*options)

type options struct {
	level zstd.EncoderLevel
}

// WithLevel sets the compression level. Defaults to zstd.SpeedDefault.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// New creates a Codec.
func New(opts ...Option) (*Codec, error) {
	o := options{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&o)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(o.level))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Encode compresses v for persistence.
func (c *Codec) Encode(v []byte) ([]byte, error) {
	return c.enc.EncodeAll(v, nil), nil
}

// Decode decompresses stored artifact data.
func (c *Codec) Decode(data []byte) ([]byte, error) {
	return c.dec.DecodeAll(data, nil)
}
