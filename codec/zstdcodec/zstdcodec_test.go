package zstdcodec_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaredsinclair/contentcache"
	"github.com/jaredsinclair/contentcache/codec/zstdcodec"
)

// Codec must satisfy the cache's codec contract for byte content.
var _ contentcache.Codec[[]byte] = (*zstdcodec.Codec)(nil)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := zstdcodec.New()
	require.NoError(t, err)

	content := bytes.Repeat([]byte("compressible content "), 100)
	encoded, err := c.Encode(content)
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(content))

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	c, err := zstdcodec.New()
	require.NoError(t, err)

	_, err = c.Decode([]byte("not zstd"))
	assert.Error(t, err)
}

func TestRoundTripEmpty(t *testing.T) {
	t.Parallel()

	c, err := zstdcodec.New()
	require.NoError(t, err)

	encoded, err := c.Encode(nil)
	require.NoError(t, err)
	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
