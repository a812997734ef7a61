package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedClientHitsAndMisses(t *testing.T) {
	inner := NewMockClient(8)
	cache, err := NewCachedClient(inner, t.TempDir(), "mock-model")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	first, err := cache.Embed(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, inner.Calls)

	// Same texts again: served from cache, inner not called.
	second, err := cache.Embed(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.Calls)
	assert.Equal(t, first, second)

	// Partial miss embeds only the new text.
	third, err := cache.Embed(ctx, []string{"alpha", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls)
	assert.Equal(t, first[0], third[0])
}

func TestCachedClientEmbedSingle(t *testing.T) {
	inner := NewMockClient(4)
	cache, err := NewCachedClient(inner, t.TempDir(), "mock-model")
	require.NoError(t, err)
	defer cache.Close()

	vec, err := cache.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestVectorCodecRoundtrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	out := decodeVector(encodeVector(in))
	assert.Equal(t, in, out)
}
