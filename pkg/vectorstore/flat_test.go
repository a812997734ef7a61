package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/types"
)

func chunkWithVec(id string, vec []float32) *types.Chunk {
	return &types.Chunk{ID: id, Content: "content " + id, Embedding: vec}
}

func TestFlatStoreEmptySearch(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)

	results, err := store.Search(context.Background(), []float32{1, 0}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFlatStoreL2Ordering(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []*types.Chunk{
		chunkWithVec("far", []float32{10, 10}),
		chunkWithVec("near", []float32{1, 1}),
		chunkWithVec("exact", []float32{0, 0}),
	}))

	results, err := store.Search(ctx, []float32{0, 0}, &types.SearchConfig{TopK: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Chunk.ID)
	assert.Equal(t, "near", results[1].Chunk.ID)
	assert.Equal(t, "far", results[2].Chunk.ID)

	// Exact match has distance 0, so similarity 1/(1+0) = 1.
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestFlatStoreInnerProduct(t *testing.T) {
	store, err := NewFlatStore(MetricIP)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []*types.Chunk{
		chunkWithVec("aligned", []float32{1, 0}),
		chunkWithVec("orthogonal", []float32{0, 1}),
	}))

	results, err := store.Search(ctx, []float32{2, 0}, &types.SearchConfig{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "aligned", results[0].Chunk.ID)
	assert.InDelta(t, 2.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[1].Score, 1e-9)
}

func TestFlatStoreTopKClamped(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []*types.Chunk{
		chunkWithVec("a", []float32{1, 0}),
		chunkWithVec("b", []float32{0, 1}),
	}))

	results, err := store.Search(ctx, []float32{1, 0}, &types.SearchConfig{TopK: 100})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFlatStoreDimensionChecks(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []*types.Chunk{chunkWithVec("a", []float32{1, 0, 0})}))

	err = store.Insert(ctx, []*types.Chunk{chunkWithVec("b", []float32{1, 0})})
	assert.ErrorIs(t, err, ErrDimMismatch)

	_, err = store.Search(ctx, []float32{1}, nil)
	assert.ErrorIs(t, err, ErrDimMismatch)
}

func TestFlatStoreMissingEmbedding(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)

	err = store.Insert(context.Background(), []*types.Chunk{{ID: "x", Content: "no vector"}})
	assert.ErrorIs(t, err, ErrMissingEmbedding)
}

func TestFlatStoreMetadataFilter(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)
	ctx := context.Background()

	a := chunkWithVec("a", []float32{1, 0})
	a.Metadata = map[string]interface{}{"lang": "zh"}
	b := chunkWithVec("b", []float32{1, 0})
	b.Metadata = map[string]interface{}{"lang": "en"}
	require.NoError(t, store.Insert(ctx, []*types.Chunk{a, b}))

	results, err := store.Search(ctx, []float32{1, 0}, &types.SearchConfig{
		TopK:    10,
		Filters: map[string]interface{}{"lang": "zh"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func TestFlatStoreMinScore(t *testing.T) {
	store, err := NewFlatStore(MetricL2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, []*types.Chunk{
		chunkWithVec("close", []float32{0, 0}),
		chunkWithVec("distant", []float32{100, 100}),
	}))

	results, err := store.Search(ctx, []float32{0, 0}, &types.SearchConfig{TopK: 10, MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Chunk.ID)
}

func TestNewFlatStoreUnknownMetric(t *testing.T) {
	_, err := NewFlatStore(Metric("cosine"))
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
