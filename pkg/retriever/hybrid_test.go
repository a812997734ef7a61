package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

func resultList(ids ...string) []*types.SearchResult {
	out := make([]*types.SearchResult, len(ids))
	for i, id := range ids {
		out[i] = &types.SearchResult{Chunk: &types.Chunk{ID: id, Content: "content " + id}, Score: float64(len(ids) - i)}
	}
	return out
}

func TestFuseRRFScores(t *testing.T) {
	listA := resultList("x", "y")
	listB := resultList("y", "z")

	fused := FuseRRF(60, listA, listB)
	require.Len(t, fused, 3)

	// y appears at rank 1 in A and rank 0 in B: 1/62 + 1/61.
	assert.Equal(t, "y", fused[0].Chunk.ID)
	assert.InDelta(t, 1.0/62+1.0/61, fused[0].Score, 1e-12)

	// x and z each appear once; x at rank 0 beats z at rank 0 only by order,
	// scores are equal, so insertion order breaks the tie.
	assert.InDelta(t, 1.0/61, fused[1].Score, 1e-12)
	assert.Equal(t, "x", fused[1].Chunk.ID)
	assert.Equal(t, "z", fused[2].Chunk.ID)
}

func TestFuseRRFDefaultK(t *testing.T) {
	fused := FuseRRF(0, resultList("a"))
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-12)
}

func TestHybridRetriever(t *testing.T) {
	ctx := context.Background()

	// Sparse side.
	bm25 := NewBM25Retriever(0, 0)
	chunks := []*types.Chunk{
		textChunk("doc-rag", "retrieval augmented generation improves answers"),
		textChunk("doc-vec", "vector databases store embeddings for search"),
		textChunk("doc-cook", "the recipe calls for two eggs and flour"),
	}
	bm25.Index(chunks)

	// Dense side over the same chunks.
	emb := embedder.NewMockClient(16)
	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)
	for _, c := range chunks {
		vec, err := emb.EmbedSingle(ctx, c.Content)
		require.NoError(t, err)
		c.Embedding = vec
	}
	require.NoError(t, store.Insert(ctx, chunks))
	dense := NewDenseRetriever(emb, store)

	hybrid := NewHybridRetriever(60, bm25, dense)
	results, err := hybrid.Retrieve(ctx, "retrieval augmented generation", &types.SearchConfig{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc-rag", results[0].Chunk.ID)
	assert.Equal(t, "hybrid", results[0].Retriever)
}

func TestDenseRetriever(t *testing.T) {
	ctx := context.Background()
	emb := embedder.NewMockClient(8)

	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)

	chunk := textChunk("only", "some indexed text")
	vec, err := emb.EmbedSingle(ctx, chunk.Content)
	require.NoError(t, err)
	chunk.Embedding = vec
	require.NoError(t, store.Insert(ctx, []*types.Chunk{chunk}))

	dense := NewDenseRetriever(emb, store)
	results, err := dense.Retrieve(ctx, "some indexed text", &types.SearchConfig{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "only", results[0].Chunk.ID)
	assert.Equal(t, "dense", results[0].Retriever)
	// Identical text embeds identically, so the match is exact.
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}
