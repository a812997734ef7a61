package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

func newTestClient(t *testing.T, llm nlp.Client) *Client {
	t.Helper()
	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)
	return NewClient(llm, embedder.NewMockClient(16), store, nil)
}

func testDocs() []*types.Document {
	return []*types.Document{
		{
			ID:      "notes-1",
			Source:  "notes/vector.md",
			Content: "向量数据库存储嵌入向量并支持相似度检索。常见实现包括 Qdrant 和 Milvus。",
		},
		{
			ID:      "notes-2",
			Source:  "notes/bm25.md",
			Content: "BM25 是基于词频和逆文档频率的稀疏检索算法，无需训练即可使用。",
		},
	}
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &nlp.MockClient{})

	stats, err := c.Index(ctx, testDocs())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.GreaterOrEqual(t, stats.Chunks, 2)

	count, err := c.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Chunks, count)
}

func TestIndexEmpty(t *testing.T) {
	c := newTestClient(t, &nlp.MockClient{})
	_, err := c.Index(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestIndexInvalidDocument(t *testing.T) {
	c := newTestClient(t, &nlp.MockClient{})
	_, err := c.Index(context.Background(), []*types.Document{{ID: "x", Source: "s"}})
	assert.ErrorIs(t, err, types.ErrEmptyContent)
}

func TestIndexTrainsIVFStore(t *testing.T) {
	ctx := context.Background()
	store, err := vectorstore.NewIVFStore(vectorstore.IVFConfig{NList: 2, NProbe: 2})
	require.NoError(t, err)
	c := NewClient(&nlp.MockClient{}, embedder.NewMockClient(16), store, nil)

	_, err = c.Index(ctx, testDocs())
	require.NoError(t, err)
	assert.True(t, store.Trained())

	// The trained partition still surfaces the exact chunk.
	results, err := c.Retrieve(ctx, "BM25 是基于词频和逆文档频率的稀疏检索算法，无需训练即可使用。", &types.SearchConfig{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes-2", results[0].Chunk.DocumentID)
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &nlp.MockClient{})

	_, err := c.Index(ctx, testDocs())
	require.NoError(t, err)

	// The mock embedder is deterministic per text, so querying with a chunk's
	// exact content surfaces that chunk first.
	results, err := c.Retrieve(ctx, "向量数据库存储嵌入向量并支持相似度检索。常见实现包括 Qdrant 和 Milvus。", &types.SearchConfig{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes-1", results[0].Chunk.DocumentID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	c := newTestClient(t, &nlp.MockClient{})
	_, err := c.Retrieve(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	llm := &nlp.MockClient{Responses: []string{"向量数据库用于存储和检索嵌入向量。"}}
	c := newTestClient(t, llm)

	_, err := c.Index(ctx, testDocs())
	require.NoError(t, err)

	answer, err := c.Answer(ctx, "什么是向量数据库？", &types.SearchConfig{TopK: 2})
	require.NoError(t, err)
	assert.Equal(t, "向量数据库用于存储和检索嵌入向量。", answer.Text)
	assert.Equal(t, "什么是向量数据库？", answer.Question)
	assert.NotEmpty(t, answer.Sources)
	assert.Equal(t, "mock", answer.Model)

	// The retrieved chunks went into the prompt.
	require.Len(t, llm.Calls, 1)
	prompt := llm.Calls[0][0].Content
	assert.Contains(t, prompt, "什么是向量数据库？")
	assert.Contains(t, prompt, "[1]")
}

func TestAnswerNoContext(t *testing.T) {
	c := newTestClient(t, &nlp.MockClient{Responses: []string{"unused"}})
	// Nothing indexed: retrieval returns empty, answer refuses to generate.
	_, err := c.Answer(context.Background(), "question", nil)
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestStuffContext(t *testing.T) {
	out := stuffContext([]*types.SearchResult{
		{Chunk: &types.Chunk{Content: " first "}},
		{Chunk: &types.Chunk{Content: "second"}},
	})
	assert.Equal(t, "[1] first\n\n[2] second", out)
}
