package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/types"
)

func textChunk(id, content string) *types.Chunk {
	return &types.Chunk{ID: id, Content: content}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "english words lowered",
			in:   "RAG combines Retrieval with Generation",
			want: []string{"rag", "combines", "retrieval", "with", "generation"},
		},
		{
			name: "chinese per rune",
			in:   "高血压",
			want: []string{"高", "血", "压"},
		},
		{
			name: "mixed with punctuation",
			in:   "BM25检索, okay!",
			want: []string{"bm25", "检", "索", "okay"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestBM25EmptyCorpus(t *testing.T) {
	r := NewBM25Retriever(0, 0)
	results, err := r.Retrieve(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBM25RanksMatchingDocsFirst(t *testing.T) {
	r := NewBM25Retriever(0, 0)
	r.Index([]*types.Chunk{
		textChunk("cats", "cats are small furry animals that purr"),
		textChunk("dogs", "dogs are loyal animals that bark loudly"),
		textChunk("stocks", "the stock market closed higher today"),
	})

	results, err := r.Retrieve(context.Background(), "furry cats purr", &types.SearchConfig{TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "cats", results[0].Chunk.ID)
	assert.Equal(t, "bm25", results[0].Retriever)

	// Zero-score documents never appear.
	for _, res := range results {
		assert.Greater(t, res.Score, 0.0)
		assert.NotEqual(t, "stocks", res.Chunk.ID)
	}
}

func TestBM25ChineseQuery(t *testing.T) {
	r := NewBM25Retriever(0, 0)
	r.Index([]*types.Chunk{
		textChunk("htn", "高血压是一种常见的慢性疾病"),
		textChunk("flu", "流感是由流感病毒引起的呼吸道感染"),
	})

	results, err := r.Retrieve(context.Background(), "高血压", &types.SearchConfig{TopK: 2})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "htn", results[0].Chunk.ID)
}

func TestBM25TopKLimit(t *testing.T) {
	r := NewBM25Retriever(0, 0)
	r.Index([]*types.Chunk{
		textChunk("a", "shared term alpha"),
		textChunk("b", "shared term beta"),
		textChunk("c", "shared term gamma"),
	})

	results, err := r.Retrieve(context.Background(), "shared term", &types.SearchConfig{TopK: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestBM25Filters(t *testing.T) {
	r := NewBM25Retriever(0, 0)
	zh := textChunk("zh", "retrieval augmented generation")
	zh.Metadata = map[string]interface{}{"lang": "zh"}
	en := textChunk("en", "retrieval augmented generation")
	en.Metadata = map[string]interface{}{"lang": "en"}
	r.Index([]*types.Chunk{zh, en})

	results, err := r.Retrieve(context.Background(), "retrieval", &types.SearchConfig{
		TopK:    10,
		Filters: map[string]interface{}{"lang": "en"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "en", results[0].Chunk.ID)
}
