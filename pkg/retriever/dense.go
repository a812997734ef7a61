package retriever

import (
	"context"
	"fmt"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/types"
)

// DenseRetriever embeds the query and searches a vector store.
type DenseRetriever struct {
	embedder embedder.Client
	store    vectorSearcher
}

// vectorSearcher is the slice of the vector store the retriever needs.
type vectorSearcher interface {
	Search(ctx context.Context, vector []float32, config *types.SearchConfig) ([]*types.SearchResult, error)
}

// NewDenseRetriever creates a dense retriever over the given store.
func NewDenseRetriever(emb embedder.Client, store vectorSearcher) *DenseRetriever {
	return &DenseRetriever{embedder: emb, store: store}
}

// Retrieve embeds the query and delegates to the vector store.
func (r *DenseRetriever) Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	vector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Search(ctx, vector, config)
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		result.Retriever = "dense"
	}
	return results, nil
}
