// Package retriever implements sparse, dense, and hybrid chunk retrieval.
package retriever

import (
	"context"
	"errors"

	"github.com/yilane/rag-related/pkg/types"
)

// Retriever finds chunks relevant to a text query.
type Retriever interface {
	// Retrieve returns the top chunks for the query, best first.
	Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error)
}

// Retrieval errors
var (
	ErrEmptyCorpus = errors.New("retriever has no indexed documents")
)
