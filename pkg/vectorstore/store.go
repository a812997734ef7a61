// Package vectorstore provides vector indexes for chunk retrieval: an exact
// in-memory flat index, an IVF-flat index with k-means coarse quantization,
// and a client for a hosted Qdrant collection.
package vectorstore

import (
	"context"
	"errors"

	"github.com/yilane/rag-related/pkg/types"
)

// Store defines the interface for vector storage backends.
type Store interface {
	// Insert adds chunks with their embeddings to the store.
	Insert(ctx context.Context, chunks []*types.Chunk) error

	// Search returns the chunks nearest to the query vector.
	Search(ctx context.Context, vector []float32, config *types.SearchConfig) ([]*types.SearchResult, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// Metric selects the distance function for in-memory indexes.
type Metric string

const (
	// MetricL2 ranks by euclidean distance; similarity reported as 1/(1+distance).
	MetricL2 Metric = "l2"
	// MetricIP ranks by inner product; similarity reported as the raw dot product.
	MetricIP Metric = "ip"
)

// Store errors
var (
	ErrMissingEmbedding = errors.New("chunk has no embedding")
	ErrDimMismatch      = errors.New("vector dimension mismatch")
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrNotTrained       = errors.New("index is not trained")
)

// matchesFilters reports whether a chunk's metadata satisfies every filter entry.
func matchesFilters(chunk *types.Chunk, filters map[string]interface{}) bool {
	if len(filters) == 0 {
		return true
	}
	for k, want := range filters {
		got, ok := chunk.Metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
