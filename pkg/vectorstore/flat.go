package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/yilane/rag-related/pkg/types"
)

// FlatStore is an exact in-memory index. Every search scans all vectors, so
// recall is perfect and inserts are O(1); it is the baseline the approximate
// indexes are measured against.
type FlatStore struct {
	mu     sync.RWMutex
	metric Metric
	dim    int
	chunks []*types.Chunk
}

// NewFlatStore creates a flat store using the given metric.
func NewFlatStore(metric Metric) (*FlatStore, error) {
	switch metric {
	case MetricL2, MetricIP:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return &FlatStore{metric: metric}, nil
}

// Insert adds chunks with their embeddings to the store.
func (f *FlatStore) Insert(_ context.Context, chunks []*types.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s", ErrMissingEmbedding, chunk.ID)
		}
		if f.dim == 0 {
			f.dim = len(chunk.Embedding)
		} else if len(chunk.Embedding) != f.dim {
			return fmt.Errorf("%w: chunk %s has dim %d, store has %d",
				ErrDimMismatch, chunk.ID, len(chunk.Embedding), f.dim)
		}
		f.chunks = append(f.chunks, chunk)
	}
	return nil
}

// Search returns the nearest chunks. An empty store returns empty results and
// TopK is clamped to the store size.
func (f *FlatStore) Search(_ context.Context, vector []float32, config *types.SearchConfig) ([]*types.SearchResult, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.chunks) == 0 {
		return []*types.SearchResult{}, nil
	}
	if len(vector) != f.dim {
		return nil, fmt.Errorf("%w: query has dim %d, store has %d", ErrDimMismatch, len(vector), f.dim)
	}

	results := make([]*types.SearchResult, 0, len(f.chunks))
	for _, chunk := range f.chunks {
		if !matchesFilters(chunk, config.Filters) {
			continue
		}
		score := similarity(f.metric, vector, chunk.Embedding)
		if score < config.MinScore {
			continue
		}
		results = append(results, &types.SearchResult{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > config.TopK {
		results = results[:config.TopK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (f *FlatStore) Count(_ context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.chunks), nil
}

// Close implements Store.
func (f *FlatStore) Close() error { return nil }

// similarity converts a metric-specific comparison to a descending score.
func similarity(metric Metric, a, b []float32) float64 {
	switch metric {
	case MetricIP:
		return dotProduct(a, b)
	default:
		return 1.0 / (1.0 + math.Sqrt(l2Squared(a, b)))
	}
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2Squared(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
