package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/yilane/rag-related/pkg/types"
)

// DefaultRRFK is the standard rank constant for reciprocal-rank fusion.
const DefaultRRFK = 60

// HybridRetriever fuses the ranked lists of several retrievers with
// reciprocal-rank fusion. Each list contributes 1/(k + rank + 1) per document;
// documents are merged by chunk identity.
type HybridRetriever struct {
	retrievers []Retriever
	rrfK       int
}

// NewHybridRetriever fuses results from the given retrievers. k <= 0 takes
// DefaultRRFK.
func NewHybridRetriever(rrfK int, retrievers ...Retriever) *HybridRetriever {
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	return &HybridRetriever{retrievers: retrievers, rrfK: rrfK}
}

// Index forwards chunks to every inner retriever that maintains its own
// index, such as BM25. Vector-backed retrievers ignore it.
func (h *HybridRetriever) Index(chunks []*types.Chunk) {
	for _, r := range h.retrievers {
		if ci, ok := r.(interface{ Index(chunks []*types.Chunk) }); ok {
			ci.Index(chunks)
		}
	}
}

// Retrieve runs every retriever and fuses the results.
func (h *HybridRetriever) Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Pull a wider candidate set from each retriever before fusing.
	innerConfig := *config
	innerConfig.TopK = config.TopK * 2
	innerConfig.MinScore = 0

	lists := make([][]*types.SearchResult, 0, len(h.retrievers))
	for _, r := range h.retrievers {
		results, err := r.Retrieve(ctx, query, &innerConfig)
		if err != nil {
			return nil, fmt.Errorf("hybrid sub-retrieval: %w", err)
		}
		lists = append(lists, results)
	}

	fused := FuseRRF(h.rrfK, lists...)
	for _, result := range fused {
		result.Retriever = "hybrid"
	}

	if len(fused) > config.TopK {
		fused = fused[:config.TopK]
	}
	return fused, nil
}

// FuseRRF merges ranked lists with reciprocal-rank fusion. Duplicate chunks
// (same ID, or same content when IDs are empty) accumulate contributions from
// every list they appear in.
func FuseRRF(k int, lists ...[]*types.SearchResult) []*types.SearchResult {
	if k <= 0 {
		k = DefaultRRFK
	}

	type entry struct {
		result *types.SearchResult
		score  float64
		order  int
	}
	merged := make(map[string]*entry)
	var nextOrder int

	for _, list := range lists {
		for rank, result := range list {
			key := result.Chunk.ID
			if key == "" {
				key = result.Chunk.Content
			}
			contribution := 1.0 / float64(k+rank+1)

			if e, ok := merged[key]; ok {
				e.score += contribution
			} else {
				merged[key] = &entry{
					result: &types.SearchResult{Chunk: result.Chunk},
					score:  contribution,
					order:  nextOrder,
				}
				nextOrder++
			}
		}
	}

	entries := make([]*entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].order < entries[j].order
	})

	out := make([]*types.SearchResult, len(entries))
	for i, e := range entries {
		e.result.Score = e.score
		out[i] = e.result
	}
	return out
}
