package retriever

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/yilane/rag-related/pkg/types"
)

// BM25 parameter defaults (Okapi BM25).
const (
	DefaultBM25K1 = 1.5
	DefaultBM25B  = 0.75
)

// BM25Retriever ranks chunks by Okapi BM25 over a tokenized corpus.
type BM25Retriever struct {
	mu sync.RWMutex

	k1 float64
	b  float64

	chunks    []*types.Chunk
	docTokens [][]string
	docFreq   map[string]int
	docLen    []int
	avgDocLen float64
}

// NewBM25Retriever creates a BM25 retriever; non-positive parameters take the
// Okapi defaults.
func NewBM25Retriever(k1, b float64) *BM25Retriever {
	if k1 <= 0 {
		k1 = DefaultBM25K1
	}
	if b <= 0 {
		b = DefaultBM25B
	}
	return &BM25Retriever{
		k1:      k1,
		b:       b,
		docFreq: make(map[string]int),
	}
}

// Index adds chunks to the corpus and updates the term statistics.
func (r *BM25Retriever) Index(chunks []*types.Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, chunk := range chunks {
		tokens := Tokenize(chunk.Content)
		r.chunks = append(r.chunks, chunk)
		r.docTokens = append(r.docTokens, tokens)
		r.docLen = append(r.docLen, len(tokens))

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			r.docFreq[tok]++
		}
	}

	var total int
	for _, l := range r.docLen {
		total += l
	}
	if len(r.docLen) > 0 {
		r.avgDocLen = float64(total) / float64(len(r.docLen))
	}
}

// Retrieve scores the corpus against the query. Zero-score documents are
// excluded; an empty corpus returns empty results.
func (r *BM25Retriever) Retrieve(_ context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.chunks) == 0 {
		return []*types.SearchResult{}, nil
	}

	queryTokens := Tokenize(query)
	results := make([]*types.SearchResult, 0)

	for i, chunk := range r.chunks {
		if !chunkMatchesFilters(chunk, config.Filters) {
			continue
		}
		score := r.score(queryTokens, i)
		if score <= 0 || score < config.MinScore {
			continue
		}
		results = append(results, &types.SearchResult{
			Chunk:     chunk,
			Score:     score,
			Retriever: "bm25",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > config.TopK {
		results = results[:config.TopK]
	}
	return results, nil
}

// score computes the BM25 score of document idx for the query terms.
func (r *BM25Retriever) score(queryTokens []string, idx int) float64 {
	termFreq := make(map[string]int, len(r.docTokens[idx]))
	for _, tok := range r.docTokens[idx] {
		termFreq[tok]++
	}

	n := float64(len(r.chunks))
	var score float64
	for _, term := range queryTokens {
		tf := float64(termFreq[term])
		if tf == 0 {
			continue
		}
		df := float64(r.docFreq[term])
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)

		norm := tf * (r.k1 + 1) / (tf + r.k1*(1-r.b+r.b*float64(r.docLen[idx])/r.avgDocLen))
		score += idf * norm
	}
	return score
}

func chunkMatchesFilters(chunk *types.Chunk, filters map[string]interface{}) bool {
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
