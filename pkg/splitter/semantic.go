package splitter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yilane/rag-related/pkg/embedder"
)

// SemanticSplitter groups consecutive sentences until the embedding distance
// between neighbors spikes above a percentile threshold, placing chunk
// boundaries at topical shifts rather than at fixed offsets.
type SemanticSplitter struct {
	embedder embedder.Client
	// breakpointPercentile marks distances above this percentile as boundaries.
	breakpointPercentile float64
	// bufferSize joins each sentence with its neighbors before embedding to
	// smooth out noise in very short sentences.
	bufferSize int
}

// NewSemanticSplitter creates a semantic splitter. Percentile defaults to 95,
// buffer size to 1.
func NewSemanticSplitter(emb embedder.Client, breakpointPercentile float64, bufferSize int) *SemanticSplitter {
	if breakpointPercentile <= 0 || breakpointPercentile >= 100 {
		breakpointPercentile = 95
	}
	if bufferSize < 0 {
		bufferSize = 1
	}
	return &SemanticSplitter{
		embedder:             emb,
		breakpointPercentile: breakpointPercentile,
		bufferSize:           bufferSize,
	}
}

// Split splits text at semantic breakpoints. Unlike the fixed splitters this
// needs an embedding round-trip, hence the context.
func (s *SemanticSplitter) Split(ctx context.Context, text string) ([]string, error) {
	sentences := SplitSentences(text)
	if len(sentences) <= 1 {
		if len(sentences) == 0 {
			return nil, nil
		}
		return []string{text}, nil
	}

	buffered := s.bufferSentences(sentences)
	vectors, err := s.embedder.Embed(ctx, buffered)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("expected %d sentence embeddings, got %d", len(sentences), len(vectors))
	}

	distances := make([]float64, len(sentences)-1)
	for i := 0; i < len(sentences)-1; i++ {
		distances[i] = 1 - cosineSimilarity(vectors[i], vectors[i+1])
	}

	threshold := percentile(distances, s.breakpointPercentile)

	var chunks []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(distances) && distances[i] > threshold {
			chunks = append(chunks, strings.Join(current, ""))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}

	return chunks, nil
}

func (s *SemanticSplitter) bufferSentences(sentences []string) []string {
	if s.bufferSize == 0 {
		return sentences
	}

	out := make([]string, len(sentences))
	for i := range sentences {
		lo := i - s.bufferSize
		if lo < 0 {
			lo = 0
		}
		hi := i + s.bufferSize + 1
		if hi > len(sentences) {
			hi = len(sentences)
		}
		out[i] = strings.Join(sentences[lo:hi], "")
	}
	return out
}

// percentile returns the p-th percentile of values using nearest-rank.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
