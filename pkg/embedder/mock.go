package embedder

import (
	"context"
	"hash/fnv"
	"math"
)

// MockClient is a deterministic Client implementation for tests. Each text
// hashes to a fixed pseudo-random unit vector, so equal texts embed equally.
type MockClient struct {
	Dim   int
	Calls int
}

// NewMockClient returns a mock embedder producing dim-dimensional vectors.
func NewMockClient(dim int) *MockClient {
	if dim <= 0 {
		dim = 8
	}
	return &MockClient{Dim: dim}
}

// Embed implements Client.
func (m *MockClient) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.Calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

// EmbedSingle implements Client.
func (m *MockClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions implements Client.
func (m *MockClient) Dimensions() int { return m.Dim }

// Close implements Client.
func (m *MockClient) Close() error { return nil }

func (m *MockClient) vector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.Dim)
	var norm float64
	for i := range vec {
		// xorshift64
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float64(int64(seed%2000)-1000) / 1000.0
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
