// Package embedder provides text embedding clients for vector representations.
//
// Implementations cover local models through go-embedeverything and hosted
// OpenAI-compatible embedding APIs, plus a badger-backed cache wrapper.
package embedder

import (
	"context"
	"errors"
)

// Client defines the interface for embedding operations.
type Client interface {
	// Embed generates embeddings for the given texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds common embedder configuration.
type Config struct {
	Model      string
	Dimensions int
	BatchSize  int
}

// ErrNoEmbeddings indicates the provider returned no vectors.
var ErrNoEmbeddings = errors.New("no embeddings returned")
