package rag

import (
	"context"

	"github.com/yilane/rag-related/pkg/types"
)

// Consumers should depend on the smallest of these interfaces that meets
// their needs; RAG composes them for convenience.

// Indexer ingests documents into the knowledge base.
type Indexer interface {
	// Index splits, embeds, and stores the documents.
	Index(ctx context.Context, docs []*types.Document) (*IndexStats, error)
}

// Searcher retrieves chunks relevant to a query.
type Searcher interface {
	// Retrieve returns the top chunks for the query, best first.
	Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error)
}

// Answerer produces grounded answers from the knowledge base.
type Answerer interface {
	// Answer retrieves context for the question and generates an answer
	// with the retrieved chunks as sources.
	Answer(ctx context.Context, question string, config *types.SearchConfig) (*types.Answer, error)
}

// RAG is the full retrieval-augmented generation surface.
type RAG interface {
	Indexer
	Searcher
	Answerer

	// Close releases the underlying store and model clients.
	Close() error
}
