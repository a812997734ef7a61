package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/loader"
	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/retriever"
	"github.com/yilane/rag-related/pkg/splitter"
	"github.com/yilane/rag-related/pkg/telemetry"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

// Pipeline errors
var (
	ErrNoDocuments = errors.New("no documents to index")
	ErrNoContext   = errors.New("no relevant context found")
)

// IndexStats summarizes one indexing run.
type IndexStats struct {
	Documents int
	Chunks    int
	Elapsed   time.Duration
}

// Config holds configuration for the Client.
type Config struct {
	// Splitter used for chunking. Defaults to a recursive splitter.
	Splitter splitter.Splitter
	// Retriever used for search. Defaults to a dense retriever over the
	// store.
	Retriever retriever.Retriever
	// EmbedBatchSize caps how many chunks are embedded per call.
	EmbedBatchSize int
	// Telemetry, when set, records index/retrieve/answer events.
	Telemetry *telemetry.Recorder
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client wires a splitter, embedder, vector store, retriever, and LLM into
// the load, split, embed, store, retrieve, generate pipeline.
type Client struct {
	llm       nlp.Client
	embedder  embedder.Client
	store     vectorstore.Store
	splitter  splitter.Splitter
	retriever retriever.Retriever
	telemetry *telemetry.Recorder
	batchSize int
	logger    *slog.Logger
}

var _ RAG = (*Client)(nil)

// NewClient creates a RAG client. config may be nil for defaults.
func NewClient(llm nlp.Client, emb embedder.Client, store vectorstore.Store, config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	c := &Client{
		llm:       llm,
		embedder:  emb,
		store:     store,
		splitter:  config.Splitter,
		retriever: config.Retriever,
		telemetry: config.Telemetry,
		batchSize: config.EmbedBatchSize,
		logger:    config.Logger,
	}
	if c.splitter == nil {
		c.splitter = splitter.NewRecursiveSplitter()
	}
	if c.retriever == nil {
		c.retriever = retriever.NewDenseRetriever(emb, store)
	}
	if c.batchSize <= 0 {
		c.batchSize = 32
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Index splits the documents into chunks, embeds them in batches, and
// inserts them into the vector store.
func (c *Client) Index(ctx context.Context, docs []*types.Document) (*IndexStats, error) {
	start := time.Now()
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
	}

	chunks := splitter.SplitDocuments(c.splitter, docs)
	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}

	for lo := 0; lo < len(chunks); lo += c.batchSize {
		hi := lo + c.batchSize
		if hi > len(chunks) {
			hi = len(chunks)
		}
		batch := chunks[lo:hi]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		vectors, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
		}
		for i, chunk := range batch {
			chunk.Embedding = vectors[i]
		}
	}

	if err := c.store.Insert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	// Retrievers with their own index (BM25, hybrid) get the chunks too.
	if ci, ok := c.retriever.(interface{ Index(chunks []*types.Chunk) }); ok {
		ci.Index(chunks)
	}

	// Stores with a trainable partition (IVF) rebuild it over the new data.
	if trainer, ok := c.store.(interface{ Train(ctx context.Context) error }); ok {
		if err := trainer.Train(ctx); err != nil {
			return nil, fmt.Errorf("train store: %w", err)
		}
	}

	stats := &IndexStats{Documents: len(docs), Chunks: len(chunks), Elapsed: time.Since(start)}
	c.logger.Info("indexed documents",
		"documents", stats.Documents, "chunks", stats.Chunks, "elapsed", stats.Elapsed)
	c.record(telemetry.QueryRecord{
		Operation:   "index",
		ResultCount: stats.Chunks,
		DurationMS:  stats.Elapsed.Milliseconds(),
	})
	return stats, nil
}

// IndexFrom loads documents with the loader and indexes them.
func (c *Client) IndexFrom(ctx context.Context, l loader.Loader) (*IndexStats, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	return c.Index(ctx, docs)
}

// Retrieve returns the top chunks for the query, best first.
func (c *Client) Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrEmptyQuery
	}

	start := time.Now()
	config = config.WithDefaults()
	results, err := c.retriever.Retrieve(ctx, query, config)
	if err != nil {
		c.record(telemetry.QueryRecord{
			Operation:  "retrieve",
			Query:      query,
			TopK:       config.TopK,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      err.Error(),
		})
		return nil, err
	}

	c.record(telemetry.QueryRecord{
		Operation:   "retrieve",
		Query:       query,
		TopK:        config.TopK,
		ResultCount: len(results),
		DurationMS:  time.Since(start).Milliseconds(),
	})
	return results, nil
}

const answerPrompt = `Answer the question using only the context below. If the context does not
contain the answer, say you don't know. Answer in the language of the
question.

Context:
%s

Question: %s`

// Answer retrieves context for the question and generates a grounded answer.
func (c *Client) Answer(ctx context.Context, question string, config *types.SearchConfig) (*types.Answer, error) {
	start := time.Now()

	results, err := c.Retrieve(ctx, question, config)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoContext
	}

	resp, err := c.llm.Chat(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(answerPrompt, stuffContext(results), question)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &types.Answer{
		Question: question,
		Text:     strings.TrimSpace(resp.Content),
		Sources:  results,
		Model:    resp.Model,
		Elapsed:  time.Since(start),
	}
	c.record(telemetry.QueryRecord{
		Operation:    "answer",
		Query:        question,
		ResultCount:  len(results),
		Model:        resp.Model,
		PromptTokens: resp.PromptTokens,
		OutputTokens: resp.OutputTokens,
		DurationMS:   answer.Elapsed.Milliseconds(),
	})
	return answer, nil
}

// Close releases the store, embedder, and LLM client.
func (c *Client) Close() error {
	var errs []error
	if c.telemetry != nil {
		errs = append(errs, c.telemetry.Close())
	}
	errs = append(errs, c.store.Close(), c.embedder.Close(), c.llm.Close())
	return errors.Join(errs...)
}

func (c *Client) record(record telemetry.QueryRecord) {
	if c.telemetry != nil {
		c.telemetry.Record(record)
	}
}

// stuffContext joins retrieved chunks into a numbered context block.
func stuffContext(results []*types.SearchResult) string {
	var sb strings.Builder
	for i, result := range results {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, strings.TrimSpace(result.Chunk.Content))
	}
	return strings.TrimSpace(sb.String())
}
