package icd10

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

// Metadata keys for stored disease chunks.
const (
	MetaCode        = "code"
	MetaName        = "name"
	MetaChapterName = "chapter_name"
	MetaSectionName = "section_name"
)

// Builder embeds disease names in batches and inserts them into a vector store.
type Builder struct {
	embedder  embedder.Client
	store     vectorstore.Store
	batchSize int
	logger    *slog.Logger
}

// NewBuilder creates an index builder. Batch size defaults to 128.
func NewBuilder(emb embedder.Client, store vectorstore.Store, batchSize int, logger *slog.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = 128
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: emb, store: store, batchSize: batchSize, logger: logger}
}

// Build embeds records and inserts them. Returns the number of indexed records.
func (b *Builder) Build(ctx context.Context, records []Record) (int, error) {
	total := 0

	for start := 0; start < len(records); start += b.batchSize {
		end := start + b.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		names := make([]string, len(batch))
		for i, r := range batch {
			names[i] = r.Name
		}

		vectors, err := b.embedder.Embed(ctx, names)
		if err != nil {
			return total, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return total, fmt.Errorf("expected %d vectors, got %d", len(batch), len(vectors))
		}

		chunks := make([]*types.Chunk, len(batch))
		for i, r := range batch {
			chunks[i] = &types.Chunk{
				ID:        r.Code,
				Content:   r.Name,
				Embedding: vectors[i],
				Metadata: map[string]interface{}{
					MetaCode:        r.Code,
					MetaName:        r.Name,
					MetaChapterName: r.ChapterName,
					MetaSectionName: r.SectionName,
				},
			}
		}

		if err := b.store.Insert(ctx, chunks); err != nil {
			return total, fmt.Errorf("insert batch at %d: %w", start, err)
		}
		total += len(batch)
		b.logger.Info("indexed icd10 batch", "inserted", total, "total", len(records))
	}

	return total, nil
}
