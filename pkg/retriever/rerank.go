package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
)

// LLMReranker reorders candidate results with a listwise LLM judgment.
// It wraps another retriever: candidates come from the inner retriever and
// the model only re-ranks, never introduces new chunks.
type LLMReranker struct {
	inner Retriever
	llm   nlp.Client
}

// NewLLMReranker wraps inner with LLM-based reranking.
func NewLLMReranker(inner Retriever, llm nlp.Client) *LLMReranker {
	return &LLMReranker{inner: inner, llm: llm}
}

const rerankPrompt = `You are a search result ranker. Given a query and numbered passages,
rank the passages from most to least relevant to the query.

Query: %s

Passages:
%s

Respond with a JSON object: {"ranking": [<passage numbers, most relevant first>]}`

type rerankResponse struct {
	Ranking []int `json:"ranking"`
}

// Retrieve fetches candidates from the inner retriever and reorders them.
// If the model output is unusable the original order is kept.
func (r *LLMReranker) Retrieve(ctx context.Context, query string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	candidates, err := r.inner.Retrieve(ctx, query, config)
	if err != nil {
		return nil, err
	}
	if len(candidates) <= 1 {
		return candidates, nil
	}

	var passages strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&passages, "[%d] %s\n", i+1, c.Chunk.Content)
	}

	resp, err := r.llm.ChatWithStructuredOutput(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(rerankPrompt, query, passages.String())),
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	var parsed rerankResponse
	if err := nlp.DecodeJSON(resp.Content, &parsed); err != nil {
		return candidates, nil
	}

	reordered := make([]*types.SearchResult, 0, len(candidates))
	seen := make(map[int]bool, len(candidates))
	for _, num := range parsed.Ranking {
		idx := num - 1
		if idx < 0 || idx >= len(candidates) || seen[idx] {
			continue
		}
		seen[idx] = true
		reordered = append(reordered, candidates[idx])
	}
	// Append anything the model omitted.
	for i, c := range candidates {
		if !seen[i] {
			reordered = append(reordered, c)
		}
	}

	return reordered, nil
}

// Index forwards chunks to the inner retriever when it keeps its own index.
func (r *LLMReranker) Index(chunks []*types.Chunk) {
	if ci, ok := r.inner.(interface{ Index(chunks []*types.Chunk) }); ok {
		ci.Index(chunks)
	}
}
