// Package selfquery implements self-query retrieval: an LLM splits a
// natural-language question into a search query and a structured metadata
// filter, and the filter narrows the vector search.
package selfquery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/retriever"
	"github.com/yilane/rag-related/pkg/types"
)

// AttributeInfo describes one filterable metadata field shown to the model.
type AttributeInfo struct {
	Name        string
	Description string
	// Type is a hint for the model, e.g. "string" or "integer".
	Type string
}

// Retriever rewrites the question, extracts a metadata filter, and runs the
// filtered search through an inner retriever.
type Retriever struct {
	llm        nlp.Client
	inner      retriever.Retriever
	attributes []AttributeInfo
	logger     *slog.Logger
}

// New creates a self-query retriever. attributes lists the metadata fields
// the model may filter on; filters on other fields are dropped.
func New(llm nlp.Client, inner retriever.Retriever, attributes []AttributeInfo, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{llm: llm, inner: inner, attributes: attributes, logger: logger}
}

const extractPrompt = `You are extracting a search query and a metadata filter from a user
question about a document collection.

Filterable metadata fields:
%s

Rules:
- "query" is the question rewritten to contain only the content to search
  for, with the filter conditions removed. Keep the original language.
- "filter" maps field names to required exact values. Use only the fields
  listed above. Use an empty object when the question has no filter.

Respond with a JSON object: {"query": "...", "filter": {"field": "value"}}

Question: %s`

type extractResponse struct {
	Query  string         `json:"query"`
	Filter map[string]any `json:"filter"`
}

// StructuredQuery is the parsed output of the extraction step.
type StructuredQuery struct {
	Query  string
	Filter map[string]any
}

// Extract runs only the LLM step and returns the rewritten query and the
// filter restricted to known attributes.
func (r *Retriever) Extract(ctx context.Context, question string) (*StructuredQuery, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.ErrEmptyQuery
	}

	resp, err := r.llm.ChatWithStructuredOutput(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(extractPrompt, r.describeAttributes(), question)),
	})
	if err != nil {
		return nil, fmt.Errorf("extract structured query: %w", err)
	}

	var parsed extractResponse
	if err := nlp.DecodeJSON(resp.Content, &parsed); err != nil {
		return nil, err
	}

	sq := &StructuredQuery{
		Query:  strings.TrimSpace(parsed.Query),
		Filter: make(map[string]any),
	}
	if sq.Query == "" {
		sq.Query = question
	}

	allowed := make(map[string]struct{}, len(r.attributes))
	for _, attr := range r.attributes {
		allowed[attr.Name] = struct{}{}
	}
	for field, value := range parsed.Filter {
		if _, ok := allowed[field]; !ok {
			r.logger.Warn("dropping unknown filter field", "field", field)
			continue
		}
		sq.Filter[field] = value
	}

	return sq, nil
}

// Retrieve implements retriever.Retriever. The extracted filter is merged
// into the search config; explicit config filters win on conflict.
func (r *Retriever) Retrieve(ctx context.Context, question string, config *types.SearchConfig) ([]*types.SearchResult, error) {
	sq, err := r.Extract(ctx, question)
	if err != nil {
		return nil, err
	}

	config = config.WithDefaults()
	if len(sq.Filter) > 0 {
		merged := make(map[string]any, len(sq.Filter)+len(config.Filters))
		for k, v := range sq.Filter {
			merged[k] = v
		}
		for k, v := range config.Filters {
			merged[k] = v
		}
		clone := *config
		clone.Filters = merged
		config = &clone
	}

	r.logger.Debug("self-query retrieval", "query", sq.Query, "filter", sq.Filter)
	return r.inner.Retrieve(ctx, sq.Query, config)
}

func (r *Retriever) describeAttributes() string {
	var sb strings.Builder
	for _, attr := range r.attributes {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", attr.Name, attr.Type, attr.Description)
	}
	return sb.String()
}
