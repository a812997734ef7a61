// Package prequery transforms user queries before retrieval: rewriting,
// multi-query expansion, fusion, decomposition, step-back prompting, HyDE,
// and routing to the right datasource.
package prequery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/retriever"
	"github.com/yilane/rag-related/pkg/types"
)

// Translation errors
var (
	ErrNoQueries = errors.New("no queries generated")
)

// Translator rewrites queries with an LLM.
type Translator struct {
	llm nlp.Client
}

// NewTranslator creates a query translator.
func NewTranslator(llm nlp.Client) *Translator {
	return &Translator{llm: llm}
}

const rephrasePrompt = `You are a search query optimizer. Rewrite the user's question into a
clear, specific search query. Keep the original language. Return only the
rewritten query, nothing else.

Question: %s`

// Rephrase rewrites a query into a cleaner search query.
func (t *Translator) Rephrase(ctx context.Context, query string) (string, error) {
	resp, err := t.llm.Chat(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(rephrasePrompt, query)),
	})
	if err != nil {
		return "", fmt.Errorf("rephrase query: %w", err)
	}

	rewritten := strings.TrimSpace(nlp.StripCodeFence(resp.Content))
	if rewritten == "" {
		return "", ErrNoQueries
	}
	return rewritten, nil
}

const multiQueryPrompt = `You are an AI assistant generating search query variations. Generate %d
different versions of the question below to retrieve relevant documents from
a vector database. Vary the phrasing and perspective while preserving intent.
Keep the original language.

Respond with a JSON object: {"queries": ["...", "..."]}

Question: %s`

type multiQueryResponse struct {
	Queries []string `json:"queries"`
}

// MultiQuery generates n alternative phrasings of the query. The original
// query is always first in the returned slice.
func (t *Translator) MultiQuery(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}

	resp, err := t.llm.ChatWithStructuredOutput(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(multiQueryPrompt, n, query)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate query variants: %w", err)
	}

	var parsed multiQueryResponse
	if err := nlp.DecodeJSON(resp.Content, &parsed); err != nil {
		return nil, err
	}

	queries := []string{query}
	seen := map[string]struct{}{query: {}}
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	if len(queries) == 1 && len(parsed.Queries) == 0 {
		return queries, nil
	}
	return queries, nil
}

const decomposePrompt = `Break the following complex question into %d simpler sub-questions that
can each be answered independently. Keep the original language.

Respond with a JSON object: {"sub_questions": ["...", "..."]}

Question: %s`

type decomposeResponse struct {
	SubQuestions []string `json:"sub_questions"`
}

// Decompose splits a complex question into independent sub-questions.
func (t *Translator) Decompose(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}

	resp, err := t.llm.ChatWithStructuredOutput(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(decomposePrompt, n, query)),
	})
	if err != nil {
		return nil, fmt.Errorf("decompose query: %w", err)
	}

	var parsed decomposeResponse
	if err := nlp.DecodeJSON(resp.Content, &parsed); err != nil {
		return nil, err
	}

	var out []string
	for _, q := range parsed.SubQuestions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoQueries
	}
	return out, nil
}

const stepBackPrompt = `You are an expert at world knowledge. Your task is to step back and
paraphrase a question to a more generic step-back question, which is easier
to answer. Here are a few examples:

Question: Could the members of The Police perform lawful arrests?
Step-back question: what can the members of The Police do?

Question: Jan Sindel was born in what country?
Step-back question: what is Jan Sindel's personal history?

Question: %s
Step-back question:`

// StepBack generates a more generic background question via few-shot prompting.
func (t *Translator) StepBack(ctx context.Context, query string) (string, error) {
	resp, err := t.llm.Chat(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(stepBackPrompt, query)),
	})
	if err != nil {
		return "", fmt.Errorf("step-back query: %w", err)
	}

	stepped := strings.TrimSpace(resp.Content)
	if stepped == "" {
		return "", ErrNoQueries
	}
	return stepped, nil
}

const hydePrompt = `Write a short passage that directly answers the question below, as it
might appear in a reference document. Write only the passage. Keep the
original language.

Question: %s`

// HypotheticalDocument writes the HyDE passage for a query. Retrieval then
// embeds the passage instead of the question.
func (t *Translator) HypotheticalDocument(ctx context.Context, query string) (string, error) {
	resp, err := t.llm.Chat(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(hydePrompt, query)),
	})
	if err != nil {
		return "", fmt.Errorf("generate hypothetical document: %w", err)
	}

	doc := strings.TrimSpace(resp.Content)
	if doc == "" {
		return "", ErrNoQueries
	}
	return doc, nil
}

// Fusion runs multi-query expansion, retrieves for each variant, and fuses
// the ranked lists with RRF.
func (t *Translator) Fusion(ctx context.Context, r retriever.Retriever, query string, n, rrfK int, config *types.SearchConfig) ([]*types.SearchResult, error) {
	queries, err := t.MultiQuery(ctx, query, n)
	if err != nil {
		return nil, err
	}

	config = config.WithDefaults()
	lists := make([][]*types.SearchResult, 0, len(queries))
	for _, q := range queries {
		results, err := r.Retrieve(ctx, q, config)
		if err != nil {
			return nil, fmt.Errorf("fusion retrieval for %q: %w", q, err)
		}
		lists = append(lists, results)
	}

	fused := retriever.FuseRRF(rrfK, lists...)
	if len(fused) > config.TopK {
		fused = fused[:config.TopK]
	}
	return fused, nil
}
