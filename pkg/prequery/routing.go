package prequery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/types"
)

// Routing errors
var (
	ErrNoDatasources = errors.New("router has no datasources")
	ErrNoTemplates   = errors.New("router has no templates")
	ErrUnknownRoute  = errors.New("model picked an unknown datasource")
)

// LogicalRouter classifies a query to one of a fixed set of named
// datasources with an LLM call.
type LogicalRouter struct {
	llm         nlp.Client
	datasources []string
}

// NewLogicalRouter creates a router over the given datasource names.
func NewLogicalRouter(llm nlp.Client, datasources []string) *LogicalRouter {
	return &LogicalRouter{llm: llm, datasources: datasources}
}

const logicalRoutePrompt = `You are an expert at routing user questions to the appropriate data source.
Available data sources: %s

Based on the topic of the question, pick the single most relevant data source.

Respond with a JSON object: {"datasource": "<name>"}

Question: %s`

type routeResponse struct {
	Datasource string `json:"datasource"`
}

// Route returns the chosen datasource name.
func (r *LogicalRouter) Route(ctx context.Context, query string) (string, error) {
	if len(r.datasources) == 0 {
		return "", ErrNoDatasources
	}

	resp, err := r.llm.ChatWithStructuredOutput(ctx, []types.Message{
		types.UserMessage(fmt.Sprintf(logicalRoutePrompt, strings.Join(r.datasources, ", "), query)),
	})
	if err != nil {
		return "", fmt.Errorf("route query: %w", err)
	}

	var parsed routeResponse
	if err := nlp.DecodeJSON(resp.Content, &parsed); err != nil {
		return "", err
	}

	choice := strings.TrimSpace(parsed.Datasource)
	for _, ds := range r.datasources {
		if strings.EqualFold(ds, choice) {
			return ds, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoute, choice)
}

// PromptTemplate is a candidate prompt for semantic routing.
type PromptTemplate struct {
	Name string
	// Description is embedded and compared against the query.
	Description string
	// Template is the prompt to use when this route wins.
	Template string
}

// SemanticRouter picks the prompt template whose embedded description is
// closest to the query by cosine similarity. Ties break to the first
// template.
type SemanticRouter struct {
	embedder  embedder.Client
	templates []PromptTemplate
	vectors   [][]float32
}

// NewSemanticRouter embeds the template descriptions up front.
func NewSemanticRouter(ctx context.Context, emb embedder.Client, templates []PromptTemplate) (*SemanticRouter, error) {
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	descriptions := make([]string, len(templates))
	for i, t := range templates {
		descriptions[i] = t.Description
	}

	vectors, err := emb.Embed(ctx, descriptions)
	if err != nil {
		return nil, fmt.Errorf("embed templates: %w", err)
	}
	if len(vectors) != len(templates) {
		return nil, fmt.Errorf("expected %d template embeddings, got %d", len(templates), len(vectors))
	}

	return &SemanticRouter{embedder: emb, templates: templates, vectors: vectors}, nil
}

// Route returns the best-matching template and its similarity score.
func (r *SemanticRouter) Route(ctx context.Context, query string) (PromptTemplate, float64, error) {
	vector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return PromptTemplate{}, 0, fmt.Errorf("embed query: %w", err)
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, tv := range r.vectors {
		score := cosine(vector, tv)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	return r.templates[best], bestScore, nil
}

func cosine(a, b []float32) float64 {
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
