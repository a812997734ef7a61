package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrEmptyQuery    = errors.New("query cannot be empty")
	ErrEmptySource   = errors.New("source cannot be empty")
	ErrInvalidTopK   = errors.New("top_k must be positive")
	ErrEmptyVector   = errors.New("vector cannot be empty")
	ErrDimMismatch   = errors.New("vector dimension mismatch")
	ErrInvalidWeight = errors.New("weight must be in (0, 1]")
)

// Document is a loaded source document before splitting.
type Document struct {
	ID        string                 `json:"id" mapstructure:"id"`
	Content   string                 `json:"content" mapstructure:"content"`
	Source    string                 `json:"source" mapstructure:"source"`
	CreatedAt time.Time              `json:"created_at" mapstructure:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`
}

// Validate checks if the Document has all required fields set.
func (d *Document) Validate() error {
	if d.Content == "" {
		return ErrEmptyContent
	}
	if d.Source == "" {
		return ErrEmptySource
	}
	return nil
}

// ValidateForCreate checks if the Document has all required fields for storage.
func (d *Document) ValidateForCreate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	return d.Validate()
}

// Chunk is a unit of text produced by a splitter and indexed for retrieval.
type Chunk struct {
	ID         string                 `json:"id" mapstructure:"id"`
	DocumentID string                 `json:"document_id,omitempty" mapstructure:"document_id"`
	Content    string                 `json:"content" mapstructure:"content"`
	Index      int                    `json:"index" mapstructure:"index"`
	Embedding  []float32              `json:"embedding,omitempty" mapstructure:"embedding"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`
}

// Validate checks if the Chunk has all required fields set.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// ValidateForCreate checks if the Chunk has all required fields for insertion.
func (c *Chunk) ValidateForCreate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	return c.Validate()
}

// SearchResult is a retrieved chunk with its relevance score.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
	// Retriever identifies which retrieval path produced the result
	// ("bm25", "dense", "hybrid", ...).
	Retriever string `json:"retriever,omitempty"`
}

// SearchConfig holds configuration for retrieval operations.
type SearchConfig struct {
	// TopK is the maximum number of results to return.
	TopK int
	// MinScore is the minimum relevance score for results.
	MinScore float64
	// Filters constrains search to chunks whose metadata matches every entry.
	Filters map[string]interface{}
}

// Validate checks if the SearchConfig has valid values.
func (c *SearchConfig) Validate() error {
	if c.TopK < 0 {
		return ErrInvalidTopK
	}
	return nil
}

// WithDefaults returns a copy of the config with default values applied.
func (c *SearchConfig) WithDefaults() *SearchConfig {
	if c == nil {
		return &SearchConfig{TopK: 5}
	}
	result := *c
	if result.TopK == 0 {
		result.TopK = 5
	}
	return &result
}

// Entity is a named entity recognized in a query or document.
type Entity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// WeightedQuery pairs a search query with the weight its results carry
// when merged with other sub-query results.
type WeightedQuery struct {
	Query  string  `json:"query"`
	Weight float64 `json:"weight"`
}

// Validate checks the weighted query fields.
func (q *WeightedQuery) Validate() error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.Weight <= 0 || q.Weight > 1 {
		return ErrInvalidWeight
	}
	return nil
}

// Answer is the result of a full retrieve-then-generate round.
type Answer struct {
	Question string          `json:"question"`
	Text     string          `json:"text"`
	Sources  []*SearchResult `json:"sources,omitempty"`
	Model    string          `json:"model,omitempty"`
	Elapsed  time.Duration   `json:"elapsed,omitempty"`
}
