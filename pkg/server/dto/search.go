package dto

import "github.com/yilane/rag-related/pkg/types"

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query    string  `json:"query" binding:"required"`
	TopK     int     `json:"top_k"`
	MinScore float64 `json:"min_score"`
}

// SearchResponse is the reply to a search call.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []*types.SearchResult `json:"results"`
}

// AnswerRequest is the body of POST /api/v1/answer.
type AnswerRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
}

// AnswerResponse is the reply to an answer call.
type AnswerResponse struct {
	Question string                `json:"question"`
	Answer   string                `json:"answer"`
	Model    string                `json:"model,omitempty"`
	Sources  []*types.SearchResult `json:"sources,omitempty"`
}

// IndexRequest is the body of POST /api/v1/documents.
type IndexRequest struct {
	Documents []*types.Document `json:"documents" binding:"required"`
}

// IndexResponse reports what an index call stored.
type IndexResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}
