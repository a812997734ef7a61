package dto

import "github.com/yilane/rag-related/pkg/icd10"

// ICD10SearchRequest is the body of POST /api/v1/icd10/search.
type ICD10SearchRequest struct {
	Query          string  `json:"query" binding:"required"`
	TopK           int     `json:"top_k"`
	ScoreThreshold float64 `json:"score_threshold"`
	// Labels overrides the candidate entity labels for this search.
	Labels []string `json:"labels"`
}

// ICD10SearchResponse is the reply to an ICD-10 search.
type ICD10SearchResponse struct {
	Query   string        `json:"query"`
	Matches []icd10.Match `json:"matches"`
}

// ICD10DetailResponse is the reply to a code detail lookup.
type ICD10DetailResponse struct {
	Record icd10.Record `json:"record"`
}
