package icd10

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/ner"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

// Weighting for NER-assisted sub-queries: the original query carries full
// weight, entity queries start below it and decay per entity.
const (
	originalQueryWeight = 1.0
	entityQueryWeight   = 0.8
	entityWeightStep    = 0.1
	minEntityWeight     = 0.1
)

// Service errors
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrCodeNotFound = errors.New("disease code not found")
)

// Match is one disease hit with its weighted relevance.
type Match struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ChapterName   string  `json:"chapter_name,omitempty"`
	SectionName   string  `json:"section_name,omitempty"`
	Score         float64 `json:"score"`
	MatchedQuery  string  `json:"matched_query"`
	MatchedWeight float64 `json:"matched_weight"`
}

// SearchOptions tunes a search call.
type SearchOptions struct {
	TopK int
	// ScoreThreshold drops raw vector hits below this similarity before
	// weighting.
	ScoreThreshold float64
	// Labels passed to the entity recognizer.
	Labels []string
}

// DefaultLabels are the candidate entity labels used when the caller does
// not supply any. The gline model is zero-shot and extracts nothing without
// candidates.
var DefaultLabels = []string{"疾病", "症状", "药物"}

// Service performs NER-assisted disease search over the indexed code table.
type Service struct {
	embedder   embedder.Client
	store      vectorstore.Store
	recognizer ner.Recognizer
	records    map[string]Record
	labels     []string
	logger     *slog.Logger
}

// NewService creates a search service. The records slice backs detail lookup
// by code; recognizer may be nil to disable entity expansion; labels are the
// candidate entity labels used when a search supplies none (nil falls back
// to DefaultLabels).
func NewService(emb embedder.Client, store vectorstore.Store, recognizer ner.Recognizer, records []Record, labels []string, logger *slog.Logger) *Service {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	if logger == nil {
		logger = slog.Default()
	}
	byCode := make(map[string]Record, len(records))
	for _, r := range records {
		byCode[r.Code] = r
	}
	return &Service{
		embedder:   emb,
		store:      store,
		recognizer: recognizer,
		records:    byCode,
		labels:     labels,
		logger:     logger,
	}
}

// BuildQueries expands a query into weighted sub-queries: the original at
// weight 1.0, then one per recognized entity at 0.8, 0.7, ... Entities equal
// to the full query are skipped. Empty labels fall back to the service's
// configured label set.
func (s *Service) BuildQueries(query string, labels []string) ([]types.WeightedQuery, error) {
	queries := []types.WeightedQuery{{Query: query, Weight: originalQueryWeight}}

	if s.recognizer == nil {
		return queries, nil
	}
	if len(labels) == 0 {
		labels = s.labels
	}

	entities, err := s.recognizer.Extract(query, labels)
	if err != nil {
		// Entity extraction is an enhancement; fall back to the plain query.
		s.logger.Warn("entity extraction failed, using original query only", "error", err)
		return queries, nil
	}

	weight := entityQueryWeight
	seen := map[string]struct{}{query: {}}
	for _, entity := range entities {
		text := strings.TrimSpace(entity.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		queries = append(queries, types.WeightedQuery{Query: text, Weight: weight})
		weight -= entityWeightStep
		if weight < minEntityWeight {
			weight = minEntityWeight
		}
	}

	return queries, nil
}

// Search runs every weighted sub-query against the store, merges hits by
// disease code keeping the maximum weighted score, and returns the top-k.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if opts.TopK <= 0 {
		opts.TopK = 10
	}

	queries, err := s.BuildQueries(query, opts.Labels)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Match)
	for _, wq := range queries {
		vector, err := s.embedder.EmbedSingle(ctx, wq.Query)
		if err != nil {
			return nil, fmt.Errorf("embed sub-query %q: %w", wq.Query, err)
		}

		results, err := s.store.Search(ctx, vector, &types.SearchConfig{
			TopK:     opts.TopK,
			MinScore: opts.ScoreThreshold,
		})
		if err != nil {
			return nil, fmt.Errorf("search sub-query %q: %w", wq.Query, err)
		}

		for _, result := range results {
			code, _ := result.Chunk.Metadata[MetaCode].(string)
			if code == "" {
				code = result.Chunk.ID
			}

			weighted := result.Score * wq.Weight
			if existing, ok := merged[code]; ok && existing.Score >= weighted {
				continue
			}

			match := Match{
				Code:          code,
				Name:          result.Chunk.Content,
				Score:         weighted,
				MatchedQuery:  wq.Query,
				MatchedWeight: wq.Weight,
			}
			if record, ok := s.records[code]; ok {
				match.Name = record.Name
				match.ChapterName = record.ChapterName
				match.SectionName = record.SectionName
			}
			merged[code] = match
		}
	}

	matches := make([]Match, 0, len(merged))
	for _, m := range merged {
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Code < matches[j].Code
	})

	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}

	s.logger.Debug("icd10 search complete",
		"query", query, "sub_queries", len(queries), "matches", len(matches))
	return matches, nil
}

// Detail returns the full record for a disease code.
func (s *Service) Detail(code string) (Record, error) {
	record, ok := s.records[strings.TrimSpace(code)]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
	}
	return record, nil
}
