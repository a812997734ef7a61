package icd10

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/ner"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

const sampleCSV = `疾病编码,疾病名称,章编码,章名称,节编码,节名称
I10,原发性高血压,IX,循环系统疾病,I10-I15,高血压病
E11,2型糖尿病,IV,内分泌疾病,E10-E14,糖尿病
I10,重复的高血压行,IX,循环系统疾病,I10-I15,高血压病
J45,,X,呼吸系统疾病,J40-J47,慢性下呼吸道疾病
,孤儿名称,X,呼吸系统疾病,J40-J47,慢性下呼吸道疾病
J18,肺炎,X,呼吸系统疾病,J09-J18,流感和肺炎
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Duplicate I10 keeps the first row; rows missing code or name drop.
	require.Len(t, records, 3)
	assert.Equal(t, "I10", records[0].Code)
	assert.Equal(t, "原发性高血压", records[0].Name)
	assert.Equal(t, "循环系统疾病", records[0].ChapterName)
	assert.Equal(t, "高血压病", records[0].SectionName)
	assert.Equal(t, "E11", records[1].Code)
	assert.Equal(t, "J18", records[2].Code)
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func buildTestService(t *testing.T, recognizer ner.Recognizer) (*Service, []Record) {
	t.Helper()

	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	emb := embedder.NewMockClient(16)
	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)

	builder := NewBuilder(emb, store, 2, nil)
	n, err := builder.Build(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, len(records), n)

	return NewService(emb, store, recognizer, records, nil, nil), records
}

func TestBuildQueriesWeights(t *testing.T) {
	recognizer := &ner.MockRecognizer{Entities: []types.Entity{
		{Text: "高血压", Label: "疾病", Score: 0.9},
		{Text: "头痛", Label: "症状", Score: 0.8},
		{Text: "高血压", Label: "疾病", Score: 0.7}, // duplicate dropped
	}}
	svc, _ := buildTestService(t, recognizer)

	queries, err := svc.BuildQueries("患者有高血压和头痛", nil)
	require.NoError(t, err)
	require.Len(t, queries, 3)

	assert.Equal(t, types.WeightedQuery{Query: "患者有高血压和头痛", Weight: 1.0}, queries[0])
	assert.Equal(t, types.WeightedQuery{Query: "高血压", Weight: 0.8}, queries[1])
	assert.InDelta(t, 0.7, queries[2].Weight, 1e-9)
	assert.Equal(t, "头痛", queries[2].Query)
}

func TestBuildQueriesWithoutRecognizer(t *testing.T) {
	svc, _ := buildTestService(t, nil)

	queries, err := svc.BuildQueries("高血压", nil)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, 1.0, queries[0].Weight)
}

func TestBuildQueriesLabelsReachRecognizer(t *testing.T) {
	recognizer := &ner.MockRecognizer{}
	svc := NewService(nil, nil, recognizer, nil, nil, nil)

	// With no labels in the call, the service's configured set is used.
	_, err := svc.BuildQueries("高血压伴头痛", nil)
	require.NoError(t, err)
	require.Len(t, recognizer.Calls, 1)
	assert.Equal(t, DefaultLabels, recognizer.Calls[0])

	// Explicit labels win over the configured set.
	_, err = svc.BuildQueries("高血压伴头痛", []string{"药物"})
	require.NoError(t, err)
	require.Len(t, recognizer.Calls, 2)
	assert.Equal(t, []string{"药物"}, recognizer.Calls[1])
}

func TestSearchUsesConfiguredLabels(t *testing.T) {
	recognizer := &ner.MockRecognizer{Entities: []types.Entity{
		{Text: "肺炎", Label: "疾病", Score: 0.9},
	}}
	svc, _ := buildTestService(t, recognizer)

	_, err := svc.Search(context.Background(), "患者疑似肺炎", SearchOptions{TopK: 3})
	require.NoError(t, err)
	require.Len(t, recognizer.Calls, 1)
	assert.Equal(t, DefaultLabels, recognizer.Calls[0])
}

func TestSearchMergesByCode(t *testing.T) {
	// Recognizer emits the exact disease name, so the entity sub-query scores
	// a perfect raw match on I10 at weight 0.8 while the full query scores
	// lower raw similarity at weight 1.0. Merge keeps the higher weighted score.
	recognizer := &ner.MockRecognizer{Entities: []types.Entity{
		{Text: "原发性高血压", Label: "疾病", Score: 0.95},
	}}
	svc, _ := buildTestService(t, recognizer)

	matches, err := svc.Search(context.Background(), "患者确诊原发性高血压", SearchOptions{TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.Equal(t, "I10", matches[0].Code)
	assert.Equal(t, "原发性高血压", matches[0].Name)
	assert.Equal(t, "循环系统疾病", matches[0].ChapterName)
	// Exact embedding match scores 1.0 raw, weighted by 0.8.
	assert.InDelta(t, 0.8, matches[0].Score, 1e-6)
	assert.Equal(t, "原发性高血压", matches[0].MatchedQuery)

	// Codes appear once despite multiple sub-queries.
	seen := map[string]bool{}
	for _, m := range matches {
		assert.False(t, seen[m.Code], "duplicate code %s", m.Code)
		seen[m.Code] = true
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := buildTestService(t, nil)
	_, err := svc.Search(context.Background(), "   ", SearchOptions{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchTopK(t *testing.T) {
	svc, _ := buildTestService(t, nil)
	matches, err := svc.Search(context.Background(), "疾病", SearchOptions{TopK: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestDetail(t *testing.T) {
	svc, records := buildTestService(t, nil)

	record, err := svc.Detail("E11")
	require.NoError(t, err)
	assert.Equal(t, records[1], record)

	_, err = svc.Detail("Z99")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}
