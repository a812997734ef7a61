package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rag "github.com/yilane/rag-related"
	"github.com/yilane/rag-related/pkg/config"
	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/icd10"
	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/server/dto"
	"github.com/yilane/rag-related/pkg/types"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

func newTestServer(t *testing.T, llm nlp.Client) *Server {
	t.Helper()

	emb := embedder.NewMockClient(16)
	store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)
	client := rag.NewClient(llm, emb, store, nil)

	icd10Store, err := vectorstore.NewFlatStore(vectorstore.MetricL2)
	require.NoError(t, err)
	records := []icd10.Record{
		{Code: "I10", Name: "特发性(原发性)高血压", ChapterName: "循环系统疾病"},
		{Code: "E11", Name: "2型糖尿病", ChapterName: "内分泌疾病"},
	}
	_, err = icd10.NewBuilder(emb, icd10Store, 0, nil).Build(context.Background(), records)
	require.NoError(t, err)
	svc := icd10.NewService(emb, icd10Store, nil, records, nil, nil)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	s := New(cfg, client, svc)
	s.Setup()
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})

	for _, path := range []string{"/health", "/live", "/health/detailed"} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestIndexAndSearch(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/documents", dto.IndexRequest{
		Documents: []*types.Document{
			{ID: "d1", Source: "notes.md", Content: "向量数据库存储嵌入向量。"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var indexed dto.IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &indexed))
	assert.Equal(t, 1, indexed.Documents)
	assert.GreaterOrEqual(t, indexed.Chunks, 1)

	w = doJSON(t, s, http.MethodPost, "/api/v1/search", dto.SearchRequest{
		Query: "向量数据库存储嵌入向量。",
		TopK:  1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var searched dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &searched))
	require.Len(t, searched.Results, 1)
	assert.Equal(t, "d1", searched.Results[0].Chunk.DocumentID)
}

func TestSearchMissingQuery(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})
	w := doJSON(t, s, http.MethodPost, "/api/v1/search", map[string]any{"top_k": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswer(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{Responses: []string{"它存储嵌入向量。"}})

	w := doJSON(t, s, http.MethodPost, "/api/v1/documents", dto.IndexRequest{
		Documents: []*types.Document{
			{ID: "d1", Source: "notes.md", Content: "向量数据库存储嵌入向量。"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/answer", dto.AnswerRequest{
		Question: "向量数据库是什么？",
		TopK:     2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var answer dto.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	assert.Equal(t, "它存储嵌入向量。", answer.Answer)
	assert.NotEmpty(t, answer.Sources)
}

func TestAnswerNoContext(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{Responses: []string{"unused"}})
	w := doJSON(t, s, http.MethodPost, "/api/v1/answer", dto.AnswerRequest{Question: "q"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestICD10Search(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/icd10/search", dto.ICD10SearchRequest{
		Query: "2型糖尿病",
		TopK:  1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.ICD10SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "E11", resp.Matches[0].Code)
}

func TestICD10Detail(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/icd10/codes/I10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ICD10DetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "特发性(原发性)高血压", resp.Record.Name)

	w = doJSON(t, s, http.MethodGet, "/api/v1/icd10/codes/ZZZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &nlp.MockClient{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
