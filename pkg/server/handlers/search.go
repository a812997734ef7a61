package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	rag "github.com/yilane/rag-related"
	"github.com/yilane/rag-related/pkg/server/dto"
	"github.com/yilane/rag-related/pkg/types"
)

// SearchHandler exposes indexing, retrieval, and answering.
type SearchHandler struct {
	client rag.RAG
}

// NewSearchHandler creates a search handler over a RAG client.
func NewSearchHandler(client rag.RAG) *SearchHandler {
	return &SearchHandler{client: client}
}

// IndexDocuments handles POST /api/v1/documents.
func (h *SearchHandler) IndexDocuments(c *gin.Context) {
	var req dto.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error()))
		return
	}

	stats, err := h.client.Index(c.Request.Context(), req.Documents)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rag.ErrNoDocuments) || errors.Is(err, types.ErrEmptyContent) || errors.Is(err, types.ErrEmptySource) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.IndexResponse{Documents: stats.Documents, Chunks: stats.Chunks})
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error()))
		return
	}

	results, err := h.client.Retrieve(c.Request.Context(), req.Query, &types.SearchConfig{
		TopK:     req.TopK,
		MinScore: req.MinScore,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrEmptyQuery) || errors.Is(err, types.ErrInvalidTopK) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{Query: req.Query, Results: results})
}

// Answer handles POST /api/v1/answer.
func (h *SearchHandler) Answer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error()))
		return
	}

	answer, err := h.client.Answer(c.Request.Context(), req.Question, &types.SearchConfig{TopK: req.TopK})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, types.ErrEmptyQuery):
			status = http.StatusBadRequest
		case errors.Is(err, rag.ErrNoContext):
			status = http.StatusNotFound
		}
		c.JSON(status, dto.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.AnswerResponse{
		Question: answer.Question,
		Answer:   answer.Text,
		Model:    answer.Model,
		Sources:  answer.Sources,
	})
}
