package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yilane/rag-related/pkg/icd10"
	"github.com/yilane/rag-related/pkg/server/dto"
)

// ICD10Handler exposes the disease code search service.
type ICD10Handler struct {
	service *icd10.Service
}

// NewICD10Handler creates an ICD-10 handler.
func NewICD10Handler(service *icd10.Service) *ICD10Handler {
	return &ICD10Handler{service: service}
}

// Search handles POST /api/v1/icd10/search.
func (h *ICD10Handler) Search(c *gin.Context) {
	var req dto.ICD10SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err.Error()))
		return
	}

	matches, err := h.service.Search(c.Request.Context(), req.Query, icd10.SearchOptions{
		TopK:           req.TopK,
		ScoreThreshold: req.ScoreThreshold,
		Labels:         req.Labels,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, icd10.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.ICD10SearchResponse{Query: req.Query, Matches: matches})
}

// Detail handles GET /api/v1/icd10/codes/:code.
func (h *ICD10Handler) Detail(c *gin.Context) {
	record, err := h.service.Detail(c.Param("code"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, icd10.ErrCodeNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, dto.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.ICD10DetailResponse{Record: record})
}
