package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// KeywordHandler serves the admin keyword tracker.
type KeywordHandler struct {
	keywords *services.KeywordService
}

func NewKeywordHandler(keywords *services.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywords: keywords}
}

func (h *KeywordHandler) List(c *gin.Context) {
	filters := repository.KeywordFilters{
		ClientID:  uuidQuery(c, "client_id"),
		IsPrimary: boolQuery(c, "is_primary"),
	}
	keywords, err := h.keywords.List(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", keywords)
}

func (h *KeywordHandler) Create(c *gin.Context) {
	var input services.CreateKeywordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	keyword, err := h.keywords.Create(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Keyword created", keyword)
}

func (h *KeywordHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid keyword id", nil)
		return
	}
	keyword, err := h.keywords.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	rankings, err := h.keywords.LatestRankings(c.Request.Context(), keyword.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"keyword": keyword, "rankings": rankings})
}

func (h *KeywordHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid keyword id", nil)
		return
	}
	var input services.UpdateKeywordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	keyword, err := h.keywords.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Keyword updated", keyword)
}

func (h *KeywordHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid keyword id", nil)
		return
	}
	if err := h.keywords.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Keyword deleted", nil)
}

// AddRanking records one observation against the keyword in the path.
func (h *KeywordHandler) AddRanking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid keyword id", nil)
		return
	}
	var input services.RankingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	input.KeywordID = id
	ranking, err := h.keywords.AddRanking(c.Request.Context(), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Ranking recorded", ranking)
}

type bulkRankingsRequest struct {
	Rankings []services.RankingInput `json:"rankings"`
}

// BulkRankings ingests a batch of observations; bad entries are reported
// beside the successes, never aborting the batch.
func (h *KeywordHandler) BulkRankings(c *gin.Context) {
	var req bulkRankingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.keywords.BulkUpsertRankings(c.Request.Context(), req.Rankings)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Bulk ingest finished", result)
}
