package handler

import (
	"net/http"

	"venuescout/internal/model"
	"venuescout/internal/service"

	"github.com/gin-gonic/gin"
)

// CorpusHandler handles corpus upsert HTTP requests
type CorpusHandler struct {
	travelService *service.TravelService
}

// NewCorpusHandler creates a new corpus handler
func NewCorpusHandler(travelService *service.TravelService) *CorpusHandler {
	return &CorpusHandler{
		travelService: travelService,
	}
}

// BatchUpsert handles POST /api/v1/corpus/batch
func (h *CorpusHandler) BatchUpsert(c *gin.Context) {
	var req model.CorpusBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Patterns) == 0 && len(req.Phrases) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No corpus records provided"})
		return
	}

	success := 0
	var errs []string

	n, patternErrs := h.travelService.UpsertPatterns(c.Request.Context(), req.Patterns)
	success += n
	errs = append(errs, patternErrs...)

	n, phraseErrs := h.travelService.UpsertPhrases(c.Request.Context(), req.Phrases)
	success += n
	errs = append(errs, phraseErrs...)

	response := model.CorpusBatchResponse{
		Success: success,
		Failed:  len(errs),
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
