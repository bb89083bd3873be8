package handler

import (
	"net/http"

	"venuescout/internal/model"
	"venuescout/internal/service"

	"github.com/gin-gonic/gin"
)

// QueryHandler handles travel query HTTP requests
type QueryHandler struct {
	travelService *service.TravelService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(travelService *service.TravelService) *QueryHandler {
	return &QueryHandler{
		travelService: travelService,
	}
}

// Answer handles POST /api/v1/query
func (h *QueryHandler) Answer(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.travelService.AnswerQuery(c.Request.Context(), req.Query, req.Hints)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
