package handler

import (
	"net/http"

	"venuescout/internal/model"
	"venuescout/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles booking-feedback HTTP requests
type FeedbackHandler struct {
	travelService *service.TravelService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(travelService *service.TravelService) *FeedbackHandler {
	return &FeedbackHandler{
		travelService: travelService,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Satisfaction < 0 || req.Satisfaction > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Satisfaction must be between 0 and 5"})
		return
	}

	// Fire-and-forget by design
	h.travelService.RecordBooking(req.Query, req.Intent, req.Venue, req.Satisfaction)

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Booking feedback recorded",
	})
}
