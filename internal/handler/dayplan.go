package handler

import (
	"net/http"
	"time"

	"venuescout/internal/model"
	"venuescout/internal/service"

	"github.com/gin-gonic/gin"
)

// DayPlanHandler handles day-itinerary HTTP requests
type DayPlanHandler struct {
	scheduler *service.Scheduler
}

// NewDayPlanHandler creates a new day plan handler
func NewDayPlanHandler(scheduler *service.Scheduler) *DayPlanHandler {
	return &DayPlanHandler{
		scheduler: scheduler,
	}
}

// Create handles POST /api/v1/dayplan
func (h *DayPlanHandler) Create(c *gin.Context) {
	var req model.DayPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	plan := h.scheduler.CreateDayPlan(date, req.Activities, req.FixedBookings, req.Preferences)
	c.JSON(http.StatusOK, plan)
}
