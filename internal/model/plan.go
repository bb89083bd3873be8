package model

// TimeSlot is a filled position in a day plan. TravelTime is minutes from
// the previous slot and is computed only between consecutive slots.
type TimeSlot struct {
	Time       string   `json:"time"` // HH:MM
	Activity   Venue    `json:"activity"`
	SlotType   string   `json:"slot_type,omitempty"`
	TravelTime *int     `json:"travel_time_min,omitempty"`
	Tips       []string `json:"tips,omitempty"`
	Fixed      bool     `json:"fixed,omitempty"`
}

// DayPlan is a date-scoped, strictly time-ordered sequence of slots.
type DayPlan struct {
	Date           string     `json:"date"`
	Slots          []TimeSlot `json:"slots"`
	Warnings       []string   `json:"warnings,omitempty"`
	TotalCost      float64    `json:"total_cost"`
	TotalWalkingKm float64    `json:"total_walking_km"`
}

// SchedulePreferences steer slot selection in the day scheduler.
type SchedulePreferences struct {
	BudgetTier string   `json:"budget_tier,omitempty"`
	Pace       string   `json:"pace,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// DayPlanRequest asks the scheduler for a full-day plan.
type DayPlanRequest struct {
	Date          string              `json:"date" binding:"required"` // YYYY-MM-DD
	Activities    []Venue             `json:"activities"`
	FixedBookings []TimeSlot          `json:"fixed_bookings,omitempty"`
	Preferences   SchedulePreferences `json:"preferences"`
}
