package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"venuescout/internal/model"
	"venuescout/internal/utils"
)

// Slot types in the day templates.
const (
	SlotBreakfast         = "breakfast"
	SlotMorningActivity   = "morning_activity"
	SlotMiddayActivity    = "midday_activity"
	SlotLunch             = "lunch"
	SlotAfternoonActivity = "afternoon_activity"
	SlotCoffee            = "coffee"
	SlotDinner            = "dinner"
	SlotNightlife         = "nightlife"
	SlotLateNightFood     = "late_night_food"
)

// templateSlot is one fixed position in a pace template.
type templateSlot struct {
	Time string
	Type string
}

// paceTemplates are the fixed, ordered slot lists per pace.
var paceTemplates = map[string][]templateSlot{
	model.PaceRelaxed: {
		{"09:00", SlotBreakfast},
		{"10:30", SlotMorningActivity},
		{"13:00", SlotLunch},
		{"15:00", SlotAfternoonActivity},
		{"19:00", SlotDinner},
	},
	model.PaceModerate: {
		{"08:30", SlotBreakfast},
		{"10:00", SlotMorningActivity},
		{"12:30", SlotLunch},
		{"14:00", SlotAfternoonActivity},
		{"16:30", SlotCoffee},
		{"19:00", SlotDinner},
		{"21:30", SlotNightlife},
	},
	model.PaceIntensive: {
		{"08:00", SlotBreakfast},
		{"09:30", SlotMorningActivity},
		{"11:30", SlotMiddayActivity},
		{"13:00", SlotLunch},
		{"14:30", SlotAfternoonActivity},
		{"17:00", SlotCoffee},
		{"19:00", SlotDinner},
		{"21:00", SlotNightlife},
		{"23:30", SlotLateNightFood},
	},
}

// slotCompat maps meal and nightlife slot types to compatible activity
// types. Generic activity slots (absent here) accept anything not claimed
// by a meal or nightlife list.
var slotCompat = map[string][]string{
	SlotBreakfast:     {"cafe", "breakfast", "bakery"},
	SlotLunch:         {"restaurant", "food", "street_food"},
	SlotDinner:        {"restaurant", "food"},
	SlotCoffee:        {"cafe", "coffee"},
	SlotNightlife:     {"club", "bar", "nightlife"},
	SlotLateNightFood: {"food", "street_food", "restaurant", "imbiss"},
}

// mealishTypes are activity types reserved for meal/nightlife slots and
// therefore excluded from generic activity slots.
var mealishTypes = map[string]bool{
	"cafe": true, "breakfast": true, "bakery": true,
	"restaurant": true, "food": true, "street_food": true, "imbiss": true,
	"coffee": true, "club": true, "bar": true, "nightlife": true,
}

// weekdayClosures hard-codes flagship venues known to close on a specific
// weekday regardless of their stated opening hours. This override takes
// precedence over the generic open-hours check.
var weekdayClosures = map[string]time.Weekday{
	"louvre":          time.Tuesday,
	"berghain":        time.Monday,
	"museum island":   time.Monday,
	"van gogh museum": time.Monday,
}

// museumTypes and outdoorTypes drive the advisory warnings.
var museumTypes = map[string]bool{"museum": true, "gallery": true, "exhibition": true}
var outdoorTypes = map[string]bool{"park": true, "market": true, "beach": true, "garden": true, "rooftop": true, "walking_tour": true}

// defaultDurations are assumed activity lengths in minutes, used only for
// the tight-timing warning.
var defaultDurations = map[string]int{
	SlotBreakfast:     60,
	SlotLunch:         60,
	SlotDinner:        90,
	SlotCoffee:        45,
	SlotLateNightFood: 45,
}

const (
	defaultActivityMinutes = 90
	walkingMetersPerMinute = 80.0
	navigationBufferMin    = 5
	sameDistrictKm         = 0.4
	defaultDistanceKm      = 1.5
)

// Scheduler places ranked venues into a pace-dependent day template under
// opening-hour, budget and travel-time constraints.
type Scheduler struct{}

// NewScheduler creates a new day scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// CreateDayPlan builds a full-day plan for the given date. Fixed bookings
// occupy their stated times unconditionally; remaining template slots are
// filled with the best-matching unused activity. A slot nothing fits is
// omitted, not an error.
func (s *Scheduler) CreateDayPlan(date time.Time, activities []model.Venue, fixedBookings []model.TimeSlot, prefs model.SchedulePreferences) *model.DayPlan {
	template, ok := paceTemplates[prefs.Pace]
	if !ok {
		template = paceTemplates[model.PaceModerate]
	}

	occupied := make(map[string]bool)
	slots := make([]model.TimeSlot, 0, len(template)+len(fixedBookings))
	for _, booking := range fixedBookings {
		if occupied[booking.Time] {
			continue
		}
		booking.Fixed = true
		occupied[booking.Time] = true
		slots = append(slots, booking)
	}

	used := make(map[int]bool)
	for _, tslot := range template {
		if occupied[tslot.Time] {
			continue
		}
		idx := s.pickActivity(tslot, activities, used, prefs, date.Weekday())
		if idx < 0 {
			continue
		}
		used[idx] = true
		occupied[tslot.Time] = true
		slots = append(slots, model.TimeSlot{
			Time:     tslot.Time,
			SlotType: tslot.Type,
			Activity: activities[idx],
			Tips:     activities[idx].SpecialNotes,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return parseMinutes(slots[i].Time) < parseMinutes(slots[j].Time)
	})

	plan := &model.DayPlan{
		Date:  date.Format("2006-01-02"),
		Slots: slots,
	}
	s.computeTravel(plan)
	s.computeTotals(plan)
	plan.Warnings = s.collectWarnings(plan, date.Weekday())
	return plan
}

// pickActivity returns the index of the highest interest-scoring unused
// activity compatible with the slot, or -1. Ties keep input order.
func (s *Scheduler) pickActivity(tslot templateSlot, activities []model.Venue, used map[int]bool, prefs model.SchedulePreferences, weekday time.Weekday) int {
	best := -1
	bestScore := -1
	for i, activity := range activities {
		if used[i] {
			continue
		}
		if !typeCompatible(tslot.Type, activity.Type) {
			continue
		}
		if !openAt(activity, tslot.Time, weekday) {
			continue
		}
		if !utils.PriceWithinTier(activity.PriceRange, prefs.BudgetTier) {
			continue
		}
		score := interestScore(activity, prefs.Interests)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// typeCompatible checks the slot-type-to-activity-type table. Generic
// activity slots take any non-meal, non-nightlife type.
func typeCompatible(slotType, activityType string) bool {
	activityType = strings.ToLower(activityType)
	allowed, ok := slotCompat[slotType]
	if !ok {
		return !mealishTypes[activityType]
	}
	for _, t := range allowed {
		if activityType == t {
			return true
		}
	}
	return false
}

// openAt checks venue availability at an exact slot time. Venues with no
// stated hours are assumed always open. A close time earlier than the open
// time marks an overnight venue, open when the slot time is at or after
// opening or at or before closing.
func openAt(venue model.Venue, slotTime string, weekday time.Weekday) bool {
	if closedDay, ok := weekdayClosures[strings.ToLower(venue.Name)]; ok && closedDay == weekday {
		return false
	}

	if venue.OpeningHours == nil {
		return true
	}

	t := parseMinutes(slotTime)
	open := parseMinutes(venue.OpeningHours.Open)
	close := parseMinutes(venue.OpeningHours.Close)

	if close < open {
		return t >= open || t <= close
	}
	return t >= open && t <= close
}

// interestScore awards 10 points per interest keyword found in the
// activity's name or type.
func interestScore(venue model.Venue, interests []string) int {
	haystack := strings.ToLower(venue.Name + " " + venue.Type)
	score := 0
	for _, interest := range interests {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest != "" && strings.Contains(haystack, interest) {
			score += 10
		}
	}
	return score
}

// computeTravel fills pairwise travel time between consecutive slots and
// the running walking distance. Travel time is never computed globally.
func (s *Scheduler) computeTravel(plan *model.DayPlan) {
	for i := 1; i < len(plan.Slots); i++ {
		km := activityDistanceKm(plan.Slots[i-1].Activity, plan.Slots[i].Activity)
		minutes := int(math.Round(km*1000/walkingMetersPerMinute)) + navigationBufferMin
		plan.Slots[i].TravelTime = &minutes
		plan.TotalWalkingKm += km
	}
	plan.TotalWalkingKm = math.Round(plan.TotalWalkingKm*100) / 100
}

// computeTotals sums the numeric price tokens of all slots. Missing or
// unparseable prices contribute 0; this undercount is intentional.
func (s *Scheduler) computeTotals(plan *model.DayPlan) {
	for _, slot := range plan.Slots {
		if amount, ok := utils.ExtractPriceAmount(slot.Activity.PriceRange); ok {
			plan.TotalCost += amount
		}
	}
}

// collectWarnings emits non-fatal advisory strings: likely Monday museum
// closures, tight timing between consecutive slots, and weather-exposed
// outdoor activities.
func (s *Scheduler) collectWarnings(plan *model.DayPlan, weekday time.Weekday) []string {
	var warnings []string

	if weekday == time.Monday {
		for _, slot := range plan.Slots {
			if museumTypes[strings.ToLower(slot.Activity.Type)] {
				warnings = append(warnings, fmt.Sprintf(
					"%s is a %s and many museums close on Mondays; verify opening before going",
					slot.Activity.Name, slot.Activity.Type))
			}
		}
	}

	for i := 1; i < len(plan.Slots); i++ {
		prev := plan.Slots[i-1]
		cur := plan.Slots[i]
		duration, ok := defaultDurations[prev.SlotType]
		if !ok {
			duration = defaultActivityMinutes
		}
		travel := 0
		if cur.TravelTime != nil {
			travel = *cur.TravelTime
		}
		if parseMinutes(prev.Time)+duration+travel > parseMinutes(cur.Time) {
			warnings = append(warnings, fmt.Sprintf(
				"tight timing between %s (%s) and %s (%s)",
				prev.Activity.Name, prev.Time, cur.Activity.Name, cur.Time))
		}
	}

	for _, slot := range plan.Slots {
		if outdoorTypes[strings.ToLower(slot.Activity.Type)] {
			warnings = append(warnings, fmt.Sprintf(
				"%s is outdoors; have a backup in case of bad weather", slot.Activity.Name))
		}
	}

	return warnings
}

// activityDistanceKm estimates the distance between two activities:
// great-circle when both carry coordinates, otherwise a coarse district
// heuristic.
func activityDistanceKm(a, b model.Venue) float64 {
	if a.Coordinates != nil && b.Coordinates != nil {
		return haversineKm(*a.Coordinates, *b.Coordinates)
	}
	if districtOf(a.Address) != "" && districtOf(a.Address) == districtOf(b.Address) {
		return sameDistrictKm
	}
	return defaultDistanceKm
}

// districtOf extracts the last comma-separated segment of an address as a
// coarse district name.
func districtOf(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}

const earthRadiusKm = 6371.0

// haversineKm computes great-circle distance between two coordinates.
func haversineKm(a, b model.Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// parseMinutes converts an HH:MM string to minutes since midnight.
// Malformed times parse to 0 and sort first.
func parseMinutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	var h, m int
	fmt.Sscanf(parts[0], "%d", &h)
	fmt.Sscanf(parts[1], "%d", &m)
	return h*60 + m
}
