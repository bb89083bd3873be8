package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OpeningHours holds daily opening times as HH:MM strings. A close time
// numerically earlier than the open time marks an overnight venue.
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Venue is a concrete recommendable place. Name plus Type form its
// identity for deduplication.
type Venue struct {
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Address       string        `json:"address,omitempty"`
	PriceRange    string        `json:"price_range,omitempty"`
	BookingMethod string        `json:"booking_method,omitempty"`
	Rating        float64       `json:"rating,omitempty"`
	Coordinates   *Coordinates  `json:"coordinates,omitempty"`
	OpeningHours  *OpeningHours `json:"opening_hours,omitempty"`
	SpecialNotes  []string      `json:"special_notes,omitempty"`
}

// Key returns the dedup identity: two venues are duplicates iff their
// lower-cased names and types match exactly.
func (v Venue) Key() string {
	return strings.ToLower(v.Name) + "|" + v.Type
}

// PatternMetadata carries free-text signals attached to a success pattern.
type PatternMetadata struct {
	LocalInsights []string `json:"local_insights,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// SuccessPattern is a destination+category cluster of venues with
// historical success signals. Immutable once retrieved; updated only by
// re-upsert through the corpus path.
type SuccessPattern struct {
	ID               string          `json:"id"`
	Destination      string          `json:"destination"`
	Category         string          `json:"category"`
	BudgetTier       string          `json:"budget_tier,omitempty"`
	Venues           []Venue         `json:"venues"`
	SuccessRate      float64         `json:"success_rate"`
	UserSatisfaction float64         `json:"user_satisfaction"`
	Metadata         PatternMetadata `json:"metadata"`
}

// FreshnessResult is the outcome of an external venue-freshness check.
type FreshnessResult struct {
	Status        string            `json:"status"` // open, closed, uncertain
	Confidence    float64           `json:"confidence"`
	UpdatedFields map[string]string `json:"updated_fields,omitempty"`
}

const (
	FreshnessOpen      = "open"
	FreshnessClosed    = "closed"
	FreshnessUncertain = "uncertain"
)

// JSONMap is a JSONB object column helper.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
