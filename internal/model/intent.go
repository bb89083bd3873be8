package model

// Budget tiers, group types and pacing values used across intent
// extraction, retrieval filters and the day scheduler.
const (
	BudgetLow    = "low"
	BudgetMedium = "medium"
	BudgetHigh   = "high"
	BudgetLuxury = "luxury"

	GroupSolo    = "solo"
	GroupCouple  = "couple"
	GroupFriends = "friends"
	GroupFamily  = "family"

	PaceRelaxed   = "relaxed"
	PaceModerate  = "moderate"
	PaceIntensive = "intensive"
)

// DateRange holds optional trip dates as ISO date strings (YYYY-MM-DD).
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// TravelIntent is the structured interpretation of a free-text travel request.
// Confidence never drops below 0.5 after merging: it means "good enough to
// act on", not statistical certainty.
type TravelIntent struct {
	Destination  string     `json:"destination,omitempty"`
	Dates        *DateRange `json:"dates,omitempty"`
	Interests    []string   `json:"interests,omitempty"`
	BudgetTier   string     `json:"budget_tier"`
	// BudgetStated distinguishes a tier the traveller actually expressed
	// from the merge default; only a stated tier narrows retrieval.
	BudgetStated bool   `json:"budget_stated,omitempty"`
	GroupType    string `json:"group_type"`
	Pace         string `json:"pace"`
	OriginalText string     `json:"original_text"`
	Confidence   float64    `json:"confidence"`
	Degraded     bool       `json:"degraded,omitempty"`
}

// PrimaryInterest returns the first stated interest, if any.
func (t *TravelIntent) PrimaryInterest() string {
	if len(t.Interests) > 0 {
		return t.Interests[0]
	}
	return ""
}

// IntentFragment is a partial intent contributed by a matched language
// pattern. Nil pointer fields mean "no opinion".
type IntentFragment struct {
	BudgetTier *string  `json:"budget_tier,omitempty"`
	GroupType  *string  `json:"group_type,omitempty"`
	Pace       *string  `json:"pace,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// LanguagePattern maps colloquial phrasings to an intent fragment. It is
// used only during extraction and never surfaced to the user.
type LanguagePattern struct {
	ID         string         `json:"id"`
	Phrases    []string       `json:"phrases"`
	MapsTo     IntentFragment `json:"maps_to"`
	Confidence float64        `json:"confidence"`
}
