package model

// Logical collections in the vector index.
const (
	CollectionPattern = "pattern"
	CollectionPhrase  = "phrase"
)

// IndexHit is a raw similarity hit from the vector index. Content is the
// stored JSON payload of the collection's record type.
type IndexHit struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Content  []byte            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RAGResult is a typed retrieval hit. Exactly one of Pattern or Phrase is
// set, according to Type. Ephemeral, produced per query.
type RAGResult struct {
	Type       string           `json:"type"` // pattern or phrase
	Pattern    *SuccessPattern  `json:"pattern,omitempty"`
	Phrase     *LanguagePattern `json:"phrase,omitempty"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
}

// Recommendation provenance markers. A fallback recommendation must never
// be mistaken for a retrieved one by the caller.
const (
	SourceCorpus   = "corpus"
	SourceFallback = "fallback"
)

// TravelRecommendation is the fused, ranked output of the recommendation
// engine.
type TravelRecommendation struct {
	Venues       []Venue  `json:"venues"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	Alternatives []Venue  `json:"alternatives,omitempty"`
	LocalTips    []string `json:"local_tips,omitempty"`
	Source       string   `json:"source"`
}

// QueryHints are optional caller-supplied retrieval filters that override
// the extracted intent.
type QueryHints struct {
	Destination string `json:"destination,omitempty"`
	BudgetTier  string `json:"budget_tier,omitempty"`
	Category    string `json:"category,omitempty"`
}

// QueryRequest is the inbound free-text travel request.
type QueryRequest struct {
	Query string      `json:"query" binding:"required"`
	Hints *QueryHints `json:"hints,omitempty"`
}

// QueryResponse is the complete answer to a travel request.
type QueryResponse struct {
	Intent            *TravelIntent         `json:"intent"`
	Recommendation    *TravelRecommendation `json:"recommendation"`
	OverallConfidence float64               `json:"overall_confidence"`
	Took              int64                 `json:"processing_time_ms"`
	Sources           []string              `json:"sources"`
}

// FeedbackRequest records a successful booking for the learning path.
type FeedbackRequest struct {
	Query        string        `json:"query" binding:"required"`
	Intent       *TravelIntent `json:"intent,omitempty"`
	Venue        Venue         `json:"venue" binding:"required"`
	Satisfaction float64       `json:"satisfaction"`
}

// FeedbackResponse acknowledges a feedback submission.
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CorpusBatchRequest upserts corpus records into the vector index.
type CorpusBatchRequest struct {
	Patterns []SuccessPattern  `json:"patterns,omitempty"`
	Phrases  []LanguagePattern `json:"phrases,omitempty"`
}

// CorpusBatchResponse reports per-item upsert outcomes.
type CorpusBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
