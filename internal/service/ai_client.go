package service

import (
	"context"
)

// AIClient is the interface for the embedding/completion provider
type AIClient interface {
	// ExtractIntent parses a free-text travel request into a structured guess
	ExtractIntent(ctx context.Context, query string) (*AIIntentResponse, error)

	// Complete generates free text from a prompt
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

	// CreateEmbeddings generates embeddings for texts
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// AIIntentResponse is the structured intent guess returned by the
// completion model. Omitted fields mean "not mentioned".
type AIIntentResponse struct {
	Destination string   `json:"destination,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	BudgetTier  string   `json:"budget_tier,omitempty"`
	GroupType   string   `json:"group_type,omitempty"`
	Pace        string   `json:"pace,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
