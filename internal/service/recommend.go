package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"venuescout/internal/model"
	"venuescout/internal/utils"
)

// Fusion limits.
const (
	maxFusedPatterns = 3
	maxVenues        = 5
	maxAlternatives  = 3
	maxLocalTips     = 5
)

// fallbackConfidence marks a synthetic recommendation produced without any
// retrieved pattern.
const fallbackConfidence = 0.3

// genericReasoning substitutes for a failed reasoning completion.
// Reasoning is explanatory sugar, never worth failing a request over.
const genericReasoning = "These venues match travellers with similar interests and budgets who reported successful visits."

// Recommender fuses retrieved success patterns into one deduplicated,
// ranked recommendation.
type Recommender struct {
	ai AIClient
}

// NewRecommender creates a new recommendation engine
func NewRecommender(ai AIClient) *Recommender {
	return &Recommender{ai: ai}
}

// Recommend merges the retrieved patterns into a ranked venue list with
// generated reasoning. With no patterns it returns an explicitly marked
// fallback recommendation instead.
func (r *Recommender) Recommend(ctx context.Context, intent *model.TravelIntent, patterns []model.RAGResult, originalText string) *model.TravelRecommendation {
	if len(patterns) == 0 {
		return r.fallback(intent)
	}

	top := patterns
	if len(top) > maxFusedPatterns {
		top = top[:maxFusedPatterns]
	}

	var flat []model.Venue
	var tips []string
	for _, result := range top {
		if result.Pattern == nil {
			continue
		}
		flat = append(flat, result.Pattern.Venues...)
		tips = append(tips, result.Pattern.Metadata.LocalInsights...)
	}

	deduped := DedupVenues(flat)
	venues := deduped
	var alternatives []model.Venue
	if len(deduped) > maxVenues {
		venues = deduped[:maxVenues]
		alternatives = deduped[maxVenues:]
		if len(alternatives) > maxAlternatives {
			alternatives = alternatives[:maxAlternatives]
		}
	}

	rec := &model.TravelRecommendation{
		Venues:       venues,
		Alternatives: alternatives,
		LocalTips:    dedupStrings(tips, maxLocalTips),
		Confidence:   recommendationConfidence(top, len(venues)),
		Source:       model.SourceCorpus,
	}
	rec.Reasoning = r.generateReasoning(ctx, intent, rec, originalText)
	return rec
}

// fallback builds a synthetic single-venue recommendation from the intent
// alone. Provenance is marked so callers never mistake it for a retrieved
// result.
func (r *Recommender) fallback(intent *model.TravelIntent) *model.TravelRecommendation {
	interest := intent.PrimaryInterest()
	if interest == "" {
		interest = "local favorites"
	}
	destination := intent.Destination
	if destination == "" {
		destination = "your destination"
	}

	venue := model.Venue{
		Name:       fmt.Sprintf("%s in %s", interest, destination),
		Type:       interest,
		PriceRange: utils.PriceRangeForTier(intent.BudgetTier),
	}

	return &model.TravelRecommendation{
		Venues:     []model.Venue{venue},
		Confidence: fallbackConfidence,
		Reasoning: fmt.Sprintf(
			"No prior success pattern covers %s for %s yet; this is a general suggestion based on your stated interests and budget.",
			interest, destination),
		Source: model.SourceFallback,
	}
}

// recommendationConfidence follows the fixed arithmetic: average pattern
// score plus a venue-count bonus of up to 0.2, capped at 1.0.
func recommendationConfidence(patterns []model.RAGResult, venueCount int) float64 {
	if venueCount == 0 {
		return fallbackConfidence
	}

	sum := 0.0
	for _, p := range patterns {
		sum += p.Confidence
	}
	avg := sum / float64(len(patterns))

	bonus := float64(venueCount) / float64(maxVenues)
	if bonus > 1 {
		bonus = 1
	}

	confidence := avg + bonus*0.2
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// OverallConfidence fuses the three per-stage confidences into the single
// user-visible trust signal. With no patterns, the pattern term uses 0.3
// as a stand-in average.
func OverallConfidence(intentConfidence float64, patterns []model.RAGResult, recommendationConf float64) float64 {
	patternAvg := 0.3
	if len(patterns) > 0 {
		sum := 0.0
		for _, p := range patterns {
			sum += p.Confidence
		}
		patternAvg = sum / float64(len(patterns))
	}

	return 0.3*intentConfidence + 0.4*patternAvg + 0.3*recommendationConf
}

// generateReasoning asks the completion model for a short explanation
// connecting the venues to the stated interests and budget, falling back
// to a fixed sentence on any failure.
func (r *Recommender) generateReasoning(ctx context.Context, intent *model.TravelIntent, rec *model.TravelRecommendation, originalText string) string {
	if r.ai == nil || !r.ai.IsEnabled() {
		return genericReasoning
	}

	var sb strings.Builder
	sb.WriteString("A traveller asked: \"")
	sb.WriteString(originalText)
	sb.WriteString("\"\n\nInterpreted intent: destination=")
	sb.WriteString(intent.Destination)
	sb.WriteString(", budget=")
	sb.WriteString(intent.BudgetTier)
	sb.WriteString(", group=")
	sb.WriteString(intent.GroupType)
	sb.WriteString(", interests=")
	sb.WriteString(strings.Join(intent.Interests, ", "))
	sb.WriteString("\n\nRecommended venues:\n")
	for _, v := range rec.Venues {
		sb.WriteString(fmt.Sprintf("- %s (%s", v.Name, v.Type))
		if v.PriceRange != "" {
			sb.WriteString(", " + v.PriceRange)
		}
		if v.Address != "" {
			sb.WriteString(", " + v.Address)
		}
		sb.WriteString(")\n")
	}
	if len(rec.LocalTips) > 0 {
		tips := rec.LocalTips
		if len(tips) > 3 {
			tips = tips[:3]
		}
		sb.WriteString("\nLocal tips:\n")
		for _, tip := range tips {
			sb.WriteString("- " + tip + "\n")
		}
	}
	sb.WriteString("\nWrite a 2-3 sentence explanation of why these venues fit the traveller's stated interests and budget. Speak directly to the traveller.")

	reasoning, err := r.ai.Complete(ctx, sb.String(), 0.7, 300)
	if err != nil {
		log.Printf("Reasoning generation failed: %v, using generic reasoning", err)
		return genericReasoning
	}
	reasoning = strings.TrimSpace(reasoning)
	if reasoning == "" {
		return genericReasoning
	}
	return reasoning
}

// DedupVenues removes duplicate venues by the (lower-cased name, type)
// identity, keeping the first occurrence. Idempotent.
func DedupVenues(venues []model.Venue) []model.Venue {
	seen := make(map[string]bool, len(venues))
	result := make([]model.Venue, 0, len(venues))
	for _, v := range venues {
		key := v.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, v)
	}
	return result
}

func dedupStrings(values []string, max int) []string {
	seen := make(map[string]bool, len(values))
	var result []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		result = append(result, v)
		if len(result) == max {
			break
		}
	}
	return result
}
