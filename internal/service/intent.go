package service

import (
	"context"
	"log"
	"strings"

	"venuescout/internal/model"
)

// Intent confidence never drops below this floor after merging, so
// downstream fusion cannot zero out on extraction uncertainty alone.
const intentConfidenceFloor = 0.5

// PhraseSource looks up learned phrase patterns for a raw query.
type PhraseSource interface {
	QueryPhrases(ctx context.Context, text string) ([]model.RAGResult, error)
}

// IntentExtractor derives a structured TravelIntent from raw text using
// the completion model and learned phrase patterns. Extraction is best
// effort: it degrades instead of failing.
type IntentExtractor struct {
	ai      AIClient
	phrases PhraseSource
}

// NewIntentExtractor creates a new intent extractor. Both dependencies are
// optional; a nil source simply contributes nothing.
func NewIntentExtractor(ai AIClient, phrases PhraseSource) *IntentExtractor {
	return &IntentExtractor{
		ai:      ai,
		phrases: phrases,
	}
}

// Extract derives an intent from raw text. It never returns an error: any
// internal failure yields a degraded, default-filled intent instead.
func (e *IntentExtractor) Extract(ctx context.Context, text string) *model.TravelIntent {
	text = strings.TrimSpace(text)

	frag, patternConf, phraseOK := e.matchPhrases(ctx, text)

	var ai *AIIntentResponse
	aiOK := false
	if e.ai != nil && e.ai.IsEnabled() {
		result, err := e.ai.ExtractIntent(ctx, text)
		if err != nil {
			log.Printf("AI intent extraction failed: %v, continuing with phrase patterns only", err)
		} else {
			ai = result
			aiOK = true
		}
	}

	intent := mergeIntent(frag, patternConf, ai, text)
	intent.Degraded = !aiOK && !phraseOK
	return intent
}

// matchPhrases absorbs the maps_to fragments of every retrieved phrase
// pattern whose stored phrases literally occur in the lower-cased input.
func (e *IntentExtractor) matchPhrases(ctx context.Context, text string) (*model.IntentFragment, float64, bool) {
	frag := &model.IntentFragment{}
	patternConf := 0.0

	if e.phrases == nil {
		return frag, patternConf, false
	}

	hits, err := e.phrases.QueryPhrases(ctx, text)
	if err != nil {
		log.Printf("Phrase pattern lookup failed: %v, continuing without phrase patterns", err)
		return frag, patternConf, false
	}

	lower := strings.ToLower(text)
	for _, hit := range hits {
		if hit.Phrase == nil {
			continue
		}
		for _, phrase := range hit.Phrase.Phrases {
			if phrase == "" || !strings.Contains(lower, strings.ToLower(phrase)) {
				continue
			}
			absorbFragment(frag, hit.Phrase.MapsTo)
			if hit.Phrase.Confidence > patternConf {
				patternConf = hit.Phrase.Confidence
			}
			break
		}
	}

	return frag, patternConf, true
}

// absorbFragment merges one pattern's fragment into the accumulator.
// First writer wins per scalar field; interests accumulate.
func absorbFragment(acc *model.IntentFragment, frag model.IntentFragment) {
	if acc.BudgetTier == nil && frag.BudgetTier != nil {
		acc.BudgetTier = frag.BudgetTier
	}
	if acc.GroupType == nil && frag.GroupType != nil {
		acc.GroupType = frag.GroupType
	}
	if acc.Pace == nil && frag.Pace != nil {
		acc.Pace = frag.Pace
	}
	acc.Interests = append(acc.Interests, frag.Interests...)
}

// mergeIntent applies the field-precedence rules: scalar fields prefer
// the phrase-pattern value, then the AI guess, then a hard default.
// Interests are the union of both sources. Confidence is the max of both
// source confidences and the floor.
func mergeIntent(frag *model.IntentFragment, patternConf float64, ai *AIIntentResponse, text string) *model.TravelIntent {
	intent := &model.TravelIntent{
		OriginalText: text,
		BudgetTier:   model.BudgetMedium,
		GroupType:    model.GroupSolo,
		Pace:         model.PaceModerate,
	}

	aiConf := 0.0
	if ai != nil {
		aiConf = ai.Confidence
		intent.Destination = strings.ToLower(ai.Destination)
		if ai.StartDate != "" || ai.EndDate != "" {
			intent.Dates = &model.DateRange{Start: ai.StartDate, End: ai.EndDate}
		}
	}

	intent.BudgetTier, intent.BudgetStated = pickScalar(frag.BudgetTier, aiField(ai, func(a *AIIntentResponse) string { return a.BudgetTier }), intent.BudgetTier)
	intent.GroupType, _ = pickScalar(frag.GroupType, aiField(ai, func(a *AIIntentResponse) string { return a.GroupType }), intent.GroupType)
	intent.Pace, _ = pickScalar(frag.Pace, aiField(ai, func(a *AIIntentResponse) string { return a.Pace }), intent.Pace)

	intent.Interests = unionInterests(frag.Interests, aiInterests(ai))

	intent.Confidence = intentConfidenceFloor
	if aiConf > intent.Confidence {
		intent.Confidence = aiConf
	}
	if patternConf > intent.Confidence {
		intent.Confidence = patternConf
	}

	return intent
}

// pickScalar implements per-field precedence: phrase pattern, then AI,
// then default. The second return reports whether a source actually
// stated the value, as opposed to falling through to the default.
func pickScalar(pattern *string, ai string, def string) (string, bool) {
	if pattern != nil && *pattern != "" {
		return *pattern, true
	}
	if ai != "" {
		return ai, true
	}
	return def, false
}

func aiField(ai *AIIntentResponse, get func(*AIIntentResponse) string) string {
	if ai == nil {
		return ""
	}
	return get(ai)
}

func aiInterests(ai *AIIntentResponse) []string {
	if ai == nil {
		return nil
	}
	return ai.Interests
}

// unionInterests merges interest lists, dropping case-insensitive
// duplicates while keeping first-seen order.
func unionInterests(lists ...[]string) []string {
	seen := make(map[string]bool)
	var union []string
	for _, list := range lists {
		for _, interest := range list {
			interest = strings.TrimSpace(interest)
			key := strings.ToLower(interest)
			if interest == "" || seen[key] {
				continue
			}
			seen[key] = true
			union = append(union, interest)
		}
	}
	return union
}
