package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"venuescout/internal/model"
)

// TelemetryStore persists query and booking telemetry.
type TelemetryStore interface {
	LogQuery(ctx context.Context, query string, intent *model.TravelIntent, resultCount int, venueNames []string, responseTimeMs int) error
	LogBooking(ctx context.Context, query string, intent *model.TravelIntent, venue model.Venue, satisfaction float64) error
}

// CorpusStore upserts corpus records into the vector index.
type CorpusStore interface {
	UpsertDocument(ctx context.Context, collection, id string, embedding []float32, content any, metadata map[string]string) error
}

// TravelService runs the full pipeline: intent extraction, pattern
// retrieval, fusion and freshness annotation.
type TravelService struct {
	extractor   *IntentExtractor
	retriever   *Retriever
	recommender *Recommender
	embedder    Embedder
	freshness   *FreshnessCache // optional
	telemetry   TelemetryStore
	corpus      CorpusStore
}

// NewTravelService wires the pipeline components together. Freshness may
// be nil when no validator is deployed.
func NewTravelService(
	extractor *IntentExtractor,
	retriever *Retriever,
	recommender *Recommender,
	embedder Embedder,
	freshness *FreshnessCache,
	telemetry TelemetryStore,
	corpus CorpusStore,
) *TravelService {
	return &TravelService{
		extractor:   extractor,
		retriever:   retriever,
		recommender: recommender,
		embedder:    embedder,
		freshness:   freshness,
		telemetry:   telemetry,
		corpus:      corpus,
	}
}

// AnswerQuery answers a free-text travel request. Extraction degrades
// rather than failing; retrieval failure is the one hard error, because
// no recommendation can be trusted without it.
func (s *TravelService) AnswerQuery(ctx context.Context, text string, hints *model.QueryHints) (*model.QueryResponse, error) {
	startTime := time.Now()

	intent := s.extractor.Extract(ctx, text)

	filters := &PatternFilters{
		Destination: intent.Destination,
	}
	// The merge defaults the tier to medium; filtering on that default
	// would hide every tier-less corpus pattern.
	if intent.BudgetStated {
		filters.BudgetTier = intent.BudgetTier
	}
	if hints != nil {
		if hints.Destination != "" {
			filters.Destination = hints.Destination
		}
		if hints.BudgetTier != "" {
			filters.BudgetTier = hints.BudgetTier
		}
		filters.Category = hints.Category
	}

	patterns, err := s.retriever.QueryPatterns(ctx, text, filters)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	rec := s.recommender.Recommend(ctx, intent, patterns, text)
	s.annotateFreshness(ctx, rec)

	took := time.Since(startTime).Milliseconds()

	sources := make([]string, 0, len(patterns))
	for _, p := range patterns {
		sources = append(sources, p.Source)
	}
	if rec.Source == model.SourceFallback {
		sources = append(sources, model.SourceFallback)
	}

	// Log query (non-blocking)
	go func() {
		venueNames := make([]string, len(rec.Venues))
		for i, v := range rec.Venues {
			venueNames[i] = v.Name
		}
		if err := s.telemetry.LogQuery(context.Background(), text, intent, len(rec.Venues), venueNames, int(took)); err != nil {
			log.Printf("Failed to log query: %v", err)
		}
	}()

	return &model.QueryResponse{
		Intent:            intent,
		Recommendation:    rec,
		OverallConfidence: OverallConfidence(intent.Confidence, patterns, rec.Confidence),
		Took:              took,
		Sources:           sources,
	}, nil
}

// annotateFreshness marks recommended venues the validator reports closed.
// Each venue's check is isolated; failures leave the venue unannotated.
func (s *TravelService) annotateFreshness(ctx context.Context, rec *model.TravelRecommendation) {
	if s.freshness == nil || rec.Source != model.SourceCorpus {
		return
	}

	results := s.freshness.CheckBatch(ctx, rec.Venues)
	for i := range rec.Venues {
		result, ok := results[rec.Venues[i].Key()]
		if !ok {
			continue
		}
		if result.Status == model.FreshnessClosed {
			rec.Venues[i].SpecialNotes = append(rec.Venues[i].SpecialNotes, "possibly closed, verify before visiting")
		}
	}
}

// RecordBooking registers a successful booking for the learning path.
// Fire-and-forget: the write happens in the background and the corpus
// itself is never mutated.
func (s *TravelService) RecordBooking(query string, intent *model.TravelIntent, venue model.Venue, satisfaction float64) {
	log.Printf("Booking recorded: venue=%s type=%s satisfaction=%.1f", venue.Name, venue.Type, satisfaction)
	go func() {
		if err := s.telemetry.LogBooking(context.Background(), query, intent, venue, satisfaction); err != nil {
			log.Printf("Failed to log booking: %v", err)
		}
	}()
}

// UpsertPatterns embeds and upserts success patterns into the pattern
// collection, reporting per-item outcomes.
func (s *TravelService) UpsertPatterns(ctx context.Context, patterns []model.SuccessPattern) (int, []string) {
	success := 0
	var errs []string

	for _, pattern := range patterns {
		id := pattern.ID
		if id == "" {
			id = fmt.Sprintf("pattern:%s:%s", strings.ToLower(pattern.Destination), pattern.Category)
		}

		vectors, err := s.embedder.CreateEmbeddings(ctx, []string{patternEmbeddingText(pattern)})
		if err != nil || len(vectors) == 0 {
			errs = append(errs, fmt.Sprintf("%s: embedding failed: %v", id, err))
			continue
		}

		metadata := map[string]string{
			"destination": strings.ToLower(pattern.Destination),
			"category":    pattern.Category,
		}
		if pattern.BudgetTier != "" {
			metadata["budget_tier"] = pattern.BudgetTier
		}
		if err := s.corpus.UpsertDocument(ctx, model.CollectionPattern, id, vectors[0], pattern, metadata); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		success++
	}

	return success, errs
}

// UpsertPhrases embeds and upserts language patterns into the phrase
// collection.
func (s *TravelService) UpsertPhrases(ctx context.Context, phrases []model.LanguagePattern) (int, []string) {
	success := 0
	var errs []string

	for i, phrase := range phrases {
		id := phrase.ID
		if id == "" {
			id = fmt.Sprintf("phrase:%d", i)
		}

		vectors, err := s.embedder.CreateEmbeddings(ctx, []string{strings.Join(phrase.Phrases, " ")})
		if err != nil || len(vectors) == 0 {
			errs = append(errs, fmt.Sprintf("%s: embedding failed: %v", id, err))
			continue
		}

		if err := s.corpus.UpsertDocument(ctx, model.CollectionPhrase, id, vectors[0], phrase, nil); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		success++
	}

	return success, errs
}

// patternEmbeddingText builds the text a pattern is indexed under.
func patternEmbeddingText(pattern model.SuccessPattern) string {
	parts := []string{pattern.Destination, pattern.Category}
	for _, v := range pattern.Venues {
		parts = append(parts, v.Name, v.Type)
	}
	return strings.Join(parts, " ")
}
