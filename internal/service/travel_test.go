package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"venuescout/internal/model"
)

// fakeTelemetry records telemetry writes and signals async ones.
type fakeTelemetry struct {
	mu       sync.Mutex
	queries  []string
	bookings []string
	logged   chan struct{}
}

func newFakeTelemetry() *fakeTelemetry {
	return &fakeTelemetry{logged: make(chan struct{}, 8)}
}

func (f *fakeTelemetry) LogQuery(ctx context.Context, query string, intent *model.TravelIntent, resultCount int, venueNames []string, responseTimeMs int) error {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	f.logged <- struct{}{}
	return nil
}

func (f *fakeTelemetry) LogBooking(ctx context.Context, query string, intent *model.TravelIntent, venue model.Venue, satisfaction float64) error {
	f.mu.Lock()
	f.bookings = append(f.bookings, venue.Name)
	f.mu.Unlock()
	f.logged <- struct{}{}
	return nil
}

func (f *fakeTelemetry) waitLogged(t *testing.T) {
	t.Helper()
	select {
	case <-f.logged:
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry write never happened")
	}
}

// fakeCorpus records upserted documents.
type fakeCorpus struct {
	docs map[string]map[string]string // id -> metadata
	err  error
}

func (f *fakeCorpus) UpsertDocument(ctx context.Context, collection, id string, embedding []float32, content any, metadata map[string]string) error {
	if f.err != nil {
		return f.err
	}
	if f.docs == nil {
		f.docs = make(map[string]map[string]string)
	}
	f.docs[collection+"/"+id] = metadata
	return nil
}

func newTestService(index *fakeIndex, ai *stubAI, freshness *FreshnessCache, telemetry *fakeTelemetry) *TravelService {
	retriever := NewRetriever(index, ai, 0.6, 0.6, 5)
	extractor := NewIntentExtractor(ai, retriever)
	recommender := NewRecommender(ai)
	return NewTravelService(extractor, retriever, recommender, ai, freshness, telemetry, &fakeCorpus{})
}

func berlinClubsIndex(t *testing.T) *fakeIndex {
	t.Helper()
	pattern := model.SuccessPattern{
		Destination: "berlin",
		Category:    "nightlife",
		Venues: []model.Venue{
			{Name: "Sisyphos", Type: "club", PriceRange: "€10"},
			{Name: "About Blank", Type: "club", PriceRange: "€12"},
		},
		SuccessRate: 0.9,
		Metadata:    model.PatternMetadata{LocalInsights: []string{"bring cash"}},
	}
	return &fakeIndex{hits: map[string][]model.IndexHit{
		model.CollectionPattern: {patternHit(t, "berlin-clubs", 0.88, pattern)},
	}}
}

func TestTravelService_AnswerQuery(t *testing.T) {
	ai := &stubAI{
		enabled:   true,
		embedding: []float32{0.1, 0.2},
		intent: &AIIntentResponse{
			Destination: "berlin",
			Interests:   []string{"clubs"},
			BudgetTier:  model.BudgetLow,
			GroupType:   model.GroupFriends,
			Confidence:  0.85,
		},
		completion: "These clubs fit a student budget and Berlin's techno scene.",
	}
	telemetry := newFakeTelemetry()
	svc := newTestService(berlinClubsIndex(t), ai, nil, telemetry)

	resp, err := svc.AnswerQuery(context.Background(), "broke students berlin clubs", nil)
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	if resp.Intent.Destination != "berlin" || resp.Intent.BudgetTier != model.BudgetLow {
		t.Errorf("intent = %+v, want berlin/low", resp.Intent)
	}
	if resp.Recommendation.Source != model.SourceCorpus {
		t.Errorf("Source = %q, want %q", resp.Recommendation.Source, model.SourceCorpus)
	}
	if len(resp.Recommendation.Venues) != 2 {
		t.Errorf("got %d venues, want 2", len(resp.Recommendation.Venues))
	}
	if resp.OverallConfidence < 0.5 {
		t.Errorf("OverallConfidence = %.2f, want at least 0.5", resp.OverallConfidence)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "pattern:berlin-clubs" {
		t.Errorf("Sources = %v, want the pattern provenance", resp.Sources)
	}
	if resp.Took < 0 {
		t.Errorf("Took = %d, want non-negative", resp.Took)
	}

	telemetry.waitLogged(t)
	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	if len(telemetry.queries) != 1 || telemetry.queries[0] != "broke students berlin clubs" {
		t.Errorf("logged queries = %v", telemetry.queries)
	}
}

func TestTravelService_AnswerQueryFallback(t *testing.T) {
	ai := &stubAI{
		enabled:   true,
		embedding: []float32{0.1},
		intent:    &AIIntentResponse{Destination: "bielefeld", Interests: []string{"jazz"}, Confidence: 0.7},
	}
	index := &fakeIndex{hits: map[string][]model.IndexHit{}}
	svc := newTestService(index, ai, nil, newFakeTelemetry())

	resp, err := svc.AnswerQuery(context.Background(), "jazz bars in bielefeld", nil)
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	if resp.Recommendation.Source != model.SourceFallback {
		t.Errorf("Source = %q, want %q", resp.Recommendation.Source, model.SourceFallback)
	}
	found := false
	for _, s := range resp.Sources {
		if s == model.SourceFallback {
			found = true
		}
	}
	if !found {
		t.Errorf("Sources = %v, want the fallback marker", resp.Sources)
	}
}

func TestTravelService_AnswerQueryRetrievalFailure(t *testing.T) {
	ai := &stubAI{enabled: true, embedErr: errors.New("quota exceeded")}
	index := &fakeIndex{}
	svc := newTestService(index, ai, nil, newFakeTelemetry())

	if _, err := svc.AnswerQuery(context.Background(), "berlin clubs", nil); err == nil {
		t.Fatal("AnswerQuery() should fail when retrieval fails")
	}
}

func TestTravelService_HintsOverrideIntent(t *testing.T) {
	ai := &stubAI{
		enabled:   true,
		embedding: []float32{0.1},
		intent:    &AIIntentResponse{Destination: "berlin", BudgetTier: model.BudgetLow, Confidence: 0.8},
	}
	index := &fakeIndex{hits: map[string][]model.IndexHit{}}
	svc := newTestService(index, ai, nil, newFakeTelemetry())

	hints := &model.QueryHints{Destination: "hamburg", Category: "food"}
	if _, err := svc.AnswerQuery(context.Background(), "cheap eats", hints); err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	if index.lastFilter["destination"] != "hamburg" {
		t.Errorf("destination filter = %q, want hint override", index.lastFilter["destination"])
	}
	if index.lastFilter["budget_tier"] != model.BudgetLow {
		t.Errorf("budget filter = %q, want intent value kept", index.lastFilter["budget_tier"])
	}
	if index.lastFilter["category"] != "food" {
		t.Errorf("category filter = %q, want hint", index.lastFilter["category"])
	}
}

func TestTravelService_DefaultBudgetDoesNotFilter(t *testing.T) {
	// No budget cue anywhere: the merged intent carries the medium
	// default, but the pattern filter must not narrow on it, or
	// tier-less corpus patterns become unreachable.
	ai := &stubAI{
		enabled:   true,
		embedding: []float32{0.1},
		intent:    &AIIntentResponse{Destination: "berlin", Interests: []string{"clubs"}, Confidence: 0.8},
	}
	index := berlinClubsIndex(t)
	svc := newTestService(index, ai, nil, newFakeTelemetry())

	resp, err := svc.AnswerQuery(context.Background(), "berlin clubs", nil)
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	if _, ok := index.lastFilter["budget_tier"]; ok {
		t.Errorf("defaulted budget tier leaked into the filter: %v", index.lastFilter)
	}
	if index.lastFilter["destination"] != "berlin" {
		t.Errorf("destination filter = %q, want berlin", index.lastFilter["destination"])
	}
	if resp.Intent.BudgetTier != model.BudgetMedium || resp.Intent.BudgetStated {
		t.Errorf("intent budget = %q stated=%v, want the unstated medium default",
			resp.Intent.BudgetTier, resp.Intent.BudgetStated)
	}
	if resp.Recommendation.Source != model.SourceCorpus {
		t.Errorf("Source = %q, want corpus (tier-less pattern reachable)", resp.Recommendation.Source)
	}
}

func TestTravelService_FreshnessAnnotatesClosedVenues(t *testing.T) {
	ai := &stubAI{
		enabled:   true,
		embedding: []float32{0.1},
		intent:    &AIIntentResponse{Destination: "berlin", Confidence: 0.8},
	}
	validator := &stubValidator{statuses: map[string]string{"About Blank": model.FreshnessClosed}}
	freshness := NewFreshnessCache(validator, time.Hour)
	svc := newTestService(berlinClubsIndex(t), ai, freshness, newFakeTelemetry())

	resp, err := svc.AnswerQuery(context.Background(), "berlin clubs", nil)
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}

	for _, v := range resp.Recommendation.Venues {
		closed := false
		for _, note := range v.SpecialNotes {
			if strings.Contains(note, "possibly closed") {
				closed = true
			}
		}
		switch v.Name {
		case "About Blank":
			if !closed {
				t.Errorf("%s should carry a closed note", v.Name)
			}
		default:
			if closed {
				t.Errorf("%s should not carry a closed note", v.Name)
			}
		}
	}
}

func TestTravelService_RecordBooking(t *testing.T) {
	telemetry := newFakeTelemetry()
	svc := newTestService(&fakeIndex{}, &stubAI{}, nil, telemetry)

	svc.RecordBooking("berlin clubs", &model.TravelIntent{Destination: "berlin"},
		model.Venue{Name: "Sisyphos", Type: "club"}, 4.5)

	telemetry.waitLogged(t)
	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	if len(telemetry.bookings) != 1 || telemetry.bookings[0] != "Sisyphos" {
		t.Errorf("logged bookings = %v", telemetry.bookings)
	}
}

func TestTravelService_UpsertPatterns(t *testing.T) {
	ai := &stubAI{enabled: true, embedding: []float32{0.1, 0.2}}
	corpus := &fakeCorpus{}
	retriever := NewRetriever(&fakeIndex{}, ai, 0.6, 0.6, 5)
	svc := NewTravelService(NewIntentExtractor(ai, retriever), retriever, NewRecommender(ai), ai, nil, newFakeTelemetry(), corpus)

	patterns := []model.SuccessPattern{
		{Destination: "Berlin", Category: "nightlife", BudgetTier: model.BudgetLow,
			Venues: []model.Venue{{Name: "Sisyphos", Type: "club"}}},
		{ID: "custom-id", Destination: "tokyo", Category: "food"},
	}

	success, errs := svc.UpsertPatterns(context.Background(), patterns)
	if success != 2 || len(errs) != 0 {
		t.Fatalf("UpsertPatterns() = %d success, errs %v", success, errs)
	}

	meta, ok := corpus.docs["pattern/pattern:berlin:nightlife"]
	if !ok {
		t.Fatal("auto-generated pattern ID missing from corpus")
	}
	if meta["destination"] != "berlin" || meta["category"] != "nightlife" || meta["budget_tier"] != model.BudgetLow {
		t.Errorf("pattern metadata = %v", meta)
	}
	if _, ok := corpus.docs["pattern/custom-id"]; !ok {
		t.Error("explicit pattern ID not honored")
	}
}

func TestTravelService_UpsertPhrasesReportsPerItemErrors(t *testing.T) {
	ai := &stubAI{enabled: true, embedding: []float32{0.1}}
	corpus := &fakeCorpus{err: errors.New("index unavailable")}
	retriever := NewRetriever(&fakeIndex{}, ai, 0.6, 0.6, 5)
	svc := NewTravelService(NewIntentExtractor(ai, retriever), retriever, NewRecommender(ai), ai, nil, newFakeTelemetry(), corpus)

	phrases := []model.LanguagePattern{
		{Phrases: []string{"broke"}, Confidence: 0.9},
		{Phrases: []string{"on a budget"}, Confidence: 0.8},
	}

	success, errs := svc.UpsertPhrases(context.Background(), phrases)
	if success != 0 {
		t.Errorf("success = %d, want 0", success)
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2 (one per failed item)", len(errs))
	}
}
