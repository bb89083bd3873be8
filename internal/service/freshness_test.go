package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"venuescout/internal/model"
)

// stubValidator returns a fixed status per venue name and counts calls.
type stubValidator struct {
	statuses map[string]string
	errs     map[string]error
	calls    int
}

func (v *stubValidator) Validate(ctx context.Context, venue model.Venue) (*model.FreshnessResult, error) {
	v.calls++
	if err, ok := v.errs[venue.Name]; ok {
		return nil, err
	}
	status := v.statuses[venue.Name]
	if status == "" {
		status = model.FreshnessOpen
	}
	return &model.FreshnessResult{Status: status, Confidence: 0.9}, nil
}

func TestFreshnessCache_CachesWithinTTL(t *testing.T) {
	validator := &stubValidator{}
	cache := NewFreshnessCache(validator, 24*time.Hour)

	clock := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	venue := model.Venue{Name: "Berghain", Type: "club"}

	if _, err := cache.Check(context.Background(), venue); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if validator.calls != 1 {
		t.Fatalf("validator called %d times, want 1", validator.calls)
	}

	// Second check within the TTL hits the cache.
	clock = clock.Add(23 * time.Hour)
	if _, err := cache.Check(context.Background(), venue); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if validator.calls != 1 {
		t.Errorf("validator called %d times, want 1 (cached)", validator.calls)
	}

	// Past the TTL the entry is stale and revalidates.
	clock = clock.Add(2 * time.Hour)
	if _, err := cache.Check(context.Background(), venue); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if validator.calls != 2 {
		t.Errorf("validator called %d times, want 2 (expired)", validator.calls)
	}
}

func TestFreshnessCache_KeyIncludesType(t *testing.T) {
	validator := &stubValidator{}
	cache := NewFreshnessCache(validator, time.Hour)

	if _, err := cache.Check(context.Background(), model.Venue{Name: "Berghain", Type: "club"}); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if _, err := cache.Check(context.Background(), model.Venue{Name: "Berghain", Type: "restaurant"}); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if validator.calls != 2 {
		t.Errorf("validator called %d times, want 2 (different identities)", validator.calls)
	}
}

func TestFreshnessCache_BatchIsolatesFailures(t *testing.T) {
	validator := &stubValidator{
		statuses: map[string]string{"Tresor": model.FreshnessClosed},
		errs:     map[string]error{"Sisyphos": errors.New("upstream 500")},
	}
	cache := NewFreshnessCache(validator, time.Hour)

	venues := []model.Venue{
		{Name: "Berghain", Type: "club"},
		{Name: "Sisyphos", Type: "club"},
		{Name: "Tresor", Type: "club"},
	}

	results := cache.CheckBatch(context.Background(), venues)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (failed venue skipped)", len(results))
	}
	if _, ok := results[model.Venue{Name: "Sisyphos", Type: "club"}.Key()]; ok {
		t.Error("failed venue should be absent from the result map")
	}
	if r := results[model.Venue{Name: "Tresor", Type: "club"}.Key()]; r == nil || r.Status != model.FreshnessClosed {
		t.Errorf("Tresor result = %+v, want closed", r)
	}
}

func TestFreshnessCache_GrowsUnbounded(t *testing.T) {
	validator := &stubValidator{}
	cache := NewFreshnessCache(validator, time.Nanosecond)

	clock := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		venue := model.Venue{Name: fmt.Sprintf("venue-%d", i), Type: "club"}
		if _, err := cache.Check(context.Background(), venue); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		clock = clock.Add(time.Minute)
	}

	// Expired entries are never evicted; the cache only grows.
	if cache.Len() != 100 {
		t.Errorf("Len() = %d, want 100", cache.Len())
	}
}
