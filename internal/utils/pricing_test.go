package utils

import (
	"testing"
)

func TestPriceRangeForTier(t *testing.T) {
	tests := []struct {
		tier string
		want string
	}{
		{"low", "€5-20"},
		{"medium", "€20-50"},
		{"high", "€50-100"},
		{"luxury", "€100+"},
		{"", "€20-50"},
		{"unknown", "€20-50"},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			if got := PriceRangeForTier(tt.tier); got != tt.want {
				t.Errorf("PriceRangeForTier(%q) = %q, want %q", tt.tier, got, tt.want)
			}
		})
	}
}

func TestPriceWithinTier(t *testing.T) {
	tests := []struct {
		name       string
		priceRange string
		tier       string
		want       bool
	}{
		{"empty price always passes", "", "low", true},
		{"free marker passes low tier", "free entry", "low", true},
		{"german free marker", "Eintritt kostenlos", "low", true},
		{"no cover passes", "no cover before 23:00", "low", true},
		{"cheap entry within low", "€15 entry", "low", true},
		{"expensive entry exceeds low", "€45 cover", "low", false},
		{"boundary amount passes", "€20", "low", true},
		{"mid price within medium", "€35 per person", "medium", true},
		{"mid price exceeds low", "€35 per person", "low", false},
		{"luxury is uncapped", "€500 tasting menu", "luxury", true},
		{"unknown tier is uncapped", "€500", "", true},
		{"unparseable price passes", "€€€", "low", true},
		{"range uses first token", "20-30€", "low", true},
		{"decimal comma parses", "€12,50", "low", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceWithinTier(tt.priceRange, tt.tier); got != tt.want {
				t.Errorf("PriceWithinTier(%q, %q) = %v, want %v", tt.priceRange, tt.tier, got, tt.want)
			}
		})
	}
}

func TestExtractPriceAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"plain euro amount", "€15 entry", 15, true},
		{"decimal point", "€12.50", 12.5, true},
		{"decimal comma", "€12,50", 12.5, true},
		{"first token of range", "20-30€", 20, true},
		{"no digits", "free", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPriceAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractPriceAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractPriceAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
