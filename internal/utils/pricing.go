package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Venue price strings are free text ("€15 entry", "€€", "free", "20-30€"),
// so budget policy lives in explicit rule tables rather than inline scans.

// tierPriceRanges is the display price range per budget tier, used by the
// fallback recommendation.
var tierPriceRanges = map[string]string{
	"low":    "€5-20",
	"medium": "€20-50",
	"high":   "€50-100",
	"luxury": "€100+",
}

// tierCeilings caps the per-activity spend the scheduler accepts for a
// tier. Luxury is uncapped.
var tierCeilings = map[string]float64{
	"low":    20,
	"medium": 50,
	"high":   100,
}

// freeMarkers are price-string tokens that always pass the budget check.
var freeMarkers = []string{"free", "kostenlos", "gratis", "no cover"}

// PriceRangeForTier returns the display price range for a budget tier.
// Unknown tiers fall back to medium.
func PriceRangeForTier(tier string) string {
	if r, ok := tierPriceRanges[tier]; ok {
		return r
	}
	return tierPriceRanges["medium"]
}

// PriceWithinTier reports whether a free-text price string fits a budget
// tier. Missing or unparseable prices pass: the scheduler prefers
// including a venue over guessing it unaffordable.
func PriceWithinTier(priceRange, tier string) bool {
	if priceRange == "" {
		return true
	}

	lower := strings.ToLower(priceRange)
	for _, marker := range freeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	ceiling, capped := tierCeilings[tier]
	if !capped {
		return true
	}

	amount, ok := ExtractPriceAmount(priceRange)
	if !ok {
		return true
	}
	return amount <= ceiling
}

var priceTokenRe = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

// ExtractPriceAmount returns the first numeric token of a free-text price
// string. Missing tokens report false; callers treat that as a contribution
// of zero, an intentional undercount.
func ExtractPriceAmount(s string) (float64, bool) {
	token := priceTokenRe.FindString(s)
	if token == "" {
		return 0, false
	}
	token = strings.ReplaceAll(token, ",", ".")
	amount, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
