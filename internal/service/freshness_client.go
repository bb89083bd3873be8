package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"venuescout/internal/model"
)

// HTTPFreshnessValidator calls an external freshness-validation endpoint:
// POST {baseURL}/validate with the venue, returning a FreshnessResult.
type HTTPFreshnessValidator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPFreshnessValidator creates a validator client for the given
// endpoint base URL.
func NewHTTPFreshnessValidator(baseURL string, timeout time.Duration) *HTTPFreshnessValidator {
	return &HTTPFreshnessValidator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Validate implements FreshnessValidator
func (v *HTTPFreshnessValidator) Validate(ctx context.Context, venue model.Venue) (*model.FreshnessResult, error) {
	reqBody, err := json.Marshal(venue)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal venue: %w", err)
	}

	url := fmt.Sprintf("%s/validate", v.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("validation request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result model.FreshnessResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// Ensure HTTPFreshnessValidator implements FreshnessValidator
var _ FreshnessValidator = (*HTTPFreshnessValidator)(nil)
