package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Source provides spot rates between two currencies.
type Source interface {
	FetchRate(ctx context.Context, base, target string) (float64, error)
}

// APIClient fetches rates from an exchangerate-api compatible endpoint
// (GET {base-url}/latest/{currency} returning a rates map).
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client with a hard request timeout so a slow
// rate source cannot stall unrelated donations.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRate performs one lookup attempt against the external source.
func (c *APIClient) FetchRate(ctx context.Context, base, target string) (float64, error) {
	url := fmt.Sprintf("%s/latest/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate source returned HTTP %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := body.Rates[target]
	if !ok {
		return 0, fmt.Errorf("rate %s/%s not present in response", base, target)
	}
	return rate, nil
}
