package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLiveURL is the keyless open.er-api.com endpoint; the base currency is appended.
const DefaultLiveURL = "https://open.er-api.com/v6/latest/"

// ErrRateUnavailable indicates the live source has no rate for a pair.
var ErrRateUnavailable = errors.New("rate unavailable")

// RateSource fetches a live exchange rate.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// OpenERAPI fetches rates from open.er-api.com.
type OpenERAPI struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenERAPI creates a live source. timeout bounds each HTTP request.
func NewOpenERAPI(baseURL string, timeout time.Duration) *OpenERAPI {
	if baseURL == "" {
		baseURL = DefaultLiveURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &OpenERAPI{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type openERResponse struct {
	Rates    map[string]float64 `json:"rates"`
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
}

// Rate returns the from→to rate.
func (s *OpenERAPI) Rate(ctx context.Context, from, to string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API error (status %d)", resp.StatusCode)
	}

	var payload openERResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if payload.Result != "success" {
		return 0, fmt.Errorf("%w: result %q for %s", ErrRateUnavailable, payload.Result, from)
	}

	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s->%s", ErrRateUnavailable, from, to)
	}

	return rate, nil
}
