// Package jolpica implements the primary remote timing source: the
// Ergast-compatible jolpica HTTP API.
package jolpica

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// BaseURL is the public jolpica API root.
	BaseURL = "https://api.jolpi.ca/ergast/f1"

	// lapPageLimit is large enough to return a full race's lap timings in
	// one page (24 cars x ~78 laps at Monaco).
	lapPageLimit = 2000
)

// Client issues jolpica API requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a jolpica client with a custom base URL (tests point this at
// an httptest server).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// NewClient creates a jolpica client against the public API.
func NewClient() *Client {
	return New(BaseURL)
}

// FetchLaps fetches per-lap timings for a race.
func (c *Client) FetchLaps(ctx context.Context, season, round int) (*lapsResponse, error) {
	url := fmt.Sprintf("%s/%d/%d/laps.json?limit=%d", c.baseURL, season, round, lapPageLimit)
	var out lapsResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchResults fetches the race classification.
func (c *Client) FetchResults(ctx context.Context, season, round int) (*resultsResponse, error) {
	url := fmt.Sprintf("%s/%d/%d/results.json", c.baseURL, season, round)
	var out resultsResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSprintResults fetches the sprint classification.
func (c *Client) FetchSprintResults(ctx context.Context, season, round int) (*resultsResponse, error) {
	url := fmt.Sprintf("%s/%d/%d/sprint.json", c.baseURL, season, round)
	var out resultsResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchQualifyingResults fetches the qualifying classification.
func (c *Client) FetchQualifyingResults(ctx context.Context, season, round int) (*resultsResponse, error) {
	url := fmt.Sprintf("%s/%d/%d/qualifying.json", c.baseURL, season, round)
	var out resultsResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
