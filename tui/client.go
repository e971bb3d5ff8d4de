package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"redditinsights/config"
	"redditinsights/types"
)

// DataSource is what the model needs from the backend
type DataSource interface {
	FetchData(ctx context.Context) (types.Dataset, error)
	Refresh(ctx context.Context) error
}

// APIClient is a thin HTTP client for the insights backend
type APIClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewAPIClient creates a client for the configured base URL.
// A zero HTTPTimeout leaves requests unbounded.
func NewAPIClient(cfg config.Viewer) *APIClient {
	return &APIClient{
		baseURL: config.NormalizeBaseURL(cfg.APIBase),
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		now: time.Now,
	}
}

// FetchData loads the full dataset. The t query parameter only defeats caches.
func (c *APIClient) FetchData(ctx context.Context) (types.Dataset, error) {
	url := fmt.Sprintf("%s/data?t=%d", c.baseURL, c.now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build data request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var dataset types.Dataset
	if err := json.NewDecoder(resp.Body).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	return dataset, nil
}

// Refresh asks the backend to regenerate its data. The body is ignored.
func (c *APIClient) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh", nil)
	if err != nil {
		return fmt.Errorf("failed to build refresh request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
