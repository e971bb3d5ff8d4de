package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"redditinsights/types"
)

// BaseURL is the public Reddit host serving listing JSON
const BaseURL = "https://www.reddit.com"

// userAgent mimics a desktop browser; the anonymous listing API throttles default client agents hard
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// listing is the subset of the /r/<sub>/new.json response we read
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				URL         string  `json:"url"`
				Permalink   string  `json:"permalink"`
				Ups         int     `json:"ups"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Client fetches subreddit listings
type Client struct {
	baseURL       string
	client        *http.Client
	rateLimitWait time.Duration
}

// NewClient creates a Reddit client. rateLimitWait is how long to back off after a 429.
func NewClient(httpClient *http.Client, rateLimitWait time.Duration) *Client {
	return NewClientWithBaseURL(httpClient, BaseURL, rateLimitWait)
}

// NewClientWithBaseURL creates a client against a custom host (for testing)
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, rateLimitWait time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:       baseURL,
		client:        httpClient,
		rateLimitWait: rateLimitWait,
	}
}

// FetchSubreddit returns up to limit of the newest posts of a subreddit.
// A 429 is retried once after the rate limit wait.
func (c *Client) FetchSubreddit(ctx context.Context, subreddit string, limit int) ([]types.Record, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, url.PathEscape(subreddit), limit)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.rateLimitWait):
		}
		if resp, err = c.get(ctx, endpoint); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("r/%s returned status %d", subreddit, resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding r/%s listing: %w", subreddit, err)
	}

	posts := make([]types.Record, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		posts = append(posts, types.Record{
			Subreddit:   subreddit,
			Title:       d.Title,
			URL:         d.URL,
			Permalink:   BaseURL + d.Permalink,
			Ups:         d.Ups,
			NumComments: d.NumComments,
			CreatedUTC:  d.CreatedUTC,
		})
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating listing request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	return resp, nil
}
