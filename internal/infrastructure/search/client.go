// Package search implements the optional web-search collaborator that
// feeds query-driven sources with candidate article URLs.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"newsdash/internal/config"
	"newsdash/internal/ports"
)

const maxResultsPerQuery = 15

// Client queries a Brave-compatible web search API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.SearchClient = (*Client)(nil)

// NewClient builds a search client from configuration.
func NewClient(cfg config.SearchConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Search runs a web search and returns up to count results, freshest
// first.
func (c *Client) Search(ctx context.Context, query string, count int) ([]ports.SearchResult, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return nil, fmt.Errorf("search client misconfigured")
	}
	if count <= 0 || count > maxResultsPerQuery {
		count = maxResultsPerQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprint(count))
	params.Set("freshness", "pd")
	params.Set("search_lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	var decoded struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				PageAge     string `json:"page_age"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]ports.SearchResult, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		if r.URL == "" {
			continue
		}
		res := ports.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		}
		if t, err := time.Parse(time.RFC3339, r.PageAge); err == nil {
			res.PublishedDate = t
		}
		results = append(results, res)
		if len(results) == count {
			break
		}
	}
	return results, nil
}
