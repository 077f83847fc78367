package literature

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Paper is a candidate paper returned by the literature-search service.
type Paper struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	Year     int      `json:"year,omitempty"`
	URL      string   `json:"url,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
}

// Client is a client for the external literature-search service.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewClient creates a new literature-search client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// searchResponse represents the response from the paper search API.
type searchResponse struct {
	Papers []Paper `json:"papers"`
}

// Search returns up to limit candidate papers for the given query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Paper, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = 3
	}

	u := fmt.Sprintf("%s/v1/papers/search?query=%s&limit=%s",
		c.BaseURL, url.QueryEscape(query), strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	papers := searchResp.Papers
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}
