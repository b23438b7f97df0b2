// Package memory is a client for a mem0-compatible memory service. The
// service keeps a semantic index of past story text per owner and returns
// ranked factual snippets for a free-text query.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one role-tagged piece of story text to index.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the memory service over HTTP. A client with an empty
// base URL is disabled: Store is a no-op and Search returns nothing, so
// the story pipeline works without a memory deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a memory client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a memory service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type storeRequest struct {
	Messages []Message `json:"messages"`
	UserID   string    `json:"user_id"`
}

// Store indexes the given messages under ownerID.
func (c *Client) Store(ctx context.Context, ownerID string, messages []Message) error {
	if !c.Enabled() || len(messages) == 0 {
		return nil
	}

	body, err := json.Marshal(storeRequest{Messages: messages, UserID: ownerID})
	if err != nil {
		return err
	}

	return c.post(ctx, "/v1/memories/", body, nil)
}

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

type searchResponse struct {
	Results []struct {
		Memory string  `json:"memory"`
		Score  float64 `json:"score"`
	} `json:"results"`
}

// Search returns up to limit facts relevant to query, best match first.
func (c *Client) Search(ctx context.Context, ownerID, query string, limit int) ([]string, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	body, err := json.Marshal(searchRequest{Query: query, UserID: ownerID, Limit: limit})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := c.post(ctx, "/v1/memories/search/", body, &resp); err != nil {
		return nil, err
	}

	facts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Memory != "" {
			facts = append(facts, r.Memory)
		}
	}
	return facts, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("memory service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
