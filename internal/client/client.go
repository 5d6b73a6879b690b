// SPDX-License-Identifier: MIT

// Package client is the metaseek CLI/TUI's collaborator side: an HTTP
// client for the JSON contract internal/server exposes, plus the flag
// parsing, output formatting, and bubbletea TUI built on top of it.
//
// Grounded on src/client/api/client.go's APIClient and src/client/cmd's
// hand-rolled flag dispatch, carried over unchanged in shape and
// retargeted at metaseek's own /search and /health endpoints.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result mirrors internal/server/render.go's jsonResult wire shape.
type Result struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	Engine    string   `json:"engine"`
	Engines   []string `json:"engines"`
	Score     float64  `json:"score"`
	Category  string   `json:"category,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// SearchResponse mirrors internal/server/render.go's searchResponse.
type SearchResponse struct {
	Query               string   `json:"query"`
	NumberOfResults     int      `json:"number_of_results"`
	Results             []Result `json:"results"`
	Answers             []string `json:"answers"`
	Suggestions         []string `json:"suggestions"`
	UnresponsiveEngines []string `json:"unresponsive_engines"`
}

// Client is a thin HTTP client for a metaseek server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New builds a Client against baseURL, defaulting to a local instance
// and a 30s timeout when unset.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "metaseek-cli/dev",
	}
}

// SetUserAgent overrides the default User-Agent, typically with the
// binary's own build version.
func (c *Client) SetUserAgent(version string) {
	c.userAgent = fmt.Sprintf("metaseek-cli/%s", version)
}

// Search issues GET /search?format=json against the server.
func (c *Client) Search(query string, page int, engines []string, safeSearch bool) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if page > 0 {
		params.Set("pageno", fmt.Sprintf("%d", page))
	}
	if len(engines) > 0 {
		params.Set("engines", strings.Join(engines, ","))
	}
	if safeSearch {
		params.Set("safesearch", "2")
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var resp SearchResponse
	if err := c.get(reqURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports whether the server's /health endpoint is reachable.
func (c *Client) Health() (bool, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) get(reqURL string, result any) error {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
