// SPDX-License-Identifier: MIT
package engines

import (
	"encoding/json"
	"fmt"

	"github.com/apimgr/metaseek/internal/engine"
)

// GitHub queries the public repository search REST API, a second JSON
// source alongside Wikipedia rather than another HTML scrape.
type GitHub struct {
	*engine.Base
}

// NewGitHub returns the GitHub repository-search engine.
func NewGitHub() *GitHub {
	return &GitHub{Base: engine.NewBase(
		"github", "GitHub", []string{"it", "code"},
		engine.Capabilities{SupportsPaging: true},
	)}
}

func (e *GitHub) BuildRequest(p engine.RequestParams) (*engine.EngineRequest, error) {
	req := engine.NewEngineRequest("https://api.github.com/search/repositories")
	req.Query.Set("q", p.Query)
	req.Query.Set("sort", "best-match")
	req.Query.Set("per_page", "10")
	if p.Page > 1 {
		req.Query.Set("page", fmt.Sprintf("%d", p.Page))
	}
	req.Headers.Set("Accept", "application/vnd.github+json")
	req.Headers.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
		Language    string `json:"language"`
	} `json:"items"`
}

func (e *GitHub) ParseResponse(resp *engine.EngineResponse) (*engine.EngineResults, error) {
	var parsed githubSearchResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("github: decode response: %w", err)
	}

	out := &engine.EngineResults{}
	for i, item := range parsed.Items {
		content := item.Description
		if item.Language != "" {
			content = fmt.Sprintf("[%s] %s", item.Language, content)
		}
		out.Results = append(out.Results, engine.Result{
			URL:       item.HTMLURL,
			Title:     item.FullName,
			Content:   content,
			Engine:    e.Name(),
			Engines:   []string{e.Name()},
			Positions: []int{i + 1},
			Metadata:  engine.Metadata{Template: "code"},
		})
	}
	return out, nil
}
