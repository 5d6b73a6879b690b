// SPDX-License-Identifier: MIT
package engines

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

// Wikipedia queries the MediaWiki search API's list=search action, which
// returns JSON (unlike every other teacher engine's HTML scrape), and
// strips the <span class="searchmatch"> markup its snippet field embeds.
type Wikipedia struct {
	*engine.Base
}

// NewWikipedia returns the Wikipedia engine. BuildRequest takes the
// subdomain from the request language (e.g. "en" for en.wikipedia.org,
// region suffix dropped), using "en" when the language is empty or "all".
func NewWikipedia() *Wikipedia {
	return &Wikipedia{Base: engine.NewBase(
		"wikipedia", "Wikipedia", []string{"general", "science"},
		engine.Capabilities{SupportsPaging: true},
	)}
}

func (e *Wikipedia) BuildRequest(p engine.RequestParams) (*engine.EngineRequest, error) {
	lang := strings.ToLower(p.Language)
	if lang == "" || lang == "all" {
		lang = "en"
	}
	if idx := strings.Index(lang, "-"); idx > 0 {
		lang = lang[:idx]
	}

	req := engine.NewEngineRequest(fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang))
	req.Query.Set("action", "query")
	req.Query.Set("list", "search")
	req.Query.Set("format", "json")
	req.Query.Set("srsearch", p.Query)
	req.Query.Set("srlimit", "10")
	if p.Page > 1 {
		req.Query.Set("sroffset", fmt.Sprintf("%d", (p.Page-1)*10))
	}
	req.Headers.Set("Accept", "application/json")
	return req, nil
}

type wikipediaResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			PageID  int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func (e *Wikipedia) ParseResponse(resp *engine.EngineResponse) (*engine.EngineResults, error) {
	var parsed wikipediaResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("wikipedia: decode response: %w", err)
	}

	host := "en.wikipedia.org"
	if u, err := url.Parse(resp.FinalURL); err == nil && u.Host != "" {
		host = u.Host
	}

	out := &engine.EngineResults{}
	for i, item := range parsed.Query.Search {
		position := i + 1
		articleURL := fmt.Sprintf("https://%s/wiki/%s", host, strings.ReplaceAll(item.Title, " ", "_"))
		out.Results = append(out.Results, engine.Result{
			URL:       articleURL,
			Title:     item.Title,
			Content:   strings.TrimSpace(htmlTagPattern.ReplaceAllString(item.Snippet, "")),
			Engine:    e.Name(),
			Engines:   []string{e.Name()},
			Positions: []int{position},
		})
	}
	return out, nil
}
