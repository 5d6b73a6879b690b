// SPDX-License-Identifier: MIT
package engines

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apimgr/metaseek/internal/engine"
)

// DuckDuckGo scrapes the no-JS HTML results endpoint, the same
// goquery-selector-and-Each shape src/server/service/engine/pornhub.go uses
// against its own markup.
type DuckDuckGo struct {
	*engine.Base
}

// NewDuckDuckGo returns the DuckDuckGo HTML engine.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{Base: engine.NewBase(
		"duckduckgo", "DuckDuckGo HTML", []string{"general"},
		engine.Capabilities{SupportsPaging: true, SupportsSafeSearch: true},
	)}
}

// BuildRequest builds a GET against html.duckduckgo.com/html/.
func (e *DuckDuckGo) BuildRequest(p engine.RequestParams) (*engine.EngineRequest, error) {
	req := engine.NewEngineRequest("https://html.duckduckgo.com/html/")
	req.Query.Set("q", p.Query)
	if p.Page > 1 {
		req.Query.Set("s", fmt.Sprintf("%d", (p.Page-1)*30))
	}
	req.Query.Set("kp", safeSearchParam(p.SafeSearch, "-2", "-1", "1"))
	if p.Language != "" {
		req.Query.Set("kl", strings.ToLower(p.Language))
	}
	req.Headers.Set("Accept", "text/html,application/xhtml+xml")
	return req, nil
}

// ParseResponse extracts each .result block's title, link, and snippet.
// DuckDuckGo's HTML links through a /l/?uddg=<encoded> redirect, which is
// decoded back to the real destination URL.
func (e *DuckDuckGo) ParseResponse(resp *engine.EngineResponse) (*engine.EngineResults, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse html: %w", err)
	}

	out := &engine.EngineResults{}
	position := 0
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		dest := resolveDDGRedirect(href)
		content := strings.TrimSpace(s.Find(".result__snippet").First().Text())

		if title == "" || dest == "" {
			return
		}
		position++
		out.Results = append(out.Results, engine.Result{
			URL:       dest,
			Title:     title,
			Content:   content,
			Engine:    e.Name(),
			Engines:   []string{e.Name()},
			Positions: []int{position},
		})
	})
	return out, nil
}

func resolveDDGRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}
