// SPDX-License-Identifier: MIT
package engines

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

// Brave scrapes search.brave.com with hand-rolled regexes rather than
// goquery, matching other_examples/brave.go's own approach (a second
// scraping technique alongside DuckDuckGo's selector-based one) against the
// result/title/description markup Brave's static HTML emits.
type Brave struct {
	*engine.Base
}

// NewBrave returns the Brave web-search engine.
func NewBrave() *Brave {
	return &Brave{Base: engine.NewBase(
		"brave", "Brave Search", []string{"general"},
		engine.Capabilities{SupportsPaging: true},
	)}
}

func (e *Brave) BuildRequest(p engine.RequestParams) (*engine.EngineRequest, error) {
	req := engine.NewEngineRequest("https://search.brave.com/search")
	req.Query.Set("q", p.Query)
	req.Query.Set("source", "web")
	if p.Page > 1 {
		req.Query.Set("offset", fmt.Sprintf("%d", p.Page-1))
	}
	req.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	return req, nil
}

var (
	braveResultPattern = regexp.MustCompile(`(?s)<div[^>]*class="[^"]*snippet[^"]*"[^>]*>.*?</div>`)
	braveTitlePattern  = regexp.MustCompile(`(?s)<a[^>]*class="[^"]*result-header[^"]*"[^>]*href="([^"]*)"[^>]*>.*?<span[^>]*class="[^"]*snippet-title[^"]*"[^>]*>([^<]*)</span>`)
	braveDescPattern   = regexp.MustCompile(`(?s)<p[^>]*class="[^"]*snippet-description[^"]*"[^>]*>([^<]*)</p>`)
)

func (e *Brave) ParseResponse(resp *engine.EngineResponse) (*engine.EngineResults, error) {
	body := string(resp.Body)
	out := &engine.EngineResults{}

	matches := braveResultPattern.FindAllString(body, -1)
	position := 0
	for _, block := range matches {
		titleMatch := braveTitlePattern.FindStringSubmatch(block)
		if len(titleMatch) < 3 {
			continue
		}
		resultURL := titleMatch[1]
		title := strings.TrimSpace(html.UnescapeString(titleMatch[2]))
		if resultURL == "" || title == "" {
			continue
		}

		content := ""
		if descMatch := braveDescPattern.FindStringSubmatch(block); len(descMatch) >= 2 {
			content = strings.TrimSpace(html.UnescapeString(descMatch[1]))
		}

		position++
		out.Results = append(out.Results, engine.Result{
			URL:       resultURL,
			Title:     title,
			Content:   content,
			Engine:    e.Name(),
			Engines:   []string{e.Name()},
			Positions: []int{position},
		})
	}
	return out, nil
}
