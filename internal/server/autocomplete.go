// SPDX-License-Identifier: MIT
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// autocompleteBackends maps a configured backend name to the search
// engine whose own suggestion endpoint is proxied, grounded on
// original_source/src/autocomplete/backends.rs's fixed backend table —
// this is a thin passthrough, not a generic plugin system.
var autocompleteBackends = map[string]string{
	"duckduckgo": "https://duckduckgo.com/ac/?q=%s&type=list",
	"google":     "https://suggestqueries.google.com/complete/search?client=firefox&q=%s",
}

var autocompleteHTTPClient = &http.Client{Timeout: 2 * time.Second}

// fetchAutocomplete proxies q to the configured suggestion backend,
// returning an empty slice on any failure — autocomplete is a
// convenience, never a hard dependency of search.
func (s *Server) fetchAutocomplete(ctx context.Context, q string) []string {
	backend := s.cfg.UI.AutocompleteBackend
	tmpl, ok := autocompleteBackends[backend]
	if !ok {
		return nil
	}

	reqURL := fmt.Sprintf(tmpl, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	resp, err := autocompleteHTTPClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil
	}
	return parseSuggestions(backend, body)
}

// parseSuggestions handles the two response shapes the supported
// backends return: DuckDuckGo's array-of-objects and Google's
// array-of-arrays.
func parseSuggestions(backend string, body []byte) []string {
	switch backend {
	case "duckduckgo":
		var items []struct {
			Phrase string `json:"phrase"`
		}
		if err := json.Unmarshal(body, &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Phrase)
		}
		return out
	case "google":
		var raw []json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil || len(raw) < 2 {
			return nil
		}
		var suggestions []string
		if err := json.Unmarshal(raw[1], &suggestions); err != nil {
			return nil
		}
		return suggestions
	default:
		return nil
	}
}

func marshalSuggestions(s []string) []byte {
	if s == nil {
		s = []string{}
	}
	b, _ := json.Marshal(s)
	return b
}
