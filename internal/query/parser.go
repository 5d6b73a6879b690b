// SPDX-License-Identifier: MIT

// Package query implements the raw-text query parser (spec.md §4.1): it
// extracts routing modifiers — language tags, timeout, safesearch, time
// range, redirect flags, category bangs, and engine bangs — leaving a clean
// query string with every recognized token stripped.
//
// Grounded on src/server/service/engine/bangs.go's word-scanning ParseBangs,
// generalized from that file's single-domain bang table to spec.md's
// vocabulary, and corrected against original_source/src/query/mod.rs for the
// exact regex shapes and !!  / "! " redirect semantics the teacher's version
// does not need.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Resolver looks up an engine bang's shortcut against the registry without
// this package importing the registry (which in turn depends on the engine
// contract, not on query parsing).
type Resolver interface {
	Resolve(token string) (name string, ok bool)
}

// ParsedQuery is the textual form the parser emits, per spec.md §3.
type ParsedQuery struct {
	CleanQuery string
	RawQuery   string

	Languages []string
	Categories []string
	Engines    []string

	ExternalBang string

	TimeoutSeconds *float64
	SafeSearch     *int
	TimeRange      string
	PageNo         int

	RedirectToFirst bool
}

var (
	languageRe = regexp.MustCompile(`^:([a-z]{2})(-[A-Z]{2})?$`)
	timeoutRe  = regexp.MustCompile(`^<(\d+)(ms)?$`)
	wsRe       = regexp.MustCompile(`\s+`)
)

var categoryBangs = map[string]string{
	"!images": "images",
	"!videos": "videos",
	"!news":   "news",
	"!music":  "music",
	"!files":  "files",
	"!it":     "it",
	"!science": "science",
	"!social": "social",
	"!maps":   "maps",
}

var timeRangeBangs = map[string]string{
	"!day":   "day",
	"!week":  "week",
	"!month": "month",
	"!year":  "year",
}

// ExternalBangAllowList is the small set of tokens that redirect to an
// external site instead of resolving to a loaded engine (spec.md §4.1 step
// 7, §6's redirect table).
var ExternalBangAllowList = map[string]bool{
	"g": true, "yt": true, "w": true, "wa": true,
	"amazon": true, "imdb": true,
}

// Parse extracts every recognized modifier from raw, leaving CleanQuery free
// of them. resolver may be nil, in which case no engine bangs resolve and
// unrecognized !tokens (including would-be engine bangs) are preserved
// verbatim, per the invariant in spec.md §3.
func Parse(raw string, resolver Resolver) ParsedQuery {
	pq := ParsedQuery{RawQuery: raw, PageNo: 1}

	work := raw

	// Step 5 (leading form): "!!foo" has no space between the flag and the
	// query, so it must be stripped before word-splitting sees it as part of
	// a single token.
	trimmed := strings.TrimLeft(work, " \t\n")
	if strings.HasPrefix(trimmed, "!!") {
		pq.RedirectToFirst = true
		work = trimmed[2:]
	}

	words := strings.Fields(work)
	kept := make([]string, 0, len(words))
	engineSeen := map[string]bool{}
	langSeen := map[string]bool{}

	for _, word := range words {
		// Step 5 (spaced form): a bare "!" token.
		if word == "!" {
			pq.RedirectToFirst = true
			continue
		}

		// Step 1: language tags.
		if m := languageRe.FindStringSubmatch(word); m != nil {
			lang := m[1]
			if m[2] != "" {
				lang += m[2]
			}
			if !langSeen[lang] {
				langSeen[lang] = true
				pq.Languages = append(pq.Languages, lang)
			}
			continue
		}

		// Step 2: timeout.
		if m := timeoutRe.FindStringSubmatch(word); m != nil {
			n, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				seconds := n
				if m[2] == "ms" {
					seconds = n / 1000.0
				}
				pq.TimeoutSeconds = &seconds
				continue
			}
		}

		if strings.HasPrefix(word, "!") && len(word) > 1 {
			lower := strings.ToLower(word)

			// Step 3: safesearch toggles.
			if lower == "!safesearch" {
				level := 2
				pq.SafeSearch = &level
				continue
			}
			if lower == "!nosafesearch" {
				level := 0
				pq.SafeSearch = &level
				continue
			}

			// Step 4: time range, first match wins.
			if tr, ok := timeRangeBangs[lower]; ok {
				if pq.TimeRange == "" {
					pq.TimeRange = tr
				}
				continue
			}

			// Step 6: category bangs.
			if cat, ok := categoryBangs[lower]; ok {
				pq.Categories = append(pq.Categories, cat)
				continue
			}

			// Step 7: external-bang allow-list overrides engine resolution.
			token := lower[1:]
			if ExternalBangAllowList[token] {
				pq.ExternalBang = token
				continue
			}

			// Step 7: engine bangs, resolved through the registry.
			if resolver != nil {
				if name, ok := resolver.Resolve(token); ok {
					if !engineSeen[name] {
						engineSeen[name] = true
						pq.Engines = append(pq.Engines, name)
					}
					continue
				}
			}

			// Unknown !token — preserved verbatim, per spec.md §3's
			// invariant.
			kept = append(kept, word)
			continue
		}

		kept = append(kept, word)
	}

	// Step 8: collapse whitespace runs (strings.Join with a single space
	// already guarantees this, but the regexp keeps the intent explicit for
	// any embedded-control-character edge cases).
	pq.CleanQuery = wsRe.ReplaceAllString(strings.TrimSpace(strings.Join(kept, " ")), " ")

	return pq
}
