// SPDX-License-Identifier: MIT

// Package engines implements the concrete search sources: each one is a
// stateless engine.Engine built on internal/engine.Base, wired through
// internal/httpclient's shared Fetcher.
//
// Grounded on the teacher's per-site engine files (e.g.
// src/server/service/engine/pornhub.go's BaseEngine-plus-goquery shape),
// generalized from the teacher's single Search(ctx, query, page) method into
// the BuildRequest/ParseResponse split internal/engine.Engine requires, and
// on other_examples/brave.go for the regex-scraping variant and for the
// BaseEngine-embeds-config-and-transport construction pattern (Priority,
// Categories, SupportsTor) this package's registry-driven Base replaces.
package engines

import "strings"

// safeSearchParam maps the RequestParams.SafeSearch int (0=off, 1=moderate,
// 2=strict) onto the string values engines commonly expect.
func safeSearchParam(level int, off, moderate, strict string) string {
	switch level {
	case 0:
		return off
	case 1:
		return moderate
	default:
		return strict
	}
}

// firstNonEmpty returns the first non-blank (after trimming) string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
