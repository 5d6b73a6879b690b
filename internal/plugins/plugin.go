// SPDX-License-Identifier: MIT

// Package plugins implements the instant-answer and result-shaping pipeline
// (spec.md §4.6): three hook points a Plugin may implement (pre_search,
// on_result, post_search) plus a matches_query/process pair for instant
// answers, run in registration order by a Pipeline.
//
// Grounded on original_source/src/plugins/traits.rs's Plugin trait — the
// teacher has no equivalent concept, since BaseEngine is a data source, not
// a query/result transform. The trait's default method bodies become a Base
// type concrete plugins embed, the same split internal/engine.Base uses for
// Engine's static metadata.
package plugins

import (
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
)

// Info describes a plugin for display and for the enable/disable registry.
type Info struct {
	ID          string
	Name        string
	Description string
	DefaultOn   bool
}

// PreSearchAction is the outcome a plugin's PreSearch hook returns.
type PreSearchAction int

const (
	// PreContinue lets the pipeline move on to the next plugin unchanged.
	PreContinue PreSearchAction = iota
	// PreAnswer ends the pipeline and supplies an instant answer in place
	// of a normal search.
	PreAnswer
	// PreSkip ends the pipeline and skips the search entirely, with no
	// answer to show.
	PreSkip
	// PreModifyQuery rewrites the query's clean text and continues.
	PreModifyQuery
)

// PreSearchOutcome is a Plugin.PreSearch return value. Only the field
// matching Action is meaningful.
type PreSearchOutcome struct {
	Action   PreSearchAction
	Answer   *engine.Answer
	NewQuery string
}

// Continue is the zero-value outcome most plugins return.
var Continue = PreSearchOutcome{Action: PreContinue}

// Plugin is the contract a query/result transform implements. Every method
// beyond Info has a no-op default on Base, so a concrete plugin only
// overrides the hooks it actually uses.
type Plugin interface {
	Info() Info
	Keywords() []string

	// PreSearch runs once per query before any engine is dispatched.
	PreSearch(q *executor.SearchQuery) PreSearchOutcome
	// OnResult runs once per result over the container's merged, scored
	// list, after every engine has finished. Returning false filters the
	// result out. A rewritten URL is not deduplicated again.
	OnResult(q *executor.SearchQuery, r *engine.Result) bool
	// PostSearch runs once after every engine has finished, with the
	// chance to reorder, rewrite, or drop entries.
	PostSearch(q *executor.SearchQuery, results []engine.Result) []engine.Result

	// MatchesQuery reports whether this plugin's instant answer applies
	// to the raw query text.
	MatchesQuery(query string) bool
	// Process computes the instant answer for a query MatchesQuery
	// accepted. ok is false if no answer could be produced after all.
	Process(query string) (answer *engine.Answer, ok bool)
}

// Base supplies every Plugin method's default body (mirrors
// original_source's default trait methods) so concrete plugins only
// implement what they override.
type Base struct {
	info     Info
	keywords []string
}

// NewBase constructs a Base with the given metadata and trigger keywords.
func NewBase(id, name, description string, defaultOn bool, keywords ...string) *Base {
	return &Base{
		info: Info{
			ID:          id,
			Name:        name,
			Description: description,
			DefaultOn:   defaultOn,
		},
		keywords: keywords,
	}
}

func (b *Base) Info() Info        { return b.info }
func (b *Base) Keywords() []string { return b.keywords }

func (b *Base) PreSearch(q *executor.SearchQuery) PreSearchOutcome { return Continue }
func (b *Base) OnResult(q *executor.SearchQuery, r *engine.Result) bool { return true }
func (b *Base) PostSearch(q *executor.SearchQuery, results []engine.Result) []engine.Result {
	return results
}

// MatchesQuery's default implementation checks whether the lowercased query
// starts with any registered keyword.
func (b *Base) MatchesQuery(query string) bool {
	ql := strings.ToLower(query)
	for _, k := range b.keywords {
		if strings.HasPrefix(ql, k) {
			return true
		}
	}
	return false
}

func (b *Base) Process(query string) (*engine.Answer, bool) { return nil, false }
