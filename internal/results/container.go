// SPDX-License-Identifier: MIT

// Package results implements the Result Container (spec.md §4.4): the one
// component with mutable shared state, written concurrently by one
// goroutine per engine and read once, after every writer has finished, by
// the HTTP handler that serializes a response.
//
// The teacher has no equivalent of this — its relevance ranking sorts a
// single engine's output, never merges across sources — so this package is
// grounded directly on original_source/src/results/container.rs, translated
// from Rust's RwLock<HashMap<...>> fields into one independently-locked Go
// struct per collection, per spec.md §4.4's concurrency note.
package results

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/apimgr/metaseek/internal/engine"
)

// DedupKey normalizes a result URL per spec.md §4.4: lowercase, strip
// scheme, strip a leading "www.", strip one trailing slash. It is
// deliberately lossy — different resources sharing host+path collide by
// design.
func DedupKey(rawURL string) string {
	key := strings.ToLower(rawURL)
	if i := strings.Index(key, "://"); i >= 0 {
		key = key[i+3:]
	}
	key = strings.TrimPrefix(key, "www.")
	key = strings.TrimSuffix(key, "/")
	return key
}

type storedResult struct {
	result       engine.Result
	insertOrder  int
}

type storedInfobox struct {
	box         engine.Infobox
	insertOrder int
}

// Container is the per-search aggregate state. Zero value is not usable;
// construct with New.
type Container struct {
	weights map[string]float64

	mu      sync.RWMutex
	results map[string]*storedResult
	seq     int

	answersMu sync.RWMutex
	answers   []engine.Answer
	answerSeen map[string]bool

	suggestionsMu sync.RWMutex
	suggestions   []engine.Suggestion
	suggestionSeen map[[2]string]bool

	correctionsMu sync.RWMutex
	corrections   []engine.Correction
	correctionSeen map[[2]string]bool

	infoboxesMu sync.RWMutex
	infoboxes   map[string]*storedInfobox
	infoboxSeq  int

	unresponsiveMu sync.RWMutex
	unresponsive   []engine.UnresponsiveEngine

	timingsMu sync.RWMutex
	timings   []engine.Timing

	redirectMu  sync.RWMutex
	redirectURL string
}

// New constructs an empty Container. weights maps an engine name to its
// configured weight; used by Score/Results at read time per spec.md §4.4's
// scoring formula.
func New(weights map[string]float64) *Container {
	return &Container{
		weights:        weights,
		results:        make(map[string]*storedResult),
		answerSeen:     make(map[string]bool),
		suggestionSeen: make(map[[2]string]bool),
		correctionSeen: make(map[[2]string]bool),
		infoboxes:      make(map[string]*storedInfobox),
	}
}

// AddResult merges r into the container under its dedup key. On collision
// the stored record absorbs the incoming one: engines are unioned,
// positions appended, content adopted only if the stored record lacks one;
// every other field is first-writer-wins.
func (c *Container) AddResult(r engine.Result) {
	key := DedupKey(r.URL)

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.results[key]
	if !ok {
		c.seq++
		c.results[key] = &storedResult{result: r, insertOrder: c.seq}
		return
	}

	stored := &existing.result
	for _, eng := range r.Engines {
		if !containsStr(stored.Engines, eng) {
			stored.Engines = append(stored.Engines, eng)
		}
	}
	stored.Positions = append(stored.Positions, r.Positions...)
	if stored.Content == "" && r.Content != "" {
		stored.Content = r.Content
	}
}

func containsStr(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// AddAnswer records an instant answer, deduped by exact text — the
// earliest-added wins.
func (c *Container) AddAnswer(a engine.Answer) {
	c.answersMu.Lock()
	defer c.answersMu.Unlock()
	if c.answerSeen[a.Text] {
		return
	}
	c.answerSeen[a.Text] = true
	c.answers = append(c.answers, a)
}

// AddSuggestion records a suggestion under (text, engine) set semantics:
// two engines suggesting identical text both appear, but the same engine
// suggesting the same text twice does not duplicate.
func (c *Container) AddSuggestion(s engine.Suggestion) {
	c.suggestionsMu.Lock()
	defer c.suggestionsMu.Unlock()
	key := [2]string{s.Text, s.Engine}
	if c.suggestionSeen[key] {
		return
	}
	c.suggestionSeen[key] = true
	c.suggestions = append(c.suggestions, s)
}

// AddCorrection records a correction under the same (text, engine) set
// semantics as AddSuggestion.
func (c *Container) AddCorrection(cor engine.Correction) {
	c.correctionsMu.Lock()
	defer c.correctionsMu.Unlock()
	key := [2]string{cor.Text, cor.Engine}
	if c.correctionSeen[key] {
		return
	}
	c.correctionSeen[key] = true
	c.corrections = append(c.corrections, cor)
}

// AddInfobox records an infobox keyed by ID. On collision the one with the
// longer content replaces the existing entry.
func (c *Container) AddInfobox(b engine.Infobox) {
	c.infoboxesMu.Lock()
	defer c.infoboxesMu.Unlock()
	existing, ok := c.infoboxes[b.ID]
	if !ok {
		c.infoboxSeq++
		c.infoboxes[b.ID] = &storedInfobox{box: b, insertOrder: c.infoboxSeq}
		return
	}
	if len(b.Content) > len(existing.box.Content) {
		existing.box = b
	}
}

// AddUnresponsive records an engine that produced no results.
func (c *Container) AddUnresponsive(u engine.UnresponsiveEngine) {
	c.unresponsiveMu.Lock()
	defer c.unresponsiveMu.Unlock()
	c.unresponsive = append(c.unresponsive, u)
}

// AddTiming records one engine's elapsed time and result count.
func (c *Container) AddTiming(t engine.Timing) {
	c.timingsMu.Lock()
	defer c.timingsMu.Unlock()
	c.timings = append(c.timings, t)
}

// SetRedirectURL records the external-bang destination. Last writer wins,
// though in practice only one codepath (the executor's external-bang
// short-circuit) ever calls it per search.
func (c *Container) SetRedirectURL(u string) {
	c.redirectMu.Lock()
	defer c.redirectMu.Unlock()
	c.redirectURL = u
}

// RedirectURL returns the external-bang destination, or "" if none was set.
func (c *Container) RedirectURL() string {
	c.redirectMu.RLock()
	defer c.redirectMu.RUnlock()
	return c.redirectURL
}

// score computes spec.md §4.4's formula: weight = Π(engine_weights) × |engines|,
// score = Σ over positions p of (weight / p). An engine missing from the
// weights map (unknown at score time) contributes a weight of 1.0, leaving
// the formula well-defined even if Container was built without a full
// weight map.
func (c *Container) score(r *engine.Result) float64 {
	weight := 1.0
	for _, eng := range r.Engines {
		w, ok := c.weights[eng]
		if !ok {
			w = 1.0
		}
		weight *= w
	}
	weight *= float64(len(r.Engines))

	var score float64
	for _, p := range r.Positions {
		if p <= 0 {
			continue
		}
		score += weight / float64(p)
	}
	return score
}

// Results returns every stored result, scored and sorted by score
// descending with ties broken by insertion order (stable sort), per
// spec.md §4.4.
func (c *Container) Results() []engine.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	type scored struct {
		result engine.Result
		score  float64
		order  int
	}
	out := make([]scored, 0, len(c.results))
	for _, sr := range c.results {
		r := sr.result
		r.Score = c.score(&r)
		out = append(out, scored{result: r, score: r.Score, order: sr.insertOrder})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].order < out[j].order
	})

	final := make([]engine.Result, len(out))
	for i, s := range out {
		final[i] = s.result
	}
	return final
}

// Page returns results[(page-1)*perPage : page*perPage], capped at the
// collection size. A page past the end returns an empty slice, never an
// error. page and perPage below 1 are treated as 1.
func (c *Container) Page(page, perPage int) []engine.Result {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	all := c.Results()
	start := (page - 1) * perPage
	if start >= len(all) {
		return []engine.Result{}
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// Count returns the total number of distinct stored results.
func (c *Container) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Answers returns every recorded instant answer, in insertion order.
func (c *Container) Answers() []engine.Answer {
	c.answersMu.RLock()
	defer c.answersMu.RUnlock()
	out := make([]engine.Answer, len(c.answers))
	copy(out, c.answers)
	return out
}

// Suggestions returns every recorded suggestion, in insertion order.
func (c *Container) Suggestions() []engine.Suggestion {
	c.suggestionsMu.RLock()
	defer c.suggestionsMu.RUnlock()
	out := make([]engine.Suggestion, len(c.suggestions))
	copy(out, c.suggestions)
	return out
}

// Corrections returns every recorded correction, in insertion order.
func (c *Container) Corrections() []engine.Correction {
	c.correctionsMu.RLock()
	defer c.correctionsMu.RUnlock()
	out := make([]engine.Correction, len(c.corrections))
	copy(out, c.corrections)
	return out
}

// Infoboxes returns every recorded infobox, ordered by first insertion.
func (c *Container) Infoboxes() []engine.Infobox {
	c.infoboxesMu.RLock()
	defer c.infoboxesMu.RUnlock()
	items := make([]*storedInfobox, 0, len(c.infoboxes))
	for _, b := range c.infoboxes {
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].insertOrder < items[j].insertOrder })
	out := make([]engine.Infobox, len(items))
	for i, b := range items {
		out[i] = b.box
	}
	return out
}

// Unresponsive returns every engine that failed to contribute results.
func (c *Container) Unresponsive() []engine.UnresponsiveEngine {
	c.unresponsiveMu.RLock()
	defer c.unresponsiveMu.RUnlock()
	out := make([]engine.UnresponsiveEngine, len(c.unresponsive))
	copy(out, c.unresponsive)
	return out
}

// Timings returns every recorded per-engine timing.
func (c *Container) Timings() []engine.Timing {
	c.timingsMu.RLock()
	defer c.timingsMu.RUnlock()
	out := make([]engine.Timing, len(c.timings))
	copy(out, c.timings)
	return out
}

// EscapeQuery URL-encodes q the way the executor needs when building an
// external-bang redirect target.
func EscapeQuery(q string) string {
	return url.QueryEscape(q)
}
