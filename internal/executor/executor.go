// SPDX-License-Identifier: MIT

// Package executor implements the Search Executor (spec.md §4.5): given a
// SearchQuery it fans a goroutine out to every resolved engine, waits for
// all of them to finish (success, error, or per-engine deadline), and
// returns the populated results.Container.
//
// Grounded on src/server/service/engine/manager.go's Search: the
// goroutine-per-engine / sync.WaitGroup fan-out shape is kept (each
// goroutine writes into the container directly; there is no results
// channel), generalized from the teacher's single-collection append (it
// discards per-engine errors into a flat "failed" list and sorts by a
// relevance heuristic afterward) to spec.md's richer per-engine lifecycle
// (build_request/fetch/parse_response, independent timeouts, CAPTCHA
// detection, Timing/Unresponsive bookkeeping) feeding a results.Container
// instead of a single slice.
package executor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/httpclient"
	"github.com/apimgr/metaseek/internal/query"
	"github.com/apimgr/metaseek/internal/registry"
	"github.com/apimgr/metaseek/internal/results"
)

// EngineRef names one engine a SearchQuery should be dispatched to, along
// with the category it was requested under (spec.md §4.5 step 4).
type EngineRef struct {
	Name     string
	Category string
}

// SearchQuery is the fully-resolved request the executor consumes,
// produced from a query.ParsedQuery plus whatever defaults the caller (the
// HTTP handler, or search_category's convenience path) applies.
type SearchQuery struct {
	CleanQuery   string
	Page         int
	Language     string
	SafeSearch   int
	TimeRange    string
	Engines      []EngineRef
	ExternalBang string

	// TimeoutLimit, if set, replaces the registry's per-engine timeout
	// outright (query.ParsedQuery.TimeoutSeconds) — it is a request, not
	// just a cap, so a value above the registry default still wins; only
	// MaxTimeout below can pull it back down.
	TimeoutLimit *time.Duration
	// MaxTimeout is the hard ceiling no per-engine timeout may exceed,
	// regardless of query or registry configuration.
	MaxTimeout time.Duration
}

// Fetcher is the HTTP execution collaborator; internal/httpclient.Client
// implements it (re-exported here as engine.Fetcher to avoid a second
// identical interface).
type Fetcher = engine.Fetcher

// Executor runs searches against a fixed Registry and Fetcher.
type Executor struct {
	reg     *registry.Registry
	fetcher Fetcher
}

// New builds an Executor.
func New(reg *registry.Registry, fetcher Fetcher) *Executor {
	return &Executor{reg: reg, fetcher: fetcher}
}

// Execute runs spec.md §4.5's full procedure and returns the populated
// Container. It never returns an error: per-engine failures are recorded
// in the Container's unresponsive collection, not surfaced to the caller.
func (ex *Executor) Execute(ctx context.Context, q SearchQuery) *results.Container {
	weights := make(map[string]float64, len(q.Engines))
	for _, ref := range q.Engines {
		weights[ref.Name] = ex.reg.EffectiveWeight(ref.Name)
	}
	container := results.New(weights)

	// Step 2: external bang short-circuits everything.
	if q.ExternalBang != "" {
		if dest, ok := registry.ResolveExternalBang(q.ExternalBang, results.EscapeQuery(q.CleanQuery)); ok {
			container.SetRedirectURL(dest)
			return container
		}
	}

	// Step 3: empty query short-circuits to an empty container.
	if strings.TrimSpace(q.CleanQuery) == "" {
		return container
	}

	var wg sync.WaitGroup
	for _, ref := range q.Engines {
		eng, ok := ex.reg.Get(ref.Name)
		// Step 4: unknown engine names are silently skipped.
		if !ok {
			continue
		}

		wg.Add(1)
		go func(ref EngineRef, eng engine.Engine) {
			defer wg.Done()
			ex.runEngine(ctx, ref, eng, q, container)
		}(ref, eng)
	}
	wg.Wait()

	return container
}

func (ex *Executor) runEngine(ctx context.Context, ref EngineRef, eng engine.Engine, q SearchQuery, container *results.Container) {
	start := time.Now()

	timeout := ex.effectiveTimeout(ref.Name, q)
	engCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := engine.RequestParams{
		Query:      q.CleanQuery,
		Page:       q.Page,
		Language:   q.Language,
		SafeSearch: q.SafeSearch,
		TimeRange:  q.TimeRange,
		Category:   ref.Category,
	}

	req, err := eng.BuildRequest(params)
	if err != nil {
		container.AddUnresponsive(engine.UnresponsiveEngine{
			Name:  ref.Name,
			Error: engine.NewError(engine.ErrUnknown, err),
		})
		container.AddTiming(engine.Timing{Engine: ref.Name, Elapsed: time.Since(start)})
		return
	}

	engCtx = httpclient.WithEngineName(engCtx, ref.Name)
	resp, err := ex.fetcher.Do(engCtx, req)
	if err != nil {
		container.AddUnresponsive(engine.UnresponsiveEngine{
			Name:  ref.Name,
			Error: classifyFetchError(engCtx, err),
		})
		container.AddTiming(engine.Timing{Engine: ref.Name, Elapsed: time.Since(start)})
		return
	}

	out, err := eng.ParseResponse(resp)
	if err != nil {
		kind := engine.ErrParseError
		if strings.Contains(err.Error(), "CAPTCHA") {
			kind = engine.ErrCaptcha
		}
		container.AddUnresponsive(engine.UnresponsiveEngine{
			Name:  ref.Name,
			Error: engine.NewError(kind, err),
		})
		container.AddTiming(engine.Timing{Engine: ref.Name, Elapsed: time.Since(start)})
		return
	}

	for _, r := range out.Results {
		r.Category = ref.Category
		container.AddResult(r)
	}
	for _, a := range out.Answers {
		container.AddAnswer(a)
	}
	for _, s := range out.Suggestions {
		container.AddSuggestion(s)
	}
	for _, c := range out.Corrections {
		container.AddCorrection(c)
	}
	for _, b := range out.Infoboxes {
		container.AddInfobox(b)
	}

	container.AddTiming(engine.Timing{
		Engine:      ref.Name,
		Elapsed:     time.Since(start),
		ResultCount: len(out.Results),
	})
}

// effectiveTimeout implements spec.md §4.5 step 5:
// min(query.timeout_limit ?? registry.effective_timeout(name, default), max_timeout).
func (ex *Executor) effectiveTimeout(name string, q SearchQuery) time.Duration {
	var timeout time.Duration
	if q.TimeoutLimit != nil {
		timeout = *q.TimeoutLimit
	} else {
		timeout = time.Duration(ex.reg.EffectiveTimeout(name)) * time.Second
	}
	if q.MaxTimeout > 0 && timeout > q.MaxTimeout {
		timeout = q.MaxTimeout
	}
	return timeout
}

// classifyFetchError maps a cancellation/deadline from the per-engine
// context onto Timeout, leaving every other classification to whatever
// internal/httpclient already attached.
func classifyFetchError(ctx context.Context, err error) *engine.Error {
	if engErr, ok := err.(*engine.Error); ok {
		if ctx.Err() != nil {
			return engine.NewError(engine.ErrTimeout, ctx.Err())
		}
		return engErr
	}
	if ctx.Err() != nil {
		return engine.NewError(engine.ErrTimeout, ctx.Err())
	}
	return engine.NewError(engine.ErrUnknown, err)
}

// BuildEngineRefs assembles EngineRef values for a single category,
// drawing every enabled engine from the registry — the building block
// behind the convenience path in spec.md §4.5.
func BuildEngineRefs(reg *registry.Registry, category string) []EngineRef {
	names := reg.ByCategory(category)
	refs := make([]EngineRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, EngineRef{Name: name, Category: category})
	}
	return refs
}

// SearchCategory assembles EngineRefs for category from the registry using
// default language/safesearch and executes the search — spec.md §4.5's
// convenience path.
func (ex *Executor) SearchCategory(ctx context.Context, cleanQuery, category string, page int) *results.Container {
	return ex.Execute(ctx, SearchQuery{
		CleanQuery: cleanQuery,
		Page:       page,
		Engines:    BuildEngineRefs(ex.reg, category),
	})
}

// FromParsedQuery resolves a query.ParsedQuery against reg into a
// SearchQuery ready for Execute, explicit categories taking precedence
// over explicit engines, both unioned with the engine's own category when
// neither was specified.
func FromParsedQuery(reg *registry.Registry, pq query.ParsedQuery, maxTimeout time.Duration) SearchQuery {
	sq := SearchQuery{
		CleanQuery:   pq.CleanQuery,
		Page:         pq.PageNo,
		TimeRange:    pq.TimeRange,
		ExternalBang: pq.ExternalBang,
		MaxTimeout:   maxTimeout,
	}
	if len(pq.Languages) > 0 {
		sq.Language = pq.Languages[0]
	}
	if pq.SafeSearch != nil {
		sq.SafeSearch = *pq.SafeSearch
	}
	if pq.TimeoutSeconds != nil {
		d := time.Duration(*pq.TimeoutSeconds * float64(time.Second))
		sq.TimeoutLimit = &d
	}

	seen := map[string]bool{}
	addRef := func(name, category string) {
		if seen[name] {
			return
		}
		seen[name] = true
		sq.Engines = append(sq.Engines, EngineRef{Name: name, Category: category})
	}

	for _, cat := range pq.Categories {
		for _, name := range reg.ByCategory(cat) {
			addRef(name, cat)
		}
	}
	for _, name := range pq.Engines {
		category := ""
		if eng, ok := reg.Get(name); ok && len(eng.Categories()) > 0 {
			category = eng.Categories()[0]
		}
		addRef(name, category)
	}
	if len(sq.Engines) == 0 && pq.ExternalBang == "" {
		for _, name := range reg.ListEngines() {
			category := ""
			if eng, ok := reg.Get(name); ok && len(eng.Categories()) > 0 {
				category = eng.Categories()[0]
			}
			addRef(name, category)
		}
	}

	return sq
}
