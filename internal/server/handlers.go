// SPDX-License-Identifier: MIT
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apimgr/metaseek/internal/config"
	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
	"github.com/apimgr/metaseek/internal/query"
	"github.com/apimgr/metaseek/internal/results"
	"github.com/apimgr/metaseek/internal/retry"
)

const banDuration = 5 * time.Minute

// handleSearch implements GET /search (spec.md §6): parses the raw query
// for bangs/modifiers, resolves it against the registry, dispatches
// through the executor, and renders the result in the requested format.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	if raw == "" {
		s.renderSearchEmpty(w, r)
		return
	}

	pq := query.Parse(raw, s.registry)
	if cats := r.URL.Query().Get("categories"); cats != "" {
		pq.Categories = append(pq.Categories, strings.Split(cats, ",")...)
	}
	if engines := r.URL.Query().Get("engines"); engines != "" {
		pq.Engines = append(pq.Engines, strings.Split(engines, ",")...)
	}
	if lang := r.URL.Query().Get("language"); lang != "" {
		pq.Languages = []string{lang}
	}
	if tr := r.URL.Query().Get("time_range"); tr != "" {
		pq.TimeRange = tr
	}
	if pn := r.URL.Query().Get("pageno"); pn != "" {
		if n, err := strconv.Atoi(pn); err == nil && n > 0 {
			pq.PageNo = n
		}
	}
	if pq.PageNo == 0 {
		pq.PageNo = 1
	}
	if ss := r.URL.Query().Get("safesearch"); ss != "" {
		if n, err := strconv.Atoi(ss); err == nil && n >= 0 && n <= 2 {
			pq.SafeSearch = &n
		}
	}

	maxTimeout := time.Duration(s.cfg.Outgoing.MaxRequestTimeout * float64(time.Second))
	sq := executor.FromParsedQuery(s.registry, pq, maxTimeout)

	if s.geoip != nil && s.geoip.IsDenied(clientIP(r)) {
		escalated := 2
		sq.SafeSearch = escalated
	}

	sq.Engines = s.filterBanned(r.Context(), sq.Engines)

	// PreSearch reports skip=true for both an instant answer (answer != nil)
	// and a plain skip (answer == nil); either way the engines never run.
	if answer, skip := s.pipeline.PreSearch(&sq); skip {
		s.renderAnswerOnly(w, r, answer, sq.CleanQuery)
		return
	}

	// The instant-answer facet (Calculator, Hash, Unit converter) is
	// distinct from pre_search: it runs before a normal search the same
	// way, but short-circuits based on matches_query/process rather than
	// a pre_search verdict.
	if answer, ok := s.pipeline.TryAnswer(sq.CleanQuery); ok {
		s.renderAnswerOnly(w, r, answer, sq.CleanQuery)
		return
	}

	searchStart := time.Now()
	container := s.executor.Execute(r.Context(), sq)
	searchElapsed := time.Since(searchStart)
	s.recordEngineOutcomes(r.Context(), container)

	if redirect := container.RedirectURL(); redirect != "" {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordSearch(searchElapsed)
	}

	s.renderResults(w, r, sq, container, s.applyResultPlugins(&sq, container))
}

// applyResultPlugins runs the on_result and post_search hooks over a
// container's full scored result list: on_result filters and may rewrite
// each result in place (e.g. the tracker-URL remover), post_search then
// gets a shot at the survivors as a whole (reorder, rewrite, drop).
func (s *Server) applyResultPlugins(sq *executor.SearchQuery, c *results.Container) []engine.Result {
	all := c.Results()
	kept := make([]engine.Result, 0, len(all))
	for _, r := range all {
		if s.pipeline.OnResult(sq, &r) {
			kept = append(kept, r)
		}
	}
	return s.pipeline.PostSearch(sq, kept)
}

// filterBanned drops engines currently serving a ban, so a sick engine
// doesn't get dispatched again before its ban expires.
func (s *Server) filterBanned(ctx context.Context, refs []executor.EngineRef) []executor.EngineRef {
	if s.bans == nil {
		return refs
	}
	out := make([]executor.EngineRef, 0, len(refs))
	for _, ref := range refs {
		if !s.bans.IsBanned(ctx, ref.Name) {
			out = append(out, ref)
		}
	}
	return out
}

// recordEngineOutcomes feeds each engine's outcome back into the ban
// store: a TooManyRequests/Captcha classification records a failure and
// (re)sets that engine's ban expiry. Other outcomes leave the store
// untouched; a ban ends when its expiry passes, and the scheduled sweep
// deletes expired rows.
func (s *Server) recordEngineOutcomes(ctx context.Context, container *results.Container) {
	if s.bans == nil {
		return
	}
	for _, u := range container.Unresponsive() {
		if u.Error == nil {
			continue
		}
		switch u.Error.Kind {
		case engine.ErrTooManyRequests, engine.ErrCaptcha:
			until := time.Now().Add(s.banTTL())
			_ = s.bans.RecordFailure(ctx, u.Name, u.Error.Error(), until)
		}
	}
}

func (s *Server) banTTL() time.Duration {
	seconds := s.cfg.Search.BanTimeOnFail
	if seconds <= 0 {
		seconds = int(banDuration.Seconds())
	}
	max := s.cfg.Search.MaxBanTimeOnFail
	if max > 0 && seconds > max {
		seconds = max
	}
	return time.Duration(seconds) * time.Second
}

// handleAutocomplete proxies GET /autocomplete to the configured
// suggestion backend, caching each backend response for one minute.
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, []string{})
		return
	}

	key := "autocomplete:" + s.cfg.UI.AutocompleteBackend + ":" + q
	if cached, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	suggestions := s.fetchAutocomplete(r.Context(), q)
	body := marshalSuggestions(suggestions)
	s.cache.Set(r.Context(), key, body, time.Minute)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "metaseek", indexBody())
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "About", aboutBody())
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	renderPreferences(w, s.cfg, s.registry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"engines": s.registry.ListEngines(),
	}
	if s.bans != nil {
		bans, err := s.bans.All(r.Context())
		if err == nil {
			names := make([]string, 0, len(bans))
			for _, b := range bans {
				names = append(names, b.Engine)
			}
			stats["banned_engines"] = names
		}
	}
	if s.breakers != nil {
		open := make([]string, 0)
		for name, cb := range s.breakers.GetAll() {
			if cb.State() == retry.StateOpen {
				open = append(open, name)
			}
		}
		stats["open_circuit_breakers"] = open
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleRobotsTxt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: /\n"))
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

// clientIP returns the first X-Forwarded-For hop, falling back to
// RemoteAddr, mirroring how the executor's caller determines the
// requester's apparent address for GeoIP lookups.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i != -1 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
