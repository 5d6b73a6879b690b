// SPDX-License-Identifier: MIT

// Package registry holds the set of loaded engines and the lookup tables
// built from them: name, shortcut, and category indexes plus per-engine
// configuration overrides (timeout, weight, disabled).
//
// Grounded on src/server/service/engine/manager.go's Manager (engine map
// plus config-driven enable/disable in applyConfig) and bangs.go's
// BangMapping/EngineDisplayNames tables, restructured into the
// read-only-after-construction shape spec.md §4.3 requires: a Registry is
// built once at startup from configuration and never mutated again, so
// unlike the teacher's Manager it carries no mutex.
package registry

import (
	"fmt"
	"sort"

	"github.com/apimgr/metaseek/internal/engine"
)

// EngineConfig is the per-engine override section of configuration: a
// disabled engine is loaded but excluded from ByCategory and ListEngines
// (Get and Resolve still find it), and a zero Weight or Timeout leaves the
// engine's own default untouched.
type EngineConfig struct {
	Disabled bool
	Weight   float64
	Timeout  int
	Shortcut string
}

// ExternalRedirect is an entry in the external-bang redirect table
// (spec.md §6): a bang token that sends the browser straight to a
// third-party site instead of resolving to a loaded engine.
type ExternalRedirect struct {
	Token    string
	URLTmpl  string // contains a single %s for the escaped query
}

// DefaultExternalBangs is the redirect table the executor consults when a
// ParsedQuery carries an ExternalBang that matched query.ExternalBangAllowList.
var DefaultExternalBangs = map[string]ExternalRedirect{
	"g":      {Token: "g", URLTmpl: "https://www.google.com/search?q=%s"},
	"yt":     {Token: "yt", URLTmpl: "https://www.youtube.com/results?search_query=%s"},
	"w":      {Token: "w", URLTmpl: "https://en.wikipedia.org/wiki/Special:Search?search=%s"},
	"wa":     {Token: "wa", URLTmpl: "https://www.wolframalpha.com/input?i=%s"},
	"amazon": {Token: "amazon", URLTmpl: "https://www.amazon.com/s?k=%s"},
	"imdb":   {Token: "imdb", URLTmpl: "https://www.imdb.com/find?q=%s"},
}

// Registry is the immutable, post-construction-read-only index of loaded
// engines. Every field is populated once by New and never written again, so
// concurrent Resolve/ByCategory/Get calls from executor goroutines need no
// locking.
type Registry struct {
	byName     map[string]engine.Engine
	byShortcut map[string]string
	byCategory map[string][]string
	configs    map[string]EngineConfig
	// order preserves load order for deterministic ListEngines output.
	order []string
}

// Option mutates a Registry under construction; New applies them in order
// after every engine has been indexed, so overrides always win regardless
// of registration order.
type Option func(*Registry)

// WithConfig applies an EngineConfig override for an already-registered
// engine name. Overriding an unknown name is a no-op: the registry only
// ever reflects engines it was actually given.
func WithConfig(name string, cfg EngineConfig) Option {
	return func(r *Registry) {
		if _, ok := r.byName[name]; !ok {
			return
		}
		r.configs[name] = cfg
		if cfg.Shortcut != "" {
			r.byShortcut[cfg.Shortcut] = name
		}
	}
}

// New builds a Registry from a fixed set of engines. Each engine's own
// Name() is both its canonical name and its default shortcut; category
// membership comes from Categories(). Disabled engines (set via
// WithConfig) remain resolvable by exact name but are excluded from
// ByCategory and ListEngines.
func New(engines []engine.Engine, opts ...Option) (*Registry, error) {
	r := &Registry{
		byName:     make(map[string]engine.Engine, len(engines)),
		byShortcut: make(map[string]string, len(engines)),
		byCategory: make(map[string][]string),
		configs:    make(map[string]EngineConfig, len(engines)),
	}

	for _, e := range engines {
		name := e.Name()
		if name == "" {
			return nil, fmt.Errorf("registry: engine with empty name")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("registry: duplicate engine name %q", name)
		}
		r.byName[name] = e
		r.byShortcut[name] = name
		r.order = append(r.order, name)
	}

	for _, opt := range opts {
		opt(r)
	}

	for _, name := range r.order {
		if r.configs[name].Disabled {
			continue
		}
		for _, cat := range r.byName[name].Categories() {
			r.byCategory[cat] = append(r.byCategory[cat], name)
		}
	}
	for cat := range r.byCategory {
		sort.Strings(r.byCategory[cat])
	}

	return r, nil
}

// Resolve implements query.Resolver: it maps an engine name or shortcut
// token (already lowercased and with its leading "!" stripped by the
// caller) to a canonical engine name. A disabled engine still resolves —
// disambiguating "configured but off" from "never heard of it" is the
// executor's job, not the parser's.
func (r *Registry) Resolve(token string) (string, bool) {
	name, ok := r.byShortcut[token]
	return name, ok
}

// Get returns the engine registered under name, regardless of its enabled
// state.
func (r *Registry) Get(name string) (engine.Engine, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// IsEnabled reports whether name is both known and not disabled.
func (r *Registry) IsEnabled(name string) bool {
	if _, ok := r.byName[name]; !ok {
		return false
	}
	return !r.configs[name].Disabled
}

// ByCategory returns the sorted, enabled engine names registered under
// category. An unknown or empty category yields an empty slice, never an
// error — callers treat "no engines for this category" as a normal,
// zero-result case.
func (r *Registry) ByCategory(category string) []string {
	names := r.byCategory[category]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// ListEngines returns every enabled engine's canonical name, in load
// order.
func (r *Registry) ListEngines() []string {
	out := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if !r.configs[name].Disabled {
			out = append(out, name)
		}
	}
	return out
}

// EffectiveWeight returns the configured weight override for name, or the
// engine's own default when no override (or a zero override) was set.
func (r *Registry) EffectiveWeight(name string) float64 {
	if cfg, ok := r.configs[name]; ok && cfg.Weight > 0 {
		return cfg.Weight
	}
	if e, ok := r.byName[name]; ok {
		return e.Weight()
	}
	return 1.0
}

// EffectiveTimeout returns the configured timeout override for name in
// seconds, or the engine's own default when no override was set.
func (r *Registry) EffectiveTimeout(name string) int {
	if cfg, ok := r.configs[name]; ok && cfg.Timeout > 0 {
		return cfg.Timeout
	}
	if e, ok := r.byName[name]; ok {
		return e.TimeoutSeconds()
	}
	return 5
}

// ResolveExternalBang looks up a token from query.ExternalBangAllowList in
// the redirect table and returns the destination URL with query
// URL-escaped into it.
func ResolveExternalBang(token, escapedQuery string) (string, bool) {
	red, ok := DefaultExternalBangs[token]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(red.URLTmpl, escapedQuery), true
}
