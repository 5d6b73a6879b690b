// SPDX-License-Identifier: MIT
package plugins

import (
	"sync"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
)

// Pipeline holds every registered plugin plus which IDs are currently
// enabled, and runs the three hook points over them in registration order.
//
// Grounded on original_source/src/plugins/registry.rs's PluginRegistry.
// enabled is guarded by its own mutex (rather than left immutable like
// internal/registry.Registry) because plugin on/off state is expected to
// change at runtime from user preferences, unlike engine registration.
type Pipeline struct {
	plugins []Plugin

	mu      sync.RWMutex
	enabled map[string]bool
}

// NewPipeline returns an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{enabled: make(map[string]bool)}
}

// NewDefaultPipeline returns a Pipeline with the four built-in plugins
// registered, matching original_source's PluginRegistry::with_defaults.
func NewDefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Register(NewCalculatorPlugin())
	p.Register(NewHashPlugin())
	p.Register(NewTrackerRemoverPlugin())
	p.Register(NewUnitConverterPlugin())
	return p
}

// Register adds plugin to the pipeline, enabling it immediately if its Info
// says DefaultOn.
func (p *Pipeline) Register(plugin Plugin) {
	p.plugins = append(p.plugins, plugin)
	if plugin.Info().DefaultOn {
		p.mu.Lock()
		p.enabled[plugin.Info().ID] = true
		p.mu.Unlock()
	}
}

// Enable turns a plugin on by ID.
func (p *Pipeline) Enable(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled[id] = true
}

// Disable turns a plugin off by ID.
func (p *Pipeline) Disable(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.enabled, id)
}

// IsEnabled reports whether a plugin ID is currently enabled.
func (p *Pipeline) IsEnabled(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled[id]
}

func (p *Pipeline) enabledPlugins() []Plugin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Plugin, 0, len(p.plugins))
	for _, pl := range p.plugins {
		if p.enabled[pl.Info().ID] {
			out = append(out, pl)
		}
	}
	return out
}

// PreSearch runs every enabled plugin's PreSearch hook in registration
// order. The first non-Continue outcome ends the pipeline: PreAnswer and
// PreSkip both report skip=true (do not run the engines), differing only in
// whether an instant answer accompanies the skip; PreModifyQuery rewrites
// q.CleanQuery and the loop continues.
func (p *Pipeline) PreSearch(q *executor.SearchQuery) (answer *engine.Answer, skip bool) {
	for _, plugin := range p.enabledPlugins() {
		outcome := plugin.PreSearch(q)
		switch outcome.Action {
		case PreContinue:
			continue
		case PreAnswer:
			return outcome.Answer, true
		case PreSkip:
			return nil, true
		case PreModifyQuery:
			q.CleanQuery = outcome.NewQuery
		}
	}
	return nil, false
}

// OnResult runs every enabled plugin's OnResult hook, AND-ing their verdicts:
// the first plugin to reject a result ends the loop and the result is
// dropped.
func (p *Pipeline) OnResult(q *executor.SearchQuery, r *engine.Result) bool {
	for _, plugin := range p.enabledPlugins() {
		if !plugin.OnResult(q, r) {
			return false
		}
	}
	return true
}

// PostSearch threads results through every enabled plugin's PostSearch hook
// in registration order.
func (p *Pipeline) PostSearch(q *executor.SearchQuery, results []engine.Result) []engine.Result {
	for _, plugin := range p.enabledPlugins() {
		results = plugin.PostSearch(q, results)
	}
	return results
}

// TryAnswer returns the first enabled plugin's instant answer for query, in
// registration order, or ok=false if none matched or produced one.
func (p *Pipeline) TryAnswer(query string) (answer *engine.Answer, ok bool) {
	for _, plugin := range p.enabledPlugins() {
		if !plugin.MatchesQuery(query) {
			continue
		}
		if a, ok := plugin.Process(query); ok {
			return a, true
		}
	}
	return nil, false
}

// List returns every registered plugin's Info, in registration order.
func (p *Pipeline) List() []Info {
	out := make([]Info, 0, len(p.plugins))
	for _, pl := range p.plugins {
		out = append(out, pl.Info())
	}
	return out
}
