// SPDX-License-Identifier: MIT
package engine

// Base provides the static-metadata half of the Engine contract so concrete
// engines in internal/engines only need to implement BuildRequest and
// ParseResponse. Mirrors the teacher's BaseEngine (name/displayName/tier/
// timeout fields plus accessor methods) generalized from a single video-tube
// shape to any general-web source.
type Base struct {
	name           string
	about          string
	categories     []string
	capabilities   Capabilities
	weight         float64
	timeoutSeconds int
	resultsPerPage int
}

// NewBase constructs a Base with spec.md's defaults: weight 1.0, 5s timeout,
// 10 results per page.
func NewBase(name, about string, categories []string, caps Capabilities) *Base {
	return &Base{
		name:           name,
		about:          about,
		categories:     categories,
		capabilities:   caps,
		weight:         1.0,
		timeoutSeconds: 5,
		resultsPerPage: 10,
	}
}

func (b *Base) Name() string             { return b.name }
func (b *Base) About() string            { return b.about }
func (b *Base) Categories() []string     { return b.categories }
func (b *Base) Capabilities() Capabilities { return b.capabilities }
func (b *Base) Weight() float64          { return b.weight }
func (b *Base) TimeoutSeconds() int      { return b.timeoutSeconds }
func (b *Base) ResultsPerPage() int      { return b.resultsPerPage }

// SetWeight overrides the default weight, used by the registry when
// applying engines[].weight from configuration.
func (b *Base) SetWeight(w float64) { b.weight = w }

// SetTimeoutSeconds overrides the default per-engine timeout.
func (b *Base) SetTimeoutSeconds(s int) { b.timeoutSeconds = s }

// SetResultsPerPage overrides the default page size.
func (b *Base) SetResultsPerPage(n int) { b.resultsPerPage = n }
