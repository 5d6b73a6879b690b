// SPDX-License-Identifier: MIT
package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/query"
	"github.com/apimgr/metaseek/internal/registry"
)

type stubEngine struct {
	*engine.Base
	buildErr error
	results  *engine.EngineResults
	parseErr error
}

func newStubEngine(name string, categories ...string) *stubEngine {
	return &stubEngine{Base: engine.NewBase(name, "stub", categories, engine.Capabilities{})}
}

func (e *stubEngine) BuildRequest(p engine.RequestParams) (*engine.EngineRequest, error) {
	if e.buildErr != nil {
		return nil, e.buildErr
	}
	return engine.NewEngineRequest("https://example.com/" + e.Name()), nil
}

func (e *stubEngine) ParseResponse(resp *engine.EngineResponse) (*engine.EngineResults, error) {
	if e.parseErr != nil {
		return nil, e.parseErr
	}
	if e.results != nil {
		return e.results, nil
	}
	return &engine.EngineResults{}, nil
}

type stubFetcher struct {
	delay   time.Duration
	fetchErr error
}

func (f *stubFetcher) Do(ctx context.Context, req *engine.EngineRequest) (*engine.EngineResponse, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &engine.EngineResponse{StatusCode: 200}, nil
}

func TestExecutor_EmptyQueryShortCircuits(t *testing.T) {
	reg, _ := registry.New([]engine.Engine{newStubEngine("a", "general")})
	ex := New(reg, &stubFetcher{})

	c := ex.Execute(context.Background(), SearchQuery{CleanQuery: "  "})
	if c.Count() != 0 {
		t.Fatalf("expected empty container, got %d results", c.Count())
	}
}

func TestExecutor_ExternalBangShortCircuits(t *testing.T) {
	reg, _ := registry.New([]engine.Engine{newStubEngine("a", "general")})
	ex := New(reg, &stubFetcher{})

	c := ex.Execute(context.Background(), SearchQuery{CleanQuery: "golang", ExternalBang: "g"})
	if c.RedirectURL() == "" {
		t.Fatal("expected a redirect URL")
	}
	if c.Count() != 0 {
		t.Fatalf("expected no engine calls, got %d results", c.Count())
	}
}

func TestExecutor_UnknownEngineNameSkipped(t *testing.T) {
	reg, _ := registry.New([]engine.Engine{newStubEngine("a", "general")})
	ex := New(reg, &stubFetcher{})

	c := ex.Execute(context.Background(), SearchQuery{
		CleanQuery: "golang",
		Engines:    []EngineRef{{Name: "bogus", Category: "general"}},
	})
	if len(c.Unresponsive()) != 0 {
		t.Fatalf("unknown engine should be silently skipped, got %v", c.Unresponsive())
	}
	if c.Count() != 0 {
		t.Fatalf("expected no results, got %d", c.Count())
	}
}

func TestExecutor_BuildRequestFailureRecordsUnresponsive(t *testing.T) {
	e := newStubEngine("a", "general")
	e.buildErr = errors.New("boom")
	reg, _ := registry.New([]engine.Engine{e})
	ex := New(reg, &stubFetcher{})

	c := ex.Execute(context.Background(), SearchQuery{
		CleanQuery: "golang",
		Engines:    []EngineRef{{Name: "a", Category: "general"}},
	})
	unresp := c.Unresponsive()
	if len(unresp) != 1 || unresp[0].Name != "a" {
		t.Fatalf("got %v", unresp)
	}
}

func TestExecutor_PerEngineTimeoutIndependent(t *testing.T) {
	slow := newStubEngine("slow", "general")
	reg, _ := registry.New(
		[]engine.Engine{slow},
		registry.WithConfig("slow", registry.EngineConfig{Timeout: 1}),
	)
	ex := New(reg, &stubFetcher{delay: 2 * time.Second})

	start := time.Now()
	c := ex.Execute(context.Background(), SearchQuery{
		CleanQuery: "golang",
		Engines:    []EngineRef{{Name: "slow", Category: "general"}},
	})
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Fatalf("expected ~1s timeout, took %v", elapsed)
	}
	unresp := c.Unresponsive()
	if len(unresp) != 1 || unresp[0].Error.Kind != engine.ErrTimeout {
		t.Fatalf("got %v", unresp)
	}
}

func TestExecutor_SuccessMergesResultsAndTiming(t *testing.T) {
	e := newStubEngine("a", "general")
	e.results = &engine.EngineResults{
		Results: []engine.Result{{URL: "https://x.com/1", Title: "x", Engine: "a", Engines: []string{"a"}, Positions: []int{1}}},
	}
	reg, _ := registry.New([]engine.Engine{e})
	ex := New(reg, &stubFetcher{})

	c := ex.Execute(context.Background(), SearchQuery{
		CleanQuery: "golang",
		Engines:    []EngineRef{{Name: "a", Category: "general"}},
	})
	if c.Count() != 1 {
		t.Fatalf("expected 1 result, got %d", c.Count())
	}
	timings := c.Timings()
	if len(timings) != 1 || timings[0].ResultCount != 1 {
		t.Fatalf("got %v", timings)
	}
}

func TestFromParsedQuery_CategoryAndEngineUnion(t *testing.T) {
	reg, _ := registry.New([]engine.Engine{
		newStubEngine("a", "general"),
		newStubEngine("b", "images"),
	})

	pq := query.ParsedQuery{CleanQuery: "cats", Categories: []string{"images"}, Engines: []string{"a"}, PageNo: 1}
	sq := FromParsedQuery(reg, pq, 0)

	names := map[string]bool{}
	for _, ref := range sq.Engines {
		names[ref.Name] = true
	}
	if !names["a"] || !names["b"] {
		t.Fatalf("expected both a and b, got %v", sq.Engines)
	}
}

func TestFromParsedQuery_NoModifiersFansOutToAllEngines(t *testing.T) {
	reg, _ := registry.New([]engine.Engine{
		newStubEngine("a", "general"),
		newStubEngine("b", "general"),
	})

	pq := query.ParsedQuery{CleanQuery: "cats", PageNo: 1}
	sq := FromParsedQuery(reg, pq, 0)
	if len(sq.Engines) != 2 {
		t.Fatalf("expected fan-out to all engines, got %v", sq.Engines)
	}
}

// TestEffectiveTimeout_UserValueAboveRegistryDefaultWins covers spec.md
// §4.5 step 5: a user-requested timeout above the registry's own default
// is honored, not silently capped down to the registry value.
func TestEffectiveTimeout_UserValueAboveRegistryDefaultWins(t *testing.T) {
	reg, _ := registry.New(
		[]engine.Engine{newStubEngine("a", "general")},
		registry.WithConfig("a", registry.EngineConfig{Timeout: 3}),
	)
	ex := New(reg, &stubFetcher{})

	userTimeout := 10 * time.Second
	sq := SearchQuery{TimeoutLimit: &userTimeout}
	if got := ex.effectiveTimeout("a", sq); got != userTimeout {
		t.Fatalf("expected user timeout %v to win over registry default, got %v", userTimeout, got)
	}
}

// TestEffectiveTimeout_MaxTimeoutStillCapsUserValue ensures MaxTimeout
// remains a hard ceiling even when the user's requested value exceeds it.
func TestEffectiveTimeout_MaxTimeoutStillCapsUserValue(t *testing.T) {
	reg, _ := registry.New(
		[]engine.Engine{newStubEngine("a", "general")},
		registry.WithConfig("a", registry.EngineConfig{Timeout: 3}),
	)
	ex := New(reg, &stubFetcher{})

	userTimeout := 30 * time.Second
	sq := SearchQuery{TimeoutLimit: &userTimeout, MaxTimeout: 15 * time.Second}
	if got := ex.effectiveTimeout("a", sq); got != 15*time.Second {
		t.Fatalf("expected MaxTimeout to cap the result at 15s, got %v", got)
	}
}

// TestEffectiveTimeout_NoUserValueFallsBackToRegistry ensures the registry
// default still applies when the query didn't request a timeout.
func TestEffectiveTimeout_NoUserValueFallsBackToRegistry(t *testing.T) {
	reg, _ := registry.New(
		[]engine.Engine{newStubEngine("a", "general")},
		registry.WithConfig("a", registry.EngineConfig{Timeout: 3}),
	)
	ex := New(reg, &stubFetcher{})

	sq := SearchQuery{}
	if got := ex.effectiveTimeout("a", sq); got != 3*time.Second {
		t.Fatalf("expected registry default 3s, got %v", got)
	}
}
