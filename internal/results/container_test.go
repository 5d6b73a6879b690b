// SPDX-License-Identifier: MIT
package results

import (
	"testing"

	"github.com/apimgr/metaseek/internal/engine"
)

func TestDedupKey(t *testing.T) {
	cases := map[string]string{
		"https://www.Rust-lang.org/":  "rust-lang.org",
		"http://rust-lang.org":        "rust-lang.org",
		"https://rust-lang.org/":      "rust-lang.org",
		"https://rust-lang.org/learn": "rust-lang.org/learn",
	}
	for in, want := range cases {
		if got := DedupKey(in); got != want {
			t.Errorf("DedupKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContainer_BasicMultiEngineMerge(t *testing.T) {
	c := New(map[string]float64{"google": 1, "bing": 1})
	c.AddResult(engine.Result{
		URL: "https://rust-lang.org", Title: "Rust",
		Engine: "google", Engines: []string{"google"}, Positions: []int{1},
	})
	c.AddResult(engine.Result{
		URL: "https://www.rust-lang.org/", Title: "Rust",
		Engine: "bing", Engines: []string{"bing"}, Positions: []int{1},
	})

	if c.Count() != 1 {
		t.Fatalf("expected 1 merged result, got %d", c.Count())
	}
	res := c.Results()
	if len(res[0].Engines) != 2 {
		t.Fatalf("expected 2 engines, got %v", res[0].Engines)
	}
	if len(res[0].Positions) != 2 {
		t.Fatalf("expected 2 positions, got %v", res[0].Positions)
	}
}

func TestContainer_ScoreAdditivity(t *testing.T) {
	c := New(map[string]float64{"a": 1, "b": 1})
	c.AddResult(engine.Result{URL: "https://x.com/1", Engine: "a", Engines: []string{"a"}, Positions: []int{2}})
	c.AddResult(engine.Result{URL: "https://x.com/1", Engine: "b", Engines: []string{"b"}, Positions: []int{3}})

	res := c.Results()
	want := 2.0 * (1.0/2.0 + 1.0/3.0)
	if diff := res[0].Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score = %v, want %v", res[0].Score, want)
	}
}

func TestContainer_ScoringMonotonicity(t *testing.T) {
	c := New(map[string]float64{"a": 1})
	c.AddResult(engine.Result{URL: "https://x.com/1", Engine: "a", Engines: []string{"a"}, Positions: []int{1}})
	c.AddResult(engine.Result{URL: "https://x.com/2", Engine: "a", Engines: []string{"a"}, Positions: []int{5}})

	res := c.Results()
	byURL := map[string]engine.Result{}
	for _, r := range res {
		byURL[r.URL] = r
	}
	if byURL["https://x.com/1"].Score <= byURL["https://x.com/2"].Score {
		t.Fatal("worse position should never score higher")
	}
}

func TestContainer_SortOrderAndTieBreak(t *testing.T) {
	c := New(map[string]float64{"a": 1})
	c.AddResult(engine.Result{URL: "https://x.com/first", Engine: "a", Engines: []string{"a"}, Positions: []int{1}})
	c.AddResult(engine.Result{URL: "https://x.com/second", Engine: "a", Engines: []string{"a"}, Positions: []int{1}})

	res := c.Results()
	if res[0].URL != "https://x.com/first" {
		t.Fatalf("expected insertion-order tiebreak, got %v", res)
	}
}

func TestContainer_WeightZeroZeroesScore(t *testing.T) {
	c := New(map[string]float64{"dead": 0})
	c.AddResult(engine.Result{URL: "https://x.com/1", Engine: "dead", Engines: []string{"dead"}, Positions: []int{1}})
	res := c.Results()
	if res[0].Score != 0 {
		t.Fatalf("expected zero score, got %v", res[0].Score)
	}
}

func TestContainer_Pagination(t *testing.T) {
	c := New(map[string]float64{"a": 1})
	for i := 1; i <= 5; i++ {
		c.AddResult(engine.Result{
			URL: "https://x.com/" + string(rune('0'+i)), Engine: "a",
			Engines: []string{"a"}, Positions: []int{i},
		})
	}
	if got := c.Page(1, 2); len(got) != 2 {
		t.Fatalf("page 1 len = %d", len(got))
	}
	if got := c.Page(3, 2); len(got) != 1 {
		t.Fatalf("page 3 len = %d", len(got))
	}
	if got := c.Page(10, 2); len(got) != 0 {
		t.Fatalf("page past end should be empty, got %v", got)
	}
}

func TestContainer_MergeAdoptsContentOnlyIfMissing(t *testing.T) {
	c := New(map[string]float64{"a": 1, "b": 1})
	c.AddResult(engine.Result{URL: "https://x.com/1", Title: "first title", Engine: "a", Engines: []string{"a"}, Positions: []int{1}})
	c.AddResult(engine.Result{URL: "https://x.com/1", Title: "second title", Content: "body", Engine: "b", Engines: []string{"b"}, Positions: []int{2}})

	res := c.Results()
	if res[0].Title != "first title" {
		t.Fatalf("expected first-writer-wins title, got %q", res[0].Title)
	}
	if res[0].Content != "body" {
		t.Fatalf("expected adopted content, got %q", res[0].Content)
	}
}

func TestContainer_AnswerDedupEarliestWins(t *testing.T) {
	c := New(nil)
	c.AddAnswer(engine.Answer{Text: "42", Engine: "calculator"})
	c.AddAnswer(engine.Answer{Text: "42", Engine: "wolfram"})
	if got := c.Answers(); len(got) != 1 || got[0].Engine != "calculator" {
		t.Fatalf("got %v", got)
	}
}

func TestContainer_SuggestionSetSemantics(t *testing.T) {
	c := New(nil)
	c.AddSuggestion(engine.Suggestion{Text: "golang", Engine: "google"})
	c.AddSuggestion(engine.Suggestion{Text: "golang", Engine: "bing"})
	c.AddSuggestion(engine.Suggestion{Text: "golang", Engine: "google"})
	if got := c.Suggestions(); len(got) != 2 {
		t.Fatalf("expected 2 distinct (text, engine) pairs, got %v", got)
	}
}

func TestContainer_InfoboxCollisionLongerContentWins(t *testing.T) {
	c := New(nil)
	c.AddInfobox(engine.Infobox{ID: "golang", Content: "short"})
	c.AddInfobox(engine.Infobox{ID: "golang", Content: "a much longer description"})
	got := c.Infoboxes()
	if len(got) != 1 || got[0].Content != "a much longer description" {
		t.Fatalf("got %v", got)
	}
}

func TestContainer_RedirectURL(t *testing.T) {
	c := New(nil)
	if c.RedirectURL() != "" {
		t.Fatal("expected empty redirect initially")
	}
	c.SetRedirectURL("https://www.google.com/search?q=x")
	if c.RedirectURL() != "https://www.google.com/search?q=x" {
		t.Fatalf("got %q", c.RedirectURL())
	}
}

func TestContainer_UnknownCategoryStyleEmptyPage(t *testing.T) {
	c := New(nil)
	if got := c.Page(1, 10); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
