// SPDX-License-Identifier: MIT
package query

import "testing"

type stubResolver map[string]string

func (s stubResolver) Resolve(token string) (string, bool) {
	name, ok := s[token]
	return name, ok
}

func TestParse_NoModifiers(t *testing.T) {
	pq := Parse("hello world", nil)
	if pq.CleanQuery != "hello world" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_Languages(t *testing.T) {
	pq := Parse(":en :de foo", nil)
	if len(pq.Languages) != 2 || pq.Languages[0] != "en" || pq.Languages[1] != "de" {
		t.Fatalf("got %v", pq.Languages)
	}
	if pq.CleanQuery != "foo" {
		t.Fatalf("clean query = %q", pq.CleanQuery)
	}
}

func TestParse_LanguageWithRegion(t *testing.T) {
	pq := Parse(":en-US foo", nil)
	if len(pq.Languages) != 1 || pq.Languages[0] != "en-US" {
		t.Fatalf("got %v", pq.Languages)
	}
}

func TestParse_Timeout(t *testing.T) {
	pq := Parse("foo <500ms", nil)
	if pq.TimeoutSeconds == nil || *pq.TimeoutSeconds != 0.5 {
		t.Fatalf("got %v", pq.TimeoutSeconds)
	}

	pq2 := Parse("foo <3", nil)
	if pq2.TimeoutSeconds == nil || *pq2.TimeoutSeconds != 3 {
		t.Fatalf("got %v", pq2.TimeoutSeconds)
	}
}

func TestParse_Safesearch(t *testing.T) {
	pq := Parse("!safesearch foo", nil)
	if pq.SafeSearch == nil || *pq.SafeSearch != 2 {
		t.Fatalf("got %v", pq.SafeSearch)
	}

	pq2 := Parse("!nosafesearch foo", nil)
	if pq2.SafeSearch == nil || *pq2.SafeSearch != 0 {
		t.Fatalf("got %v", pq2.SafeSearch)
	}
}

func TestParse_TimeRangeFirstWins(t *testing.T) {
	pq := Parse("!week !year foo", nil)
	if pq.TimeRange != "week" {
		t.Fatalf("got %q", pq.TimeRange)
	}
}

func TestParse_RedirectToFirst_DoubleBang(t *testing.T) {
	pq := Parse("!!foo", nil)
	if !pq.RedirectToFirst {
		t.Fatal("expected redirect_to_first")
	}
	if pq.CleanQuery != "foo" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_RedirectToFirst_BareBang(t *testing.T) {
	pq := Parse("! foo", nil)
	if !pq.RedirectToFirst {
		t.Fatal("expected redirect_to_first")
	}
	if pq.CleanQuery != "foo" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_CategoryBangs(t *testing.T) {
	pq := Parse("!images cats", nil)
	if len(pq.Categories) != 1 || pq.Categories[0] != "images" {
		t.Fatalf("got %v", pq.Categories)
	}
	if pq.CleanQuery != "cats" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_EngineBangs(t *testing.T) {
	r := stubResolver{"ddg": "duckduckgo", "g": "google"}
	pq := Parse("!ddg cats", r)
	if len(pq.Engines) != 1 || pq.Engines[0] != "duckduckgo" {
		t.Fatalf("got %v", pq.Engines)
	}
}

func TestParse_ExternalBangAllowListOverridesEngine(t *testing.T) {
	r := stubResolver{"g": "google"}
	pq := Parse("!g foo bar", r)
	if pq.ExternalBang != "g" {
		t.Fatalf("got %q", pq.ExternalBang)
	}
	if len(pq.Engines) != 0 {
		t.Fatalf("expected no engines, got %v", pq.Engines)
	}
	if pq.CleanQuery != "foo bar" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_UnknownBangPreserved(t *testing.T) {
	pq := Parse("!bogus foo", nil)
	if pq.CleanQuery != "!bogus foo" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_EmptyAfterStripping(t *testing.T) {
	pq := Parse("!images", nil)
	if pq.CleanQuery != "" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}

func TestParse_WhitespaceCollapsed(t *testing.T) {
	pq := Parse("foo    bar", nil)
	if pq.CleanQuery != "foo bar" {
		t.Fatalf("got %q", pq.CleanQuery)
	}
}
