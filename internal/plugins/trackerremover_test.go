// SPDX-License-Identifier: MIT
package plugins

import (
	"strings"
	"testing"

	"github.com/apimgr/metaseek/internal/engine"
)

func TestTrackerRemover_RemovesUTMParams(t *testing.T) {
	cleaned := cleanTrackedURL("https://example.com/page?foo=bar&utm_source=google&utm_medium=cpc")
	if cleaned != "https://example.com/page?foo=bar" {
		t.Fatalf("got %q", cleaned)
	}
}

func TestTrackerRemover_RemovesFbclid(t *testing.T) {
	cleaned := cleanTrackedURL("https://example.com/?fbclid=IwAR123456")
	if cleaned != "https://example.com/" {
		t.Fatalf("got %q", cleaned)
	}
}

func TestTrackerRemover_KeepsNonTrackingParams(t *testing.T) {
	cleaned := cleanTrackedURL("https://example.com/search?q=test&page=2")
	if !strings.Contains(cleaned, "q=test") || !strings.Contains(cleaned, "page=2") {
		t.Fatalf("got %q", cleaned)
	}
}

func TestTrackerRemover_GaPatternRemoved(t *testing.T) {
	cleaned := cleanTrackedURL("https://example.com/?q=test&_ga=1.2.3")
	if strings.Contains(cleaned, "_ga") {
		t.Fatalf("expected _ga param removed, got %q", cleaned)
	}
}

func TestTrackerRemover_InvalidURLPassthrough(t *testing.T) {
	raw := "not a url :://"
	if got := cleanTrackedURL(raw); got != raw {
		t.Fatalf("got %q, want passthrough", got)
	}
}

func TestTrackerRemover_OnResultRewritesURL(t *testing.T) {
	p := NewTrackerRemoverPlugin()
	r := &engine.Result{URL: "https://example.com/?utm_source=x&q=1"}
	if ok := p.OnResult(nil, r); !ok {
		t.Fatal("expected OnResult to keep the result")
	}
	if strings.Contains(r.URL, "utm_source") {
		t.Fatalf("got %q", r.URL)
	}
	if !strings.Contains(r.URL, "q=1") {
		t.Fatalf("got %q", r.URL)
	}
}
