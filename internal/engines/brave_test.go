// SPDX-License-Identifier: MIT
package engines

import (
	"testing"

	"github.com/apimgr/metaseek/internal/engine"
)

const braveSampleHTML = `
<div class="snippet" data-type="web">
  <a class="result-header" href="https://golang.org/">
    <span class="snippet-title">The Go Programming Language</span>
  </a>
  <p class="snippet-description">Go is an open source programming language.</p>
</div>
`

func TestBrave_BuildRequest(t *testing.T) {
	e := NewBrave()
	req, err := e.BuildRequest(engine.RequestParams{Query: "golang", Page: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Query.Get("q") != "golang" {
		t.Fatalf("got q=%q", req.Query.Get("q"))
	}
	if req.Query.Get("offset") != "2" {
		t.Fatalf("got offset=%q", req.Query.Get("offset"))
	}
}

func TestBrave_ParseResponse(t *testing.T) {
	e := NewBrave()
	out, err := e.ParseResponse(&engine.EngineResponse{Body: []byte(braveSampleHTML)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	r := out.Results[0]
	if r.URL != "https://golang.org/" {
		t.Errorf("got url %q", r.URL)
	}
	if r.Title != "The Go Programming Language" {
		t.Errorf("got title %q", r.Title)
	}
	if r.Content != "Go is an open source programming language." {
		t.Errorf("got content %q", r.Content)
	}
}
