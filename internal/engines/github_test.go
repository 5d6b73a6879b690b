// SPDX-License-Identifier: MIT
package engines

import (
	"testing"

	"github.com/apimgr/metaseek/internal/engine"
)

const githubSampleJSON = `{
  "items": [
    {"full_name": "golang/go", "html_url": "https://github.com/golang/go", "description": "The Go programming language", "stargazers_count": 100000, "language": "Go"}
  ]
}`

func TestGitHub_BuildRequest(t *testing.T) {
	e := NewGitHub()
	req, err := e.BuildRequest(engine.RequestParams{Query: "golang", Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Query.Get("q") != "golang" {
		t.Fatalf("got q=%q", req.Query.Get("q"))
	}
	if req.Query.Get("page") != "2" {
		t.Fatalf("got page=%q", req.Query.Get("page"))
	}
}

func TestGitHub_ParseResponse(t *testing.T) {
	e := NewGitHub()
	out, err := e.ParseResponse(&engine.EngineResponse{Body: []byte(githubSampleJSON)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	r := out.Results[0]
	if r.URL != "https://github.com/golang/go" || r.Title != "golang/go" {
		t.Fatalf("got %+v", r)
	}
	if r.Content != "[Go] The Go programming language" {
		t.Errorf("got content %q", r.Content)
	}
}
