// SPDX-License-Identifier: MIT
package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/retry"
)

func TestClient_SuccessfulGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second})
	req := engine.NewEngineRequest(srv.URL)
	resp, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("got body %q", resp.Body)
	}
}

func TestClient_TooManyRequestsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second, Retry: &retry.Config{MaxAttempts: 1}})
	req := engine.NewEngineRequest(srv.URL)
	_, err := c.Do(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error")
	}
	engErr, ok := err.(*engine.Error)
	if !ok {
		t.Fatalf("expected *engine.Error, got %T", err)
	}
	if engErr.Kind != engine.ErrTooManyRequests {
		t.Fatalf("got kind %v", engErr.Kind)
	}
}

func TestClient_ServerErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second, Retry: &retry.Config{MaxAttempts: 1}})
	req := engine.NewEngineRequest(srv.URL)
	_, err := c.Do(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error")
	}
	engErr, ok := err.(*engine.Error)
	if !ok {
		t.Fatalf("expected *engine.Error, got %T", err)
	}
	if engErr.Kind != engine.ErrServerError {
		t.Fatalf("got kind %v", engErr.Kind)
	}
}

func TestClient_QueryAndFormBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("expected query q=golang, got %q", r.URL.RawQuery)
		}
		r.ParseForm()
		if r.Form.Get("x") != "1" {
			t.Errorf("expected form x=1, got %v", r.Form)
		}
	}))
	defer srv.Close()

	req := engine.NewEngineRequest(srv.URL)
	req.Query.Set("q", "golang")
	req.Method = engine.MethodPOST
	req.BodyKind = engine.BodyForm
	req.Form = map[string][]string{"x": {"1"}}

	c := New(Config{Timeout: 2 * time.Second})
	_, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
