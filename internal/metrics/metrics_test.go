// SPDX-License-Identifier: MIT
package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apimgr/metaseek/internal/config"
)

func TestHandlerExposesRecordedMetrics(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: true})
	m.RecordRequest("/search", "2xx")
	m.RecordSearch(150 * time.Millisecond)
	m.RecordEngineRequest("duckduckgo", 80*time.Millisecond)
	m.RecordEngineError("brave", "timeout")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"metaseek_http_requests_total",
		"metaseek_searches_total 1",
		"metaseek_engine_requests_total",
		`metaseek_engine_errors_total{engine="brave",kind="timeout"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestActiveRequestsGauge(t *testing.T) {
	m := New(config.MetricsConfig{})
	m.StartRequest()
	m.StartRequest()
	m.EndRequest()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "metaseek_active_requests 1") {
		t.Errorf("expected active_requests gauge to read 1, got:\n%s", rec.Body.String())
	}
}
