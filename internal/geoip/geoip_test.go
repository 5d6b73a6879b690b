// SPDX-License-Identifier: MIT
package geoip

import (
	"testing"

	"github.com/apimgr/metaseek/internal/config"
)

func TestDisabledServiceIsNoOp(t *testing.T) {
	s, err := New(config.GeoIPConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CountryCode("203.0.113.1") != "" {
		t.Error("expected empty country code when disabled")
	}
	if s.IsDenied("203.0.113.1") {
		t.Error("expected IsDenied false when disabled")
	}
}

func TestEnabledWithoutDatabasePathIsNoOp(t *testing.T) {
	s, err := New(config.GeoIPConfig{Enabled: true, DenyCountries: []string{"KP"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CountryCode("203.0.113.1") != "" {
		t.Error("expected empty country code without a configured database")
	}
}

func TestIsDeniedRequiresConfiguredCountries(t *testing.T) {
	s, err := New(config.GeoIPConfig{Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsDenied("203.0.113.1") {
		t.Error("expected IsDenied false with an empty deny list")
	}
}

func TestCloseWithoutOpenIsSafe(t *testing.T) {
	s, _ := New(config.GeoIPConfig{})
	if err := s.Close(); err != nil {
		t.Errorf("expected nil error closing an unopened service, got %v", err)
	}
}
