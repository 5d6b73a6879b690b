// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Server.Mode != "production" {
		t.Errorf("expected mode production, got %q", cfg.Server.Mode)
	}
	if cfg.Search.SafeSearch != 0 {
		t.Errorf("expected safe_search 0, got %d", cfg.Search.SafeSearch)
	}
	if cfg.Search.DefaultLang != "en" {
		t.Errorf("expected default_lang en, got %q", cfg.Search.DefaultLang)
	}
	if cfg.General.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.General.Database.Driver)
	}
	if cfg.General.Cache.Type != "memory" {
		t.Errorf("expected memory cache, got %q", cfg.General.Cache.Type)
	}
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	dataDir := filepath.Join(dir, "data")

	cfg, path, err := Load(configDir, dataDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if cfg.Server.Mode != "production" {
		t.Errorf("got mode %q", cfg.Server.Mode)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"PORT", "9999")
	t.Setenv(EnvPrefix+"DEBUG", "true")

	cfg, _, err := Load(filepath.Join(dir, "config"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("expected port override 9999, got %q", cfg.Server.Port)
	}
	if !cfg.General.Debug {
		t.Error("expected debug override to be true")
	}
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{
		"yes": true, "TRUE": true, "on": true, "enabled": true,
		"no": false, "off": false, "": false, "garbage": false,
	}
	for in, want := range cases {
		if got := ParseBool(in); got != want {
			t.Errorf("ParseBool(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidHost(t *testing.T) {
	if IsValidHost("127.0.0.1", false) {
		t.Error("IP addresses should never validate")
	}
	if IsValidHost("localhost", false) {
		t.Error("localhost should be invalid in production mode")
	}
	if !IsValidHost("localhost", true) {
		t.Error("localhost should be valid in dev mode")
	}
	if !IsValidHost("search.example.org", false) {
		t.Error("a real FQDN should validate in production mode")
	}
	if IsValidHost("metaseek.local", false) {
		t.Error("dev TLDs should be rejected in production mode")
	}
}
