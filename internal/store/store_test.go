// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/apimgr/metaseek/internal/config"
)

func openTestStore(t *testing.T) *BanStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bans.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: dbPath}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewBanStore(db)
	if err != nil {
		t.Fatalf("NewBanStore: %v", err)
	}
	return store
}

func TestRecordFailureCreatesBan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	until := time.Now().Add(time.Minute)
	if err := s.RecordFailure(ctx, "brave", "timeout", until); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	b, ok := s.Get(ctx, "brave")
	if !ok {
		t.Fatal("expected ban record to exist")
	}
	if b.FailCount != 1 {
		t.Errorf("expected fail_count 1, got %d", b.FailCount)
	}
	if !s.IsBanned(ctx, "brave") {
		t.Error("expected engine to be banned")
	}
}

func TestRecordFailureIncrementsExistingBan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	until := time.Now().Add(time.Minute)
	_ = s.RecordFailure(ctx, "brave", "timeout", until)
	_ = s.RecordFailure(ctx, "brave", "connection refused", until.Add(time.Minute))

	b, ok := s.Get(ctx, "brave")
	if !ok {
		t.Fatal("expected ban record to exist")
	}
	if b.FailCount != 2 {
		t.Errorf("expected fail_count 2, got %d", b.FailCount)
	}
	if b.LastError != "connection refused" {
		t.Errorf("expected last_error updated, got %q", b.LastError)
	}
}

func TestClearRemovesBan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.RecordFailure(ctx, "brave", "timeout", time.Now().Add(time.Minute))
	if err := s.Clear(ctx, "brave"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.IsBanned(ctx, "brave") {
		t.Error("expected engine to no longer be banned")
	}
	if _, ok := s.Get(ctx, "brave"); ok {
		t.Error("expected ban record to be gone")
	}
}

func TestIsBannedFalseAfterExpiry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.RecordFailure(ctx, "brave", "timeout", time.Now().Add(-time.Second))
	if s.IsBanned(ctx, "brave") {
		t.Error("expected expired ban to report as not banned")
	}
}

func TestSweepExpiredDeletesOnlyExpired(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.RecordFailure(ctx, "expired-engine", "timeout", time.Now().Add(-time.Second))
	_ = s.RecordFailure(ctx, "active-engine", "timeout", time.Now().Add(time.Hour))

	n, err := s.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row swept, got %d", n)
	}
	if _, ok := s.Get(ctx, "expired-engine"); ok {
		t.Error("expected expired ban to be removed")
	}
	if _, ok := s.Get(ctx, "active-engine"); !ok {
		t.Error("expected active ban to remain")
	}
}

func TestAllListsRecordedBans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.RecordFailure(ctx, "brave", "timeout", time.Now().Add(time.Minute))
	_ = s.RecordFailure(ctx, "startpage", "503", time.Now().Add(time.Minute))

	bans, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(bans) != 2 {
		t.Errorf("expected 2 bans, got %d", len(bans))
	}
}
