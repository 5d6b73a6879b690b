// SPDX-License-Identifier: MIT
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/apimgr/metaseek/internal/config"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := New(config.CacheConfig{Type: "memory", TTL: 1}, nil)
	defer c.Close()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "k", []byte("v"), 0)
	v, ok := c.Get(ctx, "k")
	if !ok || string(v) != "v" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	c := New(config.CacheConfig{Type: "memory", TTL: 1}, nil)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to have expired")
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := New(config.CacheConfig{Type: "memory", TTL: 60}, nil)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if c.Size(ctx) != 1 {
		t.Fatalf("expected size 1, got %d", c.Size(ctx))
	}
	c.Clear(ctx)
	if c.Size(ctx) != 0 {
		t.Fatalf("expected size 0 after clear, got %d", c.Size(ctx))
	}
}

func TestKeyIncludesEngines(t *testing.T) {
	k1 := Key("golang", 1, []string{"google", "bing"})
	k2 := Key("golang", 1, []string{"google"})
	if k1 == k2 {
		t.Fatal("expected distinct keys for different engine sets")
	}
}
