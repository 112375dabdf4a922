package cache

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNopAlwaysMisses(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	if err := c.Set(ctx, "reports:semana", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out map[string]int
	if err := c.Get(ctx, "reports:semana", &out); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), server.Addr(), "", 0, "quimo", nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, server
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, server := newTestRedisCache(t)

	if err := c.Set(ctx, "reports:mes", []string{"Cloro"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !server.Exists("quimo:reports:mes") {
		t.Fatalf("expected namespaced key, got %v", server.Keys())
	}

	var got []string
	if err := c.Get(ctx, "reports:mes", &got); err != nil || len(got) != 1 || got[0] != "Cloro" {
		t.Fatalf("unexpected get result %v, %v", got, err)
	}

	server.FastForward(2 * time.Minute)
	if err := c.Get(ctx, "reports:mes", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after ttl, got %v", err)
	}
}

func TestRedisCacheInvalidateKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	c, server := newTestRedisCache(t)

	for _, key := range []string{ReportPrefix + "period:semana:2026-10-19", ReportPrefix + "period:mes:2026-10-19"} {
		if err := c.Set(ctx, key, 1, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := c.Set(ctx, "catalog:productos", 1, time.Minute); err != nil {
		t.Fatalf("set catalog: %v", err)
	}
	if err := server.Set("otra-app:reports:semana", "1"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	if err := c.Invalidate(ctx, ReportPrefix); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	keys := server.Keys()
	sort.Strings(keys)
	want := []string{"otra-app:reports:semana", "quimo:catalog:productos"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("expected only quimo:reports: keys removed, left %v", keys)
	}

	// nothing left to delete
	if err := c.Invalidate(ctx, ReportPrefix); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}

func TestRedisCacheDecodeError(t *testing.T) {
	c, server := newTestRedisCache(t)
	if err := server.Set("quimo:reports:roto", "{no json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out map[string]int
	err := c.Get(context.Background(), "reports:roto", &out)
	if err == nil || errors.Is(err, ErrMiss) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestNewRedisCacheFailsWithoutServer(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	if _, err := NewRedisCache(context.Background(), addr, "", 0, "quimo", nil); err == nil {
		t.Fatal("expected connection error")
	}
}
