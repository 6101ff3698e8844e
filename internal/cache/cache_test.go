package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := New(20 * time.Millisecond)

	_ = c.Set(ctx, "k", []byte("v"))

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("got (%q, %v, %v), want (v, true, nil)", got, ok, err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	buf := []byte("first")
	_ = c.Set(ctx, "k", buf)
	copy(buf, "XXXXX")

	got, ok, _ := c.Get(ctx, "k")
	if !ok || string(got) != "first" {
		t.Fatalf("got (%q, %v), want (first, true)", got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("got len %d, want 1", c.Len())
	}
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	_ = c.Set(ctx, "k", []byte("v"))
	_ = c.Delete(ctx, "k")

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := NewRedisClient(RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisCache(rdb, "storefront:", ttl), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	if _, ok, err := c.Get(ctx, "analytics"); err != nil || ok {
		t.Fatalf("got (ok=%v, err=%v), want a clean miss", ok, err)
	}

	if err := c.Set(ctx, "analytics", []byte(`{"totalEarnings":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	if !mr.Exists("storefront:analytics") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}

	got, ok, err := c.Get(ctx, "analytics")
	if err != nil || !ok || string(got) != `{"totalEarnings":1}` {
		t.Fatalf("got (%s, %v, %v)", got, ok, err)
	}

	if err := c.Delete(ctx, "analytics"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "analytics"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 10*time.Second)

	_ = c.Set(ctx, "analytics", []byte("x"))
	mr.FastForward(11 * time.Second)

	if _, ok, _ := c.Get(ctx, "analytics"); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	if _, _, err := c.Get(ctx, "analytics"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
