package cache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/addons-front/listing-api/internal/card"
	"github.com/addons-front/listing-api/internal/permissions"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var _ CardCache = (*MemoryCache)(nil)
var _ CardCache = (*RedisCache)(nil)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	want := card.Card{Render: true, ClassName: card.ClassName}
	if errSet := c.Set(ctx, 1, Token{}, want, time.Minute); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	got, ok, errGet := c.Get(ctx, 1)
	if errGet != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, errGet)
	}
	if got.ClassName != want.ClassName || !got.Render {
		t.Fatalf("unexpected card %#v", got)
	}
	if _, ok, _ := c.Get(ctx, 2); ok {
		t.Fatalf("unexpected hit for missing key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	if errSet := c.Set(ctx, 1, Token{}, card.Card{Render: true}, time.Second); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if len(c.entries) != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestMemoryCacheZeroTTLSkipsStore(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	if errSet := c.Set(ctx, 1, Token{}, card.Card{Render: true}, 0); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Fatalf("expected miss with zero ttl")
	}
}

func TestMemoryCacheInvalidateAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	for id := uint64(1); id <= 3; id++ {
		token, _ := c.Token(ctx, id)
		_ = c.Set(ctx, id, token, card.Card{Render: true}, time.Minute)
	}
	if errInvalidate := c.Invalidate(ctx, 1); errInvalidate != nil {
		t.Fatalf("invalidate: %v", errInvalidate)
	}
	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Fatalf("expected miss after invalidate")
	}
	if _, ok, _ := c.Get(ctx, 2); !ok {
		t.Fatalf("expected hit for untouched entry")
	}
	if errFlush := c.Flush(ctx); errFlush != nil {
		t.Fatalf("flush: %v", errFlush)
	}
	if _, ok, _ := c.Get(ctx, 3); ok {
		t.Fatalf("expected miss after flush")
	}
}

func TestNilMemoryCache(t *testing.T) {
	var c *MemoryCache
	ctx := context.Background()
	if errSet := c.Set(ctx, 1, Token{}, card.Card{}, time.Minute); errSet != nil {
		t.Fatalf("set on nil: %v", errSet)
	}
	if _, ok, errGet := c.Get(ctx, 1); ok || errGet != nil {
		t.Fatalf("get on nil: ok=%v err=%v", ok, errGet)
	}
}

func TestRedisCacheKeys(t *testing.T) {
	r := newRedisCache(nil, "")
	if got := r.generationKey(); got != "listing:card:gen" {
		t.Fatalf("generation key = %s", got)
	}
	if got := r.entryKey(Token{Generation: 3, Stamp: 1}, 42); got != "listing:card:3:42:1" {
		t.Fatalf("entry key = %s", got)
	}
	custom := newRedisCache(nil, " amo ")
	if got := custom.stampKey(7); got != "amo:stamp:7" {
		t.Fatalf("custom entry key = %s", got)
	}
}

func TestNewRedisCacheRequiresAddress(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestMemoryCacheSkipsStaleToken(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	token, _ := c.Token(ctx, 1)
	if errInvalidate := c.Invalidate(ctx, 1); errInvalidate != nil {
		t.Fatalf("invalidate: %v", errInvalidate)
	}
	_ = c.Set(ctx, 1, token, card.Card{Render: true}, time.Minute)
	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Fatalf("card stored with a token taken before invalidate")
	}

	token, _ = c.Token(ctx, 2)
	if errFlush := c.Flush(ctx); errFlush != nil {
		t.Fatalf("flush: %v", errFlush)
	}
	_ = c.Set(ctx, 2, token, card.Card{Render: true}, time.Minute)
	if _, ok, _ := c.Get(ctx, 2); ok {
		t.Fatalf("card stored with a token taken before flush")
	}

	token, _ = c.Token(ctx, 2)
	_ = c.Set(ctx, 2, token, card.Card{Render: true}, time.Minute)
	if _, ok, _ := c.Get(ctx, 2); !ok {
		t.Fatalf("expected hit with a current token")
	}
}

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	r := newRedisCache(redis.NewClient(&redis.Options{Addr: server.Addr()}), "")
	t.Cleanup(func() { _ = r.Close() })
	return r, server
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, server := setupRedisCache(t)

	if _, ok, errGet := r.Get(ctx, 5); ok || errGet != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, errGet)
	}

	want := card.Build(permissionsGrouped([]string{"bookmarks"}, []string{"tabs"}), card.Options{})
	token, errToken := r.Token(ctx, 5)
	if errToken != nil {
		t.Fatalf("token: %v", errToken)
	}
	if errSet := r.Set(ctx, 5, token, want, time.Minute); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	got, ok, errGet := r.Get(ctx, 5)
	if errGet != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, errGet)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("card changed in redis:\n got %#v\nwant %#v", got, want)
	}
	if ttl := server.TTL(r.entryKey(token, 5)); ttl != time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	server.FastForward(2 * time.Minute)
	if _, ok, _ := r.Get(ctx, 5); ok {
		t.Fatalf("expected miss after ttl")
	}
}

func TestRedisCacheInvalidateAndFlush(t *testing.T) {
	ctx := context.Background()
	r, server := setupRedisCache(t)
	for id := uint64(1); id <= 2; id++ {
		token, _ := r.Token(ctx, id)
		if errSet := r.Set(ctx, id, token, card.Card{Render: true}, time.Minute); errSet != nil {
			t.Fatalf("set %d: %v", id, errSet)
		}
	}

	if errInvalidate := r.Invalidate(ctx, 1); errInvalidate != nil {
		t.Fatalf("invalidate: %v", errInvalidate)
	}
	if _, ok, _ := r.Get(ctx, 1); ok {
		t.Fatalf("expected miss after invalidate")
	}
	if _, ok, _ := r.Get(ctx, 2); !ok {
		t.Fatalf("expected hit for untouched entry")
	}

	if errFlush := r.Flush(ctx); errFlush != nil {
		t.Fatalf("flush: %v", errFlush)
	}
	if got, _ := server.Get(r.generationKey()); got != "1" {
		t.Fatalf("expected generation 1, got %q", got)
	}
	if _, ok, _ := r.Get(ctx, 2); ok {
		t.Fatalf("expected miss after flush")
	}
}

func TestRedisCacheSkipsStaleToken(t *testing.T) {
	ctx := context.Background()
	r, _ := setupRedisCache(t)

	token, _ := r.Token(ctx, 3)
	if errFlush := r.Flush(ctx); errFlush != nil {
		t.Fatalf("flush: %v", errFlush)
	}
	if errSet := r.Set(ctx, 3, token, card.Card{Render: true}, time.Minute); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	if _, ok, _ := r.Get(ctx, 3); ok {
		t.Fatalf("card stored with a token taken before flush")
	}
}

func TestRedisCacheBadGeneration(t *testing.T) {
	ctx := context.Background()
	r, server := setupRedisCache(t)
	if errSet := server.Set(r.generationKey(), "not-a-number"); errSet != nil {
		t.Fatalf("seed: %v", errSet)
	}
	if _, _, errGet := r.Get(ctx, 1); errGet == nil {
		t.Fatalf("expected error for bad generation")
	}
	if _, errToken := r.Token(ctx, 1); errToken == nil {
		t.Fatalf("expected token error for bad generation")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx := context.Background()
	r, server := setupRedisCache(t)
	server.Close()
	if _, _, errGet := r.Get(ctx, 1); errGet == nil {
		t.Fatalf("expected error with redis down")
	}
}

func permissionsGrouped(required, optional []string) permissions.Grouped {
	return permissions.Group(&permissions.Version{Files: []permissions.File{{Permissions: required, OptionalPermissions: optional}}})
}
