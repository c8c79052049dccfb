package shortlink

import (
	"testing"
	"time"
)

func testLink(code string, expiresIn time.Duration) Link {
	now := time.Now().UTC()
	return Link{
		Code:      code,
		LongURL:   "https://example.com/" + code,
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	link := testLink("abc123", time.Hour)

	cache.Store(link)

	got, ok := cache.Lookup("abc123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.LongURL != link.LongURL {
		t.Fatalf("unexpected url %q", got.LongURL)
	}
	if _, ok := cache.Lookup("missing"); ok {
		t.Fatal("expected miss for unknown code")
	}
}

func TestCacheLookupRespectsTTL(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	base := time.Now()
	cache.now = func() time.Time { return base }

	cache.Store(testLink("abc123", time.Hour))

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := cache.Lookup("abc123"); ok {
		t.Fatal("expected miss once the TTL lapsed")
	}
}

func TestCacheMissesExpiredLink(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	cache.Store(testLink("abc123", -time.Second))

	if _, ok := cache.Lookup("abc123"); ok {
		t.Fatal("expected miss for a link past its own expiry")
	}
}

func TestCacheDisabledWithoutTTL(t *testing.T) {
	cache := NewCache(0, nil)
	cache.Store(testLink("abc123", time.Hour))

	if _, ok := cache.Lookup("abc123"); ok {
		t.Fatal("expected disabled cache to always miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected no stored entries, got %d", cache.Len())
	}
}

func TestCachePurgeDropsStaleEntries(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	cache.Store(testLink("fresh", time.Hour))
	cache.Store(testLink("dying", 10*time.Millisecond))

	dropped := cache.Purge(time.Now().Add(time.Second))
	if dropped != 1 {
		t.Fatalf("expected 1 dropped entry, got %d", dropped)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", cache.Len())
	}
	if _, ok := cache.Lookup("fresh"); !ok {
		t.Fatal("expected fresh entry to survive the purge")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	cache.Store(testLink("abc123", time.Hour))

	cache.Invalidate("abc123")
	if _, ok := cache.Lookup("abc123"); ok {
		t.Fatal("expected miss after invalidation")
	}
}
