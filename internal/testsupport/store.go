package testsupport

import (
	"context"
	"testing"
	"time"

	"curtail/internal/config"
	"curtail/internal/shortlink"
)

// MustOpenStore opens a shortlink.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *shortlink.Store {
	t.Helper()

	store, err := shortlink.Open(cfg)
	if err != nil {
		t.Fatalf("shortlink.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewLink inserts a link for tests using the provided store.
func NewLink(t testing.TB, store *shortlink.Store, code, longURL string, validity time.Duration) shortlink.Link {
	t.Helper()

	now := time.Now().UTC()
	link := shortlink.Link{
		Code:      code,
		LongURL:   longURL,
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}
	if err := store.CreateLink(context.Background(), link); err != nil {
		t.Fatalf("store.CreateLink: %v", err)
	}
	return link
}
