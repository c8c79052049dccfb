package shortlink_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"curtail/internal/logship"
	"curtail/internal/shortlink"
	"curtail/internal/testsupport"
)

func newService(t *testing.T, opts ...shortlink.ServiceOption) (*shortlink.Service, *shortlink.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	codes, err := shortlink.NewCodeGenerator()
	if err != nil {
		t.Fatalf("NewCodeGenerator: %v", err)
	}
	cache := shortlink.NewCache(time.Minute, nil)
	return shortlink.NewService(store, cache, codes, opts...), store
}

func TestServiceCreateGeneratesCode(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	link, err := service.Create(ctx, "https://example.com/docs", 0, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.Code == "" {
		t.Fatal("expected generated code")
	}

	wantExpiry := link.CreatedAt.Add(30 * time.Minute)
	if !link.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected default 30m validity, got expiry %v", link.ExpiresAt)
	}

	stored, err := store.GetLink(ctx, link.Code)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if stored == nil || stored.LongURL != "https://example.com/docs" {
		t.Fatalf("link not persisted: %+v", stored)
	}
}

func TestServiceCreateHonorsCustomCodeAndValidity(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	link, err := service.Create(ctx, "https://example.com/promo", 2*time.Hour, "promo-2026")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.Code != "promo-2026" {
		t.Fatalf("expected custom code, got %q", link.Code)
	}
	if got := link.ExpiresAt.Sub(link.CreatedAt); got != 2*time.Hour {
		t.Fatalf("expected 2h validity, got %v", got)
	}

	_, err = service.Create(ctx, "https://example.com/other", 0, "promo-2026")
	if !errors.Is(err, shortlink.ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestServiceCreateRejectsBadInput(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, "example.com/no-scheme", 0, ""); !errors.Is(err, shortlink.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL for missing scheme, got %v", err)
	}
	if _, err := service.Create(ctx, "ftp://example.com/x", 0, ""); !errors.Is(err, shortlink.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL for ftp scheme, got %v", err)
	}
	if _, err := service.Create(ctx, "  ", 0, ""); !errors.Is(err, shortlink.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL for blank url, got %v", err)
	}
	if _, err := service.Create(ctx, "https://example.com/x", 0, "ab"); !errors.Is(err, shortlink.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for short custom code, got %v", err)
	}
}

func TestServiceResolveRecordsClick(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "https://example.com/docs", time.Hour, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := service.Resolve(ctx, created.Code, "https://ref.example", "qr")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.LongURL != created.LongURL {
		t.Fatalf("unexpected destination %q", resolved.LongURL)
	}

	stats, err := service.Stats(ctx, created.Code)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalClicks != 1 {
		t.Fatalf("expected 1 click, got %d", stats.TotalClicks)
	}
	if len(stats.Recent) != 1 || stats.Recent[0].Referrer != "https://ref.example" || stats.Recent[0].Source != "qr" {
		t.Fatalf("unexpected click record: %+v", stats.Recent)
	}
}

func TestServiceResolveUnknownCode(t *testing.T) {
	service, _ := newService(t)

	_, err := service.Resolve(context.Background(), "missing1", "", "")
	if !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = service.Resolve(context.Background(), "not a code", "", "")
	if !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed code, got %v", err)
	}
}

func TestServiceResolveExpiredLink(t *testing.T) {
	service, store := newService(t)
	testsupport.NewLink(t, store, "stale1", "https://example.com/old", -time.Minute)

	_, err := service.Resolve(context.Background(), "stale1", "", "")
	if !errors.Is(err, shortlink.ErrLinkExpired) {
		t.Fatalf("expected ErrLinkExpired, got %v", err)
	}
}

func TestServiceResolveServesFromCache(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "https://example.com/cached", time.Hour, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Remove the row behind the cache's back; a fresh cache entry still
	// serves the redirect.
	if _, err := store.DeleteLink(ctx, created.Code); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}

	resolved, err := service.Resolve(ctx, created.Code, "", "")
	if err != nil {
		t.Fatalf("Resolve after row delete: %v", err)
	}
	if resolved.LongURL != created.LongURL {
		t.Fatalf("unexpected destination %q", resolved.LongURL)
	}
}

func TestServiceDeleteRemovesLink(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "https://example.com/tmp", time.Hour, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := service.Delete(ctx, created.Code); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.Resolve(ctx, created.Code, "", ""); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := service.Delete(ctx, created.Code); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestServiceStatsUnknownCode(t *testing.T) {
	service, _ := newService(t)

	_, err := service.Stats(context.Background(), "missing1")
	if !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceShipsOperationalEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		events []logship.Event
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_in":   time.Now().Add(time.Hour).Unix(),
		})
	})
	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		var event logship.Event
		_ = json.NewDecoder(r.Body).Decode(&event)
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"logId": "log-1"})
	})
	collector := httptest.NewServer(mux)
	defer collector.Close()

	shipper := logship.New(logship.Config{
		BaseURL: collector.URL,
		Credentials: logship.Credentials{
			Email:        "dev@example.com",
			Name:         "dev",
			RollNo:       "42",
			AccessCode:   "test-access",
			ClientID:     "test-client",
			ClientSecret: "test-secret",
		},
	})

	service, _ := newService(t, shortlink.WithShipper(shipper))
	if _, err := service.Create(context.Background(), "https://example.com/ship", 0, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatal("expected at least one shipped event")
	}
	found := false
	for _, event := range events {
		if event.Stack == logship.StackBackend && event.Package == logship.PackageService {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a backend/service event, got %+v", events)
	}
}
