package shortlink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"curtail/internal/shortlink"
	"curtail/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	count, err := store.CountLinks(context.Background())
	if err != nil {
		t.Fatalf("CountLinks: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty database, got %d links", count)
	}
}

func TestCreateAndGetLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created := testsupport.NewLink(t, store, "abc123", "https://example.com/docs", time.Hour)

	got, err := store.GetLink(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got == nil {
		t.Fatal("expected link, got nil")
	}
	if got.LongURL != created.LongURL {
		t.Fatalf("unexpected url %q", got.LongURL)
	}
	if !got.ExpiresAt.Equal(created.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", got.ExpiresAt, created.ExpiresAt)
	}
}

func TestGetLinkMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	got, err := store.GetLink(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing code, got %+v", got)
	}
}

func TestCreateDuplicateCodeReportsTaken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.NewLink(t, store, "abc123", "https://example.com/a", time.Hour)

	dup := shortlink.Link{
		Code:      "abc123",
		LongURL:   "https://example.com/b",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	err := store.CreateLink(context.Background(), dup)
	if !errors.Is(err, shortlink.ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestDeleteLinkRemovesClicks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewLink(t, store, "abc123", "https://example.com/a", time.Hour)
	for i := 0; i < 2; i++ {
		click := shortlink.Click{LinkCode: "abc123", At: time.Now().UTC(), Source: "test"}
		if err := store.RecordClick(ctx, click); err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}

	deleted, err := store.DeleteLink(ctx, "abc123")
	if err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if !deleted {
		t.Fatal("expected link to be deleted")
	}

	count, err := store.ClickCount(ctx, "abc123")
	if err != nil {
		t.Fatalf("ClickCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected clicks removed with the link, got %d", count)
	}

	deleted, err = store.DeleteLink(ctx, "abc123")
	if err != nil {
		t.Fatalf("DeleteLink second call: %v", err)
	}
	if deleted {
		t.Fatal("expected second delete to report no rows")
	}
}

func TestListLinksNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, code := range []string{"first", "second", "third"} {
		link := shortlink.Link{
			Code:      code,
			LongURL:   "https://example.com/" + code,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			ExpiresAt: base.Add(24 * time.Hour),
		}
		if err := store.CreateLink(ctx, link); err != nil {
			t.Fatalf("CreateLink %q: %v", code, err)
		}
	}

	links, err := store.ListLinks(ctx, 2)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Code != "third" || links[1].Code != "second" {
		t.Fatalf("unexpected order: %q, %q", links[0].Code, links[1].Code)
	}

	all, err := store.ListLinks(ctx, 0)
	if err != nil {
		t.Fatalf("ListLinks all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 links, got %d", len(all))
	}
}

func TestRecordAndReadClicks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewLink(t, store, "abc123", "https://example.com/a", time.Hour)

	base := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		click := shortlink.Click{
			LinkCode: "abc123",
			At:       base.Add(time.Duration(i) * time.Second),
			Referrer: "https://ref.example",
			Source:   "web",
		}
		if err := store.RecordClick(ctx, click); err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}

	count, err := store.ClickCount(ctx, "abc123")
	if err != nil {
		t.Fatalf("ClickCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 clicks, got %d", count)
	}

	recent, err := store.ClicksFor(ctx, "abc123", 2)
	if err != nil {
		t.Fatalf("ClicksFor: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 clicks, got %d", len(recent))
	}
	if !recent[0].At.After(recent[1].At) {
		t.Fatalf("expected newest click first, got %v then %v", recent[0].At, recent[1].At)
	}
	if recent[0].Referrer != "https://ref.example" || recent[0].Source != "web" {
		t.Fatalf("unexpected click fields: %+v", recent[0])
	}
}

func TestDeleteExpiredPurgesOnlyLapsedLinks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewLink(t, store, "gone1", "https://example.com/1", -time.Hour)
	testsupport.NewLink(t, store, "gone2", "https://example.com/2", -time.Minute)
	testsupport.NewLink(t, store, "alive", "https://example.com/3", time.Hour)

	purged, err := store.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if purged != 2 {
		t.Fatalf("expected 2 purged links, got %d", purged)
	}

	count, err := store.CountLinks(ctx)
	if err != nil {
		t.Fatalf("CountLinks: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 surviving link, got %d", count)
	}
}
