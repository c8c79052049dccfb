package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"curtail/internal/api"
	"curtail/internal/config"
	"curtail/internal/shortlink"
	"curtail/internal/testsupport"
)

func newTestDaemon(t *testing.T) (*Daemon, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cache := shortlink.NewCache(time.Minute, nil)
	codes, err := shortlink.NewCodeGenerator()
	if err != nil {
		t.Fatalf("NewCodeGenerator: %v", err)
	}
	service := shortlink.NewService(store, cache, codes)
	sweeper := shortlink.NewSweeper(store, cache, time.Minute, nil, nil)

	d, err := New(cfg, store, cache, service, sweeper, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, cfg
}

func newTestServer(t *testing.T) (*httptest.Server, *Daemon, *config.Config) {
	t.Helper()
	d, cfg := newTestDaemon(t)
	server := httptest.NewServer(d.routes())
	t.Cleanup(server.Close)
	return server, d, cfg
}

func createLink(t *testing.T, server *httptest.Server, req api.CreateLinkRequest) api.CreateLinkResponse {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(server.URL+"/shorturls", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /shorturls: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var decoded api.CreateLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return decoded
}

func TestCreateLinkEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	created := createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/page", CustomCode: "docs"})
	if created.ShortLink != "http://links.test/docs" {
		t.Fatalf("ShortLink = %q", created.ShortLink)
	}
	if created.Expiry == "" {
		t.Fatal("expected expiry in response")
	}
}

func TestCreateLinkRejectsBadInput(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/shorturls", "application/json", bytes.NewReader([]byte(`{"url":"not a url"}`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid url status = %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/shorturls", "application/json", bytes.NewReader([]byte(`{nope`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad JSON status = %d", resp.StatusCode)
	}
}

func TestCreateLinkCustomCodeConflict(t *testing.T) {
	server, _, _ := newTestServer(t)

	createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/a", CustomCode: "taken"})

	body := []byte(`{"url":"https://example.com/b","shortcode":"taken"}`)
	resp, err := http.Post(server.URL+"/shorturls", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict status = %d", resp.StatusCode)
	}
}

func TestRedirectEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/target", CustomCode: "hop"})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(server.URL + "/hop")
	if err != nil {
		t.Fatalf("GET /hop: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("redirect status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com/target" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestRedirectUnknownAndExpired(t *testing.T) {
	server, d, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/missing")
	if err != nil {
		t.Fatalf("GET /missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown code status = %d", resp.StatusCode)
	}

	expired := shortlink.Link{
		Code:      "stale1",
		LongURL:   "https://example.com/old",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := d.store.CreateLink(context.Background(), expired); err != nil {
		t.Fatalf("seed expired link: %v", err)
	}

	resp, err = http.Get(server.URL + "/stale1")
	if err != nil {
		t.Fatalf("GET /stale1: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("expired code status = %d", resp.StatusCode)
	}
}

func TestLinkStatsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/stats", CustomCode: "stat1"})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL + "/stat1")
		if err != nil {
			t.Fatalf("GET /stat1: %v", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/shorturls/stat1")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	var stats api.LinkStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalClicks != 2 {
		t.Fatalf("TotalClicks = %d", stats.TotalClicks)
	}
	if stats.Link.LongURL != "https://example.com/stats" {
		t.Fatalf("LongURL = %q", stats.Link.LongURL)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	server, _, cfg := newTestServer(t)

	resp, err := http.Get(server.URL + "/shorturls")
	if err != nil {
		t.Fatalf("GET /shorturls: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/shorturls", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Server.AdminToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authenticated list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated list status = %d", resp.StatusCode)
	}
}

func TestDeleteLinkEndpoint(t *testing.T) {
	server, _, cfg := newTestServer(t)
	createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/gone", CustomCode: "gone1"})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/shorturls/gone1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Server.AdminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/gone1")
	if err != nil {
		t.Fatalf("GET after delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d", resp.StatusCode)
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(HeaderCorrelationID) == "" {
		t.Fatal("expected a generated correlation id header")
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(HeaderCorrelationID, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with cid: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderCorrelationID); got != "abc-123" {
		t.Fatalf("correlation id = %q, want echo of inbound value", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	createLink(t, server, api.CreateLinkRequest{URL: "https://example.com/h"})

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Fatalf("Status = %q", health.Status)
	}
	if health.Links != 1 {
		t.Fatalf("Links = %d", health.Links)
	}
	if health.Collector != "disabled" {
		t.Fatalf("Collector = %q", health.Collector)
	}
}
