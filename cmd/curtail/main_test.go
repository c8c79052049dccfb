package main

import (
	"strings"
	"testing"
)

func TestLinksListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env, "links", "list")
	if err != nil {
		t.Fatalf("links list: %v", err)
	}
	requireContains(t, stdout, "No short links stored")
}

func TestLinksCreateStatsAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env, "links", "create", "https://example.com/docs", "--code", "docs")
	if err != nil {
		t.Fatalf("links create: %v", err)
	}
	requireContains(t, stdout, "Short link: http://links.test/docs")

	stdout, _, err = runCLI(t, env, "stats", "docs")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, stdout, "Short link: http://links.test/docs")
	requireContains(t, stdout, "Target:     https://example.com/docs")
	requireContains(t, stdout, "Clicks:     0")

	stdout, _, err = runCLI(t, env, "links", "list")
	if err != nil {
		t.Fatalf("links list: %v", err)
	}
	requireContains(t, stdout, "docs")
	requireContains(t, stdout, "1 of 1 links shown")

	stdout, _, err = runCLI(t, env, "links", "delete", "docs")
	if err != nil {
		t.Fatalf("links delete: %v", err)
	}
	requireContains(t, stdout, "Deleted docs")

	_, _, err = runCLI(t, env, "links", "delete", "docs")
	if err == nil {
		t.Fatal("expected error deleting missing link")
	}
	requireContains(t, err.Error(), "not found")
}

func TestStatsUnknownCode(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "stats", "missing")
	if err == nil {
		t.Fatal("expected error for unknown code")
	}
	requireContains(t, err.Error(), "not found")
}

func TestStatusAgainstRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "Daemon: running")
	requireContains(t, stdout, "Links stored: 0")
}

func TestLinksCreateRejectsBadURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "links", "create", "not a url")
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "url") {
		t.Fatalf("unexpected error: %v", err)
	}
}
