package shortlink

import (
	"errors"
	"time"
)

// Link is a stored short link. ExpiresAt is always set; links without an
// explicit validity receive the configured default.
type Link struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"long_url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the link is past its expiry at the given instant.
func (l Link) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// Click records one resolution of a short link.
type Click struct {
	LinkCode string    `json:"link_code"`
	At       time.Time `json:"at"`
	Referrer string    `json:"referrer"`
	Source   string    `json:"source"`
}

// Stats summarizes a link and its accumulated clicks.
type Stats struct {
	Link        Link    `json:"link"`
	TotalClicks int64   `json:"total_clicks"`
	Recent      []Click `json:"recent"`
}

var (
	// ErrNotFound indicates no link exists for the requested code.
	ErrNotFound = errors.New("short link not found")
	// ErrCodeTaken indicates the requested custom code is already in use.
	ErrCodeTaken = errors.New("short code already taken")
	// ErrLinkExpired indicates the link exists but its validity has lapsed.
	ErrLinkExpired = errors.New("short link expired")
	// ErrInvalidCode indicates a custom code that fails the format rules.
	ErrInvalidCode = errors.New("invalid short code")
	// ErrInvalidURL indicates a long URL that cannot be shortened.
	ErrInvalidURL = errors.New("invalid long url")
)
