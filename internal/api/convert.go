package api

import (
	"strings"
	"time"

	"curtail/internal/shortlink"
)

// ShortURL joins the public base URL and a code into the externally visible
// short link.
func ShortURL(publicBase, code string) string {
	base := strings.TrimRight(strings.TrimSpace(publicBase), "/")
	if base == "" {
		return "/" + code
	}
	return base + "/" + code
}

// FromLink converts a stored link into its wire representation.
func FromLink(link shortlink.Link, publicBase string, now time.Time) LinkSummary {
	return LinkSummary{
		Code:      link.Code,
		ShortLink: ShortURL(publicBase, link.Code),
		LongURL:   link.LongURL,
		CreatedAt: FormatTime(link.CreatedAt),
		ExpiresAt: FormatTime(link.ExpiresAt),
		Expired:   link.Expired(now),
	}
}

// FromLinks converts a slice of stored links, preserving order.
func FromLinks(links []shortlink.Link, publicBase string, now time.Time) []LinkSummary {
	if len(links) == 0 {
		return nil
	}
	out := make([]LinkSummary, 0, len(links))
	for _, link := range links {
		out = append(out, FromLink(link, publicBase, now))
	}
	return out
}

// FromStats converts link statistics into their wire representation.
func FromStats(stats shortlink.Stats, publicBase string, now time.Time) LinkStatsResponse {
	resp := LinkStatsResponse{
		Link:        FromLink(stats.Link, publicBase, now),
		TotalClicks: stats.TotalClicks,
	}
	for _, click := range stats.Recent {
		resp.Recent = append(resp.Recent, ClickEntry{
			At:       FormatTime(click.At),
			Referrer: click.Referrer,
			Source:   click.Source,
		})
	}
	return resp
}

// FormatTime renders a timestamp for API payloads. Zero times become empty
// strings rather than the epoch.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
