package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05Z07:00"

// CreateLinkRequest asks the daemon to mint a short link.
type CreateLinkRequest struct {
	URL             string `json:"url"`
	ValidityMinutes int    `json:"validity,omitempty"`
	CustomCode      string `json:"shortcode,omitempty"`
}

// CreateLinkResponse reports a freshly created short link.
type CreateLinkResponse struct {
	ShortLink string `json:"shortLink"`
	Expiry    string `json:"expiry"`
}

// LinkSummary describes a stored link in a transport-friendly format.
type LinkSummary struct {
	Code      string `json:"code"`
	ShortLink string `json:"shortLink"`
	LongURL   string `json:"longUrl"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
	Expired   bool   `json:"expired"`
}

// LinkListResponse wraps the admin link listing.
type LinkListResponse struct {
	Links []LinkSummary `json:"links"`
	Total int64         `json:"total"`
}

// ClickEntry is one recorded resolution of a short link.
type ClickEntry struct {
	At       string `json:"at"`
	Referrer string `json:"referrer,omitempty"`
	Source   string `json:"source,omitempty"`
}

// LinkStatsResponse reports a link together with its click history.
type LinkStatsResponse struct {
	Link        LinkSummary  `json:"link"`
	TotalClicks int64        `json:"totalClicks"`
	Recent      []ClickEntry `json:"recentClicks,omitempty"`
}

// HealthResponse is the daemon health payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Links     int64  `json:"links"`
	Cached    int    `json:"cached"`
	Collector string `json:"collector"`
}

// ErrorResponse carries a failure message for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
