package logship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tokenSafetyMargin is how long before expiry a cached token is treated as
// stale, covering clock skew and request latency.
const tokenSafetyMargin = 60 * time.Second

// Credentials identify this client to the collector's auth endpoint. Field
// names follow the collector's wire contract exactly.
type Credentials struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RollNo       string `json:"rollNo"`
	AccessCode   string `json:"accessCode"`
	ClientID     string `json:"clientID"`
	ClientSecret string `json:"clientSecret"`
}

// Validate reports the first blank credential field.
func (c Credentials) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"email", c.Email},
		{"name", c.Name},
		{"rollNo", c.RollNo},
		{"accessCode", c.AccessCode},
		{"clientID", c.ClientID},
		{"clientSecret", c.ClientSecret},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s: %w", field.name, ErrMissingCredentials)
		}
	}
	return nil
}

// HTTPDoer abstracts the HTTP client so tests can intercept requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies bearer tokens for collector requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderOption customises TokenProvider construction.
type TokenProviderOption func(*TokenProvider)

// WithTokenHTTPClient overrides the HTTP client used for the auth exchange.
func WithTokenHTTPClient(client HTTPDoer) TokenProviderOption {
	return func(p *TokenProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// TokenProvider exchanges credentials for a collector bearer token and caches
// it until shortly before expiry. It never retries a failed exchange; retry
// policy belongs to the caller.
type TokenProvider struct {
	baseURL    string
	creds      Credentials
	httpClient HTTPDoer

	mu    sync.RWMutex
	cache credential
}

type credential struct {
	token     string
	expiresAt time.Time
}

var _ TokenSource = (*TokenProvider)(nil)

// NewTokenProvider builds a provider for the collector rooted at baseURL.
func NewTokenProvider(baseURL string, creds Credentials, opts ...TokenProviderOption) *TokenProvider {
	provider := &TokenProvider{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.httpClient == nil {
		provider.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return provider
}

// Token returns a cached bearer token, refreshing when it is absent or inside
// the safety margin.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if token, ok := p.cachedToken(); ok {
		return token, nil
	}
	return p.refreshToken(ctx)
}

func (p *TokenProvider) cachedToken() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cache.token != "" && time.Until(p.cache.expiresAt) > tokenSafetyMargin {
		return p.cache.token, true
	}
	return "", false
}

func (p *TokenProvider) refreshToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache.token != "" && time.Until(p.cache.expiresAt) > tokenSafetyMargin {
		return p.cache.token, nil
	}

	token, expiresAt, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}
	p.cache = credential{token: token, expiresAt: expiresAt}
	return token, nil
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (p *TokenProvider) exchange(ctx context.Context) (string, time.Time, error) {
	if err := p.creds.Validate(); err != nil {
		return "", time.Time{}, err
	}

	encoded, err := json.Marshal(p.creds)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("collector auth: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth", bytes.NewReader(encoded))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("collector auth: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, &AuthError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", time.Time{}, &AuthError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	var parsed authResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, &AuthError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(parsed.AccessToken) == "" || parsed.ExpiresIn <= 0 {
		return "", time.Time{}, &AuthError{Err: ErrAuthMalformed}
	}

	// expires_in carries an absolute Unix timestamp in seconds, not a
	// duration from now.
	return parsed.AccessToken, time.Unix(parsed.ExpiresIn, 0), nil
}

func excerpt(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 200
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
