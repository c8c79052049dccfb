package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the daemon, decoded when possible.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running curtail daemon over its HTTP API.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAdminToken attaches a bearer token to admin requests.
func WithAdminToken(token string) ClientOption {
	return func(c *Client) {
		c.adminToken = strings.TrimSpace(token)
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a daemon API client.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("daemon base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Health fetches the daemon health payload.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLink asks the daemon to mint a short link.
func (c *Client) CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	var resp CreateLinkResponse
	if err := c.do(ctx, http.MethodPost, "/shorturls", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LinkStats fetches a link's click statistics.
func (c *Client) LinkStats(ctx context.Context, code string) (*LinkStatsResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("short code required")
	}
	var resp LinkStatsResponse
	if err := c.do(ctx, http.MethodGet, "/shorturls/"+url.PathEscape(code), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLinks fetches stored links, newest first. A limit of zero uses the
// daemon default. Requires the admin token.
func (c *Client) ListLinks(ctx context.Context, limit int) (*LinkListResponse, error) {
	path := "/shorturls"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp LinkListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteLink removes a link and its clicks. Requires the admin token.
func (c *Client) DeleteLink(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("short code required")
	}
	return c.do(ctx, http.MethodDelete, "/shorturls/"+url.PathEscape(code), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded ErrorResponse
		if json.Unmarshal(payload, &decoded) == nil {
			apiErr.Message = decoded.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
