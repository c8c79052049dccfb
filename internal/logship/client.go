package logship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"curtail/internal/logging"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultMaxAttempts    = 3
	defaultBackoffBase    = 1 * time.Second
)

// Shipper delivers structured events to the collector. The level helpers
// never return an error: a failed delivery is logged locally and reported as
// ok=false so instrumented code keeps running.
type Shipper interface {
	Send(ctx context.Context, stack Stack, level Level, pkg, message string) (Receipt, error)
	Debug(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool)
	Info(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool)
	Warn(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool)
	Error(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool)
	Fatal(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool)
}

// Receipt identifies an event the collector accepted.
type Receipt struct {
	LogID   string
	Message string
}

// Config captures the runtime settings required to talk to the collector.
type Config struct {
	BaseURL        string
	Credentials    Credentials
	TimeoutSeconds int
}

// Client ships events to the collector with bounded retries. A single Client
// is safe for concurrent use.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient HTTPDoer
	logger     *slog.Logger

	maxAttempts int
	backoffBase time.Duration
	sleeper     func(time.Duration)
}

var _ Shipper = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource overrides where bearer tokens come from.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

// WithLogger sets the logger for delivery diagnostics. Defaults to a no-op.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "logship")
		}
	}
}

// WithMaxAttempts overrides the delivery attempt ceiling (defaults to 3).
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
	}
}

// WithBackoffBase overrides the linear backoff unit (defaults to 1s). The
// wait after attempt n is base multiplied by n.
func WithBackoffBase(base time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = base
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a collector client using the supplied configuration.
func New(cfg Config, opts ...Option) *Client {
	timeout := defaultRequestTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logging.NewNop(),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	if client.tokens == nil {
		client.tokens = NewTokenProvider(cfg.BaseURL, cfg.Credentials, WithTokenHTTPClient(client.httpClient))
	}
	return client
}

// Send validates the event and delivers it, retrying transient failures up to
// the attempt ceiling. Validation failures return immediately without
// consuming an attempt. Context cancellation aborts the remaining attempts.
func (c *Client) Send(ctx context.Context, stack Stack, level Level, pkg, message string) (Receipt, error) {
	event := Event{Stack: stack, Level: level, Package: pkg, Message: message}
	if err := event.Validate(); err != nil {
		return Receipt{}, err
	}
	wire := event.normalized()

	attempts := c.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		receipt, err := c.postOnce(ctx, wire)
		if err == nil {
			return receipt, nil
		}
		lastErr = err

		if attempt < attempts {
			delay := c.backoffDelay(attempt)
			c.logger.Warn("delivery attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.Duration("backoff", delay),
				logging.Error(err),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return Receipt{}, err
			}
		}
	}

	shipErr := &ShipError{Attempts: attempts, Err: lastErr}
	c.logger.Error("event abandoned",
		slog.String("package", wire.Package),
		slog.String("level", string(wire.Level)),
		slog.Int("attempts", attempts),
		logging.Error(lastErr),
	)
	return Receipt{}, shipErr
}

// Debug ships a debug-level event, swallowing delivery errors.
func (c *Client) Debug(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool) {
	return c.sendQuietly(ctx, stack, LevelDebug, pkg, message)
}

// Info ships an info-level event, swallowing delivery errors.
func (c *Client) Info(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool) {
	return c.sendQuietly(ctx, stack, LevelInfo, pkg, message)
}

// Warn ships a warn-level event, swallowing delivery errors.
func (c *Client) Warn(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool) {
	return c.sendQuietly(ctx, stack, LevelWarn, pkg, message)
}

// Error ships an error-level event, swallowing delivery errors.
func (c *Client) Error(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool) {
	return c.sendQuietly(ctx, stack, LevelError, pkg, message)
}

// Fatal ships a fatal-level event, swallowing delivery errors.
func (c *Client) Fatal(ctx context.Context, stack Stack, pkg, message string) (Receipt, bool) {
	return c.sendQuietly(ctx, stack, LevelFatal, pkg, message)
}

func (c *Client) sendQuietly(ctx context.Context, stack Stack, level Level, pkg, message string) (Receipt, bool) {
	receipt, err := c.Send(ctx, stack, level, pkg, message)
	if err != nil {
		c.logger.Warn("event dropped",
			slog.String("package", pkg),
			slog.String("level", string(level)),
			slog.String("kind", ErrorKind(err)),
			logging.Error(err),
		)
		return Receipt{}, false
	}
	return receipt, true
}

type logResponse struct {
	LogID   string `json:"logId"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (c *Client) postOnce(ctx context.Context, event Event) (Receipt, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("fetch token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return Receipt{}, errors.New("fetch token: empty token")
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return Receipt{}, fmt.Errorf("ship log: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logs", bytes.NewReader(encoded))
	if err != nil {
		return Receipt{}, fmt.Errorf("ship log: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Receipt{}, &TransportError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	var parsed logResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Receipt{}, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	logID := strings.TrimSpace(parsed.LogID)
	if logID == "" {
		logID = strings.TrimSpace(parsed.ID)
	}
	if logID == "" {
		return Receipt{}, &TransportError{StatusCode: resp.StatusCode, Body: excerpt(body), Err: errors.New("response missing log id")}
	}
	return Receipt{LogID: logID, Message: parsed.Message}, nil
}

func (c *Client) attempts() int {
	if c.maxAttempts <= 0 {
		return 1
	}
	return c.maxAttempts
}

// backoffDelay is linear: base after attempt 1, twice base after attempt 2.
func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.backoffBase <= 0 || attempt <= 0 {
		return 0
	}
	return time.Duration(attempt) * c.backoffBase
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("ship retry: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
