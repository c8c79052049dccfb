package shortlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"curtail/internal/logging"
	"curtail/internal/logship"
)

const defaultValidity = 30 * time.Minute

// Service implements short link creation, resolution, and bookkeeping on top
// of the store and cache. Every operation reports what happened through the
// collector shipping client in addition to local logs.
type Service struct {
	store   *Store
	cache   *Cache
	codes   *CodeGenerator
	shipper logship.Shipper
	logger  *slog.Logger

	validity time.Duration
	now      func() time.Time
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithShipper sets the collector client used for instrumentation. Defaults to
// a no-op shipper.
func WithShipper(shipper logship.Shipper) ServiceOption {
	return func(s *Service) {
		if shipper != nil {
			s.shipper = shipper
		}
	}
}

// WithLogger sets the local logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "shortlink")
		}
	}
}

// WithDefaultValidity sets the validity applied when a caller does not supply
// one. Defaults to 30 minutes.
func WithDefaultValidity(validity time.Duration) ServiceOption {
	return func(s *Service) {
		if validity > 0 {
			s.validity = validity
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the store, cache, and code generator into a service.
func NewService(store *Store, cache *Cache, codes *CodeGenerator, opts ...ServiceOption) *Service {
	service := &Service{
		store:    store,
		cache:    cache,
		codes:    codes,
		shipper:  logship.Nop(),
		logger:   logging.NewNop(),
		validity: defaultValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Create shortens a URL. An empty validity falls back to the configured
// default; an empty customCode lets the generator pick one.
func (s *Service) Create(ctx context.Context, longURL string, validity time.Duration, customCode string) (Link, error) {
	longURL = strings.TrimSpace(longURL)
	if err := validateLongURL(longURL); err != nil {
		s.shipper.Warn(ctx, logship.StackBackend, logship.PackageDomain, "link url rejected")
		return Link{}, err
	}

	if validity <= 0 {
		validity = s.validity
	}

	code := strings.TrimSpace(customCode)
	if code != "" {
		if err := ValidateCustomCode(code); err != nil {
			s.shipper.Warn(ctx, logship.StackBackend, logship.PackageDomain, "custom code rejected")
			return Link{}, err
		}
	} else {
		code = s.codes.Next()
	}

	now := s.now()
	link := Link{
		Code:      code,
		LongURL:   longURL,
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		if errors.Is(err, ErrCodeTaken) {
			s.logger.Warn("short code collision", slog.String("code", code))
			s.shipper.Warn(ctx, logship.StackBackend, logship.PackageService, "custom code collision")
			return Link{}, err
		}
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "link insert failed")
		return Link{}, fmt.Errorf("create link: %w", err)
	}

	s.cache.Store(link)
	s.logger.Info("short link created",
		slog.String("code", link.Code),
		slog.Time("expires_at", link.ExpiresAt),
	)
	s.shipper.Info(ctx, logship.StackBackend, logship.PackageService, "short link created")
	return link, nil
}

// Resolve returns the destination for a code and records the click. Expired
// links report ErrLinkExpired, unknown codes ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code, referrer, source string) (Link, error) {
	code = strings.TrimSpace(code)
	if !CodeLooksValid(code) {
		return Link{}, fmt.Errorf("code %q: %w", code, ErrNotFound)
	}

	link, cached := s.cache.Lookup(code)
	if cached {
		s.shipper.Debug(ctx, logship.StackBackend, logship.PackageCache, "link served from cache")
	} else {
		stored, err := s.store.GetLink(ctx, code)
		if err != nil {
			s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "link lookup failed")
			return Link{}, fmt.Errorf("resolve link: %w", err)
		}
		if stored == nil {
			s.shipper.Warn(ctx, logship.StackBackend, logship.PackageService, "unknown short code requested")
			return Link{}, fmt.Errorf("code %q: %w", code, ErrNotFound)
		}
		link = *stored
	}

	if link.Expired(s.now()) {
		s.cache.Invalidate(code)
		s.shipper.Info(ctx, logship.StackBackend, logship.PackageService, "expired short link requested")
		return Link{}, fmt.Errorf("code %q: %w", code, ErrLinkExpired)
	}

	if !cached {
		s.cache.Store(link)
	}

	click := Click{LinkCode: code, At: s.now(), Referrer: referrer, Source: source}
	if err := s.store.RecordClick(ctx, click); err != nil {
		// A lost click must not fail the redirect.
		s.logger.Warn("click record failed", slog.String("code", code), logging.Error(err))
		s.shipper.Warn(ctx, logship.StackBackend, logship.PackageRepository, "click record failed")
	}

	s.shipper.Debug(ctx, logship.StackBackend, logship.PackageService, "short link resolved")
	return link, nil
}

// Stats returns a link and its click history. Expired links still report
// stats until the sweeper purges them.
func (s *Service) Stats(ctx context.Context, code string) (Stats, error) {
	code = strings.TrimSpace(code)
	link, err := s.store.GetLink(ctx, code)
	if err != nil {
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "link stats lookup failed")
		return Stats{}, fmt.Errorf("link stats: %w", err)
	}
	if link == nil {
		return Stats{}, fmt.Errorf("code %q: %w", code, ErrNotFound)
	}

	total, err := s.store.ClickCount(ctx, code)
	if err != nil {
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "click count failed")
		return Stats{}, fmt.Errorf("link stats: %w", err)
	}
	recent, err := s.store.ClicksFor(ctx, code, 20)
	if err != nil {
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "click history failed")
		return Stats{}, fmt.Errorf("link stats: %w", err)
	}

	s.shipper.Debug(ctx, logship.StackBackend, logship.PackageService, "link stats served")
	return Stats{Link: *link, TotalClicks: total, Recent: recent}, nil
}

// Delete removes a link and its clicks.
func (s *Service) Delete(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	deleted, err := s.store.DeleteLink(ctx, code)
	if err != nil {
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "link delete failed")
		return fmt.Errorf("delete link: %w", err)
	}
	if !deleted {
		return fmt.Errorf("code %q: %w", code, ErrNotFound)
	}

	s.cache.Invalidate(code)
	s.logger.Info("short link deleted", slog.String("code", code))
	s.shipper.Info(ctx, logship.StackBackend, logship.PackageService, "short link deleted")
	return nil
}

// List returns stored links newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Link, error) {
	links, err := s.store.ListLinks(ctx, limit)
	if err != nil {
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageRepository, "link list failed")
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func validateLongURL(longURL string) error {
	if longURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	parsed, err := url.Parse(longURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
