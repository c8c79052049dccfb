package shortlink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"curtail/internal/logging"
	"curtail/internal/logship"
)

// Sweeper periodically purges expired links and stale cache entries.
type Sweeper struct {
	store    *Store
	cache    *Cache
	shipper  logship.Shipper
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper builds a sweeper over the store and cache. A non-positive
// interval falls back to one minute.
func NewSweeper(store *Store, cache *Cache, interval time.Duration, shipper logship.Shipper, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if shipper == nil {
		shipper = logship.Nop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		store:    store,
		cache:    cache,
		shipper:  shipper,
		logger:   logging.NewComponentLogger(logger, "sweeper"),
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the sweep loop. The loop stops when Stop is called or the
// parent context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("sweeper unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("sweeper already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Sweep runs a single purge pass immediately. Exposed for the CLI.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := s.now()
	purged, err := s.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Purge(now)
	}
	return purged, nil
}

func (s *Sweeper) sweep() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	purged, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("expired link sweep failed", logging.Error(err))
		s.shipper.Error(ctx, logship.StackBackend, logship.PackageCron, "expired link sweep failed")
		return
	}
	if purged > 0 {
		s.logger.Info("expired links purged", slog.Int64("count", purged))
		s.shipper.Info(ctx, logship.StackBackend, logship.PackageCron, "expired links purged")
	}
}
