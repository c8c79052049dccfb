package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"curtail/internal/config"
	"curtail/internal/logging"
	"curtail/internal/logship"
	"curtail/internal/shortlink"
)

// Daemon serves the short link API and runs background maintenance. It
// enforces single-instance execution through a file lock in the log
// directory.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *shortlink.Store
	cache   *shortlink.Cache
	service *shortlink.Service
	sweeper *shortlink.Sweeper
	shipper logship.Shipper

	lockPath string
	lock     *flock.Flock

	running atomic.Bool

	// mu guards the lifecycle fields below; Stop can be entered from a
	// signal handler while the server goroutines are still live.
	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	cancel   context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Addr         string
	DatabasePath string
	LockFilePath string
	Links        int64
	Cached       int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *shortlink.Store, cache *shortlink.Cache, service *shortlink.Service, sweeper *shortlink.Sweeper, shipper logship.Shipper, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || cache == nil || service == nil {
		return nil, errors.New("daemon requires config, store, cache, and service")
	}
	if shipper == nil {
		shipper = logship.Nop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "curtaild.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		cache:    cache,
		service:  service,
		sweeper:  sweeper,
		shipper:  shipper,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, launches the sweeper, and begins serving
// HTTP. It returns once the listener is accepting connections.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another curtail daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	if d.sweeper != nil {
		if err := d.sweeper.Start(runCtx); err != nil {
			d.releaseOnStartFailure(cancel)
			return fmt.Errorf("start sweeper: %w", err)
		}
	}

	listener, err := net.Listen("tcp", d.cfg.Server.Bind)
	if err != nil {
		if d.sweeper != nil {
			d.sweeper.Stop()
		}
		d.releaseOnStartFailure(cancel)
		return fmt.Errorf("listen on %s: %w", d.cfg.Server.Bind, err)
	}

	timeout := time.Duration(d.cfg.Server.RequestTimeout) * time.Second
	server := &http.Server{
		Handler:           d.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
	}

	d.mu.Lock()
	d.cancel = cancel
	d.listener = listener
	d.server = server
	d.mu.Unlock()

	// The goroutines capture locals only; Stop clears the fields.
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("http server error", logging.Error(err))
		}
	}()
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = server.Shutdown(shutdownCtx)
	}()

	d.running.Store(true)
	d.logger.Info("curtail daemon started",
		slog.String("addr", listener.Addr().String()),
		slog.String("lock", d.lockPath),
	)
	d.shipper.Info(runCtx, logship.StackBackend, logship.PackageController, "daemon started")
	return nil
}

func (d *Daemon) releaseOnStartFailure(cancel context.CancelFunc) {
	_ = d.lock.Unlock()
	cancel()
}

// Stop shuts down the HTTP server and background maintenance and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}

	d.mu.Lock()
	cancel := d.cancel
	server := d.server
	listener := d.listener
	d.cancel = nil
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = server.Shutdown(shutdownCtx)
		cancelShutdown()
	}
	if listener != nil {
		_ = listener.Close()
	}
	if d.sweeper != nil {
		d.sweeper.Stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("curtail daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the bound listener address, empty when not running.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	listener := d.listener
	d.mu.Unlock()
	if listener == nil {
		return ""
	}
	return listener.Addr().String()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		Addr:         d.Addr(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Cached:       d.cache.Len(),
	}
	if total, err := d.store.CountLinks(ctx); err == nil {
		status.Links = total
	}
	return status
}
