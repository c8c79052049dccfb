package background

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"curtail/internal/logging"
)

// DefaultMaxTasks is used when NewManager receives a non-positive limit.
const DefaultMaxTasks = 16

// Manager runs functions in goroutines with a concurrency cap. Tasks
// submitted past the cap are dropped, not queued; errors are collected and
// surfaced by Wait.
type Manager struct {
	logger *slog.Logger

	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a Manager with the provided maximum concurrency.
func NewManager(maxTasks int, logger *slog.Logger) *Manager {
	if maxTasks < 1 {
		maxTasks = DefaultMaxTasks
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		logger: logging.NewComponentLogger(logger, "background"),
		sema:   make(chan struct{}, maxTasks),
	}
}

// Go schedules fn when capacity is available and reports whether it was
// accepted. A full manager or an already-cancelled context drops the task.
func (m *Manager) Go(ctx context.Context, fn func(ctx context.Context) error) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		m.logger.Warn("task dropped before start", logging.Error(ctx.Err()))
		return false
	}

	select {
	case m.sema <- struct{}{}:
	default:
		m.logger.Warn("task dropped at capacity", slog.Int("capacity", cap(m.sema)))
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			<-m.sema

			if rvr := recover(); rvr != nil {
				m.logger.Error("panic in background task",
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := fn(ctx); err != nil {
			m.mu.Lock()
			m.errs = append(m.errs, err)
			m.mu.Unlock()
		}
	}()
	return true
}

// Wait blocks until all accepted tasks finish and returns their joined
// errors.
func (m *Manager) Wait() error {
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
