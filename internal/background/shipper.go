package background

import (
	"context"

	"curtail/internal/logship"
)

// AsyncShipper wraps a collector shipper so level helpers return as soon as
// the delivery is scheduled. Send stays synchronous for callers that need the
// collector's receipt.
type AsyncShipper struct {
	shipper logship.Shipper
	manager *Manager

	// base outlives per-request contexts so an in-flight delivery is not
	// cancelled when the triggering request finishes.
	base context.Context
}

var _ logship.Shipper = (*AsyncShipper)(nil)

// NewAsyncShipper detaches deliveries onto the manager. base is the context
// deliveries run under, typically the daemon's run context.
func NewAsyncShipper(base context.Context, shipper logship.Shipper, manager *Manager) *AsyncShipper {
	if base == nil {
		base = context.Background()
	}
	return &AsyncShipper{shipper: shipper, manager: manager, base: base}
}

// Send delivers synchronously and returns the collector's receipt.
func (a *AsyncShipper) Send(ctx context.Context, stack logship.Stack, level logship.Level, pkg, message string) (logship.Receipt, error) {
	return a.shipper.Send(ctx, stack, level, pkg, message)
}

// Debug schedules a debug-level delivery. ok reports acceptance, not outcome.
func (a *AsyncShipper) Debug(_ context.Context, stack logship.Stack, pkg, message string) (logship.Receipt, bool) {
	return a.detach(stack, logship.LevelDebug, pkg, message)
}

// Info schedules an info-level delivery.
func (a *AsyncShipper) Info(_ context.Context, stack logship.Stack, pkg, message string) (logship.Receipt, bool) {
	return a.detach(stack, logship.LevelInfo, pkg, message)
}

// Warn schedules a warn-level delivery.
func (a *AsyncShipper) Warn(_ context.Context, stack logship.Stack, pkg, message string) (logship.Receipt, bool) {
	return a.detach(stack, logship.LevelWarn, pkg, message)
}

// Error schedules an error-level delivery.
func (a *AsyncShipper) Error(_ context.Context, stack logship.Stack, pkg, message string) (logship.Receipt, bool) {
	return a.detach(stack, logship.LevelError, pkg, message)
}

// Fatal schedules a fatal-level delivery.
func (a *AsyncShipper) Fatal(_ context.Context, stack logship.Stack, pkg, message string) (logship.Receipt, bool) {
	return a.detach(stack, logship.LevelFatal, pkg, message)
}

func (a *AsyncShipper) detach(stack logship.Stack, level logship.Level, pkg, message string) (logship.Receipt, bool) {
	accepted := a.manager.Go(a.base, func(ctx context.Context) error {
		// Delivery errors are already logged and classified by the
		// client; they must not fail the manager's Wait.
		_, _ = a.shipper.Send(ctx, stack, level, pkg, message)
		return nil
	})
	return logship.Receipt{}, accepted
}
