package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SetupContext bounds ctx by timeout. A non-positive timeout leaves ctx
// unbounded but still cancelable.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT or SIGTERM.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// SetupLifecycle combines SetupContext and SetupSignals: the returned
// context ends at the deadline or on the first termination signal.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)

	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs holds the cancel functions created by SetupLifecycle.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops signal delivery, then cancels the deadline.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
