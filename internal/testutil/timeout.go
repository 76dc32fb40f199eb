package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultCheckTimeout bounds a watch loop or check driven by a test,
	// including any stand-in toolchain processes it spawns.
	DefaultCheckTimeout = 30 * time.Second

	// DefaultTestBuffer is left between the context deadline and the test
	// deadline so cleanups can stop the loop and reap children.
	DefaultTestBuffer = 5 * time.Second
)

// CheckContext returns a context for a test that runs checks. It expires
// DefaultTestBuffer before the test deadline, or after DefaultCheckTimeout
// when the test has none. The context is also cancelled on test cleanup.
func CheckContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := DeadlineContext(t, DefaultCheckTimeout, DefaultTestBuffer)
	t.Cleanup(cancel)
	return ctx, cancel
}

// DeadlineContext returns a context ending buffer before the test deadline.
// fallback is used when the test has no deadline or the buffer leaves no
// time.
func DeadlineContext(t *testing.T, fallback, buffer time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	if deadline, ok := t.Deadline(); ok {
		if end := deadline.Add(-buffer); time.Until(end) > 0 {
			return context.WithDeadline(context.Background(), end)
		}
	}
	return context.WithTimeout(context.Background(), fallback)
}
