//go:build unix

package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WatchResize sends the new width whenever the terminal is resized. The
// channel is closed when ctx is done.
func WatchResize(ctx context.Context, t *Terminal) <-chan int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)

	out := make(chan int, 1)
	go func() {
		defer close(out)
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				select {
				case out <- t.Width():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
