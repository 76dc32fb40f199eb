//go:build !unix

package tui

import "context"

// WatchResize is a no-op without SIGWINCH; the returned channel closes when
// ctx is done.
func WatchResize(ctx context.Context, t *Terminal) <-chan int {
	out := make(chan int)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
