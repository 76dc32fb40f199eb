package loop

import (
	"context"

	"github.com/thruflo/rustlings/internal/tui"
)

// ReadKeys forwards shortcuts from r to out until reading fails or ctx is
// done. A read error is reported as InputClosed. The read itself blocks, so
// the goroutine only notices ctx after the next key.
func ReadKeys(ctx context.Context, r *tui.KeyReader, out chan<- Event) {
	for {
		ev, err := r.ReadKey()
		if err != nil {
			select {
			case out <- InputClosed{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		sc := tui.ParseShortcut(ev)
		if sc == tui.ShortcutNone {
			continue
		}
		select {
		case out <- KeyPressed{Shortcut: sc}:
		case <-ctx.Done():
			return
		}
	}
}

// ForwardResizes turns terminal widths into TerminalResized events.
func ForwardResizes(ctx context.Context, widths <-chan int, out chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-widths:
			if !ok {
				return
			}
			select {
			case out <- TerminalResized{Width: w}:
			case <-ctx.Done():
				return
			}
		}
	}
}
