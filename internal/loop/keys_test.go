package loop

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/rustlings/internal/tui"
)

func TestReadKeys(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan Event, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ReadKeys(ctx, tui.NewKeyReader(strings.NewReader("hxl\rq")), out)
	}()

	var got []Event
	for ev := range collect(t, out, 5) {
		got = append(got, ev)
	}
	<-done

	require.Len(t, got, 5)
	assert.Equal(t, KeyPressed{Shortcut: tui.ShortcutHint}, got[0])
	assert.Equal(t, KeyPressed{Shortcut: tui.ShortcutList}, got[1])
	assert.Equal(t, KeyPressed{Shortcut: tui.ShortcutContinue}, got[2])
	assert.Equal(t, KeyPressed{Shortcut: tui.ShortcutQuit}, got[3])
	closed, ok := got[4].(InputClosed)
	require.True(t, ok, "got %T", got[4])
	assert.ErrorIs(t, closed.Err, io.EOF)
}

func TestReadKeys_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Event)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ReadKeys(ctx, tui.NewKeyReader(strings.NewReader("nnn")), out)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("ReadKeys did not return after cancel")
	}
}

func TestForwardResizes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	widths := make(chan int, 2)
	out := make(chan Event, 2)
	widths <- 100
	widths <- 42
	close(widths)

	ForwardResizes(ctx, widths, out)

	assert.Equal(t, TerminalResized{Width: 100}, <-out)
	assert.Equal(t, TerminalResized{Width: 42}, <-out)
}

// collect yields n events from ch, failing the test on timeout.
func collect(t *testing.T, ch <-chan Event, n int) <-chan Event {
	t.Helper()

	res := make(chan Event, n)
	for range n {
		select {
		case ev := <-ch:
			res <- ev
		case <-time.After(waitTimeout):
			t.Fatalf("timed out after %d events", len(res))
		}
	}
	close(res)
	return res
}
