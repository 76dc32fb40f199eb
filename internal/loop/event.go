package loop

import (
	"github.com/thruflo/rustlings/internal/check"
	"github.com/thruflo/rustlings/internal/tui"
	"github.com/thruflo/rustlings/internal/verify"
)

// Event is an input to the watch loop. Producers send events on a single
// channel; the loop consumes them one at a time.
type Event interface {
	isEvent()
}

// FileChanged reports that the source of exercise Index was modified.
type FileChanged struct {
	Index int
}

// KeyPressed reports a keyboard shortcut.
type KeyPressed struct {
	Shortcut tui.Shortcut
}

// TerminalResized reports a new terminal width.
type TerminalResized struct {
	Width int
}

// WatcherFailed reports that the file watcher stopped. It is fatal.
type WatcherFailed struct {
	Err error
}

// InputClosed reports that keyboard input ended, e.g. the terminal closed.
type InputClosed struct {
	Err error
}

func (FileChanged) isEvent()     {}
func (KeyPressed) isEvent()      {}
func (TerminalResized) isEvent() {}
func (WatcherFailed) isEvent()   {}
func (InputClosed) isEvent()     {}

// jobEvent is sent by the goroutine running a check or verification.
// gen identifies the job so results of an older job are never applied.
type jobEvent interface {
	jobGen() int
}

type checkDone struct {
	gen     int
	index   int
	outcome check.Outcome
	err     error
}

type verifyProgress struct {
	gen   int
	done  int
	total int
}

type verifyDone struct {
	gen    int
	result verify.Result
	err    error
}

func (e checkDone) jobGen() int      { return e.gen }
func (e verifyProgress) jobGen() int { return e.gen }
func (e verifyDone) jobGen() int     { return e.gen }
