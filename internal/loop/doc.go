// Package loop drives watch mode: the interactive state machine that
// re-checks the current exercise whenever its source changes.
//
// Inputs arrive as Events on a single channel:
//   - FileChanged from a debounced FileWatcher over the exercises directory
//   - KeyPressed from ReadKeys on the raw terminal
//   - TerminalResized from ForwardResizes
//
// Checks and the all-done verification run on a background goroutine and
// report back on a channel owned by the Loop, so all progress updates and
// rendering happen on the goroutine calling Run. A file change during a
// check cancels it (killing the toolchain process group) and the cancelled
// result is discarded before the replacement check starts. At most one
// toolchain process group is alive at a time.
package loop
