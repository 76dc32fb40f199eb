// tui-demo is a manual test program for checking how watch-mode screens
// render on a real terminal.
// Run with: go run ./cmd/tui-demo
//
// It draws, one screen per keypress:
// - a failing check with its output, progress bar and prompt
// - the hint overlay
// - the exercise list with a selection
// - progress bars from narrow to wide
package main

import (
	"fmt"
	"os"

	"github.com/thruflo/rustlings/internal/tui"
)

func main() {
	term := tui.NewTerminal(os.Stdin, os.Stdout)
	if !term.IsTerminal() {
		fmt.Fprintln(os.Stderr, "tui-demo needs an interactive terminal")
		os.Exit(1)
	}

	if err := runDemo(term); err != nil {
		term.ExitRaw()
		fmt.Fprintf(os.Stderr, "Demo error: %v\n", err)
		os.Exit(1)
	}
}

func runDemo(term *tui.Terminal) error {
	if err := term.EnterRaw(); err != nil {
		return err
	}
	defer term.ExitRaw()

	r := tui.NewTerminalRenderer(os.Stdout, tui.RendererOptions{Raw: true, Styled: true})
	keys := tui.NewKeyReader(term)
	width := term.Width()

	output := []byte("error[E0425]: cannot find value `x` in this scope\n --> exercises/01_variables/variables1.rs:4:5\n")
	rows := []tui.ListRow{
		{Name: "intro1", Path: "exercises/00_intro/intro1.rs", Done: true},
		{Name: "intro2", Path: "exercises/00_intro/intro2.rs", Done: true},
		{Name: "variables1", Path: "exercises/01_variables/variables1.rs", Current: true},
		{Name: "variables2", Path: "exercises/01_variables/variables2.rs"},
	}

	screens := []func() error{
		func() error {
			return draw(r,
				func() error { return r.WriteOutput(output) },
				func() error { return r.WriteOutput([]byte("\n")) },
				func() error { return r.WriteProgressBar(2, 4, width) },
				func() error { return r.Prompt(tui.PromptWatch) },
			)
		},
		func() error {
			return draw(r,
				func() error { return r.ShowHint("Declare the variable with `let`.") },
				func() error { return r.Prompt(tui.PromptContinue) },
			)
		},
		func() error {
			return draw(r,
				func() error { return r.WriteList(rows, 3, width) },
				func() error { return r.Prompt(tui.PromptList) },
			)
		},
		func() error {
			steps := []func() error{}
			for _, w := range []int{20, tui.ProgressMinWidth, 50, width} {
				steps = append(steps, func() error { return r.WriteProgressBar(2, 4, w) })
			}
			steps = append(steps, func() error { return r.Prompt(tui.PromptNext) })
			return draw(r, steps...)
		},
	}

	for _, screen := range screens {
		if err := screen(); err != nil {
			return err
		}
		ev, err := keys.ReadKey()
		if err != nil {
			return err
		}
		if tui.ParseShortcut(ev) == tui.ShortcutQuit {
			break
		}
	}
	return r.Clear()
}

func draw(r *tui.TerminalRenderer, steps ...func() error) error {
	if err := r.Clear(); err != nil {
		return err
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
