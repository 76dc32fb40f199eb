package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/logging"
	"github.com/thruflo/rustlings/internal/loop"
	"github.com/thruflo/rustlings/internal/state"
	"github.com/thruflo/rustlings/internal/tui"
	"github.com/thruflo/rustlings/internal/verify"
)

var (
	watchManualRun bool
	watchConfirm   bool
)

const quitMessage = `We hope you're enjoying learning Rust!
If you want to continue working on the exercises at a later point, you can simply run ` + "`rustlings`" + ` again.
`

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check the current exercise every time it is saved",
	Long: `Checks the current exercise, then re-checks it whenever a file in the
exercises directory changes. When the exercise passes, rustlings moves on to
the next pending one. Once none is left, every exercise is checked again.

Keys:
  n  mark the current exercise done and move on
  h  show the hint
  l  list all exercises
  r  re-run the check (with --manual-run)
  q  quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, watchCmd} {
		cmd.Flags().BoolVar(&watchManualRun, "manual-run", false, "don't watch files; press r to check the exercise")
		cmd.Flags().BoolVar(&watchConfirm, "confirm", false, "wait for n or enter before moving on after a passing check")
	}
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := openProject()
	if err != nil {
		return err
	}

	term := tui.NewTerminal(os.Stdin, os.Stdout)
	if !term.IsTerminal() {
		return fmt.Errorf("watch mode needs an interactive terminal\nhint: use `rustlings run` to check the current exercise once")
	}
	styled := tui.IsTerminalWriter(os.Stdout)

	checker, err := p.checker(ctx, colorMode(styled))
	if err != nil {
		return err
	}

	// The screen belongs to the loop from here on, so logs go to a file.
	level, _ := logging.ParseLevel(p.cfg.Log.Level)
	logs, err := logging.Configure(logging.FileOptions{Path: p.logPath(), Level: level})
	if err != nil {
		return err
	}
	defer logs.Close()

	manualRun := watchManualRun || p.cfg.Watch.ManualRun
	events := make(chan loop.Event, 64)

	if !manualRun {
		fw, err := loop.NewFileWatcher(p.root, filepath.Join(p.root, config.ExercisesDir), p.cat.Exercises(), p.cfg.Debounce())
		if err != nil {
			return err
		}
		go fw.Run(ctx, events)
	}

	if err := term.EnterRaw(); err != nil {
		return err
	}
	defer term.ExitRaw()
	if styled {
		term.HideCursor()
		defer term.ShowCursor()
	}

	// ReadKeys blocks on stdin; it is left behind when the loop exits.
	go loop.ReadKeys(ctx, tui.NewKeyReader(term), events)
	go loop.ForwardResizes(ctx, tui.WatchResize(ctx, term), events)

	var welcome string
	if p.status == state.FileCreated {
		welcome = p.cat.WelcomeMessage()
	}

	l := loop.New(loop.Options{
		Catalogue:      p.cat,
		Store:          p.store,
		Checker:        checker,
		Verifier:       verify.New(checker, p.cat.Exercises(), verify.Options{MaxWorkers: p.cfg.Verify.MaxWorkers}),
		Renderer:       tui.NewTerminalRenderer(os.Stdout, tui.RendererOptions{Raw: true, Styled: styled}),
		Events:         events,
		ManualRun:      manualRun,
		ConfirmAdvance: watchConfirm || p.cfg.Watch.ConfirmAdvance,
		Width:          term.Width(),
		Link:           exerciseLink(p.root, styled),
		Welcome:        welcome,
	})

	res := l.Run(ctx)
	term.ExitRaw()
	logging.Info("watch mode exited", "reason", res.Reason.String())

	switch res.Reason {
	case loop.ExitReasonQuit:
		fmt.Fprint(cmd.OutOrStdout(), "\n\n"+quitMessage)
	case loop.ExitReasonFinished, loop.ExitReasonCancelled:
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return res.Error
}

// exerciseLink renders exercise paths as terminal hyperlinks when the
// output is a terminal.
func exerciseLink(root string, styled bool) func(ex catalogue.Exercise) string {
	if !styled {
		return nil
	}
	editor := os.Getenv(config.EditorEnvName)
	return func(ex catalogue.Exercise) string {
		abs := filepath.ToSlash(filepath.Join(root, filepath.FromSlash(ex.Path)))
		return tui.Hyperlink(ex.Path, abs, editor)
	}
}
