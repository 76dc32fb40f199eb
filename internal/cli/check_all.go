package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thruflo/rustlings/internal/tui"
	"github.com/thruflo/rustlings/internal/verify"
)

var checkAllWorkers int

var checkAllCmd = &cobra.Command{
	Use:   "check-all",
	Short: "Check every exercise",
	Long: `Checks all exercises in parallel and reports the first one, in order,
that fails. The failing exercise becomes current and is marked pending. When
every exercise passes, all of them are marked done.`,
	Args: cobra.NoArgs,
	RunE: runCheckAll,
}

func init() {
	checkAllCmd.Flags().IntVarP(&checkAllWorkers, "jobs", "j", 0, "maximum parallel checks (default: verify.max_workers from config)")
	rootCmd.AddCommand(checkAllCmd)
}

func runCheckAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	styled := tui.IsTerminalWriter(out)

	p, err := openProject()
	if err != nil {
		return err
	}
	checker, err := p.checker(ctx, colorMode(styled))
	if err != nil {
		return err
	}

	workers := p.cfg.Verify.MaxWorkers
	if checkAllWorkers > 0 {
		workers = checkAllWorkers
	}
	v := verify.New(checker, p.cat.Exercises(), verify.Options{MaxWorkers: workers})

	progress := func(done, total int) error {
		bar := tui.ProgressBar(done, total, tui.DefaultWidth, styled)
		if styled {
			_, err := fmt.Fprint(out, "\r"+bar)
			return err
		}
		_, err := fmt.Fprintln(out, bar)
		return err
	}
	res, err := v.Verify(ctx, progress)
	if styled {
		fmt.Fprintln(out)
	}
	if err != nil {
		return fmt.Errorf("failed to check all exercises: %w", err)
	}

	if res.AllDone {
		for i := range p.cat.Len() {
			warnState(p.store.MarkDone(i))
		}
		msg := p.cat.FinalMessage()
		if msg == "" {
			msg = "All exercises pass."
		}
		fmt.Fprintln(out, tui.SuccessText(strings.TrimRight(msg, "\n"), styled))
		return nil
	}

	ex := p.cat.Get(res.Failed)
	warnState(p.store.MarkPending(res.Failed))
	warnState(p.store.SetCurrent(res.Failed))

	out.Write(res.Outcome.Output)
	fmt.Fprintln(out, tui.ErrorText("✗ "+ex.Path+" no longer passes", styled))
	return fmt.Errorf("exercise %s failed (%s)\nhint: it is now the current exercise; run `rustlings` to continue", ex.Path, res.Outcome.FailedStep)
}
