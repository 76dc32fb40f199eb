package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thruflo/rustlings/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Check one exercise once",
	Long: `Builds, lints, tests and runs one exercise and prints its output.

Without a name, the current exercise is checked. A passing exercise is marked
done and the next pending exercise becomes current; a failing one is marked
pending. The exit status is non-zero when the exercise fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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
	i, ex, err := p.exercise(args)
	if err != nil {
		return err
	}
	warnState(p.store.SetCurrent(i))

	checker, err := p.checker(ctx, colorMode(styled))
	if err != nil {
		return err
	}
	outcome, err := checker.Check(ctx, ex)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", ex.Name, err)
	}

	out.Write(outcome.Output)
	if len(outcome.Output) > 0 && outcome.Output[len(outcome.Output)-1] != '\n' {
		fmt.Fprintln(out)
	}

	if !outcome.Success {
		warnState(p.store.MarkPending(i))
		fmt.Fprintln(out, tui.ErrorText("✗ Failed to run "+ex.Path, styled))
		return fmt.Errorf("ran %s with errors (%s failed)", ex.Path, outcome.FailedStep)
	}

	warnState(p.store.MarkDone(i))
	fmt.Fprintln(out, tui.SuccessText("✓ Successfully ran "+ex.Path, styled))

	next, ok := p.store.NextPending()
	if !ok {
		fmt.Fprintln(out, "All exercises appear to be done. Run `rustlings check-all` to verify them.")
		return nil
	}
	warnState(p.store.SetCurrent(next))
	fmt.Fprintf(out, "Next exercise: %s\n", p.cat.Get(next).Path)
	return nil
}
