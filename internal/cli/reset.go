package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thruflo/rustlings/internal/reset"
)

var resetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Restore an exercise to its unsolved state",
	Long: `Restores the exercise's source file and marks the exercise pending.

The pristine copy comes from reset.defaults_dir in .rustlings/config.yaml when
set. Otherwise your changes are stashed with git, so they can be recovered
with git stash pop.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	i, ex, err := p.exercise(args)
	if err != nil {
		return err
	}

	src := reset.SourceFor(p.root, p.cfg.Reset)
	err = src.Reset(ctx, p.root, ex)
	switch {
	case errors.Is(err, reset.ErrNothingToReset):
		fmt.Fprintf(cmd.OutOrStdout(), "The exercise %s has no changes to reset\n", ex.Path)
	case err != nil:
		return err
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "The exercise %s has been reset\n", ex.Path)
	}

	if err := p.store.MarkPending(i); err != nil {
		return err
	}
	return p.store.SetCurrent(i)
}
