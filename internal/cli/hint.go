package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const noHint = "No hint for this exercise."

var hintCmd = &cobra.Command{
	Use:   "hint [name]",
	Short: "Show the hint for an exercise",
	Long:  `Prints the hint for the named exercise, or for the current one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHint,
}

func init() {
	rootCmd.AddCommand(hintCmd)
}

func runHint(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	_, ex, err := p.exercise(args)
	if err != nil {
		return err
	}

	hint := ex.Hint
	if hint == "" {
		hint = noHint
	}
	fmt.Fprintln(cmd.OutOrStdout(), hint)
	return nil
}
