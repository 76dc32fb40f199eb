package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rustlings",
	Short: "Small exercises to get you used to reading and writing Rust code",
	Long: `Rustlings runs a sequence of small exercises. Edit the current exercise
until it compiles, passes its lints and tests, and runs; rustlings checks it
every time you save and moves on when it passes.

Without a subcommand, rustlings starts watch mode.`,
	Args:          cobra.NoArgs,
	RunE:          runWatch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("rustlings version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
