package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thruflo/rustlings/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all exercises and their progress",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styled := tui.IsTerminalWriter(out)
	width := tui.DefaultWidth
	if f, ok := out.(*os.File); ok && styled {
		width = tui.NewTerminal(f, out).Width()
	}

	cur := p.store.Current()
	rows := make([]tui.ListRow, 0, p.cat.Len())
	for i, ex := range p.cat.All() {
		rows = append(rows, tui.ListRow{
			Name:    ex.Name,
			Path:    ex.Path,
			Done:    p.store.Done(i),
			Current: i == cur,
		})
	}

	fmt.Fprint(out, tui.RenderList(rows, -1, width, styled))
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.ProgressBar(p.store.NDone(), p.cat.Len(), width, styled))
	return nil
}
