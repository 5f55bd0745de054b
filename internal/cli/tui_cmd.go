package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive board and tree with keyboard drag and drop",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "board",
			Short: "Open the kanban board",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(app, ViewBoard)
			},
		},
		&cobra.Command{
			Use:   "tree",
			Short: "Open the tree",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(app, ViewTree)
			},
		},
	)

	return cmd
}

// runTUI blocks until the user quits. Any drag still active is abandoned.
func runTUI(app *App, start ViewID) error {
	defer app.Board.DragEnd()
	defer app.Tree.DragEnd()

	p := tea.NewProgram(newAppModel(app, start), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
