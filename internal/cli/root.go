package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/kanbantree/internal/persist"
	"github.com/alexanderramin/kanbantree/internal/service"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Backend    string
	DBPath     string
	Verbose    bool
}

func bindGlobalFlags(fs *pflag.FlagSet, g *GlobalFlags) {
	fs.StringVar(&g.ConfigPath, "config", "", "Path to config file (default ~/.kanbantree/config.yaml)")
	fs.StringVar(&g.Backend, "backend", "", "Storage backend (sqlite|redis|memory)")
	fs.StringVar(&g.DBPath, "db", "", "SQLite database path")
	fs.BoolVarP(&g.Verbose, "verbose", "v", false, "Log debug output to stderr")
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Board service.BoardService
	Tree  service.TreeService

	// SavedFor is how long the TUI shows the saved badge after a write.
	SavedFor time.Duration

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	// Connect, when set, builds the services from the global flags before
	// any command runs.
	Connect func(GlobalFlags) error
}

func (a *App) savedFor() time.Duration {
	if a.SavedFor > 0 {
		return a.SavedFor
	}
	return persist.DefaultSavedIndicatorDuration
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "kanbantree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var flags GlobalFlags

	root := &cobra.Command{
		Use:           "kanbantree",
		Short:         "Kanban board and lazy-loading tree with drag and drop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Connect == nil {
				return nil
			}
			return app.Connect(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTUI(app, ViewBoard)
			}
			return printBoard(cmd.OutOrStdout(), app)
		},
	}
	bindGlobalFlags(root.PersistentFlags(), &flags)

	root.AddCommand(
		newBoardCmd(app),
		newTreeCmd(app),
		newTUICmd(app),
	)

	return root
}
