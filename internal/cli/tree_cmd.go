package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/service"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

// maxExpandRounds bounds --expand-all, since fetched children can themselves
// be lazy.
const maxExpandRounds = 16

func newTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show and edit the lazy-loading tree",
	}

	cmd.AddCommand(
		newTreeShowCmd(app),
		newTreeExpandCmd(app),
		newTreeAddCmd(app),
		newTreeRenameCmd(app),
		newTreeRemoveCmd(app),
		newTreeMoveCmd(app),
		newTreeResetCmd(app),
	)

	return cmd
}

// fetchedOrExpanded is the expansion a one-shot command shows: every node
// whose children are already in memory.
func fetchedOrExpanded(svc service.TreeService, forest []domain.TreeNode) func(string) bool {
	return func(id string) bool {
		if svc.Expanded(id) {
			return true
		}
		n, ok := tree.Find(forest, id)
		return ok && n.State == domain.ChildrenFetched && len(n.Children) > 0
	}
}

func printForest(w io.Writer, app *App) {
	forest := app.Tree.Forest()
	fmt.Fprint(w, formatter.RenderForest(forest, fetchedOrExpanded(app.Tree, forest), formatter.TreeMarks{}))
}

// waitLoads blocks on every load, stopping a spinner if one is shown, and
// joins their errors.
func waitLoads(w io.Writer, app *App, loads []*service.Load) error {
	if len(loads) == 0 {
		return nil
	}
	if app.interactive() {
		stop := formatter.StartSpinner(w, "Loading children…")
		defer stop()
	}
	var errs []error
	for _, l := range loads {
		if err := l.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// expandAll fetches every unfetched node, round by round, until none remain.
func expandAll(ctx context.Context, w io.Writer, app *App) error {
	for range maxExpandRounds {
		var lazy []string
		tree.Walk(app.Tree.Forest(), func(n domain.TreeNode, _ int) {
			if n.NeedsFetch() {
				lazy = append(lazy, n.ID)
			}
		})
		if len(lazy) == 0 {
			return nil
		}

		var loads []*service.Load
		for _, id := range lazy {
			load, err := app.Tree.Toggle(ctx, id)
			if err != nil {
				return err
			}
			if load != nil {
				loads = append(loads, load)
			}
		}
		if err := waitLoads(w, app, loads); err != nil {
			return err
		}
	}
	return nil
}

func newTreeShowCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := expandAll(context.Background(), cmd.ErrOrStderr(), app); err != nil {
					return err
				}
			}
			printForest(cmd.OutOrStdout(), app)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "expand-all", false, "Load every lazy node before printing")

	return cmd
}

func newTreeExpandCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expand ID",
		Short: "Expand a node, loading its children if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			n, ok := tree.Find(app.Tree.Forest(), id)
			if !ok {
				return fmt.Errorf("expanding %s: %w", id, domain.ErrNodeNotFound)
			}
			if !n.HasChildren() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no children\n", formatter.Bold(n.Label))
				return nil
			}

			load, err := app.Tree.Toggle(context.Background(), id)
			if err != nil {
				return err
			}
			if load != nil {
				if err := waitLoads(cmd.ErrOrStderr(), app, []*service.Load{load}); err != nil {
					return err
				}
			}

			forest := app.Tree.Forest()
			n, _ = tree.Find(forest, id)
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderForest([]domain.TreeNode{n}, fetchedOrExpanded(app.Tree, forest), formatter.TreeMarks{}))
			return nil
		},
	}
}

func newTreeAddCmd(app *App) *cobra.Command {
	var parent, label string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a node under --parent, or at the root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" && app.interactive() {
				if err := labelForm("Label", &label).Run(); err != nil {
					return err
				}
			}

			ctx := context.Background()
			var node domain.TreeNode
			var err error
			if parent != "" {
				node, err = app.Tree.AddChild(ctx, parent, label)
			} else {
				node, err = app.Tree.AddRoot(ctx, label)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n",
				formatter.StyleGreen.Render("✔"),
				formatter.Bold(node.Label),
				formatter.Dim("("+node.ID+")"))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent node ID (default: new root)")
	cmd.Flags().StringVar(&label, "label", "", "Node label")

	return cmd
}

func newTreeRenameCmd(app *App) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "rename ID",
		Short: "Change a node's label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tree.Rename(context.Background(), args[0], label); err != nil {
				return fmt.Errorf("renaming %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Renamed %s\n", formatter.StyleGreen.Render("✔"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "New label")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func newTreeRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a node and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tree.Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("deleting %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", formatter.StyleGreen.Render("✔"), args[0])
			return nil
		},
	}
}

func newTreeMoveCmd(app *App) *cobra.Command {
	var after string

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Drag a node to sit right after another node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tree.MoveAfter(context.Background(), args[0], after); err != nil {
				return fmt.Errorf("moving %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s after %s\n", formatter.StyleGreen.Render("✔"), args[0], after)
			return nil
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "Node to drop after")
	_ = cmd.MarkFlagRequired("after")

	return cmd
}

func newTreeResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard saved data and restore the sample tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest := app.Tree.Reset(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "%s Tree reset (%d roots)\n",
				formatter.StyleGreen.Render("✔"), len(forest))
			return nil
		},
	}
}
