package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
	"github.com/alexanderramin/kanbantree/internal/domain"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show and edit the kanban board",
	}

	cmd.AddCommand(
		newBoardShowCmd(app),
		newBoardAddCmd(app),
		newBoardEditCmd(app),
		newBoardRemoveCmd(app),
		newBoardMoveCmd(app),
		newBoardResetCmd(app),
	)

	return cmd
}

func printBoard(w io.Writer, app *App) error {
	cols := app.Board.Columns()
	fmt.Fprintln(w, formatter.RenderBoard(cols, formatter.BoardMarks{}))
	fmt.Fprintln(w, formatter.RenderBoardSummary(cols, false))
	return nil
}

func newBoardShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBoard(cmd.OutOrStdout(), app)
		},
	}
}

func newBoardAddCmd(app *App) *cobra.Command {
	var column, title, desc string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card to the end of a column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			colID, err := domain.ParseColumnID(column)
			if err != nil {
				return err
			}
			if title == "" && app.interactive() {
				if err := cardForm(&title, &desc).Run(); err != nil {
					return err
				}
			}

			card, err := app.Board.AddCard(context.Background(), colID, title, desc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n",
				formatter.StyleGreen.Render("✔"),
				formatter.Bold(card.Title),
				formatter.Dim("("+card.ID+")"))
			return nil
		},
	}

	cmd.Flags().StringVar(&column, "column", string(domain.ColumnTodo), "Column (todo|inprogress|done)")
	cmd.Flags().StringVar(&title, "title", "", "Card title")
	cmd.Flags().StringVar(&desc, "desc", "", "Card description")

	return cmd
}

func newBoardEditCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a card's title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Board.EditCard(context.Background(), args[0], title); err != nil {
				return fmt.Errorf("editing %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s\n", formatter.StyleGreen.Render("✔"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New card title")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newBoardRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Board.DeleteCard(context.Background(), args[0]); err != nil {
				return fmt.Errorf("deleting %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", formatter.StyleGreen.Render("✔"), args[0])
			return nil
		},
	}
}

func newBoardMoveCmd(app *App) *cobra.Command {
	var to, before string

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Drag a card to another column or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colID, err := domain.ParseColumnID(to)
			if err != nil {
				return err
			}
			target := board.Target{ColumnID: colID, CardID: before}
			if err := app.Board.MoveCard(context.Background(), args[0], target); err != nil {
				return fmt.Errorf("moving %s: %w", args[0], err)
			}

			col, _ := app.Board.Columns().Column(colID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s to %s\n",
				formatter.StyleGreen.Render("✔"), args[0], formatter.ColumnStyle(col.Color).Render(col.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target column (todo|inprogress|done)")
	cmd.Flags().StringVar(&before, "before", "", "Card to insert in front of (default: end of column)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newBoardResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard saved data and restore the sample board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols := app.Board.Reset(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "%s Board reset (%d cards)\n",
				formatter.StyleGreen.Render("✔"), cols.TotalCards())
			return nil
		},
	}
}
