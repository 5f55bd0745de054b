package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/kanbantree/internal/board"
	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
	"github.com/alexanderramin/kanbantree/internal/domain"
)

// deleteConfirmWindow is how long a first delete press stays armed.
const deleteConfirmWindow = 3 * time.Second

// deleteTimeoutMsg disarms a pending delete. Stale timeouts are ignored by seq.
type deleteTimeoutMsg struct{ seq int }

// pos is a slot on the board. row == len(cards) is the end of a column.
type pos struct {
	col, row int
}

// boardView shows the three columns with a card cursor and keyboard drag.
type boardView struct {
	state *SharedState
	keys  dragKeys

	cursor pos
	over   pos

	pendingDelete string
	deleteSeq     int
}

func newBoardView(state *SharedState) *boardView {
	return &boardView{state: state, keys: newDragKeys()}
}

func (v *boardView) ID() ViewID    { return ViewBoard }
func (v *boardView) Title() string { return "Board" }

func (v *boardView) ShortHelp() []key.Binding {
	if _, dragging := v.state.App.Board.Dragging(); dragging {
		return []key.Binding{v.keys.Move, v.keys.Drop, v.keys.Cancel}
	}
	return []key.Binding{v.keys.Pick, v.keys.Add, v.keys.Edit, v.keys.Delete, v.keys.Reset}
}

func (v *boardView) Init() tea.Cmd { return nil }

func (v *boardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteTimeoutMsg:
		if msg.seq == v.deleteSeq {
			v.pendingDelete = ""
		}
		return v, nil

	case tea.KeyMsg:
		cols := v.state.App.Board.Columns()
		v.cursor = clampCursor(cols, v.cursor)
		if _, dragging := v.state.App.Board.Dragging(); dragging {
			return v, v.updateDrag(msg, cols)
		}
		return v, v.updateBrowse(msg, cols)
	}
	return v, nil
}

func (v *boardView) updateBrowse(msg tea.KeyMsg, cols domain.Columns) tea.Cmd {
	svc := v.state.App.Board
	if !key.Matches(msg, v.keys.Delete) {
		v.pendingDelete = ""
	}

	switch {
	case key.Matches(msg, v.keys.Left):
		v.cursor = clampCursor(cols, pos{v.cursor.col - 1, v.cursor.row})
	case key.Matches(msg, v.keys.Right):
		v.cursor = clampCursor(cols, pos{v.cursor.col + 1, v.cursor.row})
	case key.Matches(msg, v.keys.Up):
		v.cursor = clampCursor(cols, pos{v.cursor.col, v.cursor.row - 1})
	case key.Matches(msg, v.keys.Down):
		v.cursor = clampCursor(cols, pos{v.cursor.col, v.cursor.row + 1})

	case key.Matches(msg, v.keys.Pick):
		card, ok := cardAt(cols, v.cursor)
		if !ok || !svc.DragStart(card.ID) {
			return nil
		}
		v.over = v.cursor
		svc.DragOver(targetAt(cols, v.over))

	case key.Matches(msg, v.keys.Add):
		if v.cursor.col >= len(cols) {
			return nil
		}
		return v.addCardForm(cols[v.cursor.col].ID)

	case key.Matches(msg, v.keys.Edit):
		if card, ok := cardAt(cols, v.cursor); ok {
			return v.editCardForm(card)
		}

	case key.Matches(msg, v.keys.Delete):
		card, ok := cardAt(cols, v.cursor)
		if !ok {
			return nil
		}
		if v.pendingDelete != card.ID {
			v.pendingDelete = card.ID
			v.deleteSeq++
			seq := v.deleteSeq
			return tea.Batch(
				statusCmd(formatter.StyleYellow.Render(fmt.Sprintf("Press x again to delete %q", card.Title))),
				tea.Tick(deleteConfirmWindow, func(time.Time) tea.Msg { return deleteTimeoutMsg{seq: seq} }),
			)
		}
		v.pendingDelete = ""
		return v.afterWrite(applyDeleteCard(v.state.App, card))

	case key.Matches(msg, v.keys.Reset):
		cols := svc.Reset(context.Background())
		v.cursor = clampCursor(cols, v.cursor)
		return statusCmd(formatter.Dim(fmt.Sprintf("Board reset (%d cards)", cols.TotalCards())))
	}
	return nil
}

func (v *boardView) updateDrag(msg tea.KeyMsg, cols domain.Columns) tea.Cmd {
	svc := v.state.App.Board

	switch {
	case key.Matches(msg, v.keys.Left):
		v.over = clampSlot(cols, pos{v.over.col - 1, v.over.row})
	case key.Matches(msg, v.keys.Right):
		v.over = clampSlot(cols, pos{v.over.col + 1, v.over.row})
	case key.Matches(msg, v.keys.Up):
		v.over = clampSlot(cols, pos{v.over.col, v.over.row - 1})
	case key.Matches(msg, v.keys.Down):
		v.over = clampSlot(cols, pos{v.over.col, v.over.row + 1})

	case key.Matches(msg, v.keys.Drop):
		dragged, _ := svc.Dragging()
		before := svc.Revision()
		svc.Drop(context.Background(), targetAt(cols, v.over))
		after := svc.Columns()
		if p, ok := findCard(after, dragged); ok {
			v.cursor = p
		}
		if svc.Revision() == before {
			return nil
		}
		return v.afterWrite(statusCmd(fmt.Sprintf("%s Moved %s", formatter.StyleGreen.Render("✔"), dragged)))

	case key.Matches(msg, v.keys.Cancel):
		svc.DragEnd()
		return nil

	default:
		return nil
	}

	svc.DragOver(targetAt(cols, v.over))
	return nil
}

func (v *boardView) afterWrite(cmd tea.Cmd) tea.Cmd {
	return tea.Batch(cmd, savedTick(v.state.App))
}

func (v *boardView) addCardForm(col domain.ColumnID) tea.Cmd {
	var title, desc string
	return pushView(newFormView(v.state, "Add Card", cardForm(&title, &desc), func() tea.Msg {
		return applyAddCard(v.state.App, col, title, desc)
	}))
}

func (v *boardView) editCardForm(card domain.Card) tea.Cmd {
	title := card.Title
	return pushView(newFormView(v.state, "Edit Card", labelForm("Title", &title), func() tea.Msg {
		return applyEditCard(v.state.App, card.ID, title)
	}))
}

func (v *boardView) View() string {
	svc := v.state.App.Board
	cols := svc.Columns()

	marks := formatter.BoardMarks{}
	if card, ok := cardAt(cols, clampCursor(cols, v.cursor)); ok {
		marks.Cursor = card.ID
	}
	if dragged, ok := svc.Dragging(); ok {
		marks.Dragging = dragged
		if col, ok := svc.OverColumn(); ok {
			marks.Over = col
			marks.OverCard = targetAt(cols, v.over).CardID
		}
	}

	return formatter.RenderBoard(cols, marks) + "\n" + formatter.RenderBoardSummary(cols, svc.Saved())
}

// applyAddCard adds a card and returns the form completion to show.
func applyAddCard(app *App, col domain.ColumnID, title, desc string) tea.Msg {
	card, err := app.Board.AddCard(context.Background(), col, title, desc)
	if err != nil {
		return formDoneStatus(errorText(err))
	}
	return formDone{next: tea.Batch(
		statusCmd(fmt.Sprintf("%s Added %s", formatter.StyleGreen.Render("✔"), formatter.Bold(card.Title))),
		savedTick(app),
	)}
}

// applyEditCard renames a card and returns the form completion to show.
func applyEditCard(app *App, cardID, title string) tea.Msg {
	if err := app.Board.EditCard(context.Background(), cardID, title); err != nil {
		return formDoneStatus(errorText(err))
	}
	return formDone{next: tea.Batch(
		statusCmd(fmt.Sprintf("%s Updated %s", formatter.StyleGreen.Render("✔"), formatter.Bold(title))),
		savedTick(app),
	)}
}

func applyDeleteCard(app *App, card domain.Card) tea.Cmd {
	if err := app.Board.DeleteCard(context.Background(), card.ID); err != nil {
		return statusCmd(errorText(err))
	}
	return statusCmd(fmt.Sprintf("%s Deleted %s", formatter.StyleGreen.Render("✔"), formatter.Bold(card.Title)))
}

// savedTick schedules a redraw for when the saved badge expires.
func savedTick(app *App) tea.Cmd {
	return tea.Tick(app.savedFor(), func(time.Time) tea.Msg { return savedExpiredMsg{} })
}

func errorText(err error) string {
	return formatter.StyleRed.Render("Error: ") + err.Error()
}

// clampCursor keeps p on an existing column and, where the column has cards,
// on an existing card.
func clampCursor(cols domain.Columns, p pos) pos {
	if len(cols) == 0 {
		return pos{}
	}
	p.col = min(max(p.col, 0), len(cols)-1)
	n := len(cols[p.col].Cards)
	p.row = min(max(p.row, 0), max(n-1, 0))
	return p
}

// clampSlot is clampCursor that also allows the end-of-column slot.
func clampSlot(cols domain.Columns, p pos) pos {
	if len(cols) == 0 {
		return pos{}
	}
	p.col = min(max(p.col, 0), len(cols)-1)
	p.row = min(max(p.row, 0), len(cols[p.col].Cards))
	return p
}

func cardAt(cols domain.Columns, p pos) (domain.Card, bool) {
	if p.col < 0 || p.col >= len(cols) {
		return domain.Card{}, false
	}
	cards := cols[p.col].Cards
	if p.row < 0 || p.row >= len(cards) {
		return domain.Card{}, false
	}
	return cards[p.row], true
}

func targetAt(cols domain.Columns, p pos) board.Target {
	if p.col < 0 || p.col >= len(cols) {
		return board.Target{}
	}
	t := board.Target{ColumnID: cols[p.col].ID}
	if card, ok := cardAt(cols, p); ok {
		t.CardID = card.ID
	}
	return t
}

func findCard(cols domain.Columns, id string) (pos, bool) {
	for ci, col := range cols {
		for ri, c := range col.Cards {
			if c.ID == id {
				return pos{ci, ri}, true
			}
		}
	}
	return pos{}, false
}
