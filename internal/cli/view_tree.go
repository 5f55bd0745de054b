package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/service"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

// fetchDoneMsg reports that a background child fetch has landed.
type fetchDoneMsg struct {
	nodeID string
	err    error
}

// treeView shows the forest with a row cursor, lazy expansion and keyboard drag.
type treeView struct {
	state   *SharedState
	keys    dragKeys
	addRoot key.Binding

	cursor int
	over   int

	spin     spinner.Model
	spinning bool
	vp       viewport.Model

	pendingDelete string
	deleteSeq     int
}

func newTreeView(state *SharedState) *treeView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	return &treeView{
		state:   state,
		keys:    newDragKeys(),
		addRoot: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add root")),
		spin:    sp,
		vp:      viewport.New(0, 0),
	}
}

func (v *treeView) ID() ViewID    { return ViewTree }
func (v *treeView) Title() string { return "Tree" }

func (v *treeView) ShortHelp() []key.Binding {
	if _, dragging := v.state.App.Tree.Dragging(); dragging {
		return []key.Binding{v.keys.Move, v.keys.Drop, v.keys.Cancel}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		v.keys.Pick, v.keys.Add, v.addRoot, v.keys.Edit, v.keys.Delete, v.keys.Reset,
	}
}

func (v *treeView) Init() tea.Cmd { return nil }

func (v *treeView) rows() []formatter.TreeItem {
	svc := v.state.App.Tree
	return formatter.FlattenForest(svc.Forest(), svc.Expanded, formatter.TreeMarks{})
}

func (v *treeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		if msg.err != nil {
			return v, statusCmd(errorText(msg.err))
		}
		return v, savedTick(v.state.App)

	case spinner.TickMsg:
		if !v.spinning {
			return v, nil
		}
		if !anyLoading(v.state.App.Tree.Forest()) {
			v.spinning = false
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case deleteTimeoutMsg:
		if msg.seq == v.deleteSeq {
			v.pendingDelete = ""
		}
		return v, nil

	case tea.KeyMsg:
		rows := v.rows()
		v.cursor = clampRow(rows, v.cursor)
		if _, dragging := v.state.App.Tree.Dragging(); dragging {
			return v, v.updateDrag(msg, rows)
		}
		return v, v.updateBrowse(msg, rows)
	}
	return v, nil
}

func (v *treeView) updateBrowse(msg tea.KeyMsg, rows []formatter.TreeItem) tea.Cmd {
	svc := v.state.App.Tree
	if !key.Matches(msg, v.keys.Delete) {
		v.pendingDelete = ""
	}
	if key.Matches(msg, v.addRoot) {
		return v.addRootForm()
	}
	if key.Matches(msg, v.keys.Reset) {
		forest := svc.Reset(context.Background())
		v.cursor = 0
		return statusCmd(formatter.Dim(fmt.Sprintf("Tree reset (%d roots)", len(forest))))
	}
	if len(rows) == 0 {
		return nil
	}
	row := rows[v.cursor]

	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = clampRow(rows, v.cursor-1)
	case key.Matches(msg, v.keys.Down):
		v.cursor = clampRow(rows, v.cursor+1)

	case key.Matches(msg, v.keys.Drop), key.Matches(msg, v.keys.Right):
		if key.Matches(msg, v.keys.Right) && svc.Expanded(row.ID) {
			return nil
		}
		return v.toggle(row.ID)
	case key.Matches(msg, v.keys.Left):
		if svc.Expanded(row.ID) {
			return v.toggle(row.ID)
		}

	case key.Matches(msg, v.keys.Pick):
		if svc.DragStart(row.ID) {
			v.over = v.cursor
			svc.DragOver(row.ID)
		}

	case key.Matches(msg, v.keys.Add):
		return v.addChildForm(row.ID)
	case key.Matches(msg, v.keys.Edit):
		return v.renameForm(row.ID, row.Title)

	case key.Matches(msg, v.keys.Delete):
		if v.pendingDelete != row.ID {
			v.pendingDelete = row.ID
			v.deleteSeq++
			seq := v.deleteSeq
			return tea.Batch(
				statusCmd(formatter.StyleYellow.Render(fmt.Sprintf("Press x again to delete %q and its children", row.Title))),
				tea.Tick(deleteConfirmWindow, func(time.Time) tea.Msg { return deleteTimeoutMsg{seq: seq} }),
			)
		}
		v.pendingDelete = ""
		if err := svc.Delete(context.Background(), row.ID); err != nil {
			return statusCmd(errorText(err))
		}
		return tea.Batch(
			statusCmd(fmt.Sprintf("%s Deleted %s", formatter.StyleGreen.Render("✔"), formatter.Bold(row.Title))),
			savedTick(v.state.App),
		)
	}
	return nil
}

// toggle flips expansion and, when a fetch starts, waits for it off the
// update loop.
func (v *treeView) toggle(id string) tea.Cmd {
	load, err := v.state.App.Tree.Toggle(context.Background(), id)
	if err != nil {
		return statusCmd(errorText(err))
	}
	if load == nil {
		return nil
	}
	cmds := []tea.Cmd{waitForLoad(load)}
	if !v.spinning {
		v.spinning = true
		cmds = append(cmds, v.spin.Tick)
	}
	return tea.Batch(cmds...)
}

func waitForLoad(load *service.Load) tea.Cmd {
	return func() tea.Msg {
		err := load.Wait()
		return fetchDoneMsg{nodeID: load.NodeID, err: err}
	}
}

func (v *treeView) updateDrag(msg tea.KeyMsg, rows []formatter.TreeItem) tea.Cmd {
	svc := v.state.App.Tree

	switch {
	case key.Matches(msg, v.keys.Up):
		v.over = clampRow(rows, v.over-1)
	case key.Matches(msg, v.keys.Down):
		v.over = clampRow(rows, v.over+1)

	case key.Matches(msg, v.keys.Drop):
		dragged, _ := svc.Dragging()
		before := svc.Revision()
		target := rows[clampRow(rows, v.over)].ID
		svc.Drop(context.Background(), target)
		v.cursor = rowIndex(v.rows(), dragged, v.cursor)
		if svc.Revision() == before {
			return nil
		}
		return tea.Batch(
			statusCmd(fmt.Sprintf("%s Moved %s after %s", formatter.StyleGreen.Render("✔"), dragged, target)),
			savedTick(v.state.App),
		)

	case key.Matches(msg, v.keys.Cancel):
		svc.DragEnd()
		return nil

	default:
		return nil
	}

	if len(rows) > 0 {
		svc.DragOver(rows[v.over].ID)
	}
	return nil
}

func (v *treeView) addChildForm(parentID string) tea.Cmd {
	var label string
	return pushView(newFormView(v.state, "Add Child", labelForm("Label", &label), func() tea.Msg {
		return applyAddNode(v.state.App, parentID, label)
	}))
}

func (v *treeView) addRootForm() tea.Cmd {
	var label string
	return pushView(newFormView(v.state, "Add Root", labelForm("Label", &label), func() tea.Msg {
		return applyAddNode(v.state.App, "", label)
	}))
}

func (v *treeView) renameForm(id, current string) tea.Cmd {
	label := current
	return pushView(newFormView(v.state, "Rename", labelForm("Label", &label), func() tea.Msg {
		return applyRename(v.state.App, id, label)
	}))
}

func (v *treeView) View() string {
	svc := v.state.App.Tree
	forest := svc.Forest()

	marks := formatter.TreeMarks{}
	if dragged, ok := svc.Dragging(); ok {
		marks.Dragging = dragged
		if over, ok := svc.OverNode(); ok {
			marks.Over = over
		}
	}
	rows := formatter.FlattenForest(forest, svc.Expanded, marks)
	cursor := clampRow(rows, v.cursor)
	if cursor < len(rows) {
		rows[cursor].Selected = true
	}
	body := formatter.RenderTree(rows)
	if len(rows) == 0 {
		body = formatter.Dim("No nodes. Press A to add one.") + "\n"
	}

	footer := formatter.Dim(fmt.Sprintf("%d nodes", len(tree.IDs(forest))))
	if anyLoading(forest) {
		footer += "  " + v.spin.View() + formatter.Dim(" loading")
	}
	if badge := formatter.SavedBadge(svc.Saved()); badge != "" {
		footer += "  " + badge
	}

	if h := v.state.ContentHeight() - 1; v.state.Height > 0 && h > 0 {
		v.vp.Width = v.state.Width
		v.vp.Height = h
		v.vp.SetContent(body)
		if cursor < v.vp.YOffset {
			v.vp.SetYOffset(cursor)
		} else if cursor >= v.vp.YOffset+h {
			v.vp.SetYOffset(cursor - h + 1)
		}
		body = v.vp.View() + "\n"
	}
	return body + footer
}

// applyAddNode adds a child of parentID, or a root when parentID is empty.
func applyAddNode(app *App, parentID, label string) tea.Msg {
	ctx := context.Background()
	var node domain.TreeNode
	var err error
	if parentID == "" {
		node, err = app.Tree.AddRoot(ctx, label)
	} else {
		node, err = app.Tree.AddChild(ctx, parentID, label)
	}
	if err != nil {
		return formDoneStatus(errorText(err))
	}
	return formDone{next: tea.Batch(
		statusCmd(fmt.Sprintf("%s Added %s", formatter.StyleGreen.Render("✔"), formatter.Bold(node.Label))),
		savedTick(app),
	)}
}

func applyRename(app *App, id, label string) tea.Msg {
	if err := app.Tree.Rename(context.Background(), id, label); err != nil {
		return formDoneStatus(errorText(err))
	}
	return formDone{next: tea.Batch(
		statusCmd(fmt.Sprintf("%s Renamed to %s", formatter.StyleGreen.Render("✔"), formatter.Bold(label))),
		savedTick(app),
	)}
}

func anyLoading(forest []domain.TreeNode) bool {
	loading := false
	tree.Walk(forest, func(n domain.TreeNode, _ int) {
		loading = loading || n.IsLoading()
	})
	return loading
}

func clampRow(rows []formatter.TreeItem, i int) int {
	return min(max(i, 0), max(len(rows)-1, 0))
}

func rowIndex(rows []formatter.TreeItem, id string, fallback int) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return clampRow(rows, fallback)
}
