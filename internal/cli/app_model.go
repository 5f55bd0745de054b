package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
)

// appModel is the root model of the TUI. The bottom of viewStack is the
// board or the tree; forms are pushed on top and popped by formDone.
type appModel struct {
	state     *SharedState
	board     *boardView
	tree      *treeView
	viewStack []View
	quitting  bool
}

var (
	switchKey = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "board/tree"))
	quitKey   = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
)

func newAppModel(app *App, start ViewID) appModel {
	state := &SharedState{App: app}
	m := appModel{
		state: state,
		board: newBoardView(state),
		tree:  newTreeView(state),
	}
	m.viewStack = []View{m.base(start)}
	return m
}

func (m *appModel) base(id ViewID) View {
	if id == ViewTree {
		return m.tree
	}
	return m.board
}

func (m *appModel) activeView() View {
	if n := len(m.viewStack); n > 0 {
		return m.viewStack[n-1]
	}
	return nil
}

func (m *appModel) onForm() bool {
	v := m.activeView()
	return v != nil && v.ID() == ViewForm
}

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width, m.state.Height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()
	case switchViewMsg:
		m.viewStack = []View{m.base(msg.id)}
		m.state.Status = ""
		return m, m.viewStack[0].Init()
	case statusMsg:
		m.state.Status = msg.text
		return m, nil
	case formDone:
		if m.onForm() {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, msg.next
	case savedExpiredMsg:
		return m, nil
	case fetchDoneMsg, spinner.TickMsg:
		// Fetches land on the tree even while a form covers it.
		_, cmd := m.tree.Update(msg)
		return m, cmd
	}
	return m.forward(msg)
}

// forward hands msg to the top view.
func (m appModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.viewStack)
	if n == 0 {
		return m, nil
	}
	next, cmd := m.viewStack[n-1].Update(msg)
	m.viewStack[n-1] = next.(View)
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	// q and tab are text inside a form, and a drag must end before leaving.
	if m.onForm() || m.dragging() {
		return m.forward(msg)
	}
	switch {
	case key.Matches(msg, quitKey):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, switchKey):
		next := ViewTree
		if m.activeView().ID() == ViewTree {
			next = ViewBoard
		}
		return m, switchView(next)
	}
	return m.forward(msg)
}

func (m appModel) dragging() bool {
	_, onBoard := m.state.App.Board.Dragging()
	_, onTree := m.state.App.Tree.Dragging()
	return onBoard || onTree
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}
	body := ""
	if v := m.activeView(); v != nil {
		body = v.View()
	}
	out := lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.statusBar())

	// Fill the alt screen so the line-diff renderer leaves no stale rows.
	if rows := strings.Count(out, "\n") + 1; rows < m.state.Height {
		out += strings.Repeat("\n", m.state.Height-rows)
	}
	return out
}

func (m *appModel) rule() string {
	return formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
}

func (m *appModel) header() string {
	titles := make([]string, 0, len(m.viewStack))
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			titles = append(titles, t)
		}
	}
	line := formatter.StylePurple.Render("kanbantree")
	if len(titles) > 0 {
		line += formatter.Dim(" › " + strings.Join(titles, " › "))
	}
	return line + "\n" + m.rule()
}

func (m *appModel) statusBar() string {
	parts := make([]string, 0, 8)
	if m.state.Status != "" {
		parts = append(parts, m.state.Status)
	}
	var bindings []key.Binding
	if v := m.activeView(); v != nil {
		bindings = v.ShortHelp()
	}
	if !m.onForm() && !m.dragging() {
		bindings = append(bindings, switchKey, quitKey)
	}
	for _, b := range bindings {
		parts = append(parts, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
	}
	return m.rule() + "\n" + strings.Join(parts, "  ")
}
