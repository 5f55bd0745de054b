package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// switchViewMsg swaps the base view between the board and the tree.
type switchViewMsg struct {
	id ViewID
}

// statusMsg carries a one-line result to show in the status bar.
type statusMsg struct {
	text string
}

// formDone closes the form on top of the stack and then runs next.
type formDone struct {
	next tea.Cmd
}

// savedExpiredMsg asks for a redraw once the saved badge has timed out.
type savedExpiredMsg struct{}

func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func switchView(id ViewID) tea.Cmd {
	return func() tea.Msg { return switchViewMsg{id: id} }
}

func statusCmd(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	return func() tea.Msg { return statusMsg{text: text} }
}

// formDoneStatus pops the form and shows text in the status bar.
func formDoneStatus(text string) tea.Msg {
	return formDone{next: statusCmd(text)}
}
