package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/kanbantree/internal/cli/formatter"
)

// formView puts a huh.Form on the view stack. On completion submit runs and
// its message replaces the form, normally an apply* result.
type formView struct {
	state  *SharedState
	form   *huh.Form
	title  string
	submit func() tea.Msg
}

func newFormView(state *SharedState, title string, form *huh.Form, submit func() tea.Msg) *formView {
	return &formView{state: state, form: form, title: title, submit: submit}
}

func (v *formView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *formView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return v, func() tea.Msg { return formDoneStatus(formatter.Dim("Cancelled.")) }
	}

	next, cmd := v.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		v.form = f
	}
	switch v.form.State {
	case huh.StateCompleted:
		submit := v.submit
		if submit == nil {
			return v, func() tea.Msg { return formDone{} }
		}
		return v, tea.Batch(cmd, submit)
	case huh.StateAborted:
		return v, func() tea.Msg { return formDoneStatus(formatter.Dim("Cancelled.")) }
	}
	return v, cmd
}

func (v *formView) View() string {
	return v.form.View()
}

func (v *formView) ID() ViewID    { return ViewForm }
func (v *formView) Title() string { return v.title }

func (v *formView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
